package task

import "github.com/AngleSideAngle/swiper/cell"

// Borrow is a lightweight handle to one of a task's requirements, passed to
// the inner computation at wrap time. Because inner only ever advances
// while Examine has already confirmed this task is the cell's holder (step
// 2 of the examination protocol), Get is total and infallible during inner
// execution — there is no redundant per-access ownership check to pay for.
// Borrow handles must never outlive the task that produced them.
type Borrow[T any] struct {
	c *cell.Cell[T]
}

// Get returns a mutable pointer to the guarded value.
func (b *Borrow[T]) Get() *T { return b.c.Value() }

// Name returns the diagnostic name of the underlying cell.
func (b *Borrow[T]) Name() string { return b.c.Name() }
