// Package cell implements the revocable cell — the guarded, single-owner
// container at the base of the preemptive-ownership core. A Cell hands its
// holder identity to whichever task most recently installed itself; it
// never blocks a steal and never tracks nested borrows.
package cell

import (
	"fmt"
	"sync/atomic"

	"github.com/AngleSideAngle/swiper/handle"
)

// Cell is a revocable, single-slot ownership container guarding a value of
// type T. Install is wait-free: a single atomic pointer store, no locking,
// no allocation on the hot path.
type Cell[T any] struct {
	name   string
	value  T
	holder atomic.Pointer[handle.Handle]
}

// New creates an idle cell with the given diagnostic name and initial value.
func New[T any](name string, initial T) *Cell[T] {
	return &Cell[T]{name: name, value: initial}
}

// Name returns the cell's diagnostic label.
func (c *Cell[T]) Name() string { return c.name }

// Install atomically records newHolder as the current holder and returns
// whoever held the cell immediately beforehand (nil if it was idle). This
// always succeeds and is the sole mechanism of stealing: the caller never
// waits on an incumbent to yield.
func (c *Cell[T]) Install(newHolder *handle.Handle) *handle.Handle {
	return c.holder.Swap(newHolder)
}

// IsHeldBy reports whether h is the cell's current holder.
func (c *Cell[T]) IsHeldBy(h *handle.Handle) bool {
	if h == nil {
		return false
	}
	return c.holder.Load() == h
}

// Holder returns the cell's current holder, or nil if idle. It exists for
// diagnostics and tracing — identifying who now holds a stolen cell —
// ownership checks themselves should use IsHeldBy.
func (c *Cell[T]) Holder() *handle.Handle { return c.holder.Load() }

// Release clears the holder slot iff it is currently h. Calling it again,
// or calling it once another task has already installed itself, is a
// harmless no-op — release is idempotent.
func (c *Cell[T]) Release(h *handle.Handle) {
	c.holder.CompareAndSwap(h, nil)
}

// OwnershipLostError is returned by WithBorrow when the caller is not the
// cell's current holder. It is a contract violation: the cell is left
// untouched.
type OwnershipLostError struct {
	Cell string
}

func (e *OwnershipLostError) Error() string {
	return fmt.Sprintf("swiper: ownership lost on cell %q", e.Cell)
}

// WithBorrow invokes fn with exclusive access to the cell's value, provided
// h proves to be the current holder. Calling with a stale holder fails with
// an *OwnershipLostError and fn is never invoked.
func (c *Cell[T]) WithBorrow(h *handle.Handle, fn func(value *T)) error {
	if !c.IsHeldBy(h) {
		return &OwnershipLostError{Cell: c.name}
	}
	fn(&c.value)
	return nil
}

// Value returns a direct, unchecked mutable pointer to the guarded value.
// It exists solely so that task.Borrow can hand the value to an already
// holder-verified inner computation without re-validating ownership on
// every dereference (see package task). Callers outside a verified borrow
// must not use it.
func (c *Cell[T]) Value() *T { return &c.value }
