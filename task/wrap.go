package task

import "github.com/AngleSideAngle/swiper/cell"

// Because Go has no variadic type parameters, requirement sets of a known
// arity are exposed as this small hand-generated family of constructors
// (Wrap1..Wrap4) rather than as a single variadic wrap(). The original
// implementation's #[preemptible] proc-macro sidesteps the same problem at
// compile time by parsing an arbitrary-arity function signature directly;
// Go has no macro system to do that, so the arities are spelled out by
// hand here instead. WrapN below covers the dynamic-count, type-erased
// case. All of them build a *Task[R] that shares the exact same
// examination engine.

// Wrap1 builds a task requiring a single cell. build is invoked immediately
// with a Borrow for that cell and must return the inner computation;
// claiming the cell itself is deferred to the task's first Examine call.
func Wrap1[T1, R any](label string, c1 *cell.Cell[T1], build func(*Borrow[T1]) Inner[R]) *Task[R] {
	b1 := &Borrow[T1]{c: c1}
	return newTask(label, []Requirement{c1}, build(b1))
}

// Wrap2 builds a task requiring two cells, claimed and released as one
// atomic set.
func Wrap2[T1, T2, R any](label string, c1 *cell.Cell[T1], c2 *cell.Cell[T2], build func(*Borrow[T1], *Borrow[T2]) Inner[R]) *Task[R] {
	b1 := &Borrow[T1]{c: c1}
	b2 := &Borrow[T2]{c: c2}
	return newTask(label, []Requirement{c1, c2}, build(b1, b2))
}

// Wrap3 builds a task requiring three cells, claimed and released as one
// atomic set.
func Wrap3[T1, T2, T3, R any](label string, c1 *cell.Cell[T1], c2 *cell.Cell[T2], c3 *cell.Cell[T3], build func(*Borrow[T1], *Borrow[T2], *Borrow[T3]) Inner[R]) *Task[R] {
	b1 := &Borrow[T1]{c: c1}
	b2 := &Borrow[T2]{c: c2}
	b3 := &Borrow[T3]{c: c3}
	return newTask(label, []Requirement{c1, c2, c3}, build(b1, b2, b3))
}

// Wrap4 builds a task requiring four cells, claimed and released as one
// atomic set.
func Wrap4[T1, T2, T3, T4, R any](label string, c1 *cell.Cell[T1], c2 *cell.Cell[T2], c3 *cell.Cell[T3], c4 *cell.Cell[T4], build func(*Borrow[T1], *Borrow[T2], *Borrow[T3], *Borrow[T4]) Inner[R]) *Task[R] {
	b1 := &Borrow[T1]{c: c1}
	b2 := &Borrow[T2]{c: c2}
	b3 := &Borrow[T3]{c: c3}
	b4 := &Borrow[T4]{c: c4}
	return newTask(label, []Requirement{c1, c2, c3, c4}, build(b1, b2, b3, b4))
}

// AnyRequirement type-erases a *cell.Cell[T] so it can travel through WrapN
// alongside cells of other payload types. Build it with Of.
type AnyRequirement interface {
	requirement() Requirement
	borrow() any
}

type cellRef[T any] struct{ c *cell.Cell[T] }

func (r cellRef[T]) requirement() Requirement { return r.c }
func (r cellRef[T]) borrow() any              { return &Borrow[T]{c: r.c} }

// Of wraps a cell for use with WrapN, erasing its payload type.
func Of[T any](c *cell.Cell[T]) AnyRequirement { return cellRef[T]{c: c} }

// WrapN builds a task over a dynamically-sized requirement set. build
// receives the borrows in the same order as reqs and must type-assert each
// one back to *Borrow[T] for its known T. Prefer Wrap1..Wrap4 when the
// arity is fixed and known at the call site — they keep the borrows typed
// without an assertion.
func WrapN[R any](label string, reqs []AnyRequirement, build func(borrows []any) Inner[R]) *Task[R] {
	requirements := make([]Requirement, len(reqs))
	borrows := make([]any, len(reqs))
	for i, r := range reqs {
		requirements[i] = r.requirement()
		borrows[i] = r.borrow()
	}
	return newTask(label, requirements, build(borrows))
}
