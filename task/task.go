// Package task implements the preemptible task wrapper: a computation
// bound to a requirement set of cells, claiming (stealing if necessary)
// every cell in that set on first examination and reporting a terminal
// Preempted outcome the moment any of them is stolen back.
package task

import (
	"context"
	"fmt"

	"github.com/AngleSideAngle/swiper/handle"
	"github.com/AngleSideAngle/swiper/tracing"
)

// Requirement is the capability a guarded resource exposes to the wrapper.
// cell.Cell[T] satisfies it for any T, which is how a single Task can hold
// a heterogeneous requirement set without itself being generic over every
// cell's payload type.
type Requirement interface {
	Name() string
	Install(h *handle.Handle) *handle.Handle
	IsHeldBy(h *handle.Handle) bool
	Release(h *handle.Handle)
	Holder() *handle.Handle
}

// Observer receives synchronous notifications for every requirement
// transition Examine makes on this task: Claimed when a requirement is
// installed (stolenFrom is empty if it was free), Stolen when this task
// finds itself preempted (newHolder is the requirement's holder at that
// moment, empty if the task that stole it has already released it), and
// Released when a held
// requirement is given up, voluntarily or via Cancel. A host application
// wires an Observer to feed a diagnostics or tracing sink; the core itself
// has no opinion on what one does with the notification. Implementations
// must not call back into the task they are observing.
type Observer interface {
	Claimed(requirement, stolenFrom string)
	Stolen(requirement, newHolder string)
	Released(requirement string)
}

// State is the task wrapper's monotonic lifecycle: Fresh -> Running, then
// Running -> Preempted or Running -> Done. No other transition occurs.
type State int

const (
	Fresh State = iota
	Running
	Preempted
	Done
)

func (s State) String() string {
	switch s {
	case Fresh:
		return "fresh"
	case Running:
		return "running"
	case Preempted:
		return "preempted"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// PreemptionError reports that the named requirement was claimed by a
// later-scheduled task before or during examination. It is the only error
// kind that originates from a correctly-used task.
type PreemptionError struct {
	Requirement string
}

func (e *PreemptionError) Error() string {
	return fmt.Sprintf("swiper: task preempted, requirement %q was stolen", e.Requirement)
}

// Inner is the asynchronous computation a Task wraps. Step advances it by
// one tick; done is false until the computation has a final value.
type Inner[R any] interface {
	Step(ctx context.Context) (value R, done bool, err error)
}

// StepFunc adapts a plain function into an Inner, for computations that
// don't need their own named type.
type StepFunc[R any] func(ctx context.Context) (value R, done bool, err error)

func (f StepFunc[R]) Step(ctx context.Context) (R, bool, error) { return f(ctx) }

// Progress is what Examine returns on every call: either the task is still
// pending, or it has reached a terminal outcome (a value, a
// *PreemptionError, or the error inner finished with).
type Progress[R any] struct {
	Pending bool
	Value   R
	Err     error
}

// Task binds an Inner computation to a requirement set of cells. Once
// constructed it must never be copied — its address is its identity, and
// cells compare against that address to decide who currently holds them.
type Task[R any] struct {
	id           handle.Handle
	requirements []Requirement
	inner        Inner[R]
	state        State
	preemptedBy  string
	observer     Observer
}

// newTask builds a fresh, unclaimed task. Claiming its requirements is
// deferred to the first Examine call — claiming at construction time would
// preempt incumbents before a scheduler is even ready to run the newcomer.
func newTask[R any](label string, requirements []Requirement, inner Inner[R]) *Task[R] {
	return &Task[R]{
		id:           *handle.New(label),
		requirements: requirements,
		inner:        inner,
	}
}

// State returns the task's current lifecycle state.
func (t *Task[R]) State() State { return t.state }

// Handle returns the task's identity, the same value cells record as
// current holder once this task has claimed them.
func (t *Task[R]) Handle() *handle.Handle { return &t.id }

// Observe registers o to receive this task's requirement-transition
// notifications. Must be called before the task's first Examine — a
// scheduler free function like Submit calls it on the submitter's behalf
// before the task is ever woken.
func (t *Task[R]) Observe(o Observer) { t.observer = o }

// Examine is the executor's single-step advancement of the task. It is the
// central algorithm of the whole core:
//
//  1. A task already Preempted repeats the same *PreemptionError — this is
//     the resolution this repo picked for the spec's open question, see
//     DESIGN.md. Examining a Done task is a contract violation and panics:
//     a caller that does this has a bug, not a race it needs to tolerate.
//  2. Every requirement is checked. On the task's first examination
//     (state == Fresh) a requirement not yet held by self is expected and
//     ignored; once Running, any requirement no longer held by self means
//     another task stole it — transition to Preempted without touching any
//     cell (the new holder already owns them) and without advancing inner.
//  3. On a clean first examination every requirement is installed before
//     inner is ever advanced, so a newcomer either takes its whole
//     requirement set or (by construction, since Install is unconditional)
//     always does.
//  4. With every requirement confirmed held, inner advances by one step.
//  5. On completion, every requirement still held by self is released
//     before the outcome is reported — no observer ever sees self as
//     holder after a successful-outcome return.
func (t *Task[R]) Examine(ctx context.Context) (progress Progress[R]) {
	ctx, span := tracing.SpanForExamine(ctx, t.id.String())
	defer func() { tracing.EndSpan(span, progress.Err) }()

	switch t.state {
	case Preempted:
		progress = Progress[R]{Err: &PreemptionError{Requirement: t.preemptedBy}}
		return
	case Done:
		panic("swiper: task examined after it already reported Finished")
	}

	for _, r := range t.requirements {
		if r.IsHeldBy(&t.id) {
			continue
		}
		if t.state == Fresh {
			continue
		}

		newHolder := ""
		if h := r.Holder(); h != nil {
			newHolder = h.String()
		}
		_, stealSpan := tracing.SpanForSteal(ctx, r.Name(), t.id.String(), newHolder)
		tracing.EndSpan(stealSpan, &PreemptionError{Requirement: r.Name()})

		t.state = Preempted
		t.preemptedBy = r.Name()
		if t.observer != nil {
			t.observer.Stolen(r.Name(), newHolder)
		}
		progress = Progress[R]{Err: &PreemptionError{Requirement: r.Name()}}
		return
	}

	if t.state == Fresh {
		for _, r := range t.requirements {
			previous := r.Install(&t.id)
			if t.observer != nil {
				stolenFrom := ""
				if previous != nil {
					stolenFrom = previous.String()
				}
				t.observer.Claimed(r.Name(), stolenFrom)
			}
		}
		t.state = Running
	}

	value, done, err := t.inner.Step(ctx)
	if !done {
		progress = Progress[R]{Pending: true}
		return
	}

	for _, r := range t.requirements {
		if r.IsHeldBy(&t.id) {
			r.Release(&t.id)
			if t.observer != nil {
				t.observer.Released(r.Name())
			}
		}
	}
	t.state = Done

	if err != nil {
		progress = Progress[R]{Err: err}
		return
	}
	progress = Progress[R]{Value: value}
	return
}

// Cancel releases every requirement still held by this task without
// advancing inner, and marks the task Done. Go has no destructors, so this
// is the explicit equivalent of the original design's "drop": a caller
// that discards a task mid-flight (because its owning scope is going away)
// must call Cancel to match the spec's guarantee that cancellation never
// leaves a dangling holder behind. Cancel never steals — it only clears
// slots this task itself still occupies — and is a no-op once the task is
// already Preempted or Done.
func (t *Task[R]) Cancel() {
	if t.state == Preempted || t.state == Done {
		return
	}
	for _, r := range t.requirements {
		if r.IsHeldBy(&t.id) {
			r.Release(&t.id)
			if t.observer != nil {
				t.observer.Released(r.Name())
			}
		}
	}
	t.state = Done
}
