// Package scheduler provides a minimal, single-goroutine implementation of
// the executor contract spec.md §6 requires of the surrounding framework:
// single-threaded examination of a given task, and a registered wake-up
// callback invoked when the task should be re-examined. It is not part of
// the preemptive-ownership core — the core never imports it — but a repo
// built around that core needs one runnable example of the contract being
// honoured, used by the integration tests.
//
// Progress is purely reactive: the Runner only re-examines a task when its
// wake queue receives a ticket for it. An inner computation that wants to
// keep running captures the Waker handed to it through context (see
// task.WakerFromContext) and calls it before returning pending, mirroring
// the original implementation's cx.waker().wake_by_ref() pattern.
package scheduler

import (
	"context"
	"sync"

	"github.com/AngleSideAngle/swiper/handle"
	"github.com/AngleSideAngle/swiper/queue"
	"github.com/AngleSideAngle/swiper/task"
)

// Config configures the reference scheduler's wake queue.
type Config struct {
	Queue queue.Config
}

// DefaultConfig returns the scheduler's default wake-queue configuration.
func DefaultConfig() Config {
	return Config{Queue: queue.DefaultConfig()}
}

// Ticket is a single wake-queue entry: a task identity plus the generation
// counter in effect when the wake was published. A ticket whose generation
// no longer matches the task's current generation is stale — the task was
// already re-woken (or removed) by the time this ticket is consumed — and
// is discarded rather than triggering a redundant Examine.
type Ticket struct {
	id  *handle.Handle
	gen uint64
}

type entry interface {
	examine(ctx context.Context, wake func()) (pending bool)
}

type taskEntry[R any] struct {
	t      *task.Task[R]
	onDone func(R, error)
}

func (e *taskEntry[R]) examine(ctx context.Context, wake func()) bool {
	ctx = task.ContextWithWaker(ctx, task.Waker(wake))
	p := e.t.Examine(ctx)
	if p.Pending {
		return true
	}
	if e.onDone != nil {
		e.onDone(p.Value, p.Err)
	}
	return false
}

// Runner drives submitted tasks from a single goroutine. It must not be
// shared across goroutines calling Run concurrently — the executor
// contract promises a task is never examined from two executors at once,
// and Runner upholds that by being single-threaded by construction, not by
// locking around Examine.
type Runner struct {
	config  Config
	queue   queue.Queue[Ticket]
	mu      sync.Mutex
	entries map[*handle.Handle]entry
	gen     map[*handle.Handle]uint64
}

// New creates a Runner with the given configuration.
func New(config Config) *Runner {
	return &Runner{
		config:  config,
		queue:   queue.New[Ticket](config.Queue),
		entries: make(map[*handle.Handle]entry),
		gen:     make(map[*handle.Handle]uint64),
	}
}

// Submit registers t with the runner and schedules its first examination.
// onDone, if non-nil, is invoked exactly once when t reaches a terminal
// outcome, with either its value or its error (a *task.PreemptionError on
// preemption) populated.
func Submit[R any](r *Runner, t *task.Task[R], onDone func(R, error)) {
	h := t.Handle()
	r.mu.Lock()
	r.entries[h] = &taskEntry[R]{t: t, onDone: onDone}
	r.mu.Unlock()
	r.wake(context.Background(), h)
}

func (r *Runner) wake(ctx context.Context, h *handle.Handle) {
	r.mu.Lock()
	r.gen[h]++
	g := r.gen[h]
	r.mu.Unlock()
	// Best-effort: a full wake queue under a reference scheduler indicates
	// a runaway producer, not a condition this minimal loop tries to
	// recover from.
	_ = r.queue.Publish(ctx, &Ticket{id: h, gen: g})
}

// Run drains the wake queue, examining one task per ticket, until ctx is
// done or the queue returns an error.
func (r *Runner) Run(ctx context.Context) error {
	for {
		msg, err := r.queue.Consume(ctx)
		if err != nil {
			return err
		}
		ticket := *msg.T()

		r.mu.Lock()
		e, ok := r.entries[ticket.id]
		current := r.gen[ticket.id]
		r.mu.Unlock()

		if !ok || ticket.gen != current {
			_ = msg.Ack()
			continue
		}

		stillPending := e.examine(ctx, func() { r.wake(ctx, ticket.id) })
		_ = msg.Ack()

		if !stillPending {
			r.mu.Lock()
			delete(r.entries, ticket.id)
			delete(r.gen, ticket.id)
			r.mu.Unlock()
		}
	}
}

// Pending reports how many distinct tasks the runner is still tracking.
func (r *Runner) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
