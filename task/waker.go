package task

import "context"

// Waker is the registration hook spec.md's executor contract requires: an
// inner computation that returns pending calls it (immediately, or later
// from another goroutine/timer) to ask for re-examination. The core itself
// never calls a Waker — it only carries one through to inner via context,
// the same way the teacher's orchestrator package injects its runtime
// handle into the action context.
type Waker func()

type wakerKey struct{}

// ContextWithWaker attaches w to ctx so inner computations can retrieve it
// with WakerFromContext. Schedulers call this before every Examine.
func ContextWithWaker(ctx context.Context, w Waker) context.Context {
	return context.WithValue(ctx, wakerKey{}, w)
}

// WakerFromContext retrieves a Waker previously attached with
// ContextWithWaker.
func WakerFromContext(ctx context.Context) (Waker, bool) {
	w, ok := ctx.Value(wakerKey{}).(Waker)
	return w, ok
}
