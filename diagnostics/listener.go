package diagnostics

import (
	"context"
	"log"
)

// Listener drains a Publisher's queue from its own goroutine and hands each
// event to handler, one at a time, in delivery order.
type Listener[T any] struct {
	publisher *Publisher[T]
	handler   func(*Event[T])
	cancel    context.CancelFunc
}

// NewListener builds a Listener over publisher. Call Start to begin
// consuming.
func NewListener[T any](publisher *Publisher[T], handler func(*Event[T])) *Listener[T] {
	return &Listener[T]{publisher: publisher, handler: handler}
}

// Start begins consuming events in a background goroutine.
func (l *Listener[T]) Start(ctx context.Context) {
	ctx, l.cancel = context.WithCancel(ctx)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			event, err := l.publisher.Consume(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("diagnostics: error consuming event: %v", err)
				continue
			}
			l.handler(event)
		}
	}()
}

// Stop ends the listener's background goroutine. Safe to call multiple
// times; a no-op if Start was never called.
func (l *Listener[T]) Stop() {
	if l.cancel != nil {
		l.cancel()
	}
}
