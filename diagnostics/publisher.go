package diagnostics

import (
	"context"

	"github.com/AngleSideAngle/swiper/internal/clock"
	"github.com/AngleSideAngle/swiper/queue"
)

// Publisher fans a typed event out to its own queue and, if attached, to a
// shared Event[any] queue that a single catch-all Listener can subscribe to
// without knowing about every concrete payload type.
type Publisher[T any] struct {
	q      queue.Queue[Event[T]]
	anyPub *Publisher[any]
}

// NewPublisher creates a Publisher backed by q.
func NewPublisher[T any](q queue.Queue[Event[T]]) *Publisher[T] {
	return &Publisher[T]{q: q}
}

// Publish delivers event to this publisher's queue and, transitively, to the
// attached any-typed publisher.
func (p *Publisher[T]) Publish(ctx context.Context, event *Event[T]) error {
	event.CreatedAt = clock.Now()
	if p.anyPub != nil {
		_ = p.anyPub.Publish(ctx, &Event[any]{
			Context:   event.Context,
			CreatedAt: event.CreatedAt,
			Data:      event.Data,
		})
	}
	return p.q.Publish(ctx, event)
}

// Consume retrieves and acknowledges the next event on this publisher's
// queue, blocking until one is available or ctx is done.
func (p *Publisher[T]) Consume(ctx context.Context) (*Event[T], error) {
	msg, err := p.q.Consume(ctx)
	if err != nil {
		return nil, err
	}
	if err := msg.Ack(); err != nil {
		return nil, err
	}
	return msg.T(), nil
}
