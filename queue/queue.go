// Package queue provides the generic, in-memory wake queue the reference
// scheduler uses to learn which task to re-examine next. It is adapted
// directly from the teacher's generic messaging queue: publish/consume
// with Ack/Nack and a retry path. A Nacked message is requeued after
// RetryDelay, up to MaxRetries times, and then dead-lettered; a retry that
// finds the buffer full is dropped. A message that is consumed and never
// acknowledged or Nacked (for instance because the consumer panicked) is
// not redelivered.
package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Queue is an abstract message queue for any payload type.
type Queue[T any] interface {
	// Publish adds a new message with payload t to the queue.
	Publish(ctx context.Context, t *T) error
	// Consume retrieves a single message from the queue, blocking until one
	// is available or ctx is done.
	Consume(ctx context.Context) (Message[T], error)
}

// Message represents a message retrieved from a queue.
type Message[T any] interface {
	// T returns the payload of this message.
	T() *T
	// Ack acknowledges successful processing of this message.
	Ack() error
	// Nack indicates failure in processing this message and, within the
	// configured retry budget, requeues it.
	Nack(err error) error
}

// Config configures the in-memory queue implementation.
type Config struct {
	MaxRetries  int
	RetryDelay  time.Duration
	DeadLetter  bool
	QueueBuffer int
}

// DefaultConfig returns sensible defaults for a wake queue: a handful of
// retries with a short delay, buffered deeply enough that a burst of
// simultaneous steals never blocks the publishing side.
func DefaultConfig() Config {
	return Config{
		MaxRetries:  3,
		RetryDelay:  10 * time.Millisecond,
		DeadLetter:  true,
		QueueBuffer: 256,
	}
}

type message[T any] struct {
	id         string
	payload    T
	queue      *memoryQueue[T]
	retryCount int
	mu         sync.Mutex
	processed  bool
}

func (m *message[T]) T() *T { return &m.payload }

func (m *message[T]) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("queue: message already processed")
	}
	m.processed = true
	return nil
}

func (m *message[T]) Nack(_ error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("queue: message already processed")
	}
	m.processed = true
	m.retryCount++

	if m.retryCount <= m.queue.config.MaxRetries {
		go func() {
			time.Sleep(m.queue.config.RetryDelay)
			retry := &message[T]{
				id:         m.id,
				payload:    m.payload,
				queue:      m.queue,
				retryCount: m.retryCount,
			}
			select {
			case m.queue.messages <- retry:
			default:
			}
		}()
	} else if m.queue.config.DeadLetter {
		m.queue.dlqMu.Lock()
		m.queue.dlq = append(m.queue.dlq, m)
		m.queue.dlqMu.Unlock()
	}
	return nil
}

// memoryQueue is the in-memory Queue implementation.
type memoryQueue[T any] struct {
	messages chan *message[T]
	dlq      []*message[T]
	dlqMu    sync.Mutex
	config   Config
}

// New creates an in-memory Queue[T].
func New[T any](config Config) Queue[T] {
	if config.QueueBuffer <= 0 {
		config.QueueBuffer = DefaultConfig().QueueBuffer
	}
	return &memoryQueue[T]{
		messages: make(chan *message[T], config.QueueBuffer),
		config:   config,
	}
}

func (q *memoryQueue[T]) Publish(ctx context.Context, t *T) error {
	msg := &message[T]{id: uuid.New().String(), payload: *t, queue: q}
	select {
	case q.messages <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *memoryQueue[T]) Consume(ctx context.Context) (Message[T], error) {
	select {
	case msg := <-q.messages:
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Size returns the current number of queued, undelivered messages.
func (q *memoryQueue[T]) Size() int { return len(q.messages) }

// DLQSize returns the number of messages that exhausted their retry budget.
func (q *memoryQueue[T]) DLQSize() int {
	q.dlqMu.Lock()
	defer q.dlqMu.Unlock()
	return len(q.dlq)
}
