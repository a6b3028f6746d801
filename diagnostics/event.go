// Package diagnostics provides an observability side-channel for the
// ownership core: a generic publish/subscribe event bus carrying the
// lifecycle moments (claimed, stolen, released, completed) that the core
// itself never logs on its own, plus a Recorder that persists them for
// later inspection. The core exposes these moments through task.Observer
// without importing this package; a host wires an Observer implementation
// backed by a Publisher (see the root package's Submit) so that attaching
// diagnostics never costs the core a dependency. None of it is required
// for correctness, and publishing is a buffered channel send, not a
// network call — Examine does not wait on a diagnostics sink.
package diagnostics

import (
	"time"

	"github.com/AngleSideAngle/swiper/internal/clock"
)

// Context identifies which task and requirement a diagnostic event is
// about, mirroring the teacher's event.Context without the workflow/process
// fields this domain has no use for.
type Context struct {
	TaskID      string `json:"taskID"`
	Requirement string `json:"requirement,omitempty"`
	EventType   string `json:"eventType"`
}

// Event wraps a typed payload with the context and timestamp every listener
// needs regardless of payload type.
type Event[T any] struct {
	Context   *Context  `json:"context"`
	CreatedAt time.Time `json:"createdAt"`
	Data      T         `json:"data"`
}

// NewEvent builds an Event, stamping CreatedAt at construction time; a
// Publisher restamps it at the moment of actual publication.
func NewEvent[T any](ctx *Context, data T) *Event[T] {
	return &Event[T]{Context: ctx, CreatedAt: clock.Now(), Data: data}
}
