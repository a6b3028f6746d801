package diagnostics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"github.com/viant/structology/conv"

	"github.com/AngleSideAngle/swiper/internal/idgen"
)

// Recorder persists every any-typed event it sees to its own JSON object
// under baseURL, the way the teacher's filesystem DAO persists one object
// per entity rather than appending to a shared log — convenient here too,
// since a single stuck writer can never corrupt another event's record.
type Recorder struct {
	fs      afs.Service
	baseURL string
	// converter is shared across calls; mu guards it since conv.Converter
	// is not documented safe for concurrent use.
	converter *conv.Converter
	mu        sync.Mutex
}

// NewRecorder creates a Recorder writing under baseURL, creating the
// directory if it does not already exist.
func NewRecorder(ctx context.Context, baseURL string) (*Recorder, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("diagnostics: recorder base URL cannot be empty")
	}
	fs := afs.New()
	exists, err := fs.Exists(ctx, baseURL)
	if err != nil {
		return nil, fmt.Errorf("diagnostics: checking recorder base URL: %w", err)
	}
	if !exists {
		if err := fs.Create(ctx, baseURL, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("diagnostics: creating recorder base URL: %w", err)
		}
	}
	return &Recorder{
		fs:        fs,
		baseURL:   url.Normalize(baseURL, file.Scheme),
		converter: conv.NewConverter(conv.DefaultOptions()),
	}, nil
}

// Listen subscribes the recorder to publisher, persisting every event it
// sees from its own background goroutine until the listener is stopped.
// Persistence errors are swallowed beyond a log line — diagnostics must
// never be able to stall the bus a real task's own wake-ups might share.
func (r *Recorder) Listen(ctx context.Context, publisher *Publisher[any]) *Listener[any] {
	l := NewListener(publisher, func(event *Event[any]) {
		if err := r.Record(ctx, event); err != nil {
			log.Printf("diagnostics: recording event: %v", err)
		}
	})
	l.Start(ctx)
	return l
}

// Record persists event as its own JSON object.
func (r *Recorder) Record(ctx context.Context, event *Event[any]) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("diagnostics: marshalling event: %w", err)
	}
	objectURL := url.Join(r.baseURL, fmt.Sprintf("%s.json", idgen.New()))
	return r.fs.Upload(ctx, objectURL, file.DefaultFileOsMode, bytes.NewReader(data))
}

// Count returns the number of events persisted so far, by listing baseURL.
// It exists for tests and simple health checks; a recorder handling real
// volume should query its sink directly rather than listing a directory.
func (r *Recorder) Count(ctx context.Context) (int, error) {
	objects, err := r.fs.List(ctx, r.baseURL)
	if err != nil {
		return 0, fmt.Errorf("diagnostics: listing recorder base URL: %w", err)
	}
	var files int
	for _, o := range objects {
		if !o.IsDir() {
			files++
		}
	}
	return files, nil
}

// Attributes flattens event.Data into a generic string-keyed map, suitable
// for attaching to a trace span or a structured log line without either of
// those callers needing to know the concrete payload type.
func (r *Recorder) Attributes(event *Event[any]) (map[string]interface{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	attrs := map[string]interface{}{}
	if err := r.converter.Convert(event.Data, &attrs); err != nil {
		return nil, fmt.Errorf("diagnostics: flattening event data: %w", err)
	}
	attrs["taskID"] = event.Context.TaskID
	if event.Context.Requirement != "" {
		attrs["requirement"] = event.Context.Requirement
	}
	attrs["eventType"] = event.Context.EventType
	return attrs, nil
}
