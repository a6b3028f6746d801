package diagnostics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngleSideAngle/swiper/queue"
)

func TestRecorder_RecordPersistsOneObjectPerEvent(t *testing.T) {
	ctx := context.Background()
	r, err := NewRecorder(ctx, t.TempDir())
	require.NoError(t, err)

	evt := &Event[any]{
		Context: &Context{TaskID: "A", Requirement: "motor", EventType: "claimed"},
		Data:    Claimed{TaskID: "A", Requirement: "motor"},
	}
	require.NoError(t, r.Record(ctx, evt))

	objects, err := r.fs.List(ctx, r.baseURL)
	require.NoError(t, err)

	var files int
	for _, o := range objects {
		if !o.IsDir() {
			files++
		}
	}
	assert.Equal(t, 1, files)
}

func TestRecorder_AttributesFlattensPayload(t *testing.T) {
	ctx := context.Background()
	r, err := NewRecorder(ctx, t.TempDir())
	require.NoError(t, err)

	evt := &Event[any]{
		Context: &Context{TaskID: "A", Requirement: "motor", EventType: "claimed"},
		Data:    Claimed{TaskID: "A", Requirement: "motor"},
	}
	attrs, err := r.Attributes(evt)
	require.NoError(t, err)
	assert.Equal(t, "A", attrs["taskID"])
	assert.Equal(t, "motor", attrs["requirement"])
	assert.Equal(t, "claimed", attrs["eventType"])
}

func TestRecorder_ListenPersistsPublishedEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r, err := NewRecorder(ctx, t.TempDir())
	require.NoError(t, err)

	pub := NewPublisher[any](queue.New[Event[any]](queue.DefaultConfig()))
	l := r.Listen(ctx, pub)
	defer l.Stop()

	require.NoError(t, pub.Publish(ctx, &Event[any]{
		Context: &Context{TaskID: "A", EventType: "claimed"},
		Data:    Claimed{TaskID: "A", Requirement: "motor"},
	}))

	require.Eventually(t, func() bool {
		objects, err := r.fs.List(ctx, r.baseURL)
		if err != nil {
			return false
		}
		var files int
		for _, o := range objects {
			if !o.IsDir() {
				files++
			}
		}
		return files == 1
	}, time.Second, 10*time.Millisecond)
}
