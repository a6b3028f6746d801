package swiper

import (
	"context"
	"fmt"

	"github.com/AngleSideAngle/swiper/diagnostics"
	"github.com/AngleSideAngle/swiper/queue"
	"github.com/AngleSideAngle/swiper/scheduler"
	"github.com/AngleSideAngle/swiper/task"
	"github.com/AngleSideAngle/swiper/tracing"
)

// Service is the facade a host application embeds: one reference scheduler
// and, optionally, one diagnostics recorder, wired together from a Config
// and any Options.
type Service struct {
	config    *Config
	scheduler *scheduler.Runner
	recorder  *diagnostics.Recorder
	publisher *diagnostics.Publisher[any]
}

func (s *Service) init(ctx context.Context, options []Option) error {
	for _, option := range options {
		option(s)
	}
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if err := s.config.Validate(); err != nil {
		return fmt.Errorf("swiper: invalid configuration: %w", err)
	}
	return s.ensureBaseSetup(ctx)
}

func (s *Service) ensureBaseSetup(ctx context.Context) error {
	if s.config.Tracing.Enabled {
		if err := tracing.Init(s.config.Tracing.ServiceName, s.config.Tracing.ServiceVersion, s.config.Tracing.OutputFile); err != nil {
			return fmt.Errorf("swiper: initialising tracing: %w", err)
		}
	}

	if s.scheduler == nil {
		schedulerConfig := scheduler.DefaultConfig()
		if s.config.Scheduler.QueueBuffer > 0 {
			schedulerConfig.Queue = queue.Config{
				MaxRetries:  schedulerConfig.Queue.MaxRetries,
				RetryDelay:  schedulerConfig.Queue.RetryDelay,
				DeadLetter:  schedulerConfig.Queue.DeadLetter,
				QueueBuffer: s.config.Scheduler.QueueBuffer,
			}
		}
		s.scheduler = scheduler.New(schedulerConfig)
	}

	if s.recorder == nil && s.config.Diagnostics.Enabled {
		recorder, err := diagnostics.NewRecorder(ctx, s.config.Diagnostics.SinkURL)
		if err != nil {
			return fmt.Errorf("swiper: initialising diagnostics recorder: %w", err)
		}
		s.recorder = recorder
	}
	if s.recorder != nil {
		s.publisher = diagnostics.NewPublisher[any](queue.New[diagnostics.Event[any]](queue.DefaultConfig()))
		s.recorder.Listen(ctx, s.publisher)
	}

	return nil
}

// Scheduler returns the facade's reference scheduler.
func (s *Service) Scheduler() *scheduler.Runner {
	return s.scheduler
}

// Diagnostics returns the facade's diagnostics recorder, or nil if
// diagnostics were never enabled.
func (s *Service) Diagnostics() *diagnostics.Recorder {
	return s.recorder
}

// New builds a Service from the supplied Options, defaulting anything left
// unset.
func New(ctx context.Context, options ...Option) (*Service, error) {
	ret := &Service{}
	if err := ret.init(ctx, options); err != nil {
		return nil, err
	}
	return ret, nil
}

// taskPublisher adapts a Service's any-typed diagnostics publisher into a
// task.Observer, translating each requirement transition into the matching
// diagnostics payload before publishing it.
type taskPublisher struct {
	ctx       context.Context
	taskID    string
	publisher *diagnostics.Publisher[any]
}

func (p *taskPublisher) Claimed(requirement, stolenFrom string) {
	p.publish("claimed", requirement, diagnostics.Claimed{TaskID: p.taskID, Requirement: requirement, StolenFrom: stolenFrom})
}

func (p *taskPublisher) Stolen(requirement, newHolder string) {
	p.publish("stolen", requirement, diagnostics.Stolen{TaskID: p.taskID, Requirement: requirement, NewHolder: newHolder})
}

func (p *taskPublisher) Released(requirement string) {
	p.publish("released", requirement, diagnostics.Released{TaskID: p.taskID, Requirement: requirement})
}

func (p *taskPublisher) publish(eventType, requirement string, data any) {
	_ = p.publisher.Publish(p.ctx, diagnostics.NewEvent(
		&diagnostics.Context{TaskID: p.taskID, Requirement: requirement, EventType: eventType},
		data,
	))
}

// Submit hands t to s's scheduler, the way scheduler.Submit does directly,
// except that if diagnostics are enabled t is first given an Observer that
// publishes a Claimed/Stolen/Released event for every requirement
// transition Examine makes, and a Completed event is published once t
// reaches its terminal outcome, before onDone runs. A free function, not a
// method, since Go has no generic methods.
func Submit[R any](ctx context.Context, s *Service, t *task.Task[R], onDone func(R, error)) {
	if s.publisher != nil {
		t.Observe(&taskPublisher{ctx: ctx, taskID: t.Handle().String(), publisher: s.publisher})
	}
	scheduler.Submit(s.scheduler, t, func(value R, err error) {
		if s.publisher != nil {
			errText := ""
			if err != nil {
				errText = err.Error()
			}
			_ = s.publisher.Publish(ctx, diagnostics.NewEvent(
				&diagnostics.Context{TaskID: t.Handle().String(), EventType: "completed"},
				any(diagnostics.Completed{TaskID: t.Handle().String(), Err: errText}),
			))
		}
		onDone(value, err)
	})
}
