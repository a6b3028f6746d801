package swiper

import (
	"github.com/AngleSideAngle/swiper/diagnostics"
	"github.com/AngleSideAngle/swiper/scheduler"
)

// Option configures a Service under construction.
type Option func(s *Service)

// WithConfig sets the Service's Config, overriding any file- or
// default-sourced one.
func WithConfig(config *Config) Option {
	return func(s *Service) { s.config = config }
}

// WithScheduler supplies a pre-built scheduler.Runner, overriding the one
// New would otherwise build from Config.
func WithScheduler(runner *scheduler.Runner) Option {
	return func(s *Service) { s.scheduler = runner }
}

// WithDiagnosticsRecorder supplies a pre-built diagnostics.Recorder,
// overriding the one New would otherwise build from Config.
func WithDiagnosticsRecorder(recorder *diagnostics.Recorder) Option {
	return func(s *Service) { s.recorder = recorder }
}
