package swiper

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the facade's configuration. It
// can be populated from YAML, environment-driven tooling, or hand-built in
// code. The zero value does not pass Validate (Scheduler.QueueBuffer must be
// positive); start from DefaultConfig and modify the fields you need.
type Config struct {
	Scheduler   SchedulerConfig   `json:"scheduler" yaml:"scheduler"`
	Diagnostics DiagnosticsConfig `json:"diagnostics" yaml:"diagnostics"`
	Tracing     TracingConfig     `json:"tracing" yaml:"tracing"`
}

// SchedulerConfig configures the reference scheduler's wake queue.
type SchedulerConfig struct {
	QueueBuffer int `json:"queueBuffer" yaml:"queueBuffer"`
}

// DiagnosticsConfig configures the lifecycle-event recorder. Diagnostics
// are opt-in: Enabled defaults to false so embedding a Service never forces
// a storage dependency on a caller that doesn't want one.
type DiagnosticsConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	SinkURL string `json:"sinkURL" yaml:"sinkURL"`
}

// TracingConfig configures OpenTelemetry span export.
type TracingConfig struct {
	Enabled        bool   `json:"enabled" yaml:"enabled"`
	ServiceName    string `json:"serviceName" yaml:"serviceName"`
	ServiceVersion string `json:"serviceVersion" yaml:"serviceVersion"`
	OutputFile     string `json:"outputFile" yaml:"outputFile"`
}

// DefaultConfig returns a Config populated with the same defaults the
// facade previously applied inline. Callers may modify the returned struct
// before passing it to WithConfig.
func DefaultConfig() *Config {
	return &Config{
		Scheduler: SchedulerConfig{
			QueueBuffer: 256,
		},
		Tracing: TracingConfig{
			ServiceName:    "swiper",
			ServiceVersion: "0.1.0",
		},
	}
}

// LoadConfig reads and parses a YAML configuration file, filling in any
// field left unset with DefaultConfig's value.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("swiper: reading config %s: %w", path, err)
	}
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("swiper: parsing config %s: %w", path, err)
	}
	return config, nil
}

// Validate returns an error describing the first invalid setting found, or
// nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Scheduler.QueueBuffer <= 0 {
		return fmt.Errorf("scheduler.queueBuffer must be > 0")
	}
	if c.Diagnostics.Enabled && c.Diagnostics.SinkURL == "" {
		return fmt.Errorf("diagnostics.sinkURL must be set when diagnostics.enabled is true")
	}
	return nil
}
