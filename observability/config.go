package observability

import (
	"time"

	"github.com/kbukum/lazykit/validation"
)

// Config holds OTLP export settings shared by the tracer and meter.
type Config struct {
	// Enabled turns exporting on. When false the global providers stay no-op.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint" validate:"omitempty,hostname_port"`
	// Insecure allows plain HTTP (for development).
	Insecure bool `yaml:"insecure" mapstructure:"insecure"`
	// SampleRate is the trace sampling rate (0.0 to 1.0).
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	// Interval is the metric export interval.
	Interval time.Duration `yaml:"interval" mapstructure:"interval" validate:"gte=0"`
	// Environment is attached to the exported resource.
	Environment string `yaml:"environment" mapstructure:"environment"`
}

// DefaultConfig returns sensible defaults for development.
func DefaultConfig() Config {
	return Config{
		Enabled:     false,
		Endpoint:    "localhost:4318",
		Insecure:    true,
		SampleRate:  1.0,
		Interval:    15 * time.Second,
		Environment: "development",
	}
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	d := DefaultConfig()
	if c.Endpoint == "" {
		c.Endpoint = d.Endpoint
	}
	if c.SampleRate == 0 {
		c.SampleRate = d.SampleRate
	}
	if c.Interval == 0 {
		c.Interval = d.Interval
	}
	if c.Environment == "" {
		c.Environment = d.Environment
	}
}

// Validate checks the config; an endpoint is required once exporting is enabled.
func (c *Config) Validate() error {
	v := validation.New().Merge("", validation.Validate(c))
	if c.Enabled {
		v.Required("endpoint", c.Endpoint)
	}
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}
