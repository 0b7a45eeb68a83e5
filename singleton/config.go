package singleton

import (
	"github.com/kbukum/lazykit/resilience"
	"github.com/kbukum/lazykit/validation"
)

// Config is the file/env representation of provider options.
type Config struct {
	// Strategy is one of double_checked, synchronized or eager.
	Strategy string `yaml:"strategy" mapstructure:"strategy" validate:"omitempty,oneof=double_checked synchronized eager"`
	// WarmUp asks the application to construct the instance at startup
	// instead of on first Get. Unlike Eager, a failure only fails startup.
	WarmUp bool `yaml:"warm_up" mapstructure:"warm_up"`
	// DisableTracing turns off the construction span.
	DisableTracing bool `yaml:"disable_tracing" mapstructure:"disable_tracing"`
	// Retry retries the constructor within one Get. Off unless max_attempts > 1.
	Retry resilience.RetryConfig `yaml:"retry" mapstructure:"retry"`
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.Strategy == "" {
		c.Strategy = string(DoubleChecked)
	}
}

// Validate checks the config.
func (c *Config) Validate() error {
	return validation.Validate(c)
}

// FromConfig converts cfg into options. cfg is expected to be validated;
// an unknown strategy falls back to DoubleChecked.
func FromConfig(cfg Config) []Option {
	strategy, err := ParseStrategy(cfg.Strategy)
	if err != nil {
		strategy = DoubleChecked
	}
	opts := []Option{
		WithStrategy(strategy),
		WithTracing(!cfg.DisableTracing),
	}
	if cfg.Retry.Enabled() {
		opts = append(opts, WithRetry(cfg.Retry))
	}
	return opts
}
