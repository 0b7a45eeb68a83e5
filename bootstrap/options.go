package bootstrap

import (
	"time"

	"github.com/kbukum/lazykit/logger"
)

// Option configures the App during creation.
// Options are non-generic so they can be used with any config type.
type Option func(*appOptions)

// appOptions collects all option values before applying to App.
type appOptions struct {
	logger          *logger.Logger
	gracefulTimeout *time.Duration
	skipTelemetry   bool
	summary         bool
}

// resolveOptions applies all options and returns the collected values.
func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{summary: true}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets a custom logger for the application.
// If not set, the logger is initialized from the config's Logging field.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithGracefulTimeout sets the maximum duration for graceful shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.gracefulTimeout = &d
	}
}

// WithoutTelemetry skips exporter setup even when telemetry is enabled in
// config. Instruments then record into whatever global providers exist.
func WithoutTelemetry() Option {
	return func(o *appOptions) {
		o.skipTelemetry = true
	}
}

// WithoutSummary disables the startup summary.
func WithoutSummary() Option {
	return func(o *appOptions) {
		o.summary = false
	}
}
