package singleton

import (
	"fmt"

	"github.com/kbukum/lazykit/logger"
	"github.com/kbukum/lazykit/observability"
	"github.com/kbukum/lazykit/resilience"
)

// Option configures a Provider.
type Option func(*options)

type options struct {
	name     string
	strategy Strategy
	log      *logger.Logger
	metrics  *observability.ProviderMetrics
	tracing  bool
	closer   func(any) error
	retry    *resilience.RetryConfig
}

func defaultOptions() options {
	return options{
		strategy: DoubleChecked,
		tracing:  true,
	}
}

// WithName sets the name used in logs, spans, metrics and errors.
// Defaults to the type name of T.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithStrategy selects the initialization strategy.
func WithStrategy(s Strategy) Option {
	return func(o *options) { o.strategy = s }
}

// WithLogger sets the logger. Defaults to the "singleton" named logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithMetrics records construction metrics on m.
func WithMetrics(m *observability.ProviderMetrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithTracing toggles the construction span. Enabled by default.
func WithTracing(enabled bool) Option {
	return func(o *options) { o.tracing = enabled }
}

// WithCloser sets the teardown function run by Close. Without it, Close
// calls the instance's own Close method when it has one.
//
// T must match the provider's type; a mismatch is reported by Close.
func WithCloser[T any](fn func(T) error) Option {
	return func(o *options) {
		if fn == nil {
			o.closer = nil
			return
		}
		o.closer = func(v any) error {
			t, ok := v.(T)
			if !ok {
				return fmt.Errorf("singleton: closer expects %T, instance is %T", *new(T), v)
			}
			return fn(t)
		}
	}
}

// WithRetry retries a failing constructor within a single Get. The
// critical section stays held while retrying.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(o *options) {
		if !cfg.Enabled() {
			o.retry = nil
			return
		}
		o.retry = &cfg
	}
}
