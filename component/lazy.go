package component

import (
	"context"
	"fmt"

	"github.com/kbukum/lazykit/singleton"
)

// Lazy exposes a singleton provider as a Component.
//
// Start does nothing unless warm-up is enabled, in which case it constructs
// the instance. Stop closes the provider.
type Lazy[T any] struct {
	provider    *singleton.Provider[T]
	warm        bool
	healthCheck func(ctx context.Context, v T) error
}

// NewLazy wraps p.
func NewLazy[T any](p *singleton.Provider[T]) *Lazy[T] {
	return &Lazy[T]{provider: p}
}

// WithWarmUp makes Start construct the instance.
func (l *Lazy[T]) WithWarmUp() *Lazy[T] {
	l.warm = true
	return l
}

// WithHealthCheck sets a check run against a constructed instance.
func (l *Lazy[T]) WithHealthCheck(fn func(ctx context.Context, v T) error) *Lazy[T] {
	l.healthCheck = fn
	return l
}

// Provider returns the wrapped provider.
func (l *Lazy[T]) Provider() *singleton.Provider[T] {
	return l.provider
}

// Name returns the provider name.
func (l *Lazy[T]) Name() string {
	return l.provider.Name()
}

// Start warms the provider up when requested.
func (l *Lazy[T]) Start(ctx context.Context) error {
	if !l.warm {
		return nil
	}
	if _, err := l.provider.Get(ctx); err != nil {
		return fmt.Errorf("warming up %s: %w", l.Name(), err)
	}
	return nil
}

// Stop closes the provider.
func (l *Lazy[T]) Stop(context.Context) error {
	return l.provider.Close()
}

// Health maps the provider state: ready is healthy, not yet constructed
// is degraded, closed is unhealthy. A failing health check on a ready
// instance is unhealthy.
func (l *Lazy[T]) Health(ctx context.Context) Health {
	h := Health{Name: l.Name()}
	switch state := l.provider.State(); state {
	case singleton.StateReady:
		h.Status = StatusHealthy
		if l.healthCheck != nil {
			v, err := l.provider.Get(ctx)
			if err == nil {
				err = l.healthCheck(ctx, v)
			}
			if err != nil {
				h.Status = StatusUnhealthy
				h.Message = err.Error()
			}
		}
	case singleton.StateClosed:
		h.Status = StatusUnhealthy
		h.Message = "provider closed"
	default:
		h.Status = StatusDegraded
		h.Message = "not constructed yet (" + state.String() + ")"
	}
	return h
}

// Describe reports the strategy, state and construction count.
func (l *Lazy[T]) Describe() Description {
	s := l.provider.Stats()
	return Description{
		Name: l.Name(),
		Type: "singleton",
		Details: fmt.Sprintf("strategy=%s state=%s constructions=%d failures=%d",
			l.provider.Strategy(), s.State, s.Constructions, s.Failures),
	}
}
