package singleton

import (
	"context"
	"io"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/kbukum/lazykit/errors"
	"github.com/kbukum/lazykit/logger"
	"github.com/kbukum/lazykit/observability"
)

// Provider owns the lazily constructed instance of T.
//
// The zero value is not usable; create providers with New.
type Provider[T any] struct {
	id        string
	name      string
	strategy  Strategy
	construct Constructor[T]
	closer    func(any) error
	log       *logger.Logger
	metrics   *observability.ProviderMetrics
	tracing   bool

	// mu guards construction and teardown. instance is only stored while
	// mu is held; readers may load it without mu.
	mu       sync.Mutex
	instance atomic.Pointer[T]
	state    atomic.Int32

	attempts      atomic.Int64
	failures      atomic.Int64
	constructions atomic.Int64
}

// Stats is a snapshot of a provider's construction history.
type Stats struct {
	Attempts      int64
	Failures      int64
	Constructions int64
	State         State
}

// New creates a provider for construct. With the Eager strategy the
// instance is built before New returns and a construction failure is
// returned as the error.
func New[T any](construct Constructor[T], opts ...Option) (*Provider[T], error) {
	if construct == nil {
		return nil, apperrors.InvalidInput("constructor", "constructor is nil").WithCause(ErrNilConstructor)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if _, err := ParseStrategy(string(o.strategy)); err != nil {
		return nil, apperrors.InvalidInput("strategy", err.Error())
	}
	if o.name == "" {
		o.name = reflect.TypeFor[T]().String()
	}
	if o.log == nil {
		o.log = logger.Get("singleton")
	}
	if o.retry != nil {
		construct = withRetry(construct, retryConfig(*o.retry, o.log, o.name))
	}

	p := &Provider[T]{
		id:        uuid.NewString(),
		name:      o.name,
		strategy:  o.strategy,
		construct: construct,
		closer:    o.closer,
		metrics:   o.metrics,
		tracing:   o.tracing,
	}
	p.log = o.log.WithProvider(p.name, p.id, string(p.strategy))

	if p.strategy == Eager {
		p.mu.Lock()
		_, err := p.constructLocked(context.Background())
		p.mu.Unlock()
		if err != nil {
			return nil, err
		}
	}
	return p, nil
}

// MustNew is like New but panics on error.
func MustNew[T any](construct Constructor[T], opts ...Option) *Provider[T] {
	p, err := New(construct, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// Get returns the instance, constructing it on first use.
//
// Concurrent first calls construct once; all of them receive the same
// instance. A failed construction is returned to the caller that ran it
// and is not remembered.
func (p *Provider[T]) Get(ctx context.Context) (T, error) {
	if p.strategy.lockFree() {
		if v := p.instance.Load(); v != nil {
			return *v, nil
		}
	}
	return p.getSlow(ctx)
}

func (p *Provider[T]) getSlow(ctx context.Context) (T, error) {
	if p.metrics != nil {
		p.metrics.WaitStart(ctx, p.name)
	}
	p.mu.Lock()
	if p.metrics != nil {
		p.metrics.WaitEnd(ctx, p.name)
	}
	defer p.mu.Unlock()

	// Recheck: another caller may have finished while we waited.
	if v := p.instance.Load(); v != nil {
		return *v, nil
	}
	if State(p.state.Load()) == StateClosed {
		var zero T
		return zero, apperrors.ProviderClosed(p.name)
	}
	return p.constructLocked(ctx)
}

// constructLocked runs the constructor and publishes the result.
// Caller must hold mu.
func (p *Provider[T]) constructLocked(ctx context.Context) (T, error) {
	var zero T
	attempt := p.attempts.Add(1)
	p.state.Store(int32(StateConstructing))

	var span trace.Span
	if p.tracing {
		ctx, span = observability.StartSpan(ctx, observability.SpanConstruct, trace.WithAttributes(
			attribute.String(observability.AttrProvider, p.name),
			attribute.String(observability.AttrProviderID, p.id),
			attribute.String(observability.AttrStrategy, string(p.strategy)),
			attribute.Int64(observability.AttrAttempt, attempt),
		))
	}
	log := p.log.WithContext(ctx)
	log.Debug("constructing instance", logger.Fields(logger.FieldAttempt, attempt))

	start := time.Now()
	v, err := call(ctx, p.construct)
	elapsed := time.Since(start)

	if p.metrics != nil {
		p.metrics.RecordConstruction(ctx, p.name, string(p.strategy), err, elapsed)
	}

	if err != nil {
		p.failures.Add(1)
		p.state.Store(int32(StateUninitialized))
		cerr := &ConstructionError{Provider: p.name, Attempt: attempt, Err: err}
		if span != nil {
			observability.EndSpan(span, cerr)
		}
		log.Warn("construction failed", logger.MergeWithDuration(
			logger.Fields(logger.FieldAttempt, attempt, logger.FieldError, err.Error()), elapsed))
		return zero, cerr
	}

	p.instance.Store(&v)
	p.constructions.Add(1)
	p.state.Store(int32(StateReady))
	if span != nil {
		observability.EndSpan(span, nil)
	}
	log.Info("instance ready", logger.MergeWithDuration(
		logger.Fields(logger.FieldAttempt, attempt), elapsed))
	return v, nil
}

// MustGet is like Get but panics with the construction error.
func (p *Provider[T]) MustGet(ctx context.Context) T {
	v, err := p.Get(ctx)
	if err != nil {
		panic(err)
	}
	return v
}

// Close releases the instance. If the instance was never constructed it
// only marks the provider closed. Close is idempotent; Get after Close
// returns an error matching ErrClosed.
func (p *Provider[T]) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if State(p.state.Load()) == StateClosed {
		return nil
	}
	p.state.Store(int32(StateClosed))
	v := p.instance.Swap(nil)
	if v == nil {
		return nil
	}

	if p.metrics != nil {
		p.metrics.RecordClose(context.Background(), p.name)
	}
	if err := p.release(*v); err != nil {
		p.log.Error("close failed", logger.Fields(logger.FieldError, err.Error()))
		return err
	}
	p.log.Debug("instance closed")
	return nil
}

func (p *Provider[T]) release(v T) error {
	if p.closer != nil {
		return p.closer(v)
	}
	if c, ok := any(v).(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// State returns the current lifecycle state.
func (p *Provider[T]) State() State {
	return State(p.state.Load())
}

// IsInitialized reports whether the instance has been constructed and not
// torn down.
func (p *Provider[T]) IsInitialized() bool {
	return p.instance.Load() != nil
}

// Stats returns a snapshot of the construction counters.
func (p *Provider[T]) Stats() Stats {
	return Stats{
		Attempts:      p.attempts.Load(),
		Failures:      p.failures.Load(),
		Constructions: p.constructions.Load(),
		State:         p.State(),
	}
}

// Name returns the provider name.
func (p *Provider[T]) Name() string { return p.name }

// ID returns the unique provider ID assigned by New.
func (p *Provider[T]) ID() string { return p.id }

// Strategy returns the initialization strategy.
func (p *Provider[T]) Strategy() Strategy { return p.strategy }
