package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/lazykit/logger"
)

// Status attribute values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// InitMeter initializes the OpenTelemetry meter provider and installs it
// globally. The returned provider must be shut down on exit.
func InitMeter(ctx context.Context, cfg Config, serviceName, serviceVersion string) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(serviceName, serviceVersion, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", serviceName,
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// ProviderMetrics holds the instruments recorded on a provider's slow path.
// The lock-free fast path is never instrumented.
type ProviderMetrics struct {
	constructions        metric.Int64Counter
	constructionDuration metric.Float64Histogram
	waiting              metric.Int64UpDownCounter
	closed               metric.Int64Counter
}

// NewProviderMetrics creates the provider instruments on meter.
func NewProviderMetrics(meter metric.Meter) (*ProviderMetrics, error) {
	constructions, err := meter.Int64Counter("lazykit.singleton.constructions",
		metric.WithDescription("Constructor invocations by provider and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating constructions counter: %w", err)
	}

	constructionDuration, err := meter.Float64Histogram("lazykit.singleton.construction.duration",
		metric.WithDescription("Duration of constructor invocations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating construction.duration histogram: %w", err)
	}

	waiting, err := meter.Int64UpDownCounter("lazykit.singleton.waiting",
		metric.WithDescription("Callers blocked on a provider's critical section"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating waiting gauge: %w", err)
	}

	closed, err := meter.Int64Counter("lazykit.singleton.closed",
		metric.WithDescription("Providers torn down"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating closed counter: %w", err)
	}

	return &ProviderMetrics{
		constructions:        constructions,
		constructionDuration: constructionDuration,
		waiting:              waiting,
		closed:               closed,
	}, nil
}

// RecordConstruction records one constructor invocation.
func (m *ProviderMetrics) RecordConstruction(ctx context.Context, provider, strategy string, err error, d time.Duration) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	m.constructions.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrProvider, provider),
		attribute.String(AttrStrategy, strategy),
		attribute.String(AttrStatus, status),
	))
	m.constructionDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String(AttrProvider, provider),
		attribute.String(AttrStatus, status),
	))
}

// WaitStart marks a caller entering the critical section queue.
func (m *ProviderMetrics) WaitStart(ctx context.Context, provider string) {
	m.waiting.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrProvider, provider)))
}

// WaitEnd marks a caller leaving the critical section queue.
func (m *ProviderMetrics) WaitEnd(ctx context.Context, provider string) {
	m.waiting.Add(ctx, -1, metric.WithAttributes(attribute.String(AttrProvider, provider)))
}

// RecordClose records a provider teardown.
func (m *ProviderMetrics) RecordClose(ctx context.Context, provider string) {
	m.closed.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrProvider, provider)))
}
