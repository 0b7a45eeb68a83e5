package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Enabled {
		t.Error("expected telemetry disabled by default")
	}
	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("expected Endpoint 'localhost:4318', got %s", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected SampleRate 1.0, got %f", cfg.SampleRate)
	}
	if cfg.Interval != 15*time.Second {
		t.Errorf("expected Interval 15s, got %v", cfg.Interval)
	}
}

func TestConfigApplyDefaultsKeepsValues(t *testing.T) {
	cfg := Config{Endpoint: "otel:4318", SampleRate: 0.5}
	cfg.ApplyDefaults()
	if cfg.Endpoint != "otel:4318" || cfg.SampleRate != 0.5 {
		t.Errorf("expected explicit values to survive, got %+v", cfg)
	}
	if cfg.Interval != 15*time.Second {
		t.Errorf("expected default interval, got %v", cfg.Interval)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"disabled empty", Config{}, false},
		{"enabled valid", Config{Enabled: true, Endpoint: "localhost:4318", SampleRate: 1}, false},
		{"enabled no endpoint", Config{Enabled: true}, true},
		{"bad endpoint", Config{Endpoint: "not a host"}, true},
		{"sample rate too high", Config{SampleRate: 2}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestSetupDisabledIsNoop(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{}, "svc", "dev")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("expected noop shutdown, got %v", err)
	}
}

func TestSampler(t *testing.T) {
	if sampler(1).Description() != sdktrace.AlwaysSample().Description() {
		t.Error("expected AlwaysSample for rate 1")
	}
	if sampler(0).Description() != sdktrace.NeverSample().Description() {
		t.Error("expected NeverSample for rate 0")
	}
}

func TestProviderMetricsNoop(t *testing.T) {
	m, err := NewProviderMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}
	ctx := context.Background()
	m.RecordConstruction(ctx, "p", "double_checked", nil, time.Millisecond)
	m.WaitStart(ctx, "p")
	m.WaitEnd(ctx, "p")
	m.RecordClose(ctx, "p")
}

func TestProviderMetricsRecorded(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	m, err := NewProviderMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()
	m.RecordConstruction(ctx, "settings", "eager", errors.New("boom"), time.Millisecond)
	m.RecordConstruction(ctx, "settings", "eager", nil, time.Millisecond)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}

	byStatus := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if md.Name != "lazykit.singleton.constructions" {
				continue
			}
			sum, ok := md.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("expected Sum[int64], got %T", md.Data)
			}
			for _, dp := range sum.DataPoints {
				status, _ := dp.Attributes.Value(attribute.Key(AttrStatus))
				byStatus[status.AsString()] += dp.Value
			}
		}
	}
	if byStatus[StatusOK] != 1 || byStatus[StatusError] != 1 {
		t.Errorf("expected one ok and one error construction, got %v", byStatus)
	}
}

func TestEndSpanStatus(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())
	tracer := tp.Tracer("test")

	_, ok := tracer.Start(context.Background(), "ok")
	EndSpan(ok, nil)
	_, failed := tracer.Start(context.Background(), "failed")
	EndSpan(failed, errors.New("boom"))

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Status.Code != codes.Ok {
		t.Errorf("expected Ok status, got %v", spans[0].Status.Code)
	}
	if spans[1].Status.Code != codes.Error {
		t.Errorf("expected Error status, got %v", spans[1].Status.Code)
	}
	if len(spans[1].Events) == 0 {
		t.Error("expected the error to be recorded as an event")
	}
}

func TestStartSpanWithoutProvider(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "noop")
	defer span.End()
	if ctx == nil {
		t.Fatal("expected non-nil context")
	}
}
