package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/lazykit/component"
	"github.com/kbukum/lazykit/config"
	apperrors "github.com/kbukum/lazykit/errors"
	"github.com/kbukum/lazykit/logger"
	"github.com/kbukum/lazykit/observability"
	"github.com/kbukum/lazykit/singleton"
)

// testConfig is a minimal config for testing that satisfies the Config interface.
type testConfig struct {
	config.ServiceConfig
}

// mockComponent implements component.Component for testing.
type mockComponent struct {
	name     string
	startErr error
	stopErr  error
	health   component.Health
	started  bool
	stops    int
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(ctx context.Context) error {
	m.started = true
	return m.startErr
}
func (m *mockComponent) Stop(ctx context.Context) error {
	m.stops++
	return m.stopErr
}
func (m *mockComponent) Health(ctx context.Context) component.Health {
	return m.health
}

func newTestConfig(name, version string) *testConfig {
	return &testConfig{
		ServiceConfig: config.ServiceConfig{
			Name:        name,
			Version:     version,
			Environment: "development",
		},
	}
}

func newTestApp(t *testing.T, cfg *testConfig) *App[*testConfig] {
	t.Helper()
	app, err := NewApp(cfg, WithLogger(logger.NewNop()), WithoutSummary(), WithoutTelemetry())
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	return app
}

type pool struct {
	id     int64
	closed atomic.Bool
}

func (p *pool) Close() error {
	p.closed.Store(true)
	return nil
}

func TestNewApp(t *testing.T) {
	app := newTestApp(t, newTestConfig("test-svc", "1.0.0"))
	if app.Name != "test-svc" {
		t.Errorf("expected name 'test-svc', got %q", app.Name)
	}
	if app.Version != "1.0.0" {
		t.Errorf("expected version '1.0.0', got %q", app.Version)
	}
	if len(app.RunID) != 36 {
		t.Errorf("expected uuid run id, got %q", app.RunID)
	}
	if app.Container == nil || app.Components == nil || app.Metrics == nil || app.Summary == nil {
		t.Error("expected container, registry, metrics and summary")
	}
	if app.gracefulTimeout != DefaultGracefulTimeout {
		t.Errorf("expected default timeout, got %v", app.gracefulTimeout)
	}
}

func TestNewAppAppliesDefaults(t *testing.T) {
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Name: "svc"}}
	app := newTestApp(t, cfg)
	if cfg.Environment != "development" {
		t.Errorf("expected default environment, got %q", cfg.Environment)
	}
	if app.Version == "" {
		t.Error("expected build version when config has none")
	}
}

func TestNewAppValidation(t *testing.T) {
	cfg := &testConfig{}
	_, err := NewApp(cfg, WithLogger(logger.NewNop()))
	if !apperrors.IsCode(err, apperrors.ErrCodeInvalidConfig) {
		t.Errorf("expected INVALID_CONFIG, got %v", err)
	}
}

func TestNewAppInitializesGlobalLogger(t *testing.T) {
	prev := logger.GetGlobalLogger()
	defer logger.SetGlobalLogger(prev)

	buf := &bytes.Buffer{}
	cfg := newTestConfig("svc", "1.0")
	cfg.Logging = logger.Config{Level: "info", Format: "json", Writer: buf}
	app, err := NewApp(cfg, WithoutSummary(), WithoutTelemetry())
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	app.Logger.Info("hello")
	if !strings.Contains(buf.String(), app.RunID) {
		t.Errorf("expected run_id in log output, got %q", buf.String())
	}
}

func TestWithGracefulTimeout(t *testing.T) {
	app, err := NewApp(newTestConfig("t", "1"), WithLogger(logger.NewNop()), WithoutTelemetry(), WithGracefulTimeout(time.Second))
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	if app.gracefulTimeout != time.Second {
		t.Errorf("expected 1s, got %v", app.gracefulTimeout)
	}
}

func TestRegisterComponentDuplicate(t *testing.T) {
	app := newTestApp(t, newTestConfig("test", "1.0"))
	if err := app.RegisterComponent(&mockComponent{name: "db"}); err != nil {
		t.Fatalf("RegisterComponent failed: %v", err)
	}
	if err := app.RegisterComponent(&mockComponent{name: "db"}); err == nil {
		t.Error("expected error for duplicate component")
	}
}

func TestRunTaskSuccess(t *testing.T) {
	app := newTestApp(t, newTestConfig("test", "1.0"))
	executed := false
	err := app.RunTask(context.Background(), func(ctx context.Context) error {
		executed = true
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask failed: %v", err)
	}
	if !executed {
		t.Error("expected task to be executed")
	}
}

func TestRunTaskError(t *testing.T) {
	app := newTestApp(t, newTestConfig("test", "1.0"))
	err := app.RunTask(context.Background(), func(ctx context.Context) error {
		return fmt.Errorf("task error")
	})
	if err == nil || err.Error() != "task error" {
		t.Errorf("expected 'task error', got %v", err)
	}
}

func TestRunTaskCancellation(t *testing.T) {
	app := newTestApp(t, newTestConfig("test", "1.0"))
	ctx, cancel := context.WithCancel(context.Background())

	err := app.RunTask(ctx, func(taskCtx context.Context) error {
		cancel()
		<-taskCtx.Done()
		return taskCtx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunTaskWithHooks(t *testing.T) {
	app := newTestApp(t, newTestConfig("test", "1.0"))

	order := []string{}
	app.OnStart(func(ctx context.Context) error {
		order = append(order, "start")
		return nil
	})
	app.OnConfigure(func(ctx context.Context, a *App[*testConfig]) error {
		order = append(order, "configure")
		return nil
	})
	app.OnReady(func(ctx context.Context) error {
		order = append(order, "ready")
		return nil
	})
	app.OnStop(func(ctx context.Context) error {
		order = append(order, "stop")
		return nil
	})

	app.RunTask(context.Background(), func(ctx context.Context) error {
		order = append(order, "task")
		return nil
	})

	expected := []string{"start", "configure", "ready", "task", "stop"}
	if strings.Join(order, ",") != strings.Join(expected, ",") {
		t.Errorf("expected %v, got %v", expected, order)
	}
}

func TestStartupFailures(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name  string
		setup func(app *App[*testConfig])
		want  string
	}{
		{"start hook", func(a *App[*testConfig]) {
			a.OnStart(func(context.Context) error { return boom })
		}, "onStart hook failed"},
		{"configure", func(a *App[*testConfig]) {
			a.OnConfigure(func(context.Context, *App[*testConfig]) error { return boom })
		}, "configuration failed"},
		{"ready hook", func(a *App[*testConfig]) {
			a.OnReady(func(context.Context) error { return boom })
		}, "onReady hook failed"},
		{"component start", func(a *App[*testConfig]) {
			a.RegisterComponent(&mockComponent{name: "db", startErr: boom})
		}, "initialization failed"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(t, newTestConfig("test", "1.0"))
			tc.setup(app)
			executed := false
			err := app.RunTask(context.Background(), func(ctx context.Context) error {
				executed = true
				return nil
			})
			if !errors.Is(err, boom) || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("expected %q wrapping boom, got %v", tc.want, err)
			}
			if executed {
				t.Error("task must not run after a startup failure")
			}
		})
	}
}

func TestStopHookErrorReturned(t *testing.T) {
	app := newTestApp(t, newTestConfig("test", "1.0"))
	boom := errors.New("stop boom")
	app.OnStop(func(context.Context) error { return boom })
	err := app.RunTask(context.Background(), func(context.Context) error { return nil })
	if !errors.Is(err, boom) {
		t.Errorf("expected stop hook error, got %v", err)
	}
}

func TestReadyCheck(t *testing.T) {
	app := newTestApp(t, newTestConfig("test", "1.0"))
	app.RegisterComponent(&mockComponent{name: "ok", health: component.Health{Name: "ok", Status: component.StatusHealthy}})
	app.RegisterComponent(&mockComponent{name: "lazy", health: component.Health{Name: "lazy", Status: component.StatusDegraded}})
	if err := app.ReadyCheck(context.Background()); err != nil {
		t.Errorf("expected degraded components to pass, got %v", err)
	}

	app.RegisterComponent(&mockComponent{name: "cache", health: component.Health{
		Name: "cache", Status: component.StatusUnhealthy, Message: "timeout",
	}})
	err := app.ReadyCheck(context.Background())
	if err == nil || !strings.Contains(err.Error(), "cache=unhealthy(timeout)") {
		t.Errorf("expected unhealthy cache, got %v", err)
	}
}

func TestRunTaskStopsComponentsOnce(t *testing.T) {
	app := newTestApp(t, newTestConfig("test", "1.0"))
	comp := &mockComponent{name: "db", health: component.Health{Name: "db", Status: component.StatusHealthy}}
	app.RegisterComponent(comp)

	if err := app.RunTask(context.Background(), func(context.Context) error { return nil }); err != nil {
		t.Fatalf("RunTask failed: %v", err)
	}
	if err := app.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if !comp.started || comp.stops != 1 {
		t.Errorf("expected one start and one stop, got started=%v stops=%d", comp.started, comp.stops)
	}
}

func TestWaitForSignalContextCancellation(t *testing.T) {
	app := newTestApp(t, newTestConfig("test", "1.0"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if sig := app.WaitForSignal(ctx); sig != nil {
		t.Errorf("expected nil signal on context cancel, got %v", sig)
	}
}

func TestRunReturnsOnContextCancel(t *testing.T) {
	app := newTestApp(t, newTestConfig("test", "1.0"))
	ctx, cancel := context.WithCancel(context.Background())
	app.OnReady(func(context.Context) error {
		cancel()
		return nil
	})
	if err := app.Run(ctx); err != nil {
		t.Errorf("expected clean shutdown, got %v", err)
	}
}

func TestProvideConstructsOnceAcrossWorkers(t *testing.T) {
	app := newTestApp(t, newTestConfig("test", "1.0"))
	var calls atomic.Int64
	p, err := Provide(app, "pool", singleton.Func(func() *pool {
		return &pool{id: calls.Add(1)}
	}))
	if err != nil {
		t.Fatalf("Provide failed: %v", err)
	}

	var first *pool
	err = app.RunTask(context.Background(), func(ctx context.Context) error {
		var wg sync.WaitGroup
		got := make([]*pool, 32)
		for i := range got {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				got[i] = p.MustGet(ctx)
			}(i)
		}
		wg.Wait()
		for _, g := range got {
			if g != got[0] {
				return errors.New("different instances")
			}
		}
		first = got[0]
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask failed: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected one construction, got %d", calls.Load())
	}
	if !first.closed.Load() {
		t.Error("expected pool to be closed on shutdown")
	}
	if p.State() != singleton.StateClosed {
		t.Errorf("expected closed provider, got %s", p.State())
	}
}

func TestProvideUsesProviderConfig(t *testing.T) {
	cfg := newTestConfig("test", "1.0")
	cfg.Providers = map[string]singleton.Config{
		"settings": {Strategy: "synchronized", WarmUp: true},
	}
	app := newTestApp(t, cfg)
	p, err := Provide(app, "settings", singleton.Func(func() string { return "v" }))
	if err != nil {
		t.Fatalf("Provide failed: %v", err)
	}
	if p.Strategy() != singleton.Synchronized {
		t.Errorf("expected synchronized strategy, got %s", p.Strategy())
	}

	err = app.RunTask(context.Background(), func(context.Context) error {
		if !p.IsInitialized() {
			return errors.New("expected warm-up during startup")
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestProvideWarmUpFailureFailsStartup(t *testing.T) {
	cfg := newTestConfig("test", "1.0")
	cfg.Providers = map[string]singleton.Config{"db": {WarmUp: true}}
	app := newTestApp(t, cfg)
	_, err := Provide(app, "db", singleton.FuncErr(func() (int, error) {
		return 0, errors.New("refused")
	}))
	if err != nil {
		t.Fatalf("Provide failed: %v", err)
	}

	err = app.RunTask(context.Background(), func(context.Context) error { return nil })
	if !singleton.IsConstructionError(err) {
		t.Errorf("expected construction error from startup, got %v", err)
	}
}

func TestProvideDuplicate(t *testing.T) {
	app := newTestApp(t, newTestConfig("test", "1.0"))
	if _, err := Provide(app, "x", singleton.Func(func() int { return 1 })); err != nil {
		t.Fatalf("Provide failed: %v", err)
	}
	_, err := Provide(app, "x", singleton.Func(func() int { return 2 }))
	if !apperrors.IsCode(err, apperrors.ErrCodeAlreadyExists) {
		t.Errorf("expected ALREADY_EXISTS, got %v", err)
	}
}

func TestProvideNameTakenByComponent(t *testing.T) {
	app := newTestApp(t, newTestConfig("test", "1.0"))
	if err := app.RegisterComponent(&mockComponent{name: "db"}); err != nil {
		t.Fatalf("RegisterComponent failed: %v", err)
	}
	calls := 0
	_, err := Provide(app, "db", singleton.Func(func() int { calls++; return 1 }))
	if !apperrors.IsCode(err, apperrors.ErrCodeAlreadyExists) {
		t.Errorf("expected ALREADY_EXISTS, got %v", err)
	}
	if app.Container.Has("db") {
		t.Error("expected no provider left in the container")
	}
	if calls != 0 {
		t.Errorf("expected no construction, got %d", calls)
	}
}

func TestRunTaskSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	}()

	app := newTestApp(t, newTestConfig("test", "1.0"))
	p, _ := Provide(app, "n", singleton.Func(func() int { return 1 }))
	app.RunTask(context.Background(), func(ctx context.Context) error {
		_, err := p.Get(ctx)
		return err
	})

	var task, construct *tracetest.SpanStub
	spans := exporter.GetSpans()
	for i := range spans {
		switch spans[i].Name {
		case observability.SpanTask:
			task = &spans[i]
		case observability.SpanConstruct:
			construct = &spans[i]
		}
	}
	if task == nil || construct == nil {
		t.Fatalf("expected task and construct spans, got %d spans", len(spans))
	}
	if construct.Parent.SpanID() != task.SpanContext.SpanID() {
		t.Error("expected construction span to be a child of the task span")
	}
}

func TestSummaryRender(t *testing.T) {
	app := newTestApp(t, newTestConfig("svc", "1.2.3"))
	p, _ := Provide(app, "settings", singleton.Func(func() int { return 1 }))
	Provide(app, "cold", singleton.Func(func() int { return 2 }))
	p.MustGet(context.Background())
	app.Summary.SetStartupDuration(1500 * time.Millisecond)

	buf := &bytes.Buffer{}
	app.Summary.Render(context.Background(), buf, app.Components, app.Container)
	out := buf.String()
	for _, want := range []string{
		"svc 1.2.3 started in 1.50s",
		app.RunID,
		"Providers (2)",
		"settings [int] double_checked: ready, constructions=1",
		"cold [int] double_checked: uninitialized",
		"Health",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in summary:\n%s", want, out)
		}
	}
}

func TestSummaryRenderEmpty(t *testing.T) {
	buf := &bytes.Buffer{}
	NewSummary("svc", "1", "run").Render(context.Background(), buf, nil, nil)
	if !strings.Contains(buf.String(), "No providers registered") {
		t.Errorf("unexpected summary %q", buf.String())
	}
}
