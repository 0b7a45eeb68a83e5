package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/lazykit/component"
	"github.com/kbukum/lazykit/di"
	apperrors "github.com/kbukum/lazykit/errors"
	"github.com/kbukum/lazykit/logger"
	"github.com/kbukum/lazykit/observability"
	"github.com/kbukum/lazykit/singleton"
	"github.com/kbukum/lazykit/version"
)

// DefaultGracefulTimeout bounds shutdown when WithGracefulTimeout is not set.
const DefaultGracefulTimeout = 15 * time.Second

// App owns the lifecycle of a lazykit application. The type parameter C
// is the config type; any struct embedding config.ServiceConfig satisfies
// Config.
//
// Example:
//
//	app, err := bootstrap.NewApp(&myConfig)
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*MyConfig]) error {
//	    // a.Cfg is *MyConfig, fully typed
//	    return nil
//	})
//	app.RunTask(ctx, task)
type App[C Config] struct {
	Name       string
	Version    string
	RunID      string
	Cfg        C
	Container  *di.Container
	Components *component.Registry
	Logger     *logger.Logger
	Metrics    *observability.ProviderMetrics
	Summary    *Summary

	gracefulTimeout   time.Duration
	showSummary       bool
	telemetryShutdown observability.ShutdownFunc
	onConfigure       []func(ctx context.Context, app *App[C]) error

	onStart []Hook
	onReady []Hook
	onStop  []Hook

	stopOnce sync.Once
	stopErr  error
}

// NewApp creates a new application instance from a typed config.
// It applies defaults, validates the config, initializes the logger and,
// when enabled, OTLP telemetry.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	base := cfg.GetServiceConfig()
	o := resolveOptions(opts)

	app := &App[C]{
		Name:            base.Name,
		Version:         version.Resolve(base.Version),
		RunID:           uuid.NewString(),
		Cfg:             cfg,
		gracefulTimeout: DefaultGracefulTimeout,
		showSummary:     o.summary,
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}

	// Logger: use custom if provided, otherwise init from config.
	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(base.Logging)
		app.Logger = logger.GetGlobalLogger().WithFields(logger.Fields(
			"service", app.Name,
			"run_id", app.RunID,
		))
	}

	if !o.skipTelemetry {
		shutdown, err := observability.Setup(context.Background(), base.Telemetry, app.Name, app.Version)
		if err != nil {
			return nil, fmt.Errorf("telemetry setup: %w", err)
		}
		app.telemetryShutdown = shutdown
	}

	metrics, err := observability.NewProviderMetrics(observability.Meter(observability.InstrumentationName))
	if err != nil {
		return nil, fmt.Errorf("provider metrics: %w", err)
	}
	app.Metrics = metrics

	app.Container = di.NewContainer(
		di.WithLogger(app.Logger.WithComponent("di")),
		di.WithProviderOptions(
			singleton.WithLogger(app.Logger.WithComponent("singleton")),
			singleton.WithMetrics(metrics),
		),
	)
	app.Components = component.NewRegistry().WithLogger(app.Logger.WithComponent("component"))
	app.Summary = NewSummary(app.Name, app.Version, app.RunID)
	return app, nil
}

// Provide creates a provider named name, registers it in the container and
// adds it to the component registry. Per-provider settings from the
// config's providers section are applied before opts.
func Provide[C Config, T any](a *App[C], name string, construct singleton.Constructor[T], opts ...singleton.Option) (*singleton.Provider[T], error) {
	if a.Components.Get(name) != nil {
		return nil, apperrors.AlreadyExists("component", name)
	}
	pc := a.Cfg.GetServiceConfig().Provider(name)
	all := append(singleton.FromConfig(pc), opts...)

	if err := di.ProvideFunc(a.Container, name, construct, all...); err != nil {
		return nil, err
	}
	p, err := di.ProviderOf[T](a.Container, name)
	if err != nil {
		return nil, err
	}

	lazy := component.NewLazy(p)
	if pc.WarmUp {
		lazy.WithWarmUp()
	}
	if err := a.Components.Register(lazy); err != nil {
		return nil, errors.Join(err, a.Container.Remove(name))
	}
	return p, nil
}

// RegisterComponent adds a component to the application's registry.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// OnConfigure registers a callback to run during the configure phase,
// after components are started.
func (a *App[C]) OnConfigure(fn func(ctx context.Context, app *App[C]) error) {
	a.onConfigure = append(a.onConfigure, fn)
}

// ReadyCheck fails when any component is unhealthy. Degraded components,
// such as providers not constructed yet, do not fail it.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var unhealthy []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status != component.StatusUnhealthy {
			continue
		}
		detail := h.Name + "=" + string(h.Status)
		if h.Message != "" {
			detail += "(" + h.Message + ")"
		}
		unhealthy = append(unhealthy, detail)
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %s", strings.Join(unhealthy, ", "))
	}
	return nil
}

// Run executes the lifecycle of a long-running service: startup, block
// until a signal or ctx is done, then graceful shutdown.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		return errors.Join(err, a.stop())
	}

	a.Logger.Info("Application ready, waiting for shutdown signal")
	a.WaitForSignal(ctx)

	return a.stop()
}

// RunTask executes a finite task with the full bootstrap lifecycle.
// The task context is canceled on SIGINT/SIGTERM; shutdown runs when the
// task returns either way.
//
// Example:
//
//	app, _ := bootstrap.NewApp(&cfg)
//	app.RunTask(ctx, func(ctx context.Context) error {
//	    return processData(ctx)
//	})
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		return errors.Join(err, a.stop())
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			a.Logger.Info("Received signal, canceling task", logger.Fields("signal", sig.String()))
			cancel()
		case <-taskCtx.Done():
		}
	}()

	spanCtx, span := observability.StartSpan(taskCtx, observability.SpanTask, trace.WithAttributes(
		attribute.String("lazykit.run_id", a.RunID),
		attribute.String("lazykit.service", a.Name),
	))
	start := time.Now()
	taskErr := task(spanCtx)
	observability.EndSpan(span, taskErr)

	fields := logger.DurationFields("task", time.Since(start))
	if taskErr != nil {
		a.Logger.Error("Task failed", logger.MergeWithError(fields, taskErr))
	} else {
		a.Logger.Info("Task complete", fields)
	}

	if stopErr := a.stop(); stopErr != nil {
		if taskErr != nil {
			return taskErr
		}
		return stopErr
	}
	return taskErr
}

// startup performs the initialization sequence shared by Run and RunTask.
func (a *App[C]) startup(ctx context.Context) error {
	start := time.Now()

	a.Logger.Info("Starting application", logger.Fields(
		"name", a.Name,
		"version", a.Version,
	))

	// Phase 1: start components (warms providers that asked for it)
	if err := a.initialize(ctx); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}

	// Phase 2: configure
	if err := a.configure(ctx); err != nil {
		return fmt.Errorf("configuration failed: %w", err)
	}

	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("Ready check reported issues", logger.Fields(logger.FieldError, err.Error()))
	}

	if err := runHooks(ctx, a.onReady); err != nil {
		return fmt.Errorf("onReady hook failed: %w", err)
	}

	a.Summary.SetStartupDuration(time.Since(start))
	if a.showSummary {
		a.DisplaySummary(ctx)
	}
	return nil
}

// initialize starts all registered components (Phase 1).
func (a *App[C]) initialize(ctx context.Context) error {
	a.Logger.Info("Phase 1: Starting components")
	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("failed to start components: %w", err)
	}
	return nil
}

// configure runs registered configuration callbacks (Phase 2).
func (a *App[C]) configure(ctx context.Context) error {
	if len(a.onConfigure) == 0 {
		return nil
	}

	a.Logger.Info("Phase 2: Running configuration callbacks", logger.Fields("count", len(a.onConfigure)))
	for _, fn := range a.onConfigure {
		if err := fn(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// DisplaySummary prints the startup summary to stdout.
func (a *App[C]) DisplaySummary(ctx context.Context) {
	a.Summary.Render(ctx, os.Stdout, a.Components, a.Container)
}

// WaitForSignal blocks until an OS interrupt/term signal or context cancellation.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal, graceful shutdown starting", logger.Fields("signal", sig.String()))
		return sig
	case <-ctx.Done():
		a.Logger.Info("Context canceled, shutting down")
		return nil
	}
}

// Shutdown performs graceful shutdown. Use when managing your own
// lifecycle. It runs at most once; later calls return the first result.
func (a *App[C]) Shutdown(context.Context) error {
	return a.stop()
}

// stop runs OnStop hooks, stops components in reverse order, closes the
// container and flushes telemetry, all within the graceful timeout.
func (a *App[C]) stop() error {
	a.stopOnce.Do(func() {
		a.stopErr = a.shutdown()
	})
	return a.stopErr
}

func (a *App[C]) shutdown() error {
	a.Logger.Info("Shutting down application", logger.Fields("timeout", a.gracefulTimeout.String()))

	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var errs []error
	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("OnStop hook error", logger.Fields(logger.FieldError, err.Error()))
		errs = append(errs, err)
	}

	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("Component shutdown completed with errors", logger.Fields(logger.FieldError, err.Error()))
		errs = append(errs, err)
	}

	// Providers registered without a component are closed here; closing
	// an already stopped provider is a no-op.
	if err := a.Container.Close(); err != nil {
		a.Logger.Error("Container close error", logger.Fields(logger.FieldError, err.Error()))
		errs = append(errs, err)
	}

	if a.telemetryShutdown != nil {
		if err := a.telemetryShutdown(ctx); err != nil {
			a.Logger.Error("Telemetry shutdown error", logger.Fields(logger.FieldError, err.Error()))
			errs = append(errs, err)
		}
	}

	a.Logger.Info("Application shutdown complete")
	return errors.Join(errs...)
}
