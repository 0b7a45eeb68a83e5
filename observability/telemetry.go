package observability

import (
	"context"
	"errors"
	"fmt"
)

// ShutdownFunc flushes and stops whatever Setup started.
type ShutdownFunc func(ctx context.Context) error

// Setup installs the OTLP tracer and meter providers when cfg.Enabled is
// set. It always returns a usable ShutdownFunc.
func Setup(ctx context.Context, cfg Config, serviceName, serviceVersion string) (ShutdownFunc, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	tp, err := InitTracer(ctx, cfg, serviceName, serviceVersion)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	mp, err := InitMeter(ctx, cfg, serviceName, serviceVersion)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("init meter: %w", err)
	}

	return func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}, nil
}
