// Package observability wires OpenTelemetry tracing and metrics for
// lazykit.
//
// Without Setup, the global otel providers are no-ops and every
// instrument in this package costs next to nothing, so providers can
// always be instrumented.
//
// Setup:
//
//	shutdown, err := observability.Setup(ctx, cfg.Telemetry, "lazykit", version.Version)
//	defer shutdown(ctx)
//
// Provider metrics:
//
//	m, err := observability.NewProviderMetrics(observability.Meter(observability.InstrumentationName))
//	m.RecordConstruction(ctx, "settings", "double_checked", nil, elapsed)
package observability
