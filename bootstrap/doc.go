// Package bootstrap runs a lazykit application: it loads defaults,
// validates config, initializes logging and telemetry, owns the provider
// container and component registry, and shuts everything down in order.
//
// # Quick Start
//
//	app, err := bootstrap.NewApp(&cfg)
//	settings, err := bootstrap.Provide(app, "settings", singleton.FuncErr(loadSettings))
//	err = app.RunTask(ctx, func(ctx context.Context) error {
//	    s, err := settings.Get(ctx)
//	    ...
//	})
//
// Shutdown stops components in reverse order, closes the container and
// flushes telemetry.
package bootstrap
