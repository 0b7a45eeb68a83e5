// Package di is an explicitly owned container of named singleton providers.
//
// There is no package-level container: the application creates one, hands
// it to whatever needs it, and closes it on shutdown. Each key maps to a
// *singleton.Provider, so every key resolves to exactly one instance.
//
// # Registration
//
//	c := di.NewContainer()
//	_ = di.ProvideFunc(c, "settings", loadSettings)
//
// # Resolution
//
//	s, err := di.Resolve[*Settings](ctx, c, "settings")
//	s := di.MustResolve[*Settings](ctx, c, "settings")
package di
