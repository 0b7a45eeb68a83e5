// Package singleton provides Provider[T], an explicitly owned lazy
// singleton.
//
// A Provider constructs its value at most once and hands every caller the
// same instance. The first Get runs the constructor inside a critical
// section; once the instance is published, Get is a single atomic load.
//
//	settings, err := singleton.New(singleton.FuncErr(loadSettings),
//	    singleton.WithName("settings"),
//	)
//	s, err := settings.Get(ctx)
//
// # Strategies
//
//   - DoubleChecked (default): lock-free fast path, check and recheck
//     under a mutex before constructing.
//   - Synchronized: every Get takes the mutex.
//   - Eager: New constructs immediately and reports the error itself.
//
// # Failures
//
// A failing (or panicking) constructor is reported to the caller as a
// *ConstructionError and nothing is cached: the next Get constructs again.
// A provider never ends up permanently failed. Close tears the instance
// down; Get after Close returns ErrClosed.
package singleton
