// Package component defines lifecycle-managed components and a registry
// that starts them in order and stops them in reverse.
//
// Lazy adapts a *singleton.Provider to the Component interface, so an
// application can warm providers up on start, report their health, and
// tear them down on stop.
//
// # Interfaces
//
//   - Component: lifecycle (Start/Stop) and health reporting
//   - Describable: one-line descriptions for the startup summary
package component
