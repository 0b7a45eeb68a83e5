// Package logger provides structured logging for lazykit using zerolog.
//
// It supports JSON and console output, level configuration, component
// scoped loggers and a small named-logger registry. Loggers enrich
// themselves with OpenTelemetry trace and span IDs when given a context
// that carries a span.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("singleton")
//	log.Info("provider ready", logger.Fields("provider", "settings"))
package logger
