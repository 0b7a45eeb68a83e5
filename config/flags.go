package config

import (
	"github.com/spf13/pflag"
)

// Flag names understood by RegisterFlags. Dotted names match config keys,
// so WithFlags binds them directly.
const (
	FlagConfigFile = "config"
	FlagEnvFile    = "env-file"
)

// RegisterFlags defines the standard service flags on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(FlagConfigFile, "", "path to config.yml (searched for when empty)")
	fs.String(FlagEnvFile, "", "path to a .env file (searched for when empty)")
	fs.String("environment", "", "deployment environment (development, staging, production)")
	fs.String("logging.level", "", "log level (debug, info, warn, error)")
	fs.String("logging.format", "", "log format (json, console, pretty)")
	fs.Bool("telemetry.enabled", false, "export traces and metrics over OTLP/HTTP")
	fs.String("telemetry.endpoint", "", "OTLP/HTTP collector endpoint (host:port)")
}

// FileOptions turns the --config and --env-file flags into loader options.
func FileOptions(fs *pflag.FlagSet) []LoaderOption {
	var opts []LoaderOption
	if path, err := fs.GetString(FlagConfigFile); err == nil && path != "" {
		opts = append(opts, WithConfigFile(path))
	}
	if path, err := fs.GetString(FlagEnvFile); err == nil && path != "" {
		opts = append(opts, WithEnvFile(path))
	}
	return opts
}
