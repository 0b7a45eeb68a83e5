package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kbukum/lazykit/logger"
)

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string         // Direct config file path (optional)
	EnvFile    string         // Direct env file path (optional)
	Flags      *pflag.FlagSet // Command-line flags (optional)
}

// LoaderOption is a functional option for LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithFlags layers the flags in fs over file and environment values.
// Only flags set on the command line override; the others are defaults.
func WithFlags(fs *pflag.FlagSet) LoaderOption {
	return func(lc *LoaderConfig) { lc.Flags = fs }
}

// LoadConfig loads configuration for a service into cfg. Sources are
// layered lowest first: config file, .env file, process environment,
// changed command-line flags.
func LoadConfig(serviceName string, cfg interface{}, opts ...LoaderOption) error {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = &RealFileSystem{}
	}

	resolver := &Resolver{FileSystem: lc.FileSystem}
	files := resolver.ResolveFiles(serviceName, lc)
	logger.Debug("config files resolved", logger.Fields(
		"service", serviceName,
		"config_file", files.ConfigFile,
		"env_file", files.EnvFile,
	))

	return load(serviceName, cfg, files, lc.FileSystem, lc.Flags)
}

func load(serviceName string, cfg interface{}, files ResolvedFiles, fs FileSystem, flags *pflag.FlagSet) error {
	v := viper.New()

	if files.ConfigFile != "" && fs.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			logger.Warn("failed to load config file", logger.Fields("file", files.ConfigFile, logger.FieldError, err.Error()))
		}
	}

	// godotenv never overrides variables already set, so the process
	// environment wins over the .env file.
	if files.EnvFile != "" && fs.Exists(files.EnvFile) {
		if err := fs.LoadEnv(files.EnvFile); err != nil {
			logger.Warn("failed to load .env file", logger.Fields("file", files.EnvFile, logger.FieldError, err.Error()))
		}
	}
	v.AutomaticEnv()
	bindEnv(v, os.Environ())

	// bindEnv uses Set, which outranks a bound flag, so changed flags are
	// Set again on top.
	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return fmt.Errorf("failed to bind flags for service %s: %w", serviceName, err)
		}
		flags.Visit(func(f *pflag.Flag) {
			v.Set(f.Name, f.Value.String())
		})
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config for service %s: %w", serviceName, err)
	}
	return nil
}

// bindEnv sets every KEY=value pair under each nested key it could mean,
// so PROVIDERS_POOL_WARM_UP reaches providers.pool.warm_up.
func bindEnv(v *viper.Viper, environ []string) {
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		for _, variant := range generateEnvKeyVariants(key) {
			v.Set(variant, value)
		}
	}
}

// Keys with more parts than this only get the flat and fully dotted forms;
// every split of a long key would be 2^(n-1) entries.
const maxEnvKeyParts = 6

// generateEnvKeyVariants returns the lower-cased key with each underscore
// either kept or turned into a nesting dot.
//
//	TELEMETRY_SAMPLE_RATE -> telemetry_sample_rate, telemetry.sample_rate,
//	                         telemetry_sample.rate, telemetry.sample.rate
func generateEnvKeyVariants(envKey string) []string {
	lowerKey := strings.ToLower(envKey)
	parts := strings.Split(lowerKey, "_")
	if len(parts) == 1 {
		return []string{lowerKey}
	}
	if len(parts) > maxEnvKeyParts {
		return []string{lowerKey, strings.Join(parts, ".")}
	}

	seps := len(parts) - 1
	variants := make([]string, 0, 1<<seps)
	var b strings.Builder
	for mask := 0; mask < 1<<seps; mask++ {
		b.Reset()
		b.WriteString(parts[0])
		for i := 1; i < len(parts); i++ {
			if mask&(1<<(i-1)) != 0 {
				b.WriteByte('.')
			} else {
				b.WriteByte('_')
			}
			b.WriteString(parts[i])
		}
		variants = append(variants, b.String())
	}
	return variants
}
