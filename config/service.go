package config

import (
	"sort"

	"github.com/kbukum/lazykit/logger"
	"github.com/kbukum/lazykit/observability"
	"github.com/kbukum/lazykit/singleton"
	"github.com/kbukum/lazykit/validation"
)

// Environments lists the accepted values of ServiceConfig.Environment.
var Environments = []string{"development", "staging", "production"}

// ServiceConfig is the configuration of a lazykit application.
//
// Projects extend it by embedding:
//
//	type MyConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Cache CacheConfig    `yaml:"cache" mapstructure:"cache"`
//	}
type ServiceConfig struct {
	Name        string               `yaml:"name" mapstructure:"name"`
	Environment string               `yaml:"environment" mapstructure:"environment"`
	Version     string               `yaml:"version" mapstructure:"version"`
	Debug       bool                 `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config        `yaml:"logging" mapstructure:"logging"`
	Telemetry   observability.Config `yaml:"telemetry" mapstructure:"telemetry"`

	// Providers holds per-provider settings keyed by provider name.
	Providers map[string]singleton.Config `yaml:"providers" mapstructure:"providers"`
}

// GetServiceConfig returns the base ServiceConfig. When embedded, the
// method is promoted so the embedding struct can be handed to bootstrap.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig {
	return c
}

// ApplyDefaults applies default values.
// Embedding structs should call c.ServiceConfig.ApplyDefaults() first.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	if c.Debug && c.Logging.Level == "" {
		c.Logging.Level = "debug"
	}
	c.Logging.ApplyDefaults()
	c.Telemetry.ApplyDefaults()
	if c.Telemetry.Environment == "" {
		c.Telemetry.Environment = c.Environment
	}
	for name, p := range c.Providers {
		p.ApplyDefaults()
		c.Providers[name] = p
	}
}

// Validate validates every section and reports all problems at once.
func (c *ServiceConfig) Validate() error {
	v := validation.New().
		Required("name", c.Name).
		OneOf("environment", c.Environment, Environments).
		Merge("logging", c.Logging.Validate()).
		Merge("telemetry", c.Telemetry.Validate())

	for _, name := range c.ProviderNames() {
		p := c.Providers[name]
		v.Merge("providers."+name, p.Validate())
	}
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// Provider returns the settings for the named provider, or defaults when
// none are configured.
func (c *ServiceConfig) Provider(name string) singleton.Config {
	p, ok := c.Providers[name]
	if !ok {
		p.ApplyDefaults()
	}
	return p
}

// ProviderNames returns the configured provider names, sorted.
func (c *ServiceConfig) ProviderNames() []string {
	names := make([]string, 0, len(c.Providers))
	for name := range c.Providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
