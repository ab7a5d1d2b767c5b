package bootstrap

import (
	"fmt"

	"github.com/kbukum/inject/config"
	"github.com/kbukum/inject/inspect"
	"github.com/kbukum/inject/observability"
	"github.com/kbukum/inject/validation"
)

// Settings is the constraint on application configuration types. Any struct
// embedding Config satisfies it through promoted methods.
//
//	type GarageConfig struct {
//	    bootstrap.Config `yaml:",inline" mapstructure:",squash"`
//	    Fleet FleetConfig `yaml:"fleet" mapstructure:"fleet"`
//	}
type Settings interface {
	GetConfig() *Config
	ApplyDefaults()
	Validate() error
}

// Config is the configuration every application carries.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Injection     InjectionConfig      `yaml:"injection" mapstructure:"injection"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
	Inspect       inspect.Config       `yaml:"inspect" mapstructure:"inspect"`
}

// InjectionConfig configures the registry before code loaders run.
type InjectionConfig struct {
	// Allowed restricts the injection types; empty allows all of them.
	Allowed []string `yaml:"allowed" mapstructure:"allowed" validate:"dive,injection_type"`
	// ActiveScopes names scopes the root context owns besides singleton.
	ActiveScopes []string `yaml:"active_scopes" mapstructure:"active_scopes"`
	// ManifestDirs are searched for Manifests.
	ManifestDirs []string `yaml:"manifest_dirs" mapstructure:"manifest_dirs"`
	// Manifests names the binding manifests to load, in order.
	Manifests []string `yaml:"manifests" mapstructure:"manifests" validate:"unique"`
}

// GetConfig returns c. Embedding structs inherit it.
func (c *Config) GetConfig() *Config { return c }

// ApplyDefaults fills every section.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Injection.ApplyDefaults()
	c.Observability.ApplyDefaults()
	c.Inspect.ApplyDefaults()
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := validation.Validate(&c.Injection); err != nil {
		return fmt.Errorf("injection: %w", err)
	}
	if err := c.Observability.Validate(); err != nil {
		return err
	}
	if c.Inspect.Enabled {
		if err := c.Inspect.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ApplyDefaults looks for manifests in ./manifests unless told otherwise.
func (c *InjectionConfig) ApplyDefaults() {
	if len(c.Manifests) > 0 && len(c.ManifestDirs) == 0 {
		c.ManifestDirs = []string{"manifests"}
	}
}
