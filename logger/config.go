package logger

import (
	"fmt"
	"slices"

	"github.com/kbukum/inject/errors"
)

var (
	levels  = []string{"trace", "debug", "info", "warn", "error", "fatal", "disabled"}
	formats = []string{"json", "console", FormatPretty}
	outputs = []string{"stdout", "stderr"}
)

// Config is the logging section of a service configuration.
type Config struct {
	ServiceName string `yaml:"service_name" mapstructure:"service_name"`
	Level       string `yaml:"level" mapstructure:"level"`
	Format      string `yaml:"format" mapstructure:"format"`
	Output      string `yaml:"output" mapstructure:"output"`
	NoColor     bool   `yaml:"no_color" mapstructure:"no_color"`
	Timestamp   bool   `yaml:"timestamp" mapstructure:"timestamp"`
	Caller      bool   `yaml:"caller" mapstructure:"caller"`
}

// ApplyDefaults fills empty fields: info level, console format on stdout.
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "console"
	}
	if c.Output == "" {
		c.Output = "stdout"
	}
	c.Timestamp = true
}

// Validate reports the first field outside its allowed set as INVALID_CONFIG.
func (c *Config) Validate() error {
	checks := []struct {
		field   string
		value   string
		allowed []string
	}{
		{"level", c.Level, levels},
		{"format", c.Format, formats},
		{"output", c.Output, outputs},
	}
	for _, ch := range checks {
		if !slices.Contains(ch.allowed, ch.value) {
			return errors.InvalidConfig(fmt.Sprintf("logging.%s must be one of %v (got: %q)", ch.field, ch.allowed, ch.value)).
				WithDetail("field", "logging."+ch.field)
		}
	}
	return nil
}
