package inspect

import (
	"time"

	"github.com/kbukum/inject/validation"
)

// Config configures the inspection HTTP server.
type Config struct {
	Enabled      bool   `yaml:"enabled" mapstructure:"enabled"`
	Host         string `yaml:"host" mapstructure:"host"`
	Port         int    `yaml:"port" mapstructure:"port"`
	ReadTimeout  int    `yaml:"read_timeout" mapstructure:"read_timeout"`   // seconds
	WriteTimeout int    `yaml:"write_timeout" mapstructure:"write_timeout"` // seconds
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.Port == 0 {
		c.Port = 9090
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 10
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10
	}
}

// Validate reports out-of-range values. Port -1 asks for an ephemeral port.
func (c *Config) Validate() error {
	return validation.New().
		Range("inspect.port", c.Port, -1, 65535).
		Range("inspect.read_timeout", c.ReadTimeout, 0, 3600).
		Range("inspect.write_timeout", c.WriteTimeout, 0, 3600).
		Err()
}

func (c *Config) port() int {
	if c.Port < 0 {
		return 0
	}
	return c.Port
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }
