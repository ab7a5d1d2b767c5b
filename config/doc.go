// Package config loads service configuration.
//
// LoadConfig finds config.yml (or config.yaml) for a service in the usual
// places, reads it with Viper, loads a matching .env file with godotenv and
// lets environment variables override file values. Nested keys map to
// upper-case variables joined by underscores, optionally prefixed:
//
//	var cfg bootstrap.Config
//	err := config.LoadConfig("garage", &cfg, config.WithEnvPrefix("GARAGE"))
//
// With the prefix above, GARAGE_INJECTION_ACTIVE_SCOPES overrides
// injection.active_scopes.
package config
