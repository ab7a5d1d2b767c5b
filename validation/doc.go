// Package validation checks configuration values.
//
// Struct tags are checked with go-playground/validator; field names in
// messages follow the mapstructure keys so they match the config file:
//
//	type InjectionConfig struct {
//	    Allowed []string `mapstructure:"allowed" validate:"dive,injection_type"`
//	}
//	err := validation.Validate(cfg)
//
// Cross-field rules use the programmatic Validator:
//
//	v := validation.New()
//	v.Range("inspect.port", cfg.Port, 1, 65535)
//	err := v.Err()
//
// Both report INVALID_CONFIG errors whose details list every failed field.
package validation
