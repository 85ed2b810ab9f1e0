package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All validation errors are collected and
// returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateRules(&cfg.Rules)...)
	errs = append(errs, validateThrottle(&cfg.Throttle)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{"server.listen_address", "cannot be empty"})
	} else if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		errs = append(errs, FieldError{"server.listen_address",
			fmt.Sprintf("invalid host:port address: %v", err)})
	}

	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{"server.read_timeout", "cannot be negative"})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{"server.write_timeout", "cannot be negative"})
	}
	if cfg.ShutdownTimeout <= 0 {
		errs = append(errs, FieldError{"server.shutdown_timeout", "must be positive"})
	}
	if cfg.MaxBodyBytes <= 0 {
		errs = append(errs, FieldError{"server.max_body_bytes", "must be positive"})
	}

	return errs
}

func validateRules(cfg *RulesConfig) []FieldError {
	var errs []FieldError

	if cfg.Path == "" {
		errs = append(errs, FieldError{"rules.path", "cannot be empty"})
	}

	return errs
}

func validateThrottle(cfg *ThrottleConfig) []FieldError {
	var errs []FieldError

	for _, w := range []struct {
		field string
		value float64
	}{
		{"throttle.weights.stress", cfg.Weights.Stress},
		{"throttle.weights.centrality", cfg.Weights.Centrality},
		{"throttle.weights.friction", cfg.Weights.Friction},
	} {
		if w.value < 0 || w.value > 1 {
			errs = append(errs, FieldError{w.field,
				fmt.Sprintf("must be within [0, 1], got %v", w.value)})
		}
	}

	if cfg.FlowCapacity <= 0 {
		errs = append(errs, FieldError{"throttle.flow_capacity", "must be positive"})
	}
	if cfg.Smoothing <= 0 || cfg.Smoothing > 1 {
		errs = append(errs, FieldError{"throttle.smoothing",
			fmt.Sprintf("must be within (0, 1], got %v", cfg.Smoothing)})
	}

	switch cfg.Storage.Backend {
	case "memory":
	case "sqlite":
		if cfg.Storage.SQLitePath == "" {
			errs = append(errs, FieldError{"throttle.storage.sqlite_path",
				"cannot be empty when backend is sqlite"})
		}
	default:
		errs = append(errs, FieldError{"throttle.storage.backend",
			fmt.Sprintf("unknown backend %q (valid: memory, sqlite)", cfg.Storage.Backend)})
	}

	if cfg.Decay.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Decay.Schedule); err != nil {
			errs = append(errs, FieldError{"throttle.decay.schedule",
				fmt.Sprintf("invalid cron expression: %v", err)})
		}
		if cfg.Decay.Factor < 0 || cfg.Decay.Factor >= 1 {
			errs = append(errs, FieldError{"throttle.decay.factor",
				fmt.Sprintf("must be within [0, 1), got %v", cfg.Decay.Factor)})
		}
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{"telemetry.logging.level",
			fmt.Sprintf("unknown level %q (valid: debug, info, warn, error)", cfg.Logging.Level)})
	}

	switch cfg.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{"telemetry.logging.format",
			fmt.Sprintf("unknown format %q (valid: json, text)", cfg.Logging.Format)})
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{"telemetry.metrics.path", "must start with /"})
	}

	return errs
}
