package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	cfg.Rules.Watch = DefaultRulesWatch
	cfg.Telemetry.Metrics.Enabled = true
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention SATURN_SECTION_FIELD (e.g., SATURN_SERVER_LISTEN_ADDRESS) and
// always take precedence over file-based configuration.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables use the format SATURN_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	if val := os.Getenv("SATURN_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("SATURN_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("SATURN_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if val := os.Getenv("SATURN_SERVER_IDLE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.IdleTimeout = d
		}
	}
	if val := os.Getenv("SATURN_SERVER_SHUTDOWN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ShutdownTimeout = d
		}
	}
	if val := os.Getenv("SATURN_SERVER_MAX_BODY_BYTES"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Server.MaxBodyBytes = i
		}
	}

	// Rules overrides
	if val := os.Getenv("SATURN_RULES_PATH"); val != "" {
		cfg.Rules.Path = val
	}
	if val := os.Getenv("SATURN_RULES_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Rules.Watch = b
		}
	}

	// Throttle overrides
	if val := os.Getenv("SATURN_THROTTLE_WEIGHTS_STRESS"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Throttle.Weights.Stress = f
		}
	}
	if val := os.Getenv("SATURN_THROTTLE_WEIGHTS_CENTRALITY"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Throttle.Weights.Centrality = f
		}
	}
	if val := os.Getenv("SATURN_THROTTLE_WEIGHTS_FRICTION"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Throttle.Weights.Friction = f
		}
	}
	if val := os.Getenv("SATURN_THROTTLE_FLOW_CAPACITY"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Throttle.FlowCapacity = f
		}
	}
	if val := os.Getenv("SATURN_THROTTLE_SMOOTHING"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Throttle.Smoothing = f
		}
	}
	if val := os.Getenv("SATURN_THROTTLE_STORAGE_BACKEND"); val != "" {
		cfg.Throttle.Storage.Backend = val
	}
	if val := os.Getenv("SATURN_THROTTLE_STORAGE_SQLITE_PATH"); val != "" {
		cfg.Throttle.Storage.SQLitePath = val
	}
	if val := os.Getenv("SATURN_THROTTLE_DECAY_SCHEDULE"); val != "" {
		cfg.Throttle.Decay.Schedule = val
	}
	if val := os.Getenv("SATURN_THROTTLE_DECAY_FACTOR"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Throttle.Decay.Factor = f
		}
	}

	// Telemetry overrides
	if val := os.Getenv("SATURN_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("SATURN_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("SATURN_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("SATURN_TELEMETRY_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}
}
