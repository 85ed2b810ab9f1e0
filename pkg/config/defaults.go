package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxBodyBytes    = int64(1048576) // 1MB

	// Rules defaults
	DefaultRulesPath  = "./rules.yaml"
	DefaultRulesWatch = true

	// Throttle defaults
	DefaultWeightStress     = 0.6
	DefaultWeightCentrality = 0.3
	DefaultWeightFriction   = 0.3
	DefaultFlowCapacity     = 1_000_000.0
	DefaultSmoothing        = 0.2

	// Storage defaults
	DefaultStorageBackend     = "memory"
	DefaultStorageSQLitePath  = "data/throttle.db"
	DefaultStorageBusyTimeout = 5 * time.Second

	// Decay defaults
	DefaultDecaySchedule = "*/10 * * * *"
	DefaultDecayFactor   = 0.9

	// Telemetry defaults
	DefaultLoggingLevel  = "info"
	DefaultLoggingFormat = "json"
	DefaultMetricsPath   = "/metrics"
)

// DefaultConfig returns a configuration populated with all default values.
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.Telemetry.Metrics.Enabled = true
	cfg.Rules.Watch = DefaultRulesWatch
	return cfg
}

// ApplyDefaults fills in default values for any zero-valued fields.
// Boolean fields keep their parsed value; YAML absence and explicit false
// are indistinguishable, so booleans default at the call sites that care.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}

	if cfg.Rules.Path == "" {
		cfg.Rules.Path = DefaultRulesPath
	}

	if cfg.Throttle.Weights == (WeightsConfig{}) {
		cfg.Throttle.Weights = WeightsConfig{
			Stress:     DefaultWeightStress,
			Centrality: DefaultWeightCentrality,
			Friction:   DefaultWeightFriction,
		}
	}
	if cfg.Throttle.FlowCapacity == 0 {
		cfg.Throttle.FlowCapacity = DefaultFlowCapacity
	}
	if cfg.Throttle.Smoothing == 0 {
		cfg.Throttle.Smoothing = DefaultSmoothing
	}
	if cfg.Throttle.Storage.Backend == "" {
		cfg.Throttle.Storage.Backend = DefaultStorageBackend
	}
	if cfg.Throttle.Storage.SQLitePath == "" {
		cfg.Throttle.Storage.SQLitePath = DefaultStorageSQLitePath
	}
	if cfg.Throttle.Storage.BusyTimeout == 0 {
		cfg.Throttle.Storage.BusyTimeout = DefaultStorageBusyTimeout
	}
	if cfg.Throttle.Decay.Schedule == "" {
		cfg.Throttle.Decay.Schedule = DefaultDecaySchedule
	}
	if cfg.Throttle.Decay.Factor == 0 {
		cfg.Throttle.Decay.Factor = DefaultDecayFactor
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
}
