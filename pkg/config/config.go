package config

import "time"

// Config is the root configuration structure for Mercator Saturn.
// It contains all configuration sections for the HTTP server, rule loading,
// the network throttle, and telemetry.
type Config struct {
	// Server contains HTTP server configuration including listen address
	// and timeouts.
	Server ServerConfig `yaml:"server"`

	// Rules contains configuration for rule loading, including the rule
	// file location and watch mode.
	Rules RulesConfig `yaml:"rules"`

	// Throttle contains configuration for the network throttle: adjustment
	// weights, flow capacity, state persistence, and stress decay.
	Throttle ThrottleConfig `yaml:"throttle"`

	// Telemetry contains observability configuration (logging, metrics).
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxBodyBytes limits the size of accepted request bodies.
	// Default: 1048576 (1MB)
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// RulesConfig contains configuration for rule loading.
type RulesConfig struct {
	// Path is the rule file or directory to load.
	// Default: "./rules.yaml"
	Path string `yaml:"path"`

	// Watch enables hot reload on rule file changes.
	// Default: true
	Watch bool `yaml:"watch"`
}

// ThrottleConfig contains configuration for the network throttle.
type ThrottleConfig struct {
	// Weights controls the limit adjustment function. Each weight is in
	// [0, 1] and scales how strongly its signal reduces limits.
	Weights WeightsConfig `yaml:"weights"`

	// FlowCapacity is the reference amount a single observed transaction is
	// measured against for stress purposes.
	// Default: 1000000
	FlowCapacity float64 `yaml:"flow_capacity"`

	// Smoothing is the EWMA coefficient for stress and friction updates,
	// in (0, 1].
	// Default: 0.2
	Smoothing float64 `yaml:"smoothing"`

	// Storage selects the persistence backend for node state.
	Storage StorageConfig `yaml:"storage"`

	// Decay configures scheduled stress decay.
	Decay DecayConfig `yaml:"decay"`
}

// WeightsConfig mirrors throttle.AdjustmentWeights for YAML loading.
type WeightsConfig struct {
	// Stress weight. Default: 0.6
	Stress float64 `yaml:"stress"`

	// Centrality weight. Default: 0.3
	Centrality float64 `yaml:"centrality"`

	// Friction weight. Default: 0.3
	Friction float64 `yaml:"friction"`
}

// StorageConfig selects and configures the throttle's persistence backend.
type StorageConfig struct {
	// Backend is the storage backend ("memory" or "sqlite").
	// Default: "memory"
	Backend string `yaml:"backend"`

	// SQLitePath is the database file path when Backend is "sqlite".
	// Default: "data/throttle.db"
	SQLitePath string `yaml:"sqlite_path"`

	// BusyTimeout is how long SQLite waits for locks before failing.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// DecayConfig configures scheduled stress decay.
type DecayConfig struct {
	// Schedule is a standard 5-field cron expression. Empty disables decay.
	// Default: "*/10 * * * *"
	Schedule string `yaml:"schedule"`

	// Factor multiplies stress and friction on each run, in [0, 1).
	// Default: 0.9
	Factor float64 `yaml:"factor"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging configures structured logging.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configures Prometheus metrics.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format ("json", "text").
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in logs.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	// Enabled controls whether the /metrics endpoint is served.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the metrics endpoint path.
	// Default: "/metrics"
	Path string `yaml:"path"`
}
