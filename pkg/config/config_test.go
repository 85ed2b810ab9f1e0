package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig_EmptyFileGetsDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfigFile(t, ""))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("ListenAddress = %q, want default", cfg.Server.ListenAddress)
	}
	if cfg.Server.ReadTimeout != DefaultReadTimeout {
		t.Errorf("ReadTimeout = %v, want default", cfg.Server.ReadTimeout)
	}
	if cfg.Rules.Path != DefaultRulesPath {
		t.Errorf("Rules.Path = %q, want default", cfg.Rules.Path)
	}
	if !cfg.Rules.Watch {
		t.Error("Rules.Watch should default to true")
	}
	if cfg.Throttle.Weights.Stress != DefaultWeightStress {
		t.Errorf("Weights.Stress = %v, want default", cfg.Throttle.Weights.Stress)
	}
	if cfg.Throttle.Storage.Backend != DefaultStorageBackend {
		t.Errorf("Storage.Backend = %q, want memory", cfg.Throttle.Storage.Backend)
	}
	if cfg.Throttle.Decay.Schedule != DefaultDecaySchedule {
		t.Errorf("Decay.Schedule = %q, want default", cfg.Throttle.Decay.Schedule)
	}
	if !cfg.Telemetry.Metrics.Enabled {
		t.Error("Metrics.Enabled should default to true")
	}
	if cfg.Telemetry.Metrics.Path != DefaultMetricsPath {
		t.Errorf("Metrics.Path = %q, want default", cfg.Telemetry.Metrics.Path)
	}
}

func TestLoadConfig_ParsesValues(t *testing.T) {
	content := `
server:
  listen_address: "0.0.0.0:9090"
  read_timeout: 5s
  max_body_bytes: 2048
rules:
  path: "/etc/saturn/rules"
  watch: false
throttle:
  weights:
    stress: 0.8
    centrality: 0.1
    friction: 0.1
  flow_capacity: 500000
  smoothing: 0.5
  storage:
    backend: sqlite
    sqlite_path: "/var/lib/saturn/throttle.db"
  decay:
    schedule: "0 * * * *"
    factor: 0.5
telemetry:
  logging:
    level: debug
    format: text
  metrics:
    enabled: false
`

	cfg, err := LoadConfig(writeConfigFile(t, content))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:9090" {
		t.Errorf("ListenAddress = %q", cfg.Server.ListenAddress)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("ReadTimeout = %v, want 5s", cfg.Server.ReadTimeout)
	}
	if cfg.Server.MaxBodyBytes != 2048 {
		t.Errorf("MaxBodyBytes = %d, want 2048", cfg.Server.MaxBodyBytes)
	}
	if cfg.Rules.Watch {
		t.Error("Rules.Watch explicit false must survive defaulting")
	}
	if cfg.Throttle.Weights.Stress != 0.8 {
		t.Errorf("Weights.Stress = %v, want 0.8", cfg.Throttle.Weights.Stress)
	}
	if cfg.Throttle.Storage.Backend != "sqlite" {
		t.Errorf("Storage.Backend = %q, want sqlite", cfg.Throttle.Storage.Backend)
	}
	if cfg.Throttle.Decay.Factor != 0.5 {
		t.Errorf("Decay.Factor = %v, want 0.5", cfg.Throttle.Decay.Factor)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Telemetry.Logging.Level)
	}
	if cfg.Telemetry.Metrics.Enabled {
		t.Error("Metrics.Enabled explicit false must survive defaulting")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/config.yaml"); err == nil {
		t.Fatal("LoadConfig(missing) error = nil, want error")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	if _, err := LoadConfig(writeConfigFile(t, "server: [broken")); err == nil {
		t.Fatal("LoadConfig(invalid yaml) error = nil, want error")
	}
}

func TestLoadConfig_ValidationFailure(t *testing.T) {
	content := `
server:
  listen_address: "no-port-here"
`
	_, err := LoadConfig(writeConfigFile(t, content))
	if err == nil {
		t.Fatal("LoadConfig() error = nil, want validation error")
	}
	if !strings.Contains(err.Error(), "listen_address") {
		t.Errorf("error = %q, want listen_address mention", err.Error())
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	t.Setenv("SATURN_SERVER_LISTEN_ADDRESS", "127.0.0.1:7000")
	t.Setenv("SATURN_RULES_PATH", "/env/rules.yaml")
	t.Setenv("SATURN_RULES_WATCH", "false")
	t.Setenv("SATURN_THROTTLE_SMOOTHING", "0.7")
	t.Setenv("SATURN_TELEMETRY_LOGGING_LEVEL", "warn")

	cfg, err := LoadConfigWithEnvOverrides(writeConfigFile(t, `
server:
  listen_address: "127.0.0.1:8080"
`))
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}

	if cfg.Server.ListenAddress != "127.0.0.1:7000" {
		t.Errorf("ListenAddress = %q, want env override", cfg.Server.ListenAddress)
	}
	if cfg.Rules.Path != "/env/rules.yaml" {
		t.Errorf("Rules.Path = %q, want env override", cfg.Rules.Path)
	}
	if cfg.Rules.Watch {
		t.Error("Rules.Watch should honor env false")
	}
	if cfg.Throttle.Smoothing != 0.7 {
		t.Errorf("Smoothing = %v, want 0.7", cfg.Throttle.Smoothing)
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfigWithEnvOverrides_InvalidOverride(t *testing.T) {
	t.Setenv("SATURN_THROTTLE_SMOOTHING", "5.0")

	if _, err := LoadConfigWithEnvOverrides(writeConfigFile(t, "")); err == nil {
		t.Fatal("out-of-range env override should fail validation")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{
			name:      "empty listen address",
			mutate:    func(c *Config) { c.Server.ListenAddress = "" },
			wantField: "server.listen_address",
		},
		{
			name:      "address without port",
			mutate:    func(c *Config) { c.Server.ListenAddress = "localhost" },
			wantField: "server.listen_address",
		},
		{
			name:      "negative read timeout",
			mutate:    func(c *Config) { c.Server.ReadTimeout = -1 },
			wantField: "server.read_timeout",
		},
		{
			name:      "zero max body bytes",
			mutate:    func(c *Config) { c.Server.MaxBodyBytes = 0 },
			wantField: "server.max_body_bytes",
		},
		{
			name:      "empty rules path",
			mutate:    func(c *Config) { c.Rules.Path = "" },
			wantField: "rules.path",
		},
		{
			name:      "weight above one",
			mutate:    func(c *Config) { c.Throttle.Weights.Stress = 1.5 },
			wantField: "throttle.weights.stress",
		},
		{
			name:      "negative weight",
			mutate:    func(c *Config) { c.Throttle.Weights.Friction = -0.1 },
			wantField: "throttle.weights.friction",
		},
		{
			name:      "zero flow capacity",
			mutate:    func(c *Config) { c.Throttle.FlowCapacity = 0 },
			wantField: "throttle.flow_capacity",
		},
		{
			name:      "smoothing above one",
			mutate:    func(c *Config) { c.Throttle.Smoothing = 1.1 },
			wantField: "throttle.smoothing",
		},
		{
			name:      "unknown storage backend",
			mutate:    func(c *Config) { c.Throttle.Storage.Backend = "redis" },
			wantField: "throttle.storage.backend",
		},
		{
			name: "sqlite without path",
			mutate: func(c *Config) {
				c.Throttle.Storage.Backend = "sqlite"
				c.Throttle.Storage.SQLitePath = ""
			},
			wantField: "throttle.storage.sqlite_path",
		},
		{
			name:      "bad cron schedule",
			mutate:    func(c *Config) { c.Throttle.Decay.Schedule = "every 5 minutes" },
			wantField: "throttle.decay.schedule",
		},
		{
			name:      "decay factor of one",
			mutate:    func(c *Config) { c.Throttle.Decay.Factor = 1.0 },
			wantField: "throttle.decay.factor",
		},
		{
			name:      "unknown log level",
			mutate:    func(c *Config) { c.Telemetry.Logging.Level = "verbose" },
			wantField: "telemetry.logging.level",
		},
		{
			name:      "unknown log format",
			mutate:    func(c *Config) { c.Telemetry.Logging.Format = "xml" },
			wantField: "telemetry.logging.format",
		},
		{
			name:      "metrics path without slash",
			mutate:    func(c *Config) { c.Telemetry.Metrics.Path = "metrics" },
			wantField: "telemetry.metrics.path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("Validate() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantField) {
				t.Errorf("error = %q, want field %q", err.Error(), tt.wantField)
			}
		})
	}
}

func TestValidate_DefaultConfigIsValid(t *testing.T) {
	if err := Validate(DefaultConfig()); err != nil {
		t.Errorf("Validate(DefaultConfig()) error = %v", err)
	}
}

func TestValidate_EmptyScheduleDisablesDecay(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Throttle.Decay.Schedule = ""
	cfg.Throttle.Decay.Factor = 0.9

	if err := Validate(cfg); err != nil {
		t.Errorf("empty decay schedule should be valid: %v", err)
	}
}

func TestValidate_DisabledMetricsSkipsPathCheck(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Telemetry.Metrics.Enabled = false
	cfg.Telemetry.Metrics.Path = "no-slash"

	if err := Validate(cfg); err != nil {
		t.Errorf("disabled metrics should skip path validation: %v", err)
	}
}
