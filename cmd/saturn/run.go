package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"mercator-hq/saturn/pkg/config"
	"mercator-hq/saturn/pkg/policy/engine"
	"mercator-hq/saturn/pkg/policy/engine/source"
	"mercator-hq/saturn/pkg/server"
	"mercator-hq/saturn/pkg/telemetry/logging"
	"mercator-hq/saturn/pkg/telemetry/metrics"
	"mercator-hq/saturn/pkg/throttle"
	"mercator-hq/saturn/pkg/throttle/storage"
)

var runFlags struct {
	listen   string
	rules    string
	logLevel string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the screening server",
	Long: `Start the Saturn screening server.

The server loads screening rules from the configured rule files, restores
persisted throttle state, and serves screening decisions over HTTP until it
receives SIGTERM or SIGINT.`,
	RunE: runServer,
}

func init() {
	runCmd.Flags().StringVar(&runFlags.listen, "listen", "", "listen address (overrides config)")
	runCmd.Flags().StringVar(&runFlags.rules, "rules", "", "rule file or directory (overrides config)")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	rootCmd.AddCommand(runCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if runFlags.listen != "" {
		cfg.Server.ListenAddress = runFlags.listen
	}
	if runFlags.rules != "" {
		cfg.Rules.Path = runFlags.rules
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	slog.SetDefault(logger)

	fmt.Printf("Mercator Saturn %s\n", Version)
	fmt.Printf("✓ Configuration loaded from %s\n", cfgFile)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	backend, err := buildStorageBackend(cfg)
	if err != nil {
		return fmt.Errorf("failed to create throttle storage: %w", err)
	}

	thr, err := throttle.New(throttle.Config{
		Weights: throttle.AdjustmentWeights{
			Stress:     cfg.Throttle.Weights.Stress,
			Centrality: cfg.Throttle.Weights.Centrality,
			Friction:   cfg.Throttle.Weights.Friction,
		},
		FlowCapacity: cfg.Throttle.FlowCapacity,
		Smoothing:    cfg.Throttle.Smoothing,
		Storage:      backend,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create throttle: %w", err)
	}
	thr.WithMetrics(throttle.NewMetrics())
	defer thr.Close()

	if err := thr.Restore(ctx); err != nil {
		return fmt.Errorf("failed to restore throttle state: %w", err)
	}
	fmt.Printf("✓ Throttle restored (%d nodes, %s storage)\n",
		thr.NodeCount(), cfg.Throttle.Storage.Backend)

	scheduler := throttle.NewDecayScheduler(thr, cfg.Throttle.Decay.Schedule, cfg.Throttle.Decay.Factor, logger)
	if err := scheduler.Start(ctx); err != nil {
		return fmt.Errorf("failed to start decay scheduler: %w", err)
	}
	defer scheduler.Stop()

	m := metrics.New()

	src := source.NewFileSource(cfg.Rules.Path, logger).WithWatch(cfg.Rules.Watch)
	defer src.Close()

	eng, err := engine.New(src, thr, logger)
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}
	eng.WithRecorder(m)
	defer eng.Close()

	if rs := eng.CurrentRules(); rs != nil {
		fmt.Printf("✓ Loaded rule set %q version %s (%d rules)\n",
			rs.Name, rs.Version, rs.Len())
	}
	fmt.Printf("✓ Listening on %s\n", cfg.Server.ListenAddress)

	srv := server.NewServer(cfg, eng, thr, m, logger)
	return srv.Start(ctx)
}

// buildStorageBackend creates the throttle storage backend named in the
// configuration.
func buildStorageBackend(cfg *config.Config) (storage.Backend, error) {
	switch cfg.Throttle.Storage.Backend {
	case "memory":
		return storage.NewMemoryBackend(), nil
	case "sqlite":
		if dir := filepath.Dir(cfg.Throttle.Storage.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create storage directory %q: %w", dir, err)
			}
		}
		return storage.NewSQLiteBackendWithConfig(storage.SQLiteBackendConfig{
			DBPath:      cfg.Throttle.Storage.SQLitePath,
			BusyTimeout: cfg.Throttle.Storage.BusyTimeout,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Throttle.Storage.Backend)
	}
}
