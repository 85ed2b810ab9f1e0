// Package telemetry provides observability for Mercator Saturn.
//
// # Components
//
//   - logging: structured logging built on log/slog
//   - metrics: Prometheus metrics collection
//
// # Usage
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//	m := metrics.New()
//
//	engine, err := engine.New(src, states, logger)
//	engine.WithRecorder(m)
//
// Metrics are exposed through the server's /metrics endpoint in the standard
// Prometheus exposition format.
package telemetry
