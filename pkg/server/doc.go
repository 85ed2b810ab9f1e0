// Package server provides the HTTP front end for the screening engine.
//
// This package ties together the engine, throttle, and telemetry and manages
// server lifecycle: start, graceful shutdown, and OS signal handling
// (SIGTERM, SIGINT).
//
// # Routes
//
//   - POST /v1/enforce     - screen a transaction, returns the decision and trace
//   - POST /v1/settlements - report a settled transaction to the throttle
//   - GET  /v1/stats       - decision counters and rule set info
//   - GET  /healthz        - liveness probe (always returns 200)
//   - GET  /metrics        - Prometheus metrics (when enabled)
//
// # Middleware Chain
//
// Requests pass through the following middleware (innermost to outermost):
//
//  1. Metrics: records request counts and latency
//  2. RequestID: generates a unique request id for tracing
//  3. Logging: logs request/response details
//  4. Recovery: recovers from panics and returns 500
//
// # Graceful Shutdown
//
// On SIGTERM/SIGINT the server stops accepting new connections and waits up
// to the configured shutdown timeout for in-flight requests to finish.
package server
