// Package metrics provides Prometheus metrics for Mercator Saturn.
//
// All collectors register on the default Prometheus registry and are exposed
// through the /metrics endpoint.
//
// # Metrics
//
//   - saturn_decisions_total{action, default}: screening decisions by outcome
//   - saturn_evaluation_duration_seconds: rule evaluation latency
//   - saturn_rule_reloads_total{status}: rule set reload attempts
//   - saturn_http_requests_total{path, method, status}: HTTP request counts
//   - saturn_http_request_duration_seconds{path}: HTTP request latency
//
// The throttle exports its own collectors under saturn_throttle_*.
package metrics
