package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains the Prometheus collectors for screening decisions and the
// HTTP front end. It satisfies the engine's DecisionRecorder interface.
type Metrics struct {
	decisionsTotal     *prometheus.CounterVec
	evaluationDuration prometheus.Histogram
	reloadsTotal       *prometheus.CounterVec

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// New creates metrics registered on the default Prometheus registry.
func New() *Metrics {
	return &Metrics{
		decisionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "saturn_decisions_total",
				Help: "Total number of screening decisions by final action",
			},
			[]string{"action", "default"},
		),

		evaluationDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "saturn_evaluation_duration_seconds",
				Help:    "Duration of rule evaluation in seconds",
				Buckets: prometheus.ExponentialBuckets(0.00001, 2, 16),
			},
		),

		reloadsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "saturn_rule_reloads_total",
				Help: "Total number of rule set reload attempts",
			},
			[]string{"status"},
		),

		httpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "saturn_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "status"},
		),

		httpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "saturn_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path"},
		),
	}
}

// DecisionEvaluated records one screening decision.
func (m *Metrics) DecisionEvaluated(action string, defaulted bool, duration time.Duration) {
	m.decisionsTotal.WithLabelValues(action, strconv.FormatBool(defaulted)).Inc()
	m.evaluationDuration.Observe(duration.Seconds())
}

// ReloadRecorded counts one rule reload attempt.
func (m *Metrics) ReloadRecorded(success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	m.reloadsTotal.WithLabelValues(status).Inc()
}

// HTTPRequestServed records one served HTTP request.
func (m *Metrics) HTTPRequestServed(path, method string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(path).Observe(duration.Seconds())
}
