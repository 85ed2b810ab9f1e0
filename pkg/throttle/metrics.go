package throttle

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains Prometheus metrics for the throttle.
type Metrics struct {
	observations       *prometheus.CounterVec
	worstCaseFallbacks *prometheus.CounterVec
	adjustmentFactor   prometheus.Histogram
}

// NewMetrics creates a new Metrics instance with Prometheus collectors
// registered on the default registry.
func NewMetrics() *Metrics {
	return &Metrics{
		observations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "saturn_throttle_observations_total",
				Help: "Total number of settled transactions observed by the throttle",
			},
			[]string{"data_gap"},
		),

		worstCaseFallbacks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "saturn_throttle_worst_case_fallbacks_total",
				Help: "Total number of state lookups that fell back to the worst-case vector",
			},
			[]string{"node_id"},
		),

		adjustmentFactor: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "saturn_throttle_adjustment_factor",
				Help:    "Distribution of limit adjustment factors applied to base limits",
				Buckets: prometheus.LinearBuckets(0, 0.1, 11),
			},
		),
	}
}

// ObservationRecorded counts one observed settlement.
func (m *Metrics) ObservationRecorded(dataGap bool) {
	label := "false"
	if dataGap {
		label = "true"
	}
	m.observations.WithLabelValues(label).Inc()
}

// WorstCaseFallback counts a state lookup that used the worst-case vector.
func (m *Metrics) WorstCaseFallback(nodeID string) {
	m.worstCaseFallbacks.WithLabelValues(nodeID).Inc()
}

// LimitAdjusted records the adjustment factor applied to a base limit.
func (m *Metrics) LimitAdjusted(factor float64) {
	m.adjustmentFactor.Observe(factor)
}
