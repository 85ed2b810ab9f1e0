package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns an HTTP handler for the Prometheus metrics endpoint.
// It exposes every collector registered on the default registry, including
// the throttle's, in the standard exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
