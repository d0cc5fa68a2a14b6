package handler

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsHandler exposes the Prometheus collectors registered by the
// scoring pipeline.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
