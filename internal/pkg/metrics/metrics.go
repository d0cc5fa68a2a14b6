// Package metrics defines the Prometheus collectors for the scoring
// pipeline. Collectors are registered on the default registry and
// exposed through the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScoresTotal counts completed scoring requests by tier and
	// ensemble status.
	ScoresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "risk_scores_total",
		Help: "Completed scoring requests by tier and ensemble status.",
	}, []string{"tier", "status"})

	// ScoringUnavailableTotal counts requests where no engine produced
	// a usable sub-score.
	ScoringUnavailableTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "risk_scoring_unavailable_total",
		Help: "Scoring requests that failed because zero engines returned a usable sub-score.",
	})

	// EngineFailuresTotal counts per-engine sub-score failures by
	// status (timeout, error, unavailable).
	EngineFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "risk_engine_failures_total",
		Help: "Engine sub-score failures by engine and status.",
	}, []string{"engine", "status"})

	// ScoringDuration observes end-to-end scoring latency.
	ScoringDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "risk_scoring_duration_seconds",
		Help:    "End-to-end scoring request latency.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5},
	})
)
