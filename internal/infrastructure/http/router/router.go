package router

import (
	"net/http"

	"ticket-risk-scoring/internal/interfaces/http/handler"
)

// Router holds all HTTP handlers
type Router struct {
	mux            *http.ServeMux
	scoringHandler *handler.ScoringHandler
	healthHandler  *handler.HealthHandler
	metricsEnabled bool
}

// NewRouter creates a new router with all routes configured
func NewRouter(
	scoringHandler *handler.ScoringHandler,
	healthHandler *handler.HealthHandler,
	metricsEnabled bool,
) *Router {
	r := &Router{
		mux:            http.NewServeMux(),
		scoringHandler: scoringHandler,
		healthHandler:  healthHandler,
		metricsEnabled: metricsEnabled,
	}
	r.setupRoutes()
	return r
}

func (r *Router) setupRoutes() {
	// Health endpoints
	r.mux.HandleFunc("GET /health", r.healthHandler.Health)
	r.mux.HandleFunc("GET /ready", r.healthHandler.Ready)
	r.mux.HandleFunc("GET /live", r.healthHandler.Live)

	// Scoring endpoints
	r.mux.HandleFunc("POST /api/v1/risk/score", r.scoringHandler.ScoreTicket)
	r.mux.HandleFunc("GET /api/v1/risk/results/{id}", r.scoringHandler.GetResult)
	r.mux.HandleFunc("GET /api/v1/risk/tickets/{id}/result", r.scoringHandler.GetTicketResult)

	// Scoring history per customer
	r.mux.HandleFunc("GET /api/v1/risk/customers/{id}/results", r.scoringHandler.ListCustomerResults)

	// Agent feedback
	r.mux.HandleFunc("POST /api/v1/risk/results/{id}/override", r.scoringHandler.SubmitOverride)
	r.mux.HandleFunc("GET /api/v1/risk/results/{id}/overrides", r.scoringHandler.ListOverrides)

	if r.metricsEnabled {
		r.mux.Handle("GET /metrics", handler.MetricsHandler())
	}
}

// ServeHTTP implements http.Handler
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	// Add CORS headers
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if req.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	r.mux.ServeHTTP(w, req)
}

// Handler returns the http.Handler
func (r *Router) Handler() http.Handler {
	return r
}
