package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	feedbackapp "ticket-risk-scoring/internal/application/feedback"
	scoringapp "ticket-risk-scoring/internal/application/scoring"
	"ticket-risk-scoring/internal/domain/feedback"
	"ticket-risk-scoring/internal/domain/scoring"
)

// ScoringHandler handles risk scoring HTTP requests.
type ScoringHandler struct {
	orchestrator *scoringapp.Orchestrator
	feedback     *feedbackapp.Service
}

// NewScoringHandler creates a new scoring handler.
func NewScoringHandler(orchestrator *scoringapp.Orchestrator, feedbackService *feedbackapp.Service) *ScoringHandler {
	return &ScoringHandler{
		orchestrator: orchestrator,
		feedback:     feedbackService,
	}
}

// ScoreTicket handles POST /api/v1/risk/score
func (h *ScoringHandler) ScoreTicket(w http.ResponseWriter, r *http.Request) {
	var req scoringapp.ScoreTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	t, err := req.ToTicket()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.orchestrator.Execute(r.Context(), t)
	if err != nil {
		switch {
		case errors.Is(err, scoring.ErrEnsembleUnavailable):
			// Distinct terminal outcome: the caller must never receive
			// a fabricated numeric score.
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"outcome": "scoring_unavailable",
				"error":   err.Error(),
			})
		case errors.Is(err, r.Context().Err()):
			writeError(w, 499, "request canceled")
		default:
			writeError(w, http.StatusInternalServerError, "scoring failed: "+err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, scoringapp.NewScoreTicketResponse(result))
}

// GetResult handles GET /api/v1/risk/results/{id}
func (h *ScoringHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	result, err := h.orchestrator.GetResult(r.Context(), id)
	if err != nil {
		if errors.Is(err, scoring.ErrResultNotFound) {
			writeError(w, http.StatusNotFound, "result not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get result: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, scoringapp.NewScoreTicketResponse(result))
}

// OverrideRequest is the payload for an agent override verdict.
type OverrideRequest struct {
	AgentID string `json:"agent_id"`
	Verdict string `json:"verdict"`
	Note    string `json:"note,omitempty"`
}

// SubmitOverride handles POST /api/v1/risk/results/{id}/override
func (h *ScoringHandler) SubmitOverride(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req OverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	override, err := h.feedback.SubmitOverride(r.Context(), id, req.AgentID, feedback.Verdict(req.Verdict), req.Note)
	if err != nil {
		switch {
		case errors.Is(err, scoring.ErrResultNotFound):
			writeError(w, http.StatusNotFound, "result not found")
		case errors.Is(err, feedback.ErrInvalidVerdict):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, feedbackapp.ErrPersistenceDisabled):
			writeError(w, http.StatusServiceUnavailable, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to store override: "+err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, override)
}

// ListOverrides handles GET /api/v1/risk/results/{id}/overrides
func (h *ScoringHandler) ListOverrides(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	overrides, err := h.feedback.ListOverrides(r.Context(), id)
	if err != nil {
		if errors.Is(err, feedbackapp.ErrPersistenceDisabled) {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to list overrides: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"overrides": overrides})
}

// GetTicketResult handles GET /api/v1/risk/tickets/{id}/result
func (h *ScoringHandler) GetTicketResult(w http.ResponseWriter, r *http.Request) {
	ticketID := r.PathValue("id")
	if ticketID == "" {
		writeError(w, http.StatusBadRequest, "ticket id is required")
		return
	}

	result, err := h.orchestrator.GetTicketResult(r.Context(), ticketID)
	if err != nil {
		if errors.Is(err, scoring.ErrResultNotFound) {
			writeError(w, http.StatusNotFound, "no result for ticket")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get result: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, scoringapp.NewScoreTicketResponse(result))
}

// ListCustomerResults handles GET /api/v1/risk/customers/{id}/results
func (h *ScoringHandler) ListCustomerResults(w http.ResponseWriter, r *http.Request) {
	customerID := r.PathValue("id")
	if customerID == "" {
		writeError(w, http.StatusBadRequest, "customer id is required")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	results, err := h.orchestrator.ListCustomerResults(r.Context(), customerID, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list results: "+err.Error())
		return
	}

	responses := make([]*scoringapp.ScoreTicketResponse, 0, len(results))
	for _, result := range results {
		responses = append(responses, scoringapp.NewScoreTicketResponse(result))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"results": responses})
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := r.PathValue("id")
	if idStr == "" {
		writeError(w, http.StatusBadRequest, "result id is required")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid result id")
		return uuid.Nil, false
	}
	return id, true
}
