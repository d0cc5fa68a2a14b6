package scoring

import (
	"time"

	domain "ticket-risk-scoring/internal/domain/scoring"
	"ticket-risk-scoring/internal/domain/ticket"
)

// ScoreTicketRequest is the API payload for one scoring request.
type ScoreTicketRequest struct {
	TicketID   string `json:"ticket_id"`
	CustomerID string `json:"customer_id"`
	Subject    string `json:"subject,omitempty"`
	Body       string `json:"body"`
	Channel    string `json:"channel,omitempty"`
	Category   string `json:"category,omitempty"`
}

// ToTicket converts the request into the domain ticket.
func (r *ScoreTicketRequest) ToTicket() (*ticket.Ticket, error) {
	t := &ticket.Ticket{
		ID:         r.TicketID,
		CustomerID: r.CustomerID,
		Subject:    r.Subject,
		Body:       r.Body,
		Channel:    ticket.Channel(r.Channel),
		Category:   ticket.Category(r.Category),
		OpenedAt:   time.Now().UTC(),
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// ScoreTicketResponse is the serialized ensemble result. The ensemble
// status and the contributing engines are always present so a degraded
// score is never mistaken for a full-ensemble one.
type ScoreTicketResponse struct {
	ResultID         string                `json:"result_id"`
	TicketID         string                `json:"ticket_id"`
	CustomerID       string                `json:"customer_id"`
	FinalScore       string                `json:"final_score"`
	Tier             string                `json:"tier"`
	EnsembleStatus   string                `json:"ensemble_status"`
	Engines          []string              `json:"contributing_engines"`
	SubScores        []domain.SubScore     `json:"sub_scores"`
	Evidence         domain.EvidenceTrail  `json:"evidence"`
	EffectiveWeights map[string]string     `json:"effective_weights"`
	SnapshotVersion  string                `json:"snapshot_version"`
	ConfigVersion    int                   `json:"config_version"`
	ScoredAt         time.Time             `json:"scored_at"`
	LatencyMs        int64                 `json:"latency_ms"`
}

// NewScoreTicketResponse maps a domain result onto the API shape.
func NewScoreTicketResponse(result *domain.EnsembleResult) *ScoreTicketResponse {
	engines := make([]string, 0, 3)
	for _, kind := range result.ContributingEngines() {
		engines = append(engines, string(kind))
	}
	weights := make(map[string]string, len(result.EffectiveWeights))
	for kind, w := range result.EffectiveWeights {
		weights[string(kind)] = w.String()
	}
	return &ScoreTicketResponse{
		ResultID:         result.ID.String(),
		TicketID:         result.TicketID,
		CustomerID:       result.CustomerID,
		FinalScore:       result.FinalScore.String(),
		Tier:             string(result.Tier),
		EnsembleStatus:   string(result.Status),
		Engines:          engines,
		SubScores:        result.SubScores,
		Evidence:         result.Evidence,
		EffectiveWeights: weights,
		SnapshotVersion:  result.SnapshotVersion,
		ConfigVersion:    result.ConfigVersion,
		ScoredAt:         result.ScoredAt,
		LatencyMs:        result.LatencyMs,
	}
}
