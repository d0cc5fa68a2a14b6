package scoring

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EnsembleStatus describes how much of the ensemble contributed to a
// result.
type EnsembleStatus string

const (
	// EnsembleFull means all three engines contributed.
	EnsembleFull EnsembleStatus = "full"
	// EnsemblePartial means one or two engines were missing and the
	// remaining weights were renormalized. The result is degraded but
	// valid.
	EnsemblePartial EnsembleStatus = "partial"
)

// EnsembleResult is the final output of one scoring request: a bounded
// score, its risk tier, the per-engine sub-scores, the evidence trail,
// and the weight vector actually used after any reweighting. It is
// created once per request and immutable after construction; feedback
// later produces a separate override record, never an edit.
type EnsembleResult struct {
	ID         uuid.UUID `json:"id"`
	TicketID   string    `json:"ticket_id"`
	CustomerID string    `json:"customer_id"`

	FinalScore decimal.Decimal `json:"final_score"`
	Tier       Tier            `json:"tier"`
	Status     EnsembleStatus  `json:"status"`

	SubScores        []SubScore                     `json:"sub_scores"`
	Evidence         EvidenceTrail                  `json:"evidence"`
	EffectiveWeights map[EngineKind]decimal.Decimal `json:"effective_weights"`

	SnapshotVersion string `json:"snapshot_version"`
	ConfigVersion   int    `json:"config_version"`

	ScoredAt  time.Time `json:"scored_at"`
	LatencyMs int64     `json:"latency_ms"`
}

// Degraded reports whether the result was produced without the full
// ensemble. A degraded result visibly states which engines contributed so
// a reduced-confidence score is never mistaken for a full-ensemble one.
func (r *EnsembleResult) Degraded() bool {
	return r.Status == EnsemblePartial
}

// ContributingEngines returns the engines whose sub-scores entered the
// combination, in fixed engine order.
func (r *EnsembleResult) ContributingEngines() []EngineKind {
	engines := make([]EngineKind, 0, len(r.SubScores))
	for _, s := range r.SubScores {
		if s.Usable() {
			engines = append(engines, s.Engine)
		}
	}
	return engines
}
