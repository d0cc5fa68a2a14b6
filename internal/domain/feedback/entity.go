package feedback

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Verdict is an agent's judgement on a prior ensemble result.
type Verdict string

const (
	VerdictConfirm  Verdict = "confirm"
	VerdictReject   Verdict = "reject"
	VerdictEscalate Verdict = "escalate"
)

var (
	ErrInvalidVerdict  = errors.New("invalid override verdict")
	ErrMissingResultID = errors.New("override must reference a result")
	ErrOverrideNotFound = errors.New("override record not found")
)

// Override is an agent's verdict on a previously produced EnsembleResult.
// It is stored as a separate labeled record referencing the result by ID;
// the original result is never mutated retroactively.
type Override struct {
	ID        uuid.UUID `json:"id"`
	ResultID  uuid.UUID `json:"result_id"`
	AgentID   string    `json:"agent_id"`
	Verdict   Verdict   `json:"verdict"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewOverride creates an override record for a result.
func NewOverride(resultID uuid.UUID, agentID string, verdict Verdict, note string) (*Override, error) {
	if resultID == uuid.Nil {
		return nil, ErrMissingResultID
	}
	switch verdict {
	case VerdictConfirm, VerdictReject, VerdictEscalate:
	default:
		return nil, ErrInvalidVerdict
	}
	return &Override{
		ID:        uuid.New(),
		ResultID:  resultID,
		AgentID:   agentID,
		Verdict:   verdict,
		Note:      note,
		CreatedAt: time.Now().UTC(),
	}, nil
}
