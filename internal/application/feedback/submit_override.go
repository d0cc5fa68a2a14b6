package feedback

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"ticket-risk-scoring/internal/domain/feedback"
	"ticket-risk-scoring/internal/domain/scoring"
)

// ErrPersistenceDisabled is returned when the service runs without a
// database and override records cannot be stored.
var ErrPersistenceDisabled = errors.New("feedback requires result persistence to be enabled")

// Service handles agent override verdicts on prior ensemble results.
// An override is a new labeled record referencing the original result;
// the result itself is never edited.
type Service struct {
	results   scoring.ResultRepository
	overrides feedback.Repository
}

// NewService creates the feedback service. Both repositories may be nil
// when the service runs without persistence.
func NewService(results scoring.ResultRepository, overrides feedback.Repository) *Service {
	return &Service{results: results, overrides: overrides}
}

// SubmitOverride validates that the referenced result exists and stores
// the agent's verdict as a separate record.
func (s *Service) SubmitOverride(ctx context.Context, resultID uuid.UUID, agentID string, verdict feedback.Verdict, note string) (*feedback.Override, error) {
	if s.results == nil || s.overrides == nil {
		return nil, ErrPersistenceDisabled
	}

	if _, err := s.results.GetByID(ctx, resultID); err != nil {
		return nil, err
	}

	override, err := feedback.NewOverride(resultID, agentID, verdict, note)
	if err != nil {
		return nil, err
	}

	if err := s.overrides.Create(ctx, override); err != nil {
		return nil, err
	}
	return override, nil
}

// ListOverrides returns all override records for a result.
func (s *Service) ListOverrides(ctx context.Context, resultID uuid.UUID) ([]*feedback.Override, error) {
	if s.overrides == nil {
		return nil, ErrPersistenceDisabled
	}
	return s.overrides.ListByResult(ctx, resultID)
}
