package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"ticket-risk-scoring/internal/domain/scoring"
)

// ResultModel is the database model for ensemble results. Sub-scores,
// evidence and effective weights are stored as jsonb; results are
// write-once so there is no update path.
type ResultModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	TicketID   string    `gorm:"type:varchar(100);index;not null"`
	CustomerID string    `gorm:"type:varchar(100);index;not null"`

	FinalScore decimal.Decimal `gorm:"type:decimal(7,2);not null"`
	Tier       string          `gorm:"type:varchar(20);not null"`
	Status     string          `gorm:"type:varchar(20);not null"`

	SubScores        string `gorm:"type:jsonb;not null"`
	Evidence         string `gorm:"type:jsonb;not null"`
	EffectiveWeights string `gorm:"type:jsonb;not null"`

	SnapshotVersion string `gorm:"type:varchar(50)"`
	ConfigVersion   int    `gorm:"not null"`

	ScoredAt  time.Time `gorm:"index;not null"`
	LatencyMs int64     `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for ensemble results
func (ResultModel) TableName() string {
	return "ensemble_results"
}

// ResultRepository implements scoring.ResultRepository
type ResultRepository struct {
	db *gorm.DB
}

// NewResultRepository creates a new result repository
func NewResultRepository(client *Client) *ResultRepository {
	return &ResultRepository{db: client.DB()}
}

// Create stores an ensemble result
func (r *ResultRepository) Create(ctx context.Context, result *scoring.EnsembleResult) error {
	subScores, _ := json.Marshal(result.SubScores)
	evidence, _ := json.Marshal(result.Evidence)
	weights, _ := json.Marshal(result.EffectiveWeights)

	model := &ResultModel{
		ID:               result.ID,
		TicketID:         result.TicketID,
		CustomerID:       result.CustomerID,
		FinalScore:       result.FinalScore,
		Tier:             string(result.Tier),
		Status:           string(result.Status),
		SubScores:        string(subScores),
		Evidence:         string(evidence),
		EffectiveWeights: string(weights),
		SnapshotVersion:  result.SnapshotVersion,
		ConfigVersion:    result.ConfigVersion,
		ScoredAt:         result.ScoredAt,
		LatencyMs:        result.LatencyMs,
		CreatedAt:        time.Now().UTC(),
	}

	return r.db.WithContext(ctx).Create(model).Error
}

// GetByID retrieves a result by ID
func (r *ResultRepository) GetByID(ctx context.Context, id uuid.UUID) (*scoring.EnsembleResult, error) {
	var model ResultModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, scoring.ErrResultNotFound
		}
		return nil, err
	}
	return modelToResult(&model), nil
}

// GetByTicketID retrieves the most recent result for a ticket
func (r *ResultRepository) GetByTicketID(ctx context.Context, ticketID string) (*scoring.EnsembleResult, error) {
	var model ResultModel
	if err := r.db.WithContext(ctx).
		Where("ticket_id = ?", ticketID).
		Order("scored_at DESC").
		First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, scoring.ErrResultNotFound
		}
		return nil, err
	}
	return modelToResult(&model), nil
}

// ListByCustomer retrieves results for a customer, newest first
func (r *ResultRepository) ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]*scoring.EnsembleResult, error) {
	var models []ResultModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("scored_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&models).Error; err != nil {
		return nil, err
	}

	results := make([]*scoring.EnsembleResult, len(models))
	for i, m := range models {
		results[i] = modelToResult(&m)
	}
	return results, nil
}

func modelToResult(m *ResultModel) *scoring.EnsembleResult {
	var subScores []scoring.SubScore
	var evidence scoring.EvidenceTrail
	var weights map[scoring.EngineKind]decimal.Decimal
	json.Unmarshal([]byte(m.SubScores), &subScores)
	json.Unmarshal([]byte(m.Evidence), &evidence)
	json.Unmarshal([]byte(m.EffectiveWeights), &weights)

	return &scoring.EnsembleResult{
		ID:               m.ID,
		TicketID:         m.TicketID,
		CustomerID:       m.CustomerID,
		FinalScore:       m.FinalScore,
		Tier:             scoring.Tier(m.Tier),
		Status:           scoring.EnsembleStatus(m.Status),
		SubScores:        subScores,
		Evidence:         evidence,
		EffectiveWeights: weights,
		SnapshotVersion:  m.SnapshotVersion,
		ConfigVersion:    m.ConfigVersion,
		ScoredAt:         m.ScoredAt,
		LatencyMs:        m.LatencyMs,
	}
}
