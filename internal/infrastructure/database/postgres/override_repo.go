package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ticket-risk-scoring/internal/domain/feedback"
)

// OverrideModel is the database model for agent override verdicts
type OverrideModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ResultID  uuid.UUID `gorm:"type:uuid;index;not null"`
	AgentID   string    `gorm:"type:varchar(100);index;not null"`
	Verdict   string    `gorm:"type:varchar(20);not null"`
	Note      string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for overrides
func (OverrideModel) TableName() string {
	return "result_overrides"
}

// OverrideRepository implements feedback.Repository
type OverrideRepository struct {
	db *gorm.DB
}

// NewOverrideRepository creates a new override repository
func NewOverrideRepository(client *Client) *OverrideRepository {
	return &OverrideRepository{db: client.DB()}
}

// Create stores an override record
func (r *OverrideRepository) Create(ctx context.Context, override *feedback.Override) error {
	model := &OverrideModel{
		ID:        override.ID,
		ResultID:  override.ResultID,
		AgentID:   override.AgentID,
		Verdict:   string(override.Verdict),
		Note:      override.Note,
		CreatedAt: override.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(model).Error
}

// ListByResult retrieves all overrides for a result, oldest first
func (r *OverrideRepository) ListByResult(ctx context.Context, resultID uuid.UUID) ([]*feedback.Override, error) {
	var models []OverrideModel
	if err := r.db.WithContext(ctx).
		Where("result_id = ?", resultID).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}

	overrides := make([]*feedback.Override, len(models))
	for i, m := range models {
		overrides[i] = &feedback.Override{
			ID:        m.ID,
			ResultID:  m.ResultID,
			AgentID:   m.AgentID,
			Verdict:   feedback.Verdict(m.Verdict),
			Note:      m.Note,
			CreatedAt: m.CreatedAt,
		}
	}
	return overrides, nil
}
