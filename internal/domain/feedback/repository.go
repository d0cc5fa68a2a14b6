package feedback

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists override records. Records are append-only.
type Repository interface {
	Create(ctx context.Context, override *Override) error
	ListByResult(ctx context.Context, resultID uuid.UUID) ([]*Override, error)
}
