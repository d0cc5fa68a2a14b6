package scoring

import (
	"context"

	"github.com/google/uuid"
)

// ResultRepository persists ensemble results. Results are write-once:
// there is no update operation, by contract.
type ResultRepository interface {
	Create(ctx context.Context, result *EnsembleResult) error
	GetByID(ctx context.Context, id uuid.UUID) (*EnsembleResult, error)
	GetByTicketID(ctx context.Context, ticketID string) (*EnsembleResult, error)
	ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]*EnsembleResult, error)
}

// SnapshotReader fetches the feature snapshot for a customer. A customer
// with no computed features yields the neutral all-zero snapshot, not an
// error.
type SnapshotReader interface {
	Read(ctx context.Context, customerID string) (*FeatureSnapshot, error)
}
