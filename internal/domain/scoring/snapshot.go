package scoring

import (
	"time"

	"github.com/shopspring/decimal"
)

// FeatureSnapshot is a versioned, immutable set of precomputed behavioral
// features for one customer. Every engine evaluating the same request must
// observe the same snapshot, so it is read once per request and never
// modified afterwards.
type FeatureSnapshot struct {
	CustomerID string                     `json:"customer_id"`
	Version    string                     `json:"version"`
	TakenAt    time.Time                  `json:"taken_at"`
	Features   map[string]decimal.Decimal `json:"features"`

	// Empty is set when the feature store had no computed features for the
	// customer. The snapshot then reads as all-zero, which is a valid
	// neutral input, not an error.
	Empty bool `json:"empty"`
}

// EmptySnapshot returns the neutral all-zero snapshot used when a customer
// has no computed features yet.
func EmptySnapshot(customerID string) *FeatureSnapshot {
	return &FeatureSnapshot{
		CustomerID: customerID,
		Version:    "none",
		TakenAt:    time.Now().UTC(),
		Features:   map[string]decimal.Decimal{},
		Empty:      true,
	}
}

// Feature returns the value of a named feature and whether it was present
// in the snapshot. Absent features read as zero.
func (s *FeatureSnapshot) Feature(name string) (decimal.Decimal, bool) {
	v, ok := s.Features[name]
	if !ok {
		return decimal.Zero, false
	}
	return v, true
}
