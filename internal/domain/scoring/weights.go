package scoring

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// WeightConfig maps each engine kind to its configured combination
// weight. Weights are non-negative and sum to 1.0 at rest; the combiner
// derives a different runtime vector when engines are missing.
type WeightConfig struct {
	Rule       decimal.Decimal `json:"rule"`
	Classifier decimal.Decimal `json:"classifier"`
	Reasoning  decimal.Decimal `json:"reasoning"`
}

// DefaultWeightConfig returns the 0.50/0.25/0.25 split used when no
// weights are configured.
func DefaultWeightConfig() WeightConfig {
	return WeightConfig{
		Rule:       decimal.NewFromFloat(0.50),
		Classifier: decimal.NewFromFloat(0.25),
		Reasoning:  decimal.NewFromFloat(0.25),
	}
}

// Weight returns the configured weight for an engine kind.
func (w WeightConfig) Weight(kind EngineKind) decimal.Decimal {
	switch kind {
	case EngineRule:
		return w.Rule
	case EngineClassifier:
		return w.Classifier
	case EngineReasoning:
		return w.Reasoning
	}
	return decimal.Zero
}

// weightSumTolerance allows for float-to-decimal conversion noise when
// checking that configured weights sum to 1.0.
var weightSumTolerance = decimal.NewFromFloat(0.0001)

// Validate checks that weights are non-negative and sum to 1.0. A
// violation is a configuration error reported at startup, never
// per-request.
func (w WeightConfig) Validate() error {
	for _, kind := range EngineOrder {
		if w.Weight(kind).IsNegative() {
			return fmt.Errorf("%w: %s weight is negative", ErrInvalidWeights, kind)
		}
	}
	sum := w.Rule.Add(w.Classifier).Add(w.Reasoning)
	if sum.Sub(decimal.NewFromInt(1)).Abs().GreaterThan(weightSumTolerance) {
		return fmt.Errorf("%w: weights sum to %s, want 1.0", ErrInvalidWeights, sum)
	}
	return nil
}

// Tier is a discrete risk band derived from the final numeric score.
// Bands are ordered from least to most risky.
type Tier string

const (
	TierLow      Tier = "low"
	TierMedium   Tier = "medium"
	TierHigh     Tier = "high"
	TierCritical Tier = "critical"
)

// TierThresholds partitions [0,1000] into four contiguous,
// non-overlapping bands. A score equal to a band's floor belongs to that
// band. Thresholds are configuration, not hard-coded logic.
type TierThresholds struct {
	LowFloor    decimal.Decimal `json:"low_floor"`    // score >= LowFloor    -> low
	MediumFloor decimal.Decimal `json:"medium_floor"` // score >= MediumFloor -> medium
	HighFloor   decimal.Decimal `json:"high_floor"`   // score >= HighFloor   -> high, below -> critical
}

// DefaultTierThresholds returns the 800/600/300 default bands.
func DefaultTierThresholds() TierThresholds {
	return TierThresholds{
		LowFloor:    decimal.NewFromInt(800),
		MediumFloor: decimal.NewFromInt(600),
		HighFloor:   decimal.NewFromInt(300),
	}
}

// Validate checks that the floors are strictly descending and inside
// (0,1000]. This keeps the four bands contiguous and exhaustive.
func (t TierThresholds) Validate() error {
	if t.LowFloor.GreaterThan(maxScore) || !t.LowFloor.IsPositive() {
		return fmt.Errorf("%w: low_floor %s outside (0,1000]", ErrInvalidThresholds, t.LowFloor)
	}
	if !t.MediumFloor.LessThan(t.LowFloor) || !t.MediumFloor.IsPositive() {
		return fmt.Errorf("%w: medium_floor %s must be in (0, low_floor)", ErrInvalidThresholds, t.MediumFloor)
	}
	if !t.HighFloor.LessThan(t.MediumFloor) || !t.HighFloor.IsPositive() {
		return fmt.Errorf("%w: high_floor %s must be in (0, medium_floor)", ErrInvalidThresholds, t.HighFloor)
	}
	return nil
}

// TierFor maps a score to exactly one tier.
func (t TierThresholds) TierFor(score decimal.Decimal) Tier {
	switch {
	case score.GreaterThanOrEqual(t.LowFloor):
		return TierLow
	case score.GreaterThanOrEqual(t.MediumFloor):
		return TierMedium
	case score.GreaterThanOrEqual(t.HighFloor):
		return TierHigh
	default:
		return TierCritical
	}
}
