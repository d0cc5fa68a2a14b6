package scoring

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestWeightConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultWeightConfig().Validate())

	bad := WeightConfig{
		Rule:       decimal.NewFromFloat(0.7),
		Classifier: decimal.NewFromFloat(0.25),
		Reasoning:  decimal.NewFromFloat(0.25),
	}
	assert.ErrorIs(t, bad.Validate(), ErrInvalidWeights)

	negative := WeightConfig{
		Rule:       decimal.NewFromFloat(1.25),
		Classifier: decimal.NewFromFloat(-0.25),
		Reasoning:  decimal.Zero,
	}
	assert.ErrorIs(t, negative.Validate(), ErrInvalidWeights)
}

func TestTierThresholdsValidate(t *testing.T) {
	assert.NoError(t, DefaultTierThresholds().Validate())

	tests := []struct {
		name                    string
		low, medium, high int64
	}{
		{"not descending", 600, 600, 300},
		{"inverted", 300, 600, 800},
		{"zero floor", 800, 600, 0},
		{"above scale", 1200, 600, 300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			thresholds := TierThresholds{
				LowFloor:    decimal.NewFromInt(tt.low),
				MediumFloor: decimal.NewFromInt(tt.medium),
				HighFloor:   decimal.NewFromInt(tt.high),
			}
			assert.ErrorIs(t, thresholds.Validate(), ErrInvalidThresholds)
		})
	}
}

func TestTierForCoversWholeScale(t *testing.T) {
	thresholds := DefaultTierThresholds()

	tests := []struct {
		score float64
		want  Tier
	}{
		{1000, TierLow},
		{850, TierLow},
		{800, TierLow}, // boundary belongs to the band whose floor it is
		{799.99, TierMedium},
		{600, TierMedium},
		{599.99, TierHigh},
		{430, TierHigh},
		{300, TierHigh},
		{299.99, TierCritical},
		{0, TierCritical},
	}
	for _, tt := range tests {
		got := thresholds.TierFor(decimal.NewFromFloat(tt.score))
		assert.Equal(t, tt.want, got, "score %v", tt.score)
	}
}
