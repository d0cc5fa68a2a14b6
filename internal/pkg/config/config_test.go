package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticket-risk-scoring/internal/domain/scoring"
)

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestValidateRejectsBadWeights(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scoring.RuleWeight = 0.9
	assert.ErrorIs(t, cfg.Validate(), scoring.ErrInvalidWeights)
}

func TestValidateRejectsBadThresholds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scoring.TierMediumFloor = 850 // above the low floor
	assert.ErrorIs(t, cfg.Validate(), scoring.ErrInvalidThresholds)
}

func TestValidateRejectsBadRuleWeights(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scoring.RuleWeights = map[string]float64{"chargeback_count": -5}
	assert.ErrorIs(t, cfg.Validate(), scoring.ErrInvalidRuleConfig)
}

func TestScoringParamsConversion(t *testing.T) {
	params := DefaultConfig().ScoringParams(3)

	assert.Equal(t, 3, params.Version)
	assert.True(t, decimal.NewFromInt(1000).Equal(params.RuleBase))
	assert.NoError(t, params.Weights.Validate())
	assert.NoError(t, params.Thresholds.Validate())
}

func TestStoreReloadSwapsVersion(t *testing.T) {
	store := NewStore(DefaultConfig())
	require.Equal(t, 1, store.Params().Version)

	updated := DefaultConfig()
	updated.Scoring.RuleWeight = 0.4
	updated.Scoring.ClassifierWeight = 0.3
	updated.Scoring.ReasoningWeight = 0.3
	require.NoError(t, store.Reload(updated))

	params := store.Params()
	assert.Equal(t, 2, params.Version)
	assert.True(t, decimal.NewFromFloat(0.4).Equal(params.Weights.Rule))
}

func TestStoreRejectsInvalidReload(t *testing.T) {
	store := NewStore(DefaultConfig())
	before := store.Params()

	bad := DefaultConfig()
	bad.Scoring.TierHighFloor = 900
	require.Error(t, store.Reload(bad))

	// The previous version stays in effect untouched.
	assert.Same(t, before, store.Params())
	assert.Equal(t, 1, store.Params().Version)
}

func TestRequestsSeeOneConsistentVersion(t *testing.T) {
	store := NewStore(DefaultConfig())

	// A request captures the pointer once; a concurrent reload must not
	// change what the captured snapshot reads.
	captured := store.Params()
	capturedRule := captured.Weights.Rule

	updated := DefaultConfig()
	updated.Scoring.RuleWeight = 0.4
	updated.Scoring.ClassifierWeight = 0.3
	updated.Scoring.ReasoningWeight = 0.3
	require.NoError(t, store.Reload(updated))

	assert.True(t, capturedRule.Equal(captured.Weights.Rule))
	assert.True(t, decimal.NewFromFloat(0.5).Equal(capturedRule))
}
