package scoring

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func combineInput(subScores ...SubScore) CombineInput {
	return CombineInput{
		TicketID:        "tkt-1",
		CustomerID:      "cust-1",
		SubScores:       subScores,
		Weights:         DefaultWeightConfig(),
		Thresholds:      DefaultTierThresholds(),
		SnapshotVersion: "v42",
		ConfigVersion:   1,
	}
}

func TestCombineFullEnsemble(t *testing.T) {
	result, err := Combine(combineInput(
		OKSubScore(EngineRule, decimal.NewFromInt(430)),
		OKSubScore(EngineClassifier, decimal.NewFromInt(800)),
		OKSubScore(EngineReasoning, decimal.NewFromInt(750)),
	))
	require.NoError(t, err)

	// 430*0.50 + 800*0.25 + 750*0.25 = 602.5
	assert.True(t, decimal.NewFromFloat(602.5).Equal(result.FinalScore), "got %s", result.FinalScore)
	assert.Equal(t, TierMedium, result.Tier)
	assert.Equal(t, EnsembleFull, result.Status)
	assert.False(t, result.Degraded())
	assert.Equal(t, "v42", result.SnapshotVersion)
	assert.Equal(t, 1, result.ConfigVersion)
}

func TestCombineReweightsOverAvailableEngines(t *testing.T) {
	result, err := Combine(combineInput(
		OKSubScore(EngineRule, decimal.NewFromInt(600)),
		FailedSubScore(EngineClassifier, StatusTimeout, Note("backend timed out")),
		OKSubScore(EngineReasoning, decimal.NewFromInt(300)),
	))
	require.NoError(t, err)

	// Remaining weights 0.50 and 0.25 renormalize to 2/3 and 1/3:
	// 600*2/3 + 300*1/3 = 500.
	assert.True(t, decimal.NewFromInt(500).Equal(result.FinalScore), "got %s", result.FinalScore)
	assert.Equal(t, EnsemblePartial, result.Status)
	assert.True(t, result.Degraded())

	// Effective weights sum to 1 over the usable engines, zero elsewhere.
	sum := decimal.Zero
	for _, w := range result.EffectiveWeights {
		sum = sum.Add(w)
	}
	assert.True(t, sum.Sub(decimal.NewFromInt(1)).Abs().LessThan(decimal.NewFromFloat(0.0001)))
	assert.True(t, result.EffectiveWeights[EngineClassifier].IsZero())

	assert.Equal(t, []EngineKind{EngineRule, EngineReasoning}, result.ContributingEngines())
}

func TestCombineSingleEngineGetsFullWeight(t *testing.T) {
	result, err := Combine(combineInput(
		OKSubScore(EngineRule, decimal.NewFromInt(430)),
		FailedSubScore(EngineClassifier, StatusError, Note("malformed response")),
		FailedSubScore(EngineReasoning, StatusTimeout, Note("budget exceeded")),
	))
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(430).Equal(result.FinalScore))
	assert.True(t, decimal.NewFromInt(1).Equal(result.EffectiveWeights[EngineRule]))
	assert.Equal(t, EnsemblePartial, result.Status)
}

func TestCombineMissingEngineTreatedAsUnavailable(t *testing.T) {
	// Reasoning never reported at all.
	result, err := Combine(combineInput(
		OKSubScore(EngineRule, decimal.NewFromInt(500)),
		OKSubScore(EngineClassifier, decimal.NewFromInt(500)),
	))
	require.NoError(t, err)

	require.Len(t, result.SubScores, 3)
	assert.Equal(t, EngineReasoning, result.SubScores[2].Engine)
	assert.Equal(t, StatusUnavailable, result.SubScores[2].Status)
	assert.Equal(t, EnsemblePartial, result.Status)
}

func TestCombineZeroUsableEnginesFails(t *testing.T) {
	_, err := Combine(combineInput(
		FailedSubScore(EngineRule, StatusError, Note("boom")),
		FailedSubScore(EngineClassifier, StatusTimeout),
		FailedSubScore(EngineReasoning, StatusUnavailable),
	))
	assert.ErrorIs(t, err, ErrEnsembleUnavailable)

	_, err = Combine(combineInput())
	assert.ErrorIs(t, err, ErrEnsembleUnavailable)
}

func TestCombineZeroWeightedSurvivorsFail(t *testing.T) {
	in := combineInput(
		OKSubScore(EngineClassifier, decimal.NewFromInt(700)),
	)
	in.Weights = WeightConfig{
		Rule:       decimal.NewFromInt(1),
		Classifier: decimal.Zero,
		Reasoning:  decimal.Zero,
	}
	_, err := Combine(in)
	assert.ErrorIs(t, err, ErrEnsembleUnavailable)
}

func TestCombineIsDeterministic(t *testing.T) {
	scores := []SubScore{
		OKSubScore(EngineReasoning, decimal.NewFromInt(750), Note("pattern match")),
		OKSubScore(EngineRule, decimal.NewFromInt(430), Note("penalty applied")),
		OKSubScore(EngineClassifier, decimal.NewFromInt(800), Note("low fraud probability")),
	}

	first, err := Combine(combineInput(scores...))
	require.NoError(t, err)

	// Same sub-scores in a different arrival order.
	reordered := []SubScore{scores[2], scores[0], scores[1]}
	second, err := Combine(combineInput(reordered...))
	require.NoError(t, err)

	assert.True(t, first.FinalScore.Equal(second.FinalScore))
	assert.Equal(t, first.Evidence, second.Evidence)
	assert.Equal(t, first.SubScores, second.SubScores)
}

func TestCombineEvidenceGroupedInEngineOrder(t *testing.T) {
	result, err := Combine(combineInput(
		OKSubScore(EngineReasoning, decimal.NewFromInt(700), StageNote("classification", "looks routine"), StageNote("aggregate", "rating 7.0")),
		FailedSubScore(EngineClassifier, StatusTimeout, Note("exceeded 500ms budget")),
		OKSubScore(EngineRule, decimal.NewFromInt(900), Note("no penalties")),
	))
	require.NoError(t, err)

	entries := result.Evidence.Entries
	require.Len(t, entries, 4)
	assert.Equal(t, EngineRule, entries[0].Engine)
	assert.Equal(t, "no penalties", entries[0].Note)

	// The missing engine contributes exactly one line naming the cause.
	assert.Equal(t, EngineClassifier, entries[1].Engine)
	assert.Contains(t, entries[1].Note, "unavailable (timeout)")
	assert.Contains(t, entries[1].Note, "exceeded 500ms budget")

	assert.Equal(t, EngineReasoning, entries[2].Engine)
	assert.Equal(t, "classification", entries[2].Stage)
	assert.Equal(t, "aggregate", entries[3].Stage)
}

func TestCombineClampsFinalScore(t *testing.T) {
	result, err := Combine(combineInput(
		OKSubScore(EngineRule, decimal.NewFromInt(1000)),
		OKSubScore(EngineClassifier, decimal.NewFromInt(1000)),
		OKSubScore(EngineReasoning, decimal.NewFromInt(1000)),
	))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1000).Equal(result.FinalScore))
	assert.Equal(t, TierLow, result.Tier)
}

func TestCombineErrorIsNotAScore(t *testing.T) {
	result, err := Combine(combineInput(
		FailedSubScore(EngineRule, StatusError),
		FailedSubScore(EngineClassifier, StatusError),
		FailedSubScore(EngineReasoning, StatusError),
	))
	require.Nil(t, result)
	require.True(t, errors.Is(err, ErrEnsembleUnavailable))
}
