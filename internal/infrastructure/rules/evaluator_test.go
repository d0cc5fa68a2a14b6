package rules

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticket-risk-scoring/internal/domain/scoring"
	"ticket-risk-scoring/internal/domain/ticket"
)

func ruleParams() *scoring.Params {
	return &scoring.Params{
		Version:  1,
		RuleBase: decimal.NewFromInt(1000),
		RuleWeights: map[string]decimal.Decimal{
			"refund_request_rate": decimal.NewFromInt(200),
			"chargeback_count":    decimal.NewFromInt(150),
		},
		Weights:    scoring.DefaultWeightConfig(),
		Thresholds: scoring.DefaultTierThresholds(),
	}
}

func snapshotWith(features map[string]decimal.Decimal) *scoring.FeatureSnapshot {
	return &scoring.FeatureSnapshot{
		CustomerID: "cust-1",
		Version:    "v7",
		TakenAt:    time.Now(),
		Features:   features,
	}
}

func ruleRequest(snapshot *scoring.FeatureSnapshot) *scoring.Request {
	return &scoring.Request{
		Ticket:   &ticket.Ticket{ID: "tkt-1", CustomerID: "cust-1", Body: "refund please"},
		Snapshot: snapshot,
		Params:   ruleParams(),
	}
}

func TestEvaluatorWeightedPenalty(t *testing.T) {
	e := NewEvaluator()

	// 1000 - (0.6*200 + 3*150) = 1000 - 570 = 430
	sub := e.Score(context.Background(), ruleRequest(snapshotWith(map[string]decimal.Decimal{
		"refund_request_rate": decimal.NewFromFloat(0.6),
		"chargeback_count":    decimal.NewFromInt(3),
	})))

	require.Equal(t, scoring.StatusOK, sub.Status)
	assert.True(t, decimal.NewFromInt(430).Equal(sub.Value), "got %s", sub.Value)

	// Rationale names each contributing feature and the final formula.
	notes := make([]string, 0, len(sub.Rationale))
	for _, n := range sub.Rationale {
		notes = append(notes, n.Note)
	}
	assert.Contains(t, notes[len(notes)-1], "rule score 430")
}

func TestEvaluatorMonotonicity(t *testing.T) {
	e := NewEvaluator()

	low := e.Score(context.Background(), ruleRequest(snapshotWith(map[string]decimal.Decimal{
		"chargeback_count": decimal.NewFromInt(1),
	})))
	high := e.Score(context.Background(), ruleRequest(snapshotWith(map[string]decimal.Decimal{
		"chargeback_count": decimal.NewFromInt(4),
	})))

	// A worse feature value never raises the score.
	assert.True(t, high.Value.LessThan(low.Value))
}

func TestEvaluatorMissingFeatureIsNeutral(t *testing.T) {
	e := NewEvaluator()

	sub := e.Score(context.Background(), ruleRequest(snapshotWith(map[string]decimal.Decimal{
		"chargeback_count": decimal.NewFromInt(2),
	})))

	require.Equal(t, scoring.StatusOK, sub.Status)
	assert.True(t, decimal.NewFromInt(700).Equal(sub.Value))

	var noted bool
	for _, n := range sub.Rationale {
		if n.Note == "feature refund_request_rate unavailable, treated as neutral" {
			noted = true
		}
	}
	assert.True(t, noted, "missing feature must be noted in the rationale")
}

func TestEvaluatorEmptySnapshotScoresAtBase(t *testing.T) {
	e := NewEvaluator()

	sub := e.Score(context.Background(), ruleRequest(scoring.EmptySnapshot("cust-1")))

	require.Equal(t, scoring.StatusOK, sub.Status)
	assert.True(t, decimal.NewFromInt(1000).Equal(sub.Value))
	require.NotEmpty(t, sub.Rationale)
	assert.Contains(t, sub.Rationale[0].Note, "no feature snapshot")
}

func TestEvaluatorClampsAtZero(t *testing.T) {
	e := NewEvaluator()

	sub := e.Score(context.Background(), ruleRequest(snapshotWith(map[string]decimal.Decimal{
		"chargeback_count": decimal.NewFromInt(50),
	})))

	require.Equal(t, scoring.StatusOK, sub.Status)
	assert.True(t, sub.Value.IsZero())
}

func TestValidateWeights(t *testing.T) {
	base := decimal.NewFromInt(1000)
	ok := map[string]decimal.Decimal{"chargeback_count": decimal.NewFromInt(150)}
	assert.NoError(t, ValidateWeights(base, ok))

	assert.ErrorIs(t, ValidateWeights(decimal.Zero, ok), scoring.ErrInvalidRuleConfig)
	assert.ErrorIs(t, ValidateWeights(base, nil), scoring.ErrInvalidRuleConfig)
	assert.ErrorIs(t, ValidateWeights(base, map[string]decimal.Decimal{
		"chargeback_count": decimal.NewFromInt(-10),
	}), scoring.ErrInvalidRuleConfig)
}
