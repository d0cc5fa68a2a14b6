package scoring

import (
	"github.com/shopspring/decimal"
)

// EngineKind identifies which engine produced a sub-score. The set is
// closed: the combiner depends only on the SubScore contract, never on
// engine-specific behavior.
type EngineKind string

const (
	EngineRule       EngineKind = "rule"
	EngineClassifier EngineKind = "classifier"
	EngineReasoning  EngineKind = "reasoning"
)

// EngineOrder is the fixed order in which engines appear in evidence
// trails and serialized results. Combination iterates in this order so
// identical inputs always produce identical output.
var EngineOrder = []EngineKind{EngineRule, EngineClassifier, EngineReasoning}

// SubScoreStatus describes whether an engine produced a usable value.
type SubScoreStatus string

const (
	StatusOK          SubScoreStatus = "ok"
	StatusTimeout     SubScoreStatus = "timeout"
	StatusError       SubScoreStatus = "error"
	StatusUnavailable SubScoreStatus = "unavailable"
)

// RationaleNote is one rationale line produced by an engine, optionally
// attributed to the internal stage that produced it (the reasoning
// engine's four stages, for example).
type RationaleNote struct {
	Stage string `json:"stage,omitempty"`
	Note  string `json:"note"`
}

// Note builds an unattributed rationale line.
func Note(note string) RationaleNote {
	return RationaleNote{Note: note}
}

// StageNote builds a rationale line attributed to a producing stage.
func StageNote(stage, note string) RationaleNote {
	return RationaleNote{Stage: stage, Note: note}
}

// SubScore is a single engine's risk estimate prior to ensemble
// combination. Value is on the 0-1000 scale (higher = more trustworthy)
// and is only meaningful when Status is ok; a failed sub-score is
// excluded from combination, never defaulted to zero.
type SubScore struct {
	Engine    EngineKind      `json:"engine"`
	Value     decimal.Decimal `json:"value"`
	Status    SubScoreStatus  `json:"status"`
	Rationale []RationaleNote `json:"rationale"`
}

// OKSubScore builds a usable sub-score clamped to [0,1000].
func OKSubScore(engine EngineKind, value decimal.Decimal, rationale ...RationaleNote) SubScore {
	return SubScore{
		Engine:    engine,
		Value:     ClampScore(value),
		Status:    StatusOK,
		Rationale: rationale,
	}
}

// FailedSubScore builds a sub-score for an engine that produced no usable
// value. It carries no numeric value, only the reason for the failure.
func FailedSubScore(engine EngineKind, status SubScoreStatus, rationale ...RationaleNote) SubScore {
	return SubScore{
		Engine:    engine,
		Status:    status,
		Rationale: rationale,
	}
}

// Usable reports whether the sub-score may participate in combination.
func (s SubScore) Usable() bool {
	return s.Status == StatusOK
}

var maxScore = decimal.NewFromInt(1000)

// ClampScore bounds a score to the [0,1000] scale.
func ClampScore(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	if v.GreaterThan(maxScore) {
		return maxScore
	}
	return v
}

// NormalizeProbability maps a probability-like value in [0,1] onto the
// 0-1000 scale. When fraudPolarity is true the input is a fraud
// probability and the score is inverted: p=1 means certain fraud, which
// is score 0.
func NormalizeProbability(p decimal.Decimal, fraudPolarity bool) decimal.Decimal {
	if fraudPolarity {
		p = decimal.NewFromInt(1).Sub(p)
	}
	return ClampScore(p.Mul(maxScore))
}

// NormalizeTenScale maps a 0-10 rating onto the 0-1000 scale.
func NormalizeTenScale(rating decimal.Decimal) decimal.Decimal {
	return ClampScore(rating.Mul(decimal.NewFromInt(100)))
}
