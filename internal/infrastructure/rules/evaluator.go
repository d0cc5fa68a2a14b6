package rules

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"ticket-risk-scoring/internal/domain/scoring"
)

// Evaluator computes the deterministic rule sub-score from a feature
// snapshot using a weighted-penalty formula:
//
//	score = clamp(base - sum(feature_i * weight_i), 0, 1000)
//
// It is pure computation over the in-memory snapshot: it never suspends
// and always returns status ok. Malformed weight configuration is a
// startup error caught by config validation, never a per-request one.
type Evaluator struct{}

// NewEvaluator creates the rule evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// ValidateWeights checks a rule weight configuration at startup or
// reload. Weights must be present and non-negative, and the base must be
// positive.
func ValidateWeights(base decimal.Decimal, weights map[string]decimal.Decimal) error {
	if !base.IsPositive() {
		return fmt.Errorf("%w: base %s must be positive", scoring.ErrInvalidRuleConfig, base)
	}
	if len(weights) == 0 {
		return fmt.Errorf("%w: no rule weights configured", scoring.ErrInvalidRuleConfig)
	}
	for name, w := range weights {
		if w.IsNegative() {
			return fmt.Errorf("%w: weight for %q is negative", scoring.ErrInvalidRuleConfig, name)
		}
	}
	return nil
}

// Kind implements scoring.Engine.
func (e *Evaluator) Kind() scoring.EngineKind {
	return scoring.EngineRule
}

// Budget implements scoring.Engine. Zero: the evaluator never suspends.
func (e *Evaluator) Budget() time.Duration {
	return 0
}

// Score implements scoring.Engine. Features named in the weight config
// but absent from the snapshot are treated as value 0 and noted in the
// rationale; they are never a fatal error.
func (e *Evaluator) Score(_ context.Context, req *scoring.Request) scoring.SubScore {
	base := req.Params.RuleBase
	weights := req.Params.RuleWeights

	// Iterate in sorted feature order so identical inputs produce an
	// identical rationale trail.
	names := make([]string, 0, len(weights))
	for name := range weights {
		names = append(names, name)
	}
	sort.Strings(names)

	notes := make([]scoring.RationaleNote, 0, len(names)+1)
	if req.Snapshot.Empty {
		notes = append(notes, scoring.Note("no feature snapshot for customer, all features treated as neutral"))
	}

	penalty := decimal.Zero
	for _, name := range names {
		weight := weights[name]
		value, present := req.Snapshot.Feature(name)
		if !present {
			if !req.Snapshot.Empty {
				notes = append(notes, scoring.Note(fmt.Sprintf("feature %s unavailable, treated as neutral", name)))
			}
			continue
		}
		contribution := value.Mul(weight)
		if contribution.IsZero() {
			continue
		}
		penalty = penalty.Add(contribution)
		notes = append(notes, scoring.Note(fmt.Sprintf("feature %s=%s weighted %s, penalty %s", name, value, weight, contribution)))
	}

	score := scoring.ClampScore(base.Sub(penalty))
	notes = append(notes, scoring.Note(fmt.Sprintf("rule score %s = clamp(%s - %s)", score, base, penalty)))

	return scoring.OKSubScore(scoring.EngineRule, score, notes...)
}
