package scoring

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CombineInput carries everything the combiner needs for one request.
// SubScores may be given in any order and may omit engines entirely; an
// omitted engine is treated the same as one with a non-ok status.
type CombineInput struct {
	TicketID        string
	CustomerID      string
	SubScores       []SubScore
	Weights         WeightConfig
	Thresholds      TierThresholds
	SnapshotVersion string
	ConfigVersion   int
}

// Combine merges the available sub-scores into one EnsembleResult.
//
// Engines with status ok are combined using the configured weights,
// renormalized proportionally across the available engines when some are
// missing. If zero engines are usable it returns ErrEnsembleUnavailable -
// never a fabricated score. Identical inputs always yield an identical
// result: sub-scores are processed in the fixed engine order and there is
// no hidden state.
func Combine(in CombineInput) (*EnsembleResult, error) {
	byKind := make(map[EngineKind]SubScore, len(in.SubScores))
	for _, s := range in.SubScores {
		byKind[s.Engine] = s
	}

	// Order sub-scores deterministically, filling in an unavailable
	// placeholder for any engine that never reported.
	ordered := make([]SubScore, 0, len(EngineOrder))
	usableWeight := decimal.Zero
	usableCount := 0
	for _, kind := range EngineOrder {
		s, ok := byKind[kind]
		if !ok {
			s = FailedSubScore(kind, StatusUnavailable, Note("engine not dispatched"))
		}
		ordered = append(ordered, s)
		if s.Usable() {
			usableWeight = usableWeight.Add(in.Weights.Weight(kind))
			usableCount++
		}
	}

	if usableCount == 0 {
		return nil, ErrEnsembleUnavailable
	}
	if usableWeight.IsZero() {
		// All usable engines carry zero configured weight; nothing can
		// be renormalized.
		return nil, fmt.Errorf("%w: available engines have zero configured weight", ErrEnsembleUnavailable)
	}

	// Renormalize configured weights across the usable engines and fold
	// in the weighted sub-scores.
	effective := make(map[EngineKind]decimal.Decimal, len(EngineOrder))
	final := decimal.Zero
	for _, s := range ordered {
		if !s.Usable() {
			effective[s.Engine] = decimal.Zero
			continue
		}
		w := in.Weights.Weight(s.Engine).Div(usableWeight)
		effective[s.Engine] = w
		final = final.Add(s.Value.Mul(w))
	}
	final = ClampScore(final.Round(2))

	status := EnsembleFull
	if usableCount < len(EngineOrder) {
		status = EnsemblePartial
	}

	return &EnsembleResult{
		TicketID:         in.TicketID,
		CustomerID:       in.CustomerID,
		FinalScore:       final,
		Tier:             in.Thresholds.TierFor(final),
		Status:           status,
		SubScores:        ordered,
		Evidence:         buildTrail(ordered),
		EffectiveWeights: effective,
		SnapshotVersion:  in.SnapshotVersion,
		ConfigVersion:    in.ConfigVersion,
	}, nil
}

// buildTrail concatenates rationale from each engine in the fixed order.
// An engine that produced no usable score contributes a single line
// stating why it is absent, so the degradation is always visible.
func buildTrail(ordered []SubScore) EvidenceTrail {
	var trail EvidenceTrail
	for _, s := range ordered {
		if !s.Usable() {
			note := fmt.Sprintf("%s unavailable (%s)", s.Engine, s.Status)
			if len(s.Rationale) > 0 {
				note = fmt.Sprintf("%s unavailable (%s): %s", s.Engine, s.Status, s.Rationale[0].Note)
			}
			trail.Append(s.Engine, "", note)
			continue
		}
		for _, line := range s.Rationale {
			trail.Append(s.Engine, line.Stage, line.Note)
		}
	}
	return trail
}
