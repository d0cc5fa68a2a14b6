package scoring

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"ticket-risk-scoring/internal/domain/ticket"
)

// Params is the immutable, versioned slice of runtime configuration an
// engine or the combiner reads for one request. A reload swaps in a new
// Params value atomically; a request never observes a partial update.
type Params struct {
	Version int

	RuleBase    decimal.Decimal
	RuleWeights map[string]decimal.Decimal

	Weights    WeightConfig
	Thresholds TierThresholds
}

// Request is the per-request input handed to every engine. All engines
// of one request see the same snapshot and the same Params.
type Request struct {
	Ticket   *ticket.Ticket
	Snapshot *FeatureSnapshot
	Params   *Params
}

// Engine is the uniform contract of the three scoring engines. An engine
// converts its own failures into a SubScore status; Score never returns
// an error and never panics past its boundary.
type Engine interface {
	Kind() EngineKind

	// Budget is the per-call time budget the orchestrator applies to
	// this engine. Zero means the engine is pure computation and never
	// suspends.
	Budget() time.Duration

	Score(ctx context.Context, req *Request) SubScore
}
