package scoring

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domain "ticket-risk-scoring/internal/domain/scoring"
	"ticket-risk-scoring/internal/domain/ticket"
	"ticket-risk-scoring/internal/pkg/config"
	"ticket-risk-scoring/internal/pkg/metrics"
)

// State tracks one request through the orchestrator's lifecycle.
type State string

const (
	StateDispatched     State = "dispatched"
	StateCollecting     State = "collecting"
	StatePartialTimeout State = "partial_timeout"
	StateCombining      State = "combining"
	StateCompleted      State = "completed"
)

// Orchestrator owns the concurrency contract of one scoring request: it
// reads a single feature snapshot, issues all engine calls in parallel
// with per-engine budgets, collects whatever settles before the
// collection deadline, and hands the sub-scores to the combiner. Results
// arriving after the deadline are discarded for that request; nothing
// blocks indefinitely on a single backend.
type Orchestrator struct {
	reader  domain.SnapshotReader
	engines []domain.Engine
	store   *config.Store
	results domain.ResultRepository // nil when persistence is disabled
	logger  *zap.Logger

	inlineReasoning bool
}

// NewOrchestrator wires the scoring use case.
func NewOrchestrator(
	reader domain.SnapshotReader,
	engines []domain.Engine,
	store *config.Store,
	results domain.ResultRepository,
	logger *zap.Logger,
	inlineReasoning bool,
) *Orchestrator {
	return &Orchestrator{
		reader:          reader,
		engines:         engines,
		store:           store,
		results:         results,
		logger:          logger,
		inlineReasoning: inlineReasoning,
	}
}

// Execute scores one ticket. It returns ErrEnsembleUnavailable when zero
// engines produced a usable sub-score, and the caller's context error
// when the request was canceled; every other engine failure degrades the
// result instead of failing it.
func (o *Orchestrator) Execute(ctx context.Context, t *ticket.Ticket) (*domain.EnsembleResult, error) {
	start := time.Now()

	if err := t.Validate(); err != nil {
		return nil, err
	}

	// One immutable config snapshot and one feature snapshot for the
	// whole request, so every engine sees identical inputs.
	params := o.store.Params()

	snapshot, err := o.reader.Read(ctx, t.CustomerID)
	if err != nil {
		o.logger.Warn("feature snapshot read failed, scoring with neutral features",
			zap.String("customer_id", t.CustomerID), zap.Error(err))
		snapshot = domain.EmptySnapshot(t.CustomerID)
	}

	req := &domain.Request{Ticket: t, Snapshot: snapshot, Params: params}

	engines, skipped := o.selectEngines()
	o.logger.Debug("request dispatched",
		zap.String("ticket_id", t.ID), zap.String("state", string(StateDispatched)),
		zap.Int("engines", len(engines)))

	collected, state, err := o.collect(ctx, engines, req)
	if err != nil {
		// Caller cancellation: in-flight calls were abandoned via the
		// context; no partial state is returned.
		return nil, err
	}
	collected = append(collected, skipped...)

	o.logger.Debug("combining sub-scores",
		zap.String("ticket_id", t.ID), zap.String("state", string(StateCombining)))

	result, err := domain.Combine(domain.CombineInput{
		TicketID:        t.ID,
		CustomerID:      t.CustomerID,
		SubScores:       collected,
		Weights:         params.Weights,
		Thresholds:      params.Thresholds,
		SnapshotVersion: snapshot.Version,
		ConfigVersion:   params.Version,
	})
	if err != nil {
		metrics.ScoringUnavailableTotal.Inc()
		o.logger.Error("scoring unavailable",
			zap.String("ticket_id", t.ID), zap.Error(err))
		return nil, err
	}

	result.ID = uuid.New()
	result.ScoredAt = time.Now().UTC()
	result.LatencyMs = time.Since(start).Milliseconds()

	o.observe(result, state)
	o.persist(ctx, result)

	o.logger.Info("ticket scored",
		zap.String("ticket_id", t.ID),
		zap.String("result_id", result.ID.String()),
		zap.String("tier", string(result.Tier)),
		zap.String("ensemble_status", string(result.Status)),
		zap.String("final_score", result.FinalScore.String()),
		zap.Int64("latency_ms", result.LatencyMs),
		zap.String("state", string(StateCompleted)))

	return result, nil
}

// selectEngines returns the engines to dispatch this request, plus
// placeholder sub-scores for engines deliberately not requested.
func (o *Orchestrator) selectEngines() ([]domain.Engine, []domain.SubScore) {
	if o.inlineReasoning {
		return o.engines, nil
	}
	dispatched := make([]domain.Engine, 0, len(o.engines))
	var skipped []domain.SubScore
	for _, eng := range o.engines {
		if eng.Kind() == domain.EngineReasoning {
			skipped = append(skipped, domain.FailedSubScore(domain.EngineReasoning,
				domain.StatusUnavailable, domain.Note("reasoning not requested on the fast path")))
			continue
		}
		dispatched = append(dispatched, eng)
	}
	return dispatched, skipped
}

// collect fans out the engine calls and gathers whichever sub-scores
// settle before the collection deadline. Engines that did not respond in
// time are reported with status timeout.
func (o *Orchestrator) collect(ctx context.Context, engines []domain.Engine, req *domain.Request) ([]domain.SubScore, State, error) {
	collectCtx, cancel := context.WithTimeout(ctx, o.collectionBudget(engines))
	defer cancel()

	// Buffered so late engine goroutines can always deliver and exit;
	// their results are simply never read once the deadline passes.
	results := make(chan domain.SubScore, len(engines))
	for _, eng := range engines {
		go func(eng domain.Engine) {
			engCtx := collectCtx
			if budget := eng.Budget(); budget > 0 {
				var engCancel context.CancelFunc
				engCtx, engCancel = context.WithTimeout(collectCtx, budget)
				defer engCancel()
			}
			results <- eng.Score(engCtx, req)
		}(eng)
	}

	state := StateCollecting
	collected := make([]domain.SubScore, 0, len(engines))

collecting:
	for len(collected) < len(engines) {
		select {
		case s := <-results:
			collected = append(collected, s)
		case <-collectCtx.Done():
			if err := ctx.Err(); err != nil {
				return nil, state, err
			}
			state = StatePartialTimeout
			break collecting
		}
	}

	if state == StatePartialTimeout {
		seen := make(map[domain.EngineKind]bool, len(collected))
		for _, s := range collected {
			seen[s.Engine] = true
		}
		for _, eng := range engines {
			if !seen[eng.Kind()] {
				collected = append(collected, domain.FailedSubScore(eng.Kind(),
					domain.StatusTimeout, domain.Note("engine did not respond before the collection deadline")))
			}
		}
	}

	return collected, state, nil
}

// collectionBudget is the overall deadline for one request: the largest
// per-engine budget among the dispatched engines, with a small floor so
// the pure rule engine alone still gets a sane deadline.
func (o *Orchestrator) collectionBudget(engines []domain.Engine) time.Duration {
	budget := 100 * time.Millisecond
	for _, eng := range engines {
		if b := eng.Budget(); b > budget {
			budget = b
		}
	}
	// Headroom for scheduling so an engine that used its full budget
	// still settles inside the collection window.
	return budget + 50*time.Millisecond
}

func (o *Orchestrator) observe(result *domain.EnsembleResult, state State) {
	metrics.ScoresTotal.WithLabelValues(string(result.Tier), string(result.Status)).Inc()
	metrics.ScoringDuration.Observe(float64(result.LatencyMs) / 1000)
	for _, s := range result.SubScores {
		if !s.Usable() {
			metrics.EngineFailuresTotal.WithLabelValues(string(s.Engine), string(s.Status)).Inc()
		}
	}
	if state == StatePartialTimeout {
		o.logger.Warn("collection deadline hit, scored with partial ensemble",
			zap.String("result_id", result.ID.String()))
	}
}

// persist stores the result best effort: scoring must not fail because
// the audit store is down.
func (o *Orchestrator) persist(ctx context.Context, result *domain.EnsembleResult) {
	if o.results == nil {
		return
	}
	if err := o.results.Create(ctx, result); err != nil {
		o.logger.Warn("failed to persist ensemble result",
			zap.String("result_id", result.ID.String()), zap.Error(err))
	}
}

// GetResult fetches a persisted result by ID.
func (o *Orchestrator) GetResult(ctx context.Context, id uuid.UUID) (*domain.EnsembleResult, error) {
	if o.results == nil {
		return nil, domain.ErrResultNotFound
	}
	return o.results.GetByID(ctx, id)
}

// GetTicketResult fetches the most recent persisted result for a
// ticket.
func (o *Orchestrator) GetTicketResult(ctx context.Context, ticketID string) (*domain.EnsembleResult, error) {
	if o.results == nil {
		return nil, domain.ErrResultNotFound
	}
	return o.results.GetByTicketID(ctx, ticketID)
}

// ListCustomerResults fetches a customer's persisted results, newest
// first.
func (o *Orchestrator) ListCustomerResults(ctx context.Context, customerID string, limit, offset int) ([]*domain.EnsembleResult, error) {
	if o.results == nil {
		return nil, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return o.results.ListByCustomer(ctx, customerID, limit, offset)
}
