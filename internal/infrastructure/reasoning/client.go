package reasoning

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"

	"ticket-risk-scoring/internal/domain/scoring"
)

// Config holds the reasoning backend settings.
type Config struct {
	BaseURL string

	// Budget bounds the whole four-stage pipeline (default 3s). If it is
	// exceeded at any stage boundary the remaining stages are aborted
	// and already-collected rationale is kept, tagged incomplete.
	Budget time.Duration

	// Vector similarity search used by the pattern-retrieval stage.
	SearchURL     string
	SearchTimeout time.Duration
	TopK          int
}

// Client runs the four-stage analysis pipeline against the external
// reasoning backend:
//
//	1. ticket classification
//	2. pattern retrieval (similarity search + rating)  }
//	3. language/sentiment analysis                     } concurrent
//	4. evidence aggregation (consumes 1-3)
//
// Stage 4 requires all prior outputs; stages 2 and 3 have no dependency
// on each other and run concurrently. A stage that errors aborts the
// pipeline for this request only - it never retries mid-request.
type Client struct {
	http    *resty.Client
	search  *VectorSearchClient
	breaker *gobreaker.CircuitBreaker
	cfg     Config
}

// NewClient creates a reasoning engine client.
func NewClient(cfg Config) *Client {
	if cfg.Budget <= 0 {
		cfg.Budget = 3 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetRetryCount(0)

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "reasoning",
		Timeout: 60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		IsSuccessful: func(err error) bool {
			// A caller cancel is not a backend failure.
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &Client{
		http:    httpClient,
		search:  NewVectorSearchClient(cfg.SearchURL, cfg.SearchTimeout, cfg.TopK),
		breaker: breaker,
		cfg:     cfg,
	}
}

// Kind implements scoring.Engine.
func (c *Client) Kind() scoring.EngineKind {
	return scoring.EngineReasoning
}

// Budget implements scoring.Engine.
func (c *Client) Budget() time.Duration {
	return c.cfg.Budget
}

// Score implements scoring.Engine. The whole pipeline runs under one
// deadline; partial rationale survives a timeout so auditors can see how
// far the analysis got.
func (c *Client) Score(ctx context.Context, req *scoring.Request) scoring.SubScore {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Budget)
	defer cancel()

	run := &pipelineRun{}
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.runPipeline(ctx, req.Ticket.Text(), run)
	})
	if err != nil {
		return c.failure(err, run)
	}

	value := scoring.NormalizeTenScale(decimal.NewFromFloat(run.rating))
	run.note(StageAggregate, fmt.Sprintf("combined rating %.1f/10, normalized score %s", run.rating, value))
	return scoring.OKSubScore(scoring.EngineReasoning, value, run.collected()...)
}

// pipelineRun accumulates rationale across stages so a truncated
// pipeline still yields a partial evidence trail.
type pipelineRun struct {
	mu     sync.Mutex
	notes  []scoring.RationaleNote
	rating float64
}

func (r *pipelineRun) note(stage, text string) {
	r.mu.Lock()
	r.notes = append(r.notes, scoring.StageNote(stage, text))
	r.mu.Unlock()
}

func (r *pipelineRun) collected() []scoring.RationaleNote {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]scoring.RationaleNote(nil), r.notes...)
}

func (r *pipelineRun) markIncomplete() []scoring.RationaleNote {
	r.mu.Lock()
	defer r.mu.Unlock()
	tagged := make([]scoring.RationaleNote, len(r.notes))
	for i, n := range r.notes {
		tagged[i] = scoring.StageNote(n.Stage, n.Note+" (incomplete)")
	}
	return tagged
}

func (c *Client) runPipeline(ctx context.Context, ticketText string, run *pipelineRun) error {
	// Stage 1: classification.
	classification, err := c.classify(ctx, ticketText)
	if err != nil {
		return err
	}
	run.note(StageClassification, fmt.Sprintf("legitimacy %.1f, urgency %.1f, fraud %.1f: %s",
		*classification.Legitimacy, *classification.Urgency, *classification.Fraud, classification.Rationale))

	// Budget check at the stage boundary before fanning out.
	if err := ctx.Err(); err != nil {
		return err
	}

	// Stages 2 and 3 run concurrently; 4 needs both.
	var patterns *patternResponse
	var language *languageResponse
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		patterns, err = c.retrievePatterns(gctx, ticketText)
		if err != nil {
			return err
		}
		run.note(StagePatterns, fmt.Sprintf("pattern risk %.1f, matched %s: %s",
			*patterns.RiskRating, describePatterns(patterns.Patterns), patterns.Rationale))
		return nil
	})
	g.Go(func() error {
		var err error
		language, err = c.analyzeLanguage(gctx, ticketText)
		if err != nil {
			return err
		}
		run.note(StageLanguage, fmt.Sprintf("manipulation indicators %s: %s",
			describePatterns(language.Indicators), language.Rationale))
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	// Stage 4: aggregation over stages 1-3.
	aggregate, err := c.aggregate(ctx, aggregateRequest{
		Classification: *classification,
		Patterns:       *patterns,
		Language:       *language,
	})
	if err != nil {
		return err
	}
	run.note(StageAggregate, aggregate.Explanation)
	run.rating = *aggregate.Rating
	return nil
}

func (c *Client) classify(ctx context.Context, ticketText string) (*classifyResponse, error) {
	var out classifyResponse
	if err := c.post(ctx, "/v1/stages/classify", classifyRequest{TicketText: ticketText}, &out); err != nil {
		return nil, err
	}
	if out.Legitimacy == nil || out.Urgency == nil || out.Fraud == nil {
		return nil, fmt.Errorf("%w: classification response missing ratings", scoring.ErrBackendError)
	}
	return &out, nil
}

func (c *Client) retrievePatterns(ctx context.Context, ticketText string) (*patternResponse, error) {
	matches, err := c.search.Search(ctx, ticketText)
	if err != nil {
		return nil, err
	}

	var out patternResponse
	if err := c.post(ctx, "/v1/stages/patterns", patternRequest{TicketText: ticketText, Matches: matches}, &out); err != nil {
		return nil, err
	}
	if out.RiskRating == nil {
		return nil, fmt.Errorf("%w: pattern response missing risk rating", scoring.ErrBackendError)
	}
	return &out, nil
}

func (c *Client) analyzeLanguage(ctx context.Context, ticketText string) (*languageResponse, error) {
	var out languageResponse
	if err := c.post(ctx, "/v1/stages/language", languageRequest{TicketText: ticketText}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) aggregate(ctx context.Context, req aggregateRequest) (*aggregateResponse, error) {
	var out aggregateResponse
	if err := c.post(ctx, "/v1/stages/aggregate", req, &out); err != nil {
		return nil, err
	}
	if out.Rating == nil {
		return nil, fmt.Errorf("%w: aggregate response missing rating", scoring.ErrBackendError)
	}
	if *out.Rating < 0 || *out.Rating > 10 {
		return nil, fmt.Errorf("%w: aggregate rating %g outside [0,10]", scoring.ErrBackendError, *out.Rating)
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(result).
		Post(path)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return scoring.ErrBackendTimeout
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %s: %v", scoring.ErrBackendError, path, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: %s returned status %d", scoring.ErrBackendError, path, resp.StatusCode())
	}
	return nil
}

func (c *Client) failure(err error, run *pipelineRun) scoring.SubScore {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return scoring.FailedSubScore(scoring.EngineReasoning, scoring.StatusUnavailable,
			scoring.Note("reasoning circuit open after repeated failures"))
	case errors.Is(err, scoring.ErrBackendTimeout), errors.Is(err, context.DeadlineExceeded):
		notes := append(run.markIncomplete(),
			scoring.Note(fmt.Sprintf("pipeline exceeded %s budget, remaining stages aborted", c.cfg.Budget)))
		return scoring.FailedSubScore(scoring.EngineReasoning, scoring.StatusTimeout, notes...)
	case errors.Is(err, context.Canceled):
		return scoring.FailedSubScore(scoring.EngineReasoning, scoring.StatusUnavailable,
			scoring.Note("request canceled before pipeline completed"))
	default:
		notes := append(run.markIncomplete(), scoring.Note(err.Error()))
		return scoring.FailedSubScore(scoring.EngineReasoning, scoring.StatusError, notes...)
	}
}

func describePatterns(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
