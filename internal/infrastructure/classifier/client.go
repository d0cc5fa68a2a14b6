package classifier

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"

	"ticket-risk-scoring/internal/domain/scoring"
)

// Config holds the classifier backend settings.
type Config struct {
	BaseURL string
	Timeout time.Duration

	// FraudPolarity declares how the backend's probability is oriented.
	// True means it reports fraud probability, so the sub-score is
	// (1-p)*1000; false means it reports genuineness, so p*1000. The
	// explicit flag avoids any ambiguity about score direction.
	FraudPolarity bool

	// FeatureSubset names the snapshot features forwarded to the
	// backend. Empty means all features are forwarded.
	FeatureSubset []string
}

// request is the payload sent to the model-serving backend.
type request struct {
	TicketText string             `json:"ticket_text"`
	Features   map[string]float64 `json:"feature_subset"`
}

// response is the backend's reply. Probability is a pointer so a missing
// field is distinguishable from 0.0 and treated as malformed.
type response struct {
	Probability   *float64           `json:"probability"`
	Contributions map[string]float64 `json:"contributions,omitempty"`
}

// Client requests a probability-like sub-score from the external
// model-serving backend. It is stateless: one outbound call per request,
// no synchronous retries (retries are a backend-level concern). Timeouts,
// non-2xx responses and malformed payloads are converted to sub-score
// statuses at this boundary and never propagate as errors.
type Client struct {
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker
	cfg     Config
}

// NewClient creates a classifier client. The circuit breaker opens after
// repeated backend failures so a dead backend costs no outbound calls
// until it half-opens again.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 500 * time.Millisecond
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0)

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "classifier",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Client{http: httpClient, breaker: breaker, cfg: cfg}
}

// Kind implements scoring.Engine.
func (c *Client) Kind() scoring.EngineKind {
	return scoring.EngineClassifier
}

// Budget implements scoring.Engine.
func (c *Client) Budget() time.Duration {
	return c.cfg.Timeout
}

// Score implements scoring.Engine.
func (c *Client) Score(ctx context.Context, req *scoring.Request) scoring.SubScore {
	payload := request{
		TicketText: req.Ticket.Text(),
		Features:   c.featureSubset(req.Snapshot),
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.classify(ctx, payload)
	})
	if err != nil {
		return c.failure(err)
	}

	resp := out.(*response)
	p := decimal.NewFromFloat(*resp.Probability)
	value := scoring.NormalizeProbability(p, c.cfg.FraudPolarity)

	notes := []scoring.RationaleNote{
		scoring.Note(fmt.Sprintf("classifier probability %s (fraud polarity %t), normalized score %s", p, c.cfg.FraudPolarity, value)),
	}
	for _, line := range contributionNotes(resp.Contributions) {
		notes = append(notes, scoring.Note(line))
	}

	return scoring.OKSubScore(scoring.EngineClassifier, value, notes...)
}

func (c *Client) classify(ctx context.Context, payload request) (*response, error) {
	var out response
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&out).
		Post("/v1/classify")
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return nil, scoring.ErrBackendTimeout
		}
		return nil, fmt.Errorf("%w: %v", scoring.ErrBackendError, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: status %d", scoring.ErrBackendError, resp.StatusCode())
	}
	if out.Probability == nil {
		return nil, fmt.Errorf("%w: response missing probability", scoring.ErrBackendError)
	}
	if *out.Probability < 0 || *out.Probability > 1 {
		return nil, fmt.Errorf("%w: probability %g outside [0,1]", scoring.ErrBackendError, *out.Probability)
	}
	return &out, nil
}

func (c *Client) failure(err error) scoring.SubScore {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return scoring.FailedSubScore(scoring.EngineClassifier, scoring.StatusUnavailable,
			scoring.Note("classifier circuit open after repeated failures"))
	case errors.Is(err, scoring.ErrBackendTimeout):
		return scoring.FailedSubScore(scoring.EngineClassifier, scoring.StatusTimeout,
			scoring.Note(fmt.Sprintf("classifier call exceeded %s budget", c.cfg.Timeout)))
	default:
		return scoring.FailedSubScore(scoring.EngineClassifier, scoring.StatusError,
			scoring.Note(err.Error()))
	}
}

func (c *Client) featureSubset(snapshot *scoring.FeatureSnapshot) map[string]float64 {
	features := make(map[string]float64)
	if len(c.cfg.FeatureSubset) == 0 {
		for name, v := range snapshot.Features {
			features[name] = v.InexactFloat64()
		}
		return features
	}
	for _, name := range c.cfg.FeatureSubset {
		v, _ := snapshot.Feature(name)
		features[name] = v.InexactFloat64()
	}
	return features
}

// contributionNotes renders per-feature contribution hints in sorted
// order for a deterministic rationale trail.
func contributionNotes(contributions map[string]float64) []string {
	if len(contributions) == 0 {
		return nil
	}
	names := make([]string, 0, len(contributions))
	for name := range contributions {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("feature %s contributed %+.3f", name, contributions[name]))
	}
	return lines
}
