package reasoning

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"ticket-risk-scoring/internal/domain/scoring"
)

// Match is one historical ticket returned by the similarity search,
// ranked by similarity in [0,1].
type Match struct {
	TicketID   string  `json:"ticket_id"`
	Similarity float64 `json:"similarity"`
	Descriptor string  `json:"descriptor,omitempty"`
}

// VectorSearchClient queries the external vector-similarity search over
// historical tickets. It is used by the pattern-retrieval stage only.
type VectorSearchClient struct {
	http *resty.Client
	topK int
}

// NewVectorSearchClient creates a similarity search client. topK bounds
// how many matches are requested (default 5).
func NewVectorSearchClient(baseURL string, timeout time.Duration, topK int) *VectorSearchClient {
	if topK <= 0 {
		topK = 5
	}
	if timeout <= 0 {
		timeout = time.Second
	}
	return &VectorSearchClient{
		http: resty.New().SetBaseURL(baseURL).SetTimeout(timeout).SetRetryCount(0),
		topK: topK,
	}
}

type searchRequest struct {
	Text string `json:"text"`
	TopK int    `json:"top_k"`
}

type searchResponse struct {
	Matches []Match `json:"matches"`
}

// Search returns the top-K most similar historical tickets for a text.
func (c *VectorSearchClient) Search(ctx context.Context, text string) ([]Match, error) {
	var out searchResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(searchRequest{Text: text, TopK: c.topK}).
		SetResult(&out).
		Post("/v1/search")
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return nil, scoring.ErrBackendTimeout
		}
		return nil, fmt.Errorf("%w: similarity search: %v", scoring.ErrBackendError, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: similarity search status %d", scoring.ErrBackendError, resp.StatusCode())
	}
	for _, m := range out.Matches {
		if m.Similarity < 0 || m.Similarity > 1 {
			return nil, fmt.Errorf("%w: similarity %g outside [0,1]", scoring.ErrBackendError, m.Similarity)
		}
	}
	if len(out.Matches) > c.topK {
		out.Matches = out.Matches[:c.topK]
	}
	return out.Matches, nil
}
