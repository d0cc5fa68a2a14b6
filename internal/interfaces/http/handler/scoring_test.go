package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	feedbackapp "ticket-risk-scoring/internal/application/feedback"
	scoringapp "ticket-risk-scoring/internal/application/scoring"
	domain "ticket-risk-scoring/internal/domain/scoring"
	"ticket-risk-scoring/internal/infrastructure/http/router"
	"ticket-risk-scoring/internal/interfaces/http/handler"
	"ticket-risk-scoring/internal/pkg/config"
)

type stubEngine struct {
	kind  domain.EngineKind
	value int64
	fail  domain.SubScoreStatus
}

func (e *stubEngine) Kind() domain.EngineKind { return e.kind }

func (e *stubEngine) Budget() time.Duration { return 50 * time.Millisecond }

func (e *stubEngine) Score(context.Context, *domain.Request) domain.SubScore {
	if e.fail != "" {
		return domain.FailedSubScore(e.kind, e.fail, domain.Note("stub failure"))
	}
	return domain.OKSubScore(e.kind, decimal.NewFromInt(e.value), domain.Note("stub"))
}

type neutralReader struct{}

func (neutralReader) Read(_ context.Context, customerID string) (*domain.FeatureSnapshot, error) {
	return domain.EmptySnapshot(customerID), nil
}

func testRouter(t *testing.T, engines []domain.Engine) *router.Router {
	t.Helper()
	store := config.NewStore(config.DefaultConfig())
	orchestrator := scoringapp.NewOrchestrator(
		neutralReader{}, engines, store, nil, zap.NewNop(), true)
	feedbackService := feedbackapp.NewService(nil, nil)

	scoringHandler := handler.NewScoringHandler(orchestrator, feedbackService)
	healthHandler := handler.NewHealthHandler(nil, nil, "test")
	return router.NewRouter(scoringHandler, healthHandler, false)
}

func scoreBody() string {
	return `{
		"ticket_id": "tkt-1",
		"customer_id": "cust-1",
		"subject": "Refund request",
		"body": "Please refund my last order.",
		"channel": "email"
	}`
}

func TestScoreTicketEndpoint(t *testing.T) {
	r := testRouter(t, []domain.Engine{
		&stubEngine{kind: domain.EngineRule, value: 430},
		&stubEngine{kind: domain.EngineClassifier, value: 800},
		&stubEngine{kind: domain.EngineReasoning, value: 750},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/risk/score", strings.NewReader(scoreBody()))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp scoringapp.ScoreTicketResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "602.5", resp.FinalScore)
	assert.Equal(t, "medium", resp.Tier)
	assert.Equal(t, "full", resp.EnsembleStatus)
	assert.Equal(t, []string{"rule", "classifier", "reasoning"}, resp.Engines)
	assert.NotEmpty(t, resp.Evidence.Entries)
}

func TestScoreTicketDegradedResponseIsLabeled(t *testing.T) {
	r := testRouter(t, []domain.Engine{
		&stubEngine{kind: domain.EngineRule, value: 430},
		&stubEngine{kind: domain.EngineClassifier, fail: domain.StatusTimeout},
		&stubEngine{kind: domain.EngineReasoning, value: 750},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/risk/score", strings.NewReader(scoreBody()))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp scoringapp.ScoreTicketResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "partial", resp.EnsembleStatus)
	assert.Equal(t, []string{"rule", "reasoning"}, resp.Engines)
}

func TestScoreTicketAllEnginesDownIs503(t *testing.T) {
	r := testRouter(t, []domain.Engine{
		&stubEngine{kind: domain.EngineRule, fail: domain.StatusError},
		&stubEngine{kind: domain.EngineClassifier, fail: domain.StatusError},
		&stubEngine{kind: domain.EngineReasoning, fail: domain.StatusError},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/risk/score", strings.NewReader(scoreBody()))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "scoring_unavailable", resp["outcome"])
}

func TestScoreTicketValidationFailureIs400(t *testing.T) {
	r := testRouter(t, []domain.Engine{&stubEngine{kind: domain.EngineRule, value: 500}})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/risk/score",
		strings.NewReader(`{"ticket_id": "tkt-1"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetResultUnknownIDIs404(t *testing.T) {
	r := testRouter(t, []domain.Engine{&stubEngine{kind: domain.EngineRule, value: 500}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/risk/results/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetResultMalformedIDIs400(t *testing.T) {
	r := testRouter(t, []domain.Engine{&stubEngine{kind: domain.EngineRule, value: 500}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/risk/results/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOverrideWithoutPersistenceIs503(t *testing.T) {
	r := testRouter(t, []domain.Engine{&stubEngine{kind: domain.EngineRule, value: 500}})

	req := httptest.NewRequest(http.MethodPost,
		"/api/v1/risk/results/"+uuid.NewString()+"/override",
		strings.NewReader(`{"agent_id": "agent-1", "verdict": "confirm"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	r := testRouter(t, []domain.Engine{&stubEngine{kind: domain.EngineRule, value: 500}})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
