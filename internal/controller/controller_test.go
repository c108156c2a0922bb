package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vtmai/celwrite/config"
	"github.com/vtmai/celwrite/internal/dto"
	"github.com/vtmai/celwrite/internal/identity"
	"github.com/vtmai/celwrite/internal/middleware"
	"github.com/vtmai/celwrite/internal/service"
	"github.com/vtmai/celwrite/internal/task"
	"gorm.io/gorm"
)

const testSecret = "controller-test-secret"

type fakeScoringSvc struct {
	err error
}

func (f *fakeScoringSvc) ScoreWriting(ctx context.Context, t task.Type, prompt, response string, wordCount int) (*dto.ScoringResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.ScoringResult{Overall: 8, Grammar: 8, Vocabulary: 8, Coherence: 8, TaskRelevance: 8, Feedback: "ok"}, nil
}

type fakeAttemptSvc struct {
	lastActor identity.Identity
	lastGuest string
	lastLimit int
}

func (f *fakeAttemptSvc) CreateAttempt(actor identity.Identity, req dto.AttemptCreateRequest) (*dto.AttemptResponse, error) {
	f.lastActor = actor
	return &dto.AttemptResponse{ID: "attempt-1", TaskType: req.TaskType, Score: req.Score}, nil
}

func (f *fakeAttemptSvc) GetAttempt(id string) (*dto.AttemptResponse, error) {
	if id == "missing" {
		return nil, fmt.Errorf("attempt %s: %w", id, gorm.ErrRecordNotFound)
	}
	return &dto.AttemptResponse{ID: id, TaskType: "email"}, nil
}

func (f *fakeAttemptSvc) ListAttempts(actor identity.Identity, guestID string, limit int) ([]dto.AttemptResponse, error) {
	f.lastActor = actor
	f.lastGuest = guestID
	f.lastLimit = limit
	return []dto.AttemptResponse{{ID: "attempt-1"}, {ID: "attempt-2"}}, nil
}

type fakeStatsSvc struct{}

func (f *fakeStatsSvc) GetStats(actor identity.Identity, guestID string) (*dto.StatsResponse, error) {
	return &dto.StatsResponse{TotalAttempts: 2, AverageScore: 7.5, RecentAttempts: []dto.RecentAttemptDTO{}}, nil
}

type fakeEntitlementSvc struct {
	ensured bool
	ent     service.Entitlement
}

func (f *fakeEntitlementSvc) EnsureRecordExists(actor identity.Identity) { f.ensured = true }
func (f *fakeEntitlementSvc) Load(actor identity.Identity) service.Entitlement {
	return f.ent
}
func (f *fakeEntitlementSvc) MarkFreeTestConsumed(actor identity.Identity)     {}
func (f *fakeEntitlementSvc) DecrementRemainingTests(actor identity.Identity) {}
func (f *fakeEntitlementSvc) ApplyPromoCode(actor identity.Identity, code string) (service.Entitlement, error) {
	if code != service.PromoCode {
		return f.ent, service.ErrInvalidPromoCode
	}
	f.ent = service.Entitlement{HasUsedFreeTest: f.ent.HasUsedFreeTest, PromoCodeApplied: true, RemainingTests: service.PromoGrant}
	return f.ent, nil
}

type fixture struct {
	router      *gin.Engine
	attempts    *fakeAttemptSvc
	entitlement *fakeEntitlementSvc
}

func newFixture() *fixture {
	gin.SetMode(gin.TestMode)
	attempts := &fakeAttemptSvc{}
	entitlement := &fakeEntitlementSvc{}
	ctrl := NewController(&fakeScoringSvc{}, attempts, &fakeStatsSvc{}, entitlement)

	router := gin.New()
	cfg := &config.Config{JWTSecret: testSecret}
	ctrl.RegisterRoutes(router, middleware.OptionalAuth(cfg))
	return &fixture{router: router, attempts: attempts, entitlement: entitlement}
}

func signedToken(t *testing.T, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": userID, "email": "a@b.c"})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestScoreWritingHandler(t *testing.T) {
	f := newFixture()

	t.Run("scores a valid request", func(t *testing.T) {
		w := doJSON(t, f.router, http.MethodPost, "/api/v1/score", "", dto.ScoreRequest{
			TaskType: "email", Prompt: "p", Response: "r", WordCount: 160,
		})
		require.Equal(t, http.StatusOK, w.Code)
		var res dto.ScoringResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, 8.0, res.Overall)
	})

	t.Run("rejects an unknown task type", func(t *testing.T) {
		w := doJSON(t, f.router, http.MethodPost, "/api/v1/score", "", map[string]interface{}{
			"taskType": "essay", "prompt": "p", "response": "r", "wordCount": 160,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects a missing body", func(t *testing.T) {
		w := doJSON(t, f.router, http.MethodPost, "/api/v1/score", "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCreateAttemptHandler(t *testing.T) {
	body := dto.AttemptCreateRequest{
		TaskType: "email", Prompt: "p", Response: "r", WordCount: 160, TimeSpent: 900,
		Score: dto.ScoringResult{Overall: 8},
	}

	t.Run("created as guest without a token", func(t *testing.T) {
		f := newFixture()
		w := doJSON(t, f.router, http.MethodPost, "/api/v1/attempts", "", body)
		require.Equal(t, http.StatusCreated, w.Code)
		assert.False(t, f.attempts.lastActor.IsSigned())
	})

	t.Run("bearer token resolves the signed actor", func(t *testing.T) {
		f := newFixture()
		w := doJSON(t, f.router, http.MethodPost, "/api/v1/attempts", signedToken(t, "user-7"), body)
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "user-7", f.attempts.lastActor.UserID)
	})

	t.Run("an invalid token falls back to guest", func(t *testing.T) {
		f := newFixture()
		w := doJSON(t, f.router, http.MethodPost, "/api/v1/attempts", "garbage-token", body)
		require.Equal(t, http.StatusCreated, w.Code)
		assert.False(t, f.attempts.lastActor.IsSigned())
	})
}

func TestListAndGetAttempts(t *testing.T) {
	t.Run("lists attempts with query parameters", func(t *testing.T) {
		f := newFixture()
		w := doJSON(t, f.router, http.MethodGet, "/api/v1/attempts?guestId=anon-1&limit=10", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "anon-1", f.attempts.lastGuest)
		assert.Equal(t, 10, f.attempts.lastLimit)

		var list []dto.AttemptResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		assert.Len(t, list, 2)
	})

	t.Run("rejects a malformed limit", func(t *testing.T) {
		f := newFixture()
		w := doJSON(t, f.router, http.MethodGet, "/api/v1/attempts?limit=abc", "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("id query fetches a single attempt", func(t *testing.T) {
		f := newFixture()
		w := doJSON(t, f.router, http.MethodGet, "/api/v1/attempts?id=attempt-9", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var got dto.AttemptResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "attempt-9", got.ID)
	})

	t.Run("path fetch of a single attempt", func(t *testing.T) {
		f := newFixture()
		w := doJSON(t, f.router, http.MethodGet, "/api/v1/attempts/attempt-9", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unknown attempt is a 404", func(t *testing.T) {
		f := newFixture()
		w := doJSON(t, f.router, http.MethodGet, "/api/v1/attempts/missing", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestGetStatsHandler(t *testing.T) {
	f := newFixture()
	w := doJSON(t, f.router, http.MethodGet, "/api/v1/stats?guestId=anon-1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats dto.StatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.TotalAttempts)
	assert.Equal(t, 7.5, stats.AverageScore)
}

func TestGetPromptsHandler(t *testing.T) {
	f := newFixture()

	t.Run("returns the bank for a known type", func(t *testing.T) {
		w := doJSON(t, f.router, http.MethodGet, "/api/v1/prompts?taskType=email", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var bank dto.PromptBankResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bank))
		assert.Equal(t, "email", bank.TaskType)
		assert.Len(t, bank.Prompts, 5)
	})

	t.Run("rejects an unknown type", func(t *testing.T) {
		w := doJSON(t, f.router, http.MethodGet, "/api/v1/prompts?taskType=novel", "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestApplyPromoHandler(t *testing.T) {
	t.Run("requires a signed-in caller", func(t *testing.T) {
		f := newFixture()
		w := doJSON(t, f.router, http.MethodPost, "/api/v1/promo", "", dto.PromoRequest{Code: service.PromoCode})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid code succeeds", func(t *testing.T) {
		f := newFixture()
		w := doJSON(t, f.router, http.MethodPost, "/api/v1/promo", signedToken(t, "user-1"), dto.PromoRequest{Code: service.PromoCode})
		require.Equal(t, http.StatusOK, w.Code)
		var res dto.PromoResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.True(t, res.Success)
		assert.Equal(t, service.PromoGrant, res.Entitlement.RemainingTests)
	})

	t.Run("invalid code reports failure without an error status", func(t *testing.T) {
		f := newFixture()
		w := doJSON(t, f.router, http.MethodPost, "/api/v1/promo", signedToken(t, "user-1"), dto.PromoRequest{Code: "WRONG"})
		require.Equal(t, http.StatusOK, w.Code)
		var res dto.PromoResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.False(t, res.Success)
		assert.Equal(t, "Invalid promo code", res.Message)
	})
}

func TestGetEntitlementHandler(t *testing.T) {
	t.Run("signed-in caller gets their record created lazily", func(t *testing.T) {
		f := newFixture()
		f.entitlement.ent = service.Entitlement{HasUsedFreeTest: true, PromoCodeApplied: true, RemainingTests: 4}
		w := doJSON(t, f.router, http.MethodGet, "/api/v1/entitlement", signedToken(t, "user-1"), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, f.entitlement.ensured)

		var res dto.EntitlementResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, 4, res.RemainingTests)
	})

	t.Run("guests get the default without record creation", func(t *testing.T) {
		f := newFixture()
		w := doJSON(t, f.router, http.MethodGet, "/api/v1/entitlement", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.False(t, f.entitlement.ensured)
	})
}

func TestCreateCheckoutHandler(t *testing.T) {
	f := newFixture()
	w := doJSON(t, f.router, http.MethodPost, "/api/v1/checkout", "", dto.CheckoutRequest{})
	require.Equal(t, http.StatusOK, w.Code)
	var res dto.CheckoutResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Contains(t, res.SessionID, "cs_test_")
	assert.Contains(t, res.CheckoutURL, res.SessionID)
}
