package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newLimitedRouter(limiter *RateLimiter, actor string, rules map[string]RateLimitRule) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if actor != "" {
			c.Set("actor", actor)
		}
		c.Next()
	})
	r.Use(RateLimit(RateLimitConfig{
		GroupFor: GroupByMethod,
		Limiter:  limiter,
		Rules:    rules,
	}))
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.GET("/api/v1/records", ok)
	r.POST("/api/v1/records", ok)
	r.POST("/api/v1/records/batch", ok)
	return r
}

func serve(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(method, path, nil))
	return resp
}

func TestGroupByMethodLimitsOnlyWrites(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	r := newLimitedRouter(NewRateLimiter(func() time.Time { return now }), "", map[string]RateLimitRule{
		WriteGroup: {Rate: 1, Burst: 1},
	})

	for i := 0; i < 5; i++ {
		if resp := serve(r, http.MethodGet, "/api/v1/records"); resp.Code != http.StatusOK {
			t.Fatalf("read %d expected 200, got %d", i+1, resp.Code)
		}
	}
	if resp := serve(r, http.MethodPost, "/api/v1/records"); resp.Code != http.StatusOK {
		t.Fatalf("first write expected 200, got %d", resp.Code)
	}
	if resp := serve(r, http.MethodPost, "/api/v1/records/batch"); resp.Code != http.StatusTooManyRequests {
		t.Fatalf("second write expected 429, got %d", resp.Code)
	}
}

func TestRateLimit429UsesErrorEnvelope(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	r := newLimitedRouter(NewRateLimiter(func() time.Time { return now }), "svc-import", map[string]RateLimitRule{
		WriteGroup: {Rate: 0.5, Burst: 1},
	})

	if resp := serve(r, http.MethodPost, "/api/v1/records"); resp.Code != http.StatusOK {
		t.Fatalf("expected first request 200, got %d", resp.Code)
	}
	resp := serve(r, http.MethodPost, "/api/v1/records")
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.Code)
	}
	if got := resp.Header().Get("Retry-After"); got != "2" {
		t.Fatalf("expected Retry-After=2, got %q", got)
	}

	var payload struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Error.Code != "rate_limited" {
		t.Fatalf("expected code=rate_limited, got %q", payload.Error.Code)
	}
	if payload.Error.Details["retryAfterMs"] != float64(2000) {
		t.Fatalf("expected retryAfterMs=2000, got %v", payload.Error.Details["retryAfterMs"])
	}
	if payload.Error.Details["group"] != WriteGroup {
		t.Fatalf("expected group=%s, got %v", WriteGroup, payload.Error.Details["group"])
	}
}

func TestRateLimitBucketsArePerActor(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })
	rules := map[string]RateLimitRule{WriteGroup: {Rate: 1, Burst: 1}}
	alice := newLimitedRouter(limiter, "alice", rules)
	bob := newLimitedRouter(limiter, "bob", rules)

	if resp := serve(alice, http.MethodPost, "/api/v1/records"); resp.Code != http.StatusOK {
		t.Fatalf("alice first write expected 200, got %d", resp.Code)
	}
	if resp := serve(bob, http.MethodPost, "/api/v1/records"); resp.Code != http.StatusOK {
		t.Fatalf("bob should have his own bucket, got %d", resp.Code)
	}
	if resp := serve(alice, http.MethodPost, "/api/v1/records"); resp.Code != http.StatusTooManyRequests {
		t.Fatalf("alice second write expected 429, got %d", resp.Code)
	}
}

func TestRateLimiterRefillsOverTime(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })
	rule := RateLimitRule{Rate: 2, Burst: 2}

	for i := 0; i < 2; i++ {
		if ok, _ := limiter.Allow("k", rule); !ok {
			t.Fatalf("call %d should be allowed", i+1)
		}
	}
	ok, wait := limiter.Allow("k", rule)
	if ok {
		t.Fatalf("third call should be limited")
	}
	if wait != 500*time.Millisecond {
		t.Fatalf("expected 500ms wait, got %s", wait)
	}

	now = now.Add(500 * time.Millisecond)
	if ok, _ := limiter.Allow("k", rule); !ok {
		t.Fatalf("expected a token after refill")
	}
}

func TestRateLimiterSweepsIdleBuckets(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })
	rule := RateLimitRule{Rate: 1, Burst: 1}

	limiter.Allow("a", rule)
	limiter.Allow("b", rule)
	if limiter.Len() != 2 {
		t.Fatalf("expected 2 buckets, got %d", limiter.Len())
	}

	now = now.Add(2 * time.Minute)
	limiter.Allow("c", rule)
	if limiter.Len() != 1 {
		t.Fatalf("expected idle buckets swept, got %d", limiter.Len())
	}
}

func TestRateLimiterUnlimitedRule(t *testing.T) {
	limiter := NewRateLimiter(nil)
	for i := 0; i < 100; i++ {
		if ok, _ := limiter.Allow("k", RateLimitRule{}); !ok {
			t.Fatalf("zero rule should never limit")
		}
	}
	if limiter.Len() != 0 {
		t.Fatalf("unlimited rule should not allocate buckets")
	}
}
