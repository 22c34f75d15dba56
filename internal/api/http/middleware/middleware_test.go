package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/loan-guidance/loan-guidance-backend/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestID_GeneratesAndPropagates(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	var fromCtx, fromGin string
	r := gin.New()
	r.Use(RequestID(logger))
	r.GET("/x", func(c *gin.Context) {
		fromCtx = GetRequestID(c.Request.Context())
		fromGin = c.GetString("request_id")
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	rid := w.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(rid)
	require.NoError(t, err)
	assert.Equal(t, rid, fromCtx)
	assert.Equal(t, rid, fromGin)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, rid, line["request_id"])
	assert.Equal(t, float64(http.StatusNoContent), line["status"])
	assert.Equal(t, "/x", line["path"])
}

func TestRequestID_ReusesIncomingHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(observability.Discard()))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("a", 500))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}

func TestGetRequestID_Missing(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))
}

func rateLimitedRouter(l *RateLimiter) *gin.Engine {
	r := gin.New()
	r.POST("/predict", l.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func post(r http.Handler, ip string) int {
	req := httptest.NewRequest(http.MethodPost, "/predict", nil)
	req.RemoteAddr = ip + ":12345"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiter_RejectsPastBurst(t *testing.T) {
	l := NewRateLimiter(1, 3)
	frozen := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return frozen }
	r := rateLimitedRouter(l)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, post(r, "10.0.0.1"), "request %d", i)
	}
	assert.Equal(t, http.StatusTooManyRequests, post(r, "10.0.0.1"))

	// other clients have their own bucket
	assert.Equal(t, http.StatusOK, post(r, "10.0.0.2"))

	// tokens refill over time
	frozen = frozen.Add(time.Second)
	assert.Equal(t, http.StatusOK, post(r, "10.0.0.1"))
}

func TestRateLimiter_Disabled(t *testing.T) {
	r := rateLimitedRouter(NewRateLimiter(0, 0))
	for i := 0; i < 50; i++ {
		require.Equal(t, http.StatusOK, post(r, "10.0.0.1"))
	}
}

func TestRateLimiter_EvictsIdleClients(t *testing.T) {
	l := NewRateLimiter(1, 1)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.limiter("a")
	now = now.Add(limiterIdleTTL + time.Second)
	l.limiter("b")

	assert.NotContains(t, l.visitors, "a")
	assert.Contains(t, l.visitors, "b")
}

func TestRateLimiter_SweepsAtMostOncePerTTL(t *testing.T) {
	l := NewRateLimiter(1, 1)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start
	l.now = func() time.Time { return now }

	l.limiter("x")
	now = start.Add(time.Second)
	l.limiter("idle")

	now = start.Add(limiterIdleTTL)
	l.limiter("y")
	assert.Contains(t, l.visitors, "idle")

	// Idle past the TTL, but the last sweep was two seconds ago.
	now = start.Add(limiterIdleTTL + 2*time.Second)
	l.limiter("z")
	assert.Contains(t, l.visitors, "idle")

	now = start.Add(2 * limiterIdleTTL)
	l.limiter("z")
	assert.NotContains(t, l.visitors, "idle")
	assert.Contains(t, l.visitors, "z")
}

func TestMetrics(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.GET("/metrics-test/:id", func(c *gin.Context) { c.Status(http.StatusAccepted) })

	before := testutil.ToFloat64(observability.HTTPRequests.WithLabelValues("/metrics-test/:id", http.MethodGet, "202"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics-test/42", nil))

	after := testutil.ToFloat64(observability.HTTPRequests.WithLabelValues("/metrics-test/:id", http.MethodGet, "202"))
	assert.Equal(t, before+1, after)
}
