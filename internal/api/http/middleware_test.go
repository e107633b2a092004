package http

import (
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Metric labels must use the matched route template and the numeric
// status code, so one parameterized route stays a single series.
func TestMetricsLabels(t *testing.T) {
	s := newTestServer(t)
	s.bans.On("RemoveBan", mock.Anything, int32(1), int32(9001)).Return(nil)

	counter := httpRequestsTotal.WithLabelValues(http.MethodDelete, "/creator/bans/{id}", "200")
	before := testutil.ToFloat64(counter)

	rec := s.do(t, http.MethodDelete, "/creator/bans/9001", s.creatorToken(t), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestEdgeRateLimitSheds(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := EdgeRateLimit(inner, 1, 1)

	req := httptest.NewRequest(http.MethodGet, "/join-status", nil)
	req.RemoteAddr = "203.0.113.7:4242"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

// Each limiter instance must not spawn its own background goroutine;
// eviction happens inline so short-lived routers (one per test suite)
// leave nothing behind.
func TestEdgeRateLimitSpawnsNoGoroutines(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	before := runtime.NumGoroutine()
	for i := 0; i < 50; i++ {
		h := EdgeRateLimit(inner, 10, 10)
		req := httptest.NewRequest(http.MethodGet, "/join-status", nil)
		req.RemoteAddr = "203.0.113.7:4242"
		h.ServeHTTP(httptest.NewRecorder(), req)
	}
	runtime.Gosched()

	assert.LessOrEqual(t, runtime.NumGoroutine(), before+5)
}
