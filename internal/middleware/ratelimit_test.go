package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imagevault/internal/logging"
)

type memoryCounter struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func (m *memoryCounter) Incr(_ context.Context, key string, _ time.Duration) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counts == nil {
		m.counts = map[string]int64{}
	}
	m.counts[key]++
	return m.counts[key], nil
}

func serve(t *testing.T, mw echo.MiddlewareFunc, ip string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.POST("/api/login", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, mw)

	req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	req.Header.Set(echo.HeaderXRealIP, ip)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit_RejectsOverLimit(t *testing.T) {
	rl := NewRateLimit(RateLimitConfig{Limit: 2, Window: time.Minute}, &memoryCounter{}, logging.Discard(), nil)
	mw := rl.Handle()

	assert.Equal(t, http.StatusOK, serve(t, mw, "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, serve(t, mw, "10.0.0.1").Code)

	rec := serve(t, mw, "10.0.0.1")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "RATE_LIMITED")
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	// other clients have their own window
	assert.Equal(t, http.StatusOK, serve(t, mw, "10.0.0.2").Code)
}

func TestRateLimit_FailsOpen(t *testing.T) {
	counter := &memoryCounter{err: errors.New("connection refused")}
	rl := NewRateLimit(RateLimitConfig{Limit: 1, Window: time.Minute}, counter, logging.Discard(), nil)
	mw := rl.Handle()

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(t, mw, "10.0.0.1").Code)
	}
}

func TestRateLimit_DisabledWithoutCounter(t *testing.T) {
	rl := NewRateLimit(RateLimitConfig{Limit: 1, Window: time.Minute}, nil, logging.Discard(), nil)
	mw := rl.Handle()

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(t, mw, "10.0.0.1").Code)
	}
}

func TestRateLimit_ZeroLimitDisables(t *testing.T) {
	counter := &memoryCounter{}
	rl := NewRateLimit(RateLimitConfig{Limit: 0, Window: time.Minute}, counter, logging.Discard(), nil)

	assert.Equal(t, http.StatusOK, serve(t, rl.Handle(), "10.0.0.1").Code)
	assert.Empty(t, counter.counts)
}
