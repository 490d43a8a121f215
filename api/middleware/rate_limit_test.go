package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func requestFrom(ip string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req.RemoteAddr = ip + ":5000"
	return req
}

func TestRateLimitBlocksAfterBurst(t *testing.T) {
	limiter := NewIPLimiter(3, 15*time.Minute)
	handler := RateLimit(limiter, nil)(okHandler())

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestFrom("10.0.0.1"))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestFrom("10.0.0.1"))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, GeneralLimitMessage, decodeErrorMessage(t, rec))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, requestFrom("10.0.0.2"))
	require.Equal(t, http.StatusOK, rec.Code, "buckets are per IP")
}

func TestRateLimitRefills(t *testing.T) {
	limiter := NewIPLimiter(2, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }
	handler := RateLimit(limiter, nil)(okHandler())

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestFrom("10.0.0.3"))
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestFrom("10.0.0.3"))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	now = now.Add(30 * time.Second)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, requestFrom("10.0.0.3"))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestIPLimiterSweep(t *testing.T) {
	limiter := NewIPLimiter(5, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	require.True(t, limiter.allow("a"))
	now = now.Add(2 * time.Minute)
	require.True(t, limiter.allow("b"))

	require.Equal(t, 1, limiter.Sweep())
	require.Len(t, limiter.visitors, 1)
}

func TestNewIPLimiterDisabled(t *testing.T) {
	require.Nil(t, NewIPLimiter(0, time.Minute))
	handler := RateLimit(nil, nil)(okHandler())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestFrom("10.0.0.9"))
	require.Equal(t, http.StatusOK, rec.Code)
}

type fakeCounter struct {
	mu     sync.Mutex
	counts map[string]int64
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: make(map[string]int64)}
}

func (f *fakeCounter) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeCounter) Decr(_ context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[key]--
	return f.counts[key], nil
}

func (f *fakeCounter) RateLimitKey(scope string) string {
	return "rl:" + scope
}

func TestWindowRateLimitBlocksRegistrations(t *testing.T) {
	policy := WindowPolicy{Name: "register", Window: time.Hour, Limit: 3, Message: RegisterLimitMessage}
	handler := WindowRateLimit(policy, newFakeCounter(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(`{}`)))
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(`{}`)))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, RegisterLimitMessage, decodeErrorMessage(t, rec))
	require.Equal(t, "3600", rec.Header().Get("Retry-After"))
}

func TestWindowRateLimitSkipsSuccessfulLogins(t *testing.T) {
	policy := WindowPolicy{Name: "login", Window: 15 * time.Minute, Limit: 2, Message: LoginLimitMessage, SkipSuccessful: true}
	status := http.StatusOK
	store := newFakeCounter()
	handler := WindowRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))

	serve := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusOK, serve())
	}
	require.Equal(t, int64(0), store.counts["rl:login:203.0.113.7"])

	status = http.StatusUnauthorized
	require.Equal(t, http.StatusUnauthorized, serve())
	require.Equal(t, http.StatusUnauthorized, serve())
	require.Equal(t, http.StatusTooManyRequests, serve())
}
