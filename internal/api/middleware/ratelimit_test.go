package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"loan-desk/internal/config"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func requestFrom(ip string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = ip + ":12345"
	return req
}

func TestRateLimiterMiddleware_InMemory(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	rl := NewRateLimiterMiddleware(config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 1}, nil, logger)
	defer rl.Stop()
	handler := rl.Middleware(okHandler())

	rec1 := httptest.NewRecorder()
	handler.ServeHTTP(rec1, requestFrom("127.0.0.1"))
	assert.Equal(t, http.StatusOK, rec1.Code)

	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, requestFrom("127.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, rec2.Code)
	assert.Equal(t, "1", rec2.Header().Get("Retry-After"))

	var response map[string]map[string]string
	require.NoError(t, json.NewDecoder(rec2.Body).Decode(&response))
	assert.Equal(t, "Rate limit exceeded", response["error"]["message"])

	rec3 := httptest.NewRecorder()
	handler.ServeHTTP(rec3, requestFrom("10.0.0.9"))
	assert.Equal(t, http.StatusOK, rec3.Code, "other clients keep their own budget")
}

func TestRateLimiterMiddleware_Disabled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	rl := NewRateLimiterMiddleware(config.RateLimitConfig{Enabled: false, RPS: 1, Burst: 1}, nil, logger)
	handler := rl.Middleware(okHandler())

	for range 5 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestFrom("127.0.0.1"))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimiterMiddleware_TypedNilStoreFallsBack(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	var client *redis.Client
	rl := NewRateLimiterMiddleware(config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 1}, client, logger)
	defer rl.Stop()

	assert.Nil(t, rl.store)
	rec := httptest.NewRecorder()
	rl.Middleware(okHandler()).ServeHTTP(rec, requestFrom("127.0.0.1"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiterMiddleware_Redis(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	cfg := config.RateLimitConfig{Enabled: true, RPS: 2, Burst: 2}
	key := rateLimitKeyPrefix + "127.0.0.1"

	t.Run("First hit opens the window", func(t *testing.T) {
		db, redisMock := redismock.NewClientMock()
		rl := NewRateLimiterMiddleware(cfg, db, logger)

		redisMock.ExpectIncr(key).SetVal(1)
		redisMock.ExpectTTL(key).SetVal(time.Duration(-1))
		redisMock.ExpectExpire(key, time.Second).SetVal(true)

		rec := httptest.NewRecorder()
		rl.Middleware(okHandler()).ServeHTTP(rec, requestFrom("127.0.0.1"))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("Over the window limit is rejected", func(t *testing.T) {
		db, redisMock := redismock.NewClientMock()
		rl := NewRateLimiterMiddleware(cfg, db, logger)

		redisMock.ExpectIncr(key).SetVal(3)
		redisMock.ExpectTTL(key).SetVal(800 * time.Millisecond)

		rec := httptest.NewRecorder()
		rl.Middleware(okHandler()).ServeHTTP(rec, requestFrom("127.0.0.1"))

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("Redis failure falls back to the local limiter", func(t *testing.T) {
		db, redisMock := redismock.NewClientMock()
		rl := NewRateLimiterMiddleware(cfg, db, logger)

		redisMock.ExpectIncr(key).SetErr(errors.New("connection refused"))

		rec := httptest.NewRecorder()
		rl.Middleware(okHandler()).ServeHTTP(rec, requestFrom("127.0.0.1"))

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRateLimiterMiddleware_SweepsFallbackLimitersInRedisMode(t *testing.T) {
	previous := limiterCleanupInterval
	limiterCleanupInterval = 10 * time.Millisecond
	t.Cleanup(func() { limiterCleanupInterval = previous })

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	db, redisMock := redismock.NewClientMock()
	rl := NewRateLimiterMiddleware(config.RateLimitConfig{Enabled: true, RPS: 100, Burst: 1}, db, logger)
	defer rl.Stop()

	redisMock.ExpectIncr(rateLimitKeyPrefix + "127.0.0.1").SetErr(errors.New("connection refused"))

	rec := httptest.NewRecorder()
	rl.Middleware(okHandler()).ServeHTTP(rec, requestFrom("127.0.0.1"))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Eventually(t, func() bool {
		_, present := rl.limiters.Load("127.0.0.1")
		return !present
	}, 2*time.Second, 10*time.Millisecond)
}

func TestExtractIP(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	rl := NewRateLimiterMiddleware(config.RateLimitConfig{}, nil, logger)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "192.168.1.1, 10.0.0.1")
	assert.Equal(t, "192.168.1.1", rl.extractIP(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Real-IP", "10.0.0.1")
	assert.Equal(t, "10.0.0.1", rl.extractIP(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "not-an-ip")
	req.RemoteAddr = "127.0.0.1:12345"
	assert.Equal(t, "127.0.0.1", rl.extractIP(req))
}

func TestSweepDropsIdleLimiters(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	rl := NewRateLimiterMiddleware(config.RateLimitConfig{RPS: 1, Burst: 1}, nil, logger)

	rl.getLimiter("10.0.0.1")
	rl.getLimiter("10.0.0.2").Allow()

	rl.sweep()

	_, idle := rl.limiters.Load("10.0.0.1")
	_, busy := rl.limiters.Load("10.0.0.2")
	assert.False(t, idle)
	assert.True(t, busy)
}
