package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"loan-desk/internal/config"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const rateLimitKeyPrefix = "ratelimit:"

// limiterCleanupInterval is how often idle in-memory limiters are swept.
var limiterCleanupInterval = 10 * time.Minute

// RateLimiterMiddleware limits requests per client IP. With a redis store the
// count is a shared fixed window so every replica sees the same budget;
// without one each process keeps its own token buckets.
type RateLimiterMiddleware struct {
	limiters sync.Map
	store    redis.Cmdable
	cfg      config.RateLimitConfig
	logger   *slog.Logger
	window   time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

func NewRateLimiterMiddleware(cfg config.RateLimitConfig, store redis.Cmdable, logger *slog.Logger) *RateLimiterMiddleware {
	if isNilStore(store) {
		store = nil
	}
	rl := &RateLimiterMiddleware{
		store:  store,
		cfg:    cfg,
		logger: logger.With("component", "RateLimiter"),
		window: time.Second,
		stop:   make(chan struct{}),
	}

	switch {
	case !cfg.Enabled:
		rl.logger.Info("Rate limiting is disabled via configuration.")
		return rl
	case store != nil:
		rl.logger.Info("Rate limiter using redis fixed window", "limit", rl.windowLimit(), "window", rl.window)
	default:
		rl.logger.Info("Rate limiter using in-memory token buckets", "rps", cfg.RPS, "burst", cfg.Burst)
	}

	// The redis path also fills the local map while redis is unreachable.
	go rl.cleanupLimiters(limiterCleanupInterval)

	return rl
}

func isNilStore(store redis.Cmdable) bool {
	if store == nil {
		return true
	}
	v := reflect.ValueOf(store)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// Stop ends the background cleanup of idle in-memory limiters.
func (rl *RateLimiterMiddleware) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiterMiddleware) windowLimit() int64 {
	return int64(math.Max(1, math.Ceil(rl.cfg.RPS)))
}

func (rl *RateLimiterMiddleware) getLimiter(ip string) *rate.Limiter {
	limiter, _ := rl.limiters.LoadOrStore(ip, rate.NewLimiter(rate.Limit(rl.cfg.RPS), rl.cfg.Burst))
	return limiter.(*rate.Limiter)
}

func (rl *RateLimiterMiddleware) cleanupLimiters(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}

// sweep drops limiters whose bucket has refilled completely.
func (rl *RateLimiterMiddleware) sweep() {
	now := time.Now()
	rl.limiters.Range(func(key, value any) bool {
		limiter := value.(*rate.Limiter)
		if limiter.TokensAt(now) >= float64(limiter.Burst()) {
			rl.limiters.Delete(key)
		}
		return true
	})
}

func (rl *RateLimiterMiddleware) extractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ip := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(ip) != nil {
			return ip
		}
	}

	if xRealIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); xRealIP != "" {
		if net.ParseIP(xRealIP) != nil {
			return xRealIP
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// allowShared counts the request in the redis window. ok is false when redis
// could not answer and the caller should fall back to the local limiter.
func (rl *RateLimiterMiddleware) allowShared(r *http.Request, ip string) (allowed bool, ok bool) {
	ctx := r.Context()
	key := rateLimitKeyPrefix + ip

	pipe := rl.store.Pipeline()
	incrCmd := pipe.Incr(ctx, key)
	ttlCmd := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		rl.logger.Error("Redis pipeline failed during rate limiting check", "error", err, "ip", ip)
		return false, false
	}

	count, err := incrCmd.Result()
	if err != nil {
		rl.logger.Error("Failed to read INCR result", "error", err, "ip", ip)
		return false, false
	}

	// -1: key without expiry, -2: key vanished between INCR and TTL.
	if ttl, err := ttlCmd.Result(); err != nil || ttl == -1 || ttl == -2 {
		if err := rl.store.Expire(ctx, key, rl.window).Err(); err != nil {
			rl.logger.Error("Failed to set expiry on rate limit key", "error", err, "key", key)
		}
	}

	return count <= rl.windowLimit(), true
}

func (rl *RateLimiterMiddleware) Middleware(next http.Handler) http.Handler {
	if !rl.cfg.Enabled {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := rl.extractIP(r)

		allowed, decided := false, false
		if rl.store != nil {
			allowed, decided = rl.allowShared(r, ip)
		}
		if !decided {
			allowed = rl.getLimiter(ip).Allow()
		}

		if !allowed {
			rl.logger.Warn("Rate limit exceeded", "ip", ip)
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", fmt.Sprintf("%.0f", rl.window.Seconds()))
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]string{
					"message": "Rate limit exceeded",
				},
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
