package httpapi

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/campusvault/pyqhub/internal/logging"
)

// rateLimiter is a fixed-window per-client counter backed by redis.
// A nil client disables limiting entirely, which is the development
// default; redis being unreachable fails open so the auth endpoints
// never depend on redis availability.
type rateLimiter struct {
	redis  *redis.Client
	limit  int
	window time.Duration
	logger logging.Logger
}

func newRateLimiter(client *redis.Client, limit int, window time.Duration, logger logging.Logger) *rateLimiter {
	return &rateLimiter{redis: client, limit: limit, window: window, logger: logger.With("module", "ratelimit")}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (l *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l.redis == nil || l.limit <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		key := fmt.Sprintf("ratelimit:%s:%s", r.URL.Path, clientIP(r))

		count, err := l.redis.Incr(ctx, key).Result()
		if err != nil {
			l.logger.Warn(ctx, "rate limit check failed, allowing request", "error", err)
			next.ServeHTTP(w, r)
			return
		}
		if count == 1 {
			if err := l.redis.Expire(ctx, key, l.window).Err(); err != nil {
				l.logger.Warn(ctx, "rate limit window set failed", "error", err)
			}
		}
		if count > int64(l.limit) {
			writeJSON(w, http.StatusTooManyRequests, errorBody{Message: "too many requests, try again later"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
