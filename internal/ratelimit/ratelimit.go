// Package ratelimit throttles write requests per caller with a fixed window
// counter kept in Redis.
package ratelimit

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gochat/internal/common"
	"gochat/internal/logger"
	"gochat/internal/metrics"

	"github.com/redis/go-redis/v9"
)

// Counter increments the hit count for key within the current window.
type Counter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

type RedisCounter struct {
	client *redis.Client
}

func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

func (c *RedisCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window*2)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

type Limiter struct {
	counter Counter
	limit   int
	window  time.Duration
	now     func() time.Time
}

// NewLimiter returns nil when counter is nil or limit is not positive; a nil
// Limiter lets everything through.
func NewLimiter(counter Counter, limit int, window time.Duration) *Limiter {
	if counter == nil || limit <= 0 {
		return nil
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{counter: counter, limit: limit, window: window, now: time.Now}
}

// Allow records one hit for subject and reports whether it is within the limit.
func (l *Limiter) Allow(ctx context.Context, subject string) (bool, int, error) {
	bucket := l.now().Unix() / int64(l.window.Seconds())
	key := fmt.Sprintf("ratelimit:%s:%d", subject, bucket)

	count, err := l.counter.Hit(ctx, key, l.window)
	if err != nil {
		return true, l.limit, err
	}
	remaining := l.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return count <= int64(l.limit), remaining, nil
}

// Middleware limits every method except GET, HEAD and OPTIONS. Redis errors
// fail open.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l == nil || !isWrite(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		subject := subjectFor(r)
		allowed, remaining, err := l.Allow(r.Context(), subject)
		if err != nil {
			logger.Warn("rate limiter unavailable", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			metrics.RateLimitHits.WithLabelValues(metrics.RouteTemplate(r)).Inc()
			logger.Warn("rate limit exceeded", "subject", subject, "path", r.URL.Path)
			w.Header().Set("Retry-After", strconv.Itoa(int(l.window.Seconds())))
			common.WriteJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func isWrite(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}

// subjectFor keys authenticated callers by user id and everyone else by IP.
func subjectFor(r *http.Request) string {
	if userID, ok := common.UserIDFromContext(r.Context()); ok {
		return "user:" + userID
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return "ip:" + strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "ip:" + r.RemoteAddr
	}
	return "ip:" + host
}
