// Package ratelimit provides a pluggable rate limiting interface.
//
// MemoryLimiter is an in-process token bucket. RedisLimiter counts requests
// in a fixed window shared by every instance pointing at the same Redis.
// The Limiter interface is the contract the HTTP middleware depends on.
package ratelimit

import (
	"context"
	"strconv"
	"time"
)

// Limiter decides whether a request identified by key should be allowed.
// Implementations must be safe for concurrent use.
type Limiter interface {
	// Allow consumes one unit for key. The key is opaque; the middleware
	// passes the client IP.
	// Returning an error signals a limiter malfunction; callers should
	// treat errors as fail-open (permit the request) rather than blocking traffic.
	Allow(ctx context.Context, key string) (Result, error)

	// Close releases resources (cleanup goroutines, connections).
	Close() error
}

// Result is the outcome of one Allow call.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time // when at least one more request will be allowed
}

// FormatHeaders returns the X-RateLimit-* response headers for r.
func (r Result) FormatHeaders() map[string]string {
	return map[string]string{
		"X-RateLimit-Limit":     strconv.Itoa(r.Limit),
		"X-RateLimit-Remaining": strconv.Itoa(r.Remaining),
		"X-RateLimit-Reset":     strconv.FormatInt(r.ResetAt.Unix(), 10),
	}
}

// RetryAfter returns the whole seconds a denied client should wait, at least 1.
func (r Result) RetryAfter(now time.Time) int {
	secs := int(r.ResetAt.Sub(now).Seconds() + 0.999)
	if secs < 1 {
		return 1
	}
	return secs
}

// NoopLimiter permits every request. Used when rate limiting is disabled.
type NoopLimiter struct{}

// Allow always allows.
func (NoopLimiter) Allow(context.Context, string) (Result, error) {
	return Result{Allowed: true}, nil
}

// Close is a no-op.
func (NoopLimiter) Close() error { return nil }
