package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter implements Limiter as a fixed window counter in Redis: one
// INCR per request on a key named after the current window, expired shortly
// after the window closes.
type RedisLimiter struct {
	client redis.UniversalClient
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewRedisLimiter allows limit requests per key per window.
func NewRedisLimiter(client redis.UniversalClient, limit int, window time.Duration) (*RedisLimiter, error) {
	if client == nil {
		return nil, errors.New("ratelimit: redis client is required")
	}
	if limit <= 0 || window <= 0 {
		return nil, fmt.Errorf("ratelimit: limit and window must be positive (got %d, %s)", limit, window)
	}
	return &RedisLimiter{
		client: client,
		prefix: "compendium:ratelimit",
		limit:  limit,
		window: window,
		now:    time.Now,
	}, nil
}

// NewRedisLimiterFromURL parses a redis:// URL and pings the server.
func NewRedisLimiterFromURL(ctx context.Context, rawURL string, limit int, window time.Duration) (*RedisLimiter, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("ratelimit: parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ratelimit: ping redis: %w", err)
	}
	return NewRedisLimiter(client, limit, window)
}

// Allow counts one request for key in the current window.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	now := l.now()
	start := now.Truncate(l.window)
	k := l.prefix + ":" + key + ":" + strconv.FormatInt(start.UnixMilli(), 10)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.PExpire(ctx, k, 2*l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, fmt.Errorf("ratelimit: redis incr: %w", err)
	}

	count := int(incr.Val())
	res := Result{
		Allowed:   count <= l.limit,
		Limit:     l.limit,
		Remaining: max(l.limit-count, 0),
		ResetAt:   start.Add(l.window),
	}
	return res, nil
}

// Close closes the Redis client.
func (l *RedisLimiter) Close() error {
	return l.client.Close()
}
