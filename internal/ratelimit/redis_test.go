package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisLimiter(t *testing.T, limit int, window time.Duration) (*RedisLimiter, *miniredis.Miniredis, *fakeClock) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	l, err := NewRedisLimiter(client, limit, window)
	require.NoError(t, err)
	clock := newClock()
	l.now = clock.Now
	t.Cleanup(func() { _ = l.Close() })
	return l, mr, clock
}

func TestRedisLimiterAllow(t *testing.T) {
	ctx := context.Background()
	l, _, clock := newRedisLimiter(t, 5, time.Minute)

	for i := range 5 {
		res, err := l.Allow(ctx, "ip:10.0.0.1")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d should be allowed", i+1)
		assert.Equal(t, 5, res.Limit)
		assert.Equal(t, 5-i-1, res.Remaining)
	}

	res, err := l.Allow(ctx, "ip:10.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.Allowed, "6th request should be denied")
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, clock.Now().Truncate(time.Minute).Add(time.Minute), res.ResetAt)
}

func TestRedisLimiterMultipleKeys(t *testing.T) {
	ctx := context.Background()
	l, _, _ := newRedisLimiter(t, 3, time.Minute)

	for i := range 3 {
		a, err := l.Allow(ctx, "a")
		require.NoError(t, err)
		b, err := l.Allow(ctx, "b")
		require.NoError(t, err)
		assert.True(t, a.Allowed, "a request %d", i+1)
		assert.True(t, b.Allowed, "b request %d", i+1)
	}

	a, _ := l.Allow(ctx, "a")
	b, _ := l.Allow(ctx, "b")
	assert.False(t, a.Allowed)
	assert.False(t, b.Allowed)
}

func TestRedisLimiterWindowRollover(t *testing.T) {
	ctx := context.Background()
	l, mr, clock := newRedisLimiter(t, 2, time.Second)

	for range 2 {
		res, err := l.Allow(ctx, "k")
		require.NoError(t, err)
		require.True(t, res.Allowed)
	}
	res, _ := l.Allow(ctx, "k")
	require.False(t, res.Allowed)

	clock.Advance(time.Second)
	res, err := l.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, res.Allowed, "a new window starts a new count")

	// Old window keys expire on their own.
	mr.FastForward(3 * time.Second)
	assert.Empty(t, mr.Keys())
}

func TestRedisLimiterReportsBackendErrors(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	l, err := NewRedisLimiter(redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1}), 1, time.Second)
	require.NoError(t, err)
	defer func() { _ = l.Close() }()
	mr.Close()

	_, err = l.Allow(context.Background(), "k")
	assert.Error(t, err)
}

func TestNewRedisLimiterValidates(t *testing.T) {
	_, err := NewRedisLimiter(nil, 1, time.Second)
	assert.Error(t, err)

	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer func() { _ = client.Close() }()
	_, err = NewRedisLimiter(client, 0, time.Second)
	assert.Error(t, err)
}

func TestNewRedisLimiterFromURL(t *testing.T) {
	mr := miniredis.RunT(t)

	l, err := NewRedisLimiterFromURL(context.Background(), "redis://"+mr.Addr()+"/0", 10, time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	res, err := l.Allow(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	_, err = NewRedisLimiterFromURL(context.Background(), "not a url", 10, time.Second)
	assert.Error(t, err)
}
