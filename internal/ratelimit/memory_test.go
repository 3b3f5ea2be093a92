package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a settable time source for limiter tests.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func newMemory(t *testing.T, rate float64, burst int, clock *fakeClock) *MemoryLimiter {
	t.Helper()
	m := NewMemoryLimiter(rate, burst)
	if clock != nil {
		m.now = clock.Now
	}
	t.Cleanup(func() { require.NoError(t, m.Close()) })
	return m
}

func TestMemoryLimiterAllowUnderBurst(t *testing.T) {
	m := newMemory(t, 10, 5, newClock())

	ctx := context.Background()
	for i := range 5 {
		res, err := m.Allow(ctx, "k1")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d is within burst", i)
		assert.Equal(t, 5, res.Limit)
		assert.Equal(t, 4-i, res.Remaining)
	}
}

func TestMemoryLimiterDenyAfterBurst(t *testing.T) {
	clock := newClock()
	m := newMemory(t, 2, 3, clock)

	ctx := context.Background()
	for range 3 {
		res, _ := m.Allow(ctx, "k1")
		require.True(t, res.Allowed)
	}

	res, err := m.Allow(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, clock.Now().Add(500*time.Millisecond), res.ResetAt, "one token refills in 1/rate seconds")
	assert.Equal(t, 1, res.RetryAfter(clock.Now()))
}

func TestMemoryLimiterTokenRefill(t *testing.T) {
	clock := newClock()
	m := newMemory(t, 1000, 2, clock)

	ctx := context.Background()
	for range 2 {
		_, _ = m.Allow(ctx, "k1")
	}
	res, _ := m.Allow(ctx, "k1")
	require.False(t, res.Allowed, "denied immediately after exhausting burst")

	clock.Advance(2 * time.Millisecond)

	res, err := m.Allow(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, res.Allowed, "allowed after refill period")
}

func TestMemoryLimiterIndependentKeys(t *testing.T) {
	m := newMemory(t, 10, 1, newClock())

	ctx := context.Background()
	res, _ := m.Allow(ctx, "a")
	assert.True(t, res.Allowed)
	res, _ = m.Allow(ctx, "a")
	assert.False(t, res.Allowed)

	res, _ = m.Allow(ctx, "b")
	assert.True(t, res.Allowed, "key b has its own bucket")
}

func TestMemoryLimiterConcurrent(t *testing.T) {
	m := newMemory(t, 100, 50, newClock())

	ctx := context.Background()
	var wg sync.WaitGroup
	var mu sync.Mutex
	total := 0

	for range 10 {
		wg.Go(func() {
			for range 10 {
				res, err := m.Allow(ctx, "shared")
				if err != nil {
					t.Errorf("Allow error: %v", err)
					return
				}
				if res.Allowed {
					mu.Lock()
					total++
					mu.Unlock()
				}
			}
		})
	}
	wg.Wait()

	// The clock is frozen, so exactly the burst is admitted.
	assert.Equal(t, 50, total)
}

func TestMemoryLimiterEvictStale(t *testing.T) {
	clock := newClock()
	m := newMemory(t, 10, 5, clock)

	ctx := context.Background()
	_, _ = m.Allow(ctx, "stale")
	clock.Advance(15 * time.Minute)
	_, _ = m.Allow(ctx, "recent")

	m.evictStale()

	m.mu.Lock()
	defer m.mu.Unlock()
	assert.NotContains(t, m.buckets, "stale")
	assert.Contains(t, m.buckets, "recent")
}

func TestMemoryLimiterCloseIdempotent(t *testing.T) {
	m := NewMemoryLimiter(10, 5)
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
}

func TestNoopLimiterAlwaysAllows(t *testing.T) {
	var l NoopLimiter
	for range 100 {
		res, err := l.Allow(context.Background(), "any")
		require.NoError(t, err)
		require.True(t, res.Allowed)
	}
	assert.NoError(t, l.Close())
}

func TestResultFormatHeaders(t *testing.T) {
	resetAt := time.Date(2026, 2, 5, 12, 0, 0, 0, time.UTC)
	result := Result{
		Allowed:   true,
		Limit:     100,
		Remaining: 42,
		ResetAt:   resetAt,
	}

	headers := result.FormatHeaders()
	assert.Equal(t, "100", headers["X-RateLimit-Limit"])
	assert.Equal(t, "42", headers["X-RateLimit-Remaining"])
	assert.Equal(t, "1770292800", headers["X-RateLimit-Reset"])
}

func TestResultRetryAfter(t *testing.T) {
	now := time.Date(2026, 2, 5, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, Result{ResetAt: now}.RetryAfter(now))
	assert.Equal(t, 1, Result{ResetAt: now.Add(200 * time.Millisecond)}.RetryAfter(now))
	assert.Equal(t, 3, Result{ResetAt: now.Add(2500 * time.Millisecond)}.RetryAfter(now))
}
