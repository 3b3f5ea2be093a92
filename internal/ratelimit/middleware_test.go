package ratelimit_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashita-ai/compendium/internal/model"
	"github.com/ashita-ai/compendium/internal/ratelimit"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

var ok = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func serve(h http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/classes/", nil)
	req.RemoteAddr = remoteAddr
	h.ServeHTTP(rec, req)
	return rec
}

func TestMiddlewareLimitsPerIP(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter(1, 2)
	defer func() { _ = limiter.Close() }()

	reqID := func(*http.Request) string { return "req-1" }
	h := ratelimit.Middleware(limiter, ratelimit.IPKeyFunc, reqID, testLogger)(ok)

	for i := range 2 {
		rec := serve(h, "192.168.1.1:12345")
		require.Equal(t, http.StatusOK, rec.Code, "request %d within burst", i+1)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := serve(h, "192.168.1.1:23456")
	require.Equal(t, http.StatusTooManyRequests, rec.Code, "same IP, different port")
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	var body model.APIError
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, model.ErrCodeRateLimited, body.Error.Code)
	assert.Equal(t, "req-1", body.Meta.RequestID)

	assert.Equal(t, http.StatusOK, serve(h, "10.0.0.2:1000").Code, "other IPs have their own bucket")
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (ratelimit.Result, error) {
	return ratelimit.Result{}, errors.New("backend down")
}

func (failingLimiter) Close() error { return nil }

func TestMiddlewareFailsOpen(t *testing.T) {
	h := ratelimit.Middleware(failingLimiter{}, ratelimit.IPKeyFunc, nil, testLogger)(ok)
	assert.Equal(t, http.StatusOK, serve(h, "10.0.0.1:1").Code)
}

func TestMiddlewareSkipsEmptyKey(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter(1, 1)
	defer func() { _ = limiter.Close() }()

	h := ratelimit.Middleware(limiter, func(*http.Request) string { return "" }, nil, testLogger)(ok)
	for range 3 {
		assert.Equal(t, http.StatusOK, serve(h, "10.0.0.1:1").Code)
	}
}

func TestIPKeyFunc(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "[::1]:8080"
	assert.Equal(t, "ip:::1", ratelimit.IPKeyFunc(r))

	r.RemoteAddr = "pipe"
	assert.Equal(t, "ip:pipe", ratelimit.IPKeyFunc(r))
}
