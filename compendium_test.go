package compendium

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashita-ai/compendium/internal/config"
	"github.com/ashita-ai/compendium/internal/ratelimit"
	"github.com/ashita-ai/compendium/internal/testutil"
)

func newTestApp(t *testing.T, opts ...Option) *App {
	t.Helper()
	dsn := "sqlite:" + filepath.Join(t.TempDir(), "compendium.db")
	opts = append([]Option{WithDatabaseURL(dsn), WithLogger(testutil.TestLogger()), WithVersion("app-test")}, opts...)
	app, err := New(context.Background(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Shutdown(context.Background()) })
	return app
}

func TestNewServesCatalog(t *testing.T) {
	srv := httptest.NewServer(newTestApp(t, WithPublicBaseURL("https://dnd.example.com")).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"classes":"https://dnd.example.com/classes/"`)

	resp, err = http.Get(srv.URL + "/openapi.yaml")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestExtensionPoints(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	extra := fstest.MapFS{
		"sqlite/900_notes.sql":   {Data: []byte("CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT NOT NULL);")},
		"postgres/900_notes.sql": {Data: []byte("CREATE TABLE notes (id BIGSERIAL PRIMARY KEY, body TEXT NOT NULL);")},
	}

	app := newTestApp(t,
		WithMiddleware(mw("outer")),
		WithMiddleware(mw("inner")),
		WithExtraRoutes(func(mux *http.ServeMux) {
			mux.HandleFunc("GET /extra", func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, "extra")
			})
		}),
		WithExtraMigrations(extra),
	)
	srv := httptest.NewServer(app.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/extra")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "extra", string(body))
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestRunStopsOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	app := newTestApp(t, WithPort(port))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/health", port))
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestNewRejectsBadDatabaseURL(t *testing.T) {
	_, err := New(context.Background(), WithDatabaseURL("mysql://nope"), WithLogger(testutil.TestLogger()))
	assert.ErrorContains(t, err, "unsupported database URL")
}

func TestNewLimiter(t *testing.T) {
	ctx := context.Background()
	base := config.Config{RateLimitEnabled: true, RateLimitRPS: 10, RateLimitBurst: 20}

	t.Run("disabled", func(t *testing.T) {
		cfg := base
		cfg.RateLimitEnabled = false
		l, err := newLimiter(ctx, cfg)
		require.NoError(t, err)
		assert.IsType(t, ratelimit.NoopLimiter{}, l)
	})

	t.Run("memory", func(t *testing.T) {
		l, err := newLimiter(ctx, base)
		require.NoError(t, err)
		defer func() { _ = l.Close() }()
		assert.IsType(t, &ratelimit.MemoryLimiter{}, l)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := base
		cfg.RedisURL = "redis://" + mr.Addr()
		l, err := newLimiter(ctx, cfg)
		require.NoError(t, err)
		defer func() { _ = l.Close() }()
		assert.IsType(t, &ratelimit.RedisLimiter{}, l)

		res, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 20, res.Limit)
		assert.LessOrEqual(t, time.Until(res.ResetAt), 2*time.Second, "window is burst/rps")
	})

	t.Run("unreachable redis", func(t *testing.T) {
		cfg := base
		cfg.RedisURL = "redis://127.0.0.1:1"
		_, err := newLimiter(ctx, cfg)
		assert.Error(t, err)
	})
}
