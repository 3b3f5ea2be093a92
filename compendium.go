// Package compendium is the public API for embedding the Compendium catalog
// server.
//
// The CLI and any embedding program construct the server the same way:
//
//	app, err := compendium.New(ctx,
//	    compendium.WithVersion(version),
//	    compendium.WithLogger(logger),
//	    compendium.WithExtraRoutes(func(mux *http.ServeMux) { ... }),
//	)
//	if err != nil { ... }
//	if err := app.Run(ctx); err != nil { ... }
//
// The root package imports internal/*; internal/* never imports it.
package compendium

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ashita-ai/compendium/api"
	"github.com/ashita-ai/compendium/internal/config"
	"github.com/ashita-ai/compendium/internal/mcp"
	"github.com/ashita-ai/compendium/internal/ratelimit"
	"github.com/ashita-ai/compendium/internal/server"
	"github.com/ashita-ai/compendium/internal/service/catalog"
	"github.com/ashita-ai/compendium/internal/storage"
	"github.com/ashita-ai/compendium/internal/telemetry"
	"github.com/ashita-ai/compendium/migrations"
)

// App is the Compendium server lifecycle. Construct with New, run with Run.
type App struct {
	cfg          config.Config
	db           *storage.DB
	srv          *server.Server
	limiter      ratelimit.Limiter
	otelShutdown telemetry.Shutdown
	logger       *slog.Logger
	version      string

	shutdownOnce sync.Once
	shutdownErr  error
}

// New loads configuration from the environment, applies opts on top, connects
// to the database, runs migrations and wires the HTTP server. It does not
// accept connections; call Run.
func New(ctx context.Context, opts ...Option) (*App, error) {
	o := resolvedOptions{}
	for _, fn := range opts {
		fn(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if o.port != 0 {
		cfg.Port = o.port
	}
	if o.databaseURL != "" {
		cfg.DatabaseURL = o.databaseURL
	}
	if o.publicBaseURL != "" {
		cfg.PublicBaseURL = o.publicBaseURL
	}
	version := o.version
	if version == "" {
		version = "dev"
	}

	logger.Info("compendium starting", "version", version, "port", cfg.Port)

	otelShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Endpoint:    cfg.OTELEndpoint,
		Insecure:    cfg.OTELInsecure,
		ServiceName: cfg.ServiceName,
		Version:     version,
		DBSystem:    string(storage.DialectFor(cfg.DatabaseURL)),
	})
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	db, err := storage.New(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		_ = otelShutdown(context.Background())
		return nil, fmt.Errorf("storage: %w", err)
	}

	// closeAll releases what New has acquired so far.
	closeAll := func() {
		db.Close(context.Background())
		_ = otelShutdown(context.Background())
	}

	if o.skipMigrations {
		logger.Info("embedded migrations skipped")
	} else if err := db.RunMigrations(ctx, migrations.FS); err != nil {
		closeAll()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	for i, extra := range o.extraMigrations {
		if err := db.RunMigrations(ctx, extra); err != nil {
			closeAll()
			return nil, fmt.Errorf("extra migrations[%d]: %w", i, err)
		}
	}

	limiter, err := newLimiter(ctx, cfg)
	if err != nil {
		closeAll()
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	metrics := telemetry.NewMetrics()
	svc := catalog.New(db, metrics, logger)

	srvCfg := server.ServerConfig{
		DB:                  db,
		Catalog:             svc,
		Logger:              logger,
		Limiter:             limiter,
		Metrics:             metrics,
		Port:                cfg.Port,
		ReadTimeout:         cfg.ReadTimeout,
		WriteTimeout:        cfg.WriteTimeout,
		Version:             version,
		MaxRequestBodyBytes: cfg.MaxRequestBodyBytes,
		PublicBaseURL:       cfg.PublicBaseURL,
		OpenAPISpec:         api.OpenAPISpec,
	}
	for _, r := range o.routeRegistrars {
		srvCfg.ExtraRoutes = append(srvCfg.ExtraRoutes, r)
	}
	for _, mw := range o.middlewares {
		srvCfg.Middlewares = append(srvCfg.Middlewares, mw)
	}
	if cfg.MCPEnabled {
		baseURL := cfg.PublicBaseURL
		if baseURL == "" {
			baseURL = fmt.Sprintf("http://localhost:%d", cfg.Port)
		}
		srvCfg.MCPServer = mcp.New(svc, baseURL, logger, version).MCPServer()
	}

	return &App{
		cfg:          cfg,
		db:           db,
		srv:          server.New(srvCfg),
		limiter:      limiter,
		otelShutdown: otelShutdown,
		logger:       logger,
		version:      version,
	}, nil
}

// Handler returns the fully wrapped HTTP handler, for serving the App from
// a caller-owned listener or an httptest server.
func (a *App) Handler() http.Handler {
	return a.srv.Handler()
}

// Run serves HTTP until ctx is cancelled or the server fails, then shuts the
// App down. Callers should not call Shutdown separately.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.ShutdownTimeout)
		defer cancel()
		return a.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Shutdown drains in-flight requests, then releases the limiter, the
// database and the OTEL providers. Later calls return the first result.
func (a *App) Shutdown(ctx context.Context) error {
	a.shutdownOnce.Do(func() {
		a.logger.Info("compendium shutting down")

		if err := a.srv.Shutdown(ctx); err != nil {
			a.logger.Error("http shutdown error", "error", err)
			a.shutdownErr = err
		}
		_ = a.limiter.Close()
		_ = a.otelShutdown(context.Background())
		a.db.Close(context.Background())

		a.logger.Info("compendium stopped")
	})
	return a.shutdownErr
}

// newLimiter picks the rate limit backend: none when disabled, Redis when
// REDIS_URL is set, otherwise an in-process token bucket.
func newLimiter(ctx context.Context, cfg config.Config) (ratelimit.Limiter, error) {
	switch {
	case !cfg.RateLimitEnabled:
		return ratelimit.NoopLimiter{}, nil
	case cfg.RedisURL != "":
		window := time.Duration(float64(cfg.RateLimitBurst) / cfg.RateLimitRPS * float64(time.Second))
		return ratelimit.NewRedisLimiterFromURL(ctx, cfg.RedisURL, cfg.RateLimitBurst, window)
	default:
		return ratelimit.NewMemoryLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst), nil
	}
}
