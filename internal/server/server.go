package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ashita-ai/compendium/internal/ratelimit"
	"github.com/ashita-ai/compendium/internal/service/catalog"
	"github.com/ashita-ai/compendium/internal/storage"
	"github.com/ashita-ai/compendium/internal/telemetry"
)

// ShutdownTimeout bounds how long in-flight requests may run after shutdown
// begins.
const ShutdownTimeout = 10 * time.Second

// Server is the Compendium HTTP server.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	handlers   *Handlers
	logger     *slog.Logger
}

// Handler returns the root HTTP handler for use in tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ServerConfig holds all dependencies and configuration for creating a Server.
// Optional fields (nil-safe): Limiter, Metrics, MCPServer, OpenAPISpec.
type ServerConfig struct {
	// Required dependencies.
	DB      *storage.DB
	Catalog *catalog.Service
	Logger  *slog.Logger

	// Optional dependencies (nil = disabled).
	Limiter   ratelimit.Limiter
	Metrics   *telemetry.Metrics
	MCPServer *mcpserver.MCPServer

	// HTTP server settings.
	Port                int
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration
	Version             string
	MaxRequestBodyBytes int64
	PublicBaseURL       string        // overrides the request-derived base of detail_url

	// Optional embedded assets.
	OpenAPISpec []byte // Embedded OpenAPI YAML.

	// Extension points for embedders.
	ExtraRoutes []func(*http.ServeMux)            // called after the built-in routes are mounted
	Middlewares []func(http.Handler) http.Handler // first is outermost
}

// New creates a new HTTP server with all routes configured.
func New(cfg ServerConfig) *Server {
	h := NewHandlers(HandlersDeps{
		DB:                  cfg.DB,
		Catalog:             cfg.Catalog,
		Logger:              cfg.Logger,
		Version:             cfg.Version,
		MaxRequestBodyBytes: cfg.MaxRequestBodyBytes,
		PublicBaseURL:       cfg.PublicBaseURL,
		OpenAPISpec:         cfg.OpenAPISpec,
	})

	mux := http.NewServeMux()

	// Catalog resources: list, detail, create, partial update, delete.
	h.mountCatalog(mux)

	// API root.
	mux.HandleFunc("GET /{$}", h.HandleRoot)

	// MCP StreamableHTTP transport (read-only catalog tools).
	if cfg.MCPServer != nil {
		mux.Handle("/mcp", mcpserver.NewStreamableHTTPServer(cfg.MCPServer))
	}

	// OpenAPI document, health and metrics (no rate limit).
	mux.HandleFunc("GET /openapi.yaml", h.HandleOpenAPISpec)
	mux.HandleFunc("GET /health", h.HandleHealth)
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics.Handler())
	}

	// Everything else is a JSON 404.
	mux.HandleFunc("/", h.HandleNotFound)

	for _, register := range cfg.ExtraRoutes {
		register(mux)
	}

	// Request ID extractor for rate limit error responses.
	reqIDFunc := func(r *http.Request) string {
		return RequestIDFromContext(r.Context())
	}
	rateLimit := ratelimit.Middleware(cfg.Limiter, rateLimitKey, reqIDFunc, cfg.Logger)

	// Middleware chain (outermost executes first):
	// request ID → security headers → tracing → logging → rate limit → recovery → metrics → mux.
	var handler http.Handler = mux
	handler = metricsMiddleware(cfg.Metrics, handler)
	handler = recoveryMiddleware(cfg.Logger, handler)
	handler = rateLimit(handler)
	handler = loggingMiddleware(cfg.Logger, handler)
	handler = tracingMiddleware(handler)
	handler = securityHeadersMiddleware(handler)
	handler = requestIDMiddleware(handler)
	for i := len(cfg.Middlewares) - 1; i >= 0; i-- {
		handler = cfg.Middlewares[i](handler)
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
		},
		handler:  handler,
		handlers: h,
		logger:   cfg.Logger,
	}
}

// rateLimitKey limits by client IP. Probes and scrapes are exempt.
func rateLimitKey(r *http.Request) string {
	switch r.URL.Path {
	case "/health", "/metrics", "/openapi.yaml":
		return ""
	}
	return ratelimit.IPKeyFunc(r)
}

// Handlers returns the underlying Handlers.
func (s *Server) Handlers() *Handlers {
	return s.handlers
}

// Start begins serving HTTP requests. It returns http.ErrServerClosed after
// Shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}
