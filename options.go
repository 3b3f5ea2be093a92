package compendium

import (
	"io/fs"
	"log/slog"
	"net/http"
)

// RouteRegistrar mounts additional routes on the server's mux.
type RouteRegistrar func(mux *http.ServeMux)

// Middleware wraps the whole HTTP handler.
type Middleware func(next http.Handler) http.Handler

// Option configures an App.
type Option func(*resolvedOptions)

type resolvedOptions struct {
	port            int
	databaseURL     string
	publicBaseURL   string
	logger          *slog.Logger
	version         string
	skipMigrations  bool
	routeRegistrars []RouteRegistrar
	middlewares     []Middleware
	extraMigrations []fs.FS
}

// WithPort overrides the TCP port from config (COMPENDIUM_PORT env var).
func WithPort(port int) Option {
	return func(o *resolvedOptions) { o.port = port }
}

// WithDatabaseURL overrides the database connection string from config (DATABASE_URL env var).
func WithDatabaseURL(url string) Option {
	return func(o *resolvedOptions) { o.databaseURL = url }
}

// WithPublicBaseURL overrides the base of every detail_url (COMPENDIUM_PUBLIC_BASE_URL env var).
func WithPublicBaseURL(url string) Option {
	return func(o *resolvedOptions) { o.publicBaseURL = url }
}

// WithLogger sets the structured logger for the App.
// If not set, the default slog logger is used.
func WithLogger(logger *slog.Logger) Option {
	return func(o *resolvedOptions) { o.logger = logger }
}

// WithVersion sets the version string reported in the health endpoint and logs.
func WithVersion(version string) Option {
	return func(o *resolvedOptions) { o.version = version }
}

// WithSkipMigrations starts the App without applying the embedded migrations.
func WithSkipMigrations(skip bool) Option {
	return func(o *resolvedOptions) { o.skipMigrations = skip }
}

// WithExtraRoutes registers additional routes on the shared HTTP mux.
// Registrars are called in registration order.
func WithExtraRoutes(fn RouteRegistrar) Option {
	return func(o *resolvedOptions) { o.routeRegistrars = append(o.routeRegistrars, fn) }
}

// WithMiddleware registers an outermost HTTP middleware. The first-registered
// middleware is outermost.
func WithMiddleware(mw Middleware) Option {
	return func(o *resolvedOptions) { o.middlewares = append(o.middlewares, mw) }
}

// WithExtraMigrations adds a migration filesystem applied after the embedded
// ones. Like the embedded set it holds one directory per dialect (postgres/,
// sqlite/).
func WithExtraMigrations(dir fs.FS) Option {
	return func(o *resolvedOptions) { o.extraMigrations = append(o.extraMigrations, dir) }
}
