package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ashita-ai/compendium/internal/model"
	"github.com/ashita-ai/compendium/internal/represent"
	"github.com/ashita-ai/compendium/internal/service/catalog"
	"github.com/ashita-ai/compendium/internal/storage"
)

// Handlers holds HTTP handler dependencies.
type Handlers struct {
	db                  *storage.DB
	catalog             *catalog.Service
	logger              *slog.Logger
	startedAt           time.Time
	version             string
	maxRequestBodyBytes int64
	publicBaseURL       string
	openapiSpec         []byte
}

// HandlersDeps holds all dependencies for constructing Handlers.
// Optional: PublicBaseURL (empty derives links from the request), OpenAPISpec.
type HandlersDeps struct {
	DB                  *storage.DB
	Catalog             *catalog.Service
	Logger              *slog.Logger
	Version             string
	MaxRequestBodyBytes int64
	PublicBaseURL       string
	OpenAPISpec         []byte
}

// NewHandlers creates a new Handlers with all dependencies.
func NewHandlers(d HandlersDeps) *Handlers {
	return &Handlers{
		db:                  d.DB,
		catalog:             d.Catalog,
		logger:              d.Logger,
		startedAt:           time.Now(),
		version:             d.Version,
		maxRequestBodyBytes: d.MaxRequestBodyBytes,
		publicBaseURL:       d.PublicBaseURL,
		openapiSpec:         d.OpenAPISpec,
	}
}

// linker builds detail URLs for r.
func (h *Handlers) linker(r *http.Request) represent.Linker {
	return represent.LinkerFromRequest(r, h.publicBaseURL)
}

// HandleRoot handles GET /: the list URL of every resource.
func (h *Handlers) HandleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, represent.Root(h.linker(r)))
}

// HandleHealth handles GET /health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	dbStatus := "connected"
	status := "healthy"
	httpStatus := http.StatusOK

	if err := h.db.Ping(r.Context()); err != nil {
		h.logger.Warn("health check: database ping failed", "error", err)
		dbStatus = "disconnected"
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, model.HealthResponse{
		Status:   status,
		Version:  h.version,
		Database: dbStatus,
		Dialect:  string(h.db.Dialect()),
		Uptime:   int64(time.Since(h.startedAt).Seconds()),
	})
}

// HandleOpenAPISpec serves the embedded OpenAPI specification.
func (h *Handlers) HandleOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	if len(h.openapiSpec) == 0 {
		h.HandleNotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.openapiSpec)
}

// HandleNotFound answers every path no route claims.
func (h *Handlers) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "Not found.", nil)
}

// methodNotAllowed answers the methods a resource path does not support.
func methodNotAllowed(allow string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", allow)
		writeError(w, r, http.StatusMethodNotAllowed, model.ErrCodeMethodNotAllowed,
			"Method \""+r.Method+"\" not allowed.", nil)
	}
}

// writeServiceError maps a catalog error onto a response.
func (h *Handlers) writeServiceError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		writeValidationError(w, r, verr)
	case catalog.IsNotFound(err):
		h.HandleNotFound(w, r)
	default:
		h.writeInternalError(w, r, msg, err)
	}
}

// writeInternalError logs err with the request id and writes a generic 500.
func (h *Handlers) writeInternalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.Error(msg,
		"error", err,
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", RequestIDFromContext(r.Context()),
	)
	writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error", nil)
}

// handleDecodeError writes the 400 for a body that could not be decoded.
func handleDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	details, ok := decodeErrorDetails(err)
	if !ok {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "request body too large", nil)
		return
	}
	writeValidationError(w, r, details)
}
