// Package server implements the HTTP API server for Compendium.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/ashita-ai/compendium/internal/model"
	"github.com/ashita-ai/compendium/internal/telemetry"
)

type contextKey string

const contextKeyRequestID contextKey = "request_id"

// RequestIDFromContext extracts the request ID from the context.
func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(contextKeyRequestID).(string); ok {
		return v
	}
	return ""
}

// requestIDMiddleware assigns a unique request ID to each request.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" || len(reqID) > 128 {
			reqID = uuid.New().String()
		}
		ctx := context.WithValue(r.Context(), contextKeyRequestID, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// securityHeadersMiddleware sets conservative headers on every response.
func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs each request with structured fields.
func loggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", RequestIDFromContext(r.Context()),
		}
		if tid := traceIDFromContext(r.Context()); tid != "" {
			attrs = append(attrs, "trace_id", tid)
		}

		level := slog.LevelInfo
		if wrapped.statusCode >= 500 {
			level = slog.LevelError
		} else if wrapped.statusCode >= 400 {
			level = slog.LevelWarn
		}
		logger.Log(r.Context(), level, "http request", attrs...)
	})
}

type statusWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.written {
		w.statusCode = code
		w.written = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.written = true
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

var (
	tracer    = otel.Tracer("compendium/http")
	httpMeter = otel.GetMeterProvider().Meter("compendium/http")
)

// tracingMiddleware creates an OTEL span for each HTTP request
// and records request count and duration metrics.
func tracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.url", r.URL.Path),
				attribute.String("http.request_id", RequestIDFromContext(r.Context())),
			),
		)
		defer span.End()

		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r.WithContext(ctx))

		duration := time.Since(start)
		statusStr := strconv.Itoa(wrapped.statusCode)

		span.SetAttributes(
			attribute.Int("http.status_code", wrapped.statusCode),
		)

		attrs := []attribute.KeyValue{
			attribute.String("http.method", r.Method),
			attribute.String("http.status_code", statusStr),
		}

		// Record metrics (best-effort, instruments lazily created).
		if counter, err := httpMeter.Int64Counter("http.server.request_count"); err == nil {
			counter.Add(ctx, 1, otelmetric.WithAttributes(attrs...))
		}
		if hist, err := httpMeter.Float64Histogram("http.server.duration",
			otelmetric.WithUnit("ms")); err == nil {
			hist.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(attrs...))
		}
	})
}

// traceIDFromContext extracts the OTEL trace ID from the context, if any.
func traceIDFromContext(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return ""
}

// metricsMiddleware records Prometheus request metrics. It must wrap the mux
// directly: the mux stores the matched pattern on the request it is handed.
func metricsMiddleware(metrics *telemetry.Metrics, next http.Handler) http.Handler {
	if metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveRequest(r.Method, route, wrapped.statusCode, time.Since(start))
	})
}

// recoveryMiddleware turns a handler panic into a 500 and keeps serving.
func recoveryMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logger.Error("panic in handler",
				"panic", fmt.Sprint(rec),
				"stack", string(debug.Stack()),
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", RequestIDFromContext(r.Context()),
			)
			writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error", nil)
		}()
		next.ServeHTTP(w, r)
	})
}

// writeJSON writes data as the bare response body.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response with the standard envelope.
// details is omitted when nil.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIError{
		Error: model.ErrorDetail{Code: code, Message: message, Details: details},
		Meta: model.ResponseMeta{
			RequestID: RequestIDFromContext(r.Context()),
			Timestamp: time.Now().UTC(),
		},
	})
}

// writeValidationError renders a ValidationError as a 400 keyed by field.
func writeValidationError(w http.ResponseWriter, r *http.Request, v *model.ValidationError) {
	writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "validation failed", v.Fields)
}

// decodeJSON decodes a JSON request body into the target struct. The body is
// capped at maxBytes; an empty body decodes as an empty object. Read-only
// keys a client echoes back from a detail response are dropped unless the
// target accepts them, and keys sent as null are recorded on targets that
// track them.
func decodeJSON(w http.ResponseWriter, r *http.Request, target any, maxBytes int64) error {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	var fields map[string]json.RawMessage
	decoder := json.NewDecoder(bytes.NewReader(body))
	if err := decoder.Decode(&fields); err != nil {
		return err
	}
	if decoder.More() {
		return errTrailingData
	}
	if fields == nil {
		return nil
	}

	accepted := jsonFieldNames(target)
	marker, tracksNulls := target.(interface{ MarkNull(string) })
	for key, raw := range fields {
		if readOnlyFields[key] && !accepted[key] {
			delete(fields, key)
			continue
		}
		if tracksNulls && bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			marker.MarkNull(key)
		}
	}

	cleaned, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	decoder = json.NewDecoder(bytes.NewReader(cleaned))
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

// readOnlyFields are keys that only appear in responses.
var readOnlyFields = map[string]bool{
	"id":                     true,
	"detail_url":             true,
	"class_proficiencies":    true,
	"proficiency_classes":    true,
	"races_and_subraces":     true,
	"subraces":               true,
	"subclasses":             true,
	"spells":                 true,
	"starting_proficiencies": true,
	"school_name":            true,
	"class_info":             true,
}

// jsonFieldNames returns the JSON keys of the struct target points to.
func jsonFieldNames(target any) map[string]bool {
	names := make(map[string]bool)
	t := reflect.TypeOf(target)
	if t == nil || t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Struct {
		return names
	}
	t = t.Elem()
	for i := range t.NumField() {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name != "" && name != "-" {
			names[name] = true
		}
	}
	return names
}

var errTrailingData = errors.New("request body must contain a single JSON object")

// decodeErrorDetails maps a body decoding failure onto field-keyed messages.
// It reports false for an oversized body, which is not a field problem.
func decodeErrorDetails(err error) (*model.ValidationError, bool) {
	var (
		maxErr    *http.MaxBytesError
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &maxErr):
		return nil, false
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			return model.FieldError(model.NonFieldErrors, "Invalid data. Expected a dictionary, but got "+typeErr.Value+"."), true
		}
		if i := strings.Index(field, "."); i > 0 {
			field = field[:i]
		}
		return model.FieldError(field, typeMessage(typeErr)), true
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return model.FieldError(model.NonFieldErrors, "JSON parse error - "+err.Error()), true
	}

	if name, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
		if unq, uerr := strconv.Unquote(name); uerr == nil {
			name = unq
		}
		return model.FieldError(name, "Unknown field."), true
	}
	return model.FieldError(model.NonFieldErrors, err.Error()), true
}

// typeMessage phrases a JSON type mismatch the way a form field would.
func typeMessage(e *json.UnmarshalTypeError) string {
	switch e.Type.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "A valid integer is required."
	case reflect.Bool:
		return "Must be a valid boolean."
	case reflect.String:
		return "Not a valid string."
	case reflect.Slice:
		return fmt.Sprintf("Expected a list of items but got type %q.", e.Value)
	default:
		return fmt.Sprintf("Incorrect type. Expected %s, received %s.", e.Type, e.Value)
	}
}
