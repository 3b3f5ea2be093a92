package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashita-ai/compendium/internal/model"
	"github.com/ashita-ai/compendium/internal/telemetry"
	"github.com/ashita-ai/compendium/internal/testutil"
)

type sample struct {
	Name  *string  `json:"name"`
	Level *int     `json:"level"`
	Flag  *bool    `json:"flag"`
	IDs   *[]int64 `json:"ids"`
}

func decodeString(t *testing.T, body string, maxBytes int64) error {
	t.Helper()
	r := httptest.NewRequest("POST", "/x/", strings.NewReader(body))
	var s sample
	return decodeJSON(httptest.NewRecorder(), r, &s, maxBytes)
}

func TestDecodeJSON(t *testing.T) {
	assert.NoError(t, decodeString(t, `{"name":"a"}`, 0))
	assert.NoError(t, decodeString(t, ``, 0), "empty body is an empty object")
	assert.ErrorIs(t, decodeString(t, `{"name":"a"} {"name":"b"}`, 0), errTrailingData)

	var maxErr *http.MaxBytesError
	assert.True(t, errors.As(decodeString(t, `{"name":"`+strings.Repeat("a", 64)+`"}`, 16), &maxErr))
}

func TestDecodeJSONRecordsNulls(t *testing.T) {
	r := httptest.NewRequest("PATCH", "/classes/1/", strings.NewReader(`{"name": null, "hit_die": 6, "id": 1, "detail_url": "x"}`))
	var in model.ClassInput
	require.NoError(t, decodeJSON(httptest.NewRecorder(), r, &in, 0))

	assert.True(t, in.IsNull("name"))
	assert.False(t, in.IsNull("hit_die"))
	assert.Nil(t, in.Name)
	require.NotNil(t, in.HitDie)
	assert.Equal(t, 6, *in.HitDie)
}

func TestDecodeJSONDropsOnlyUnacceptedReadOnlyKeys(t *testing.T) {
	// sample has no "id" field, so an echoed id is dropped; "spells" is
	// dropped too, but an unknown key still fails.
	assert.NoError(t, decodeString(t, `{"id": 3, "spells": [], "name": "a"}`, 0))
	assert.Error(t, decodeString(t, `{"id": 3, "colour": "red"}`, 0))
}

func TestDecodeErrorDetails(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		field   string
		message string
	}{
		{"integer", `{"level":"three"}`, "level", "A valid integer is required."},
		{"boolean", `{"flag":"yes"}`, "flag", "Must be a valid boolean."},
		{"string", `{"name":5}`, "name", "Not a valid string."},
		{"list", `{"ids":"1,2"}`, "ids", `Expected a list of items but got type "string".`},
		{"list element", `{"ids":[true]}`, "ids", "A valid integer is required."},
		{"unknown field", `{"colour":"red"}`, "colour", "Unknown field."},
		{"not an object", `"hello"`, model.NonFieldErrors, "Invalid data. Expected a dictionary, but got string."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := decodeString(t, tt.body, 0)
			require.Error(t, err)
			v, ok := decodeErrorDetails(err)
			require.True(t, ok)
			assert.Equal(t, []string{tt.message}, v.Fields[tt.field])
		})
	}

	t.Run("syntax", func(t *testing.T) {
		for _, body := range []string{`{"name":`, `{name}`} {
			v, ok := decodeErrorDetails(decodeString(t, body, 0))
			require.True(t, ok)
			require.Len(t, v.Fields[model.NonFieldErrors], 1, body)
			assert.True(t, strings.HasPrefix(v.Fields[model.NonFieldErrors][0], "JSON parse error - "), body)
		}
	})

	t.Run("too large", func(t *testing.T) {
		_, ok := decodeErrorDetails(decodeString(t, `{"name":"`+strings.Repeat("a", 64)+`"}`, 16))
		assert.False(t, ok)
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	h := requestIDMiddleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Equal(t, "abc-123", seen)

	r = httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-Request-ID", strings.Repeat("x", 200))
	h.ServeHTTP(httptest.NewRecorder(), r)
	assert.Len(t, seen, 36, "oversized ids are replaced")
}

func TestRecoveryMiddleware(t *testing.T) {
	h := requestIDMiddleware(recoveryMiddleware(testutil.TestLogger(), http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/classes/", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body model.APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, model.ErrCodeInternalError, body.Error.Code)
	assert.Equal(t, rec.Header().Get("X-Request-ID"), body.Meta.RequestID)
}

func TestRecoveryMiddlewareRepanicsAbort(t *testing.T) {
	h := recoveryMiddleware(testutil.TestLogger(), http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	})
}

func TestStatusWriterKeepsFirstCode(t *testing.T) {
	rec := httptest.NewRecorder()
	w := &statusWriter{ResponseWriter: rec, statusCode: http.StatusOK}
	w.WriteHeader(http.StatusCreated)
	w.WriteHeader(http.StatusTeapot)
	assert.Equal(t, http.StatusCreated, w.statusCode)
	assert.Same(t, rec, w.Unwrap())
}

func TestMetricsMiddlewareUsesRoutePattern(t *testing.T) {
	metrics := telemetry.NewMetrics()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /spells/{id}/{$}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	h := metricsMiddleware(metrics, mux)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/spells/1/", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/spells/2/", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/nowhere", nil))

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	out := rec.Body.String()
	assert.Contains(t, out, `compendium_http_requests_total{code="204",method="GET",route="GET /spells/{id}/{$}"} 2`)
	assert.Contains(t, out, `compendium_http_requests_total{code="404",method="GET",route="unmatched"} 1`)
}

func TestRateLimitKeyExemptsProbes(t *testing.T) {
	for _, path := range []string{"/health", "/metrics", "/openapi.yaml"} {
		assert.Empty(t, rateLimitKey(httptest.NewRequest("GET", path, nil)), path)
	}
	r := httptest.NewRequest("GET", "/classes/", nil)
	r.RemoteAddr = "10.0.0.7:5555"
	assert.Equal(t, "ip:10.0.0.7", rateLimitKey(r))
}

func TestParseID(t *testing.T) {
	tests := map[string]bool{"1": true, "42": true, "0": false, "-1": false, "abc": false, "1.5": false, "": false}
	for raw, want := range tests {
		r := httptest.NewRequest("GET", "/", nil)
		r.SetPathValue("id", raw)
		_, ok := parseID(r)
		assert.Equal(t, want, ok, raw)
	}
}
