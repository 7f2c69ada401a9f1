package middleware_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoroute/ecoroute/internal/api/middleware"
)

// lastLogEntry decodes the final line written to buf.
func lastLogEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))
	return entry
}

// routed mounts h under pattern on a chi router wrapped in the Logger.
func routed(log zerolog.Logger, method, pattern string, h http.HandlerFunc) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	r.MethodFunc(method, pattern, h)
	return r
}

func TestLogger_LogsRequest(t *testing.T) {
	var buf bytes.Buffer
	handler := routed(zerolog.New(&buf), http.MethodGet, "/v1/air-quality", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"available":false}`))
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/air-quality?lat=52.37&lon=4.89", http.NoBody)
	req.Header.Set("User-Agent", "ecoroute-web/1.0")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	entry := lastLogEntry(t, &buf)
	assert.Equal(t, "request completed", entry["message"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/v1/air-quality", entry["path"])
	assert.Equal(t, "/v1/air-quality", entry["route"])
	assert.Equal(t, float64(200), entry["status"])
	assert.Equal(t, float64(19), entry["bytes"])
	assert.Equal(t, "ecoroute-web/1.0", entry["user_agent"])
	assert.Contains(t, entry["request_id"], "req_")
	assert.NotContains(t, buf.String(), "52.37", "coordinates must not be logged")
}

func TestLogger_LevelByStatus(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		path    string
		status  int
		level   string
	}{
		{"server error", "/v1/trips", "/v1/trips", http.StatusBadGateway, "error"},
		{"client error", "/v1/trips", "/v1/trips", http.StatusForbidden, "warn"},
		{"success", "/v1/trips", "/v1/trips", http.StatusOK, "info"},
		{"health probe", "/v1/ops/health", "/v1/ops/health", http.StatusOK, "debug"},
		{"failing probe", "/v1/ops/ready", "/v1/ops/ready", http.StatusServiceUnavailable, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			handler := routed(zerolog.New(&buf), http.MethodGet, tt.pattern, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			})

			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, http.NoBody))

			assert.Equal(t, tt.level, lastLogEntry(t, &buf)["level"])
		})
	}
}

func TestLogger_RecordsRoutePattern(t *testing.T) {
	var buf bytes.Buffer
	handler := routed(zerolog.New(&buf), http.MethodPut, "/v1/trips/{id}/view", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPut, "/v1/trips/current/view", http.NoBody))

	entry := lastLogEntry(t, &buf)
	assert.Equal(t, "/v1/trips/current/view", entry["path"])
	assert.Equal(t, "/v1/trips/{id}/view", entry["route"])
}

func TestLogger_ContextLogger(t *testing.T) {
	var buf bytes.Buffer
	handler := routed(zerolog.New(&buf), http.MethodPost, "/v1/reviews", func(w http.ResponseWriter, r *http.Request) {
		zerolog.Ctx(r.Context()).Info().Msg("review accepted")
		w.WriteHeader(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/reviews", http.NoBody)
	req.Header.Set(middleware.RequestIDHeader, "req_review")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var inner map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0], &inner))
	assert.Equal(t, "review accepted", inner["message"])
	assert.Equal(t, "req_review", inner["request_id"])
}

func TestLogger_IncludesTraceID(t *testing.T) {
	_, cleanup := setupTestTracer()
	defer cleanup()

	var buf bytes.Buffer
	handler := middleware.Tracing("ecoroute-api")(
		middleware.Logger(zerolog.New(&buf))(okHandler()),
	)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/usage", http.NoBody))

	entry := lastLogEntry(t, &buf)
	assert.Len(t, entry["trace_id"], 32)
	assert.Len(t, entry["span_id"], 16)
}

func TestLogger_OmitsTraceIDWithoutSpan(t *testing.T) {
	var buf bytes.Buffer
	handler := middleware.Logger(zerolog.New(&buf))(okHandler())

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/usage", http.NoBody))

	entry := lastLogEntry(t, &buf)
	assert.NotContains(t, entry, "trace_id")
	assert.Equal(t, "/v1/usage", entry["route"], "outside a router the raw path is used")
}

func TestLogger_DefaultStatusCode(t *testing.T) {
	var buf bytes.Buffer
	handler := middleware.Logger(zerolog.New(&buf))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", http.NoBody))

	assert.Equal(t, float64(200), lastLogEntry(t, &buf)["status"])
}
