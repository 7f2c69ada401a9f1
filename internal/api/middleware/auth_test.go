package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoroute/ecoroute/internal/api/middleware"
	"github.com/ecoroute/ecoroute/internal/session"
)

func newTestSessions(t *testing.T, now func() time.Time) *session.Service {
	t.Helper()
	svc, err := session.NewService(session.Config{
		SigningKey: "test-secret-key-for-testing-only",
		Issuer:     "https://api.ecoroute.app",
		Audience:   "ecoroute-api",
		Now:        now,
	})
	require.NoError(t, err)
	return svc
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestSession_MissingAuthorizationHeader(t *testing.T) {
	handler := middleware.Session(newTestSessions(t, nil))(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/usage", http.NoBody)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing authorization header")
}

func TestSession_InvalidAuthorizationFormat(t *testing.T) {
	handler := middleware.Session(newTestSessions(t, nil))(okHandler())

	tests := []struct {
		name   string
		header string
	}{
		{"no bearer prefix", "token123"},
		{"basic auth", "Basic dXNlcjpwYXNz"},
		{"bearer lowercase no space", "bearer token123"},
		{"empty bearer", "Bearer "},
		{"just bearer", "Bearer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/usage", http.NoBody)
			req.Header.Set("Authorization", tt.header)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestSession_InvalidToken(t *testing.T) {
	handler := middleware.Session(newTestSessions(t, nil))(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/usage", http.NoBody)
	req.Header.Set("Authorization", "Bearer invalid.jwt.token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid session token")
}

func TestSession_ExpiredToken(t *testing.T) {
	issuedAt := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	issuer := newTestSessions(t, func() time.Time { return issuedAt })
	tok, err := issuer.Issue()
	require.NoError(t, err)

	later := newTestSessions(t, func() time.Time { return issuedAt.Add(session.DefaultTTL + time.Hour) })
	handler := middleware.Session(later)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/usage", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "session has expired")
}

func TestSession_ValidToken(t *testing.T) {
	sessions := newTestSessions(t, nil)
	tok, err := sessions.Issue()
	require.NoError(t, err)

	var captured string
	handler := middleware.Session(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = middleware.GetSessionID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	for _, prefix := range []string{"Bearer ", "bearer ", "BEARER "} {
		t.Run(prefix, func(t *testing.T) {
			captured = ""
			req := httptest.NewRequest(http.MethodGet, "/v1/usage", http.NoBody)
			req.Header.Set("Authorization", prefix+tok.Token)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tok.SessionID, captured)
		})
	}
}

func TestGetSessionID_NoAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	assert.Empty(t, middleware.GetSessionID(req.Context()))
}

func TestAdminKey(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		header     string
		wantStatus int
	}{
		{"not configured", "", "anything", http.StatusForbidden},
		{"missing header", "s3cret", "", http.StatusUnauthorized},
		{"wrong key", "s3cret", "guess", http.StatusForbidden},
		{"correct key", "s3cret", "s3cret", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := middleware.AdminKey(tt.configured)(okHandler())

			req := httptest.NewRequest(http.MethodGet, "/v1/admin/feature-flags", http.NoBody)
			if tt.header != "" {
				req.Header.Set(middleware.AdminKeyHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
