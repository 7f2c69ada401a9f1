package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/ecoroute/ecoroute/internal/api/models"
	"github.com/ecoroute/ecoroute/internal/session"
)

// AdminKeyHeader carries the operator key on admin routes.
const AdminKeyHeader = "X-Admin-Key"

// sessionIDKey is the context key for the authenticated session ID.
type sessionIDKey struct{}

// SessionValidator resolves a bearer token to a session ID.
type SessionValidator interface {
	Validate(token string) (string, error)
}

// Session creates middleware that requires a valid session bearer token.
func Session(validator SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeProblem(w, r, models.KindUnauthorized, "missing authorization header")
				return
			}

			// Check for Bearer prefix (case-insensitive)
			const bearerPrefix = "Bearer "
			if len(authHeader) < len(bearerPrefix) ||
				!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
				writeProblem(w, r, models.KindUnauthorized, "invalid authorization header format")
				return
			}

			tokenString := authHeader[len(bearerPrefix):]
			if tokenString == "" {
				writeProblem(w, r, models.KindUnauthorized, "missing bearer token")
				return
			}

			sessionID, err := validator.Validate(tokenString)
			if err != nil {
				switch {
				case errors.Is(err, session.ErrTokenExpired):
					writeProblem(w, r, models.KindUnauthorized, "session has expired")
				case errors.Is(err, session.ErrInvalidToken):
					writeProblem(w, r, models.KindUnauthorized, "invalid session token")
				default:
					writeProblem(w, r, models.KindUnauthorized, "authentication failed")
				}
				return
			}

			ctx := context.WithValue(r.Context(), sessionIDKey{}, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminKey creates middleware that requires the operator key.
// An empty key disables every admin route.
func AdminKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				writeProblem(w, r, models.KindForbidden, "admin access is not configured")
				return
			}
			given := r.Header.Get(AdminKeyHeader)
			if given == "" {
				writeProblem(w, r, models.KindUnauthorized, "missing admin key")
				return
			}
			if subtle.ConstantTimeCompare([]byte(given), []byte(key)) != 1 {
				writeProblem(w, r, models.KindForbidden, "invalid admin key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeProblem answers with a problem of kind k. The response package
// imports this one, so middleware writes problems itself.
func writeProblem(w http.ResponseWriter, r *http.Request, k models.Kind, detail string) {
	k.New(GetRequestID(r.Context()), detail).WithInstance(r.URL.Path).Write(w)
}

// GetSessionID retrieves the authenticated session ID from the context.
// Returns an empty string if not authenticated.
func GetSessionID(ctx context.Context) string {
	if id, ok := ctx.Value(sessionIDKey{}).(string); ok {
		return id
	}
	return ""
}
