package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	"github.com/ecoroute/ecoroute/internal/api/models"
)

// RateLimitConfig is a fixed request budget per sliding window.
type RateLimitConfig struct {
	RequestLimit int
	WindowLength time.Duration
}

// PerMinute returns a one-minute window allowing n requests.
func PerMinute(n int) RateLimitConfig {
	return RateLimitConfig{RequestLimit: n, WindowLength: time.Minute}
}

// SessionIssueRateLimit bounds anonymous session issuance per client IP.
var SessionIssueRateLimit = PerMinute(10)

// RateLimitByIP limits requests per client IP. The IP comes from chi's
// RealIP middleware when it runs earlier in the chain.
func RateLimitByIP(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return cfg.limit(httprate.KeyByRealIP)
}

// RateLimitBySession limits requests per session, and per client IP for
// requests that carry none.
func RateLimitBySession(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return cfg.limit(keyBySessionOrIP)
}

func (cfg RateLimitConfig) limit(key httprate.KeyFunc) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowLength,
		httprate.WithKeyFuncs(key),
		httprate.WithLimitHandler(cfg.exceeded),
	)
}

func keyBySessionOrIP(r *http.Request) (string, error) {
	if sessionID := GetSessionID(r.Context()); sessionID != "" {
		return "session:" + sessionID, nil
	}
	return httprate.KeyByRealIP(r)
}

// exceeded answers 429. httprate does not expose the window reset time, so
// Retry-After advertises the full window.
func (cfg RateLimitConfig) exceeded(w http.ResponseWriter, r *http.Request) {
	retryAfter := int(cfg.WindowLength.Round(time.Second) / time.Second)
	if retryAfter < 1 {
		retryAfter = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

	writeProblem(w, r, models.KindTooManyRequests, "Rate limit exceeded. Please try again later.")
}
