// Package session issues and validates anonymous session tokens.
//
// A session stands in for a single browser: usage state, pending reviews and
// the current trip are all scoped to the session ID carried in the token
// subject. Tokens are HS256 JWTs signed with a server-side key. There is no
// refresh flow; an expired session simply starts over with a new ID.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTTL is how long a session token is valid.
const DefaultTTL = 30 * 24 * time.Hour

// Predefined session errors.
var (
	ErrInvalidToken  = errors.New("invalid session token")
	ErrTokenExpired  = errors.New("session token has expired")
	ErrMissingSecret = errors.New("session signing key is not set")
)

// Claims represents the claims in a session token.
type Claims struct {
	jwt.RegisteredClaims

	// SessionID is the anonymous session identifier.
	SessionID string `json:"sid"`
}

// Config holds configuration for the session service.
type Config struct {
	// SigningKey is the secret key used to sign tokens.
	SigningKey string

	// Issuer is the issuer claim for tokens (e.g., "https://api.ecoroute.app").
	Issuer string

	// Audience is the audience claim for tokens (e.g., "ecoroute-api").
	Audience string

	// TTL is the token lifetime (default: DefaultTTL).
	TTL time.Duration

	// Now overrides the clock. Tests only.
	Now func() time.Time
}

// Token is an issued session.
type Token struct {
	SessionID string
	Token     string
	ExpiresAt time.Time
}

// Service handles session token creation and validation.
type Service struct {
	signingKey []byte
	issuer     string
	audience   string
	ttl        time.Duration
	now        func() time.Time
}

// NewService creates a new session service.
func NewService(cfg Config) (*Service, error) {
	if cfg.SigningKey == "" {
		return nil, ErrMissingSecret
	}
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		signingKey: []byte(cfg.SigningKey),
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		ttl:        ttl,
		now:        now,
	}, nil
}

// Issue creates a new anonymous session and its signed token.
func (s *Service) Issue() (*Token, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	sessionID := uuid.NewString()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   sessionID,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
		SessionID: sessionID,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return nil, fmt.Errorf("signing session token: %w", err)
	}

	return &Token{SessionID: sessionID, Token: signed, ExpiresAt: expiresAt}, nil
}

// Validate checks a session token and returns the session ID it carries.
func (s *Service) Validate(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %s", ErrInvalidToken, err.Error())
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.SessionID == "" || claims.SessionID != claims.Subject {
		return "", ErrInvalidToken
	}
	if _, err := uuid.Parse(claims.SessionID); err != nil {
		return "", fmt.Errorf("%w: malformed session id", ErrInvalidToken)
	}

	return claims.SessionID, nil
}
