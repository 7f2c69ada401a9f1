package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/ecoroute/ecoroute/internal/api/models"
	"github.com/ecoroute/ecoroute/internal/api/response"
	"github.com/ecoroute/ecoroute/internal/session"
)

// SessionHandler issues anonymous sessions.
type SessionHandler struct {
	sessions *session.Service
	logger   zerolog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions *session.Service, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, logger: logger}
}

// Create handles POST /v1/sessions - issue an anonymous session.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	tok, err := h.sessions.Issue()
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to issue session")
		response.InternalError(w, r, "failed to issue session")
		return
	}

	response.Created(w, r, models.Session{
		SessionID: tok.SessionID,
		Token:     tok.Token,
		TokenType: "Bearer",
		ExpiresAt: models.Timestamp(tok.ExpiresAt),
	})
}
