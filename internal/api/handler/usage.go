package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/ecoroute/ecoroute/internal/api/models"
	"github.com/ecoroute/ecoroute/internal/api/response"
	"github.com/ecoroute/ecoroute/internal/usage"
)

// UsageHandler exposes the free-tier state and registration.
type UsageHandler struct {
	usage  *usage.Service
	logger zerolog.Logger
}

// NewUsageHandler creates a new UsageHandler.
func NewUsageHandler(svc *usage.Service, logger zerolog.Logger) *UsageHandler {
	return &UsageHandler{usage: svc, logger: logger}
}

// GetUsage handles GET /v1/usage - the session's usage state.
func (h *UsageHandler) GetUsage(w http.ResponseWriter, r *http.Request) {
	state, err := h.usage.Get(r.Context(), GetSessionID(r.Context()))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load usage state")
		response.InternalError(w, r, "failed to load usage state")
		return
	}
	response.JSON(w, r, http.StatusOK, usageOf(state))
}

// Register handles POST /v1/usage/registration - capture the session's profile.
func (h *UsageHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegistrationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	state, err := h.usage.Register(r.Context(), GetSessionID(r.Context()), usage.Profile{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Purpose:   usage.Purpose(req.Purpose),
	})
	switch {
	case err == nil:
		response.JSON(w, r, http.StatusOK, usageOf(state))
	case errors.Is(err, usage.ErrAlreadyRegistered):
		response.Conflict(w, r, "this session is already registered")
	case errors.Is(err, usage.ErrInvalidProfile):
		response.BadRequest(w, r, err.Error(), nil)
	default:
		h.logger.Error().Err(err).Msg("failed to register session")
		response.InternalError(w, r, "failed to register")
	}
}
