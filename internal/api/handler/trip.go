package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ecoroute/ecoroute/internal/api/middleware"
	"github.com/ecoroute/ecoroute/internal/api/models"
	"github.com/ecoroute/ecoroute/internal/api/response"
	"github.com/ecoroute/ecoroute/internal/trip"
	"github.com/ecoroute/ecoroute/internal/usage"
)

const (
	notConfiguredDetail = "Trip planning is not configured on this server."
	maintenanceDetail   = "Trip planning is temporarily unavailable for maintenance."
)

// TripHandler handles trip planning and view endpoints.
type TripHandler struct {
	trips   *trip.Service
	metrics *middleware.DomainMetrics
	logger  zerolog.Logger
}

// NewTripHandler creates a new TripHandler. metrics may be nil.
func NewTripHandler(trips *trip.Service, metrics *middleware.DomainMetrics, logger zerolog.Logger) *TripHandler {
	return &TripHandler{trips: trips, metrics: metrics, logger: logger}
}

// Plan handles POST /v1/trips - plan a trip for the session.
func (h *TripHandler) Plan(w http.ResponseWriter, r *http.Request) {
	var req models.PlanTripRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	origin := strings.TrimSpace(req.Origin)
	destination := strings.TrimSpace(req.Destination)
	var errs []models.FieldError
	if origin == "" {
		errs = append(errs, models.FieldError{Field: "origin", Message: "is required", Code: "required"})
	}
	if destination == "" {
		errs = append(errs, models.FieldError{Field: "destination", Message: "is required", Code: "required"})
	}
	if len(errs) > 0 {
		response.BadRequest(w, r, "validation error", errs)
		return
	}

	language := trip.LanguageLocal
	if req.Language != "" {
		language, _ = trip.ParseLanguage(req.Language)
	}

	start := time.Now()
	snap, err := h.trips.Plan(r.Context(), GetSessionID(r.Context()), trip.Request{
		Origin:      origin,
		Destination: destination,
		Language:    language,
	})
	h.writePlan(w, r, snap, err, start)
}

// Replan handles POST /v1/trips/current/language - re-plan with another language.
func (h *TripHandler) Replan(w http.ResponseWriter, r *http.Request) {
	var req models.ReplanRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	language, _ := trip.ParseLanguage(req.Language)

	start := time.Now()
	snap, err := h.trips.Replan(r.Context(), GetSessionID(r.Context()), language)
	h.writePlan(w, r, snap, err, start)
}

func (h *TripHandler) writePlan(w http.ResponseWriter, r *http.Request, snap *trip.Snapshot, err error, start time.Time) {
	ctx := r.Context()
	elapsed := time.Since(start)

	switch {
	case err == nil:
		outcome := middleware.OutcomeFeasible
		if !snap.Result.Feasible {
			outcome = middleware.OutcomeInfeasible
		}
		h.metrics.RecordPlan(ctx, outcome, elapsed)
		response.JSON(w, r, http.StatusOK, tripOf(snap, snap.PromptFeedback))
	case errors.Is(err, trip.ErrNotConfigured):
		response.ConfigurationError(w, r, notConfiguredDetail)
	case errors.Is(err, trip.ErrPlanningDisabled):
		response.Maintenance(w, r, maintenanceDetail)
	case errors.Is(err, usage.ErrRegistrationRequired):
		h.metrics.RecordPlan(ctx, middleware.OutcomeGated, elapsed)
		response.RegistrationRequired(w, r, usage.FreeTierLimit)
	case errors.Is(err, trip.ErrNoTrip):
		response.NotFound(w, r, "no trip has been planned in this session")
	case errors.Is(err, trip.ErrSuperseded):
		h.metrics.RecordPlan(ctx, middleware.OutcomeSuperseded, elapsed)
		response.Superseded(w, r)
	case errors.Is(err, context.Canceled) && ctx.Err() != nil:
		// Client went away; nobody is left to read a response.
		h.logger.Debug().Err(err).Msg("planning request abandoned by client")
	default:
		h.metrics.RecordPlan(ctx, middleware.OutcomeFailed, elapsed)
		h.logger.Error().Err(err).Str("session_id", GetSessionID(ctx)).Msg("trip planning failed")
		response.PlanningFailed(w, r)
	}
}

// GetCurrent handles GET /v1/trips/current - the session's current trip.
func (h *TripHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	snap, err := h.trips.Current(GetSessionID(r.Context()))
	if err != nil {
		if errors.Is(err, trip.ErrNoTrip) {
			response.NotFound(w, r, "no current trip")
			return
		}
		h.logger.Error().Err(err).Msg("failed to load current trip")
		response.InternalError(w, r, "failed to load current trip")
		return
	}
	response.JSON(w, r, http.StatusOK, tripOf(snap, false))
}

// UpdateView handles PUT /v1/trips/current/view - change modes, sort or selection.
func (h *TripHandler) UpdateView(w http.ResponseWriter, r *http.Request) {
	var req models.ViewUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var update trip.ViewUpdate
	if req.Modes != nil {
		modes := make([]trip.Mode, 0, len(req.Modes))
		for i, name := range req.Modes {
			m, err := trip.ParseMode(name)
			if err != nil {
				response.BadRequest(w, r, "validation error", []models.FieldError{
					{Field: fmt.Sprintf("modes[%d]", i), Message: "unknown transport mode", Code: "oneof"},
				})
				return
			}
			modes = append(modes, m)
		}
		set := trip.NewModeSet(modes...)
		update.Modes = &set
	}
	if req.SortBy != nil {
		key, err := trip.ParseSortKey(*req.SortBy)
		if err != nil {
			response.BadRequest(w, r, "validation error", []models.FieldError{
				{Field: "sortBy", Message: "unknown sort key", Code: "oneof"},
			})
			return
		}
		update.SortBy = &key
	}
	update.SelectedIndex = req.SelectedIndex

	snap, err := h.trips.UpdateView(GetSessionID(r.Context()), update)
	switch {
	case err == nil:
		response.JSON(w, r, http.StatusOK, tripOf(snap, false))
	case errors.Is(err, trip.ErrNoTrip):
		response.NotFound(w, r, "no current trip")
	case errors.Is(err, trip.ErrSelectionOutOfRange):
		response.BadRequest(w, r, "validation error", []models.FieldError{
			{Field: "selectedIndex", Message: err.Error(), Code: "range"},
		})
	default:
		h.logger.Error().Err(err).Msg("failed to update trip view")
		response.InternalError(w, r, "failed to update trip view")
	}
}

// Clear handles DELETE /v1/trips/current - dismiss the current trip.
func (h *TripHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.trips.Clear(GetSessionID(r.Context()))
	response.NoContent(w, r)
}
