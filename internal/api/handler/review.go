package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/ecoroute/ecoroute/internal/api/models"
	"github.com/ecoroute/ecoroute/internal/api/response"
	"github.com/ecoroute/ecoroute/internal/review"
)

// ReviewHandler handles review endpoints.
type ReviewHandler struct {
	reviews *review.Service
	logger  zerolog.Logger
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviews *review.Service, logger zerolog.Logger) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, logger: logger}
}

// ListApproved handles GET /v1/reviews - approved reviews for display.
func (h *ReviewHandler) ListApproved(w http.ResponseWriter, r *http.Request) {
	items, err := h.reviews.ListApproved(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list reviews")
		response.InternalError(w, r, "failed to list reviews")
		return
	}
	response.JSON(w, r, http.StatusOK, reviewListOf(items))
}

// Submit handles POST /v1/reviews - submit a review for moderation.
func (h *ReviewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rev, err := h.reviews.Submit(r.Context(), GetSessionID(r.Context()), req.Rating, req.Comment)
	switch {
	case err == nil:
		response.Created(w, r, reviewOf(*rev))
	case errors.Is(err, review.ErrInvalidRating):
		response.BadRequest(w, r, "validation error", []models.FieldError{
			{Field: "rating", Message: err.Error(), Code: "range"},
		})
	case errors.Is(err, review.ErrCommentTooLong):
		response.BadRequest(w, r, "validation error", []models.FieldError{
			{Field: "comment", Message: err.Error(), Code: "max"},
		})
	default:
		h.logger.Error().Err(err).Msg("failed to submit review")
		response.InternalError(w, r, "failed to submit review")
	}
}

// ListForModeration handles GET /v1/admin/reviews/moderation - pending reviews.
func (h *ReviewHandler) ListForModeration(w http.ResponseWriter, r *http.Request) {
	items, err := h.reviews.ListForModeration(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list reviews for moderation")
		response.InternalError(w, r, "failed to list reviews")
		return
	}
	response.JSON(w, r, http.StatusOK, reviewListOf(items))
}
