package handler

import (
	"errors"
	"net/http"
	"sort"

	"github.com/rs/zerolog"

	"github.com/ecoroute/ecoroute/internal/api/models"
	"github.com/ecoroute/ecoroute/internal/api/response"
	"github.com/ecoroute/ecoroute/internal/featureflags"
)

// ReadingCache is a provider cache purged together with the flag cache, so
// switching cached_only_air_quality off serves fresh readings at once.
type ReadingCache interface {
	CachedCells() int
	InvalidateCache()
}

// FeatureFlagsHandler handles feature flag endpoints.
type FeatureFlagsHandler struct {
	service  *featureflags.Service
	readings ReadingCache
	logger   zerolog.Logger
}

// NewFeatureFlagsHandler creates a new FeatureFlagsHandler. readings may be nil.
func NewFeatureFlagsHandler(service *featureflags.Service, readings ReadingCache, logger zerolog.Logger) *FeatureFlagsHandler {
	return &FeatureFlagsHandler{service: service, readings: readings, logger: logger}
}

// ListFeatureFlags handles GET /v1/admin/feature-flags - list all feature flags.
func (h *FeatureFlagsHandler) ListFeatureFlags(w http.ResponseWriter, r *http.Request) {
	flags := h.service.GetAllFlags(r.Context())

	list := models.FeatureFlagList{Items: make([]models.FeatureFlag, 0, len(flags))}
	for _, f := range flags {
		list.Items = append(list.Items, models.FeatureFlag{
			Key:         f.Key,
			Value:       f.Value,
			Description: featureflags.Describe(f.Key),
			Reason:      f.Reason,
			UpdatedAt:   timestampOrNil(f.UpdatedAt),
		})
	}
	sort.Slice(list.Items, func(i, j int) bool { return list.Items[i].Key < list.Items[j].Key })

	response.JSON(w, r, http.StatusOK, list)
}

// UpsertFeatureFlags handles PUT /v1/admin/feature-flags - update feature flags.
func (h *FeatureFlagsHandler) UpsertFeatureFlags(w http.ResponseWriter, r *http.Request) {
	var req models.FeatureFlagUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	values := make(map[string]interface{}, len(req.Updates))
	var fieldErrs []models.FieldError
	for _, u := range req.Updates {
		if u.Value == nil {
			fieldErrs = append(fieldErrs, models.FieldError{Field: u.Key, Message: "value is required", Code: "required"})
			continue
		}
		if err := featureflags.ValidateValue(u.Key, u.Value); err != nil {
			fieldErrs = append(fieldErrs, models.FieldError{Field: u.Key, Message: err.Error(), Code: "invalid"})
			continue
		}
		values[u.Key] = u.Value
	}
	if len(fieldErrs) > 0 {
		response.BadRequest(w, r, "invalid flag values", fieldErrs)
		return
	}

	flags, err := h.service.SetFlags(r.Context(), values, req.Reason)
	if err != nil {
		if errors.Is(err, featureflags.ErrInvalidValue) {
			response.BadRequest(w, r, err.Error(), nil)
			return
		}
		h.logger.Error().Err(err).Msg("failed to update feature flags")
		response.InternalError(w, r, "failed to update feature flags")
		return
	}

	keys := make([]string, len(flags))
	for i, f := range flags {
		keys[i] = f.Key
	}
	sort.Strings(keys)
	h.logger.Info().Strs("keys", keys).Str("reason", req.Reason).Msg("feature flags updated")
	response.NoContent(w, r)
}

// InvalidateCache handles POST /v1/admin/feature-flags/invalidate. It drops the
// flag cache and the cached air quality readings.
func (h *FeatureFlagsHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	h.service.InvalidateCache()

	cells := 0
	if h.readings != nil {
		cells = h.readings.CachedCells()
		h.readings.InvalidateCache()
	}
	h.logger.Info().Int("air_quality_cells", cells).Msg("caches invalidated")
	response.NoContent(w, r)
}
