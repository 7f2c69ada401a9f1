package handler

import (
	"net/http"

	"github.com/ecoroute/ecoroute/internal/airquality"
	"github.com/ecoroute/ecoroute/internal/api/models"
	"github.com/ecoroute/ecoroute/internal/api/response"
	"github.com/ecoroute/ecoroute/internal/featureflags"
	"github.com/ecoroute/ecoroute/internal/trip"
	"github.com/ecoroute/ecoroute/internal/usage"
)

// MetadataHandler handles metadata endpoints.
type MetadataHandler struct {
	trips *trip.Service
	flags *featureflags.Service
}

// NewMetadataHandler creates a new MetadataHandler.
func NewMetadataHandler(trips *trip.Service, flags *featureflags.Service) *MetadataHandler {
	return &MetadataHandler{trips: trips, flags: flags}
}

// GetEnums handles GET /v1/metadata/enums - get enum values.
func (h *MetadataHandler) GetEnums(w http.ResponseWriter, r *http.Request) {
	enums := models.Enums{
		Languages:     []string{string(trip.LanguageLocal), string(trip.LanguageEnglish)},
		FreeTierLimit: usage.FreeTierLimit,
	}
	for _, m := range trip.AllModes() {
		enums.Modes = append(enums.Modes, string(m))
	}
	for _, k := range trip.SortKeys() {
		enums.SortKeys = append(enums.SortKeys, string(k))
	}
	for _, p := range usage.Purposes() {
		enums.Purposes = append(enums.Purposes, string(p))
	}
	for _, b := range airquality.Bands() {
		enums.AQIBands = append(enums.AQIBands, bandOf(b))
	}
	response.JSON(w, r, http.StatusOK, enums)
}

// GetConfig handles GET /v1/metadata/config - client start-up configuration.
func (h *MetadataHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg := models.AppConfig{PlanningConfigured: h.trips.Configured()}
	if h.flags != nil {
		cfg.PlanningDisabled = h.flags.IsPlanningDisabled(r.Context())
	}
	response.JSON(w, r, http.StatusOK, cfg)
}
