package handler

import (
	"net/http"
	"strconv"

	"github.com/ecoroute/ecoroute/internal/airquality"
	"github.com/ecoroute/ecoroute/internal/api/middleware"
	"github.com/ecoroute/ecoroute/internal/api/models"
	"github.com/ecoroute/ecoroute/internal/api/response"
)

// AirQualityHandler serves AQI reports.
type AirQualityHandler struct {
	service *airquality.Service
	metrics *middleware.DomainMetrics
}

// NewAirQualityHandler creates a new AirQualityHandler. metrics may be nil.
func NewAirQualityHandler(service *airquality.Service, metrics *middleware.DomainMetrics) *AirQualityHandler {
	return &AirQualityHandler{service: service, metrics: metrics}
}

// GetAirQuality handles GET /v1/air-quality?lat=&lon= - the AQI at a point.
// Provider problems degrade to available=false rather than an error.
func (h *AirQualityHandler) GetAirQuality(w http.ResponseWriter, r *http.Request) {
	var errs []models.FieldError
	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		errs = append(errs, models.FieldError{Field: "lat", Message: "must be a number between -90 and 90", Code: "range"})
	}
	lon, err := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if err != nil || lon < -180 || lon > 180 {
		errs = append(errs, models.FieldError{Field: "lon", Message: "must be a number between -180 and 180", Code: "range"})
	}
	if len(errs) > 0 {
		response.BadRequest(w, r, "invalid coordinates", errs)
		return
	}

	report := h.service.Lookup(r.Context(), airquality.Point{Lat: lat, Lon: lon})
	h.metrics.RecordAirQuality(r.Context(), report.Available, report.Stale)
	response.JSON(w, r, http.StatusOK, airQualityOf(report))
}
