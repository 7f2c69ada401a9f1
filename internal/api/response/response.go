// Package response writes JSON and problem+json HTTP responses.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/ecoroute/ecoroute/internal/api/middleware"
	"github.com/ecoroute/ecoroute/internal/api/models"
)

// JSON writes data with the given status. A nil data writes no body.
// Every response echoes the request ID as X-Request-Id.
func JSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	echoRequestID(w, r)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data) //nolint:errcheck // client went away
	}
}

// Created writes a 201 with data.
func Created(w http.ResponseWriter, r *http.Request, data interface{}) {
	JSON(w, r, http.StatusCreated, data)
}

// NoContent writes a bodiless 204.
func NoContent(w http.ResponseWriter, r *http.Request) {
	echoRequestID(w, r)
	w.WriteHeader(http.StatusNoContent)
}

func echoRequestID(w http.ResponseWriter, r *http.Request) {
	if id := middleware.GetRequestID(r.Context()); id != "" {
		w.Header().Set(middleware.RequestIDHeader, id)
	}
}

// Error writes problem with the request path as its instance.
func Error(w http.ResponseWriter, r *http.Request, problem *models.Problem) {
	problem.WithInstance(r.URL.Path).Write(w)
}

func writeKind(w http.ResponseWriter, r *http.Request, kind models.Kind, detail string) {
	Error(w, r, kind.New(middleware.GetRequestID(r.Context()), detail))
}

// BadRequest writes a 400 validation problem listing the offending fields.
func BadRequest(w http.ResponseWriter, r *http.Request, detail string, errors []models.FieldError) {
	Error(w, r, models.KindValidation.New(middleware.GetRequestID(r.Context()), detail).WithErrors(errors))
}

// NotFound writes a 404.
func NotFound(w http.ResponseWriter, r *http.Request, detail string) {
	writeKind(w, r, models.KindNotFound, detail)
}

// Conflict writes a 409.
func Conflict(w http.ResponseWriter, r *http.Request, detail string) {
	writeKind(w, r, models.KindConflict, detail)
}

// RegistrationRequired writes the 403 for a session past the free tier.
func RegistrationRequired(w http.ResponseWriter, r *http.Request, limit int) {
	Error(w, r, models.NewRegistrationRequired(middleware.GetRequestID(r.Context()), limit))
}

// Superseded writes the 409 for a planning call overtaken by a newer one.
func Superseded(w http.ResponseWriter, r *http.Request) {
	writeKind(w, r, models.KindSuperseded, models.SupersededDetail)
}

// PlanningFailed writes the generic 502 for a failed planning call. The
// underlying error is logged, never shown.
func PlanningFailed(w http.ResponseWriter, r *http.Request) {
	writeKind(w, r, models.KindPlanningFailed, models.PlanningFailedDetail)
}

// ConfigurationError writes a 503 for missing server configuration.
func ConfigurationError(w http.ResponseWriter, r *http.Request, detail string) {
	writeKind(w, r, models.KindConfiguration, detail)
}

// Maintenance writes a 503 for a feature that is switched off.
func Maintenance(w http.ResponseWriter, r *http.Request, detail string) {
	writeKind(w, r, models.KindMaintenance, detail)
}

// InternalError writes a 500.
func InternalError(w http.ResponseWriter, r *http.Request, detail string) {
	writeKind(w, r, models.KindInternal, detail)
}
