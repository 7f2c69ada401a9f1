package models_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoroute/ecoroute/internal/api/models"
)

func TestKind_New(t *testing.T) {
	tests := []struct {
		kind   models.Kind
		typ    string
		status int
	}{
		{models.KindValidation, models.ProblemTypeValidation, http.StatusBadRequest},
		{models.KindRegistrationRequired, models.ProblemTypeRegistrationRequired, http.StatusForbidden},
		{models.KindTLSRequired, models.ProblemTypeTLSRequired, http.StatusForbidden},
		{models.KindSuperseded, models.ProblemTypeSuperseded, http.StatusConflict},
		{models.KindUnsupportedMedia, models.ProblemTypeUnsupportedMedia, http.StatusUnsupportedMediaType},
		{models.KindPlanningFailed, models.ProblemTypePlanningFailed, http.StatusBadGateway},
		{models.KindConfiguration, models.ProblemTypeConfiguration, http.StatusServiceUnavailable},
		{models.KindMaintenance, models.ProblemTypeMaintenance, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.kind.Title, func(t *testing.T) {
			p := tt.kind.New("req_123", "something happened")

			assert.Equal(t, tt.typ, p.Type)
			assert.Equal(t, tt.status, p.Status)
			assert.Equal(t, tt.kind.Title, p.Title)
			assert.Equal(t, "something happened", p.Detail)
			assert.Equal(t, "req_123", p.TraceID)
			assert.Empty(t, p.Instance)
			assert.Nil(t, p.Errors)
		})
	}
}

func TestProblem_Write(t *testing.T) {
	p := models.KindValidation.New("req_test123", "invalid input").
		WithInstance("/v1/usage/registration").
		WithErrors([]models.FieldError{
			{Field: "email", Message: "must be a valid email address", Code: "email"},
			{Field: "purpose", Message: "is required", Code: "required"},
		})

	w := httptest.NewRecorder()
	p.Write(w)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
	assert.Equal(t, "req_test123", w.Header().Get("X-Request-Id"))

	var result models.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, *p, result)
}

func TestProblem_WriteOmitsEmptyFields(t *testing.T) {
	w := httptest.NewRecorder()
	models.KindNotFound.New("", "").Write(w)

	assert.Empty(t, w.Header().Get("X-Request-Id"))

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.NotContains(t, raw, "detail")
	assert.NotContains(t, raw, "instance")
	assert.NotContains(t, raw, "errors")
	assert.Contains(t, raw, "traceId")
}

func TestNewRegistrationRequired(t *testing.T) {
	p := models.NewRegistrationRequired("req_123", 3)

	assert.Equal(t, models.ProblemTypeRegistrationRequired, p.Type)
	assert.Equal(t, http.StatusForbidden, p.Status)
	assert.Equal(t, "You have used all 3 free searches. Register to keep planning trips.", p.Detail)
}
