package trip_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoroute/ecoroute/internal/trip"
)

const validPayload = `{
  "origin": "Amsterdam Centraal",
  "destination": "Utrecht Centraal",
  "originCoordinates": {"lat": 52.3791, "lng": 4.9003},
  "destinationCoordinates": {"lat": 52.0894, "lng": 5.1101},
  "summary": "The train is fastest. Cycling is the greenest option.",
  "isFeasible": true,
  "routes": [
    {
      "mode": "Train",
      "routeLabel": "Intercity",
      "durationMinutes": 27.4,
      "distance": 40,
      "distanceUnit": "km",
      "emissionsKg": 0.2,
      "costEstimate": "€9",
      "greenScore": 90,
      "description": "Frequent direct service.",
      "waypoints": [{"lat": 52.3791, "lng": 4.9003}, {"lat": 52.0894, "lng": 5.1101}]
    },
    {
      "mode": "Bicycle",
      "routeLabel": null,
      "durationMinutes": 140,
      "distance": 44,
      "distanceUnit": "km",
      "emissionsKg": 0,
      "costEstimate": "Free",
      "greenScore": 100,
      "description": "Flat and scenic.",
      "waypoints": []
    }
  ]
}`

func TestDecode_Valid(t *testing.T) {
	result, err := trip.Decode([]byte(validPayload))
	require.NoError(t, err)

	assert.Equal(t, "Amsterdam Centraal", result.Origin)
	assert.True(t, result.Feasible)
	assert.InDelta(t, 52.0894, result.DestinationCoordinates.Lat, 1e-9)
	require.Len(t, result.Routes, 2)

	train := result.Routes[0]
	assert.Equal(t, trip.ModeTrain, train.Mode)
	assert.Equal(t, "Intercity", train.RouteLabel)
	assert.Equal(t, 27, train.DurationMinutes)
	assert.Equal(t, trip.UnitKilometers, train.DistanceUnit)
	assert.Len(t, train.Waypoints, 2)

	bike := result.Routes[1]
	assert.Equal(t, "", bike.RouteLabel)
	assert.Equal(t, 100, bike.GreenScore)
	assert.Empty(t, bike.Waypoints)
}

func TestDecode_InfeasibleWithEmptyRoutes(t *testing.T) {
	payload := `{
	  "origin": "New York", "destination": "London",
	  "originCoordinates": {"lat": 40.7, "lng": -74.0},
	  "destinationCoordinates": {"lat": 51.5, "lng": -0.1},
	  "summary": "An ocean separates these cities.",
	  "isFeasible": false,
	  "routes": []
	}`

	result, err := trip.Decode([]byte(payload))
	require.NoError(t, err)
	assert.False(t, result.Feasible)
	assert.Empty(t, result.Routes)
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(string) string
		wantField string
	}{
		{
			name:      "unknown mode",
			mutate:    func(s string) string { return strings.Replace(s, `"mode": "Train"`, `"mode": "Plane"`, 1) },
			wantField: "routes[0].mode",
		},
		{
			name:      "bad unit",
			mutate:    func(s string) string { return strings.Replace(s, `"distanceUnit": "km"`, `"distanceUnit": "nm"`, 1) },
			wantField: "routes[0].distanceUnit",
		},
		{
			name:      "green score too high",
			mutate:    func(s string) string { return strings.Replace(s, `"greenScore": 90`, `"greenScore": 140`, 1) },
			wantField: "routes[0].greenScore",
		},
		{
			name:      "negative duration",
			mutate:    func(s string) string { return strings.Replace(s, `"durationMinutes": 27.4`, `"durationMinutes": -3`, 1) },
			wantField: "routes[0].durationMinutes",
		},
		{
			name:      "missing feasibility flag",
			mutate:    func(s string) string { return strings.Replace(s, `"isFeasible": true,`, ``, 1) },
			wantField: "isFeasible",
		},
		{
			name:      "missing summary",
			mutate:    func(s string) string { return strings.Replace(s, `"summary": "The train is fastest. Cycling is the greenest option.",`, ``, 1) },
			wantField: "summary",
		},
		{
			name:      "waypoint without lng",
			mutate:    func(s string) string { return strings.Replace(s, `{"lat": 52.3791, "lng": 4.9003}, `, `{"lat": 52.3791}, `, 1) },
			wantField: "routes[0].waypoints[0].lng",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := trip.Decode([]byte(tt.mutate(validPayload)))
			require.Error(t, err)
			assert.ErrorIs(t, err, trip.ErrInvalidPayload)

			var decodeErr *trip.DecodeError
			require.True(t, errors.As(err, &decodeErr))
			assert.Equal(t, tt.wantField, decodeErr.Field)
		})
	}
}

func TestDecode_MalformedJSON(t *testing.T) {
	_, err := trip.Decode([]byte(`{"origin": `))
	assert.ErrorIs(t, err, trip.ErrInvalidPayload)
}
