package gemini_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoroute/ecoroute/internal/trip"
	"github.com/ecoroute/ecoroute/internal/trip/gemini"
)

const plannerPayload = `{
  "origin": "London",
  "destination": "Paris",
  "originCoordinates": {"lat": 51.5072, "lng": -0.1276},
  "destinationCoordinates": {"lat": 48.8566, "lng": 2.3522},
  "summary": "The train through the tunnel is fastest. Driving emits the most.",
  "isFeasible": true,
  "routes": [{
    "mode": "Train",
    "routeLabel": "Eurostar",
    "durationMinutes": 136,
    "distance": 213,
    "distanceUnit": "mi",
    "emissionsKg": 4.1,
    "costEstimate": "£60-200",
    "greenScore": 88,
    "description": "Direct from St Pancras.",
    "waypoints": [{"lat": 51.53, "lng": -0.12}, {"lat": 48.88, "lng": 2.35}]
  }]
}`

// generateResponse wraps text in a generateContent response body.
func generateResponse(text string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{{
			"content": map[string]any{
				"role":  "model",
				"parts": []map[string]any{{"text": text}},
			},
			"finishReason": "STOP",
		}},
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *gemini.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := gemini.NewClient(context.Background(), gemini.ClientConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
		Logger:     zerolog.New(io.Discard),
	})
	require.NoError(t, err)
	return client
}

func TestClient_Plan(t *testing.T) {
	var requestBody map[string]any

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/gemini-2.5-flash:generateContent"), r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&requestBody))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(generateResponse(plannerPayload))
	})

	result, err := client.Plan(context.Background(), trip.Request{
		Origin:      "London",
		Destination: "Paris",
		Language:    trip.LanguageEnglish,
	})
	require.NoError(t, err)

	assert.True(t, result.Feasible)
	require.Len(t, result.Routes, 1)
	assert.Equal(t, trip.ModeTrain, result.Routes[0].Mode)
	assert.Equal(t, trip.UnitMiles, result.Routes[0].DistanceUnit)

	genCfg, ok := requestBody["generationConfig"].(map[string]any)
	require.True(t, ok, "generation config should be sent")
	assert.Equal(t, "application/json", genCfg["responseMimeType"])
	assert.NotNil(t, genCfg["responseSchema"])

	raw, err := json.Marshal(requestBody["contents"])
	require.NoError(t, err)
	assert.Contains(t, string(raw), "MUST BE IN ENGLISH")
}

func TestClient_Plan_EmptyText(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	})

	_, err := client.Plan(context.Background(), trip.Request{Origin: "A", Destination: "B"})
	assert.ErrorIs(t, err, gemini.ErrEmptyResponse)
}

func TestClient_Plan_InvalidPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(generateResponse(`{"origin":"A"}`))
	})

	_, err := client.Plan(context.Background(), trip.Request{Origin: "A", Destination: "B"})
	assert.ErrorIs(t, err, trip.ErrInvalidPayload)
}

func TestClient_Plan_UpstreamErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":500,"message":"internal","status":"INTERNAL"}}`))
	})

	_, err := client.Plan(context.Background(), trip.Request{Origin: "A", Destination: "B"})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestNewClient_MissingKey(t *testing.T) {
	_, err := gemini.NewClient(context.Background(), gemini.ClientConfig{})
	assert.ErrorIs(t, err, gemini.ErrMissingAPIKey)
}

func TestBuildPrompt(t *testing.T) {
	local := gemini.BuildPrompt(trip.Request{Origin: "Tunis", Destination: "Sousse", Language: trip.LanguageLocal})
	assert.Contains(t, local, `from "Tunis" to "Sousse"`)
	assert.Contains(t, local, "MUST be in Arabic")
	assert.Contains(t, local, "CRITICAL FEASIBILITY CHECK")

	english := gemini.BuildPrompt(trip.Request{Origin: "Tunis", Destination: "Sousse", Language: trip.LanguageEnglish})
	assert.Contains(t, english, "MUST BE IN ENGLISH")
	assert.NotContains(t, english, "MUST be in Arabic")
}

func TestResponseSchema(t *testing.T) {
	schema := gemini.ResponseSchema()
	assert.ElementsMatch(t, []string{
		"origin", "destination", "routes", "summary",
		"originCoordinates", "destinationCoordinates", "isFeasible",
	}, schema.Required)

	route := schema.Properties["routes"].Items
	require.NotNil(t, route)
	assert.Len(t, route.Properties["mode"].Enum, len(trip.AllModes()))
}
