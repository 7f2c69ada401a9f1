package gemini

import (
	"google.golang.org/genai"

	"github.com/ecoroute/ecoroute/internal/trip"
)

func coordinateSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"lat": {Type: genai.TypeNumber},
			"lng": {Type: genai.TypeNumber},
		},
		Required: []string{"lat", "lng"},
	}
}

// ResponseSchema is the structure the model is constrained to.
func ResponseSchema() *genai.Schema {
	modes := make([]string, 0, len(trip.AllModes()))
	for _, m := range trip.AllModes() {
		modes = append(modes, string(m))
	}

	route := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"mode":            {Type: genai.TypeString, Enum: modes},
			"routeLabel":      {Type: genai.TypeString, Nullable: genai.Ptr(true)},
			"durationMinutes": {Type: genai.TypeNumber},
			"distance":        {Type: genai.TypeNumber},
			"distanceUnit":    {Type: genai.TypeString, Enum: []string{string(trip.UnitKilometers), string(trip.UnitMiles)}},
			"emissionsKg":     {Type: genai.TypeNumber},
			"costEstimate":    {Type: genai.TypeString},
			"greenScore":      {Type: genai.TypeInteger},
			"description":     {Type: genai.TypeString},
			"waypoints":       {Type: genai.TypeArray, Items: coordinateSchema()},
		},
		Required: []string{
			"mode", "durationMinutes", "distance", "distanceUnit", "emissionsKg",
			"costEstimate", "greenScore", "description", "waypoints",
		},
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"origin":                 {Type: genai.TypeString},
			"destination":            {Type: genai.TypeString},
			"originCoordinates":      coordinateSchema(),
			"destinationCoordinates": coordinateSchema(),
			"summary":                {Type: genai.TypeString},
			"isFeasible":             {Type: genai.TypeBoolean},
			"routes":                 {Type: genai.TypeArray, Items: route},
		},
		Required: []string{
			"origin", "destination", "routes", "summary",
			"originCoordinates", "destinationCoordinates", "isFeasible",
		},
	}
}
