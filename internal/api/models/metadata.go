package models

// AQIBand is one air quality classification band.
type AQIBand struct {
	Label string `json:"label"`
	Color string `json:"color"`
	// Max is the inclusive upper bound; null for the open-ended last band.
	Max *float64 `json:"max"`
}

// Enums represents the enum values used by the API.
type Enums struct {
	Modes         []string  `json:"modes"`
	SortKeys      []string  `json:"sortKeys"`
	Languages     []string  `json:"languages"`
	Purposes      []string  `json:"purposes"`
	AQIBands      []AQIBand `json:"aqiBands"`
	FreeTierLimit int       `json:"freeTierLimit"`
}

// AppConfig tells the client which screen to show before any request.
type AppConfig struct {
	// PlanningConfigured is false when no planner credential is configured.
	PlanningConfigured bool `json:"planningConfigured"`

	// PlanningDisabled is true while planning is in maintenance mode.
	PlanningDisabled bool `json:"planningDisabled"`
}
