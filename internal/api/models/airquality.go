package models

// AirQuality is the AQI report for a point. Only Available is set when the
// reading could not be obtained.
type AirQuality struct {
	Available      bool       `json:"available"`
	AQI            *float64   `json:"aqi,omitempty"`
	Band           *AQIBand   `json:"band,omitempty"`
	GaugePosition  *float64   `json:"gaugePosition,omitempty"`
	NeedleRotation *float64   `json:"needleRotation,omitempty"`
	Source         string     `json:"source,omitempty"`
	FetchedAt      *Timestamp `json:"fetchedAt,omitempty"`
	Stale          bool       `json:"stale,omitempty"`
}
