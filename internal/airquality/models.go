// Package airquality provides the current US AQI at a point, with band classification and caching.
package airquality

import (
	"context"
	"errors"
	"time"
)

// Errors returned by providers.
var (
	ErrUnavailable   = errors.New("air quality data unavailable")
	ErrInvalidPoint  = errors.New("coordinates out of range")
	ErrNotConfigured = errors.New("air quality provider not configured")
)

// Point is a WGS84 location.
type Point struct {
	Lat float64
	Lon float64
}

// Validate checks the coordinate ranges.
func (p Point) Validate() error {
	if p.Lat < -90 || p.Lat > 90 || p.Lon < -180 || p.Lon > 180 {
		return ErrInvalidPoint
	}
	return nil
}

// Reading is a single current AQI observation.
type Reading struct {
	AQI       float64
	Provider  string
	FetchedAt time.Time
}

// Provider fetches the current AQI at a point.
type Provider interface {
	CurrentAQI(ctx context.Context, p Point) (*Reading, error)
}

// Report is what callers display. When Available is false the other fields are zero.
type Report struct {
	Available      bool
	AQI            float64
	Band           Band
	GaugePosition  float64
	NeedleRotation float64
	Source         string
	FetchedAt      time.Time
	// Stale is set when the reading is older than the cache TTL.
	Stale bool
}

// NewReport derives the display values for a reading.
func NewReport(r *Reading) Report {
	return Report{
		Available:      true,
		AQI:            r.AQI,
		Band:           Classify(r.AQI),
		GaugePosition:  GaugePosition(r.AQI),
		NeedleRotation: NeedleRotation(r.AQI),
		Source:         r.Provider,
		FetchedAt:      r.FetchedAt,
	}
}
