package airquality

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/bluele/gcache"
	"github.com/rs/zerolog"
)

// Flags exposes the runtime switches the service reads.
type Flags interface {
	IsCachedOnlyAirQuality(ctx context.Context) bool
}

// ServiceConfig holds configuration for the air quality service.
type ServiceConfig struct {
	// Provider is the air quality data provider. Nil makes every lookup unavailable.
	Provider Provider

	// Flags provides runtime switches. Optional.
	Flags Flags

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long a reading is considered fresh (default: 10 minutes).
	CacheTTL time.Duration

	// StaleIfErrorTTL allows serving stale readings on provider errors (default: 1 hour).
	StaleIfErrorTTL time.Duration

	// CacheSize is the maximum number of grid cells kept (default: 1024).
	CacheSize int

	// GridSize is the cache cell size in degrees (default: 0.01, roughly 1 km).
	GridSize float64

	// Clock overrides the cache clock. Tests only.
	Clock gcache.Clock
}

// Service looks up the current AQI with per-cell caching.
// Lookups never fail: any problem degrades to an unavailable report.
type Service struct {
	provider        Provider
	flags           Flags
	logger          zerolog.Logger
	cacheTTL        time.Duration
	staleIfErrorTTL time.Duration
	gridSize        float64
	clock           gcache.Clock
	cache           gcache.Cache
}

// NewService creates a new air quality service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 10 * time.Minute
	}
	staleIfErrorTTL := cfg.StaleIfErrorTTL
	if staleIfErrorTTL == 0 {
		staleIfErrorTTL = time.Hour
	}
	if staleIfErrorTTL < cacheTTL {
		staleIfErrorTTL = cacheTTL
	}
	size := cfg.CacheSize
	if size == 0 {
		size = 1024
	}
	gridSize := cfg.GridSize
	if gridSize == 0 {
		gridSize = 0.01
	}
	clock := cfg.Clock
	if clock == nil {
		clock = gcache.NewRealClock()
	}

	return &Service{
		provider:        cfg.Provider,
		flags:           cfg.Flags,
		logger:          cfg.Logger,
		cacheTTL:        cacheTTL,
		staleIfErrorTTL: staleIfErrorTTL,
		gridSize:        gridSize,
		clock:           clock,
		// Entries live for the stale window; freshness is checked against cacheTTL.
		cache: gcache.New(size).LRU().Expiration(staleIfErrorTTL).Clock(clock).Build(),
	}
}

// Lookup returns the AQI report for a point.
func (s *Service) Lookup(ctx context.Context, p Point) Report {
	if err := p.Validate(); err != nil {
		return Report{}
	}

	key := s.cacheKey(p)
	cached := s.cached(key)

	if cached != nil && s.clock.Now().Sub(cached.FetchedAt) < s.cacheTTL {
		return NewReport(cached)
	}

	if s.flags != nil && s.flags.IsCachedOnlyAirQuality(ctx) {
		return s.staleReport(cached)
	}

	if s.provider == nil {
		return Report{}
	}

	reading, err := s.provider.CurrentAQI(ctx, p)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Float64("lat", p.Lat).
			Float64("lon", p.Lon).
			Msg("air quality lookup failed")
		if cached != nil {
			s.logger.Debug().Time("fetched_at", cached.FetchedAt).Msg("serving stale air quality reading")
		}
		return s.staleReport(cached)
	}

	if reading.FetchedAt.IsZero() {
		reading.FetchedAt = s.clock.Now()
	}
	if err := s.cache.Set(key, reading); err != nil {
		s.logger.Debug().Err(err).Str("key", key).Msg("failed to cache air quality reading")
	}
	return NewReport(reading)
}

// InvalidateCache drops every cached reading.
func (s *Service) InvalidateCache() {
	s.cache.Purge()
}

// CachedCells returns the number of grid cells currently cached.
func (s *Service) CachedCells() int {
	return s.cache.Len(true)
}

func (s *Service) cached(key string) *Reading {
	v, err := s.cache.Get(key)
	if err != nil {
		return nil
	}
	r, ok := v.(*Reading)
	if !ok {
		return nil
	}
	return r
}

func (s *Service) staleReport(cached *Reading) Report {
	if cached == nil {
		return Report{}
	}
	report := NewReport(cached)
	report.Stale = true
	return report
}

// cacheKey quantizes a point to its grid cell.
func (s *Service) cacheKey(p Point) string {
	lat := math.Floor(p.Lat/s.gridSize) * s.gridSize
	lon := math.Floor(p.Lon/s.gridSize) * s.gridSize
	return fmt.Sprintf("%.4f:%.4f", lat, lon)
}
