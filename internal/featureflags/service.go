package featureflags

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bluele/gcache"
	"github.com/rs/zerolog"
)

// DefaultCacheTTL is how long a flag read from the repository is served from memory.
const DefaultCacheTTL = time.Minute

// ServiceConfig holds configuration for the feature flag service.
type ServiceConfig struct {
	Repository Repository
	Logger     zerolog.Logger

	// CacheTTL is how long flags are cached (default: DefaultCacheTTL).
	CacheTTL time.Duration

	// DefaultFlags apply to keys the repository does not hold (default: DefaultFlags()).
	DefaultFlags map[string]*Flag

	// Clock overrides the cache clock. Tests only.
	Clock gcache.Clock
}

// Service evaluates flags with a short-lived cache over the repository.
// Reads never fail: repository errors fall back to the defaults.
type Service struct {
	repo     Repository
	logger   zerolog.Logger
	defaults map[string]*Flag
	cache    gcache.Cache
	now      func() time.Time
}

// NewService creates a new feature flag service.
func NewService(cfg ServiceConfig) *Service {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	defaults := cfg.DefaultFlags
	if defaults == nil {
		defaults = DefaultFlags()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = gcache.NewRealClock()
	}

	return &Service{
		repo:     cfg.Repository,
		logger:   cfg.Logger,
		defaults: defaults,
		cache:    gcache.New(64).LRU().Expiration(ttl).Clock(clock).Build(),
		now:      clock.Now,
	}
}

// GetFlag returns the flag for key: the cached value, then the stored one,
// then the default. It returns nil for an unknown key with no default.
func (s *Service) GetFlag(ctx context.Context, key string) *Flag {
	if v, err := s.cache.Get(key); err == nil {
		return v.(*Flag)
	}

	flag, err := s.repo.Get(ctx, key)
	switch {
	case err == nil:
	case errors.Is(err, ErrFlagNotFound):
		flag = s.defaults[key]
	default:
		s.logger.Warn().Err(err).Str("flag", key).Msg("failed to read feature flag, using default")
		return s.defaults[key]
	}

	if flag != nil {
		_ = s.cache.Set(key, flag) //nolint:errcheck // LRU Set only fails on a nil serializer
	}
	return flag
}

// GetAllFlags returns the defaults overlaid with every stored flag.
func (s *Service) GetAllFlags(ctx context.Context) map[string]*Flag {
	result := make(map[string]*Flag, len(s.defaults))
	for k, v := range s.defaults {
		result[k] = v
	}

	stored, err := s.repo.All(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to read feature flags, using defaults")
		return result
	}
	for k, v := range stored {
		result[k] = v
	}
	for k, v := range result {
		_ = s.cache.Set(k, v) //nolint:errcheck // see GetFlag
	}
	return result
}

// SetFlags validates and stores the given values in one write, recording reason
// on each. Nothing is written if any value is invalid.
func (s *Service) SetFlags(ctx context.Context, values map[string]interface{}, reason string) ([]*Flag, error) {
	now := s.now()
	flags := make([]*Flag, 0, len(values))
	for key, value := range values {
		if err := ValidateValue(key, value); err != nil {
			return nil, err
		}
		flags = append(flags, &Flag{Key: key, Value: value, Reason: reason, UpdatedAt: now})
	}

	if err := s.repo.Save(ctx, flags); err != nil {
		return nil, fmt.Errorf("save feature flags: %w", err)
	}
	for _, f := range flags {
		_ = s.cache.Set(f.Key, f) //nolint:errcheck // see GetFlag
	}
	return flags, nil
}

// InvalidateCache drops every cached flag so the next read goes to the repository.
func (s *Service) InvalidateCache() {
	s.cache.Purge()
}

// IsEnabled reports whether a boolean flag is on.
func (s *Service) IsEnabled(ctx context.Context, key string) bool {
	return s.GetFlag(ctx, key).BoolValue(false)
}

// IsPlanningDisabled returns true if trip planning is in maintenance mode.
func (s *Service) IsPlanningDisabled(ctx context.Context) bool {
	return s.IsEnabled(ctx, FlagPlanningDisabled)
}

// IsCachedOnlyAirQuality returns true if air quality should only use cached data.
func (s *Service) IsCachedOnlyAirQuality(ctx context.Context) bool {
	return s.IsEnabled(ctx, FlagCachedOnlyAirQuality)
}

// FeedbackPromptRate returns the feedback prompt probability, clamped to [0, 1].
func (s *Service) FeedbackPromptRate(ctx context.Context) float64 {
	rate := s.GetFlag(ctx, FlagFeedbackPromptRate).Float64Value(DefaultFeedbackPromptRate)
	return min(max(rate, 0), 1)
}
