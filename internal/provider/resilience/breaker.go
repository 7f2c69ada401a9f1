// Package resilience guards outbound HTTP calls (the trip planner and the
// air quality feed) with a circuit breaker, a per-attempt timeout and
// optional retries.
package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// BreakerConfig tunes a client's circuit breaker. Zero fields take the
// values of DefaultBreakerConfig.
type BreakerConfig struct {
	// HalfOpenProbes is how many calls may test a half-open circuit.
	HalfOpenProbes uint32
	// ResetInterval clears the closed-state counts periodically. Zero never clears them.
	ResetInterval time.Duration
	// OpenFor is how long the circuit stays open before probing.
	OpenFor time.Duration
	// ReadyToTrip decides, from the counts, when to open the circuit.
	ReadyToTrip func(gobreaker.Counts) bool
	// OnStateChange observes transitions. Optional.
	OnStateChange func(name string, from, to gobreaker.State)
}

// DefaultBreakerConfig opens after at least five calls of which half failed,
// and probes again after a minute.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		HalfOpenProbes: 1,
		OpenFor:        time.Minute,
		ReadyToTrip:    TripOnFailureRatio(5, 0.5),
	}
}

// TripOnFailureRatio opens the circuit once minRequests calls have been seen
// and at least ratio of them failed.
func TripOnFailureRatio(minRequests uint32, ratio float64) func(gobreaker.Counts) bool {
	return func(c gobreaker.Counts) bool {
		return c.Requests >= minRequests && float64(c.TotalFailures) >= ratio*float64(c.Requests)
	}
}

// LogStateChanges logs every transition; opening a circuit is a warning.
func LogStateChanges(logger zerolog.Logger) func(name string, from, to gobreaker.State) {
	return func(name string, from, to gobreaker.State) {
		level := zerolog.InfoLevel
		if to == gobreaker.StateOpen {
			level = zerolog.WarnLevel
		}
		logger.WithLevel(level).
			Str("provider", name).
			Str("from", from.String()).
			Str("to", to.String()).
			Msg("circuit breaker state changed")
	}
}

// countsAsSuccess keeps calls the caller abandoned out of the failure counts:
// a superseded trip plan cancels its context and says nothing about the provider.
func countsAsSuccess(err error) bool {
	return err == nil || errors.Is(err, context.Canceled)
}

func newBreaker[T any](name string, cfg BreakerConfig) *gobreaker.CircuitBreaker[T] {
	def := DefaultBreakerConfig()
	if cfg.HalfOpenProbes == 0 {
		cfg.HalfOpenProbes = def.HalfOpenProbes
	}
	if cfg.OpenFor <= 0 {
		cfg.OpenFor = def.OpenFor
	}
	if cfg.ReadyToTrip == nil {
		cfg.ReadyToTrip = def.ReadyToTrip
	}
	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:          name,
		MaxRequests:   cfg.HalfOpenProbes,
		Interval:      cfg.ResetInterval,
		Timeout:       cfg.OpenFor,
		ReadyToTrip:   cfg.ReadyToTrip,
		OnStateChange: cfg.OnStateChange,
		IsSuccessful:  countsAsSuccess,
	})
}
