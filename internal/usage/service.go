package usage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/ecoroute/ecoroute/internal/store"
)

// ServiceConfig holds configuration for the usage service.
type ServiceConfig struct {
	// Store persists the counter and profile.
	Store store.KV

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service reads and updates usage state in the store.
type Service struct {
	store    store.KV
	logger   zerolog.Logger
	validate *validator.Validate

	// mu serializes read-modify-write cycles within this process.
	mu sync.Mutex
}

// NewService creates a new usage service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		store:    cfg.Store,
		logger:   cfg.Logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Get returns the usage state of a session.
func (s *Service) Get(ctx context.Context, sessionID string) (State, error) {
	var state State

	var count int
	err := store.GetJSON(ctx, s.store, sessionID, store.KeyUsageCount, &count)
	switch {
	case err == nil:
		state.Count = max(count, 0)
	case errors.Is(err, store.ErrNotFound):
	default:
		if !errors.Is(err, store.ErrCorrupt) {
			return State{}, fmt.Errorf("load usage count: %w", err)
		}
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("ignoring unreadable usage count")
	}

	var profile Profile
	err = store.GetJSON(ctx, s.store, sessionID, store.KeyUserProfile, &profile)
	switch {
	case err == nil:
		state.Profile = &profile
	case errors.Is(err, store.ErrNotFound):
	default:
		if !errors.Is(err, store.ErrCorrupt) {
			return State{}, fmt.Errorf("load profile: %w", err)
		}
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("ignoring unreadable profile")
	}

	return state, nil
}

// Admit counts one calculation for the session, persisting the new count before returning.
// It returns ErrRegistrationRequired once an unregistered session has used the free tier.
func (s *Service) Admit(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	next, err := state.Admit()
	if err != nil {
		s.logger.Info().Str("session_id", sessionID).Int("count", state.Count).Msg("free tier exhausted")
		return err
	}
	if next.Count == state.Count {
		return nil
	}
	if err := store.PutJSON(ctx, s.store, sessionID, store.KeyUsageCount, next.Count); err != nil {
		return fmt.Errorf("save usage count: %w", err)
	}
	return nil
}

// Register validates and stores a profile for the session.
func (s *Service) Register(ctx context.Context, sessionID string, p Profile) (State, error) {
	p = p.Normalize()
	if err := s.validate.Struct(p); err != nil {
		return State{}, fmt.Errorf("%w: %s", ErrInvalidProfile, describe(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.Get(ctx, sessionID)
	if err != nil {
		return State{}, err
	}
	next, err := state.Register(p)
	if err != nil {
		return state, err
	}
	if err := store.PutJSON(ctx, s.store, sessionID, store.KeyUserProfile, p); err != nil {
		return State{}, fmt.Errorf("save profile: %w", err)
	}

	s.logger.Info().
		Str("session_id", sessionID).
		Str("purpose", string(p.Purpose)).
		Msg("session registered")
	return next, nil
}

// FirstName returns the registered first name of a session, if any.
func (s *Service) FirstName(ctx context.Context, sessionID string) (string, bool) {
	state, err := s.Get(ctx, sessionID)
	if err != nil || state.Profile == nil || state.Profile.FirstName == "" {
		return "", false
	}
	return state.Profile.FirstName, true
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
}
