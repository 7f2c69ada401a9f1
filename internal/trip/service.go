package trip

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/bluele/gcache"
	"github.com/rs/zerolog"
)

// Session retention defaults.
const (
	DefaultSessionIdleTTL = 24 * time.Hour
	DefaultMaxSessions    = 10000
)

// Planner produces trip estimates for an origin/destination pair.
type Planner interface {
	Plan(ctx context.Context, req Request) (*Result, error)
}

// Gate admits or blocks a planning request for a session.
// Admission counts as one use.
type Gate interface {
	Admit(ctx context.Context, sessionID string) error
}

// Flags exposes the runtime switches the planner reads.
type Flags interface {
	IsPlanningDisabled(ctx context.Context) bool
	FeedbackPromptRate(ctx context.Context) float64
}

// ServiceConfig holds configuration for the trip service.
type ServiceConfig struct {
	// Planner produces trip estimates. A nil planner means the service is unconfigured.
	Planner Planner

	// Gate enforces the free usage tier. Optional.
	Gate Gate

	// Flags provides runtime switches. Optional.
	Flags Flags

	// Logger for service operations.
	Logger zerolog.Logger

	// Rand returns a number in [0,1). Defaults to math/rand/v2.Float64.
	Rand func() float64

	// SessionIdleTTL drops the trip of a session not touched for this long.
	SessionIdleTTL time.Duration
	// MaxSessions bounds the sessions held; the least recently used is dropped first.
	MaxSessions int
	Clock       gcache.Clock
}

// Snapshot is the current trip of a session as seen by its view.
type Snapshot struct {
	Result     *Result
	View       ViewState
	Selection  Selection
	Generation uint64
	// PromptFeedback asks the client to offer the feedback form.
	PromptFeedback bool
}

// ViewUpdate describes a change to the view state. Nil fields are left as they are.
// Modes and SortBy are applied before SelectedIndex; a nil SelectedIndex
// after a mode or sort change leaves the selection cleared.
type ViewUpdate struct {
	Modes         *ModeSet
	SortBy        *SortKey
	SelectedIndex *int
}

type sessionState struct {
	generation  uint64
	cancel      context.CancelFunc
	lastRequest *Request
	result      *Result
	view        ViewState
}

// Service plans trips and keeps the current trip and view per session.
type Service struct {
	planner Planner
	gate    Gate
	flags   Flags
	logger  zerolog.Logger
	rand    func() float64

	// mu serializes every read-modify-write of a sessionState.
	mu       sync.Mutex
	sessions gcache.Cache
}

// NewService creates a new trip service.
func NewService(cfg ServiceConfig) *Service {
	rnd := cfg.Rand
	if rnd == nil {
		rnd = rand.Float64
	}
	ttl := cfg.SessionIdleTTL
	if ttl <= 0 {
		ttl = DefaultSessionIdleTTL
	}
	size := cfg.MaxSessions
	if size <= 0 {
		size = DefaultMaxSessions
	}
	clock := cfg.Clock
	if clock == nil {
		clock = gcache.NewRealClock()
	}
	return &Service{
		planner:  cfg.Planner,
		gate:     cfg.Gate,
		flags:    cfg.Flags,
		logger:   cfg.Logger,
		rand:     rnd,
		sessions: gcache.New(size).LRU().Expiration(ttl).Clock(clock).Build(),
	}
}

// Configured reports whether a planner is available.
func (s *Service) Configured() bool {
	return s.planner != nil
}

// Plan admits the request through the usage gate and asks the planner for routes.
// A newer Plan or Replan for the same session cancels this one, which then
// returns ErrSuperseded. On failure the previously stored trip is kept.
func (s *Service) Plan(ctx context.Context, sessionID string, req Request) (*Snapshot, error) {
	if err := s.checkAvailable(ctx); err != nil {
		return nil, err
	}
	if req.Language == "" {
		req.Language = LanguageLocal
	}
	if s.gate != nil {
		if err := s.gate.Admit(ctx, sessionID); err != nil {
			return nil, err
		}
	}
	return s.run(ctx, sessionID, req)
}

// Replan re-issues the last request of the session with another language.
// It does not pass the usage gate.
func (s *Service) Replan(ctx context.Context, sessionID string, language Language) (*Snapshot, error) {
	if err := s.checkAvailable(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	st, ok := s.lookupLocked(sessionID)
	if !ok || st.lastRequest == nil {
		s.mu.Unlock()
		return nil, ErrNoTrip
	}
	req := *st.lastRequest
	s.mu.Unlock()

	req.Language = language
	return s.run(ctx, sessionID, req)
}

func (s *Service) checkAvailable(ctx context.Context) error {
	if s.planner == nil {
		return ErrNotConfigured
	}
	if s.flags != nil && s.flags.IsPlanningDisabled(ctx) {
		return ErrPlanningDisabled
	}
	return nil
}

func (s *Service) run(ctx context.Context, sessionID string, req Request) (*Snapshot, error) {
	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	st := s.sessionLocked(sessionID)
	if st.cancel != nil {
		st.cancel()
	}
	st.generation++
	gen := st.generation
	st.cancel = cancel
	st.lastRequest = &req
	s.mu.Unlock()

	result, err := s.planner.Plan(callCtx, req)

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, held := s.lookupLocked(sessionID)
	if (held && cur != st) || st.generation != gen {
		s.logger.Debug().
			Str("session_id", sessionID).
			Uint64("generation", gen).
			Msg("discarding superseded planning response")
		return nil, ErrSuperseded
	}
	st.cancel = nil
	if !held {
		// Evicted while the call was in flight.
		s.storeLocked(sessionID, st)
	}

	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("session_id", sessionID).
			Str("origin", req.Origin).
			Str("destination", req.Destination).
			Msg("trip planning failed")
		return nil, fmt.Errorf("plan trip: %w", err)
	}

	st.result = result
	if result.Feasible {
		st.view = InitialView()
	}

	s.logger.Info().
		Str("session_id", sessionID).
		Bool("feasible", result.Feasible).
		Int("routes", len(result.Routes)).
		Str("language", string(req.Language)).
		Msg("trip planned")

	snap := snapshotOf(st)
	snap.PromptFeedback = s.rand() < s.feedbackRate(ctx)
	return snap, nil
}

func (s *Service) feedbackRate(ctx context.Context) float64 {
	if s.flags == nil {
		return DefaultFeedbackPromptRate
	}
	return s.flags.FeedbackPromptRate(ctx)
}

// DefaultFeedbackPromptRate is the share of successful plans that ask for feedback.
const DefaultFeedbackPromptRate = 0.3

// Current returns the stored trip of the session.
func (s *Service) Current(sessionID string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.lookupLocked(sessionID)
	if !ok || st.result == nil {
		return nil, ErrNoTrip
	}
	return snapshotOf(st), nil
}

// UpdateView applies a view change to the current trip of the session.
func (s *Service) UpdateView(sessionID string, u ViewUpdate) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.lookupLocked(sessionID)
	if !ok || st.result == nil {
		return nil, ErrNoTrip
	}

	view := st.view
	if u.Modes != nil {
		view = view.WithModes(*u.Modes)
	}
	if u.SortBy != nil {
		view = view.WithSort(*u.SortBy)
	}
	if u.SelectedIndex != nil {
		if *u.SelectedIndex == NoIndex {
			view = view.ClearSelection()
		} else {
			displayed := Select(routesOf(st.result), view.Modes, view.SortBy)
			var err error
			if view, err = view.Select(*u.SelectedIndex, len(displayed.Routes)); err != nil {
				return nil, err
			}
		}
	}

	st.view = view
	return snapshotOf(st), nil
}

// Clear dismisses the current trip of the session. The last request is kept
// so a language change can still re-issue it.
func (s *Service) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.lookupLocked(sessionID); ok {
		st.result = nil
		st.view = InitialView()
	}
}

func (s *Service) sessionLocked(sessionID string) *sessionState {
	st, ok := s.lookupLocked(sessionID)
	if !ok {
		st = &sessionState{view: InitialView()}
		s.storeLocked(sessionID, st)
	}
	return st
}

// lookupLocked returns the state of a session and restarts its idle timer.
func (s *Service) lookupLocked(sessionID string) (*sessionState, bool) {
	v, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, false
	}
	st, ok := v.(*sessionState)
	if !ok {
		return nil, false
	}
	s.storeLocked(sessionID, st)
	return st, true
}

func (s *Service) storeLocked(sessionID string, st *sessionState) {
	_ = s.sessions.Set(sessionID, st) //nolint:errcheck // LRU Set only fails on a nil serializer
}

func routesOf(r *Result) []RouteOption {
	if r == nil || !r.Feasible {
		return nil
	}
	return r.Routes
}

func snapshotOf(st *sessionState) *Snapshot {
	return &Snapshot{
		Result:     st.result,
		View:       st.view,
		Selection:  Derive(st.result, st.view),
		Generation: st.generation,
	}
}
