package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ecoroute/ecoroute/internal/store"
)

// dateLayout matches JavaScript's Date.toISOString.
const dateLayout = "2006-01-02T15:04:05.000Z"

// Names resolves the display name of a session.
type Names interface {
	FirstName(ctx context.Context, sessionID string) (string, bool)
}

// Notifier tells an administrator about a new review.
type Notifier interface {
	ReviewSubmitted(ctx context.Context, r Review) error
}

// ServiceConfig holds configuration for the review service.
type ServiceConfig struct {
	// Store persists pending reviews per session.
	Store store.KV

	// Names resolves reviewer names. Optional; reviewers are guests without it.
	Names Names

	// Notifier receives every submitted review. Optional.
	Notifier Notifier

	// Logger for service operations.
	Logger zerolog.Logger

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Service manages reviews.
type Service struct {
	store    store.KV
	names    Names
	notifier Notifier
	logger   zerolog.Logger
	now      func() time.Time

	mu sync.Mutex
}

// NewService creates a new review service.
func NewService(cfg ServiceConfig) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:    cfg.Store,
		names:    cfg.Names,
		notifier: cfg.Notifier,
		logger:   cfg.Logger,
		now:      now,
	}
}

// Submit records a pending review for the session and notifies the administrator.
// A failed notification is logged; the review is kept.
func (s *Service) Submit(ctx context.Context, sessionID string, rating int, comment string) (*Review, error) {
	if rating < MinRating || rating > MaxRating {
		return nil, ErrInvalidRating
	}
	comment = strings.TrimSpace(comment)
	if utf8.RuneCountInString(comment) > MaxCommentLength {
		return nil, ErrCommentTooLong
	}

	userName := GuestName
	if s.names != nil {
		if name, ok := s.names.FirstName(ctx, sessionID); ok {
			userName = name
		}
	}

	r := Review{
		ID:       uuid.NewString(),
		UserName: userName,
		Rating:   rating,
		Comment:  comment,
		Status:   StatusPending,
		Date:     s.now().UTC().Format(dateLayout),
	}

	s.mu.Lock()
	stored, err := s.load(ctx, sessionID)
	if err == nil {
		err = store.PutJSON(ctx, s.store, sessionID, store.KeyPendingReviews, append(stored, r))
	}
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("save review: %w", err)
	}

	s.logger.Info().
		Str("session_id", sessionID).
		Str("review_id", r.ID).
		Int("rating", rating).
		Msg("review submitted")

	if s.notifier != nil {
		if err := s.notifier.ReviewSubmitted(ctx, r); err != nil {
			s.logger.Error().Err(err).Str("review_id", r.ID).Msg("failed to notify administrator")
		}
	}
	return &r, nil
}

// ListApproved returns the reviews fit for public display.
func (s *Service) ListApproved(ctx context.Context) ([]Review, error) {
	return s.list(ctx, StatusApproved)
}

// ListForModeration returns every review awaiting moderation across all sessions.
func (s *Service) ListForModeration(ctx context.Context) ([]Review, error) {
	return s.list(ctx, StatusPending)
}

// list merges the seed reviews with every stored review and keeps those with status.
// Seed reviews come first, stored ones follow in date order.
func (s *Service) list(ctx context.Context, status Status) ([]Review, error) {
	all, err := s.store.Scan(ctx, store.KeyPendingReviews)
	if err != nil {
		return nil, fmt.Errorf("scan reviews: %w", err)
	}

	var stored []Review
	for scope, raw := range all {
		var reviews []Review
		if err := json.Unmarshal(raw, &reviews); err != nil {
			s.logger.Warn().Err(err).Str("session_id", scope).Msg("skipping unreadable reviews")
			continue
		}
		stored = append(stored, reviews...)
	}
	sort.SliceStable(stored, func(i, j int) bool {
		if stored[i].Date != stored[j].Date {
			return stored[i].Date < stored[j].Date
		}
		return stored[i].ID < stored[j].ID
	})

	out := make([]Review, 0, len(stored)+2)
	for _, r := range append(SeedReviews(), stored...) {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out, nil
}

// load returns the stored reviews of a session. An unreadable value is
// logged and treated as empty, so the next submission replaces it.
func (s *Service) load(ctx context.Context, sessionID string) ([]Review, error) {
	var reviews []Review
	err := store.GetJSON(ctx, s.store, sessionID, store.KeyPendingReviews, &reviews)
	switch {
	case err == nil:
		return reviews, nil
	case errors.Is(err, store.ErrNotFound):
		return nil, nil
	case errors.Is(err, store.ErrCorrupt):
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("discarding unreadable reviews")
		return nil, nil
	default:
		return nil, err
	}
}
