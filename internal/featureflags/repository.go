package featureflags

import (
	"context"
	"errors"
)

// ErrFlagNotFound is returned when a flag has never been written.
var ErrFlagNotFound = errors.New("feature flag not found")

// Repository persists flag overrides. Defaults are not stored; the Service
// layers them underneath whatever the repository holds.
type Repository interface {
	// Get returns the stored flag for key, or ErrFlagNotFound.
	Get(ctx context.Context, key string) (*Flag, error)

	// All returns every stored flag keyed by flag key.
	All(ctx context.Context) (map[string]*Flag, error)

	// Save writes all flags or none of them.
	Save(ctx context.Context, flags []*Flag) error
}
