// Package store persists small per-session JSON documents under fixed logical keys.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned when no value exists for a scope and key.
var ErrNotFound = errors.New("value not found")

// ErrCorrupt is returned by GetJSON when the stored value does not decode.
var ErrCorrupt = errors.New("stored value is corrupt")

// Logical keys.
const (
	KeyUsageCount     = "usage_count"
	KeyUserProfile    = "user_profile"
	KeyPendingReviews = "pending_reviews"
)

// KV is a scoped key-value store. Scope is a session ID; values are JSON documents.
// Writes replace the previous value (last write wins).
type KV interface {
	Get(ctx context.Context, scope, key string) ([]byte, error)
	Put(ctx context.Context, scope, key string, value []byte) error
	// Scan returns the value stored under key for every scope.
	Scan(ctx context.Context, key string) (map[string][]byte, error)
}

// GetJSON reads and decodes a value. It returns ErrNotFound if nothing is
// stored and an error wrapping ErrCorrupt if the value does not decode into v.
func GetJSON(ctx context.Context, kv KV, scope, key string, v any) error {
	data, err := kv.Get(ctx, scope, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w: %w", key, ErrCorrupt, err)
	}
	return nil
}

// PutJSON encodes and writes a value.
func PutJSON(ctx context.Context, kv KV, scope, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return kv.Put(ctx, scope, key, data)
}
