package store

import (
	"context"
	"sync"
)

// InMemoryKV is an in-memory implementation of KV.
type InMemoryKV struct {
	mu     sync.RWMutex
	values map[string]map[string][]byte // key -> scope -> value
}

var _ KV = (*InMemoryKV)(nil)

// NewInMemoryKV creates a new in-memory store.
func NewInMemoryKV() *InMemoryKV {
	return &InMemoryKV{
		values: make(map[string]map[string][]byte),
	}
}

// Get returns a copy of the stored value.
func (s *InMemoryKV) Get(_ context.Context, scope, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key][scope]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(v), nil
}

// Put stores a copy of value.
func (s *InMemoryKV) Put(_ context.Context, scope, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byScope, ok := s.values[key]
	if !ok {
		byScope = make(map[string][]byte)
		s.values[key] = byScope
	}
	byScope[scope] = clone(value)
	return nil
}

// Scan returns copies of every value stored under key.
func (s *InMemoryKV) Scan(_ context.Context, key string) (map[string][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]byte, len(s.values[key]))
	for scope, v := range s.values[key] {
		out[scope] = clone(v)
	}
	return out, nil
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
