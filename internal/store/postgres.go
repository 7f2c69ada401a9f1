package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresKV is a PostgreSQL implementation of KV backed by the session_state table.
type PostgresKV struct {
	pool *pgxpool.Pool
}

var _ KV = (*PostgresKV)(nil)

// NewPostgresKV creates a new PostgreSQL store.
func NewPostgresKV(pool *pgxpool.Pool) *PostgresKV {
	return &PostgresKV{pool: pool}
}

// Get retrieves the value for a scope and key.
func (s *PostgresKV) Get(ctx context.Context, scope, key string) ([]byte, error) {
	query := `
		SELECT value
		FROM session_state
		WHERE scope = $1 AND key = $2
	`

	var value []byte
	if err := s.pool.QueryRow(ctx, query, scope, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

// Put upserts the value for a scope and key.
func (s *PostgresKV) Put(ctx context.Context, scope, key string, value []byte) error {
	query := `
		INSERT INTO session_state (scope, key, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (scope, key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = NOW()
	`

	if _, err := s.pool.Exec(ctx, query, scope, key, value); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// Scan returns the value stored under key for every scope.
func (s *PostgresKV) Scan(ctx context.Context, key string) (map[string][]byte, error) {
	query := `
		SELECT scope, value
		FROM session_state
		WHERE key = $1
		ORDER BY updated_at
	`

	rows, err := s.pool.Query(ctx, query, key)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", key, err)
	}
	defer rows.Close()

	out := make(map[string][]byte)
	for rows.Next() {
		var (
			scope string
			value []byte
		)
		if err := rows.Scan(&scope, &value); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", key, err)
		}
		out[scope] = value
	}
	return out, rows.Err()
}
