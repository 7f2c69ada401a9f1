package featureflags

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository stores flag overrides in the feature_flags table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

var _ Repository = (*PostgresRepository)(nil)

// NewPostgresRepository creates a new PostgreSQL feature flags repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const selectFlags = `SELECT key, value, reason, updated_at FROM feature_flags`

func (r *PostgresRepository) Get(ctx context.Context, key string) (*Flag, error) {
	rows, err := r.pool.Query(ctx, selectFlags+` WHERE key = $1`, key)
	if err != nil {
		return nil, fmt.Errorf("query feature flag: %w", err)
	}
	flag, err := pgx.CollectExactlyOneRow(rows, scanFlag)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrFlagNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read feature flag %s: %w", key, err)
	}
	return flag, nil
}

func (r *PostgresRepository) All(ctx context.Context) (map[string]*Flag, error) {
	rows, err := r.pool.Query(ctx, selectFlags)
	if err != nil {
		return nil, fmt.Errorf("query feature flags: %w", err)
	}
	flags, err := pgx.CollectRows(rows, scanFlag)
	if err != nil {
		return nil, fmt.Errorf("read feature flags: %w", err)
	}

	out := make(map[string]*Flag, len(flags))
	for _, f := range flags {
		out[f.Key] = f
	}
	return out, nil
}

func (r *PostgresRepository) Save(ctx context.Context, flags []*Flag) error {
	batch := &pgx.Batch{}
	for _, f := range flags {
		value, err := json.Marshal(f.Value)
		if err != nil {
			return fmt.Errorf("encode flag %s: %w", f.Key, err)
		}
		batch.Queue(`
			INSERT INTO feature_flags (key, value, reason, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (key) DO UPDATE SET
				value = EXCLUDED.value,
				reason = EXCLUDED.reason,
				updated_at = EXCLUDED.updated_at`,
			f.Key, value, f.Reason, f.UpdatedAt)
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("save feature flags: %w", err)
		}
		return nil
	})
}

func scanFlag(row pgx.CollectableRow) (*Flag, error) {
	var (
		f     Flag
		value []byte
	)
	if err := row.Scan(&f.Key, &value, &f.Reason, &f.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(value, &f.Value); err != nil {
		return nil, fmt.Errorf("decode flag %s: %w", f.Key, err)
	}
	return &f, nil
}
