package kv

import (
	"context"
	"errors"
	"fmt"

	"rayalaseema/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

// Postgres stores JSON values in the kv_store table.
type Postgres struct{ q dbx.Querier }

func NewPostgres(q dbx.Querier) *Postgres {
	return &Postgres{q: q}
}

func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.q.Exec(ctx, `
CREATE TABLE IF NOT EXISTS kv_store (
	key        TEXT PRIMARY KEY,
	value      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`)
	if err != nil {
		return fmt.Errorf("create kv_store: %w", err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	var v []byte
	err := p.q.QueryRow(ctx, `SELECT value FROM kv_store WHERE key = $1`, key).Scan(&v)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: get %s: %v", ErrStorageUnavailable, key, err)
	}
	return v, nil
}

func (p *Postgres) Set(ctx context.Context, key string, value []byte) error {
	_, err := p.q.Exec(ctx, `
INSERT INTO kv_store (key, value)
VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE
SET value = EXCLUDED.value,
    updated_at = now()
`, key, value)
	if err != nil {
		return fmt.Errorf("%w: set %s: %v", ErrStorageUnavailable, key, err)
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, key string) error {
	if _, err := p.q.Exec(ctx, `DELETE FROM kv_store WHERE key = $1`, key); err != nil {
		return fmt.Errorf("%w: delete %s: %v", ErrStorageUnavailable, key, err)
	}
	return nil
}
