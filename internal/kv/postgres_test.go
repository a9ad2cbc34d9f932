package kv

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// Runs against a real database when TEST_DATABASE_URL is set.
func TestPostgres(t *testing.T) {
	addr := os.Getenv("TEST_DATABASE_URL")
	if addr == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, addr)
	require.NoError(t, err)
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback(ctx) }()

	p := NewPostgres(tx)
	require.NoError(t, p.EnsureSchema(ctx))
	exerciseStore(t, p)
}
