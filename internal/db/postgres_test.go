package db

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lazyPool builds a pool that never dials: pgxpool connects lazily, so a
// pool pointed at an unreachable address is valid until first acquire.
func lazyPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	pool, err := pgxpool.New(context.Background(), "postgres://nobody@127.0.0.1:1/none")
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestWithTransactionBeginFailure(t *testing.T) {
	pool := lazyPool(t)

	called := false
	err := WithTransaction(context.Background(), pool, func(ctx context.Context, tx pgx.Tx) error {
		called = true
		return nil
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to begin transaction")
	assert.False(t, called, "callback must not run when begin fails")
}

func TestWithTransactionKeepsCallerDeadline(t *testing.T) {
	pool := lazyPool(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := WithTransaction(ctx, pool, func(ctx context.Context, tx pgx.Tx) error {
		return nil
	})
	require.Error(t, err)
}
