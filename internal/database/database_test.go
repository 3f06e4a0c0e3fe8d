package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	t.Run("fails with invalid connection string", func(t *testing.T) {
		ctx := context.Background()
		pool, err := Connect(ctx, "invalid://connection")
		require.Error(t, err)
		require.Nil(t, pool)
	})

	t.Run("fails with unreachable host", func(t *testing.T) {
		ctx := context.Background()
		pool, err := Connect(ctx, "postgres://localhost:59999/nonexistent?connect_timeout=1")
		require.Error(t, err)
		require.Nil(t, pool)
	})
}

func TestOpen_UnreachableWithAPIKey(t *testing.T) {
	store, err := Open(context.Background(), "postgres://user@localhost:59999/db?connect_timeout=1", "secret")
	require.Error(t, err)
	require.Nil(t, store)
}

func TestUnconfigured(t *testing.T) {
	t.Parallel()

	store := Unconfigured()
	require.False(t, store.Ready())
	require.True(t, IsUnconfigured(store.DB()))

	ctx := context.Background()

	t.Run("exec fails without I/O", func(t *testing.T) {
		t.Parallel()
		_, err := store.DB().Exec(ctx, "DELETE FROM expenses")
		require.ErrorIs(t, err, ErrNotConfigured)
	})

	t.Run("query fails without I/O", func(t *testing.T) {
		t.Parallel()
		rows, err := store.DB().Query(ctx, "SELECT 1")
		require.ErrorIs(t, err, ErrNotConfigured)
		require.Nil(t, rows)
	})

	t.Run("query row scan fails", func(t *testing.T) {
		t.Parallel()
		var n int
		err := store.DB().QueryRow(ctx, "SELECT 1").Scan(&n)
		require.ErrorIs(t, err, ErrNotConfigured)
	})

	t.Run("close is a no-op", func(t *testing.T) {
		t.Parallel()
		require.NotPanics(t, store.Close)
	})
}

func TestNilStore(t *testing.T) {
	t.Parallel()

	var store *Store
	require.False(t, store.Ready())
	require.True(t, IsUnconfigured(store.DB()))
	require.NotPanics(t, store.Close)
}

func TestMigrations_Unconfigured(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	require.ErrorIs(t, RunMigrations(ctx, Unconfigured().DB()), ErrNotConfigured)
	require.ErrorIs(t, SeedCategories(ctx, Unconfigured().DB()), ErrNotConfigured)
}
