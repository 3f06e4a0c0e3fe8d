package database

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRunMigrations(t *testing.T) {
	pool := TestDB(t)
	ctx := context.Background()

	err := RunMigrations(ctx, pool)
	require.NoError(t, err)

	for _, table := range []string{"categories", "expenses"} {
		var tableExists bool
		err = pool.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT FROM information_schema.tables
				WHERE table_name = $1
			)
		`, table).Scan(&tableExists)
		require.NoError(t, err)
		require.True(t, tableExists, table)
	}

	t.Run("idempotent", func(t *testing.T) {
		require.NoError(t, RunMigrations(ctx, pool))
		require.NoError(t, RunMigrations(ctx, pool))
	})
}

func TestMigrations_Constraints(t *testing.T) {
	tx := TestTx(t)
	ctx := context.Background()

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, err := tx.Exec(ctx, `SAVEPOINT amount_check`)
		require.NoError(t, err)
		_, err = tx.Exec(ctx,
			`INSERT INTO expenses (id, amount, date) VALUES ($1, 0, '2024-01-01')`,
			uuid.NewString(),
		)
		require.Error(t, err)
		_, err = tx.Exec(ctx, `ROLLBACK TO SAVEPOINT amount_check`)
		require.NoError(t, err)
	})

	t.Run("deleting category orphans its expenses", func(t *testing.T) {
		catID := uuid.NewString()
		expID := uuid.NewString()
		_, err := tx.Exec(ctx, `INSERT INTO categories (id, name) VALUES ($1, 'Temp')`, catID)
		require.NoError(t, err)
		_, err = tx.Exec(ctx,
			`INSERT INTO expenses (id, amount, category_id, date) VALUES ($1, 5, $2, '2024-01-01')`,
			expID, catID,
		)
		require.NoError(t, err)

		_, err = tx.Exec(ctx, `DELETE FROM categories WHERE id = $1`, catID)
		require.NoError(t, err)

		var categoryID *string
		err = tx.QueryRow(ctx, `SELECT category_id::text FROM expenses WHERE id = $1`, expID).Scan(&categoryID)
		require.NoError(t, err)
		require.Nil(t, categoryID)
	})
}

func TestSeedCategories(t *testing.T) {
	pool := TestDB(t)
	ctx := context.Background()

	err := RunMigrations(ctx, pool)
	require.NoError(t, err)

	CleanupTables(t, pool)

	err = SeedCategories(ctx, pool)
	require.NoError(t, err)

	var count int
	err = pool.QueryRow(ctx, "SELECT COUNT(*) FROM categories").Scan(&count)
	require.NoError(t, err)
	require.Equal(t, len(DefaultCategories), count)

	err = SeedCategories(ctx, pool)
	require.NoError(t, err)

	err = pool.QueryRow(ctx, "SELECT COUNT(*) FROM categories").Scan(&count)
	require.NoError(t, err)
	require.Equal(t, len(DefaultCategories), count, "should not duplicate categories on re-seed")
}

func TestSeedCategories_SkipsNonEmptyTable(t *testing.T) {
	tx := TestTx(t)
	ctx := context.Background()

	_, err := tx.Exec(ctx, `TRUNCATE TABLE categories CASCADE`)
	require.NoError(t, err)
	_, err = tx.Exec(ctx, `INSERT INTO categories (id, name) VALUES ($1, 'Mine')`, uuid.NewString())
	require.NoError(t, err)

	require.NoError(t, SeedCategories(ctx, tx))

	var count int
	require.NoError(t, tx.QueryRow(ctx, "SELECT COUNT(*) FROM categories").Scan(&count))
	require.Equal(t, 1, count)
}
