package repository

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"gitlab.com/yelinaung/expense-tracker/internal/database"
	"gitlab.com/yelinaung/expense-tracker/internal/models"
)

var errBoom = errors.New("connection reset")

// countingDB fails every call and counts how many reached it.
type countingDB struct {
	calls atomic.Int32
}

func (d *countingDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	d.calls.Add(1)
	return pgconn.CommandTag{}, errBoom
}

func (d *countingDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	d.calls.Add(1)
	return nil, errBoom
}

func (d *countingDB) QueryRow(context.Context, string, ...any) pgx.Row {
	d.calls.Add(1)
	return failingRow{}
}

type failingRow struct{}

func (failingRow) Scan(...any) error { return errBoom }

func TestRepositories_Unconfigured(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := database.Unconfigured().DB()
	cats := NewCategoryRepository(db)
	exps := NewExpenseRepository(db)

	require.False(t, cats.Ready())
	require.False(t, exps.Ready())

	assertNotConfigured := func(t *testing.T, err error) {
		t.Helper()
		require.ErrorIs(t, err, ErrStoreOperation)
		require.ErrorIs(t, err, database.ErrNotConfigured)
	}

	_, err := cats.List(ctx)
	assertNotConfigured(t, err)
	_, err = cats.Create(ctx, models.NewCategory{Name: "Food"})
	assertNotConfigured(t, err)
	_, err = cats.GetByID(ctx, "0b6a3c52-4a0e-4f0e-8c39-2d0f5d6b0a01")
	assertNotConfigured(t, err)
	_, err = cats.GetByName(ctx, "Food")
	assertNotConfigured(t, err)
	name := "Other"
	_, err = cats.Update(ctx, "0b6a3c52-4a0e-4f0e-8c39-2d0f5d6b0a01", models.CategoryPatch{Name: &name})
	assertNotConfigured(t, err)
	assertNotConfigured(t, cats.Delete(ctx, "0b6a3c52-4a0e-4f0e-8c39-2d0f5d6b0a01"))

	_, err = exps.List(ctx, models.ExpenseFilter{})
	assertNotConfigured(t, err)
	_, err = exps.Create(ctx, models.NewExpense{Amount: decimal.NewFromInt(5), Date: "2024-01-01"})
	assertNotConfigured(t, err)
	_, err = exps.GetByID(ctx, "0b6a3c52-4a0e-4f0e-8c39-2d0f5d6b0a01")
	assertNotConfigured(t, err)
	_, err = exps.Update(ctx, "0b6a3c52-4a0e-4f0e-8c39-2d0f5d6b0a01", models.ExpensePatch{})
	assertNotConfigured(t, err)
	assertNotConfigured(t, exps.Delete(ctx, "0b6a3c52-4a0e-4f0e-8c39-2d0f5d6b0a01"))
}

func TestRepositories_ValidationBeforeStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	tests := []struct {
		name    string
		call    func(db database.PGXDB) error
		wantErr error
	}{
		{
			name: "expense with zero amount",
			call: func(db database.PGXDB) error {
				_, err := NewExpenseRepository(db).Create(ctx, models.NewExpense{Amount: decimal.Zero, Date: "2024-01-01"})
				return err
			},
			wantErr: models.ErrInvalidAmount,
		},
		{
			name: "expense with negative amount",
			call: func(db database.PGXDB) error {
				_, err := NewExpenseRepository(db).Create(ctx, models.NewExpense{Amount: decimal.NewFromInt(-5), Date: "2024-01-01"})
				return err
			},
			wantErr: models.ErrInvalidAmount,
		},
		{
			name: "expense with bad date",
			call: func(db database.PGXDB) error {
				_, err := NewExpenseRepository(db).Create(ctx, models.NewExpense{Amount: decimal.NewFromInt(5), Date: "01/02/2024"})
				return err
			},
			wantErr: models.ErrInvalidDate,
		},
		{
			name: "expense patch with zero amount",
			call: func(db database.PGXDB) error {
				zero := decimal.Zero
				_, err := NewExpenseRepository(db).Update(ctx, "x", models.ExpensePatch{Amount: &zero})
				return err
			},
			wantErr: models.ErrInvalidAmount,
		},
		{
			name: "list with bad filter date",
			call: func(db database.PGXDB) error {
				_, err := NewExpenseRepository(db).List(ctx, models.ExpenseFilter{StartDate: "yesterday"})
				return err
			},
			wantErr: models.ErrInvalidDate,
		},
		{
			name: "category with blank name",
			call: func(db database.PGXDB) error {
				_, err := NewCategoryRepository(db).Create(ctx, models.NewCategory{Name: "   "})
				return err
			},
			wantErr: models.ErrInvalidCategoryName,
		},
		{
			name: "category patch with bad color",
			call: func(db database.PGXDB) error {
				color := "blue"
				_, err := NewCategoryRepository(db).Update(ctx, "x", models.CategoryPatch{Color: &color})
				return err
			},
			wantErr: models.ErrInvalidColor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			db := &countingDB{}
			err := tt.call(db)
			require.ErrorIs(t, err, tt.wantErr)
			require.NotErrorIs(t, err, ErrStoreOperation)
			require.Zero(t, db.calls.Load(), "store must not be contacted")
		})
	}
}

func TestRepositories_StoreFailureIsSingleKind(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := &countingDB{}
	cats := NewCategoryRepository(db)
	exps := NewExpenseRepository(db)
	require.True(t, cats.Ready())
	require.True(t, exps.Ready())

	_, err := cats.List(ctx)
	require.ErrorIs(t, err, ErrStoreOperation)
	require.ErrorIs(t, err, errBoom)

	_, err = exps.Create(ctx, models.NewExpense{Amount: decimal.NewFromInt(5), Date: "2024-01-01"})
	require.ErrorIs(t, err, ErrStoreOperation)

	err = exps.Delete(ctx, "id")
	require.ErrorIs(t, err, ErrStoreOperation)

	require.EqualValues(t, 3, db.calls.Load())
}

func TestOutcomeOf(t *testing.T) {
	t.Parallel()

	require.Equal(t, "ok", outcomeOf(nil))
	require.Equal(t, "invalid", outcomeOf(models.ErrInvalidAmount))
	require.Equal(t, "not_configured", outcomeOf(notConfigured("x")))
	require.Equal(t, "error", outcomeOf(storeErr("x", errBoom)))
}
