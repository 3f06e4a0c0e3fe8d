package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotConfigured is returned by every store call when the store
// connection parameters were not provided.
var ErrNotConfigured = errors.New("store is not configured: set STORE_URL and STORE_API_KEY")

// PGXDB is an interface that both pgxpool.Pool and pgx.Tx implement.
// This allows repositories to work with either a connection pool or a transaction,
// which is essential for testing with transaction-based isolation.
type PGXDB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type unconfiguredDB struct{}

func (unconfiguredDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, ErrNotConfigured
}

func (unconfiguredDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, ErrNotConfigured
}

func (unconfiguredDB) QueryRow(context.Context, string, ...any) pgx.Row {
	return errRow{}
}

type errRow struct{}

func (errRow) Scan(...any) error { return ErrNotConfigured }

// IsUnconfigured reports whether db is the placeholder used when no store is configured.
func IsUnconfigured(db PGXDB) bool {
	_, ok := db.(unconfiguredDB)
	return ok
}

// Ensure types implement the interface at compile time.
var (
	_ PGXDB = (*pgxpool.Pool)(nil)
	_ PGXDB = (pgx.Tx)(nil)
	_ PGXDB = unconfiguredDB{}
)
