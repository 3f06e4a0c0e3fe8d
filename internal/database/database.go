// Package database provides the PostgreSQL store handle and schema management.
package database

import (
	"context"
	"fmt"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the handle every repository is built from. It is either live
// (backed by a connection pool) or unconfigured, and never changes after startup.
type Store struct {
	pool *pgxpool.Pool
	db   PGXDB
}

// Open connects to the hosted store. The API key is used as the connection
// password so it never has to be embedded in the URL.
func Open(ctx context.Context, storeURL, apiKey string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(storeURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse store url: %w", err)
	}
	if apiKey != "" {
		cfg.ConnConfig.Password = apiKey
	}
	cfg.ConnConfig.Tracer = otelpgx.NewTracer()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping store: %w", err)
	}

	return &Store{pool: pool, db: pool}, nil
}

// Unconfigured returns a Store that performs no I/O and fails every call
// with ErrNotConfigured.
func Unconfigured() *Store {
	return &Store{db: unconfiguredDB{}}
}

// Ready reports whether the store is live.
func (s *Store) Ready() bool {
	return s != nil && s.pool != nil
}

// DB returns the query interface backing this store.
func (s *Store) DB() PGXDB {
	if s == nil {
		return unconfiguredDB{}
	}
	return s.db
}

// Close releases the pool. Safe to call on an unconfigured store.
func (s *Store) Close() {
	if s.Ready() {
		s.pool.Close()
	}
}

// Connect establishes a connection pool from a full connection string.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	store, err := Open(ctx, databaseURL, "")
	if err != nil {
		return nil, err
	}
	return store.pool, nil
}
