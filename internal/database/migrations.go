package database

import (
	"context"
	"fmt"
)

// RunMigrations creates the database schema.
func RunMigrations(ctx context.Context, db PGXDB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS categories (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			color TEXT NOT NULL DEFAULT '#ef4444',
			icon TEXT NOT NULL DEFAULT 'tag',
			created_at TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp()
		)`,

		`CREATE TABLE IF NOT EXISTS expenses (
			id UUID PRIMARY KEY,
			amount NUMERIC(12, 2) NOT NULL CHECK (amount > 0),
			description TEXT NOT NULL DEFAULT '',
			category_id UUID REFERENCES categories(id) ON DELETE SET NULL,
			date DATE NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_expenses_date_created ON expenses(date DESC, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_category_id ON expenses(category_id)`,
		`CREATE INDEX IF NOT EXISTS idx_categories_lower_name ON categories(LOWER(name))`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}

// SeedCategory is a default category inserted into an empty store.
type SeedCategory struct {
	ID    string
	Name  string
	Color string
	Icon  string
}

// DefaultCategories is the starter set offered on a fresh store.
// IDs are fixed so seeding is reproducible.
var DefaultCategories = []SeedCategory{
	{"0b6a3c52-4a0e-4f0e-8c39-2d0f5d6b0a01", "Food & Dining", "#ef4444", "utensils"},
	{"0b6a3c52-4a0e-4f0e-8c39-2d0f5d6b0a02", "Groceries", "#10b981", "shopping-cart"},
	{"0b6a3c52-4a0e-4f0e-8c39-2d0f5d6b0a03", "Transportation", "#3b82f6", "car"},
	{"0b6a3c52-4a0e-4f0e-8c39-2d0f5d6b0a04", "Housing", "#8b5cf6", "home"},
	{"0b6a3c52-4a0e-4f0e-8c39-2d0f5d6b0a05", "Utilities", "#f59e0b", "zap"},
	{"0b6a3c52-4a0e-4f0e-8c39-2d0f5d6b0a06", "Entertainment", "#ec4899", "film"},
	{"0b6a3c52-4a0e-4f0e-8c39-2d0f5d6b0a07", "Health", "#14b8a6", "heart"},
	{"0b6a3c52-4a0e-4f0e-8c39-2d0f5d6b0a08", "Shopping", "#f97316", "shopping-bag"},
	{"0b6a3c52-4a0e-4f0e-8c39-2d0f5d6b0a09", "Subscriptions", "#6366f1", "repeat"},
	{"0b6a3c52-4a0e-4f0e-8c39-2d0f5d6b0a10", "Others", "#6b7280", "tag"},
}

// SeedCategories inserts the default categories when the categories table is empty.
// An existing set is never touched.
func SeedCategories(ctx context.Context, db PGXDB) error {
	var count int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM categories`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count categories: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, cat := range DefaultCategories {
		_, err := db.Exec(ctx,
			`INSERT INTO categories (id, name, color, icon) VALUES ($1, $2, $3, $4) ON CONFLICT (id) DO NOTHING`,
			cat.ID, cat.Name, cat.Color, cat.Icon,
		)
		if err != nil {
			return fmt.Errorf("failed to seed category %q: %w", cat.Name, err)
		}
	}

	return nil
}
