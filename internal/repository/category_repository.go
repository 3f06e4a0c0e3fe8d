package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"gitlab.com/yelinaung/expense-tracker/internal/database"
	"gitlab.com/yelinaung/expense-tracker/internal/models"
)

const categoryColumns = `id::text, name, color, icon, created_at`

// CategoryRepository handles category database operations.
type CategoryRepository struct {
	db database.PGXDB
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(db database.PGXDB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Ready reports whether the repository is backed by a live store.
func (r *CategoryRepository) Ready() bool {
	return !database.IsUnconfigured(r.db)
}

func scanCategory(row rowScanner) (*models.Category, error) {
	var cat models.Category
	if err := row.Scan(&cat.ID, &cat.Name, &cat.Color, &cat.Icon, &cat.CreatedAt); err != nil {
		return nil, err
	}
	return &cat, nil
}

// List retrieves all categories ordered by name.
func (r *CategoryRepository) List(ctx context.Context) (categories []models.Category, err error) {
	defer func() { record(ctx, "categories.list", err) }()
	if !r.Ready() {
		return nil, notConfigured("list categories")
	}

	rows, err := r.db.Query(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, storeErr("query categories", err)
	}
	defer rows.Close()

	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, storeErr("scan category", err)
		}
		categories = append(categories, *cat)
	}

	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate categories", err)
	}
	return categories, nil
}

// GetByID retrieves a category by ID.
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (cat *models.Category, err error) {
	defer func() { record(ctx, "categories.get", err) }()
	if !r.Ready() {
		return nil, notConfigured("get category")
	}

	cat, err = scanCategory(r.db.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1::text::uuid`, id))
	if err != nil {
		return nil, storeErr("get category", err)
	}
	return cat, nil
}

// GetByName retrieves a category by name (case-insensitive).
// Names are not unique; the oldest match wins.
func (r *CategoryRepository) GetByName(ctx context.Context, name string) (cat *models.Category, err error) {
	defer func() { record(ctx, "categories.get_by_name", err) }()
	if !r.Ready() {
		return nil, notConfigured("get category by name")
	}

	cat, err = scanCategory(r.db.QueryRow(ctx, `
		SELECT `+categoryColumns+` FROM categories
		WHERE LOWER(name) = LOWER($1)
		ORDER BY created_at ASC
		LIMIT 1
	`, strings.TrimSpace(name)))
	if err != nil {
		return nil, storeErr("get category by name", err)
	}
	return cat, nil
}

// Create adds a new category and returns the persisted row.
func (r *CategoryRepository) Create(ctx context.Context, in models.NewCategory) (cat *models.Category, err error) {
	defer func() { record(ctx, "categories.create", err) }()

	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if !r.Ready() {
		return nil, notConfigured("create category")
	}

	cat, err = scanCategory(r.db.QueryRow(ctx, `
		INSERT INTO categories (id, name, color, icon) VALUES ($1::text::uuid, $2, $3, $4)
		RETURNING `+categoryColumns,
		uuid.NewString(), in.Name, in.Color, in.Icon,
	))
	if err != nil {
		return nil, storeErr("create category", err)
	}
	return cat, nil
}

// Update patches only the given fields and returns the updated row.
// Fails when the category does not exist.
func (r *CategoryRepository) Update(ctx context.Context, id string, patch models.CategoryPatch) (cat *models.Category, err error) {
	defer func() { record(ctx, "categories.update", err) }()

	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		patch.Name = &trimmed
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if !r.Ready() {
		return nil, notConfigured("update category")
	}

	cat, err = scanCategory(r.db.QueryRow(ctx, `
		UPDATE categories SET
			name = COALESCE($2::text, name),
			color = COALESCE($3::text, color),
			icon = COALESCE($4::text, icon)
		WHERE id = $1::text::uuid
		RETURNING `+categoryColumns,
		id, patch.Name, patch.Color, patch.Icon,
	))
	if err != nil {
		return nil, storeErr(fmt.Sprintf("update category %s", id), err)
	}
	return cat, nil
}

// Delete removes a category by ID. Expenses referencing it become uncategorized.
func (r *CategoryRepository) Delete(ctx context.Context, id string) (err error) {
	defer func() { record(ctx, "categories.delete", err) }()
	if !r.Ready() {
		return notConfigured("delete category")
	}

	if _, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1::text::uuid`, id); err != nil {
		return storeErr("delete category", err)
	}
	return nil
}
