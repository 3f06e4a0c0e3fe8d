package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gitlab.com/yelinaung/expense-tracker/internal/database"
	"gitlab.com/yelinaung/expense-tracker/internal/models"
)

// expenseSelect projects an expense aliased as e joined with its category c.
const expenseSelect = `
	SELECT e.id::text, e.amount, e.description, e.category_id::text, e.date::text, e.created_at,
	       c.id::text, c.name, c.color, c.icon, c.created_at`

// ExpenseRepository handles expense database operations.
type ExpenseRepository struct {
	db database.PGXDB
}

// NewExpenseRepository creates a new ExpenseRepository.
func NewExpenseRepository(db database.PGXDB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// Ready reports whether the repository is backed by a live store.
func (r *ExpenseRepository) Ready() bool {
	return !database.IsUnconfigured(r.db)
}

// List retrieves expenses joined with their category, newest date first and
// newest creation first within a date. Set filter fields are combined with AND.
func (r *ExpenseRepository) List(ctx context.Context, filter models.ExpenseFilter) (expenses []models.Expense, err error) {
	defer func() { record(ctx, "expenses.list", err) }()

	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if !r.Ready() {
		return nil, notConfigured("list expenses")
	}

	rows, err := r.db.Query(ctx, expenseSelect+`
		FROM expenses e
		LEFT JOIN categories c ON e.category_id = c.id
		WHERE ($1::text IS NULL OR e.date >= $1::text::date)
		  AND ($2::text IS NULL OR e.date <= $2::text::date)
		  AND ($3::text IS NULL OR e.category_id = $3::text::uuid)
		ORDER BY e.date DESC, e.created_at DESC
	`, optionalString(filter.StartDate), optionalString(filter.EndDate), optionalString(filter.CategoryID))
	if err != nil {
		return nil, storeErr("query expenses", err)
	}
	defer rows.Close()

	for rows.Next() {
		exp, err := scanExpense(rows)
		if err != nil {
			return nil, storeErr("scan expense", err)
		}
		expenses = append(expenses, *exp)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate expenses", err)
	}
	return expenses, nil
}

// GetByID retrieves an expense with its category.
func (r *ExpenseRepository) GetByID(ctx context.Context, id string) (exp *models.Expense, err error) {
	defer func() { record(ctx, "expenses.get", err) }()
	if !r.Ready() {
		return nil, notConfigured("get expense")
	}

	exp, err = scanExpense(r.db.QueryRow(ctx, expenseSelect+`
		FROM expenses e
		LEFT JOIN categories c ON e.category_id = c.id
		WHERE e.id = $1::text::uuid
	`, id))
	if err != nil {
		return nil, storeErr("get expense", err)
	}
	return exp, nil
}

// Create adds a new expense and returns the persisted row with its category.
// Amount and date are validated before the store is contacted.
func (r *ExpenseRepository) Create(ctx context.Context, in models.NewExpense) (exp *models.Expense, err error) {
	defer func() { record(ctx, "expenses.create", err) }()

	if err := in.Validate(); err != nil {
		return nil, err
	}
	if !r.Ready() {
		return nil, notConfigured("create expense")
	}

	exp, err = scanExpense(r.db.QueryRow(ctx, `
		WITH e AS (
			INSERT INTO expenses (id, amount, description, category_id, date)
			VALUES ($1::text::uuid, $2::numeric, $3, $4::text::uuid, $5::text::date)
			RETURNING *
		)`+expenseSelect+`
		FROM e
		LEFT JOIN categories c ON e.category_id = c.id
	`, uuid.NewString(), in.Amount, in.Description, in.CategoryID, in.Date))
	if err != nil {
		return nil, storeErr("create expense", err)
	}
	return exp, nil
}

// Update patches only the given fields and returns the updated row.
// Fails when the expense does not exist.
func (r *ExpenseRepository) Update(ctx context.Context, id string, patch models.ExpensePatch) (exp *models.Expense, err error) {
	defer func() { record(ctx, "expenses.update", err) }()

	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if !r.Ready() {
		return nil, notConfigured("update expense")
	}

	exp, err = scanExpense(r.db.QueryRow(ctx, `
		WITH e AS (
			UPDATE expenses SET
				amount = COALESCE($2::numeric, amount),
				description = COALESCE($3::text, description),
				category_id = CASE WHEN $4::bool THEN $5::text::uuid ELSE category_id END,
				date = COALESCE($6::text::date, date)
			WHERE id = $1::text::uuid
			RETURNING *
		)`+expenseSelect+`
		FROM e
		LEFT JOIN categories c ON e.category_id = c.id
	`, id, patch.Amount, patch.Description, patch.SetCategory, patch.CategoryID, patch.Date))
	if err != nil {
		return nil, storeErr(fmt.Sprintf("update expense %s", id), err)
	}
	return exp, nil
}

// Delete removes an expense by ID.
func (r *ExpenseRepository) Delete(ctx context.Context, id string) (err error) {
	defer func() { record(ctx, "expenses.delete", err) }()
	if !r.Ready() {
		return notConfigured("delete expense")
	}

	if _, err := r.db.Exec(ctx, `DELETE FROM expenses WHERE id = $1::text::uuid`, id); err != nil {
		return storeErr("delete expense", err)
	}
	return nil
}

// scanExpense scans one expense row with its nullable category join.
func scanExpense(row rowScanner) (*models.Expense, error) {
	var exp models.Expense
	var catID, catName, catColor, catIcon *string
	var catCreatedAt *time.Time

	if err := row.Scan(
		&exp.ID, &exp.Amount, &exp.Description, &exp.CategoryID, &exp.Date, &exp.CreatedAt,
		&catID, &catName, &catColor, &catIcon, &catCreatedAt,
	); err != nil {
		return nil, err
	}

	if catID != nil {
		exp.Category = &models.Category{
			ID:        *catID,
			Name:      *catName,
			Color:     *catColor,
			Icon:      *catIcon,
			CreatedAt: *catCreatedAt,
		}
	}
	return &exp, nil
}
