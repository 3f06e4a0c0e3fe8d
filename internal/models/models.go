// Package models defines the domain entities for the expense tracker.
package models

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-date format used for expense dates.
// Dates are fixed-width and zero-padded so they compare correctly as strings.
const DateLayout = "2006-01-02"

// MaxCategoryNameLength is the maximum allowed length for category names.
const MaxCategoryNameLength = 50

// Amounts are stored as NUMERIC(12,2).
const (
	AmountScale     = 2
	MaxAmountDigits = 10
)

// MaxAmount is the largest amount the store can hold.
var MaxAmount = decimal.New(1, MaxAmountDigits).Sub(decimal.New(1, -AmountScale))

// Defaults applied to categories created without a color or icon.
const (
	DefaultCategoryColor = "#ef4444"
	DefaultCategoryIcon  = "tag"
)

// Bucket used for expenses without a category.
const (
	UncategorizedName  = "Uncategorized"
	UncategorizedColor = "#6b7280"
)

// PresetColors are the colors offered when creating or editing a category.
var PresetColors = []string{
	"#ef4444", "#f59e0b", "#10b981", "#3b82f6", "#8b5cf6",
	"#ec4899", "#14b8a6", "#f97316", "#6366f1", "#6b7280",
}

// Validation errors. These are raised before any store call is attempted.
var (
	ErrInvalidAmount       = errors.New("amount must be a positive number")
	ErrInvalidDate         = errors.New("date must be a calendar date in YYYY-MM-DD format")
	ErrInvalidCategoryName = errors.New("category name is invalid")
	ErrInvalidColor        = errors.New("color must be a hex value like #3b82f6")
)

var colorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Category represents an expense category.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Icon      string    `json:"icon"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCategory holds the fields required to create a category.
type NewCategory struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// CategoryPatch holds the fields to change on a category. Nil fields are left untouched.
type CategoryPatch struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
	Icon  *string `json:"icon,omitempty"`
}

// Expense represents a single expense entry, optionally joined with its category.
type Expense struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	CategoryID  *string         `json:"category_id"`
	Date        string          `json:"date"`
	CreatedAt   time.Time       `json:"created_at"`
	Category    *Category       `json:"category"`
}

// DisplayDescription returns the description, or a generic label when empty.
func (e *Expense) DisplayDescription() string {
	if e.Description == "" {
		return "Expense"
	}
	return e.Description
}

// NewExpense holds the fields required to create an expense.
type NewExpense struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	CategoryID  *string         `json:"category_id"`
	Date        string          `json:"date"`
}

// ExpensePatch holds the fields to change on an expense. Nil fields are left untouched.
// CategoryID is only applied when SetCategory is true, which allows clearing it.
type ExpensePatch struct {
	Amount      *decimal.Decimal
	Description *string
	SetCategory bool
	CategoryID  *string
	Date        *string
}

// IsEmpty reports whether the patch changes nothing.
func (p ExpensePatch) IsEmpty() bool {
	return p.Amount == nil && p.Description == nil && !p.SetCategory && p.Date == nil
}

// ExpenseFilter narrows an expense listing. Empty fields do not filter.
// All set fields are combined with AND.
type ExpenseFilter struct {
	StartDate  string
	EndDate    string
	CategoryID string
}

// Validate checks the filter dates.
func (f ExpenseFilter) Validate() error {
	if f.StartDate != "" {
		if err := ValidateDate(f.StartDate); err != nil {
			return err
		}
	}
	if f.EndDate != "" {
		if err := ValidateDate(f.EndDate); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAmount rejects zero and negative amounts, amounts with more than
// two decimal places and amounts above MaxAmount.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: got %s", ErrInvalidAmount, amount.String())
	}
	if !amount.Equal(amount.Truncate(AmountScale)) {
		return fmt.Errorf("%w: at most %d decimal places, got %s", ErrInvalidAmount, AmountScale, amount.String())
	}
	if amount.GreaterThan(MaxAmount) {
		return fmt.Errorf("%w: must not exceed %s, got %s", ErrInvalidAmount, MaxAmount.StringFixed(AmountScale), amount.String())
	}
	return nil
}

// ValidateDate checks that s is a real calendar date in YYYY-MM-DD form.
func ValidateDate(s string) error {
	t, err := time.Parse(DateLayout, s)
	if err != nil || t.Format(DateLayout) != s {
		return fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return nil
}

// ValidateCategoryName checks that a category name is usable.
func ValidateCategoryName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidCategoryName)
	}
	if len(trimmed) > MaxCategoryNameLength {
		return fmt.Errorf("%w: max %d characters", ErrInvalidCategoryName, MaxCategoryNameLength)
	}
	for _, r := range trimmed {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control characters are not allowed", ErrInvalidCategoryName)
		}
	}
	return nil
}

// ValidateColor checks a #rrggbb color value.
func ValidateColor(color string) error {
	if !colorRegex.MatchString(color) {
		return fmt.Errorf("%w: %q", ErrInvalidColor, color)
	}
	return nil
}

// Normalize trims the name and fills in default color and icon.
func (c NewCategory) Normalize() NewCategory {
	c.Name = strings.TrimSpace(c.Name)
	if c.Color == "" {
		c.Color = DefaultCategoryColor
	}
	if strings.TrimSpace(c.Icon) == "" {
		c.Icon = DefaultCategoryIcon
	}
	return c
}

// Validate checks a normalized NewCategory.
func (c NewCategory) Validate() error {
	if err := ValidateCategoryName(c.Name); err != nil {
		return err
	}
	return ValidateColor(c.Color)
}

// Validate checks the fields present on the patch.
func (p CategoryPatch) Validate() error {
	if p.Name != nil {
		if err := ValidateCategoryName(*p.Name); err != nil {
			return err
		}
	}
	if p.Color != nil {
		if err := ValidateColor(*p.Color); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks a NewExpense.
func (e NewExpense) Validate() error {
	if err := ValidateAmount(e.Amount); err != nil {
		return err
	}
	return ValidateDate(e.Date)
}

// Validate checks the fields present on the patch.
func (p ExpensePatch) Validate() error {
	if p.Amount != nil {
		if err := ValidateAmount(*p.Amount); err != nil {
			return err
		}
	}
	if p.Date != nil {
		if err := ValidateDate(*p.Date); err != nil {
			return err
		}
	}
	return nil
}

// IsValidationError reports whether err is one of the pre-store validation errors.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidCategoryName) ||
		errors.Is(err, ErrInvalidColor)
}
