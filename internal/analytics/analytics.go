// Package analytics turns expense lists into chart-ready summaries.
//
// Every function here is pure: the same input always yields the same output,
// in values and in order. Amounts are summed as decimals so totals are exact.
package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/expense-tracker/internal/models"
)

// RecentLimit is the number of expenses shown in the analytics preview.
const RecentLimit = 5

// CategoryTotal is the spend for one category.
type CategoryTotal struct {
	Name  string          `json:"name"`
	Total decimal.Decimal `json:"total"`
	Color string          `json:"color"`
}

// Granularity is the resolution used to bucket expenses over time.
type Granularity string

// Supported granularities.
const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
)

// ParseGranularity accepts "daily", "weekly" or "monthly" in any case.
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case Daily, Weekly, Monthly:
		return g, nil
	default:
		return "", fmt.Errorf("unknown granularity %q: want daily, weekly or monthly", s)
	}
}

// Bucket is the spend for one day, week or month. Key is the bucket's start
// date, so buckets with the same label in different years stay apart.
type Bucket struct {
	Key   string          `json:"key"`
	Label string          `json:"label"`
	Total decimal.Decimal `json:"total"`
}

// DayGroup holds the expenses of one calendar date with their subtotal.
type DayGroup struct {
	Date     string           `json:"date"`
	Total    decimal.Decimal  `json:"total"`
	Expenses []models.Expense `json:"expenses"`
}

// Summary holds spend for the current day, week and month.
type Summary struct {
	Today     decimal.Decimal `json:"today"`
	ThisWeek  decimal.Decimal `json:"this_week"`
	ThisMonth decimal.Decimal `json:"this_month"`
}

func categoryOf(e *models.Expense) (name, color string) {
	if e.Category == nil {
		return models.UncategorizedName, models.UncategorizedColor
	}
	return e.Category.Name, e.Category.Color
}

// ByCategory sums expenses per category name, largest total first.
// Expenses without a category are grouped as Uncategorized. Equal totals keep
// the order in which their category was first seen.
func ByCategory(expenses []models.Expense) []CategoryTotal {
	index := make(map[string]int)
	var totals []CategoryTotal

	for i := range expenses {
		name, color := categoryOf(&expenses[i])
		if pos, ok := index[name]; ok {
			totals[pos].Total = totals[pos].Total.Add(expenses[i].Amount)
			continue
		}
		index[name] = len(totals)
		totals = append(totals, CategoryTotal{Name: name, Total: expenses[i].Amount, Color: color})
	}

	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Total.GreaterThan(totals[j].Total)
	})
	return totals
}

func bucketOf(date string, g Granularity) (key, label string, err error) {
	d, err := ParseDate(date)
	if err != nil {
		return "", "", fmt.Errorf("invalid expense date %q: %w", date, err)
	}

	switch g {
	case Weekly:
		start := WeekStart(d)
		return FormatDate(start), "Week of " + start.Format("Jan 2"), nil
	case Monthly:
		start := MonthStart(d)
		return FormatDate(start), start.Format("Jan 2006"), nil
	default:
		return FormatDate(d), d.Format("Jan 2"), nil
	}
}

// OverTime sums expenses per day, Monday-aligned week, or month, and returns
// the buckets in chronological order. Expenses with an unparseable date are
// reported as an error rather than silently dropped.
func OverTime(expenses []models.Expense, g Granularity) ([]Bucket, error) {
	index := make(map[string]int)
	var buckets []Bucket

	for i := range expenses {
		key, label, err := bucketOf(expenses[i].Date, g)
		if err != nil {
			return nil, err
		}
		if pos, ok := index[key]; ok {
			buckets[pos].Total = buckets[pos].Total.Add(expenses[i].Amount)
			continue
		}
		index[key] = len(buckets)
		buckets = append(buckets, Bucket{Key: key, Label: label, Total: expenses[i].Amount})
	}

	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Key < buckets[j].Key })
	return buckets, nil
}

// GroupByDay groups expenses by their exact date, newest date first.
// Within a group, expenses keep their input order.
func GroupByDay(expenses []models.Expense) []DayGroup {
	index := make(map[string]int)
	var groups []DayGroup

	for i := range expenses {
		date := expenses[i].Date
		pos, ok := index[date]
		if !ok {
			pos = len(groups)
			index[date] = pos
			groups = append(groups, DayGroup{Date: date, Total: decimal.Zero})
		}
		groups[pos].Total = groups[pos].Total.Add(expenses[i].Amount)
		groups[pos].Expenses = append(groups[pos].Expenses, expenses[i])
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].Date > groups[j].Date })
	return groups
}

// Summarize totals spend for the day, week (Monday start) and month containing now.
// Dates are compared as fixed-width strings.
func Summarize(expenses []models.Expense, now time.Time) Summary {
	today := FormatDate(now)
	weekStart := FormatDate(WeekStart(now))
	monthStart := FormatDate(MonthStart(now))

	s := Summary{Today: decimal.Zero, ThisWeek: decimal.Zero, ThisMonth: decimal.Zero}
	for i := range expenses {
		date, amount := expenses[i].Date, expenses[i].Amount
		if date == today {
			s.Today = s.Today.Add(amount)
		}
		if date >= weekStart {
			s.ThisWeek = s.ThisWeek.Add(amount)
		}
		if date >= monthStart {
			s.ThisMonth = s.ThisMonth.Add(amount)
		}
	}
	return s
}

// Recent returns at most n expenses from the front of an already ordered list.
func Recent(expenses []models.Expense, n int) []models.Expense {
	if n <= 0 {
		return nil
	}
	if len(expenses) < n {
		n = len(expenses)
	}
	out := make([]models.Expense, n)
	copy(out, expenses[:n])
	return out
}

// Total sums every amount in the list.
func Total(expenses []models.Expense) decimal.Decimal {
	total := decimal.Zero
	for i := range expenses {
		total = total.Add(expenses[i].Amount)
	}
	return total
}
