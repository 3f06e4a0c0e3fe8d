package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"gitlab.com/yelinaung/expense-tracker/internal/models"
)

// ExpensesCSV writes expenses as CSV in the order given.
func ExpensesCSV(expenses []models.Expense) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{"ID", "Date", "Amount", "Description", "Category"}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i := range expenses {
		categoryName := models.UncategorizedName
		if expenses[i].Category != nil {
			categoryName = expenses[i].Category.Name
		}

		row := []string{
			expenses[i].ID,
			expenses[i].Date,
			expenses[i].Amount.StringFixed(2),
			expenses[i].Description,
			categoryName,
		}

		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportFilename names a CSV export, e.g. "expenses_2024-01-01_2024-01-31.csv".
func ExportFilename(filter models.ExpenseFilter, now time.Time) string {
	switch {
	case filter.StartDate != "" && filter.EndDate != "":
		return fmt.Sprintf("expenses_%s_%s.csv", filter.StartDate, filter.EndDate)
	case filter.StartDate != "":
		return fmt.Sprintf("expenses_from_%s.csv", filter.StartDate)
	default:
		return fmt.Sprintf("expenses_%s.csv", now.Format("2006-01-02"))
	}
}

// ChartFilename names a chart image, e.g. "chart_weekly_2024-01-31.png".
func ChartFilename(kind string, now time.Time) string {
	return fmt.Sprintf("chart_%s_%s.png", kind, now.Format("2006-01-02"))
}
