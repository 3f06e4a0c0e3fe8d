//go:build ignore
// +build ignore

package main

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/expense-tracker/internal/analytics"
	"gitlab.com/yelinaung/expense-tracker/internal/models"
	"gitlab.com/yelinaung/expense-tracker/internal/report"
)

func main() {
	expenses := []models.Expense{
		{Amount: decimal.NewFromFloat(150.50), Date: "2026-01-03", Category: &models.Category{Name: "Groceries", Color: "#10b981"}},
		{Amount: decimal.NewFromFloat(130.50), Date: "2026-01-09", Category: &models.Category{Name: "Dining Out", Color: "#f59e0b"}},
		{Amount: decimal.NewFromFloat(60.00), Date: "2026-01-14", Category: &models.Category{Name: "Transport", Color: "#3b82f6"}},
		{Amount: decimal.NewFromFloat(25.00), Date: "2026-01-20"},
		{Amount: decimal.NewFromFloat(120.00), Date: "2026-01-27", Category: &models.Category{Name: "Utilities", Color: "#8b5cf6"}},
	}

	pie, err := report.CategoryPieChart(analytics.ByCategory(expenses), "January 2026")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	write("category.png", pie)

	buckets, err := analytics.OverTime(expenses, analytics.Weekly)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	bars, err := report.OverTimeBarChart(buckets, report.OverTimeTitle(analytics.Weekly))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	write("weekly.png", bars)

	fmt.Println("✓ Created category.png and weekly.png - example expense charts")
}

func write(name string, data []byte) {
	if err := os.WriteFile(name, data, 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}
}
