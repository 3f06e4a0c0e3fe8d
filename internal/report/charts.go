// Package report renders expense summaries as PNG charts and CSV exports.
package report

import (
	"errors"
	"fmt"

	"github.com/go-analyze/charts"

	"gitlab.com/yelinaung/expense-tracker/internal/analytics"
	"gitlab.com/yelinaung/expense-tracker/internal/models"
)

// ErrNoData is returned when there is nothing to chart.
var ErrNoData = errors.New("no expenses to chart")

// CategoryPieChart renders a pie chart of spend per category.
// Returns PNG image as bytes.
func CategoryPieChart(totals []analytics.CategoryTotal, title string) ([]byte, error) {
	if len(totals) == 0 {
		return nil, ErrNoData
	}

	values := make([]float64, 0, len(totals))
	names := make([]string, 0, len(totals))
	for _, ct := range totals {
		values = append(values, ct.Total.InexactFloat64())
		names = append(names, ct.Name)
	}

	p, err := charts.PieRender(
		values,
		charts.TitleOptionFunc(charts.TitleOption{
			Text: title,
		}),
		charts.LegendLabelsOptionFunc(names),
		charts.ThemeOptionFunc(charts.GetDefaultTheme().WithSeriesColors(sliceColors(totals))),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return buf, nil
}

// sliceColors gives each pie slice its category color. Slices without a
// valid color keep the theme's color for that position.
func sliceColors(totals []analytics.CategoryTotal) []charts.Color {
	theme := charts.GetDefaultTheme()
	colors := make([]charts.Color, 0, len(totals))
	for i, ct := range totals {
		if models.ValidateColor(ct.Color) != nil {
			colors = append(colors, theme.GetSeriesColor(i))
			continue
		}
		colors = append(colors, charts.ParseColor(ct.Color))
	}
	return colors
}

// OverTimeBarChart renders a bar chart with one bar per time bucket.
// Returns PNG image as bytes.
func OverTimeBarChart(buckets []analytics.Bucket, title string) ([]byte, error) {
	if len(buckets) == 0 {
		return nil, ErrNoData
	}

	values := make([]float64, 0, len(buckets))
	labels := make([]string, 0, len(buckets))
	for _, b := range buckets {
		values = append(values, b.Total.InexactFloat64())
		labels = append(labels, b.Label)
	}

	p, err := charts.BarRender(
		[][]float64{values},
		charts.TitleOptionFunc(charts.TitleOption{
			Text: title,
		}),
		charts.XAxisLabelsOptionFunc(labels),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return buf, nil
}

// OverTimeTitle is the default title for the over-time chart.
func OverTimeTitle(g analytics.Granularity) string {
	switch g {
	case analytics.Weekly:
		return "Spending by Week"
	case analytics.Monthly:
		return "Spending by Month"
	default:
		return "Spending by Day"
	}
}
