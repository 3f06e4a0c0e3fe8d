package web

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"gitlab.com/yelinaung/expense-tracker/internal/analytics"
	"gitlab.com/yelinaung/expense-tracker/internal/models"
	"gitlab.com/yelinaung/expense-tracker/internal/report"
)

func granularityFromQuery(c *fiber.Ctx) (analytics.Granularity, error) {
	raw := c.Query("granularity")
	if raw == "" {
		return analytics.Daily, nil
	}
	return analytics.ParseGranularity(raw)
}

// analyticsView returns everything the analytics view shows in one response.
func (s *Server) analyticsView(c *fiber.Ctx) error {
	granularity, err := granularityFromQuery(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	expenses, err := s.expenses.List(c.UserContext(), models.ExpenseFilter{})
	if err != nil {
		return s.storeFailure(c, err, "Failed to load analytics")
	}

	overTime, err := analytics.OverTime(expenses, granularity)
	if err != nil {
		return s.storeFailure(c, err, "Failed to load analytics")
	}

	byCategory := analytics.ByCategory(expenses)
	if byCategory == nil {
		byCategory = []analytics.CategoryTotal{}
	}
	if overTime == nil {
		overTime = []analytics.Bucket{}
	}

	return c.JSON(fiber.Map{
		"granularity": granularity,
		"summary":     analytics.Summarize(expenses, s.now()),
		"by_category": byCategory,
		"over_time":   overTime,
		"recent":      analytics.Recent(expenses, analytics.RecentLimit),
		"count":       len(expenses),
	})
}

func (s *Server) sendChart(c *fiber.Ctx, png []byte, err error, kind string) error {
	if errors.Is(err, report.ErrNoData) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No expenses to chart",
		})
	}
	if err != nil {
		return s.storeFailure(c, err, "Failed to render chart")
	}

	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s"`, report.ChartFilename(kind, s.now())))
	c.Type("png")
	return c.Send(png)
}

func (s *Server) categoryChart(c *fiber.Ctx) error {
	filter, msg := filterFromQuery(c)
	if msg != "" {
		return badRequest(c, msg)
	}

	expenses, err := s.expenses.List(c.UserContext(), filter)
	if err != nil {
		return s.storeFailure(c, err, "Failed to load expenses")
	}

	png, err := report.CategoryPieChart(analytics.ByCategory(expenses), "Spending by Category")
	return s.sendChart(c, png, err, "category")
}

func (s *Server) overTimeChart(c *fiber.Ctx) error {
	granularity, err := granularityFromQuery(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	filter, msg := filterFromQuery(c)
	if msg != "" {
		return badRequest(c, msg)
	}

	expenses, err := s.expenses.List(c.UserContext(), filter)
	if err != nil {
		return s.storeFailure(c, err, "Failed to load expenses")
	}

	buckets, err := analytics.OverTime(expenses, granularity)
	if err != nil {
		return s.storeFailure(c, err, "Failed to render chart")
	}

	png, err := report.OverTimeBarChart(buckets, report.OverTimeTitle(granularity))
	return s.sendChart(c, png, err, string(granularity))
}

func (s *Server) exportCSV(c *fiber.Ctx) error {
	filter, msg := filterFromQuery(c)
	if msg != "" {
		return badRequest(c, msg)
	}

	expenses, err := s.expenses.List(c.UserContext(), filter)
	if err != nil {
		return s.storeFailure(c, err, "Failed to export expenses")
	}

	data, err := report.ExpensesCSV(expenses)
	if err != nil {
		return s.storeFailure(c, err, "Failed to export expenses")
	}

	c.Attachment(report.ExportFilename(filter, s.now()))
	c.Type("csv")
	return c.Send(data)
}
