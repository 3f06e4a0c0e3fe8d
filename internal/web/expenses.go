package web

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/expense-tracker/internal/analytics"
	"gitlab.com/yelinaung/expense-tracker/internal/models"
)

type expenseInput struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	CategoryID  *string         `json:"category_id"`
	Date        string          `json:"date"`
}

// expensePatchInput keeps category_id raw so an explicit null can clear it.
type expensePatchInput struct {
	Amount      *decimal.Decimal `json:"amount"`
	Description *string          `json:"description"`
	CategoryID  json.RawMessage  `json:"category_id"`
	Date        *string          `json:"date"`
}

type dayGroupView struct {
	Date     string           `json:"date"`
	Label    string           `json:"label"`
	Total    decimal.Decimal  `json:"total"`
	Expenses []models.Expense `json:"expenses"`
}

// filterFromQuery reads start, end and category_id. An absent category means all.
func filterFromQuery(c *fiber.Ctx) (models.ExpenseFilter, string) {
	filter := models.ExpenseFilter{
		StartDate:  strings.TrimSpace(c.Query("start")),
		EndDate:    strings.TrimSpace(c.Query("end")),
		CategoryID: strings.TrimSpace(c.Query("category_id")),
	}
	if filter.CategoryID != "" && !validID(filter.CategoryID) {
		return filter, "Invalid category ID"
	}
	if err := filter.Validate(); err != nil {
		return filter, err.Error()
	}
	return filter, ""
}

func normalizeCategoryID(id *string) (*string, bool) {
	if id == nil {
		return nil, true
	}
	trimmed := strings.TrimSpace(*id)
	if trimmed == "" {
		return nil, true
	}
	if !validID(trimmed) {
		return nil, false
	}
	return &trimmed, true
}

func (s *Server) listExpenses(c *fiber.Ctx) error {
	filter, msg := filterFromQuery(c)
	if msg != "" {
		return badRequest(c, msg)
	}

	expenses, err := s.expenses.List(c.UserContext(), filter)
	if err != nil {
		return s.storeFailure(c, err, "Failed to load expenses")
	}
	if expenses == nil {
		expenses = []models.Expense{}
	}

	now := s.now()
	groups := make([]dayGroupView, 0)
	for _, g := range analytics.GroupByDay(expenses) {
		groups = append(groups, dayGroupView{
			Date:     g.Date,
			Label:    analytics.DayLabel(g.Date, now),
			Total:    g.Total,
			Expenses: g.Expenses,
		})
	}

	return c.JSON(fiber.Map{
		"expenses": expenses,
		"groups":   groups,
		"total":    analytics.Total(expenses),
	})
}

func (s *Server) createExpense(c *fiber.Ctx) error {
	var input expenseInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Invalid request body")
	}

	// Amount is checked here as well so a bad submit never reaches the store.
	if err := models.ValidateAmount(input.Amount); err != nil {
		return badRequest(c, err.Error())
	}

	categoryID, ok := normalizeCategoryID(input.CategoryID)
	if !ok {
		return badRequest(c, "Invalid category ID")
	}

	date := strings.TrimSpace(input.Date)
	if date == "" {
		date = analytics.FormatDate(s.now())
	}

	expense, err := s.expenses.Create(c.UserContext(), models.NewExpense{
		Amount:      input.Amount,
		Description: strings.TrimSpace(input.Description),
		CategoryID:  categoryID,
		Date:        date,
	})
	if err != nil {
		return s.storeFailure(c, err, "Failed to save expense")
	}

	return c.Status(fiber.StatusCreated).JSON(expense)
}

func (s *Server) updateExpense(c *fiber.Ctx) error {
	id := c.Params("id")
	if !validID(id) {
		return badRequest(c, "Invalid expense ID")
	}

	var input expensePatchInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Invalid request body")
	}

	patch := models.ExpensePatch{
		Amount:      input.Amount,
		Description: input.Description,
		Date:        input.Date,
	}
	if len(input.CategoryID) > 0 {
		patch.SetCategory = true
		if string(input.CategoryID) != "null" {
			var raw string
			if err := json.Unmarshal(input.CategoryID, &raw); err != nil {
				return badRequest(c, "Invalid category ID")
			}
			categoryID, ok := normalizeCategoryID(&raw)
			if !ok {
				return badRequest(c, "Invalid category ID")
			}
			patch.CategoryID = categoryID
		}
	}

	if patch.IsEmpty() {
		return badRequest(c, "No fields to update")
	}

	expense, err := s.expenses.Update(c.UserContext(), id, patch)
	if err != nil {
		return s.storeFailure(c, err, "Failed to save expense")
	}

	return c.JSON(expense)
}

func (s *Server) deleteExpense(c *fiber.Ctx) error {
	id := c.Params("id")
	if !validID(id) {
		return badRequest(c, "Invalid expense ID")
	}

	if err := s.expenses.Delete(c.UserContext(), id); err != nil {
		return s.storeFailure(c, err, "Failed to delete expense")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
