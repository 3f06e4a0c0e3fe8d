package web

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"gitlab.com/yelinaung/expense-tracker/internal/logger"
)

type suggestInput struct {
	Description string `json:"description"`
}

func (s *Server) suggestCategory(c *fiber.Ctx) error {
	if s.suggester == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{
			"error": "Category suggestions are not enabled",
		})
	}

	var input suggestInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if strings.TrimSpace(input.Description) == "" {
		return badRequest(c, "Description is required")
	}

	categories, err := s.categories.List(c.UserContext())
	if err != nil {
		return s.storeFailure(c, err, "Failed to load categories")
	}
	if len(categories) == 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "Create a category first",
		})
	}

	names := make([]string, 0, len(categories))
	for _, cat := range categories {
		names = append(names, cat.Name)
	}

	suggestion, err := s.suggester.SuggestCategory(c.UserContext(), input.Description, names)
	if err != nil {
		logger.Log.Warn().Err(err).
			Str("description", logger.SanitizeDescription(input.Description)).
			Msg("Category suggestion failed")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Failed to suggest category",
		})
	}

	for _, cat := range categories {
		if cat.Name == suggestion.Category {
			return c.JSON(fiber.Map{
				"category":   cat,
				"confidence": suggestion.Confidence,
				"reasoning":  suggestion.Reasoning,
			})
		}
	}

	return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
		"error": "Failed to suggest category",
	})
}
