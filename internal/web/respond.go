package web

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"gitlab.com/yelinaung/expense-tracker/internal/database"
	"gitlab.com/yelinaung/expense-tracker/internal/logger"
	"gitlab.com/yelinaung/expense-tracker/internal/models"
)

// storeFailure maps a data access error to a response. Validation errors are
// reported as-is; every store failure gets the action-named message.
func (s *Server) storeFailure(c *fiber.Ctx, err error, action string) error {
	switch {
	case models.IsValidationError(err):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, database.ErrNotConfigured):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": action,
			"setup": s.setupContent(),
		})
	default:
		logger.Log.Error().Err(err).Str("action", action).Msg("Store operation failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": action,
		})
	}
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": message,
	})
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
