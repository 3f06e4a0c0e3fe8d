package web

import (
	"github.com/gofiber/fiber/v2"

	"gitlab.com/yelinaung/expense-tracker/internal/models"
)

func (s *Server) listCategories(c *fiber.Ctx) error {
	categories, err := s.categories.List(c.UserContext())
	if err != nil {
		return s.storeFailure(c, err, "Failed to load categories")
	}
	if categories == nil {
		categories = []models.Category{}
	}

	return c.JSON(fiber.Map{
		"categories":    categories,
		"preset_colors": models.PresetColors,
	})
}

func (s *Server) createCategory(c *fiber.Ctx) error {
	var input models.NewCategory
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Invalid request body")
	}

	category, err := s.categories.Create(c.UserContext(), input)
	if err != nil {
		return s.storeFailure(c, err, "Failed to save category")
	}

	return c.Status(fiber.StatusCreated).JSON(category)
}

func (s *Server) updateCategory(c *fiber.Ctx) error {
	id := c.Params("id")
	if !validID(id) {
		return badRequest(c, "Invalid category ID")
	}

	var patch models.CategoryPatch
	if err := c.BodyParser(&patch); err != nil {
		return badRequest(c, "Invalid request body")
	}

	category, err := s.categories.Update(c.UserContext(), id, patch)
	if err != nil {
		return s.storeFailure(c, err, "Failed to save category")
	}

	return c.JSON(category)
}

// deleteCategory requires ?confirm=true because the category's expenses
// lose their category.
func (s *Server) deleteCategory(c *fiber.Ctx) error {
	id := c.Params("id")
	if !validID(id) {
		return badRequest(c, "Invalid category ID")
	}

	if !c.QueryBool("confirm", false) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":  "Deleting a category must be confirmed",
			"detail": "Expenses in this category will be kept and shown as " + models.UncategorizedName + ". Repeat the request with ?confirm=true.",
		})
	}

	if err := s.categories.Delete(c.UserContext(), id); err != nil {
		return s.storeFailure(c, err, "Failed to delete category")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
