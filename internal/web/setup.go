package web

import (
	"github.com/gofiber/fiber/v2"
)

// SetupContent is the instructional content shown while the store is not configured.
type SetupContent struct {
	Configured bool     `json:"configured"`
	Title      string   `json:"title"`
	Missing    []string `json:"missing,omitempty"`
	Steps      []string `json:"steps,omitempty"`
}

func (s *Server) setupContent() SetupContent {
	if s.categories.Ready() && s.expenses.Ready() {
		return SetupContent{Configured: true, Title: "Store connected"}
	}
	return SetupContent{
		Configured: false,
		Title:      "Connect your database",
		Missing:    s.missing,
		Steps: []string{
			"Create a PostgreSQL database for the tracker.",
			"Set STORE_URL to its connection URL and STORE_API_KEY to its access key, in the environment or a .env file.",
			"Run `expense-tracker migrate` to create the categories and expenses tables.",
			"Optionally run `expense-tracker seed` to add starter categories.",
			"Restart `expense-tracker serve`.",
		},
	}
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":      "ok",
		"store_ready": s.categories.Ready() && s.expenses.Ready(),
	})
}

func (s *Server) setup(c *fiber.Ctx) error {
	return c.JSON(s.setupContent())
}
