// Package web serves the expense tracker's JSON API, chart images and CSV export.
package web

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"gitlab.com/yelinaung/expense-tracker/internal/gemini"
	"gitlab.com/yelinaung/expense-tracker/internal/logger"
	"gitlab.com/yelinaung/expense-tracker/internal/models"
)

// CategoryStore is the category half of the data access layer.
type CategoryStore interface {
	Ready() bool
	List(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, in models.NewCategory) (*models.Category, error)
	Update(ctx context.Context, id string, patch models.CategoryPatch) (*models.Category, error)
	Delete(ctx context.Context, id string) error
}

// ExpenseStore is the expense half of the data access layer.
type ExpenseStore interface {
	Ready() bool
	List(ctx context.Context, filter models.ExpenseFilter) ([]models.Expense, error)
	Create(ctx context.Context, in models.NewExpense) (*models.Expense, error)
	Update(ctx context.Context, id string, patch models.ExpensePatch) (*models.Expense, error)
	Delete(ctx context.Context, id string) error
}

// CategorySuggester picks a category name for an expense description.
type CategorySuggester interface {
	SuggestCategory(ctx context.Context, description string, names []string) (*gemini.CategorySuggestion, error)
}

// Options configures optional parts of the server.
type Options struct {
	// CORSOrigins is a comma separated list of allowed origins.
	CORSOrigins string
	// MissingSettings names the store variables that are not set.
	MissingSettings []string
	// Suggester enables category suggestions when non-nil.
	Suggester CategorySuggester
	// MutationsPerMinute limits writes per client IP. Zero uses the default.
	MutationsPerMinute int
	// Now overrides the clock, for tests.
	Now func() time.Time
}

const defaultMutationsPerMinute = 120

// Server wires the HTTP routes to the data access layer.
type Server struct {
	app        *fiber.App
	categories CategoryStore
	expenses   ExpenseStore
	suggester  CategorySuggester
	missing    []string
	now        func() time.Time
}

// New builds the fiber app and registers all routes.
func New(categories CategoryStore, expenses ExpenseStore, opts Options) *Server {
	s := &Server{
		categories: categories,
		expenses:   expenses,
		suggester:  opts.Suggester,
		missing:    opts.MissingSettings,
		now:        opts.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "Expense Tracker",
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})

	origins := opts.CORSOrigins
	if origins == "" {
		origins = "*"
	}
	perMinute := opts.MutationsPerMinute
	if perMinute <= 0 {
		perMinute = defaultMutationsPerMinute
	}

	s.app.Use(recover.New())
	s.app.Use(requestLogger())
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, PATCH, DELETE, OPTIONS",
	}))

	api := s.app.Group("/api")
	api.Use(limiter.New(limiter.Config{
		Max:        perMinute,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			switch c.Method() {
			case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
				return true
			}
			return false
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many changes. Please try again later.",
			})
		},
	}))

	api.Get("/health", s.health)
	api.Get("/setup", s.setup)

	data := api.Group("", s.requireStore)

	categoryRoutes := data.Group("/categories")
	categoryRoutes.Get("/", s.listCategories)
	categoryRoutes.Post("/", s.createCategory)
	categoryRoutes.Patch("/:id", s.updateCategory)
	categoryRoutes.Delete("/:id", s.deleteCategory)

	expenseRoutes := data.Group("/expenses")
	expenseRoutes.Get("/", s.listExpenses)
	expenseRoutes.Post("/", s.createExpense)
	expenseRoutes.Post("/suggest-category", s.suggestCategory)
	expenseRoutes.Patch("/:id", s.updateExpense)
	expenseRoutes.Delete("/:id", s.deleteExpense)

	data.Get("/analytics", s.analyticsView)
	data.Get("/charts/category.png", s.categoryChart)
	data.Get("/charts/over-time.png", s.overTimeChart)
	data.Get("/export.csv", s.exportCSV)

	return s
}

// App exposes the fiber app, mainly for app.Test in tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves HTTP on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	logger.Log.Info().Str("addr", addr).Msg("HTTP server listening")
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	} else {
		logger.Log.Error().Err(err).Str("path", c.Path()).Msg("Unhandled request error")
	}

	return c.Status(code).JSON(fiber.Map{
		"error": message,
	})
}
