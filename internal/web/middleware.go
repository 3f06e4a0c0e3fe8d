package web

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"gitlab.com/yelinaung/expense-tracker/internal/logger"
)

const tracerName = "gitlab.com/yelinaung/expense-tracker/internal/web"

// requestLogger logs each request and wraps it in a server span whose
// context is handed to handlers through c.UserContext.
func requestLogger() fiber.Handler {
	tracer := otel.Tracer(tracerName)

	return func(c *fiber.Ctx) error {
		start := time.Now()

		ctx, span := tracer.Start(c.UserContext(), c.Method()+" "+c.Path(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", c.Method()),
				attribute.String("url.path", c.Path()),
			),
		)
		defer span.End()
		c.SetUserContext(ctx)

		err := c.Next()
		if err != nil {
			// Let the error handler write the response so the status is final.
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		span.SetAttributes(attribute.Int("http.response.status_code", status))
		if status >= fiber.StatusInternalServerError {
			span.SetStatus(codes.Error, "server error")
		}

		event := logger.Log.Info()
		if status >= fiber.StatusInternalServerError {
			event = logger.Log.Error()
		} else if status >= fiber.StatusBadRequest {
			event = logger.Log.Warn()
		}
		event.
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("HTTP request")

		return nil
	}
}

// requireStore answers 503 with setup instructions while the store is not
// configured, so no store call is ever attempted.
func (s *Server) requireStore(c *fiber.Ctx) error {
	if s.categories.Ready() && s.expenses.Ready() {
		return c.Next()
	}
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": "Store is not configured",
		"setup": s.setupContent(),
	})
}
