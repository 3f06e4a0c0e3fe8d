// Package repository provides database access for domain entities.
package repository

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"gitlab.com/yelinaung/expense-tracker/internal/database"
	"gitlab.com/yelinaung/expense-tracker/internal/models"
)

// ErrStoreOperation is the single error kind for any failed store call.
// Network failures, constraint violations and missing rows are not told apart.
var ErrStoreOperation = errors.New("store operation failed")

const meterName = "gitlab.com/yelinaung/expense-tracker/internal/repository"

var storeOps = newStoreOpsCounter()

func newStoreOpsCounter() metric.Int64Counter {
	c, err := otel.Meter(meterName).Int64Counter("store.operations",
		metric.WithDescription("Data access operations by outcome"),
	)
	if err != nil {
		c, _ = noop.NewMeterProvider().Meter(meterName).Int64Counter("store.operations")
	}
	return c
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case models.IsValidationError(err):
		return "invalid"
	case errors.Is(err, database.ErrNotConfigured):
		return "not_configured"
	default:
		return "error"
	}
}

func record(ctx context.Context, operation string, err error) {
	storeOps.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcomeOf(err)),
	))
}

// storeErr wraps a store failure so callers can match ErrStoreOperation
// while keeping the underlying cause.
func storeErr(action string, err error) error {
	return fmt.Errorf("%w: failed to %s: %w", ErrStoreOperation, action, err)
}

// notConfigured is returned without touching the store.
func notConfigured(action string) error {
	return storeErr(action, database.ErrNotConfigured)
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
