package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"toolrent-backend/internal/domain"
	"toolrent-backend/internal/logger"
	"toolrent-backend/internal/metrics"
	"toolrent-backend/internal/repository"

	"github.com/google/uuid"
)

const anonymousActor = "anonymous"

// beginOperation tags ctx with a fresh correlation id shared by every
// kardex entry the operation writes.
func beginOperation(ctx context.Context) (context.Context, uuid.UUID) {
	id := uuid.New()
	return logger.WithCorrelationID(ctx, id), id
}

func actorName(actor string) string {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return anonymousActor
	}
	return actor
}

func detail(actor, format string, args ...any) string {
	return fmt.Sprintf(format, args...) + " - User: " + actorName(actor)
}

// isBusinessError reports whether err is an expected rejection rather than
// a fault.
func isBusinessError(err error) bool {
	return errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrNoAvailability) ||
		errors.Is(err, domain.ErrInvalidTransition) ||
		errors.Is(err, domain.ErrInvalidState)
}

func exitWithError(method, operation string, err error, args ...any) {
	metrics.OperationFailures.WithLabelValues(operation, metrics.Reason(err)).Inc()
	if isBusinessError(err) {
		logger.ExitMethodRejected(method, err, args...)
		return
	}
	logger.ExitMethodWithError(method, err, args...)
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{domain.ErrValidation}, args...)...)
}

// systemCustomer returns the reserved system customer, creating it on first
// use inside the caller's unit of work.
func systemCustomer(ctx context.Context, tx repository.Repositories) (*domain.Customer, error) {
	c, err := tx.Customers.GetByRut(ctx, domain.SystemCustomerRut)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	c, err = tx.Customers.GetOrCreateByRut(ctx, domain.NewSystemCustomer())
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "System customer ready", "customerID", c.ID)
	return c, nil
}

// record appends one kardex entry for unit. A nil customer attributes the
// entry to the system customer.
func (o options) record(ctx context.Context, tx repository.Repositories, correlationID uuid.UUID,
	movement domain.MovementType, unit domain.ToolUnit, customer *domain.Customer, text string) error {
	if customer == nil {
		sys, err := systemCustomer(ctx, tx)
		if err != nil {
			return err
		}
		customer = sys
	}
	return tx.Kardex.Append(ctx, &domain.KardexMovement{
		GroupID:       unit.GroupID,
		UnitID:        unit.ID,
		CustomerID:    customer.ID,
		Type:          movement,
		OccurredAt:    o.now(),
		Detail:        text,
		CorrelationID: correlationID,
	})
}
