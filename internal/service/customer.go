package service

import (
	"context"
	"errors"
	"strings"

	"toolrent-backend/internal/domain"
	"toolrent-backend/internal/logger"
	"toolrent-backend/internal/repository"
)

type customerService struct {
	store repository.Store
}

func NewCustomerService(store repository.Store) CustomerService {
	return &customerService{store: store}
}

func (s *customerService) RegisterCustomer(ctx context.Context, req RegisterCustomerRequest) (*domain.Customer, error) {
	const method = "customerService.RegisterCustomer"
	logger.EnterMethod(method, "rut", req.Rut)

	c := &domain.Customer{
		Name:   strings.TrimSpace(req.Name),
		Rut:    strings.TrimSpace(req.Rut),
		Phone:  strings.TrimSpace(req.Phone),
		Email:  strings.TrimSpace(req.Email),
		Status: domain.CustomerStatusActive,
	}
	if err := validateCustomer(c); err != nil {
		exitWithError(method, "register_customer", err)
		return nil, err
	}

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		_, err := tx.Customers.GetByRut(ctx, c.Rut)
		if err == nil {
			return validationError("a customer with rut %q already exists", c.Rut)
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return tx.Customers.Create(ctx, c)
	})
	if err != nil {
		exitWithError(method, "register_customer", err, "rut", c.Rut)
		return nil, err
	}

	logger.ExitMethod(method, "customerID", c.ID)
	return c, nil
}

func validateCustomer(c *domain.Customer) error {
	switch {
	case c.Name == "":
		return validationError("name is required")
	case c.Rut == "":
		return validationError("rut is required")
	case c.Phone == "":
		return validationError("phone is required")
	case c.Email == "":
		return validationError("email is required")
	case c.Rut == domain.SystemCustomerRut:
		return validationError("rut %q is reserved", c.Rut)
	}
	return nil
}

func (s *customerService) GetCustomer(ctx context.Context, id int32) (*domain.Customer, error) {
	return s.store.Repos().Customers.GetByID(ctx, id)
}

func (s *customerService) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return s.store.Repos().Customers.List(ctx)
}

func (s *customerService) GetOrCreateSystemCustomer(ctx context.Context) (*domain.Customer, error) {
	var c *domain.Customer
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		var err error
		c, err = systemCustomer(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ChangeStatus sets the customer's status. Setting the current status again
// is accepted and re-persisted.
func (s *customerService) ChangeStatus(ctx context.Context, id int32, status domain.CustomerStatus) (*domain.Customer, error) {
	const method = "customerService.ChangeStatus"
	logger.EnterMethod(method, "customerID", id, "status", status)

	if !status.Valid() {
		err := validationError("unknown customer status %q", status)
		exitWithError(method, "change_customer_status", err)
		return nil, err
	}

	var c *domain.Customer
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		if err := tx.Customers.UpdateStatus(ctx, id, status); err != nil {
			return err
		}
		var err error
		c, err = tx.Customers.GetByID(ctx, id)
		return err
	})
	if err != nil {
		exitWithError(method, "change_customer_status", err, "customerID", id)
		return nil, err
	}

	logger.ExitMethod(method, "customerID", id)
	return c, nil
}
