package memory

import (
	"context"
	"fmt"
	"sort"

	"toolrent-backend/internal/domain"
)

type customerRepository struct {
	a access
}

func (r *customerRepository) Create(ctx context.Context, c *domain.Customer) error {
	return r.a.write(func(s *state) error {
		for _, existing := range s.customers {
			if existing.Rut == c.Rut {
				return fmt.Errorf("%w: rut %q already registered", domain.ErrValidation, c.Rut)
			}
		}
		s.nextCustomerID++
		c.ID = s.nextCustomerID
		c.CreatedAt = r.a.now()
		c.UpdatedAt = c.CreatedAt
		s.customers[c.ID] = *c
		return nil
	})
}

func (r *customerRepository) GetOrCreateByRut(ctx context.Context, c *domain.Customer) (*domain.Customer, error) {
	var out *domain.Customer
	err := r.a.write(func(s *state) error {
		for _, existing := range s.customers {
			if existing.Rut == c.Rut {
				out = &existing
				return nil
			}
		}
		s.nextCustomerID++
		c.ID = s.nextCustomerID
		c.CreatedAt = r.a.now()
		c.UpdatedAt = c.CreatedAt
		s.customers[c.ID] = *c
		created := *c
		out = &created
		return nil
	})
	return out, err
}

func (r *customerRepository) GetByID(ctx context.Context, id int32) (*domain.Customer, error) {
	var out *domain.Customer
	err := r.a.read(func(s *state) error {
		c, ok := s.customers[id]
		if !ok {
			return fmt.Errorf("%w: customer %d", domain.ErrNotFound, id)
		}
		out = &c
		return nil
	})
	return out, err
}

func (r *customerRepository) GetByRut(ctx context.Context, rut string) (*domain.Customer, error) {
	var out *domain.Customer
	err := r.a.read(func(s *state) error {
		for _, c := range s.customers {
			if c.Rut == rut {
				c := c
				out = &c
				return nil
			}
		}
		return fmt.Errorf("%w: customer with rut %q", domain.ErrNotFound, rut)
	})
	return out, err
}

func (r *customerRepository) List(ctx context.Context) ([]domain.Customer, error) {
	var out []domain.Customer
	err := r.a.read(func(s *state) error {
		for _, c := range s.customers {
			out = append(out, c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *customerRepository) UpdateStatus(ctx context.Context, id int32, status domain.CustomerStatus) error {
	return r.a.write(func(s *state) error {
		c, ok := s.customers[id]
		if !ok {
			return fmt.Errorf("%w: customer %d", domain.ErrNotFound, id)
		}
		c.Status = status
		c.UpdatedAt = r.a.now()
		s.customers[id] = c
		return nil
	})
}
