package memory

import (
	"context"
	"fmt"

	"toolrent-backend/internal/domain"
)

type kardexRepository struct {
	a access
}

func (r *kardexRepository) Append(ctx context.Context, m *domain.KardexMovement) error {
	return r.a.write(func(s *state) error {
		if _, ok := s.units[m.UnitID]; !ok {
			return fmt.Errorf("%w: tool unit %d", domain.ErrNotFound, m.UnitID)
		}
		if _, ok := s.customers[m.CustomerID]; !ok {
			return fmt.Errorf("%w: customer %d", domain.ErrNotFound, m.CustomerID)
		}
		s.nextKardexID++
		m.ID = s.nextKardexID
		if m.OccurredAt.IsZero() {
			m.OccurredAt = r.a.now()
		}
		s.kardex = append(s.kardex, *m)
		return nil
	})
}

func (r *kardexRepository) List(ctx context.Context, filter domain.KardexFilter) ([]domain.KardexMovement, error) {
	var out []domain.KardexMovement
	err := r.a.read(func(s *state) error {
		for _, m := range s.kardex {
			if filter.Matches(m) {
				out = append(out, m)
			}
		}
		return nil
	})
	return out, err
}
