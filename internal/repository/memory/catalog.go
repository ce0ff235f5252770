package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"toolrent-backend/internal/domain"

	"github.com/shopspring/decimal"
)

type groupRepository struct {
	a access
}

func (r *groupRepository) Create(ctx context.Context, g *domain.ToolGroup) error {
	return r.a.write(func(s *state) error {
		s.nextGroupID++
		g.ID = s.nextGroupID
		g.CreatedAt = r.a.now()
		stored := *g
		stored.Stock = nil
		s.groups[g.ID] = stored
		return nil
	})
}

func (r *groupRepository) GetByID(ctx context.Context, id int32) (*domain.ToolGroup, error) {
	var out *domain.ToolGroup
	err := r.a.read(func(s *state) error {
		g, ok := s.groups[id]
		if !ok {
			return fmt.Errorf("%w: tool group %d", domain.ErrNotFound, id)
		}
		out = &g
		return nil
	})
	return out, err
}

func (r *groupRepository) List(ctx context.Context) ([]domain.ToolGroup, error) {
	var out []domain.ToolGroup
	err := r.a.read(func(s *state) error {
		for _, g := range s.groups {
			out = append(out, g)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *groupRepository) UpdateReplacementValue(ctx context.Context, id int32, value decimal.Decimal) error {
	return r.a.write(func(s *state) error {
		g, ok := s.groups[id]
		if !ok {
			return fmt.Errorf("%w: tool group %d", domain.ErrNotFound, id)
		}
		g.ReplacementValue = value
		s.groups[id] = g
		return nil
	})
}

func (r *groupRepository) Deactivate(ctx context.Context, id int32, at time.Time) error {
	return r.a.write(func(s *state) error {
		g, ok := s.groups[id]
		if !ok {
			return fmt.Errorf("%w: tool group %d", domain.ErrNotFound, id)
		}
		if g.DeactivatedAt == nil {
			at := at.UTC()
			g.DeactivatedAt = &at
			s.groups[id] = g
		}
		return nil
	})
}

type unitRepository struct {
	a access
}

func (r *unitRepository) Create(ctx context.Context, u *domain.ToolUnit) error {
	return r.a.write(func(s *state) error {
		if _, ok := s.groups[u.GroupID]; !ok {
			return fmt.Errorf("%w: tool group %d", domain.ErrNotFound, u.GroupID)
		}
		s.nextUnitID++
		u.ID = s.nextUnitID
		u.CreatedAt = r.a.now()
		u.UpdatedAt = u.CreatedAt
		s.units[u.ID] = *u
		return nil
	})
}

func (r *unitRepository) GetByID(ctx context.Context, id int32) (*domain.ToolUnit, error) {
	var out *domain.ToolUnit
	err := r.a.read(func(s *state) error {
		u, ok := s.units[id]
		if !ok {
			return fmt.Errorf("%w: tool unit %d", domain.ErrNotFound, id)
		}
		out = &u
		return nil
	})
	return out, err
}

// GetForUpdate needs no lock here: units of work are already serialized.
func (r *unitRepository) GetForUpdate(ctx context.Context, id int32) (*domain.ToolUnit, error) {
	return r.GetByID(ctx, id)
}

func (r *unitRepository) Allocate(ctx context.Context, groupID int32) (*domain.ToolUnit, error) {
	var out *domain.ToolUnit
	err := r.a.write(func(s *state) error {
		var picked *domain.ToolUnit
		for _, u := range s.units {
			if u.GroupID != groupID || u.Status != domain.UnitStatusAvailable {
				continue
			}
			if picked == nil || u.ID < picked.ID {
				u := u
				picked = &u
			}
		}
		if picked == nil {
			return fmt.Errorf("%w: tool group %d", domain.ErrNoAvailability, groupID)
		}
		picked.Status = domain.UnitStatusLoaned
		picked.UpdatedAt = r.a.now()
		s.units[picked.ID] = *picked
		out = picked
		return nil
	})
	return out, err
}

func (r *unitRepository) UpdateStatus(ctx context.Context, id int32, status domain.UnitStatus) error {
	return r.a.write(func(s *state) error {
		u, ok := s.units[id]
		if !ok {
			return fmt.Errorf("%w: tool unit %d", domain.ErrNotFound, id)
		}
		u.Status = status
		u.UpdatedAt = r.a.now()
		s.units[id] = u
		return nil
	})
}

func (r *unitRepository) ListByGroup(ctx context.Context, groupID int32) ([]domain.ToolUnit, error) {
	return r.collect(groupID, nil, 0)
}

func (r *unitRepository) LockByStatus(ctx context.Context, groupID int32, statuses []domain.UnitStatus, limit int) ([]domain.ToolUnit, error) {
	return r.collect(groupID, statuses, limit)
}

func (r *unitRepository) collect(groupID int32, statuses []domain.UnitStatus, limit int) ([]domain.ToolUnit, error) {
	var out []domain.ToolUnit
	err := r.a.read(func(s *state) error {
		for _, u := range s.units {
			if u.GroupID == groupID && hasStatus(statuses, u.Status) {
				out = append(out, u)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

func hasStatus(statuses []domain.UnitStatus, status domain.UnitStatus) bool {
	if len(statuses) == 0 {
		return true
	}
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func (r *unitRepository) Summary(ctx context.Context, groupID int32) (domain.StockSummary, error) {
	var sum domain.StockSummary
	err := r.a.read(func(s *state) error {
		for _, u := range s.units {
			if u.GroupID == groupID {
				sum.Add(u.Status, 1)
			}
		}
		return nil
	})
	return sum, err
}
