package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"toolrent-backend/internal/domain"
)

type loanRepository struct {
	a access
}

func (r *loanRepository) Create(ctx context.Context, l *domain.Loan) error {
	return r.a.write(func(s *state) error {
		if _, ok := s.customers[l.CustomerID]; !ok {
			return fmt.Errorf("%w: customer %d", domain.ErrNotFound, l.CustomerID)
		}
		if _, ok := s.units[l.UnitID]; !ok {
			return fmt.Errorf("%w: tool unit %d", domain.ErrNotFound, l.UnitID)
		}
		s.nextLoanID++
		l.ID = s.nextLoanID
		s.loans[l.ID] = *l
		return nil
	})
}

func (r *loanRepository) GetByID(ctx context.Context, id int32) (*domain.Loan, error) {
	var out *domain.Loan
	err := r.a.read(func(s *state) error {
		l, ok := s.loans[id]
		if !ok {
			return fmt.Errorf("%w: loan %d", domain.ErrNotFound, id)
		}
		out = &l
		return nil
	})
	return out, err
}

func (r *loanRepository) GetForUpdate(ctx context.Context, id int32) (*domain.Loan, error) {
	return r.GetByID(ctx, id)
}

func (r *loanRepository) MarkReturned(ctx context.Context, l *domain.Loan) error {
	return r.a.write(func(s *state) error {
		stored, ok := s.loans[l.ID]
		if !ok {
			return fmt.Errorf("%w: loan %d", domain.ErrNotFound, l.ID)
		}
		if !stored.Active() {
			return fmt.Errorf("%w: loan %d already returned", domain.ErrInvalidState, l.ID)
		}
		stored.ReturnDate = l.ReturnDate
		stored.FineAmount = l.FineAmount
		stored.DamageCharge = l.DamageCharge
		s.loans[l.ID] = stored
		return nil
	})
}

type reportRepository struct {
	a access
}

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}

func (r *reportRepository) ActiveLoans(ctx context.Context, from, to time.Time) ([]domain.Loan, error) {
	var out []domain.Loan
	err := r.a.read(func(s *state) error {
		for _, l := range s.loans {
			if l.Active() && inRange(l.LoanDate, from, to) {
				out = append(out, l)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].DueDate.Before(out[j].DueDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

func (r *reportRepository) OverdueCustomers(ctx context.Context, now time.Time) ([]domain.Customer, error) {
	var out []domain.Customer
	err := r.a.read(func(s *state) error {
		seen := make(map[int32]bool)
		for _, l := range s.loans {
			if !l.Overdue(now) || seen[l.CustomerID] {
				continue
			}
			seen[l.CustomerID] = true
			if c, ok := s.customers[l.CustomerID]; ok {
				out = append(out, c)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *reportRepository) TopTools(ctx context.Context, from, to time.Time) ([]domain.ToolLoanCount, error) {
	var out []domain.ToolLoanCount
	err := r.a.read(func(s *state) error {
		counts := make(map[int32]int)
		for _, l := range s.loans {
			if inRange(l.LoanDate, from, to) {
				counts[l.GroupID]++
			}
		}
		for groupID, n := range counts {
			if g, ok := s.groups[groupID]; ok {
				out = append(out, domain.ToolLoanCount{Group: g, Count: n})
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Group.ID < out[j].Group.ID
	})
	return out, err
}
