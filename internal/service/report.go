package service

import (
	"context"
	"time"

	"toolrent-backend/internal/domain"
	"toolrent-backend/internal/repository"
)

type reportService struct {
	store repository.Store
	opts  options
}

func NewReportService(store repository.Store, opts ...Option) ReportService {
	return &reportService{
		store: store,
		opts:  buildOptions(opts),
	}
}

func checkRange(from, to time.Time) error {
	if from.After(to) {
		return validationError("range start %s is after end %s", from.Format(time.RFC3339), to.Format(time.RFC3339))
	}
	return nil
}

// ActiveLoans lists unreturned loans taken out within [from, to], soonest
// due first.
func (s *reportService) ActiveLoans(ctx context.Context, from, to time.Time) ([]domain.Loan, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	return s.store.Repos().Reports.ActiveLoans(ctx, from, to)
}

func (s *reportService) OverdueCustomers(ctx context.Context) ([]domain.Customer, error) {
	return s.store.Repos().Reports.OverdueCustomers(ctx, s.opts.now())
}

// TopTools ranks groups by loans taken out within [from, to]. Ties go to
// the lower group id.
func (s *reportService) TopTools(ctx context.Context, from, to time.Time) ([]domain.ToolLoanCount, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	return s.store.Repos().Reports.TopTools(ctx, from, to)
}
