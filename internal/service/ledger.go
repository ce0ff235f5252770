package service

import (
	"context"
	"fmt"

	"toolrent-backend/internal/domain"
	"toolrent-backend/internal/logger"
	"toolrent-backend/internal/repository"
)

type ledgerService struct {
	store repository.Store
}

func NewLedgerService(store repository.Store) LedgerService {
	return &ledgerService{store: store}
}

// List returns the entries matching filter in the order they were written.
func (s *ledgerService) List(ctx context.Context, filter domain.KardexFilter) ([]domain.KardexMovement, error) {
	const method = "ledgerService.List"
	logger.EnterMethod(method)

	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		err := fmt.Errorf("%w: range start %s is after end %s", domain.ErrValidation, filter.From, filter.To)
		logger.ExitMethodRejected(method, err)
		return nil, err
	}

	movements, err := s.store.Repos().Kardex.List(ctx, filter)
	if err != nil {
		logger.ExitMethodWithError(method, err)
		return nil, err
	}

	logger.ExitMethod(method, "count", len(movements))
	return movements, nil
}
