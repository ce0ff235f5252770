package service

import (
	"context"
	"fmt"
	"strings"

	"toolrent-backend/internal/domain"
	"toolrent-backend/internal/logger"
	"toolrent-backend/internal/metrics"
	"toolrent-backend/internal/repository"

	"github.com/shopspring/decimal"
)

type catalogService struct {
	store repository.Store
	opts  options
}

func NewCatalogService(store repository.Store, opts ...Option) CatalogService {
	return &catalogService{
		store: store,
		opts:  buildOptions(opts),
	}
}

func (s *catalogService) RegisterGroup(ctx context.Context, req RegisterGroupRequest, actor string) (*domain.ToolGroup, error) {
	const method = "catalogService.RegisterGroup"
	logger.EnterMethod(method, "name", req.Name, "initialStock", req.InitialStock)

	if err := s.validateGroupRequest(req); err != nil {
		exitWithError(method, "register_group", err)
		return nil, err
	}

	fineRate := s.opts.houseFineRate
	if req.DailyFineRate != nil {
		fineRate = *req.DailyFineRate
	}
	group := &domain.ToolGroup{
		Name:             strings.TrimSpace(req.Name),
		Category:         strings.TrimSpace(req.Category),
		ReplacementValue: *req.ReplacementValue,
		Tariff: domain.Tariff{
			DailyRentalRate: req.DailyRentalRate,
			DailyFineRate:   fineRate,
		},
	}

	ctx, correlationID := beginOperation(ctx)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		if err := tx.Groups.Create(ctx, group); err != nil {
			return err
		}
		units, err := createUnits(ctx, tx, group.ID, req.InitialStock)
		if err != nil {
			return err
		}
		if len(units) > 0 {
			if err := s.opts.record(ctx, tx, correlationID, domain.MovementTypeRegistry, units[0], nil,
				detail(actor, "Initial stock registration: %d units", len(units))); err != nil {
				return err
			}
		}
		return attachStock(ctx, tx, group)
	})
	if err != nil {
		exitWithError(method, "register_group", err, "name", req.Name)
		return nil, err
	}

	if req.InitialStock > 0 {
		metrics.ObserveMovement(domain.MovementTypeRegistry)
	}
	logger.InfoContext(ctx, "Tool group registered", "groupID", group.ID, "units", req.InitialStock)
	logger.ExitMethod(method, "groupID", group.ID)
	return group, nil
}

func (s *catalogService) validateGroupRequest(req RegisterGroupRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return validationError("name is required")
	}
	if strings.TrimSpace(req.Category) == "" {
		return validationError("category is required")
	}
	if req.ReplacementValue == nil {
		return validationError("replacement value is required")
	}
	if req.InitialStock < 0 {
		return validationError("initial stock must not be negative, got %d", req.InitialStock)
	}
	if req.InitialStock > s.opts.maxUnits {
		return validationError("initial stock %d exceeds the limit of %d units per operation", req.InitialStock, s.opts.maxUnits)
	}
	return nil
}

func createUnits(ctx context.Context, tx repository.Repositories, groupID int32, n int) ([]domain.ToolUnit, error) {
	units := make([]domain.ToolUnit, 0, n)
	for i := 0; i < n; i++ {
		u := domain.ToolUnit{GroupID: groupID, Status: domain.UnitStatusAvailable}
		if err := tx.Units.Create(ctx, &u); err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, nil
}

func attachStock(ctx context.Context, tx repository.Repositories, group *domain.ToolGroup) error {
	sum, err := tx.Units.Summary(ctx, group.ID)
	if err != nil {
		return err
	}
	group.Stock = &sum
	return nil
}

func (s *catalogService) AllocateUnit(ctx context.Context, groupID int32) (*domain.ToolUnit, error) {
	const method = "catalogService.AllocateUnit"
	logger.EnterMethod(method, "groupID", groupID)

	var unit *domain.ToolUnit
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		var err error
		unit, err = allocateUnit(ctx, tx, groupID)
		return err
	})
	if err != nil {
		exitWithError(method, "allocate_unit", err, "groupID", groupID)
		return nil, err
	}

	logger.ExitMethod(method, "unitID", unit.ID)
	return unit, nil
}

func requireActive(group *domain.ToolGroup) error {
	if !group.Active() {
		return fmt.Errorf("%w: tool group %d is deactivated", domain.ErrInvalidState, group.ID)
	}
	return nil
}

// allocateUnit claims one AVAILABLE unit of the group. The claim is a
// single check-and-set in the store, so concurrent callers never share a unit.
func allocateUnit(ctx context.Context, tx repository.Repositories, groupID int32) (*domain.ToolUnit, error) {
	group, err := tx.Groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if err := requireActive(group); err != nil {
		return nil, err
	}
	return tx.Units.Allocate(ctx, groupID)
}

func (s *catalogService) ReleaseUnit(ctx context.Context, unitID int32) (*domain.ToolUnit, error) {
	const method = "catalogService.ReleaseUnit"
	logger.EnterMethod(method, "unitID", unitID)

	var unit *domain.ToolUnit
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		var err error
		unit, err = releaseUnit(ctx, tx, unitID)
		return err
	})
	if err != nil {
		exitWithError(method, "release_unit", err, "unitID", unitID)
		return nil, err
	}

	logger.ExitMethod(method, "unitID", unitID)
	return unit, nil
}

func releaseUnit(ctx context.Context, tx repository.Repositories, unitID int32) (*domain.ToolUnit, error) {
	unit, err := tx.Units.GetForUpdate(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if unit.Status != domain.UnitStatusLoaned {
		return nil, fmt.Errorf("%w: unit %d is %s, not LOANED", domain.ErrInvalidTransition, unitID, unit.Status)
	}
	if err := tx.Units.UpdateStatus(ctx, unitID, domain.UnitStatusAvailable); err != nil {
		return nil, err
	}
	unit.Status = domain.UnitStatusAvailable
	return unit, nil
}

func (s *catalogService) ChangeUnitStatus(ctx context.Context, unitID int32, status domain.UnitStatus, actor string) (*domain.ToolUnit, error) {
	const method = "catalogService.ChangeUnitStatus"
	logger.EnterMethod(method, "unitID", unitID, "status", status)

	if !status.Valid() {
		err := validationError("unknown unit status %q", status)
		exitWithError(method, "change_unit_status", err)
		return nil, err
	}

	ctx, correlationID := beginOperation(ctx)
	var unit *domain.ToolUnit
	var movement domain.MovementType
	var recorded bool
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		var err error
		unit, err = tx.Units.GetForUpdate(ctx, unitID)
		if err != nil {
			return err
		}
		if err := checkTransition(unit.Status, status); err != nil {
			return fmt.Errorf("unit %d: %w", unitID, err)
		}
		previous := unit.Status
		if err := tx.Units.UpdateStatus(ctx, unitID, status); err != nil {
			return err
		}
		unit.Status = status

		movement, recorded = domain.MovementForStatus(status)
		if !recorded {
			return nil
		}
		return s.opts.record(ctx, tx, correlationID, movement, *unit, nil,
			detail(actor, "Status change: %s -> %s", previous, status))
	})
	if err != nil {
		exitWithError(method, "change_unit_status", err, "unitID", unitID)
		return nil, err
	}

	if recorded {
		metrics.ObserveMovement(movement)
	}
	logger.ExitMethod(method, "unitID", unitID, "status", status)
	return unit, nil
}

// checkTransition enforces the maintenance state machine. LOANED is entered
// and left only through the loan workflow.
func checkTransition(from, to domain.UnitStatus) error {
	switch {
	case from.Terminal():
		return fmt.Errorf("%w: %s is terminal", domain.ErrInvalidTransition, from)
	case from == to:
		return fmt.Errorf("%w: already %s", domain.ErrInvalidTransition, to)
	case to == domain.UnitStatusLoaned:
		return fmt.Errorf("%w: units are loaned only through a loan", domain.ErrInvalidTransition)
	case from == domain.UnitStatusLoaned:
		return fmt.Errorf("%w: loaned units come back only through a return", domain.ErrInvalidTransition)
	}
	return nil
}

func (s *catalogService) UpdateReplacementValue(ctx context.Context, groupID int32, value decimal.Decimal) (*domain.ToolGroup, error) {
	const method = "catalogService.UpdateReplacementValue"
	logger.EnterMethod(method, "groupID", groupID, "value", value)

	if !value.IsPositive() {
		err := validationError("replacement value must be positive, got %s", value)
		exitWithError(method, "update_replacement_value", err)
		return nil, err
	}

	var group *domain.ToolGroup
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		if err := tx.Groups.UpdateReplacementValue(ctx, groupID, value); err != nil {
			return err
		}
		var err error
		group, err = tx.Groups.GetByID(ctx, groupID)
		if err != nil {
			return err
		}
		return attachStock(ctx, tx, group)
	})
	if err != nil {
		exitWithError(method, "update_replacement_value", err, "groupID", groupID)
		return nil, err
	}

	logger.ExitMethod(method, "groupID", groupID)
	return group, nil
}

func (s *catalogService) AdjustStock(ctx context.Context, groupID int32, delta int, actor string) (*domain.ToolGroup, error) {
	const method = "catalogService.AdjustStock"
	logger.EnterMethod(method, "groupID", groupID, "delta", delta)

	if delta > s.opts.maxUnits || delta < -s.opts.maxUnits {
		err := validationError("stock change %d exceeds the limit of %d units per operation", delta, s.opts.maxUnits)
		exitWithError(method, "adjust_stock", err)
		return nil, err
	}

	ctx, correlationID := beginOperation(ctx)
	var group *domain.ToolGroup
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		var err error
		group, err = tx.Groups.GetByID(ctx, groupID)
		if err != nil {
			return err
		}

		switch {
		case delta > 0:
			if err := requireActive(group); err != nil {
				return err
			}
			units, err := createUnits(ctx, tx, groupID, delta)
			if err != nil {
				return err
			}
			err = s.opts.record(ctx, tx, correlationID, domain.MovementTypeRegistry, units[0], nil,
				detail(actor, "Stock increase: %d units", delta))
			if err != nil {
				return err
			}
		case delta < 0:
			want := -delta
			units, err := tx.Units.LockByStatus(ctx, groupID, []domain.UnitStatus{domain.UnitStatusAvailable}, want)
			if err != nil {
				return err
			}
			if len(units) < want {
				return validationError("cannot remove %d units from group %d, only %d available", want, groupID, len(units))
			}
			for _, u := range units {
				if err := tx.Units.UpdateStatus(ctx, u.ID, domain.UnitStatusRetired); err != nil {
					return err
				}
			}
			err = s.opts.record(ctx, tx, correlationID, domain.MovementTypeRetire, units[0], nil,
				detail(actor, "Stock decrease: %d units", want))
			if err != nil {
				return err
			}
		}
		return attachStock(ctx, tx, group)
	})
	if err != nil {
		exitWithError(method, "adjust_stock", err, "groupID", groupID)
		return nil, err
	}

	switch {
	case delta > 0:
		metrics.ObserveMovement(domain.MovementTypeRegistry)
	case delta < 0:
		metrics.ObserveMovement(domain.MovementTypeRetire)
	}
	logger.ExitMethod(method, "groupID", groupID, "available", group.Stock.Available)
	return group, nil
}

// DeactivateGroup stops the group from lending and retires every unit that is
// not out on loan. Loaned units are retired when they come back. One RETIRE
// entry covers the call; none is written when no unit changed status.
func (s *catalogService) DeactivateGroup(ctx context.Context, groupID int32, actor string) (*domain.ToolGroup, error) {
	const method = "catalogService.DeactivateGroup"
	logger.EnterMethod(method, "groupID", groupID)

	ctx, correlationID := beginOperation(ctx)
	var group *domain.ToolGroup
	var retired int
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		if err := tx.Groups.Deactivate(ctx, groupID, s.opts.now()); err != nil {
			return err
		}
		var err error
		group, err = tx.Groups.GetByID(ctx, groupID)
		if err != nil {
			return err
		}
		units, err := tx.Units.LockByStatus(ctx, groupID,
			[]domain.UnitStatus{domain.UnitStatusAvailable, domain.UnitStatusInRepair}, 0)
		if err != nil {
			return err
		}
		for _, u := range units {
			if err := tx.Units.UpdateStatus(ctx, u.ID, domain.UnitStatusRetired); err != nil {
				return err
			}
		}
		retired = len(units)
		if retired > 0 {
			first := units[0]
			first.Status = domain.UnitStatusRetired
			if err := s.opts.record(ctx, tx, correlationID, domain.MovementTypeRetire, first, nil,
				detail(actor, "Tool deactivated: %d units retired", retired)); err != nil {
				return err
			}
		}
		return attachStock(ctx, tx, group)
	})
	if err != nil {
		exitWithError(method, "deactivate_group", err, "groupID", groupID)
		return nil, err
	}

	if retired > 0 {
		metrics.ObserveMovement(domain.MovementTypeRetire)
	}
	logger.InfoContext(ctx, "Tool group deactivated", "groupID", groupID, "retired", retired, "stillLoaned", group.Stock.Loaned)
	logger.ExitMethod(method, "groupID", groupID)
	return group, nil
}

func (s *catalogService) GetGroup(ctx context.Context, groupID int32) (*domain.ToolGroup, error) {
	repos := s.store.Repos()
	group, err := repos.Groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if err := attachStock(ctx, repos, group); err != nil {
		return nil, err
	}
	return group, nil
}

func (s *catalogService) ListGroups(ctx context.Context) ([]domain.ToolGroup, error) {
	repos := s.store.Repos()
	groups, err := repos.Groups.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range groups {
		if err := attachStock(ctx, repos, &groups[i]); err != nil {
			return nil, err
		}
	}
	return groups, nil
}

func (s *catalogService) ListUnits(ctx context.Context, groupID int32) ([]domain.ToolUnit, error) {
	repos := s.store.Repos()
	if _, err := repos.Groups.GetByID(ctx, groupID); err != nil {
		return nil, err
	}
	return repos.Units.ListByGroup(ctx, groupID)
}
