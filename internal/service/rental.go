package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"toolrent-backend/internal/domain"
	"toolrent-backend/internal/logger"
	"toolrent-backend/internal/metrics"
	"toolrent-backend/internal/pricing"
	"toolrent-backend/internal/repository"

	"github.com/shopspring/decimal"
)

type rentalService struct {
	store repository.Store
	opts  options
}

func NewRentalService(store repository.Store, opts ...Option) RentalService {
	return &rentalService{
		store: store,
		opts:  buildOptions(opts),
	}
}

// RegisterLoan lends one unit of the group to the customer until dueDate.
// Either the unit claim, the loan and its LOAN entry all persist, or none do.
func (s *rentalService) RegisterLoan(ctx context.Context, groupID, customerID int32, dueDate time.Time, actor string) (*domain.Loan, error) {
	const method = "rentalService.RegisterLoan"
	logger.EnterMethod(method, "groupID", groupID, "customerID", customerID, "dueDate", dueDate)

	if dueDate.IsZero() {
		err := validationError("due date is required")
		exitWithError(method, "register_loan", err)
		return nil, err
	}

	ctx, correlationID := beginOperation(ctx)
	var loan *domain.Loan
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		group, err := tx.Groups.GetByID(ctx, groupID)
		if err != nil {
			return err
		}
		customer, err := tx.Customers.GetByID(ctx, customerID)
		if err != nil {
			return err
		}
		if !customer.CanBorrow() {
			return fmt.Errorf("%w: customer %d is %s", domain.ErrInvalidState, customer.ID, customer.Status)
		}
		unit, err := allocateUnit(ctx, tx, group.ID)
		if err != nil {
			return err
		}

		now := s.opts.now()
		loan = &domain.Loan{
			CustomerID:   customer.ID,
			UnitID:       unit.ID,
			GroupID:      group.ID,
			LoanDate:     now,
			DueDate:      dueDate.UTC(),
			TotalCost:    pricing.RentalCost(group.Tariff.DailyRentalRate, now, dueDate),
			FineAmount:   decimal.Zero,
			DamageCharge: decimal.Zero,
		}
		if err := tx.Loans.Create(ctx, loan); err != nil {
			return err
		}
		return s.opts.record(ctx, tx, correlationID, domain.MovementTypeLoan, *unit, customer,
			detail(actor, "Loan to customer ID: %d", customer.ID))
	})
	if err != nil {
		exitWithError(method, "register_loan", err, "groupID", groupID, "customerID", customerID)
		return nil, err
	}

	metrics.LoansRegistered.Inc()
	metrics.ObserveMovement(domain.MovementTypeLoan)
	logger.InfoContext(ctx, "Loan registered", "loanID", loan.ID, "unitID", loan.UnitID, "totalCost", loan.TotalCost)
	logger.ExitMethod(method, "loanID", loan.ID)
	return loan, nil
}

// ReturnLoan closes the loan, puts its unit back in service and charges a
// late fine at the group's own daily fine rate. A unit whose group was
// deactivated while it was out is retired instead.
func (s *rentalService) ReturnLoan(ctx context.Context, loanID int32, damageCharge decimal.Decimal, actor string) (*domain.Loan, error) {
	const method = "rentalService.ReturnLoan"
	logger.EnterMethod(method, "loanID", loanID)

	if damageCharge.IsNegative() {
		err := validationError("damage charge must not be negative, got %s", damageCharge)
		exitWithError(method, "return_loan", err)
		return nil, err
	}

	ctx, correlationID := beginOperation(ctx)
	var loan *domain.Loan
	var late, retiredOnReturn bool
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		var err error
		loan, err = tx.Loans.GetForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		if !loan.Active() {
			return fmt.Errorf("%w: loan %d was already returned", domain.ErrInvalidState, loanID)
		}
		group, err := tx.Groups.GetByID(ctx, loan.GroupID)
		if err != nil {
			return err
		}
		unit, err := releaseUnit(ctx, tx, loan.UnitID)
		if err != nil {
			return err
		}

		now := s.opts.now()
		loan.ReturnDate = &now
		loan.FineAmount = pricing.LateFine(group.Tariff.DailyFineRate, loan.DueDate, now)
		loan.DamageCharge = damageCharge
		late = now.After(loan.DueDate)
		if err := tx.Loans.MarkReturned(ctx, loan); err != nil {
			return err
		}

		customer, err := tx.Customers.GetByID(ctx, loan.CustomerID)
		if err != nil {
			return err
		}
		text := detail(actor, "Return from customer ID: %d", customer.ID)
		if loan.FineAmount.IsPositive() {
			text = detail(actor, "Return from customer ID: %d - Fine: %s", customer.ID, loan.FineAmount)
		}
		if err := s.opts.record(ctx, tx, correlationID, domain.MovementTypeReturn, *unit, customer, text); err != nil {
			return err
		}
		if group.Active() {
			return nil
		}

		// Units of a deactivated group leave service as they come back.
		if err := tx.Units.UpdateStatus(ctx, unit.ID, domain.UnitStatusRetired); err != nil {
			return err
		}
		unit.Status = domain.UnitStatusRetired
		retiredOnReturn = true
		return s.opts.record(ctx, tx, correlationID, domain.MovementTypeRetire, *unit, nil,
			detail(actor, "Tool deactivated: unit %d retired on return", unit.ID))
	})
	if err != nil {
		exitWithError(method, "return_loan", err, "loanID", loanID)
		return nil, err
	}

	metrics.LoansReturned.WithLabelValues(strconv.FormatBool(late)).Inc()
	metrics.ObserveMovement(domain.MovementTypeReturn)
	if retiredOnReturn {
		metrics.ObserveMovement(domain.MovementTypeRetire)
	}
	if loan.FineAmount.IsPositive() {
		metrics.ObserveFine(loan.FineAmount)
	}
	logger.InfoContext(ctx, "Loan returned", "loanID", loanID, "fine", loan.FineAmount, "late", late)
	logger.ExitMethod(method, "loanID", loanID)
	return loan, nil
}

func (s *rentalService) GetLoan(ctx context.Context, loanID int32) (*domain.Loan, error) {
	return s.store.Repos().Loans.GetByID(ctx, loanID)
}
