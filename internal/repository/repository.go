package repository

import (
	"context"
	"time"

	"toolrent-backend/internal/domain"

	"github.com/shopspring/decimal"
)

// Repository methods return errors wrapping the domain error kinds:
// domain.ErrNotFound for missing rows, domain.ErrValidation for uniqueness
// violations and domain.ErrStorage for any other backend failure.

type ToolGroupRepository interface {
	Create(ctx context.Context, group *domain.ToolGroup) error
	GetByID(ctx context.Context, id int32) (*domain.ToolGroup, error)
	List(ctx context.Context) ([]domain.ToolGroup, error)
	UpdateReplacementValue(ctx context.Context, id int32, value decimal.Decimal) error
	// Deactivate stamps the group as deactivated at the given time. A group
	// already deactivated keeps its first timestamp.
	Deactivate(ctx context.Context, id int32, at time.Time) error
}

type ToolUnitRepository interface {
	Create(ctx context.Context, unit *domain.ToolUnit) error
	GetByID(ctx context.Context, id int32) (*domain.ToolUnit, error)
	// GetForUpdate reads a unit and holds it until the enclosing transaction ends.
	GetForUpdate(ctx context.Context, id int32) (*domain.ToolUnit, error)
	// Allocate moves the lowest-id AVAILABLE unit of the group to LOANED and
	// returns it. Returns domain.ErrNoAvailability when the group has none.
	Allocate(ctx context.Context, groupID int32) (*domain.ToolUnit, error)
	UpdateStatus(ctx context.Context, id int32, status domain.UnitStatus) error
	ListByGroup(ctx context.Context, groupID int32) ([]domain.ToolUnit, error)
	// LockByStatus returns up to limit units of the group in any of statuses,
	// lowest id first, held until the transaction ends. limit <= 0 means all.
	LockByStatus(ctx context.Context, groupID int32, statuses []domain.UnitStatus, limit int) ([]domain.ToolUnit, error)
	Summary(ctx context.Context, groupID int32) (domain.StockSummary, error)
}

type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id int32) (*domain.Customer, error)
	GetByRut(ctx context.Context, rut string) (*domain.Customer, error)
	// GetOrCreateByRut returns the customer holding c.Rut, inserting c when
	// there is none. Concurrent callers converge on one row.
	GetOrCreateByRut(ctx context.Context, c *domain.Customer) (*domain.Customer, error)
	List(ctx context.Context) ([]domain.Customer, error)
	UpdateStatus(ctx context.Context, id int32, status domain.CustomerStatus) error
}

type LoanRepository interface {
	Create(ctx context.Context, loan *domain.Loan) error
	GetByID(ctx context.Context, id int32) (*domain.Loan, error)
	GetForUpdate(ctx context.Context, id int32) (*domain.Loan, error)
	// MarkReturned persists the return fields of an active loan. Returns
	// domain.ErrInvalidState when the loan was already returned.
	MarkReturned(ctx context.Context, loan *domain.Loan) error
}

// KardexRepository is append-only: there is no update or delete path.
type KardexRepository interface {
	Append(ctx context.Context, movement *domain.KardexMovement) error
	List(ctx context.Context, filter domain.KardexFilter) ([]domain.KardexMovement, error)
}

type ReportRepository interface {
	ActiveLoans(ctx context.Context, from, to time.Time) ([]domain.Loan, error)
	OverdueCustomers(ctx context.Context, now time.Time) ([]domain.Customer, error)
	TopTools(ctx context.Context, from, to time.Time) ([]domain.ToolLoanCount, error)
}

// Repositories bundles the repositories that share one connection or
// transaction.
type Repositories struct {
	Groups    ToolGroupRepository
	Units     ToolUnitRepository
	Customers CustomerRepository
	Loans     LoanRepository
	Kardex    KardexRepository
	Reports   ReportRepository
}

// TxFunc is the body of a unit of work. Every repository call that must be
// atomic with the others goes through tx.
type TxFunc func(ctx context.Context, tx Repositories) error

// Store hands out repositories and runs units of work. When fn returns an
// error, nothing it wrote is kept.
type Store interface {
	Repos() Repositories
	WithinTx(ctx context.Context, fn TxFunc) error
	Close() error
}
