package service

import (
	"context"
	"time"

	"toolrent-backend/internal/domain"

	"github.com/shopspring/decimal"
)

// DefaultHouseFineRate is the daily fine rate given to groups registered
// without an explicit one.
var DefaultHouseFineRate = decimal.NewFromInt(2500)

// DefaultMaxUnitsPerOperation caps how many units one registration or stock
// adjustment may create or retire.
const DefaultMaxUnitsPerOperation = 10000

type RegisterGroupRequest struct {
	Name             string
	Category         string
	ReplacementValue *decimal.Decimal
	DailyRentalRate  decimal.Decimal
	DailyFineRate    *decimal.Decimal // nil selects the house rate
	InitialStock     int
}

type RegisterCustomerRequest struct {
	Name  string
	Rut   string
	Phone string
	Email string
}

type CatalogService interface {
	RegisterGroup(ctx context.Context, req RegisterGroupRequest, actor string) (*domain.ToolGroup, error)
	AllocateUnit(ctx context.Context, groupID int32) (*domain.ToolUnit, error)
	ReleaseUnit(ctx context.Context, unitID int32) (*domain.ToolUnit, error)
	ChangeUnitStatus(ctx context.Context, unitID int32, status domain.UnitStatus, actor string) (*domain.ToolUnit, error)
	UpdateReplacementValue(ctx context.Context, groupID int32, value decimal.Decimal) (*domain.ToolGroup, error)
	AdjustStock(ctx context.Context, groupID int32, delta int, actor string) (*domain.ToolGroup, error)
	DeactivateGroup(ctx context.Context, groupID int32, actor string) (*domain.ToolGroup, error)
	GetGroup(ctx context.Context, groupID int32) (*domain.ToolGroup, error)
	ListGroups(ctx context.Context) ([]domain.ToolGroup, error)
	ListUnits(ctx context.Context, groupID int32) ([]domain.ToolUnit, error)
}

type LedgerService interface {
	List(ctx context.Context, filter domain.KardexFilter) ([]domain.KardexMovement, error)
}

type CustomerService interface {
	RegisterCustomer(ctx context.Context, req RegisterCustomerRequest) (*domain.Customer, error)
	GetCustomer(ctx context.Context, id int32) (*domain.Customer, error)
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	GetOrCreateSystemCustomer(ctx context.Context) (*domain.Customer, error)
	ChangeStatus(ctx context.Context, id int32, status domain.CustomerStatus) (*domain.Customer, error)
}

type RentalService interface {
	RegisterLoan(ctx context.Context, groupID, customerID int32, dueDate time.Time, actor string) (*domain.Loan, error)
	// ReturnLoan closes an active loan. damageCharge is recorded as given and
	// must not be negative.
	ReturnLoan(ctx context.Context, loanID int32, damageCharge decimal.Decimal, actor string) (*domain.Loan, error)
	GetLoan(ctx context.Context, loanID int32) (*domain.Loan, error)
}

type ReportService interface {
	ActiveLoans(ctx context.Context, from, to time.Time) ([]domain.Loan, error)
	OverdueCustomers(ctx context.Context) ([]domain.Customer, error)
	TopTools(ctx context.Context, from, to time.Time) ([]domain.ToolLoanCount, error)
}

type options struct {
	clock         func() time.Time
	houseFineRate decimal.Decimal
	maxUnits      int
}

type Option func(*options)

// WithClock replaces time.Now, for deterministic fines in tests.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

func WithHouseFineRate(rate decimal.Decimal) Option {
	return func(o *options) {
		o.houseFineRate = rate
	}
}

// WithMaxUnitsPerOperation overrides DefaultMaxUnitsPerOperation.
func WithMaxUnitsPerOperation(n int) Option {
	return func(o *options) {
		o.maxUnits = n
	}
}

func buildOptions(opts []Option) options {
	o := options{
		clock:         time.Now,
		houseFineRate: DefaultHouseFineRate,
		maxUnits:      DefaultMaxUnitsPerOperation,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) now() time.Time {
	return o.clock().UTC()
}
