package service_test

import (
	"context"
	"time"

	"toolrent-backend/internal/domain"
	"toolrent-backend/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockStore runs units of work directly against its mock repositories.
type MockStore struct {
	mock.Mock
	repos repository.Repositories
}

func newMockStore() (*MockStore, *MockGroupRepo, *MockUnitRepo, *MockCustomerRepo, *MockLoanRepo, *MockKardexRepo) {
	groups, units, customers := new(MockGroupRepo), new(MockUnitRepo), new(MockCustomerRepo)
	loans, kardex := new(MockLoanRepo), new(MockKardexRepo)
	store := &MockStore{repos: repository.Repositories{
		Groups:    groups,
		Units:     units,
		Customers: customers,
		Loans:     loans,
		Kardex:    kardex,
	}}
	return store, groups, units, customers, loans, kardex
}

func (m *MockStore) Repos() repository.Repositories {
	return m.repos
}

func (m *MockStore) WithinTx(ctx context.Context, fn repository.TxFunc) error {
	if err := fn(ctx, m.repos); err != nil {
		return err
	}
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStore) Close() error {
	return nil
}

// MockGroupRepo
type MockGroupRepo struct {
	mock.Mock
}

func (m *MockGroupRepo) Create(ctx context.Context, g *domain.ToolGroup) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}
func (m *MockGroupRepo) GetByID(ctx context.Context, id int32) (*domain.ToolGroup, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ToolGroup), args.Error(1)
}
func (m *MockGroupRepo) List(ctx context.Context) ([]domain.ToolGroup, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.ToolGroup), args.Error(1)
}
func (m *MockGroupRepo) UpdateReplacementValue(ctx context.Context, id int32, value decimal.Decimal) error {
	args := m.Called(ctx, id, value)
	return args.Error(0)
}
func (m *MockGroupRepo) Deactivate(ctx context.Context, id int32, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// MockUnitRepo
type MockUnitRepo struct {
	mock.Mock
}

func (m *MockUnitRepo) Create(ctx context.Context, u *domain.ToolUnit) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}
func (m *MockUnitRepo) GetByID(ctx context.Context, id int32) (*domain.ToolUnit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ToolUnit), args.Error(1)
}
func (m *MockUnitRepo) GetForUpdate(ctx context.Context, id int32) (*domain.ToolUnit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ToolUnit), args.Error(1)
}
func (m *MockUnitRepo) Allocate(ctx context.Context, groupID int32) (*domain.ToolUnit, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ToolUnit), args.Error(1)
}
func (m *MockUnitRepo) UpdateStatus(ctx context.Context, id int32, status domain.UnitStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
func (m *MockUnitRepo) ListByGroup(ctx context.Context, groupID int32) ([]domain.ToolUnit, error) {
	args := m.Called(ctx, groupID)
	return args.Get(0).([]domain.ToolUnit), args.Error(1)
}
func (m *MockUnitRepo) LockByStatus(ctx context.Context, groupID int32, statuses []domain.UnitStatus, limit int) ([]domain.ToolUnit, error) {
	args := m.Called(ctx, groupID, statuses, limit)
	return args.Get(0).([]domain.ToolUnit), args.Error(1)
}
func (m *MockUnitRepo) Summary(ctx context.Context, groupID int32) (domain.StockSummary, error) {
	args := m.Called(ctx, groupID)
	return args.Get(0).(domain.StockSummary), args.Error(1)
}

// MockCustomerRepo
type MockCustomerRepo struct {
	mock.Mock
}

func (m *MockCustomerRepo) Create(ctx context.Context, c *domain.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}
func (m *MockCustomerRepo) GetOrCreateByRut(ctx context.Context, c *domain.Customer) (*domain.Customer, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}
func (m *MockCustomerRepo) GetByID(ctx context.Context, id int32) (*domain.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}
func (m *MockCustomerRepo) GetByRut(ctx context.Context, rut string) (*domain.Customer, error) {
	args := m.Called(ctx, rut)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}
func (m *MockCustomerRepo) List(ctx context.Context) ([]domain.Customer, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Customer), args.Error(1)
}
func (m *MockCustomerRepo) UpdateStatus(ctx context.Context, id int32, status domain.CustomerStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// MockLoanRepo
type MockLoanRepo struct {
	mock.Mock
}

func (m *MockLoanRepo) Create(ctx context.Context, l *domain.Loan) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}
func (m *MockLoanRepo) GetByID(ctx context.Context, id int32) (*domain.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}
func (m *MockLoanRepo) GetForUpdate(ctx context.Context, id int32) (*domain.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}
func (m *MockLoanRepo) MarkReturned(ctx context.Context, l *domain.Loan) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

// MockKardexRepo
type MockKardexRepo struct {
	mock.Mock
}

func (m *MockKardexRepo) Append(ctx context.Context, mv *domain.KardexMovement) error {
	args := m.Called(ctx, mv)
	return args.Error(0)
}
func (m *MockKardexRepo) List(ctx context.Context, filter domain.KardexFilter) ([]domain.KardexMovement, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.KardexMovement), args.Error(1)
}

