package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"toolrent-backend/internal/domain"
	"toolrent-backend/internal/repository/memory"
	"toolrent-backend/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	clock     *fakeClock
	store     *memory.Store
	catalog   service.CatalogService
	customers service.CustomerService
	rentals   service.RentalService
	ledger    service.LedgerService
	reports   service.ReportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := newFakeClock()
	store := memory.NewStore(memory.WithClock(clock.Now))
	opts := []service.Option{service.WithClock(clock.Now)}
	return &fixture{
		clock:     clock,
		store:     store,
		catalog:   service.NewCatalogService(store, opts...),
		customers: service.NewCustomerService(store),
		rentals:   service.NewRentalService(store, opts...),
		ledger:    service.NewLedgerService(store),
		reports:   service.NewReportService(store, opts...),
	}
}

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func (f *fixture) group(t *testing.T, name string, stock int, dailyRate, fineRate int64) *domain.ToolGroup {
	t.Helper()
	g, err := f.catalog.RegisterGroup(context.Background(), service.RegisterGroupRequest{
		Name:             name,
		Category:         "Power tools",
		ReplacementValue: decPtr(50000),
		DailyRentalRate:  dec(dailyRate),
		DailyFineRate:    decPtr(fineRate),
		InitialStock:     stock,
	}, "admin")
	require.NoError(t, err)
	return g
}

func (f *fixture) customer(t *testing.T, name, rut string) *domain.Customer {
	t.Helper()
	c, err := f.customers.RegisterCustomer(context.Background(), service.RegisterCustomerRequest{
		Name:  name,
		Rut:   rut,
		Phone: "+56 9 1234 5678",
		Email: name + "@example.com",
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) kardex(t *testing.T) []domain.KardexMovement {
	t.Helper()
	movements, err := f.ledger.List(context.Background(), domain.KardexFilter{})
	require.NoError(t, err)
	return movements
}

func movementTypes(movements []domain.KardexMovement) []domain.MovementType {
	types := make([]domain.MovementType, len(movements))
	for i, m := range movements {
		types[i] = m.Type
	}
	return types
}
