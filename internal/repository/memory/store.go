// Package memory implements repository.Store in process memory. Units of
// work run one at a time against a private copy of the data, which replaces
// the committed data only when the work succeeds.
package memory

import (
	"context"
	"sync"
	"time"

	"toolrent-backend/internal/domain"
	"toolrent-backend/internal/repository"
)

type state struct {
	groups    map[int32]domain.ToolGroup
	units     map[int32]domain.ToolUnit
	customers map[int32]domain.Customer
	loans     map[int32]domain.Loan
	kardex    []domain.KardexMovement

	nextGroupID    int32
	nextUnitID     int32
	nextCustomerID int32
	nextLoanID     int32
	nextKardexID   int64
}

func newState() *state {
	return &state{
		groups:    make(map[int32]domain.ToolGroup),
		units:     make(map[int32]domain.ToolUnit),
		customers: make(map[int32]domain.Customer),
		loans:     make(map[int32]domain.Loan),
	}
}

func (s *state) clone() *state {
	c := *s
	c.groups = make(map[int32]domain.ToolGroup, len(s.groups))
	for k, v := range s.groups {
		c.groups[k] = v
	}
	c.units = make(map[int32]domain.ToolUnit, len(s.units))
	for k, v := range s.units {
		c.units[k] = v
	}
	c.customers = make(map[int32]domain.Customer, len(s.customers))
	for k, v := range s.customers {
		c.customers[k] = v
	}
	c.loans = make(map[int32]domain.Loan, len(s.loans))
	for k, v := range s.loans {
		c.loans[k] = v
	}
	// Entries are never mutated, so sharing the backing array is safe as long
	// as appends on the copy cannot write into it.
	c.kardex = s.kardex[:len(s.kardex):len(s.kardex)]
	return &c
}

// access runs read and write callbacks against some state.
type access interface {
	read(fn func(*state) error) error
	write(fn func(*state) error) error
	now() time.Time
}

type Store struct {
	txMu  sync.Mutex   // serializes writers
	mu    sync.RWMutex // guards data
	data  *state
	clock func() time.Time
}

type Option func(*Store)

// WithClock overrides the time source used for record timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		s.clock = clock
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		data:  newState(),
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) read(fn func(*state) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.data)
}

// write outside a unit of work is itself a single-statement transaction.
func (s *Store) write(fn func(*state) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

func (s *Store) now() time.Time {
	return s.clock().UTC()
}

func (s *Store) Repos() repository.Repositories {
	return reposOver(s)
}

func (s *Store) WithinTx(ctx context.Context, fn repository.TxFunc) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	work := &txState{data: s.data.clone(), store: s}
	s.mu.RUnlock()

	if err := fn(ctx, reposOver(work)); err != nil {
		return err
	}

	s.mu.Lock()
	s.data = work.data
	s.mu.Unlock()
	return nil
}

func (s *Store) Close() error {
	return nil
}

// txState is the private copy a unit of work operates on. It needs no
// locking because txMu admits one unit of work at a time.
type txState struct {
	data  *state
	store *Store
}

func (t *txState) read(fn func(*state) error) error {
	return fn(t.data)
}

func (t *txState) write(fn func(*state) error) error {
	return fn(t.data)
}

func (t *txState) now() time.Time {
	return t.store.now()
}

func reposOver(a access) repository.Repositories {
	return repository.Repositories{
		Groups:    &groupRepository{a: a},
		Units:     &unitRepository{a: a},
		Customers: &customerRepository{a: a},
		Loans:     &loanRepository{a: a},
		Kardex:    &kardexRepository{a: a},
		Reports:   &reportRepository{a: a},
	}
}
