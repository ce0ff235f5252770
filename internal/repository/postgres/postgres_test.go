package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"toolrent-backend/internal/domain"
	"toolrent-backend/internal/repository"
	"toolrent-backend/internal/repository/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestStore_WithinTx(t *testing.T) {
	ctx := context.Background()

	t.Run("Commit", func(t *testing.T) {
		db, mock := newMock(t)
		store := postgres.NewStore(db)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE tool_units SET status").
			WithArgs(domain.UnitStatusInRepair, int32(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := store.WithinTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
			return tx.Units.UpdateStatus(ctx, 3, domain.UnitStatusInRepair)
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rollback on error", func(t *testing.T) {
		db, mock := newMock(t)
		store := postgres.NewStore(db)
		boom := errors.New("boom")

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := store.WithinTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Begin failure is a storage error", func(t *testing.T) {
		db, mock := newMock(t)
		store := postgres.NewStore(db)

		mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

		err := store.WithinTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
			t.Fatal("body must not run")
			return nil
		})
		assert.ErrorIs(t, err, domain.ErrStorage)
	})
}

func TestToolGroupRepository(t *testing.T) {
	ctx := context.Background()
	db, mock := newMock(t)
	repo := postgres.NewToolGroupRepository(db)
	now := time.Now()

	t.Run("Create", func(t *testing.T) {
		g := &domain.ToolGroup{
			Name:             "Drill",
			Category:         "Power",
			ReplacementValue: decimal.NewFromInt(90000),
			Tariff:           domain.Tariff{DailyRentalRate: decimal.NewFromInt(3000), DailyFineRate: decimal.NewFromInt(2500)},
		}
		mock.ExpectQuery("INSERT INTO tool_groups").
			WithArgs("Drill", "Power", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(7, now))

		require.NoError(t, repo.Create(ctx, g))
		assert.Equal(t, int32(7), g.ID)
	})

	t.Run("GetByID", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM tool_groups WHERE id = \\$1").
			WithArgs(int32(7)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "category", "replacement_value", "daily_rental_rate", "daily_fine_rate", "deactivated_at", "created_at"}).
				AddRow(7, "Drill", "Power", "90000.00", "3000.00", "2500.00", nil, now))

		g, err := repo.GetByID(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, "Drill", g.Name)
		assert.True(t, decimal.NewFromInt(2500).Equal(g.Tariff.DailyFineRate))
		assert.True(t, g.Active())
	})

	t.Run("GetByID deactivated", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM tool_groups WHERE id = \\$1").
			WithArgs(int32(7)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "category", "replacement_value", "daily_rental_rate", "daily_fine_rate", "deactivated_at", "created_at"}).
				AddRow(7, "Drill", "Power", "90000.00", "3000.00", "2500.00", now, now))

		g, err := repo.GetByID(ctx, 7)
		require.NoError(t, err)
		assert.False(t, g.Active())
	})

	t.Run("Deactivate keeps first timestamp", func(t *testing.T) {
		mock.ExpectExec("UPDATE tool_groups SET deactivated_at = COALESCE\\(deactivated_at, \\$1\\) WHERE id = \\$2").
			WithArgs(now, int32(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Deactivate(ctx, 7, now))
	})

	t.Run("Deactivate missing group", func(t *testing.T) {
		mock.ExpectExec("UPDATE tool_groups SET deactivated_at").
			WithArgs(now, int32(9)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Deactivate(ctx, 9, now), domain.ErrNotFound)
	})

	t.Run("GetByID not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM tool_groups WHERE id = \\$1").
			WithArgs(int32(8)).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(ctx, 8)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("UpdateReplacementValue missing group", func(t *testing.T) {
		mock.ExpectExec("UPDATE tool_groups SET replacement_value").
			WithArgs(sqlmock.AnyArg(), int32(9)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateReplacementValue(ctx, 9, decimal.NewFromInt(1))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToolUnitRepository_Allocate(t *testing.T) {
	ctx := context.Background()
	db, mock := newMock(t)
	repo := postgres.NewToolUnitRepository(db)
	now := time.Now()
	cols := []string{"id", "group_id", "status", "created_at", "updated_at"}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("UPDATE tool_units SET status = 'LOANED'(.+)FOR UPDATE SKIP LOCKED").
			WithArgs(int32(1)).
			WillReturnRows(sqlmock.NewRows(cols).AddRow(4, 1, "LOANED", now, now))

		u, err := repo.Allocate(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int32(4), u.ID)
		assert.Equal(t, domain.UnitStatusLoaned, u.Status)
	})

	t.Run("No availability", func(t *testing.T) {
		mock.ExpectQuery("UPDATE tool_units SET status = 'LOANED'").
			WithArgs(int32(1)).
			WillReturnRows(sqlmock.NewRows(cols))

		_, err := repo.Allocate(ctx, 1)
		assert.ErrorIs(t, err, domain.ErrNoAvailability)
	})

	t.Run("Driver failure", func(t *testing.T) {
		mock.ExpectQuery("UPDATE tool_units SET status = 'LOANED'").
			WithArgs(int32(1)).
			WillReturnError(errors.New("connection reset"))

		_, err := repo.Allocate(ctx, 1)
		assert.ErrorIs(t, err, domain.ErrStorage)
		assert.NotErrorIs(t, err, domain.ErrNoAvailability)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToolUnitRepository_LockByStatus(t *testing.T) {
	ctx := context.Background()
	db, mock := newMock(t)
	repo := postgres.NewToolUnitRepository(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT (.+) FROM "tool_units" WHERE (.+)"status" IN (.+) ORDER BY "id" ASC (.+)FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "group_id", "status", "created_at", "updated_at"}).
			AddRow(1, 2, "AVAILABLE", now, now).
			AddRow(3, 2, "AVAILABLE", now, now))

	units, err := repo.LockByStatus(ctx, 2, []domain.UnitStatus{domain.UnitStatusAvailable}, 2)
	require.NoError(t, err)
	assert.Len(t, units, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToolUnitRepository_Summary(t *testing.T) {
	ctx := context.Background()
	db, mock := newMock(t)
	repo := postgres.NewToolUnitRepository(db)

	mock.ExpectQuery("SELECT status, COUNT\\(\\*\\) FROM tool_units").
		WithArgs(int32(1)).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("AVAILABLE", 3).
			AddRow("RETIRED", 1))

	sum, err := repo.Summary(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Available)
	assert.Equal(t, 1, sum.Retired)
	assert.Equal(t, 4, sum.Total())
}

func TestCustomerRepository_Create(t *testing.T) {
	ctx := context.Background()
	db, mock := newMock(t)
	repo := postgres.NewCustomerRepository(db)
	c := &domain.Customer{Name: "Ana", Rut: "12345678-5", Phone: "555", Email: "ana@x", Status: domain.CustomerStatusActive}

	t.Run("Duplicate rut via lib/pq", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO customers").
			WillReturnError(&pq.Error{Code: "23505"})

		err := repo.Create(ctx, c)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("Duplicate rut via pgx", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO customers").
			WillReturnError(&pgconn.PgError{Code: "23505"})

		err := repo.Create(ctx, c)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("Success", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery("INSERT INTO customers").
			WithArgs("Ana", "12345678-5", "555", "ana@x", domain.CustomerStatusActive, false).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(2, now, now))

		require.NoError(t, repo.Create(ctx, c))
		assert.Equal(t, int32(2), c.ID)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepository_GetOrCreateByRut(t *testing.T) {
	ctx := context.Background()
	db, mock := newMock(t)
	repo := postgres.NewCustomerRepository(db)
	now := time.Now()
	cols := []string{"id", "name", "rut", "phone", "email", "status", "is_system", "created_at", "updated_at"}

	t.Run("Inserts", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO customers (.+) ON CONFLICT \\(rut\\) DO NOTHING").
			WithArgs(domain.SystemCustomerName, domain.SystemCustomerRut, domain.SystemCustomerPhone,
				domain.SystemCustomerEmail, domain.CustomerStatusActive, true).
			WillReturnRows(sqlmock.NewRows(cols).
				AddRow(1, domain.SystemCustomerName, domain.SystemCustomerRut, domain.SystemCustomerPhone,
					domain.SystemCustomerEmail, "ACTIVE", true, now, now))

		c, err := repo.GetOrCreateByRut(ctx, domain.NewSystemCustomer())
		require.NoError(t, err)
		assert.Equal(t, int32(1), c.ID)
	})

	t.Run("Concurrent insert already won", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO customers (.+) ON CONFLICT \\(rut\\) DO NOTHING").
			WillReturnRows(sqlmock.NewRows(cols))
		mock.ExpectQuery("SELECT (.+) FROM customers WHERE rut = \\$1").
			WithArgs(domain.SystemCustomerRut).
			WillReturnRows(sqlmock.NewRows(cols).
				AddRow(4, domain.SystemCustomerName, domain.SystemCustomerRut, domain.SystemCustomerPhone,
					domain.SystemCustomerEmail, "ACTIVE", true, now, now))

		c, err := repo.GetOrCreateByRut(ctx, domain.NewSystemCustomer())
		require.NoError(t, err)
		assert.Equal(t, int32(4), c.ID)
		assert.True(t, c.System)
	})

	t.Run("Storage failure", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO customers").
			WillReturnError(&pq.Error{Code: "08006"})

		_, err := repo.GetOrCreateByRut(ctx, domain.NewSystemCustomer())
		assert.ErrorIs(t, err, domain.ErrStorage)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoanRepository_MarkReturned(t *testing.T) {
	ctx := context.Background()
	db, mock := newMock(t)
	repo := postgres.NewLoanRepository(db)
	returned := time.Now()
	loan := &domain.Loan{ID: 5, ReturnDate: &returned, FineAmount: decimal.Zero, DamageCharge: decimal.Zero}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE loans SET return_date(.+)return_date IS NULL").
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), int32(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.MarkReturned(ctx, loan))
	})

	t.Run("Already returned", func(t *testing.T) {
		mock.ExpectExec("UPDATE loans SET return_date").
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), int32(5)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.MarkReturned(ctx, loan)
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKardexRepository_List(t *testing.T) {
	ctx := context.Background()
	db, mock := newMock(t)
	repo := postgres.NewKardexRepository(db)
	now := time.Now()
	cols := []string{"id", "group_id", "unit_id", "customer_id", "movement_type", "occurred_at", "detail", "correlation_id"}

	t.Run("Unfiltered", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM "kardex_movements" ORDER BY "id" ASC`).
			WillReturnRows(sqlmock.NewRows(cols).
				AddRow(1, 1, 1, 1, "REGISTRY", now, "Initial stock - User: admin", "4a4f7f44-0a5e-4f4f-a6c0-8d35c1c0b001").
				AddRow(2, 1, 1, 2, "LOAN", now, "Loan to customer ID: 2 - User: clerk", "4a4f7f44-0a5e-4f4f-a6c0-8d35c1c0b002"))

		got, err := repo.List(ctx, domain.KardexFilter{})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, domain.MovementTypeLoan, got[1].Type)
		assert.Equal(t, "4a4f7f44-0a5e-4f4f-a6c0-8d35c1c0b002", got[1].CorrelationID.String())
	})

	t.Run("Filtered by group", func(t *testing.T) {
		groupID := int32(3)
		mock.ExpectQuery(`SELECT (.+) FROM "kardex_movements" WHERE (.+)"group_id" = \$1(.+)ORDER BY "id" ASC`).
			WithArgs(int32(3)).
			WillReturnRows(sqlmock.NewRows(cols))

		got, err := repo.List(ctx, domain.KardexFilter{GroupID: &groupID})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepository_TopTools(t *testing.T) {
	ctx := context.Background()
	db, mock := newMock(t)
	repo := postgres.NewReportRepository(db)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	mock.ExpectQuery("SELECT (.+) FROM loans l JOIN tool_groups g(.+)ORDER BY loans DESC, g.id ASC").
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "category", "replacement_value", "daily_rental_rate", "daily_fine_rate", "deactivated_at", "created_at", "loans"}).
			AddRow(2, "Saw", "Manual", "1000", "100", "2500", nil, from, 5).
			AddRow(1, "Drill", "Power", "1000", "100", "2500", from, from, 3))

	ranking, err := repo.TopTools(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, ranking, 2)
	assert.Equal(t, "Saw", ranking[0].Group.Name)
	assert.Equal(t, 5, ranking[0].Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate(t *testing.T) {
	ctx := context.Background()
	db, mock := newMock(t)

	for range postgres.Migrations() {
		mock.ExpectExec("(CREATE (TABLE|INDEX)|ALTER TABLE) ").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, postgres.Migrate(ctx, db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := postgres.Open(context.Background(), "mysql", "dsn")
	assert.Error(t, err)
}
