package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"toolrent-backend/internal/domain"
	"toolrent-backend/internal/logger"
	"toolrent-backend/internal/repository"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/shopspring/decimal"
)

const dialectPostgres = "postgres"

type toolGroupRepository struct {
	db DBTX
}

func NewToolGroupRepository(db DBTX) repository.ToolGroupRepository {
	return &toolGroupRepository{db: db}
}

func (r *toolGroupRepository) Create(ctx context.Context, g *domain.ToolGroup) error {
	query := `INSERT INTO tool_groups (name, category, replacement_value, daily_rental_rate, daily_fine_rate, created_at)
	          VALUES ($1, $2, $3, $4, $5, NOW()) RETURNING id, created_at`
	logger.DatabaseCall("toolGroupRepository.Create", query, "name", g.Name)
	err := r.db.QueryRowContext(ctx, query, g.Name, g.Category, g.ReplacementValue, g.Tariff.DailyRentalRate, g.Tariff.DailyFineRate).
		Scan(&g.ID, &g.CreatedAt)
	return mapErr(err, "create tool group")
}

const groupColumns = `id, name, category, replacement_value, daily_rental_rate, daily_fine_rate, deactivated_at, created_at`

func (r *toolGroupRepository) GetByID(ctx context.Context, id int32) (*domain.ToolGroup, error) {
	g := &domain.ToolGroup{}
	query := `SELECT ` + groupColumns + ` FROM tool_groups WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&g.ID, &g.Name, &g.Category, &g.ReplacementValue, &g.Tariff.DailyRentalRate, &g.Tariff.DailyFineRate, &g.DeactivatedAt, &g.CreatedAt)
	if err != nil {
		return nil, mapErr(err, fmt.Sprintf("tool group %d", id))
	}
	return g, nil
}

func (r *toolGroupRepository) List(ctx context.Context) ([]domain.ToolGroup, error) {
	query := `SELECT ` + groupColumns + ` FROM tool_groups ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapErr(err, "list tool groups")
	}
	defer rows.Close()

	var groups []domain.ToolGroup
	for rows.Next() {
		var g domain.ToolGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.Category, &g.ReplacementValue, &g.Tariff.DailyRentalRate, &g.Tariff.DailyFineRate, &g.DeactivatedAt, &g.CreatedAt); err != nil {
			return nil, mapErr(err, "scan tool group")
		}
		groups = append(groups, g)
	}
	return groups, mapErr(rows.Err(), "list tool groups")
}

func (r *toolGroupRepository) UpdateReplacementValue(ctx context.Context, id int32, value decimal.Decimal) error {
	query := `UPDATE tool_groups SET replacement_value = $1 WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, value, id)
	if err != nil {
		return mapErr(err, "update replacement value")
	}
	return requireOneRow(res, fmt.Sprintf("tool group %d", id))
}

func (r *toolGroupRepository) Deactivate(ctx context.Context, id int32, at time.Time) error {
	query := `UPDATE tool_groups SET deactivated_at = COALESCE(deactivated_at, $1) WHERE id = $2`
	logger.DatabaseCall("toolGroupRepository.Deactivate", query, "groupID", id)
	res, err := r.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return mapErr(err, "deactivate tool group")
	}
	return requireOneRow(res, fmt.Sprintf("tool group %d", id))
}

type toolUnitRepository struct {
	db DBTX
}

func NewToolUnitRepository(db DBTX) repository.ToolUnitRepository {
	return &toolUnitRepository{db: db}
}

const unitColumns = `id, group_id, status, created_at, updated_at`

func scanUnit(row interface{ Scan(...any) error }) (*domain.ToolUnit, error) {
	u := &domain.ToolUnit{}
	if err := row.Scan(&u.ID, &u.GroupID, &u.Status, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *toolUnitRepository) Create(ctx context.Context, u *domain.ToolUnit) error {
	query := `INSERT INTO tool_units (group_id, status, created_at, updated_at)
	          VALUES ($1, $2, NOW(), NOW()) RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, u.GroupID, u.Status).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	return mapErr(err, "create tool unit")
}

func (r *toolUnitRepository) GetByID(ctx context.Context, id int32) (*domain.ToolUnit, error) {
	query := `SELECT ` + unitColumns + ` FROM tool_units WHERE id = $1`
	u, err := scanUnit(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapErr(err, fmt.Sprintf("tool unit %d", id))
	}
	return u, nil
}

func (r *toolUnitRepository) GetForUpdate(ctx context.Context, id int32) (*domain.ToolUnit, error) {
	query := `SELECT ` + unitColumns + ` FROM tool_units WHERE id = $1 FOR UPDATE`
	u, err := scanUnit(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapErr(err, fmt.Sprintf("tool unit %d", id))
	}
	return u, nil
}

// Allocate claims a unit in one statement. SKIP LOCKED lets concurrent
// allocations move past rows another transaction is claiming instead of
// queueing behind it.
func (r *toolUnitRepository) Allocate(ctx context.Context, groupID int32) (*domain.ToolUnit, error) {
	query := `UPDATE tool_units SET status = 'LOANED', updated_at = NOW()
	          WHERE id = (
	              SELECT id FROM tool_units
	              WHERE group_id = $1 AND status = 'AVAILABLE'
	              ORDER BY id LIMIT 1
	              FOR UPDATE SKIP LOCKED
	          )
	          RETURNING ` + unitColumns
	logger.DatabaseCall("toolUnitRepository.Allocate", query, "groupID", groupID)
	u, err := scanUnit(r.db.QueryRowContext(ctx, query, groupID))
	if err != nil {
		err = mapErr(err, fmt.Sprintf("tool group %d", groupID))
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: tool group %d", domain.ErrNoAvailability, groupID)
		}
		return nil, err
	}
	logger.DatabaseResult("toolUnitRepository.Allocate", 1, nil, "unitID", u.ID)
	return u, nil
}

func (r *toolUnitRepository) UpdateStatus(ctx context.Context, id int32, status domain.UnitStatus) error {
	query := `UPDATE tool_units SET status = $1, updated_at = NOW() WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return mapErr(err, "update tool unit status")
	}
	return requireOneRow(res, fmt.Sprintf("tool unit %d", id))
}

func (r *toolUnitRepository) ListByGroup(ctx context.Context, groupID int32) ([]domain.ToolUnit, error) {
	query := `SELECT ` + unitColumns + ` FROM tool_units WHERE group_id = $1 ORDER BY id`
	return r.queryUnits(ctx, query, groupID)
}

func (r *toolUnitRepository) LockByStatus(ctx context.Context, groupID int32, statuses []domain.UnitStatus, limit int) ([]domain.ToolUnit, error) {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}

	ds := goqu.Dialect(dialectPostgres).
		From("tool_units").
		Prepared(true).
		Select("id", "group_id", "status", "created_at", "updated_at").
		Where(goqu.C("group_id").Eq(groupID), goqu.C("status").In(names)).
		Order(goqu.C("id").Asc()).
		ForUpdate(exp.Wait)
	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build unit lock query: %w", err)
	}
	return r.queryUnits(ctx, query, args...)
}

func (r *toolUnitRepository) queryUnits(ctx context.Context, query string, args ...any) ([]domain.ToolUnit, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapErr(err, "list tool units")
	}
	defer rows.Close()

	var units []domain.ToolUnit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, mapErr(err, "scan tool unit")
		}
		units = append(units, *u)
	}
	return units, mapErr(rows.Err(), "list tool units")
}

func (r *toolUnitRepository) Summary(ctx context.Context, groupID int32) (domain.StockSummary, error) {
	var sum domain.StockSummary
	query := `SELECT status, COUNT(*) FROM tool_units WHERE group_id = $1 GROUP BY status`
	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return sum, mapErr(err, "summarize tool units")
	}
	defer rows.Close()

	for rows.Next() {
		var status domain.UnitStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return sum, mapErr(err, "scan unit summary")
		}
		sum.Add(status, n)
	}
	return sum, mapErr(rows.Err(), "summarize tool units")
}
