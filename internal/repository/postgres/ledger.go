package postgres

import (
	"context"
	"fmt"

	"toolrent-backend/internal/domain"
	"toolrent-backend/internal/logger"
	"toolrent-backend/internal/repository"

	"github.com/doug-martin/goqu/v9"
)

const (
	tableKardex      = "kardex_movements"
	colID            = "id"
	colGroupID       = "group_id"
	colUnitID        = "unit_id"
	colCustomerID    = "customer_id"
	colMovementType  = "movement_type"
	colOccurredAt    = "occurred_at"
	colDetail        = "detail"
	colCorrelationID = "correlation_id"
)

type kardexRepository struct {
	db DBTX
}

func NewKardexRepository(db DBTX) repository.KardexRepository {
	return &kardexRepository{db: db}
}

func (r *kardexRepository) Append(ctx context.Context, m *domain.KardexMovement) error {
	query := `INSERT INTO kardex_movements (group_id, unit_id, customer_id, movement_type, occurred_at, detail, correlation_id)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	logger.DatabaseCall("kardexRepository.Append", query, "type", m.Type, "unitID", m.UnitID)
	err := r.db.QueryRowContext(ctx, query, m.GroupID, m.UnitID, m.CustomerID, m.Type, m.OccurredAt, m.Detail, m.CorrelationID).
		Scan(&m.ID)
	return mapErr(err, "append kardex movement")
}

func (r *kardexRepository) List(ctx context.Context, filter domain.KardexFilter) ([]domain.KardexMovement, error) {
	query, args, err := buildKardexQuery(filter)
	if err != nil {
		return nil, err
	}

	logger.DatabaseCall("kardexRepository.List", query)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapErr(err, "list kardex movements")
	}
	defer rows.Close()

	var movements []domain.KardexMovement
	for rows.Next() {
		var m domain.KardexMovement
		if err := rows.Scan(&m.ID, &m.GroupID, &m.UnitID, &m.CustomerID, &m.Type, &m.OccurredAt, &m.Detail, &m.CorrelationID); err != nil {
			return nil, mapErr(err, "scan kardex movement")
		}
		movements = append(movements, m)
	}
	return movements, mapErr(rows.Err(), "list kardex movements")
}

func buildKardexQuery(filter domain.KardexFilter) (string, []any, error) {
	where := make([]goqu.Expression, 0, 4)
	if filter.GroupID != nil {
		where = append(where, goqu.C(colGroupID).Eq(*filter.GroupID))
	}
	if filter.UnitID != nil {
		where = append(where, goqu.C(colUnitID).Eq(*filter.UnitID))
	}
	if filter.From != nil {
		where = append(where, goqu.C(colOccurredAt).Gte(*filter.From))
	}
	if filter.To != nil {
		where = append(where, goqu.C(colOccurredAt).Lte(*filter.To))
	}

	ds := goqu.Dialect(dialectPostgres).
		From(tableKardex).
		Prepared(true).
		Select(colID, colGroupID, colUnitID, colCustomerID, colMovementType, colOccurredAt, colDetail, colCorrelationID).
		Order(goqu.I(colID).Asc())
	if len(where) > 0 {
		ds = ds.Where(goqu.And(where...))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return "", nil, fmt.Errorf("failed to build kardex query: %w", err)
	}
	return query, args, nil
}
