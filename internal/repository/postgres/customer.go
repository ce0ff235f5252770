package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"toolrent-backend/internal/domain"
	"toolrent-backend/internal/logger"
	"toolrent-backend/internal/repository"
)

type customerRepository struct {
	db DBTX
}

func NewCustomerRepository(db DBTX) repository.CustomerRepository {
	return &customerRepository{db: db}
}

const customerColumns = `id, name, rut, phone, email, status, is_system, created_at, updated_at`

func scanCustomer(row interface{ Scan(...any) error }) (*domain.Customer, error) {
	c := &domain.Customer{}
	if err := row.Scan(&c.ID, &c.Name, &c.Rut, &c.Phone, &c.Email, &c.Status, &c.System, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *customerRepository) Create(ctx context.Context, c *domain.Customer) error {
	query := `INSERT INTO customers (name, rut, phone, email, status, is_system, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW()) RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, c.Name, c.Rut, c.Phone, c.Email, c.Status, c.System).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return mapErr(err, fmt.Sprintf("create customer with rut %q", c.Rut))
}

func (r *customerRepository) GetByID(ctx context.Context, id int32) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	c, err := scanCustomer(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapErr(err, fmt.Sprintf("customer %d", id))
	}
	return c, nil
}

func (r *customerRepository) GetByRut(ctx context.Context, rut string) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE rut = $1`
	c, err := scanCustomer(r.db.QueryRowContext(ctx, query, rut))
	if err != nil {
		return nil, mapErr(err, fmt.Sprintf("customer with rut %q", rut))
	}
	return c, nil
}

// GetOrCreateByRut inserts c unless its rut exists. ON CONFLICT waits for a
// concurrent inserter to finish, and the follow-up read sees its row.
func (r *customerRepository) GetOrCreateByRut(ctx context.Context, c *domain.Customer) (*domain.Customer, error) {
	query := `INSERT INTO customers (name, rut, phone, email, status, is_system, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	          ON CONFLICT (rut) DO NOTHING
	          RETURNING ` + customerColumns
	logger.DatabaseCall("customerRepository.GetOrCreateByRut", query, "rut", c.Rut)
	created, err := scanCustomer(r.db.QueryRowContext(ctx, query, c.Name, c.Rut, c.Phone, c.Email, c.Status, c.System))
	if err == nil {
		return created, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, mapErr(err, fmt.Sprintf("create customer with rut %q", c.Rut))
	}
	return r.GetByRut(ctx, c.Rut)
}

func (r *customerRepository) List(ctx context.Context) ([]domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers ORDER BY id`
	return queryCustomers(ctx, r.db, query)
}

func queryCustomers(ctx context.Context, db DBTX, query string, args ...any) ([]domain.Customer, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapErr(err, "list customers")
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, mapErr(err, "scan customer")
		}
		customers = append(customers, *c)
	}
	return customers, mapErr(rows.Err(), "list customers")
}

func (r *customerRepository) UpdateStatus(ctx context.Context, id int32, status domain.CustomerStatus) error {
	query := `UPDATE customers SET status = $1, updated_at = NOW() WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return mapErr(err, "update customer status")
	}
	return requireOneRow(res, fmt.Sprintf("customer %d", id))
}
