package postgres

import (
	"context"
	"fmt"

	"toolrent-backend/internal/domain"
	"toolrent-backend/internal/logger"
	"toolrent-backend/internal/repository"
)

type loanRepository struct {
	db DBTX
}

func NewLoanRepository(db DBTX) repository.LoanRepository {
	return &loanRepository{db: db}
}

const loanColumns = `id, customer_id, unit_id, group_id, loan_date, due_date, return_date, total_cost, fine_amount, damage_charge`

func scanLoan(row interface{ Scan(...any) error }) (*domain.Loan, error) {
	l := &domain.Loan{}
	if err := row.Scan(&l.ID, &l.CustomerID, &l.UnitID, &l.GroupID, &l.LoanDate, &l.DueDate, &l.ReturnDate, &l.TotalCost, &l.FineAmount, &l.DamageCharge); err != nil {
		return nil, err
	}
	return l, nil
}

func (r *loanRepository) Create(ctx context.Context, l *domain.Loan) error {
	query := `INSERT INTO loans (customer_id, unit_id, group_id, loan_date, due_date, total_cost, fine_amount, damage_charge)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	logger.DatabaseCall("loanRepository.Create", query, "customerID", l.CustomerID, "unitID", l.UnitID)
	err := r.db.QueryRowContext(ctx, query, l.CustomerID, l.UnitID, l.GroupID, l.LoanDate, l.DueDate, l.TotalCost, l.FineAmount, l.DamageCharge).
		Scan(&l.ID)
	return mapErr(err, "create loan")
}

func (r *loanRepository) GetByID(ctx context.Context, id int32) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`
	l, err := scanLoan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapErr(err, fmt.Sprintf("loan %d", id))
	}
	return l, nil
}

func (r *loanRepository) GetForUpdate(ctx context.Context, id int32) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1 FOR UPDATE`
	l, err := scanLoan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapErr(err, fmt.Sprintf("loan %d", id))
	}
	return l, nil
}

func (r *loanRepository) MarkReturned(ctx context.Context, l *domain.Loan) error {
	query := `UPDATE loans SET return_date = $1, fine_amount = $2, damage_charge = $3
	          WHERE id = $4 AND return_date IS NULL`
	res, err := r.db.ExecContext(ctx, query, l.ReturnDate, l.FineAmount, l.DamageCharge, l.ID)
	if err != nil {
		return mapErr(err, "mark loan returned")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return mapErr(err, "mark loan returned")
	}
	logger.DatabaseResult("loanRepository.MarkReturned", n, nil, "loanID", l.ID)
	if n == 0 {
		return fmt.Errorf("%w: loan %d already returned", domain.ErrInvalidState, l.ID)
	}
	return nil
}
