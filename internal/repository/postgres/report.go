package postgres

import (
	"context"
	"time"

	"toolrent-backend/internal/domain"
	"toolrent-backend/internal/repository"
)

type reportRepository struct {
	db DBTX
}

func NewReportRepository(db DBTX) repository.ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) ActiveLoans(ctx context.Context, from, to time.Time) ([]domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans
	          WHERE return_date IS NULL AND loan_date BETWEEN $1 AND $2
	          ORDER BY due_date ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, mapErr(err, "list active loans")
	}
	defer rows.Close()

	var loans []domain.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, mapErr(err, "scan loan")
		}
		loans = append(loans, *l)
	}
	return loans, mapErr(rows.Err(), "list active loans")
}

func (r *reportRepository) OverdueCustomers(ctx context.Context, now time.Time) ([]domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers c
	          WHERE EXISTS (
	              SELECT 1 FROM loans l
	              WHERE l.customer_id = c.id AND l.return_date IS NULL AND l.due_date < $1
	          )
	          ORDER BY c.id`
	return queryCustomers(ctx, r.db, query, now)
}

func (r *reportRepository) TopTools(ctx context.Context, from, to time.Time) ([]domain.ToolLoanCount, error) {
	query := `SELECT g.id, g.name, g.category, g.replacement_value, g.daily_rental_rate, g.daily_fine_rate, g.deactivated_at, g.created_at, COUNT(l.id) AS loans
	          FROM loans l JOIN tool_groups g ON g.id = l.group_id
	          WHERE l.loan_date BETWEEN $1 AND $2
	          GROUP BY g.id
	          ORDER BY loans DESC, g.id ASC`
	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, mapErr(err, "rank tool groups")
	}
	defer rows.Close()

	var ranking []domain.ToolLoanCount
	for rows.Next() {
		var tc domain.ToolLoanCount
		g := &tc.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.Category, &g.ReplacementValue, &g.Tariff.DailyRentalRate, &g.Tariff.DailyFineRate, &g.DeactivatedAt, &g.CreatedAt, &tc.Count); err != nil {
			return nil, mapErr(err, "scan tool ranking")
		}
		ranking = append(ranking, tc)
	}
	return ranking, mapErr(rows.Err(), "rank tool groups")
}
