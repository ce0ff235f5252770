package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Loan is one borrowing transaction. It is created by the loan registration
// and mutated only by the return; loans are never deleted.
type Loan struct {
	ID           int32           `json:"id"`
	CustomerID   int32           `json:"customer_id"`
	UnitID       int32           `json:"unit_id"`
	GroupID      int32           `json:"group_id"`
	LoanDate     time.Time       `json:"loan_date"`
	DueDate      time.Time       `json:"due_date"`
	ReturnDate   *time.Time      `json:"return_date,omitempty"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	FineAmount   decimal.Decimal `json:"fine_amount"`
	DamageCharge decimal.Decimal `json:"damage_charge"`
}

// Active reports whether the loan has not been returned yet.
func (l *Loan) Active() bool {
	return l.ReturnDate == nil
}

// Overdue reports whether the loan is still out after its due date.
func (l *Loan) Overdue(now time.Time) bool {
	return l.Active() && l.DueDate.Before(now)
}

// ToolLoanCount is one row of the most-loaned tools ranking.
type ToolLoanCount struct {
	Group ToolGroup `json:"group"`
	Count int       `json:"count"`
}
