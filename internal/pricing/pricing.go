package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

// DaysBetween returns the number of whole 24h periods from start to end,
// truncated toward zero. It is negative when end precedes start.
func DaysBetween(start, end time.Time) int64 {
	return int64(end.Sub(start) / day)
}

// BillingSkew is how far short of a whole day a loan may fall and still be
// billed for it. A due date computed as "now + N days" by the caller is read
// against a clock that has moved on by the time the loan is written.
const BillingSkew = time.Minute

// ChargeableDays returns the number of rental days billed for a loan running
// from loanDate to dueDate, allowing BillingSkew. Same-day or sub-day loans
// bill one day.
func ChargeableDays(loanDate, dueDate time.Time) int64 {
	days := DaysBetween(loanDate, dueDate.Add(BillingSkew))
	if days < 1 {
		return 1
	}
	return days
}

// RentalCost is dailyRate times the chargeable days of the loan.
func RentalCost(dailyRate decimal.Decimal, loanDate, dueDate time.Time) decimal.Decimal {
	return dailyRate.Mul(decimal.NewFromInt(ChargeableDays(loanDate, dueDate)))
}

// LateFine returns the fine for a unit returned at returnDate against dueDate.
// Returns at or before the due date, or within the first partial day after it,
// carry no fine.
func LateFine(dailyFineRate decimal.Decimal, dueDate, returnDate time.Time) decimal.Decimal {
	if !returnDate.After(dueDate) {
		return decimal.Zero
	}
	days := DaysBetween(dueDate, returnDate)
	if days <= 0 {
		return decimal.Zero
	}
	return dailyFineRate.Mul(decimal.NewFromInt(days))
}
