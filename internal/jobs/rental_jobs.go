package jobs

import (
	"context"

	"toolrent-backend/internal/domain"
	"toolrent-backend/internal/logger"
	"toolrent-backend/internal/metrics"
)

// ReportOverdueLoans refreshes the overdue customer gauge and logs who is late
func (jr *JobRunner) ReportOverdueLoans() {
	jr.runWithRecovery("ReportOverdueLoans", func(ctx context.Context) {
		if _, err := jr.overdueCustomers(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to report overdue loans", "error", err)
		}
	})
}

func (jr *JobRunner) overdueCustomers(ctx context.Context) ([]domain.Customer, error) {
	customers, err := jr.services.Report.OverdueCustomers(ctx)
	if err != nil {
		return nil, err
	}

	metrics.OverdueCustomers.Set(float64(len(customers)))
	logger.InfoContext(ctx, "Overdue customers found", "count", len(customers))

	for _, c := range customers {
		logger.DebugContext(ctx, "Customer has overdue loans",
			"customer_id", c.ID,
			"rut", c.Rut,
			"name", c.Name)
	}
	return customers, nil
}
