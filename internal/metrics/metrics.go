// Package metrics holds the Prometheus collectors for rental and catalog
// outcomes. Collectors register on the default registry at init.
package metrics

import (
	"errors"

	"toolrent-backend/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

const namespace = "toolrent"

var LoansRegistered = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "rental",
	Name:      "loans_registered_total",
	Help:      "Loans successfully registered.",
})

var LoansReturned = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "rental",
	Name:      "loans_returned_total",
	Help:      "Loans returned, partitioned by whether the return was late.",
}, []string{"late"})

var OperationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "core",
	Name:      "operation_failures_total",
	Help:      "Failed state-changing operations by operation and error kind.",
}, []string{"operation", "reason"})

var FinesCharged = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "rental",
	Name:      "fines_charged_total",
	Help:      "Sum of late fines charged, in currency units.",
})

var KardexMovements = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "ledger",
	Name:      "movements_total",
	Help:      "Kardex entries appended, by movement type.",
}, []string{"type"})

var OverdueCustomers = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Subsystem: "reports",
	Name:      "overdue_customers",
	Help:      "Customers with at least one overdue loan at the last scheduled report.",
})

// Reason names the error kind of err for use as a label value.
func Reason(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrNoAvailability):
		return "no_availability"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, domain.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, domain.ErrStorage):
		return "storage"
	default:
		return "other"
	}
}

// ObserveMovement counts one appended kardex entry.
func ObserveMovement(t domain.MovementType) {
	KardexMovements.WithLabelValues(string(t)).Inc()
}

// ObserveFine adds a charged fine to the running total.
func ObserveFine(amount decimal.Decimal) {
	f, _ := amount.Float64()
	FinesCharged.Add(f)
}
