package domain

import (
	"time"

	"github.com/google/uuid"
)

type MovementType string

const (
	MovementTypeRegistry MovementType = "REGISTRY"
	MovementTypeLoan     MovementType = "LOAN"
	MovementTypeReturn   MovementType = "RETURN"
	MovementTypeRetire   MovementType = "RETIRE"
	MovementTypeRepair   MovementType = "REPAIR"
	MovementTypeReEntry  MovementType = "RE_ENTRY"
)

// statusMovements maps a maintenance transition target to the kardex entry
// it produces. Targets missing from the table produce no entry.
var statusMovements = map[UnitStatus]MovementType{
	UnitStatusInRepair:  MovementTypeRepair,
	UnitStatusRetired:   MovementTypeRetire,
	UnitStatusAvailable: MovementTypeReEntry,
}

// MovementForStatus returns the movement type recorded when a unit is moved
// to status outside the loan workflow.
func MovementForStatus(status UnitStatus) (MovementType, bool) {
	t, ok := statusMovements[status]
	return t, ok
}

// KardexMovement is one immutable ledger entry. Entries are appended once and
// never updated or deleted; ID order is insertion order.
type KardexMovement struct {
	ID            int64        `json:"id"`
	GroupID       int32        `json:"group_id"`
	UnitID        int32        `json:"unit_id"`
	CustomerID    int32        `json:"customer_id"`
	Type          MovementType `json:"type"`
	OccurredAt    time.Time    `json:"occurred_at"`
	Detail        string       `json:"detail"`
	CorrelationID uuid.UUID    `json:"correlation_id"`
}

// KardexFilter narrows a ledger listing. Zero values mean "no constraint".
type KardexFilter struct {
	GroupID *int32
	UnitID  *int32
	From    *time.Time
	To      *time.Time
}

// Matches reports whether m satisfies every set constraint of f.
func (f KardexFilter) Matches(m KardexMovement) bool {
	if f.GroupID != nil && m.GroupID != *f.GroupID {
		return false
	}
	if f.UnitID != nil && m.UnitID != *f.UnitID {
		return false
	}
	if f.From != nil && m.OccurredAt.Before(*f.From) {
		return false
	}
	if f.To != nil && m.OccurredAt.After(*f.To) {
		return false
	}
	return true
}
