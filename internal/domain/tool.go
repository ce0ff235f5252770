package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type UnitStatus string

const (
	UnitStatusAvailable UnitStatus = "AVAILABLE"
	UnitStatusLoaned    UnitStatus = "LOANED"
	UnitStatusInRepair  UnitStatus = "IN_REPAIR"
	UnitStatusRetired   UnitStatus = "RETIRED"
)

// Valid reports whether s is one of the known unit statuses.
func (s UnitStatus) Valid() bool {
	switch s {
	case UnitStatusAvailable, UnitStatusLoaned, UnitStatusInRepair, UnitStatusRetired:
		return true
	}
	return false
}

// Terminal reports whether no further transition may leave s.
func (s UnitStatus) Terminal() bool {
	return s == UnitStatusRetired
}

// Tariff is the pricing pair owned by exactly one ToolGroup.
type Tariff struct {
	DailyRentalRate decimal.Decimal `json:"daily_rental_rate"`
	DailyFineRate   decimal.Decimal `json:"daily_fine_rate"`
}

type ToolGroup struct {
	ID               int32           `json:"id"`
	Name             string          `json:"name"`
	Category         string          `json:"category"`
	ReplacementValue decimal.Decimal `json:"replacement_value"`
	Tariff           Tariff          `json:"tariff"`
	Stock            *StockSummary   `json:"stock,omitempty"` // Populated on reads
	DeactivatedAt    *time.Time      `json:"deactivated_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// Active reports whether the group still lends units. Deactivation is final.
func (g ToolGroup) Active() bool {
	return g.DeactivatedAt == nil
}

// StockSummary counts the units of one group per status. Units are never
// destroyed, so Total is every unit ever created for the group.
type StockSummary struct {
	Available int `json:"available"`
	Loaned    int `json:"loaned"`
	InRepair  int `json:"in_repair"`
	Retired   int `json:"retired"`
}

func (s StockSummary) Total() int {
	return s.Available + s.Loaned + s.InRepair + s.Retired
}

// Add increments the counter for status by n.
func (s *StockSummary) Add(status UnitStatus, n int) {
	switch status {
	case UnitStatusAvailable:
		s.Available += n
	case UnitStatusLoaned:
		s.Loaned += n
	case UnitStatusInRepair:
		s.InRepair += n
	case UnitStatusRetired:
		s.Retired += n
	}
}

// ToolUnit is one physical instance of a ToolGroup. GroupID never changes.
type ToolUnit struct {
	ID        int32      `json:"id"`
	GroupID   int32      `json:"group_id"`
	Status    UnitStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
