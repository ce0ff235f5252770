package domain

import "time"

type CustomerStatus string

const (
	CustomerStatusActive     CustomerStatus = "ACTIVE"
	CustomerStatusRestricted CustomerStatus = "RESTRICTED"
)

func (s CustomerStatus) Valid() bool {
	return s == CustomerStatusActive || s == CustomerStatusRestricted
}

// Sentinel values of the reserved customer that internally-originated kardex
// entries (registrations, retirements, maintenance) are attributed to.
const (
	SystemCustomerName  = "System"
	SystemCustomerRut   = "99999999-9"
	SystemCustomerEmail = "system@toolrent.com"
	SystemCustomerPhone = "000000000"
)

type Customer struct {
	ID        int32          `json:"id"`
	Name      string         `json:"name"`
	Rut       string         `json:"rut"`
	Phone     string         `json:"phone"`
	Email     string         `json:"email"`
	Status    CustomerStatus `json:"status"`
	System    bool           `json:"system"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// CanBorrow reports whether the customer is eligible for a new loan.
func (c *Customer) CanBorrow() bool {
	return c.Status == CustomerStatusActive
}

// NewSystemCustomer builds the reserved system customer record.
func NewSystemCustomer() *Customer {
	return &Customer{
		Name:   SystemCustomerName,
		Rut:    SystemCustomerRut,
		Phone:  SystemCustomerPhone,
		Email:  SystemCustomerEmail,
		Status: CustomerStatusActive,
		System: true,
	}
}
