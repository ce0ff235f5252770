package http

import (
	"net/http"
	"time"

	"toolrent-backend/internal/domain"
	"toolrent-backend/internal/service"

	"github.com/shopspring/decimal"
)

func (h *Handler) RegisterCustomer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Rut   string `json:"rut"`
		Phone string `json:"phone"`
		Email string `json:"email"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	c, err := h.svc.Customers.RegisterCustomer(r.Context(), service.RegisterCustomerRequest{
		Name:  req.Name,
		Rut:   req.Rut,
		Phone: req.Phone,
		Email: req.Email,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.svc.Customers.ListCustomers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customers)
}

func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	c, err := h.svc.Customers.GetCustomer(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) ChangeCustomerStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		Status domain.CustomerStatus `json:"status"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	c, err := h.svc.Customers.ChangeStatus(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type registerLoanRequest struct {
	GroupID    int32     `json:"group_id"`
	CustomerID int32     `json:"customer_id"`
	DueDate    time.Time `json:"due_date"`
}

func (h *Handler) RegisterLoan(w http.ResponseWriter, r *http.Request) {
	var req registerLoanRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	loan, err := h.svc.Rentals.RegisterLoan(r.Context(), req.GroupID, req.CustomerID, req.DueDate, actor(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, loan)
}

func (h *Handler) GetLoan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	loan, err := h.svc.Rentals.GetLoan(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loan)
}

// ReturnLoan accepts an empty body when there is no damage charge.
func (h *Handler) ReturnLoan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		DamageCharge decimal.Decimal `json:"damage_charge"`
	}
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, err)
		return
	}
	loan, err := h.svc.Rentals.ReturnLoan(r.Context(), id, req.DamageCharge, actor(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loan)
}
