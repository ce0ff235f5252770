package http

import (
	"net/http"

	"toolrent-backend/internal/domain"
)

func (h *Handler) ListKardex(w http.ResponseWriter, r *http.Request) {
	var filter domain.KardexFilter
	var err error
	if filter.GroupID, err = queryID(r, "group_id"); err != nil {
		writeError(w, err)
		return
	}
	if filter.UnitID, err = queryID(r, "unit_id"); err != nil {
		writeError(w, err)
		return
	}
	if filter.From, err = queryTime(r, "from"); err != nil {
		writeError(w, err)
		return
	}
	if filter.To, err = queryTime(r, "to"); err != nil {
		writeError(w, err)
		return
	}

	movements, err := h.svc.Ledger.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if movements == nil {
		movements = []domain.KardexMovement{}
	}
	writeJSON(w, http.StatusOK, movements)
}

func (h *Handler) ActiveLoans(w http.ResponseWriter, r *http.Request) {
	from, to, err := queryRange(r)
	if err != nil {
		writeError(w, err)
		return
	}
	loans, err := h.svc.Reports.ActiveLoans(r.Context(), from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	if loans == nil {
		loans = []domain.Loan{}
	}
	writeJSON(w, http.StatusOK, loans)
}

func (h *Handler) OverdueCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.svc.Reports.OverdueCustomers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if customers == nil {
		customers = []domain.Customer{}
	}
	writeJSON(w, http.StatusOK, customers)
}

func (h *Handler) TopTools(w http.ResponseWriter, r *http.Request) {
	from, to, err := queryRange(r)
	if err != nil {
		writeError(w, err)
		return
	}
	ranking, err := h.svc.Reports.TopTools(r.Context(), from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	if ranking == nil {
		ranking = []domain.ToolLoanCount{}
	}
	writeJSON(w, http.StatusOK, ranking)
}
