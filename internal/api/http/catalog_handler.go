package http

import (
	"net/http"

	"toolrent-backend/internal/domain"
	"toolrent-backend/internal/service"

	"github.com/shopspring/decimal"
)

type registerGroupRequest struct {
	Name             string           `json:"name"`
	Category         string           `json:"category"`
	ReplacementValue *decimal.Decimal `json:"replacement_value"`
	DailyRentalRate  decimal.Decimal  `json:"daily_rental_rate"`
	DailyFineRate    *decimal.Decimal `json:"daily_fine_rate"`
	InitialStock     int              `json:"initial_stock"`
}

func (h *Handler) RegisterGroup(w http.ResponseWriter, r *http.Request) {
	var req registerGroupRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	group, err := h.svc.Catalog.RegisterGroup(r.Context(), service.RegisterGroupRequest{
		Name:             req.Name,
		Category:         req.Category,
		ReplacementValue: req.ReplacementValue,
		DailyRentalRate:  req.DailyRentalRate,
		DailyFineRate:    req.DailyFineRate,
		InitialStock:     req.InitialStock,
	}, actor(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, group)
}

func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.svc.Catalog.ListGroups(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	group, err := h.svc.Catalog.GetGroup(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

func (h *Handler) ListUnits(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	units, err := h.svc.Catalog.ListUnits(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, units)
}

func (h *Handler) UpdateReplacementValue(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		Value decimal.Decimal `json:"value"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	group, err := h.svc.Catalog.UpdateReplacementValue(r.Context(), id, req.Value)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

func (h *Handler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		Delta int `json:"delta"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	group, err := h.svc.Catalog.AdjustStock(r.Context(), id, req.Delta, actor(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

func (h *Handler) DeactivateGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	group, err := h.svc.Catalog.DeactivateGroup(r.Context(), id, actor(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

func (h *Handler) ChangeUnitStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		Status domain.UnitStatus `json:"status"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	unit, err := h.svc.Catalog.ChangeUnitStatus(r.Context(), id, req.Status, actor(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, unit)
}
