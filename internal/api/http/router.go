package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"toolrent-backend/internal/domain"
	"toolrent-backend/internal/logger"
	"toolrent-backend/internal/service"

	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ActorHeader carries the opaque acting-user id written into kardex details.
const ActorHeader = "X-Acting-User"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Services struct {
	Catalog   service.CatalogService
	Customers service.CustomerService
	Rentals   service.RentalService
	Ledger    service.LedgerService
	Reports   service.ReportService
}

type Handler struct {
	svc Services
}

// NewRouter wires every route. An empty metricsPath leaves metrics unexposed.
func NewRouter(svc Services, metricsPath string) *mux.Router {
	h := &Handler{svc: svc}
	r := mux.NewRouter()
	r.Use(logRequests)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/groups", h.RegisterGroup).Methods(http.MethodPost)
	api.HandleFunc("/groups", h.ListGroups).Methods(http.MethodGet)
	api.HandleFunc("/groups/{id:[0-9]+}", h.GetGroup).Methods(http.MethodGet)
	api.HandleFunc("/groups/{id:[0-9]+}/units", h.ListUnits).Methods(http.MethodGet)
	api.HandleFunc("/groups/{id:[0-9]+}/replacement-value", h.UpdateReplacementValue).Methods(http.MethodPut)
	api.HandleFunc("/groups/{id:[0-9]+}/stock", h.AdjustStock).Methods(http.MethodPost)
	api.HandleFunc("/groups/{id:[0-9]+}/deactivate", h.DeactivateGroup).Methods(http.MethodPost)
	api.HandleFunc("/units/{id:[0-9]+}/status", h.ChangeUnitStatus).Methods(http.MethodPut)

	api.HandleFunc("/customers", h.RegisterCustomer).Methods(http.MethodPost)
	api.HandleFunc("/customers", h.ListCustomers).Methods(http.MethodGet)
	api.HandleFunc("/customers/{id:[0-9]+}", h.GetCustomer).Methods(http.MethodGet)
	api.HandleFunc("/customers/{id:[0-9]+}/status", h.ChangeCustomerStatus).Methods(http.MethodPut)

	api.HandleFunc("/loans", h.RegisterLoan).Methods(http.MethodPost)
	api.HandleFunc("/loans/{id:[0-9]+}", h.GetLoan).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id:[0-9]+}/return", h.ReturnLoan).Methods(http.MethodPost)

	api.HandleFunc("/kardex", h.ListKardex).Methods(http.MethodGet)
	api.HandleFunc("/reports/active-loans", h.ActiveLoans).Methods(http.MethodGet)
	api.HandleFunc("/reports/overdue-customers", h.OverdueCustomers).Methods(http.MethodGet)
	api.HandleFunc("/reports/top-tools", h.TopTools).Methods(http.MethodGet)

	if metricsPath != "" {
		r.Handle(metricsPath, promhttp.Handler()).Methods(http.MethodGet)
	}
	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"actor", actor(r),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func actor(r *http.Request) string {
	if a := r.Header.Get(ActorHeader); a != "" {
		return a
	}
	return "anonymous"
}

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps a domain error kind to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNoAvailability),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, domain.ErrStorage):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError || status == http.StatusServiceUnavailable {
		logger.Error("Request failed", "error", err, "status", status)
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func decode(r *http.Request, into any) error {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", domain.ErrValidation, err)
	}
	return nil
}

// decodeOptional is decode for bodies that may be empty, whatever the
// Content-Length says.
func decodeOptional(r *http.Request, into any) error {
	err := json.NewDecoder(r.Body).Decode(into)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("%w: malformed request body: %v", domain.ErrValidation, err)
}

func pathID(r *http.Request) (int32, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid id %q", domain.ErrValidation, raw)
	}
	return int32(id), nil
}

func queryID(r *http.Request, name string) (*int32, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %s %q", domain.ErrValidation, name, raw)
	}
	v := int32(id)
	return &v, nil
}

// parseTime accepts RFC 3339 timestamps or plain dates (midnight UTC).
func parseTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid time %q", domain.ErrValidation, raw)
	}
	return t, nil
}

func queryTime(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := parseTime(raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// queryRange reads the required from and to parameters.
func queryRange(r *http.Request) (time.Time, time.Time, error) {
	from, err := queryTime(r, "from")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := queryTime(r, "to")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if from == nil || to == nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: from and to are required", domain.ErrValidation)
	}
	return *from, *to, nil
}
