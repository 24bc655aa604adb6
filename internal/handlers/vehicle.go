package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/vehicle-quality/internal/duration"
	"github.com/ukydev/vehicle-quality/internal/metrics"
	"github.com/ukydev/vehicle-quality/internal/models"
	"github.com/ukydev/vehicle-quality/internal/status"
	"github.com/ukydev/vehicle-quality/internal/tracking"
)

// VehicleService is the tracking surface used by the HTTP API.
type VehicleService interface {
	Now() time.Time
	CreateVehicle(ctx context.Context, v models.Vehicle) (*models.Vehicle, error)
	DeleteVehicle(ctx context.Context, id string) error
	RecordEvent(ctx context.Context, vehicleID string, in models.EventInput) (*models.TimelineEvent, error)
	DeleteEvent(ctx context.Context, vehicleID, eventID string) error
	VehicleDetail(ctx context.Context, vehicleID string) (*models.VehicleDetail, error)
	ListVehicles(ctx context.Context) ([]models.VehicleRow, error)
	Elapsed(ctx context.Context, vehicleID string, at time.Time) (duration.Elapsed, string, error)
	Totals(ctx context.Context, vehicleID string) (models.DurationTotals, error)
	QualityReport(ctx context.Context) ([]models.QualityReportRow, error)
	StatusSummary(ctx context.Context) ([]status.SummaryRow, error)
}

// VehicleHandler serves the vehicle and report endpoints.
type VehicleHandler struct {
	service VehicleService
}

// NewVehicleHandler creates a new vehicle handler
func NewVehicleHandler(service VehicleService) *VehicleHandler {
	return &VehicleHandler{service: service}
}

// ElapsedResponse is the body of the elapsed endpoint.
type ElapsedResponse struct {
	VehicleID string `json:"vehicle_id"`
	Kind      string `json:"kind"`
	Elapsed   string `json:"elapsed"`
	Millis    int64  `json:"millis,omitempty"`
	At        string `json:"at"`
}

// Register mounts the API routes on r.
func (h *VehicleHandler) Register(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/vehicles", h.ListVehicles).Methods(http.MethodGet)
	api.HandleFunc("/vehicles", h.CreateVehicle).Methods(http.MethodPost)
	api.HandleFunc("/vehicles/{id}", h.GetVehicle).Methods(http.MethodGet)
	api.HandleFunc("/vehicles/{id}", h.DeleteVehicle).Methods(http.MethodDelete)
	api.HandleFunc("/vehicles/{id}/events", h.RecordEvent).Methods(http.MethodPost)
	api.HandleFunc("/vehicles/{id}/events/{eventID}", h.DeleteEvent).Methods(http.MethodDelete)
	api.HandleFunc("/vehicles/{id}/elapsed", h.Elapsed).Methods(http.MethodGet)
	api.HandleFunc("/vehicles/{id}/totals", h.Totals).Methods(http.MethodGet)
	api.HandleFunc("/reports/quality", h.QualityReport).Methods(http.MethodGet)
	api.HandleFunc("/reports/status-summary", h.StatusSummary).Methods(http.MethodGet)
}

// ListVehicles handles GET /api/vehicles
func (h *VehicleHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.ListVehicles(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// CreateVehicle handles POST /api/vehicles
func (h *VehicleHandler) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	var in models.Vehicle
	if !decodeBody(w, r, &in) {
		return
	}
	v, err := h.service.CreateVehicle(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

// GetVehicle handles GET /api/vehicles/{id}
func (h *VehicleHandler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.VehicleDetail(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// DeleteVehicle handles DELETE /api/vehicles/{id}
func (h *VehicleHandler) DeleteVehicle(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteVehicle(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecordEvent handles POST /api/vehicles/{id}/events
func (h *VehicleHandler) RecordEvent(w http.ResponseWriter, r *http.Request) {
	var in models.EventInput
	if !decodeBody(w, r, &in) {
		metrics.EventsRecorded.WithLabelValues("http", "rejected").Inc()
		return
	}
	event, err := h.service.RecordEvent(r.Context(), mux.Vars(r)["id"], in)
	if err != nil {
		result := "error"
		if statusFor(err) != http.StatusInternalServerError {
			result = "rejected"
		}
		metrics.EventsRecorded.WithLabelValues("http", result).Inc()
		writeError(w, err)
		return
	}
	metrics.EventsRecorded.WithLabelValues("http", "ok").Inc()
	writeJSON(w, http.StatusCreated, event)
}

// DeleteEvent handles DELETE /api/vehicles/{id}/events/{eventID}
func (h *VehicleHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.service.DeleteEvent(r.Context(), vars["id"], vars["eventID"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Elapsed handles GET /api/vehicles/{id}/elapsed. The optional now query
// parameter evaluates the figure at a past or future instant.
func (h *VehicleHandler) Elapsed(w http.ResponseWriter, r *http.Request) {
	at := h.service.Now()
	if raw := r.URL.Query().Get("now"); raw != "" {
		parsed, err := duration.ParseTimestamp(raw)
		if err != nil {
			http.Error(w, "Invalid now parameter", http.StatusBadRequest)
			return
		}
		at = parsed
	}

	id := mux.Vars(r)["id"]
	e, text, err := h.service.Elapsed(r.Context(), id, at)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := ElapsedResponse{
		VehicleID: id,
		Kind:      e.Kind.String(),
		Elapsed:   text,
		At:        models.FormatTimestamp(at),
	}
	if e.Kind == duration.KindDuration {
		resp.Millis = e.Duration.Milliseconds()
	}
	writeJSON(w, http.StatusOK, resp)
}

// Totals handles GET /api/vehicles/{id}/totals
func (h *VehicleHandler) Totals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.service.Totals(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

// QualityReport handles GET /api/reports/quality
func (h *VehicleHandler) QualityReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.QualityReport(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// StatusSummary handles GET /api/reports/status-summary
func (h *VehicleHandler) StatusSummary(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.StatusSummary(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return false
	}
	return true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, tracking.ErrVehicleNotFound), errors.Is(err, tracking.ErrEventNotFound):
		return http.StatusNotFound
	case errors.Is(err, tracking.ErrInvalidEventType),
		errors.Is(err, tracking.ErrInvalidTimestamp),
		errors.Is(err, tracking.ErrInvalidVehicle):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		log.WithError(err).Error("Request failed")
		http.Error(w, "Internal server error", code)
		return
	}
	http.Error(w, err.Error(), code)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("Failed to encode response")
	}
}
