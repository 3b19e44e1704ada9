package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/idevisu/fincast/internal/export"
	"github.com/idevisu/fincast/internal/forecast"
	"github.com/idevisu/fincast/internal/models"
	"github.com/idevisu/fincast/internal/repository"
	"github.com/idevisu/fincast/internal/service"
)

type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Health reports service liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Forecast serves the month-bucketed forecast
func (h *Handler) Forecast(w http.ResponseWriter, r *http.Request) {
	months := queryInt(r, "months", 6)

	view := forecast.View(r.URL.Query().Get("view"))
	if view == "" {
		view = forecast.ViewOutstanding
	}
	if !view.Valid() {
		respondError(w, http.StatusBadRequest, "view must be outstanding or scheduled")
		return
	}

	direction := models.Direction(r.URL.Query().Get("direction"))
	if direction != "" && !direction.Valid() {
		respondError(w, http.StatusBadRequest, "direction must be income or expense")
		return
	}

	buckets, err := h.svc.Forecast(r.Context(), forecast.Options{
		Months:    months,
		Direction: direction,
		View:      view,
	})
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, buckets)
}

// Receivables serves the outstanding income forecast
func (h *Handler) Receivables(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.svc.Receivables(r.Context(), queryInt(r, "months", 12))
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, buckets)
}

// Cashflow serves the per-month income/expense chart series
func (h *Handler) Cashflow(w http.ResponseWriter, r *http.Request) {
	points, err := h.svc.Cashflow(r.Context(), queryInt(r, "months", 6))
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, points)
}

// OverdueAlerts serves the months carrying overdue obligations
func (h *Handler) OverdueAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, total, err := h.svc.Overdue(r.Context(), time.Now().UTC())
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	if alerts == nil {
		alerts = []models.OverdueAlert{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"alerts": alerts,
		"total":  total,
	})
}

// ExportForecast serves the forecast as an XML report document
func (h *Handler) ExportForecast(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.svc.Forecast(r.Context(), forecast.Options{
		Months: queryInt(r, "months", 6),
		View:   forecast.ViewScheduled,
	})
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	doc := export.ForecastReport(buckets, time.Now().UTC())
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="forecast.xml"`)
	if _, err := doc.WriteTo(w); err != nil {
		// Headers are already out; nothing left to do but log upstream.
		return
	}
}

// CreateEntry stores a new one-off ledger entry
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var input service.CreateEntryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	entry, err := h.svc.CreateEntry(r.Context(), input)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, entry)
}

// DeleteEntry removes a ledger entry
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid entry id")
		return
	}
	if err := h.svc.DeleteEntry(r.Context(), id); err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateSeries stores a new recurring series
func (h *Handler) CreateSeries(w http.ResponseWriter, r *http.Request) {
	var input service.CreateSeriesInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	series, err := h.svc.CreateSeries(r.Context(), input)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, series)
}

// DeleteSeries deactivates a recurring series
func (h *Handler) DeleteSeries(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid series id")
		return
	}
	if err := h.svc.DeactivateSeries(r.Context(), id); err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecordPayment materializes one billing cycle of a series
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid series id")
		return
	}
	var input service.RecordPaymentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	payment, err := h.svc.RecordPayment(r.Context(), id, input)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, payment)
}

// SkipCycle marks one billing cycle as waived
func (h *Handler) SkipCycle(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid series id")
		return
	}
	var input struct {
		Year  int        `json:"year"`
		Month time.Month `json:"month"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.SkipCycle(r.Context(), id, input.Year, input.Month); err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func respondJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, map[string]string{"error": message})
}
