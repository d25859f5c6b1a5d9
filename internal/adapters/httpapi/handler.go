// Package httpapi exposes the planner over a small JSON HTTP API.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/alejandrodnm/debtplan/internal/application/planner"
	"github.com/alejandrodnm/debtplan/internal/domain"
	"github.com/alejandrodnm/debtplan/internal/ports"
)

const maxBodyBytes = 1 << 20

// Service is the subset of the planner the API needs.
type Service interface {
	Preview(req planner.Request) (domain.PlanResult, error)
	Compare(ctx context.Context, req planner.Request) (domain.Comparison, error)
	GetPlan(ctx context.Context, id string) (domain.PlanRun, error)
	History(ctx context.Context, limit int) ([]domain.PlanRun, error)
}

// Handler serves the API routes.
type Handler struct {
	svc Service
	mux *http.ServeMux
}

// NewHandler wires the routes. limiter may be nil.
func NewHandler(svc Service, limiter *IPLimiter) http.Handler {
	h := &Handler{svc: svc, mux: http.NewServeMux()}
	h.mux.HandleFunc("POST /plan", h.plan)
	h.mux.HandleFunc("POST /compare", h.compare)
	h.mux.HandleFunc("GET /plans", h.listPlans)
	h.mux.HandleFunc("GET /plans/{id}", h.getPlan)
	h.mux.HandleFunc("GET /healthz", h.healthz)

	var handler http.Handler = h.mux
	if limiter != nil {
		handler = limiter.Middleware(handler)
	}
	return logRequests(handler)
}

func (h *Handler) plan(w http.ResponseWriter, r *http.Request) {
	var req planner.Request
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.Preview(req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) compare(w http.ResponseWriter, r *http.Request) {
	var req planner.Request
	if !decode(w, r, &req) {
		return
	}
	cmp, err := h.svc.Compare(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

func (h *Handler) getPlan(w http.ResponseWriter, r *http.Request) {
	run, err := h.svc.GetPlan(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (h *Handler) listPlans(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	runs, err := h.svc.History(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if runs == nil {
		runs = []domain.PlanRun{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- helpers ---

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ports.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrUnknownStrategy),
		errors.Is(err, domain.ErrInvalidPortfolio),
		errors.Is(err, planner.ErrNoDebts),
		errors.Is(err, planner.ErrInvalidBudget):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("write response failed", "err", err)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
