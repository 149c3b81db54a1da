package calchandler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"uren/internal/domain/commission"
	"uren/internal/transport/http/api"
	"uren/internal/transport/http/middleware"
)

// SnapshotSource yields the roster state the calculator projects from.
type SnapshotSource interface {
	LoadSnapshot(ctx context.Context) (commission.Snapshot, error)
}

type Handler struct {
	Source SnapshotSource
}

func NewHandler(source SnapshotSource) *Handler {
	return &Handler{Source: source}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/calc", func(r chi.Router) {
		r.Get("/entries", h.handleEntries)
		r.Get("/payouts", h.handlePayouts)
		r.Get("/totals", h.handleTotals)
		r.Post("/", h.handleCompute)
	})
}

func (h *Handler) handleEntries(w http.ResponseWriter, r *http.Request) {
	result, ok := h.compute(w, r)
	if !ok {
		return
	}
	api.Success(w, result.PerEntry, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePayouts(w http.ResponseWriter, r *http.Request) {
	result, ok := h.compute(w, r)
	if !ok {
		return
	}
	api.Success(w, result.Payouts, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleTotals(w http.ResponseWriter, r *http.Request) {
	result, ok := h.compute(w, r)
	if !ok {
		return
	}
	api.Success(w, result.Totals, middleware.GetRequestID(r.Context()))
}

// handleCompute runs the waterfall over a snapshot supplied in the request
// body instead of the stored roster, for what-if calculations.
func (h *Handler) handleCompute(w http.ResponseWriter, r *http.Request) {
	var snapshot commission.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snapshot); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, commission.Compute(snapshot), middleware.GetRequestID(r.Context()))
}

func (h *Handler) compute(w http.ResponseWriter, r *http.Request) (commission.Result, bool) {
	snapshot, err := h.Source.LoadSnapshot(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "calc_failed", "failed to load roster snapshot", middleware.GetRequestID(r.Context()))
		return commission.Result{}, false
	}
	return commission.Compute(snapshot), true
}
