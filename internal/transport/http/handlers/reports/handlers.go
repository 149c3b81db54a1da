package reporthandler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"uren/internal/domain/commission"
	"uren/internal/domain/reports"
	"uren/internal/transport/http/api"
	"uren/internal/transport/http/middleware"
)

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
	r.Route("/reports", func(r chi.Router) {
		r.Get("/payouts.csv", h.handlePayoutsCSV)
		r.Get("/payouts.pdf", h.handlePayoutsPDF)
		r.Get("/entries.xlsx", h.handleEntriesXLSX)
	})
}

func (h *Handler) handlePayoutsCSV(w http.ResponseWriter, r *http.Request) {
	result, ok := h.compute(w, r)
	if !ok {
		return
	}
	payload, err := reports.PayoutRegisterCSV(result.Payouts)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to render report", middleware.GetRequestID(r.Context()))
		return
	}
	serveFile(w, "payouts.csv", "text/csv", payload)
}

func (h *Handler) handlePayoutsPDF(w http.ResponseWriter, r *http.Request) {
	result, ok := h.compute(w, r)
	if !ok {
		return
	}
	payload, err := reports.PayoutOverviewPDF(result, time.Now().UTC())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to render report", middleware.GetRequestID(r.Context()))
		return
	}
	serveFile(w, "payouts.pdf", "application/pdf", payload)
}

func (h *Handler) handleEntriesXLSX(w http.ResponseWriter, r *http.Request) {
	result, ok := h.compute(w, r)
	if !ok {
		return
	}
	payload, err := reports.EntriesWorkbook(result)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to render report", middleware.GetRequestID(r.Context()))
		return
	}
	serveFile(w, "entries.xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", payload)
}

func (h *Handler) compute(w http.ResponseWriter, r *http.Request) (commission.Result, bool) {
	snapshot, err := h.Source.LoadSnapshot(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to load roster snapshot", middleware.GetRequestID(r.Context()))
		return commission.Result{}, false
	}
	return commission.Compute(snapshot), true
}

func serveFile(w http.ResponseWriter, name, contentType string, payload []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}
