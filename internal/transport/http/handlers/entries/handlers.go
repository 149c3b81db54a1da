package entryhandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"uren/internal/domain/commission"
	"uren/internal/domain/roster"
	"uren/internal/transport/http/api"
	"uren/internal/transport/http/middleware"
	"uren/internal/transport/http/shared"
)

type Handler struct {
	Store roster.StoreAPI
}

func NewHandler(store roster.StoreAPI) *Handler {
	return &Handler{Store: store}
}

type createPayload struct {
	ProfileID        string                `json:"profileId"`
	ClientHourlyRate float64               `json:"clientHourlyRate"`
	Time             commission.TimeRecord `json:"time"`
}

type updatePayload struct {
	Name             string                `json:"name"`
	HourlyCostRate   float64               `json:"hourlyCostRate"`
	ClientHourlyRate float64               `json:"clientHourlyRate"`
	Time             commission.TimeRecord `json:"time"`
}

type rulesPayload struct {
	RuleIDs []string `json:"ruleIds"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/entries", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{entryID}", h.handleGet)
		r.Put("/{entryID}", h.handleUpdate)
		r.Delete("/{entryID}", h.handleDelete)
		r.Put("/{entryID}/rules", h.handleSetRules)
		r.Post("/{entryID}/refresh", h.handleRefresh)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Store.ListEntries(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "entries_list_failed", "failed to list entries", middleware.GetRequestID(r.Context()))
		return
	}

	page := shared.ParsePagination(r, 100, 500)
	if page.Offset >= len(entries) {
		entries = entries[:0]
	} else {
		entries = entries[page.Offset:]
	}
	if len(entries) > page.Limit {
		entries = entries[:page.Limit]
	}
	api.Success(w, entries, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	entry, err := h.Store.GetEntry(r.Context(), chi.URLParam(r, "entryID"))
	if err != nil {
		failStore(w, r, err, "entry_get_failed", "failed to load entry")
		return
	}
	api.Success(w, entry, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload createPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("profileId", payload.ProfileID, "is required")
	v.Finite("clientHourlyRate", payload.ClientHourlyRate)
	v.NonNegative("clientHourlyRate", payload.ClientHourlyRate)
	validateTime(v, payload.Time)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	entry, err := h.Store.CreateEntry(r.Context(), payload.ProfileID, payload.ClientHourlyRate, payload.Time)
	if err != nil {
		failStore(w, r, err, "entry_create_failed", "failed to create entry")
		return
	}
	api.Created(w, entry, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var payload updatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "is required")
	v.Finite("hourlyCostRate", payload.HourlyCostRate)
	v.NonNegative("hourlyCostRate", payload.HourlyCostRate)
	v.Finite("clientHourlyRate", payload.ClientHourlyRate)
	v.NonNegative("clientHourlyRate", payload.ClientHourlyRate)
	validateTime(v, payload.Time)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	entry, err := h.Store.UpdateEntry(r.Context(), chi.URLParam(r, "entryID"), roster.EntryParams{
		Name:             payload.Name,
		HourlyCostRate:   payload.HourlyCostRate,
		ClientHourlyRate: payload.ClientHourlyRate,
		Time:             payload.Time,
	})
	if err != nil {
		failStore(w, r, err, "entry_update_failed", "failed to update entry")
		return
	}
	api.Success(w, entry, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteEntry(r.Context(), chi.URLParam(r, "entryID")); err != nil {
		failStore(w, r, err, "entry_delete_failed", "failed to delete entry")
		return
	}
	api.Success(w, map[string]bool{"deleted": true}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSetRules(w http.ResponseWriter, r *http.Request) {
	var payload rulesPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	entry, err := h.Store.SetEntryRules(r.Context(), chi.URLParam(r, "entryID"), payload.RuleIDs)
	if err != nil {
		failStore(w, r, err, "entry_rules_failed", "failed to set entry rules")
		return
	}
	api.Success(w, entry, middleware.GetRequestID(r.Context()))
}

// handleRefresh re-copies the profile's current name and cost rate onto the
// entry and drops active rule ids the profile no longer has.
func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	entry, err := h.Store.RefreshEntry(r.Context(), chi.URLParam(r, "entryID"))
	if err != nil {
		failStore(w, r, err, "entry_refresh_failed", "failed to refresh entry")
		return
	}
	api.Success(w, entry, middleware.GetRequestID(r.Context()))
}

func validateTime(v *shared.Validator, record commission.TimeRecord) {
	v.Clock("time.start", record.Start)
	v.Clock("time.stop", record.Stop)
	v.Finite("time.totalHours", record.TotalHours)
}

func failStore(w http.ResponseWriter, r *http.Request, err error, code, message string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, roster.ErrEntryNotFound), errors.Is(err, roster.ErrProfileNotFound):
		status = http.StatusNotFound
	case errors.Is(err, roster.ErrRuleNotOnProfile):
		status = http.StatusBadRequest
	}
	api.Fail(w, status, code, message, middleware.GetRequestID(r.Context()))
}
