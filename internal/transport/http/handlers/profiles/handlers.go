package profilehandler

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

type profilePayload struct {
	Name           string  `json:"name"`
	HourlyCostRate float64 `json:"hourlyCostRate"`
}

type rulePayload struct {
	Basis         string  `json:"basis"`
	Kind          string  `json:"kind"`
	Value         float64 `json:"value"`
	BeneficiaryID string  `json:"beneficiaryId"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/profiles", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{profileID}", h.handleGet)
		r.Put("/{profileID}", h.handleUpdate)
		r.Delete("/{profileID}", h.handleDelete)
		r.Post("/{profileID}/rules", h.handleCreateRule)
		r.Put("/{profileID}/rules/{ruleID}", h.handleUpdateRule)
		r.Delete("/{profileID}/rules/{ruleID}", h.handleDeleteRule)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.Store.ListProfiles(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "profiles_list_failed", "failed to list profiles", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, profiles, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	profile, err := h.Store.GetProfile(r.Context(), chi.URLParam(r, "profileID"))
	if err != nil {
		failStore(w, r, err, "profile_get_failed", "failed to load profile")
		return
	}
	api.Success(w, profile, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload profilePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if rejectProfile(w, r, payload) {
		return
	}

	profile, err := h.Store.CreateProfile(r.Context(), payload.Name, payload.HourlyCostRate)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "profile_create_failed", "failed to create profile", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, profile, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var payload profilePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if rejectProfile(w, r, payload) {
		return
	}

	profile, err := h.Store.UpdateProfile(r.Context(), chi.URLParam(r, "profileID"), payload.Name, payload.HourlyCostRate)
	if err != nil {
		failStore(w, r, err, "profile_update_failed", "failed to update profile")
		return
	}
	api.Success(w, profile, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteProfile(r.Context(), chi.URLParam(r, "profileID")); err != nil {
		failStore(w, r, err, "profile_delete_failed", "failed to delete profile")
		return
	}
	api.Success(w, map[string]bool{"deleted": true}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	params, ok := decodeRule(w, r)
	if !ok {
		return
	}

	rule, err := h.Store.CreateRule(r.Context(), chi.URLParam(r, "profileID"), params)
	if err != nil {
		failStore(w, r, err, "rule_create_failed", "failed to create rule")
		return
	}
	api.Created(w, rule, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateRule(w http.ResponseWriter, r *http.Request) {
	params, ok := decodeRule(w, r)
	if !ok {
		return
	}

	rule, err := h.Store.UpdateRule(r.Context(), chi.URLParam(r, "profileID"), chi.URLParam(r, "ruleID"), params)
	if err != nil {
		failStore(w, r, err, "rule_update_failed", "failed to update rule")
		return
	}
	api.Success(w, rule, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	err := h.Store.DeleteRule(r.Context(), chi.URLParam(r, "profileID"), chi.URLParam(r, "ruleID"))
	if err != nil {
		failStore(w, r, err, "rule_delete_failed", "failed to delete rule")
		return
	}
	api.Success(w, map[string]bool{"deleted": true}, middleware.GetRequestID(r.Context()))
}

func rejectProfile(w http.ResponseWriter, r *http.Request, payload profilePayload) bool {
	v := shared.NewValidator()
	v.Required("name", payload.Name, "is required")
	v.Finite("hourlyCostRate", payload.HourlyCostRate)
	v.NonNegative("hourlyCostRate", payload.HourlyCostRate)
	return v.Reject(w, middleware.GetRequestID(r.Context()))
}

func decodeRule(w http.ResponseWriter, r *http.Request) (roster.RuleParams, bool) {
	var payload rulePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return roster.RuleParams{}, false
	}

	v := shared.NewValidator()
	v.Required("basis", payload.Basis, "is required")
	v.Enum("basis", payload.Basis, commission.Bases, "must be hourly or margin")
	v.Required("kind", payload.Kind, "is required")
	v.Enum("kind", payload.Kind, commission.Kinds, "must be percentage or fixed_amount")
	v.Finite("value", payload.Value)
	v.NonNegative("value", payload.Value)
	if payload.Kind == commission.KindPercentage && payload.Value > 100 {
		v.Add("value", "percentage may not exceed 100")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return roster.RuleParams{}, false
	}

	return roster.RuleParams{
		Basis:         payload.Basis,
		Kind:          payload.Kind,
		Value:         payload.Value,
		BeneficiaryID: payload.BeneficiaryID,
	}, true
}

func failStore(w http.ResponseWriter, r *http.Request, err error, code, message string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, roster.ErrProfileNotFound), errors.Is(err, roster.ErrRuleNotFound):
		status = http.StatusNotFound
	}
	api.Fail(w, status, code, message, middleware.GetRequestID(r.Context()))
}
