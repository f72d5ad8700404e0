package coa

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/atlas-erp/atlas-erp/internal/platform/httpx"
	internalshared "github.com/atlas-erp/atlas-erp/internal/shared"
)

type Handler struct {
	service  *Service
	logger   *slog.Logger
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{service: service, logger: logger, validate: validator.New()}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/hierarchy", h.Hierarchy)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/deactivate", h.Deactivate)
}

type createAccountRequest struct {
	Code     string `json:"code" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Type     string `json:"type" validate:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	SubType  string `json:"sub_type"`
	Activity string `json:"activity" validate:"omitempty,oneof=OPERATING INVESTING FINANCING"`
	IsCash   bool   `json:"is_cash"`
	ParentID *int64 `json:"parent_id"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	identity := internalshared.IdentityFromContext(r.Context())
	var (
		accounts []Account
		err      error
	)
	if t := r.URL.Query().Get("type"); t != "" {
		accounts, err = h.service.ListByType(r.Context(), identity.OrgID, AccountType(t))
	} else {
		accounts, err = h.service.List(r.Context(), identity.OrgID)
	}
	if err != nil {
		h.logger.Error("list accounts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, accounts)
}

func (h *Handler) Hierarchy(w http.ResponseWriter, r *http.Request) {
	identity := internalshared.IdentityFromContext(r.Context())
	nodes, err := h.service.ListHierarchy(r.Context(), identity.OrgID)
	if err != nil {
		h.logger.Error("list account hierarchy", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, nodes)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	identity := internalshared.IdentityFromContext(r.Context())
	id, err := accountIDParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	account, err := h.service.Get(r.Context(), identity.OrgID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, account)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	identity := internalshared.IdentityFromContext(r.Context())
	var req createAccountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	account, err := h.service.Create(r.Context(), CreateInput{
		OrgID:    identity.OrgID,
		Code:     req.Code,
		Name:     req.Name,
		Type:     AccountType(req.Type),
		SubType:  SubType(req.SubType),
		Activity: CashActivity(req.Activity),
		IsCash:   req.IsCash,
		ParentID: req.ParentID,
		ActorID:  identity.UserID,
	})
	if err != nil {
		h.logger.Warn("create account", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, account)
}

func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	identity := internalshared.IdentityFromContext(r.Context())
	id, err := accountIDParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.Deactivate(r.Context(), identity.OrgID, id, identity.UserID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func accountIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid account id %q", raw)
	}
	return id, nil
}
