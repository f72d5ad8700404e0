package periods

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

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
	r.Post("/{id}/close", h.Close)
}

type createPeriodRequest struct {
	Code      string `json:"code" validate:"required"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	identity := internalshared.IdentityFromContext(r.Context())
	periods, err := h.service.List(r.Context(), identity.OrgID)
	if err != nil {
		h.logger.Error("list periods", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, periods)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	identity := internalshared.IdentityFromContext(r.Context())
	var req createPeriodRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	start, _ := time.Parse("2006-01-02", req.StartDate)
	end, _ := time.Parse("2006-01-02", req.EndDate)
	period, err := h.service.Create(r.Context(), CreateInput{
		OrgID:     identity.OrgID,
		Code:      req.Code,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, period)
}

func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	identity := internalshared.IdentityFromContext(r.Context())
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", fmt.Sprintf("invalid period id %q", raw))
		return
	}
	period, err := h.service.Close(r.Context(), identity.OrgID, id, identity.UserID)
	if err != nil {
		h.logger.Warn("close period", slog.Int64("period", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, period)
}
