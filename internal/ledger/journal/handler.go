package journal

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

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

type lineRequest struct {
	AccountID int64  `json:"account_id" validate:"required"`
	Debit     string `json:"debit"`
	Credit    string `json:"credit"`
	Memo      string `json:"memo"`
}

type createEntryRequest struct {
	Date  string        `json:"date" validate:"required,datetime=2006-01-02"`
	Memo  string        `json:"memo"`
	Type  string        `json:"type" validate:"omitempty,oneof=STANDARD PAYROLL"`
	Lines []lineRequest `json:"lines" validate:"required,min=2,dive"`
}

type updateEntryRequest struct {
	Date  string        `json:"date" validate:"required,datetime=2006-01-02"`
	Memo  string        `json:"memo"`
	Lines []lineRequest `json:"lines" validate:"required,min=2,dive"`
}

type reverseEntryRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	identity := internalshared.IdentityFromContext(r.Context())
	entries, err := h.service.List(r.Context(), identity.OrgID)
	if err != nil {
		h.logger.Error("list journal entries", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entries)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	identity := internalshared.IdentityFromContext(r.Context())
	entryID, err := entryIDParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	entry, err := h.service.Get(r.Context(), identity.OrgID, entryID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	identity := internalshared.IdentityFromContext(r.Context())
	var req createEntryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	date, _ := time.Parse("2006-01-02", req.Date)
	lines, err := parseLines(req.Lines)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	entry, err := h.service.Create(r.Context(), CreateInput{
		OrgID:   identity.OrgID,
		Date:    date,
		Memo:    req.Memo,
		Type:    EntryType(req.Type),
		ActorID: identity.UserID,
		Lines:   lines,
	})
	if err != nil {
		h.logger.Warn("create journal entry", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	identity := internalshared.IdentityFromContext(r.Context())
	entryID, err := entryIDParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	var req updateEntryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	date, _ := time.Parse("2006-01-02", req.Date)
	lines, err := parseLines(req.Lines)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	entry, err := h.service.Update(r.Context(), UpdateInput{
		OrgID:   identity.OrgID,
		EntryID: entryID,
		Date:    date,
		Memo:    req.Memo,
		ActorID: identity.UserID,
		Lines:   lines,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := internalshared.IdentityFromContext(r.Context())
	entryID, err := entryIDParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.Delete(r.Context(), identity.OrgID, entryID, identity.UserID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Post(w http.ResponseWriter, r *http.Request) {
	identity := internalshared.IdentityFromContext(r.Context())
	entryID, err := entryIDParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	entry, err := h.service.Post(r.Context(), identity.OrgID, entryID, identity.UserID)
	if err != nil {
		h.logger.Warn("post journal entry", slog.Int64("entry", entryID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) Reverse(w http.ResponseWriter, r *http.Request) {
	identity := internalshared.IdentityFromContext(r.Context())
	entryID, err := entryIDParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	var req reverseEntryRequest
	if r.ContentLength > 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
			return
		}
	}
	reversal, err := h.service.Reverse(r.Context(), ReverseInput{
		OrgID:   identity.OrgID,
		EntryID: entryID,
		ActorID: identity.UserID,
		Reason:  req.Reason,
	})
	if err != nil {
		h.logger.Warn("reverse journal entry", slog.Int64("entry", entryID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, reversal)
}

func entryIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid entry id %q", raw)
	}
	return id, nil
}

func parseLines(requests []lineRequest) ([]LineInput, error) {
	lines := make([]LineInput, 0, len(requests))
	for idx, req := range requests {
		debit, err := parseAmount(req.Debit)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid debit %q", idx+1, req.Debit)
		}
		credit, err := parseAmount(req.Credit)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid credit %q", idx+1, req.Credit)
		}
		lines = append(lines, LineInput{AccountID: req.AccountID, Debit: debit, Credit: credit, Memo: req.Memo})
	}
	return lines, nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}
