package reports

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/atlas-erp/atlas-erp/internal/platform/httpx"
	internalshared "github.com/atlas-erp/atlas-erp/internal/shared"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/trial-balance", h.TrialBalance)
	r.Get("/balance-sheet", h.BalanceSheet)
	r.Get("/profit-loss", h.ProfitAndLoss)
	r.Get("/cash-flow", h.CashFlow)
}

func (h *Handler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	identity := internalshared.IdentityFromContext(r.Context())
	tb, err := h.service.TrialBalance(r.Context(), identity.OrgID)
	if err != nil {
		h.logger.Error("trial balance", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="trial_balance.csv"`)
		if err := WriteTrialBalanceCSV(w, tb); err != nil {
			h.logger.Error("trial balance csv", slog.Any("error", err))
		}
		return
	}
	httpx.JSON(w, http.StatusOK, tb)
}

func (h *Handler) BalanceSheet(w http.ResponseWriter, r *http.Request) {
	identity := internalshared.IdentityFromContext(r.Context())
	bs, err := h.service.BalanceSheet(r.Context(), identity.OrgID)
	if err != nil {
		h.logger.Error("balance sheet", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bs)
}

func (h *Handler) ProfitAndLoss(w http.ResponseWriter, r *http.Request) {
	identity := internalshared.IdentityFromContext(r.Context())
	from, to, err := dateRange(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	pl, err := h.service.ProfitAndLoss(r.Context(), identity.OrgID, from, to)
	if err != nil {
		h.logger.Error("profit and loss", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pl)
}

func (h *Handler) CashFlow(w http.ResponseWriter, r *http.Request) {
	identity := internalshared.IdentityFromContext(r.Context())
	from, to, err := dateRange(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	cf, err := h.service.CashFlow(r.Context(), identity.OrgID, from, to)
	if err != nil {
		h.logger.Error("cash flow", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cf)
}

// dateRange parses from/to query params, defaulting to the current calendar
// year.
func dateRange(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now()
	from := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(now.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = parsed
	}
	return from, to, nil
}
