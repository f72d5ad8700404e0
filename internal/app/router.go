package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/atlas-erp/atlas-erp/internal/ledger/assets"
	"github.com/atlas-erp/atlas-erp/internal/ledger/coa"
	"github.com/atlas-erp/atlas-erp/internal/ledger/journal"
	"github.com/atlas-erp/atlas-erp/internal/ledger/periods"
	"github.com/atlas-erp/atlas-erp/internal/ledger/reports"
	"github.com/atlas-erp/atlas-erp/internal/observability"
	"github.com/atlas-erp/atlas-erp/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	AccountsHandler *coa.Handler
	JournalHandler  *journal.Handler
	PeriodsHandler  *periods.Handler
	AssetsHandler   *assets.Handler
	ReportsHandler  *reports.Handler
	JobHandler      *jobs.Handler
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router with Atlas defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(IdentityMiddleware(params.Logger))

		r.Route("/ledger", func(r chi.Router) {
			if params.AccountsHandler != nil {
				r.Route("/accounts", params.AccountsHandler.MountRoutes)
			}
			if params.JournalHandler != nil {
				r.Route("/journal", params.JournalHandler.MountRoutes)
			}
			if params.PeriodsHandler != nil {
				r.Route("/periods", params.PeriodsHandler.MountRoutes)
			}
			if params.AssetsHandler != nil {
				r.Route("/assets", params.AssetsHandler.MountRoutes)
			}
			if params.ReportsHandler != nil {
				r.Route("/reports", params.ReportsHandler.MountRoutes)
			}
		})

		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	return r
}
