package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/atlas-erp/atlas-erp/internal/app"
	"github.com/atlas-erp/atlas-erp/internal/ledger/assets"
	"github.com/atlas-erp/atlas-erp/internal/ledger/coa"
	"github.com/atlas-erp/atlas-erp/internal/ledger/journal"
	"github.com/atlas-erp/atlas-erp/internal/ledger/periods"
	"github.com/atlas-erp/atlas-erp/internal/ledger/reports"
	"github.com/atlas-erp/atlas-erp/internal/observability"
	"github.com/atlas-erp/atlas-erp/internal/platform/cache"
	"github.com/atlas-erp/atlas-erp/internal/platform/db"
	"github.com/atlas-erp/atlas-erp/internal/shared"
	"github.com/atlas-erp/atlas-erp/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(pool)

	accountRepo := coa.NewRepository(pool)
	accountService := coa.NewService(accountRepo, auditLogger)
	accountsHandler := coa.NewHandler(logger, accountService)

	periodRepo := periods.NewRepository(pool)
	periodService := periods.NewService(periodRepo, auditLogger)
	periodsHandler := periods.NewHandler(logger, periodService)

	reportRepo := reports.NewRepository(pool)
	reportCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)
	reportService := reports.NewService(reportRepo, reportCache)
	reportService.WithMetrics(metrics)
	reportsHandler := reports.NewHandler(logger, reportService)

	journalRepo := journal.NewRepository(pool)
	journalService := journal.NewService(journalRepo, auditLogger)
	journalService.WithObserver(metrics)
	journalService.WithCacheInvalidator(reportCache)
	journalHandler := journal.NewHandler(logger, journalService)

	assetRepo := assets.NewRepository(pool)
	assetService := assets.NewService(assetRepo, journalService, auditLogger)
	assetsHandler := assets.NewHandler(logger, assetService, periodService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobClient, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		AccountsHandler: accountsHandler,
		JournalHandler:  journalHandler,
		PeriodsHandler:  periodsHandler,
		AssetsHandler:   assetsHandler,
		ReportsHandler:  reportsHandler,
		JobHandler:      jobHandler,
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
