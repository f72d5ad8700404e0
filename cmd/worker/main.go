package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/atlas-erp/atlas-erp/internal/app"
	jobmetrics "github.com/atlas-erp/atlas-erp/internal/jobs"
	"github.com/atlas-erp/atlas-erp/internal/ledger/assets"
	"github.com/atlas-erp/atlas-erp/internal/ledger/journal"
	"github.com/atlas-erp/atlas-erp/internal/ledger/periods"
	"github.com/atlas-erp/atlas-erp/internal/observability"
	"github.com/atlas-erp/atlas-erp/internal/platform/db"
	"github.com/atlas-erp/atlas-erp/internal/shared"
	"github.com/atlas-erp/atlas-erp/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(pool)

	periodService := periods.NewService(periods.NewRepository(pool), auditLogger)

	journalService := journal.NewService(journal.NewRepository(pool), auditLogger)
	journalService.WithObserver(metrics)

	assetService := assets.NewService(assets.NewRepository(pool), journalService, auditLogger)

	depreciationHandler := jobs.NewDepreciationHandler(jobs.DepreciationDeps{
		Assets:     assetService,
		Periods:    periodService,
		Logger:     logger,
		Metrics:    metrics,
		JobMetrics: jobmetrics.NewMetrics(metrics.Registerer()),
	})

	sweepTask, err := jobs.NewDepreciationRunTask(jobs.DepreciationRunPayload{})
	if err != nil {
		logger.Error("build depreciation task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskDepreciationRun, Handler: depreciationHandler},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.DepreciationCron, Task: sweepTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
