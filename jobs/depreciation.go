package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/atlas-erp/atlas-erp/internal/jobs"
	"github.com/atlas-erp/atlas-erp/internal/ledger/assets"
	"github.com/atlas-erp/atlas-erp/internal/ledger/periods"
	"github.com/atlas-erp/atlas-erp/internal/observability"
)

// systemActorID marks entries posted by the scheduler rather than a user.
const systemActorID = 0

// DepreciationDeps collects dependencies for the depreciation task handler.
type DepreciationDeps struct {
	Assets     *assets.Service
	Periods    *periods.Service
	Logger     *slog.Logger
	Metrics    *observability.Metrics
	JobMetrics *jobmetrics.Metrics
}

// NewDepreciationHandler processes TaskDepreciationRun tasks. Reruns are safe:
// assets whose charge already posted for the period are skipped.
func NewDepreciationHandler(deps DepreciationDeps) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload DepreciationRunPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		tracker := deps.JobMetrics.Track(TaskDepreciationRun)
		return tracker.End(runDepreciation(ctx, deps, payload))
	}
}

func runDepreciation(ctx context.Context, deps DepreciationDeps, payload DepreciationRunPayload) error {
	orgs := []int64{payload.OrgID}
	if payload.OrgID == 0 {
		var err error
		orgs, err = deps.Assets.ActiveOrgs(ctx)
		if err != nil {
			return err
		}
	}

	for _, orgID := range orgs {
		period, ok, err := resolvePeriod(ctx, deps.Periods, orgID, payload.PeriodID)
		if err != nil {
			return err
		}
		if !ok {
			deps.Logger.Warn("no period defined for depreciation run", slog.Int64("org_id", orgID))
			continue
		}
		if period.Status == periods.StatusClosed {
			deps.Logger.Warn("period closed, skipping depreciation run",
				slog.Int64("org_id", orgID), slog.String("period", period.Code))
			continue
		}

		results, err := deps.Assets.Run(ctx, orgID, period, systemActorID)
		if err != nil {
			deps.Logger.Error("depreciation run failed",
				slog.Int64("org_id", orgID), slog.String("period", period.Code), slog.Any("error", err))
			return err
		}

		posted, skipped := 0, 0
		for _, result := range results {
			if result.Skipped {
				skipped++
				continue
			}
			posted++
		}
		deps.Logger.Info("depreciation run complete",
			slog.Int64("org_id", orgID),
			slog.String("period", period.Code),
			slog.Int("posted", posted),
			slog.Int("skipped", skipped))
		deps.Metrics.DepreciationRun()
	}
	return nil
}

// resolvePeriod picks the explicit period when given, otherwise the period
// containing the last day of the previous month.
func resolvePeriod(ctx context.Context, svc *periods.Service, orgID, periodID int64) (periods.Period, bool, error) {
	if periodID != 0 {
		period, err := svc.Get(ctx, orgID, periodID)
		if err != nil {
			return periods.Period{}, false, err
		}
		return period, true, nil
	}
	now := time.Now().UTC()
	target := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	return svc.FindByDate(ctx, orgID, target)
}
