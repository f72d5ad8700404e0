package assets

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/atlas-erp/atlas-erp/internal/ledger/journal"
	"github.com/atlas-erp/atlas-erp/internal/ledger/periods"
	"github.com/atlas-erp/atlas-erp/internal/ledger/shared"
	internalshared "github.com/atlas-erp/atlas-erp/internal/shared"
)

// SourceModule tags depreciation entries for idempotent posting.
const SourceModule = "DEPRECIATION"

// runConcurrency bounds parallel asset processing in a scheduler run.
const runConcurrency = 4

// Poster is the slice of the journal engine the scheduler needs. It never
// touches account balances directly.
type Poster interface {
	PostNew(ctx context.Context, in journal.CreateInput) (journal.Entry, error)
}

// AuditPort records asset events for compliance.
type AuditPort interface {
	Record(ctx context.Context, log internalshared.AuditLog) error
}

// Service manages fixed assets and runs the periodic depreciation schedule.
type Service struct {
	repo   Repository
	poster Poster
	audit  AuditPort
	now    func() time.Time
}

func NewService(repo Repository, poster Poster, audit AuditPort) *Service {
	return &Service{repo: repo, poster: poster, audit: audit, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// CreateInput carries new asset attributes.
type CreateInput struct {
	OrgID                int64
	Code                 string
	Name                 string
	PurchasePrice        string
	SalvageValue         string
	UsefulLifeYears      int
	Method               Method
	PurchaseDate         time.Time
	AssetAccountID       int64
	ExpenseAccountID     int64
	AccumulatedAccountID int64
	ActorID              int64
}

func (s *Service) Create(ctx context.Context, in CreateInput) (FixedAsset, error) {
	if in.Name == "" {
		return FixedAsset{}, fmt.Errorf("ledger: asset name required")
	}
	if !in.Method.Valid() {
		return FixedAsset{}, fmt.Errorf("ledger: unknown depreciation method %q", in.Method)
	}
	if in.UsefulLifeYears <= 0 {
		return FixedAsset{}, fmt.Errorf("ledger: useful life must be positive")
	}
	price, err := parseAmount(in.PurchasePrice, "purchase price")
	if err != nil {
		return FixedAsset{}, err
	}
	salvage, err := parseAmount(in.SalvageValue, "salvage value")
	if err != nil {
		return FixedAsset{}, err
	}
	if salvage.GreaterThanOrEqual(price) {
		return FixedAsset{}, fmt.Errorf("ledger: salvage value must be below purchase price")
	}
	if in.AssetAccountID == 0 || in.ExpenseAccountID == 0 || in.AccumulatedAccountID == 0 {
		return FixedAsset{}, fmt.Errorf("ledger: asset requires asset, expense, and accumulated account links")
	}
	asset, err := s.repo.Create(ctx, FixedAsset{
		OrgID:                in.OrgID,
		Code:                 in.Code,
		Name:                 in.Name,
		PurchasePrice:        price,
		SalvageValue:         salvage,
		UsefulLifeYears:      in.UsefulLifeYears,
		Method:               in.Method,
		PurchaseDate:         in.PurchaseDate,
		AssetAccountID:       in.AssetAccountID,
		ExpenseAccountID:     in.ExpenseAccountID,
		AccumulatedAccountID: in.AccumulatedAccountID,
		CreatedBy:            in.ActorID,
	})
	if err != nil {
		return FixedAsset{}, err
	}
	s.record(ctx, in.ActorID, "asset.create", asset.ID, map[string]any{"name": asset.Name})
	return asset, nil
}

func (s *Service) Get(ctx context.Context, orgID, id int64) (FixedAsset, error) {
	return s.repo.GetByID(ctx, orgID, id)
}

func (s *Service) List(ctx context.Context, orgID int64) ([]FixedAsset, error) {
	return s.repo.List(ctx, orgID)
}

// ActiveOrgs lists organizations with active assets for the monthly sweep.
func (s *Service) ActiveOrgs(ctx context.Context) ([]int64, error) {
	return s.repo.ActiveOrgIDs(ctx)
}

// Dispose marks an asset disposed; it drops out of future scheduler runs.
func (s *Service) Dispose(ctx context.Context, orgID, id, actorID int64) error {
	asset, err := s.repo.GetByID(ctx, orgID, id)
	if err != nil {
		return err
	}
	if asset.Status == StatusDisposed {
		return shared.ErrInvalidStatus
	}
	if err := s.repo.UpdateStatus(ctx, orgID, id, StatusDisposed, actorID); err != nil {
		return err
	}
	s.record(ctx, actorID, "asset.dispose", id, nil)
	return nil
}

// Run executes the depreciation schedule for one period. Each active asset
// gets exactly one depreciation entry per period; rerunning skips assets whose
// source key already posted, so the run is idempotent. Assets are processed in
// parallel batches; the unique source link keeps concurrent runs from
// double-posting the same asset/period pair.
func (s *Service) Run(ctx context.Context, orgID int64, period periods.Period, actorID int64) ([]RunResult, error) {
	activeAssets, err := s.repo.ListActive(ctx, orgID)
	if err != nil {
		return nil, err
	}
	var (
		mu      sync.Mutex
		results []RunResult
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runConcurrency)
	for _, asset := range activeAssets {
		if asset.PurchaseDate.After(period.EndDate) {
			continue
		}
		g.Go(func() error {
			result, err := s.runOne(ctx, asset, period, actorID)
			if err != nil {
				return fmt.Errorf("asset %s: %w", asset.Name, err)
			}
			mu.Lock()
			results = append(results, result)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func (s *Service) runOne(ctx context.Context, asset FixedAsset, period periods.Period, actorID int64) (RunResult, error) {
	result := RunResult{AssetID: asset.ID, AssetName: asset.Name}
	charge := MonthlyCharge(asset)
	if !charge.IsPositive() {
		if err := s.repo.UpdateStatus(ctx, asset.OrgID, asset.ID, StatusFullyDepreciated, actorID); err != nil {
			return result, err
		}
		result.Skipped = true
		return result, nil
	}
	entry, err := s.poster.PostNew(ctx, journal.CreateInput{
		OrgID:        asset.OrgID,
		Date:         period.EndDate,
		Memo:         fmt.Sprintf("Depreciation %s - %s", period.Code, asset.Name),
		Type:         journal.EntryTypeDepreciation,
		SourceModule: SourceModule,
		SourceKey:    fmt.Sprintf("asset:%d:%s", asset.ID, period.Code),
		ActorID:      actorID,
		Lines: []journal.LineInput{
			{AccountID: asset.ExpenseAccountID, Debit: charge},
			{AccountID: asset.AccumulatedAccountID, Credit: charge},
		},
	})
	if err != nil {
		if errors.Is(err, shared.ErrSourceAlreadyPosted) {
			result.Skipped = true
			return result, nil
		}
		return result, err
	}
	status := StatusActive
	if asset.Accumulated.Add(charge).GreaterThanOrEqual(asset.DepreciableBase()) {
		status = StatusFullyDepreciated
	}
	if err := s.repo.ApplyDepreciation(ctx, asset.OrgID, asset.ID, charge, status, actorID); err != nil {
		return result, err
	}
	result.Amount = charge
	result.EntryNumber = entry.Number
	s.record(ctx, actorID, "asset.depreciate", asset.ID, map[string]any{
		"period": period.Code,
		"amount": charge.StringFixed(2),
		"entry":  entry.Number,
	})
	return result, nil
}

func parseAmount(raw, field string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("ledger: invalid %s %q", field, raw)
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("ledger: %s must not be negative", field)
	}
	return amount, nil
}

func (s *Service) record(ctx context.Context, actorID int64, action string, assetID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, internalshared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "fixed_asset",
		EntityID: fmt.Sprintf("%d", assetID),
		Meta:     meta,
		At:       s.now(),
	})
}
