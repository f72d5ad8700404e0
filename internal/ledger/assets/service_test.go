package assets

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas-erp/atlas-erp/internal/ledger/journal"
	"github.com/atlas-erp/atlas-erp/internal/ledger/periods"
	"github.com/atlas-erp/atlas-erp/internal/ledger/shared"
)

type fakeAssetRepo struct {
	mu     sync.Mutex
	assets map[int64]*FixedAsset
	nextID int64
}

func newFakeAssetRepo() *fakeAssetRepo {
	return &fakeAssetRepo{assets: make(map[int64]*FixedAsset), nextID: 1}
}

func (r *fakeAssetRepo) Create(ctx context.Context, asset FixedAsset) (FixedAsset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	asset.ID = r.nextID
	r.nextID++
	asset.Status = StatusActive
	asset.Accumulated = decimal.Zero
	stored := asset
	r.assets[asset.ID] = &stored
	return asset, nil
}

func (r *fakeAssetRepo) GetByID(ctx context.Context, orgID, id int64) (FixedAsset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	asset, ok := r.assets[id]
	if !ok || asset.OrgID != orgID {
		return FixedAsset{}, shared.ErrNotFound
	}
	return *asset, nil
}

func (r *fakeAssetRepo) List(ctx context.Context, orgID int64) ([]FixedAsset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []FixedAsset
	for _, asset := range r.assets {
		if asset.OrgID == orgID {
			out = append(out, *asset)
		}
	}
	return out, nil
}

func (r *fakeAssetRepo) ListActive(ctx context.Context, orgID int64) ([]FixedAsset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []FixedAsset
	for _, asset := range r.assets {
		if asset.OrgID == orgID && asset.Status == StatusActive {
			out = append(out, *asset)
		}
	}
	return out, nil
}

func (r *fakeAssetRepo) ActiveOrgIDs(ctx context.Context) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[int64]bool)
	var out []int64
	for _, asset := range r.assets {
		if asset.Status == StatusActive && !seen[asset.OrgID] {
			seen[asset.OrgID] = true
			out = append(out, asset.OrgID)
		}
	}
	return out, nil
}

func (r *fakeAssetRepo) ApplyDepreciation(ctx context.Context, orgID, id int64, amount decimal.Decimal, status Status, actorID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	asset, ok := r.assets[id]
	if !ok || asset.OrgID != orgID {
		return shared.ErrNotFound
	}
	asset.Accumulated = asset.Accumulated.Add(amount)
	asset.Status = status
	return nil
}

func (r *fakeAssetRepo) UpdateStatus(ctx context.Context, orgID, id int64, status Status, actorID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	asset, ok := r.assets[id]
	if !ok || asset.OrgID != orgID {
		return shared.ErrNotFound
	}
	asset.Status = status
	return nil
}

// fakePoster records posted inputs and simulates the unique source link.
type fakePoster struct {
	mu         sync.Mutex
	posted     []journal.CreateInput
	seenKeys   map[string]bool
	nextNumber int64
}

func newFakePoster() *fakePoster {
	return &fakePoster{seenKeys: make(map[string]bool), nextNumber: 100}
}

func (p *fakePoster) PostNew(ctx context.Context, in journal.CreateInput) (journal.Entry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	key := in.SourceModule + ":" + in.SourceKey
	if p.seenKeys[key] {
		return journal.Entry{}, shared.ErrSourceAlreadyPosted
	}
	p.seenKeys[key] = true
	p.posted = append(p.posted, in)
	number := p.nextNumber
	p.nextNumber++
	return journal.Entry{ID: number, Number: number, Status: journal.EntryStatusPosted}, nil
}

func marchPeriod() periods.Period {
	return periods.Period{
		ID: 1, OrgID: 1, Code: "2026-03", Status: periods.StatusOpen,
		StartDate: time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC),
	}
}

func createMachine(t *testing.T, svc *Service) FixedAsset {
	t.Helper()
	asset, err := svc.Create(context.Background(), CreateInput{
		OrgID:                1,
		Code:                 "FA-001",
		Name:                 "CNC machine",
		PurchasePrice:        "12000",
		SalvageValue:         "0",
		UsefulLifeYears:      5,
		Method:               MethodStraightLine,
		PurchaseDate:         time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC),
		AssetAccountID:       10,
		ExpenseAccountID:     20,
		AccumulatedAccountID: 30,
		ActorID:              7,
	})
	require.NoError(t, err)
	return asset
}

func TestRunPostsMonthlyCharge(t *testing.T) {
	repo := newFakeAssetRepo()
	poster := newFakePoster()
	svc := NewService(repo, poster, nil)
	asset := createMachine(t, svc)

	results, err := svc.Run(context.Background(), 1, marchPeriod(), 7)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Skipped)
	assert.Equal(t, "200.00", results[0].Amount.StringFixed(2))

	require.Len(t, poster.posted, 1)
	in := poster.posted[0]
	assert.Equal(t, journal.EntryTypeDepreciation, in.Type)
	assert.Equal(t, "DEPRECIATION", in.SourceModule)
	assert.Equal(t, fmt.Sprintf("asset:%d:2026-03", asset.ID), in.SourceKey)
	assert.Equal(t, marchPeriod().EndDate, in.Date)
	require.Len(t, in.Lines, 2)
	assert.Equal(t, int64(20), in.Lines[0].AccountID)
	assert.Equal(t, "200.00", in.Lines[0].Debit.StringFixed(2))
	assert.Equal(t, int64(30), in.Lines[1].AccountID)
	assert.Equal(t, "200.00", in.Lines[1].Credit.StringFixed(2))

	updated, err := svc.Get(context.Background(), 1, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, "200.00", updated.Accumulated.StringFixed(2))
	assert.Equal(t, "11800.00", updated.CurrentValue().StringFixed(2))
	assert.Equal(t, StatusActive, updated.Status)
}

func TestRunIsIdempotentPerPeriod(t *testing.T) {
	repo := newFakeAssetRepo()
	poster := newFakePoster()
	svc := NewService(repo, poster, nil)
	asset := createMachine(t, svc)

	_, err := svc.Run(context.Background(), 1, marchPeriod(), 7)
	require.NoError(t, err)

	results, err := svc.Run(context.Background(), 1, marchPeriod(), 7)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Skipped)

	assert.Len(t, poster.posted, 1, "rerun must not post a second charge")
	updated, err := svc.Get(context.Background(), 1, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, "200.00", updated.Accumulated.StringFixed(2))
}

func TestRunSkipsAssetsPurchasedAfterPeriod(t *testing.T) {
	repo := newFakeAssetRepo()
	poster := newFakePoster()
	svc := NewService(repo, poster, nil)
	asset := createMachine(t, svc)
	repo.assets[asset.ID].PurchaseDate = time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)

	results, err := svc.Run(context.Background(), 1, marchPeriod(), 7)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, poster.posted)
}

func TestRunMarksAssetFullyDepreciated(t *testing.T) {
	repo := newFakeAssetRepo()
	poster := newFakePoster()
	svc := NewService(repo, poster, nil)
	asset := createMachine(t, svc)
	repo.assets[asset.ID].Accumulated = decimal.NewFromInt(11900)

	results, err := svc.Run(context.Background(), 1, marchPeriod(), 7)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "100.00", results[0].Amount.StringFixed(2), "final charge caps at the remaining base")

	updated, err := svc.Get(context.Background(), 1, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFullyDepreciated, updated.Status)
	assert.Equal(t, "12000.00", updated.Accumulated.StringFixed(2))
}

func TestRunRetiresExhaustedAssetWithoutPosting(t *testing.T) {
	repo := newFakeAssetRepo()
	poster := newFakePoster()
	svc := NewService(repo, poster, nil)
	asset := createMachine(t, svc)
	repo.assets[asset.ID].Accumulated = decimal.NewFromInt(12000)

	results, err := svc.Run(context.Background(), 1, marchPeriod(), 7)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Skipped)
	assert.Empty(t, poster.posted)

	updated, err := svc.Get(context.Background(), 1, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFullyDepreciated, updated.Status)
}

func TestDisposedAssetLeavesSchedule(t *testing.T) {
	repo := newFakeAssetRepo()
	poster := newFakePoster()
	svc := NewService(repo, poster, nil)
	asset := createMachine(t, svc)

	require.NoError(t, svc.Dispose(context.Background(), 1, asset.ID, 7))
	require.ErrorIs(t, svc.Dispose(context.Background(), 1, asset.ID, 7), shared.ErrInvalidStatus)

	results, err := svc.Run(context.Background(), 1, marchPeriod(), 7)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCreateValidatesInput(t *testing.T) {
	svc := NewService(newFakeAssetRepo(), newFakePoster(), nil)

	_, err := svc.Create(context.Background(), CreateInput{OrgID: 1, Name: "x", Method: "GUESS", UsefulLifeYears: 5})
	require.Error(t, err)

	_, err = svc.Create(context.Background(), CreateInput{
		OrgID: 1, Name: "x", Method: MethodStraightLine, UsefulLifeYears: 5,
		PurchasePrice: "1000", SalvageValue: "2000",
		AssetAccountID: 1, ExpenseAccountID: 2, AccumulatedAccountID: 3,
	})
	require.Error(t, err, "salvage above purchase price must be rejected")
}
