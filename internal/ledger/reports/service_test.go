package reports

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas-erp/atlas-erp/internal/ledger/coa"
)

type fakeReportRepo struct {
	balances  []AccountBalance
	movements []MovementRow
	cash      []CashMovement
	queries   int
}

func (r *fakeReportRepo) AccountBalances(ctx context.Context, orgID int64) ([]AccountBalance, error) {
	r.queries++
	return r.balances, nil
}

func (r *fakeReportRepo) Movements(ctx context.Context, orgID int64, from, to time.Time) ([]MovementRow, error) {
	return r.movements, nil
}

func (r *fakeReportRepo) CashMovements(ctx context.Context, orgID int64, from, to time.Time) ([]CashMovement, error) {
	return r.cash, nil
}

type fakeCacheMetrics struct {
	hits   int
	misses int
}

func (m *fakeCacheMetrics) ReportCacheHit()  { m.hits++ }
func (m *fakeCacheMetrics) ReportCacheMiss() { m.misses++ }

func TestTrialBalanceCachesSecondRead(t *testing.T) {
	cache, _ := newTestCache(t)
	repo := &fakeReportRepo{balances: []AccountBalance{
		{AccountID: 1, Code: "1000", Name: "Cash", Type: coa.AccountTypeAsset, Balance: decimal.NewFromInt(700)},
		{AccountID: 2, Code: "3000", Name: "Capital", Type: coa.AccountTypeEquity, Balance: decimal.NewFromInt(700)},
	}}
	svc := NewService(repo, cache)
	metrics := &fakeCacheMetrics{}
	svc.WithMetrics(metrics)
	ctx := context.Background()

	first, err := svc.TrialBalance(ctx, 1)
	require.NoError(t, err)
	assert.True(t, first.IsBalanced)

	second, err := svc.TrialBalance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, first.TotalDebit.StringFixed(2), second.TotalDebit.StringFixed(2))

	assert.Equal(t, 1, repo.queries, "second read should come from cache")
	assert.Equal(t, 1, metrics.misses)
	assert.Equal(t, 1, metrics.hits)
}

func TestTrialBalanceWithoutCacheHitsRepoEveryTime(t *testing.T) {
	repo := &fakeReportRepo{}
	svc := NewService(repo, nil)
	ctx := context.Background()

	_, err := svc.TrialBalance(ctx, 1)
	require.NoError(t, err)
	_, err = svc.TrialBalance(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, 2, repo.queries)
}
