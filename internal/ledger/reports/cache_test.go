package reports

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas-erp/atlas-erp/internal/ledger/coa"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute), mr
}

func cachedReport() TrialBalance {
	return BuildTrialBalance([]AccountBalance{
		{AccountID: 1, Code: "1000", Name: "Cash", Type: coa.AccountTypeAsset, Balance: decimal.NewFromInt(500)},
		{AccountID: 2, Code: "3000", Name: "Capital", Type: coa.AccountTypeEquity, Balance: decimal.NewFromInt(500)},
	})
}

func TestCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	_, ok := cache.GetTrialBalance(ctx, 1)
	assert.False(t, ok)

	want := cachedReport()
	cache.SetTrialBalance(ctx, 1, want)

	got, ok := cache.GetTrialBalance(ctx, 1)
	require.True(t, ok)
	assert.True(t, got.IsBalanced)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, "500.00", got.TotalDebit.StringFixed(2))
}

func TestCacheIsScopedPerOrg(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	cache.SetTrialBalance(ctx, 1, cachedReport())

	_, ok := cache.GetTrialBalance(ctx, 2)
	assert.False(t, ok)
}

func TestCacheInvalidate(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	cache.SetTrialBalance(ctx, 1, cachedReport())
	cache.Invalidate(ctx, 1)

	_, ok := cache.GetTrialBalance(ctx, 1)
	assert.False(t, ok)
}

func TestCacheEntryExpires(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	cache.SetTrialBalance(ctx, 1, cachedReport())
	mr.FastForward(2 * time.Minute)

	_, ok := cache.GetTrialBalance(ctx, 1)
	assert.False(t, ok)
}

func TestNilCacheIsSafe(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	_, ok := cache.GetTrialBalance(ctx, 1)
	assert.False(t, ok)
	cache.SetTrialBalance(ctx, 1, TrialBalance{})
	cache.Invalidate(ctx, 1)
}
