package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache keeps trial balance payloads hot for a short TTL. The ledger is the
// source of truth; a stale read here only lasts until the TTL lapses.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache wraps a redis client for report caching.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func trialBalanceKey(orgID int64) string {
	return fmt.Sprintf("reports:tb:%d", orgID)
}

// GetTrialBalance returns the cached report, or false on miss or any cache
// failure.
func (c *Cache) GetTrialBalance(ctx context.Context, orgID int64) (TrialBalance, bool) {
	if c == nil || c.client == nil {
		return TrialBalance{}, false
	}
	data, err := c.client.Get(ctx, trialBalanceKey(orgID)).Bytes()
	if err != nil {
		return TrialBalance{}, false
	}
	var tb TrialBalance
	if err := json.Unmarshal(data, &tb); err != nil {
		return TrialBalance{}, false
	}
	return tb, true
}

// SetTrialBalance stores the report; cache failures are ignored.
func (c *Cache) SetTrialBalance(ctx context.Context, orgID int64, tb TrialBalance) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(tb)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, trialBalanceKey(orgID), data, c.ttl).Err()
}

// Invalidate drops the cached report, called after a posting run when
// freshness matters more than the TTL.
func (c *Cache) Invalidate(ctx context.Context, orgID int64) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, trialBalanceKey(orgID)).Err()
}
