package reports

import (
	"context"
	"time"
)

// CacheMetrics counts cache effectiveness for cached reports.
type CacheMetrics interface {
	ReportCacheHit()
	ReportCacheMiss()
}

// Service derives financial statements from posted ledger state. It keeps no
// mutable report state of its own, so every report is consistent with the
// ledger by construction.
type Service struct {
	repo    Repository
	cache   *Cache
	metrics CacheMetrics
}

func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// WithMetrics attaches cache hit/miss counters.
func (s *Service) WithMetrics(m CacheMetrics) {
	s.metrics = m
}

// TrialBalance lists every account balance in its debit or credit column.
func (s *Service) TrialBalance(ctx context.Context, orgID int64) (TrialBalance, error) {
	if tb, ok := s.cache.GetTrialBalance(ctx, orgID); ok {
		if s.metrics != nil {
			s.metrics.ReportCacheHit()
		}
		return tb, nil
	}
	if s.metrics != nil {
		s.metrics.ReportCacheMiss()
	}
	balances, err := s.repo.AccountBalances(ctx, orgID)
	if err != nil {
		return TrialBalance{}, err
	}
	tb := BuildTrialBalance(balances)
	s.cache.SetTrialBalance(ctx, orgID, tb)
	return tb, nil
}

// BalanceSheet is point-in-time: it derives from current balances.
func (s *Service) BalanceSheet(ctx context.Context, orgID int64) (BalanceSheet, error) {
	balances, err := s.repo.AccountBalances(ctx, orgID)
	if err != nil {
		return BalanceSheet{}, err
	}
	return BuildBalanceSheet(balances), nil
}

// ProfitAndLoss is period-bound: it derives from posted entries in range.
func (s *Service) ProfitAndLoss(ctx context.Context, orgID int64, from, to time.Time) (ProfitAndLoss, error) {
	movements, err := s.repo.Movements(ctx, orgID, from, to)
	if err != nil {
		return ProfitAndLoss{}, err
	}
	return BuildProfitAndLoss(from, to, movements), nil
}

// CashFlow nets posted cash movements into activity buckets.
func (s *Service) CashFlow(ctx context.Context, orgID int64, from, to time.Time) (CashFlow, error) {
	movements, err := s.repo.CashMovements(ctx, orgID, from, to)
	if err != nil {
		return CashFlow{}, err
	}
	return BuildCashFlow(from, to, movements), nil
}
