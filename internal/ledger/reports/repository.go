package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides the read-only slices of ledger state reports derive
// from. Draft entries never appear in any of these queries.
type Repository interface {
	AccountBalances(ctx context.Context, orgID int64) ([]AccountBalance, error)
	Movements(ctx context.Context, orgID int64, from, to time.Time) ([]MovementRow, error)
	CashMovements(ctx context.Context, orgID int64, from, to time.Time) ([]CashMovement, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) AccountBalances(ctx context.Context, orgID int64) ([]AccountBalance, error) {
	rows, err := r.db.Query(ctx, `SELECT id, parent_id, code, name, type, sub_type, balance FROM accounts WHERE org_id=$1 ORDER BY code`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var balances []AccountBalance
	for rows.Next() {
		var b AccountBalance
		if err := rows.Scan(&b.AccountID, &b.ParentID, &b.Code, &b.Name, &b.Type, &b.SubType, &b.Balance); err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

func (r *repository) Movements(ctx context.Context, orgID int64, from, to time.Time) ([]MovementRow, error) {
	rows, err := r.db.Query(ctx, `SELECT a.id, a.parent_id, a.code, a.name, a.type,
SUM(CASE WHEN a.type='REVENUE' THEN l.credit - l.debit ELSE l.debit - l.credit END)
FROM journal_lines l
JOIN journal_entries e ON e.id = l.entry_id
JOIN accounts a ON a.id = l.account_id
WHERE e.org_id=$1 AND e.status <> 'DRAFT' AND e.date BETWEEN $2 AND $3 AND a.type IN ('REVENUE','EXPENSE')
GROUP BY a.id, a.parent_id, a.code, a.name, a.type
ORDER BY a.code`, orgID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var movements []MovementRow
	for rows.Next() {
		var m MovementRow
		if err := rows.Scan(&m.AccountID, &m.ParentID, &m.Code, &m.Name, &m.Type, &m.Amount); err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

// CashMovements nets each posted entry's cash lines and classifies the entry
// by its dominant non-cash counterpart account.
func (r *repository) CashMovements(ctx context.Context, orgID int64, from, to time.Time) ([]CashMovement, error) {
	rows, err := r.db.Query(ctx, `SELECT e.id,
COALESCE((SELECT a2.activity FROM journal_lines l2 JOIN accounts a2 ON a2.id = l2.account_id
          WHERE l2.entry_id = e.id AND NOT a2.is_cash
          ORDER BY GREATEST(l2.debit, l2.credit) DESC LIMIT 1), 'OPERATING'),
SUM(l.debit - l.credit)
FROM journal_entries e
JOIN journal_lines l ON l.entry_id = e.id
JOIN accounts a ON a.id = l.account_id
WHERE e.org_id=$1 AND e.status <> 'DRAFT' AND e.date BETWEEN $2 AND $3 AND a.is_cash
GROUP BY e.id
HAVING SUM(l.debit - l.credit) <> 0
ORDER BY e.id`, orgID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var movements []CashMovement
	for rows.Next() {
		var m CashMovement
		if err := rows.Scan(&m.EntryID, &m.Activity, &m.Amount); err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}
