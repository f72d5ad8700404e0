package journal

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/atlas-erp/atlas-erp/internal/ledger/coa"
	"github.com/atlas-erp/atlas-erp/internal/ledger/periods"
	"github.com/atlas-erp/atlas-erp/internal/ledger/shared"
	"github.com/atlas-erp/atlas-erp/internal/platform/db"
)

// Repository encapsulates DB operations for journal entries.
type Repository interface {
	GetEntry(ctx context.Context, orgID, entryID int64) (Entry, error)
	List(ctx context.Context, orgID int64) ([]Entry, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes the operations available inside a posting transaction.
// ApplyBalanceDelta is the only balance write path in the codebase.
type TxRepository interface {
	NextNumber(ctx context.Context, orgID int64) (int64, error)
	InsertEntry(ctx context.Context, entry Entry) (Entry, error)
	InsertLines(ctx context.Context, entryID int64, lines []Line) error
	ReplaceLines(ctx context.Context, entryID int64, lines []Line) error
	GetEntryForUpdate(ctx context.Context, orgID, entryID int64) (Entry, error)
	UpdateEntryHeader(ctx context.Context, entryID int64, date time.Time, memo string) error
	UpdateEntryStatus(ctx context.Context, entryID int64, status EntryStatus, postedBy *int64) error
	SetReversalLinks(ctx context.Context, originalID, reversalID int64) error
	DeleteEntry(ctx context.Context, entryID int64) error
	LinkSource(ctx context.Context, orgID int64, module, key string, entryID int64) error
	GetActiveAccounts(ctx context.Context, orgID int64, ids []int64) (map[int64]coa.Account, error)
	ApplyBalanceDelta(ctx context.Context, accountID int64, delta decimal.Decimal) error
	GetPeriodForDate(ctx context.Context, orgID int64, date time.Time) (periods.Period, bool, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const entryColumns = `id, org_id, number, date, memo, type, status, source_module, source_key, reversal_of, reversed_by, created_by, posted_by, posted_at, created_at, updated_at`

func scanEntry(row pgx.Row) (Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.OrgID, &e.Number, &e.Date, &e.Memo, &e.Type, &e.Status, &e.SourceModule, &e.SourceKey, &e.ReversalOf, &e.ReversedBy, &e.CreatedBy, &e.PostedBy, &e.PostedAt, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func (r *repository) GetEntry(ctx context.Context, orgID, entryID int64) (Entry, error) {
	entry, err := scanEntry(r.db.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE org_id=$1 AND id=$2`, orgID, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, shared.ErrNotFound
		}
		return Entry{}, err
	}
	lines, err := r.loadLines(ctx, r.db, entryID)
	if err != nil {
		return Entry{}, err
	}
	entry.Lines = lines
	return entry, nil
}

func (r *repository) List(ctx context.Context, orgID int64) ([]Entry, error) {
	rows, err := r.db.Query(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE org_id=$1 ORDER BY number DESC`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *repository) loadLines(ctx context.Context, q querier, entryID int64) ([]Line, error) {
	rows, err := q.Query(ctx, `SELECT id, entry_id, account_id, debit, credit, memo FROM journal_lines WHERE entry_id=$1 ORDER BY id`, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lines []Line
	for rows.Next() {
		var line Line
		if err := rows.Scan(&line.ID, &line.EntryID, &line.AccountID, &line.Debit, &line.Credit, &line.Memo); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// WithTx runs fn inside a RepeatableRead transaction. The posting flow relies
// on this being all-or-nothing: the status flip and every balance delta commit
// together or not at all.
func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx, outer: r})
	})
}

type txRepository struct {
	tx    pgx.Tx
	outer *repository
}

// NextNumber allocates the next sequential entry number for the organization.
// The counter row lock serializes concurrent allocations; numbers are never
// reused even when a draft is later deleted.
func (r *txRepository) NextNumber(ctx context.Context, orgID int64) (int64, error) {
	var number int64
	err := r.tx.QueryRow(ctx, `INSERT INTO journal_counters (org_id, last_number) VALUES ($1, 1)
ON CONFLICT (org_id) DO UPDATE SET last_number = journal_counters.last_number + 1
RETURNING last_number`, orgID).Scan(&number)
	return number, err
}

func (r *txRepository) InsertEntry(ctx context.Context, entry Entry) (Entry, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO journal_entries (org_id, number, date, memo, type, status, source_module, source_key, reversal_of, created_by)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10) RETURNING `+entryColumns,
		entry.OrgID, entry.Number, entry.Date, entry.Memo, entry.Type, entry.Status, entry.SourceModule, entry.SourceKey, entry.ReversalOf, entry.CreatedBy)
	return scanEntry(row)
}

func (r *txRepository) InsertLines(ctx context.Context, entryID int64, lines []Line) error {
	for _, line := range lines {
		if _, err := r.tx.Exec(ctx, `INSERT INTO journal_lines (entry_id, account_id, debit, credit, memo) VALUES ($1,$2,$3,$4,$5)`,
			entryID, line.AccountID, line.Debit, line.Credit, line.Memo); err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepository) ReplaceLines(ctx context.Context, entryID int64, lines []Line) error {
	if _, err := r.tx.Exec(ctx, `DELETE FROM journal_lines WHERE entry_id=$1`, entryID); err != nil {
		return err
	}
	return r.InsertLines(ctx, entryID, lines)
}

func (r *txRepository) GetEntryForUpdate(ctx context.Context, orgID, entryID int64) (Entry, error) {
	entry, err := scanEntry(r.tx.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE org_id=$1 AND id=$2 FOR UPDATE`, orgID, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, shared.ErrNotFound
		}
		return Entry{}, err
	}
	lines, err := r.outer.loadLines(ctx, r.tx, entryID)
	if err != nil {
		return Entry{}, err
	}
	entry.Lines = lines
	return entry, nil
}

func (r *txRepository) UpdateEntryHeader(ctx context.Context, entryID int64, date time.Time, memo string) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE journal_entries SET date=$2, memo=$3, updated_at=NOW() WHERE id=$1`, entryID, date, memo)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *txRepository) UpdateEntryStatus(ctx context.Context, entryID int64, status EntryStatus, postedBy *int64) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE journal_entries SET status=$2, posted_by=COALESCE($3, posted_by), posted_at=CASE WHEN $2='POSTED' THEN NOW() ELSE posted_at END, updated_at=NOW() WHERE id=$1`, entryID, status, postedBy)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *txRepository) SetReversalLinks(ctx context.Context, originalID, reversalID int64) error {
	if _, err := r.tx.Exec(ctx, `UPDATE journal_entries SET reversed_by=$2, updated_at=NOW() WHERE id=$1`, originalID, reversalID); err != nil {
		return err
	}
	_, err := r.tx.Exec(ctx, `UPDATE journal_entries SET reversal_of=$2, updated_at=NOW() WHERE id=$1`, reversalID, originalID)
	return err
}

func (r *txRepository) DeleteEntry(ctx context.Context, entryID int64) error {
	if _, err := r.tx.Exec(ctx, `DELETE FROM journal_lines WHERE entry_id=$1`, entryID); err != nil {
		return err
	}
	cmd, err := r.tx.Exec(ctx, `DELETE FROM journal_entries WHERE id=$1`, entryID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// LinkSource records the origin of an automated posting. The unique
// constraint on (org_id, module, key) is what makes the depreciation
// scheduler's check-then-post race-free.
func (r *txRepository) LinkSource(ctx context.Context, orgID int64, module, key string, entryID int64) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO journal_source_links (org_id, module, key, entry_id) VALUES ($1,$2,$3,$4)`, orgID, module, key, entryID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return shared.ErrSourceAlreadyPosted
		}
		return err
	}
	return nil
}

func (r *txRepository) GetActiveAccounts(ctx context.Context, orgID int64, ids []int64) (map[int64]coa.Account, error) {
	rows, err := r.tx.Query(ctx, `SELECT id, org_id, code, name, type, sub_type, activity, is_cash, parent_id, balance, is_active, created_by, updated_by, created_at, updated_at
FROM accounts WHERE org_id=$1 AND id = ANY($2) AND is_active`, orgID, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	accounts := make(map[int64]coa.Account, len(ids))
	for rows.Next() {
		var a coa.Account
		if err := rows.Scan(&a.ID, &a.OrgID, &a.Code, &a.Name, &a.Type, &a.SubType, &a.Activity, &a.IsCash, &a.ParentID, &a.Balance, &a.IsActive, &a.CreatedBy, &a.UpdatedBy, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		accounts[a.ID] = a
	}
	return accounts, rows.Err()
}

// ApplyBalanceDelta shifts the account balance by delta. The increment runs
// against the stored value under the row lock, so concurrent postings to a
// shared account serialize instead of overwriting each other.
func (r *txRepository) ApplyBalanceDelta(ctx context.Context, accountID int64, delta decimal.Decimal) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE accounts SET balance = balance + $2, updated_at=NOW() WHERE id=$1`, accountID, delta)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrInvalidAccount
	}
	return nil
}

func (r *txRepository) GetPeriodForDate(ctx context.Context, orgID int64, date time.Time) (periods.Period, bool, error) {
	var p periods.Period
	err := r.tx.QueryRow(ctx, `SELECT id, org_id, code, start_date, end_date, status, closed_by, closed_at, created_at, updated_at
FROM periods WHERE org_id=$1 AND $2 BETWEEN start_date AND end_date ORDER BY start_date LIMIT 1 FOR SHARE`, orgID, date).
		Scan(&p.ID, &p.OrgID, &p.Code, &p.StartDate, &p.EndDate, &p.Status, &p.ClosedBy, &p.ClosedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return periods.Period{}, false, nil
		}
		return periods.Period{}, false, err
	}
	return p, true, nil
}
