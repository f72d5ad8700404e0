package coa

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlas-erp/atlas-erp/internal/ledger/shared"
)

// Repository encapsulates read and admin operations on accounts. Balance
// writes are deliberately absent; they happen inside the journal engine's
// transaction.
type Repository interface {
	Create(ctx context.Context, account Account) (Account, error)
	GetByID(ctx context.Context, orgID, id int64) (Account, error)
	List(ctx context.Context, orgID int64) ([]Account, error)
	ListByType(ctx context.Context, orgID int64, t AccountType) ([]Account, error)
	Deactivate(ctx context.Context, orgID, id, actorID int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const accountColumns = `id, org_id, code, name, type, sub_type, activity, is_cash, parent_id, balance, is_active, created_by, updated_by, created_at, updated_at`

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.OrgID, &a.Code, &a.Name, &a.Type, &a.SubType, &a.Activity, &a.IsCash, &a.ParentID, &a.Balance, &a.IsActive, &a.CreatedBy, &a.UpdatedBy, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *repository) Create(ctx context.Context, account Account) (Account, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO accounts (org_id, code, name, type, sub_type, activity, is_cash, parent_id, balance, is_active, created_by, updated_by)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,0,TRUE,$9,$9) RETURNING `+accountColumns,
		account.OrgID, account.Code, account.Name, account.Type, account.SubType, account.Activity, account.IsCash, account.ParentID, account.CreatedBy)
	return scanAccount(row)
}

func (r *repository) GetByID(ctx context.Context, orgID, id int64) (Account, error) {
	row := r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE org_id=$1 AND id=$2`, orgID, id)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.ErrNotFound
		}
		return Account{}, err
	}
	return account, nil
}

func (r *repository) List(ctx context.Context, orgID int64) ([]Account, error) {
	rows, err := r.db.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE org_id=$1 ORDER BY code`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAccounts(rows)
}

func (r *repository) ListByType(ctx context.Context, orgID int64, t AccountType) ([]Account, error) {
	rows, err := r.db.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE org_id=$1 AND type=$2 ORDER BY code`, orgID, t)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAccounts(rows)
}

func (r *repository) Deactivate(ctx context.Context, orgID, id, actorID int64) error {
	cmd, err := r.db.Exec(ctx, `UPDATE accounts SET is_active=FALSE, updated_by=$3, updated_at=NOW() WHERE org_id=$1 AND id=$2`, orgID, id, actorID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func collectAccounts(rows pgx.Rows) ([]Account, error) {
	var accounts []Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}
