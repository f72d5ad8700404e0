package assets

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/atlas-erp/atlas-erp/internal/ledger/shared"
)

type Repository interface {
	Create(ctx context.Context, asset FixedAsset) (FixedAsset, error)
	GetByID(ctx context.Context, orgID, id int64) (FixedAsset, error)
	List(ctx context.Context, orgID int64) ([]FixedAsset, error)
	ListActive(ctx context.Context, orgID int64) ([]FixedAsset, error)
	ActiveOrgIDs(ctx context.Context) ([]int64, error)
	ApplyDepreciation(ctx context.Context, orgID, id int64, amount decimal.Decimal, status Status, actorID int64) error
	UpdateStatus(ctx context.Context, orgID, id int64, status Status, actorID int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const assetColumns = `id, org_id, code, name, purchase_price, salvage_value, useful_life_years, method, purchase_date, asset_account_id, expense_account_id, accumulated_account_id, accumulated, status, created_by, updated_by, created_at, updated_at`

func scanAsset(row pgx.Row) (FixedAsset, error) {
	var a FixedAsset
	err := row.Scan(&a.ID, &a.OrgID, &a.Code, &a.Name, &a.PurchasePrice, &a.SalvageValue, &a.UsefulLifeYears, &a.Method, &a.PurchaseDate, &a.AssetAccountID, &a.ExpenseAccountID, &a.AccumulatedAccountID, &a.Accumulated, &a.Status, &a.CreatedBy, &a.UpdatedBy, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *repository) Create(ctx context.Context, asset FixedAsset) (FixedAsset, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO fixed_assets (org_id, code, name, purchase_price, salvage_value, useful_life_years, method, purchase_date, asset_account_id, expense_account_id, accumulated_account_id, accumulated, status, created_by, updated_by)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,0,'ACTIVE',$12,$12) RETURNING `+assetColumns,
		asset.OrgID, asset.Code, asset.Name, asset.PurchasePrice, asset.SalvageValue, asset.UsefulLifeYears, asset.Method, asset.PurchaseDate,
		asset.AssetAccountID, asset.ExpenseAccountID, asset.AccumulatedAccountID, asset.CreatedBy)
	return scanAsset(row)
}

func (r *repository) GetByID(ctx context.Context, orgID, id int64) (FixedAsset, error) {
	asset, err := scanAsset(r.db.QueryRow(ctx, `SELECT `+assetColumns+` FROM fixed_assets WHERE org_id=$1 AND id=$2`, orgID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return FixedAsset{}, shared.ErrNotFound
		}
		return FixedAsset{}, err
	}
	return asset, nil
}

func (r *repository) List(ctx context.Context, orgID int64) ([]FixedAsset, error) {
	return r.list(ctx, `SELECT `+assetColumns+` FROM fixed_assets WHERE org_id=$1 ORDER BY code`, orgID)
}

func (r *repository) ListActive(ctx context.Context, orgID int64) ([]FixedAsset, error) {
	return r.list(ctx, `SELECT `+assetColumns+` FROM fixed_assets WHERE org_id=$1 AND status='ACTIVE' ORDER BY code`, orgID)
}

func (r *repository) list(ctx context.Context, query string, orgID int64) ([]FixedAsset, error) {
	rows, err := r.db.Query(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []FixedAsset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, asset)
	}
	return out, rows.Err()
}

// ActiveOrgIDs lists organizations that still hold depreciable assets. The
// monthly sweep iterates this set.
func (r *repository) ActiveOrgIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT org_id FROM fixed_assets WHERE status='ACTIVE' ORDER BY org_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *repository) ApplyDepreciation(ctx context.Context, orgID, id int64, amount decimal.Decimal, status Status, actorID int64) error {
	cmd, err := r.db.Exec(ctx, `UPDATE fixed_assets SET accumulated = accumulated + $3, status=$4, updated_by=$5, updated_at=NOW() WHERE org_id=$1 AND id=$2`, orgID, id, amount, status, actorID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, orgID, id int64, status Status, actorID int64) error {
	cmd, err := r.db.Exec(ctx, `UPDATE fixed_assets SET status=$3, updated_by=$4, updated_at=NOW() WHERE org_id=$1 AND id=$2`, orgID, id, status, actorID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
