package periods

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlas-erp/atlas-erp/internal/ledger/shared"
)

type Repository interface {
	Create(ctx context.Context, period Period) (Period, error)
	GetByID(ctx context.Context, orgID, id int64) (Period, error)
	FindByDate(ctx context.Context, orgID int64, date time.Time) (Period, bool, error)
	List(ctx context.Context, orgID int64) ([]Period, error)
	// CloseIfNoDrafts flips the period to CLOSED in a single statement guarded
	// against stray draft entries dated inside the window.
	CloseIfNoDrafts(ctx context.Context, orgID, id, actorID int64) (bool, error)
	CountDraftsInside(ctx context.Context, orgID, id int64) (int, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const periodColumns = `id, org_id, code, start_date, end_date, status, closed_by, closed_at, created_at, updated_at`

func scanPeriod(row pgx.Row) (Period, error) {
	var p Period
	err := row.Scan(&p.ID, &p.OrgID, &p.Code, &p.StartDate, &p.EndDate, &p.Status, &p.ClosedBy, &p.ClosedAt, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *repository) Create(ctx context.Context, period Period) (Period, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO periods (org_id, code, start_date, end_date, status)
VALUES ($1,$2,$3,$4,'OPEN') RETURNING `+periodColumns, period.OrgID, period.Code, period.StartDate, period.EndDate)
	return scanPeriod(row)
}

func (r *repository) GetByID(ctx context.Context, orgID, id int64) (Period, error) {
	row := r.db.QueryRow(ctx, `SELECT `+periodColumns+` FROM periods WHERE org_id=$1 AND id=$2`, orgID, id)
	period, err := scanPeriod(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Period{}, shared.ErrNotFound
		}
		return Period{}, err
	}
	return period, nil
}

func (r *repository) FindByDate(ctx context.Context, orgID int64, date time.Time) (Period, bool, error) {
	row := r.db.QueryRow(ctx, `SELECT `+periodColumns+` FROM periods WHERE org_id=$1 AND $2 BETWEEN start_date AND end_date ORDER BY start_date LIMIT 1`, orgID, date)
	period, err := scanPeriod(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Period{}, false, nil
		}
		return Period{}, false, err
	}
	return period, true, nil
}

func (r *repository) List(ctx context.Context, orgID int64) ([]Period, error) {
	rows, err := r.db.Query(ctx, `SELECT `+periodColumns+` FROM periods WHERE org_id=$1 ORDER BY start_date`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var periods []Period
	for rows.Next() {
		period, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, period)
	}
	return periods, rows.Err()
}

func (r *repository) CloseIfNoDrafts(ctx context.Context, orgID, id, actorID int64) (bool, error) {
	cmd, err := r.db.Exec(ctx, `UPDATE periods p SET status='CLOSED', closed_by=$3, closed_at=NOW(), updated_at=NOW()
WHERE p.org_id=$1 AND p.id=$2 AND p.status='OPEN'
AND NOT EXISTS (
  SELECT 1 FROM journal_entries e
  WHERE e.org_id=p.org_id AND e.status='DRAFT' AND e.date BETWEEN p.start_date AND p.end_date
)`, orgID, id, actorID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *repository) CountDraftsInside(ctx context.Context, orgID, id int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM journal_entries e
JOIN periods p ON p.org_id=e.org_id AND e.date BETWEEN p.start_date AND p.end_date
WHERE p.org_id=$1 AND p.id=$2 AND e.status='DRAFT'`, orgID, id).Scan(&count)
	return count, err
}
