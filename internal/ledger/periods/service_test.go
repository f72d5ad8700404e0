package periods

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas-erp/atlas-erp/internal/ledger/shared"
)

type fakePeriodRepo struct {
	periods map[int64]*Period
	drafts  map[int64]int
	nextID  int64
}

func newFakePeriodRepo() *fakePeriodRepo {
	return &fakePeriodRepo{periods: make(map[int64]*Period), drafts: make(map[int64]int), nextID: 1}
}

func (r *fakePeriodRepo) add(code string, start, end time.Time, status Status) int64 {
	id := r.nextID
	r.nextID++
	r.periods[id] = &Period{ID: id, OrgID: 1, Code: code, StartDate: start, EndDate: end, Status: status}
	return id
}

func (r *fakePeriodRepo) Create(ctx context.Context, period Period) (Period, error) {
	period.ID = r.nextID
	r.nextID++
	period.Status = StatusOpen
	stored := period
	r.periods[period.ID] = &stored
	return period, nil
}

func (r *fakePeriodRepo) GetByID(ctx context.Context, orgID, id int64) (Period, error) {
	period, ok := r.periods[id]
	if !ok || period.OrgID != orgID {
		return Period{}, shared.ErrNotFound
	}
	return *period, nil
}

func (r *fakePeriodRepo) FindByDate(ctx context.Context, orgID int64, date time.Time) (Period, bool, error) {
	for _, period := range r.periods {
		if period.OrgID == orgID && period.Contains(date) {
			return *period, true, nil
		}
	}
	return Period{}, false, nil
}

func (r *fakePeriodRepo) List(ctx context.Context, orgID int64) ([]Period, error) {
	var out []Period
	for _, period := range r.periods {
		if period.OrgID == orgID {
			out = append(out, *period)
		}
	}
	return out, nil
}

func (r *fakePeriodRepo) CloseIfNoDrafts(ctx context.Context, orgID, id, actorID int64) (bool, error) {
	period, ok := r.periods[id]
	if !ok || period.OrgID != orgID {
		return false, nil
	}
	if period.Status != StatusOpen || r.drafts[id] > 0 {
		return false, nil
	}
	period.Status = StatusClosed
	period.ClosedBy = &actorID
	now := time.Now()
	period.ClosedAt = &now
	return true, nil
}

func (r *fakePeriodRepo) CountDraftsInside(ctx context.Context, orgID, id int64) (int, error) {
	return r.drafts[id], nil
}

func march() (time.Time, time.Time) {
	return time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC)
}

func TestCloseSucceedsWithoutDrafts(t *testing.T) {
	repo := newFakePeriodRepo()
	start, end := march()
	id := repo.add("2026-03", start, end, StatusOpen)
	svc := NewService(repo, nil)

	period, err := svc.Close(context.Background(), 1, id, 7)
	require.NoError(t, err)
	assert.Equal(t, StatusClosed, period.Status)
	require.NotNil(t, period.ClosedBy)
	assert.Equal(t, int64(7), *period.ClosedBy)
}

func TestCloseRefusesWhileDraftsExist(t *testing.T) {
	repo := newFakePeriodRepo()
	start, end := march()
	id := repo.add("2026-03", start, end, StatusOpen)
	repo.drafts[id] = 2
	svc := NewService(repo, nil)

	_, err := svc.Close(context.Background(), 1, id, 7)
	require.ErrorIs(t, err, shared.ErrPeriodHasDrafts)
	assert.Equal(t, StatusOpen, repo.periods[id].Status)
}

func TestCloseIsOneWay(t *testing.T) {
	repo := newFakePeriodRepo()
	start, end := march()
	id := repo.add("2026-03", start, end, StatusClosed)
	svc := NewService(repo, nil)

	_, err := svc.Close(context.Background(), 1, id, 7)
	require.ErrorIs(t, err, shared.ErrPeriodClosed)
}

func TestEnsureOpenRejectsClosedPeriod(t *testing.T) {
	repo := newFakePeriodRepo()
	start, end := march()
	repo.add("2026-03", start, end, StatusClosed)
	svc := NewService(repo, nil)

	err := svc.EnsureOpen(context.Background(), 1, time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC))
	require.ErrorIs(t, err, shared.ErrPeriodClosed)
	assert.Contains(t, err.Error(), "2026-03")
}

func TestEnsureOpenAllowsUncoveredDates(t *testing.T) {
	repo := newFakePeriodRepo()
	svc := NewService(repo, nil)

	err := svc.EnsureOpen(context.Background(), 1, time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
}

func TestCreateValidatesWindow(t *testing.T) {
	repo := newFakePeriodRepo()
	svc := NewService(repo, nil)
	start, end := march()

	_, err := svc.Create(context.Background(), CreateInput{OrgID: 1, Code: "2026-03", StartDate: end, EndDate: start})
	require.Error(t, err)

	period, err := svc.Create(context.Background(), CreateInput{OrgID: 1, Code: "2026-03", StartDate: start, EndDate: end})
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, period.Status)
}
