package periods

import (
	"context"
	"fmt"
	"time"

	"github.com/atlas-erp/atlas-erp/internal/ledger/shared"
	internalshared "github.com/atlas-erp/atlas-erp/internal/shared"
)

// AuditPort records close events for compliance.
type AuditPort interface {
	Record(ctx context.Context, log internalshared.AuditLog) error
}

// Service enforces the one-way period close guard.
type Service struct {
	repo  Repository
	audit AuditPort
	now   func() time.Time
}

func NewService(repo Repository, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// CreateInput describes a new fiscal period.
type CreateInput struct {
	OrgID     int64
	Code      string
	StartDate time.Time
	EndDate   time.Time
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Period, error) {
	if in.Code == "" {
		return Period{}, fmt.Errorf("ledger: period code required")
	}
	if !in.EndDate.After(in.StartDate) {
		return Period{}, fmt.Errorf("ledger: period %s end date must follow start date", in.Code)
	}
	return s.repo.Create(ctx, Period{OrgID: in.OrgID, Code: in.Code, StartDate: in.StartDate, EndDate: in.EndDate})
}

func (s *Service) Get(ctx context.Context, orgID, id int64) (Period, error) {
	return s.repo.GetByID(ctx, orgID, id)
}

func (s *Service) List(ctx context.Context, orgID int64) ([]Period, error) {
	return s.repo.List(ctx, orgID)
}

// FindByDate returns the period containing the date, if one is defined.
func (s *Service) FindByDate(ctx context.Context, orgID int64, date time.Time) (Period, bool, error) {
	return s.repo.FindByDate(ctx, orgID, date)
}

// EnsureOpen rejects dates that fall inside a closed period. Dates not
// covered by any period record count as open.
func (s *Service) EnsureOpen(ctx context.Context, orgID int64, date time.Time) error {
	period, found, err := s.repo.FindByDate(ctx, orgID, date)
	if err != nil {
		return err
	}
	if found && period.Status == StatusClosed {
		return fmt.Errorf("%w: %s falls in period %s", shared.ErrPeriodClosed, date.Format("2006-01-02"), period.Code)
	}
	return nil
}

// Close flips an open period to CLOSED. It refuses while draft entries are
// dated inside the window; the guard runs in a single statement so a draft
// created concurrently cannot slip past it.
func (s *Service) Close(ctx context.Context, orgID, id, actorID int64) (Period, error) {
	closed, err := s.repo.CloseIfNoDrafts(ctx, orgID, id, actorID)
	if err != nil {
		return Period{}, err
	}
	if !closed {
		period, err := s.repo.GetByID(ctx, orgID, id)
		if err != nil {
			return Period{}, err
		}
		if period.Status == StatusClosed {
			return Period{}, fmt.Errorf("%w: period %s", shared.ErrPeriodClosed, period.Code)
		}
		drafts, err := s.repo.CountDraftsInside(ctx, orgID, id)
		if err != nil {
			return Period{}, err
		}
		if drafts > 0 {
			return Period{}, fmt.Errorf("%w: period %s has %d draft entries", shared.ErrPeriodHasDrafts, period.Code, drafts)
		}
		return Period{}, shared.ErrInvalidStatus
	}
	period, err := s.repo.GetByID(ctx, orgID, id)
	if err != nil {
		return Period{}, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, internalshared.AuditLog{
			ActorID:  actorID,
			Action:   "period.close",
			Entity:   "period",
			EntityID: fmt.Sprintf("%d", id),
			Meta:     map[string]any{"code": period.Code},
			At:       s.now(),
		})
	}
	return period, nil
}
