package periods

import "time"

// Status enumerates valid period states. Closing is one-way.
type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED"
)

// Period represents a fiscal period window scoped to an organization.
type Period struct {
	ID        int64
	OrgID     int64
	Code      string
	StartDate time.Time
	EndDate   time.Time
	Status    Status
	ClosedBy  *int64
	ClosedAt  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Contains reports whether the date falls inside the period window.
func (p Period) Contains(date time.Time) bool {
	return !date.Before(p.StartDate) && !date.After(p.EndDate)
}
