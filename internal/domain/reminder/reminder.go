// internal/domain/reminder/reminder.go
package reminder

import (
	"database/sql"
	"time"

	"reminder_bot/internal/domain/schedule"
)

// Status represents the lifecycle state of a reminder.
type Status string

const (
	StatusScheduled   Status = "SCHEDULED"
	StatusCompleted   Status = "COMPLETED"
	StatusDeactivated Status = "DEACTIVATED"
)

// Record is the persisted reminder entity. A record is either one-shot
// (Rule is nil, AnchorAt holds the single trigger instant and NextFireAt
// mirrors it while scheduled) or recurring (Rule non-nil, AnchorAt is the
// instant the rule was anchored at creation or reactivation).
//
// Invariants: a SCHEDULED record always has a valid NextFireAt; NextFireAt
// never moves backward across recomputations; a one-shot record transitions
// to COMPLETED exactly once, immediately after its single firing.
type Record struct {
	ID          string
	OwnerID     int64
	Content     string
	Locale      string
	Rule        *schedule.Rule
	AnchorAt    sql.NullTime
	Status      Status
	NextFireAt  sql.NullTime
	LastFiredAt sql.NullTime
	FireCount   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsRecurring reports whether the record advances after firing instead of
// completing.
func (r *Record) IsRecurring() bool {
	return r.Rule != nil
}
