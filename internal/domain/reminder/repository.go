// internal/domain/reminder/repository.go
package reminder

import (
	"context"
	"time"
)

// Repository defines the operations for persisting and retrieving reminder
// records. The backing store offers no compare-and-swap: Update is a
// full-row overwrite of the lifecycle fields, and callers are expected to
// read-then-write per record.
type Repository interface {
	Create(ctx context.Context, rec *Record) error
	GetByID(ctx context.Context, id string) (*Record, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*Record, error)
	// ListDue returns all SCHEDULED records with NextFireAt <= now, oldest
	// first.
	ListDue(ctx context.Context, now time.Time) ([]*Record, error)
	Update(ctx context.Context, rec *Record) error
}
