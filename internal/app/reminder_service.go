// internal/app/reminder_service.go
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"reminder_bot/internal/domain/reminder"
	"reminder_bot/internal/domain/schedule"
	idb "reminder_bot/internal/infra/database"
	"reminder_bot/internal/parse"
	"reminder_bot/internal/parse/locale"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Application-level errors surfaced to the transport layer.
var (
	ErrReminderNotActive    = errors.New("reminder is not in a scheduled state")
	ErrReminderNotCancelled = errors.New("reminder is not in a deactivated state")
	ErrReminderExpired      = errors.New("one-shot reminder instant has already passed")
)

// ReminderService defines the user-facing reminder operations.
type ReminderService interface {
	// CreateReminder resolves the free-form text and persists a scheduled
	// record. Creation always succeeds on ambiguous input: when no pattern
	// matches, a short default offset is scheduled instead of failing.
	CreateReminder(ctx context.Context, ownerID int64, text, localeTag string, now time.Time) (*reminder.Record, parse.Outcome, error)
	CancelReminder(ctx context.Context, requesterID int64, id string) (*reminder.Record, error)
	ReactivateReminder(ctx context.Context, requesterID int64, id string, now time.Time) (*reminder.Record, error)
	ListReminders(ctx context.Context, ownerID int64) ([]*reminder.Record, error)
}

// ReminderServiceImpl implements ReminderService on top of the reminder
// repository. The admin may cancel or reactivate any record; everyone else
// only their own.
type ReminderServiceImpl struct {
	repo           reminder.Repository
	logger         *logrus.Entry
	adminID        int64
	fallbackOffset time.Duration
}

func NewReminderService(repo reminder.Repository, logger *logrus.Entry, adminID int64, fallbackOffset time.Duration) *ReminderServiceImpl {
	if fallbackOffset <= 0 {
		fallbackOffset = time.Hour
	}
	return &ReminderServiceImpl{
		repo:           repo,
		logger:         logger,
		adminID:        adminID,
		fallbackOffset: fallbackOffset,
	}
}

func (s *ReminderServiceImpl) CreateReminder(ctx context.Context, ownerID int64, text, localeTag string, now time.Time) (*reminder.Record, parse.Outcome, error) {
	prov := locale.ForTag(localeTag)
	out := parse.Resolve(text, prov, now)

	logCtx := s.logger.WithFields(logrus.Fields{
		"owner_id":   ownerID,
		"locale":     prov.Tag(),
		"kind":       out.Kind,
		"confidence": out.Confidence,
	})

	content := out.Leftover
	if content == "" {
		content = prov.Messages().DefaultLabel
	}

	rec := &reminder.Record{
		ID:      uuid.NewString(),
		OwnerID: ownerID,
		Content: content,
		Locale:  prov.Tag(),
		Status:  reminder.StatusScheduled,
	}

	switch out.Kind {
	case parse.KindRecurring:
		// Rejected here, at creation time, before anything is persisted.
		if err := out.Rule.Validate(); err != nil {
			logCtx.WithError(err).Warn("Resolved recurrence rule failed validation")
			return nil, out, err
		}
		next, err := schedule.NextOccurrence(*out.Rule, now)
		if err != nil {
			return nil, out, fmt.Errorf("failed to compute first occurrence: %w", err)
		}
		rec.Rule = out.Rule
		rec.AnchorAt = sql.NullTime{Time: now, Valid: true}
		rec.NextFireAt = sql.NullTime{Time: next, Valid: true}
	case parse.KindUnresolved:
		// Scheduling something imprecise beats scheduling nothing.
		at := now.Add(s.fallbackOffset)
		rec.AnchorAt = sql.NullTime{Time: at, Valid: true}
		rec.NextFireAt = sql.NullTime{Time: at, Valid: true}
		logCtx.WithField("fire_at", at).Info("No pattern matched; falling back to default offset")
	default:
		rec.AnchorAt = sql.NullTime{Time: out.At, Valid: true}
		rec.NextFireAt = sql.NullTime{Time: out.At, Valid: true}
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		logCtx.WithError(err).Error("Failed to persist reminder")
		return nil, out, fmt.Errorf("failed to create reminder: %w", err)
	}
	logCtx.WithFields(logrus.Fields{"reminder_id": rec.ID, "next_fire_at": rec.NextFireAt.Time}).Info("Reminder created")
	return rec, out, nil
}

func (s *ReminderServiceImpl) CancelReminder(ctx context.Context, requesterID int64, id string) (*reminder.Record, error) {
	rec, err := s.lookupFor(ctx, requesterID, id)
	if err != nil {
		return nil, err
	}
	if rec.Status != reminder.StatusScheduled {
		return rec, ErrReminderNotActive
	}

	rec.Status = reminder.StatusDeactivated
	rec.NextFireAt = sql.NullTime{}
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to deactivate reminder %s: %w", id, err)
	}
	s.logger.WithFields(logrus.Fields{"reminder_id": id, "requester_id": requesterID}).Info("Reminder deactivated")
	return rec, nil
}

func (s *ReminderServiceImpl) ReactivateReminder(ctx context.Context, requesterID int64, id string, now time.Time) (*reminder.Record, error) {
	rec, err := s.lookupFor(ctx, requesterID, id)
	if err != nil {
		return nil, err
	}
	if rec.Status != reminder.StatusDeactivated {
		return rec, ErrReminderNotCancelled
	}

	if rec.IsRecurring() {
		// Re-anchor: the schedule restarts from now, not from where the
		// cancelled record left off.
		next, err := schedule.NextOccurrence(*rec.Rule, now)
		if err != nil {
			return nil, fmt.Errorf("failed to recompute occurrence for reminder %s: %w", id, err)
		}
		rec.AnchorAt = sql.NullTime{Time: now, Valid: true}
		rec.NextFireAt = sql.NullTime{Time: next, Valid: true}
	} else {
		if !rec.AnchorAt.Valid || !rec.AnchorAt.Time.After(now) {
			return rec, ErrReminderExpired
		}
		rec.NextFireAt = rec.AnchorAt
	}

	rec.Status = reminder.StatusScheduled
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to reactivate reminder %s: %w", id, err)
	}
	s.logger.WithFields(logrus.Fields{"reminder_id": id, "next_fire_at": rec.NextFireAt.Time}).Info("Reminder reactivated")
	return rec, nil
}

func (s *ReminderServiceImpl) ListReminders(ctx context.Context, ownerID int64) ([]*reminder.Record, error) {
	all, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders for owner %d: %w", ownerID, err)
	}
	active := make([]*reminder.Record, 0, len(all))
	for _, rec := range all {
		if rec.Status == reminder.StatusScheduled {
			active = append(active, rec)
		}
	}
	return active, nil
}

// lookupFor fetches a record and enforces ownership. A foreign record is
// reported as not found rather than as forbidden.
func (s *ReminderServiceImpl) lookupFor(ctx context.Context, requesterID int64, id string) (*reminder.Record, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == idb.ErrReminderNotFound {
			return nil, idb.ErrReminderNotFound
		}
		return nil, fmt.Errorf("failed to get reminder %s: %w", id, err)
	}
	if rec.OwnerID != requesterID && requesterID != s.adminID {
		return nil, idb.ErrReminderNotFound
	}
	return rec, nil
}
