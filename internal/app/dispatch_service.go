// internal/app/dispatch_service.go
package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"reminder_bot/internal/domain/reminder"
	"reminder_bot/internal/domain/schedule"
	domainTelegram "reminder_bot/internal/domain/telegram"
	"reminder_bot/internal/parse/locale"

	"github.com/sirupsen/logrus"
)

// TickOutcome classifies what happened to one due record within a tick.
type TickOutcome string

const (
	OutcomeCompleted      TickOutcome = "COMPLETED"
	OutcomeRescheduled    TickOutcome = "RESCHEDULED"
	OutcomeDeliveryFailed TickOutcome = "DELIVERY_FAILED"
	OutcomeAdvanceFailed  TickOutcome = "ADVANCE_FAILED"
	OutcomeStoreFailed    TickOutcome = "STORE_FAILED"
)

// TickResult is the per-record observability record a dispatch tick returns.
type TickResult struct {
	Record  *reminder.Record
	Outcome TickOutcome
	Err     error
}

// DispatchService fires due reminders. It is the sole writer of the
// lifecycle fields (status, next/last fire instants, fire count); ticks are
// serialized by the scheduler driver, so within a tick each record can be
// handled with plain read-then-write.
type DispatchService struct {
	repo   reminder.Repository
	client domainTelegram.Client
	logger *logrus.Entry
}

func NewDispatchService(repo reminder.Repository, client domainTelegram.Client, logger *logrus.Entry) *DispatchService {
	return &DispatchService{repo: repo, client: client, logger: logger}
}

// RunTick loads every scheduled record due at `now` and processes each one
// independently: a delivery or store failure for one record never aborts the
// tick or affects the others.
func (s *DispatchService) RunTick(ctx context.Context, now time.Time) ([]TickResult, error) {
	due, err := s.repo.ListDue(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load due reminders: %w", err)
	}
	if len(due) == 0 {
		return nil, nil
	}
	s.logger.WithFields(logrus.Fields{"due": len(due), "now": now}).Info("Dispatch tick started")

	results := make([]TickResult, 0, len(due))
	for _, rec := range due {
		results = append(results, s.fire(ctx, rec, now))
	}
	return results, nil
}

func (s *DispatchService) fire(ctx context.Context, rec *reminder.Record, now time.Time) TickResult {
	logCtx := s.logger.WithFields(logrus.Fields{"reminder_id": rec.ID, "owner_id": rec.OwnerID})

	msgs := locale.ForTag(rec.Locale).Messages()
	if err := s.client.SendMessage(rec.OwnerID, fmt.Sprintf(msgs.Fired, rec.Content), nil); err != nil {
		// Leave the record untouched: it stays due and the next natural
		// tick retries the delivery.
		logCtx.WithError(err).Error("Failed to deliver reminder notification")
		return TickResult{Record: rec, Outcome: OutcomeDeliveryFailed, Err: err}
	}

	prevNext := rec.NextFireAt
	rec.LastFiredAt = sql.NullTime{Time: now, Valid: true}
	rec.FireCount++

	outcome := OutcomeCompleted
	if rec.IsRecurring() {
		// Advance from max(nextFireAt, now) so a late tick never schedules
		// an occurrence that is already in the past.
		after := now
		if prevNext.Valid && prevNext.Time.After(now) {
			after = prevNext.Time
		}
		next, err := schedule.NextOccurrence(*rec.Rule, after)
		if err != nil {
			// A broken stored rule, not a store outage; the record stays due
			// and the log carries the distinct outcome.
			logCtx.WithError(err).Error("Failed to advance recurring reminder")
			return TickResult{Record: rec, Outcome: OutcomeAdvanceFailed, Err: err}
		}
		rec.NextFireAt = sql.NullTime{Time: next, Valid: true}
		outcome = OutcomeRescheduled
	} else {
		rec.Status = reminder.StatusCompleted
		rec.NextFireAt = sql.NullTime{}
	}

	if err := s.repo.Update(ctx, rec); err != nil {
		// The stored row keeps its old nextFireAt, so the record remains
		// due and is retried next tick: possibly late, never lost.
		logCtx.WithError(err).Error("Failed to persist reminder advance")
		return TickResult{Record: rec, Outcome: OutcomeStoreFailed, Err: err}
	}

	logCtx.WithFields(logrus.Fields{"outcome": outcome, "fire_count": rec.FireCount}).Info("Reminder fired")
	return TickResult{Record: rec, Outcome: outcome}
}
