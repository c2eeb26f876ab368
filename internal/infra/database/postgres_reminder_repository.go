// internal/infra/database/postgres_reminder_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"reminder_bot/internal/domain/reminder"
	"reminder_bot/internal/domain/schedule"
)

// Custom errors specific to the reminder repository.
var ErrReminderNotFound = fmt.Errorf("reminder not found")

type PostgresReminderRepository struct {
	db *sql.DB
}

func NewPostgresReminderRepository(db *sql.DB) *PostgresReminderRepository {
	return &PostgresReminderRepository{db: db}
}

const reminderColumns = `id, owner_id, content, locale, recurrence_rule, anchor_at, status, next_fire_at, last_fired_at, fire_count, created_at, updated_at`

func (r *PostgresReminderRepository) Create(ctx context.Context, rec *reminder.Record) error {
	query := `INSERT INTO reminders (id, owner_id, content, locale, recurrence_rule, anchor_at, status, next_fire_at, last_fired_at, fire_count)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
               RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		rec.ID, rec.OwnerID, rec.Content, rec.Locale, ruleColumn(rec.Rule),
		rec.AnchorAt, rec.Status, rec.NextFireAt, rec.LastFiredAt, rec.FireCount,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating reminder: %w", err)
	}
	return nil
}

func (r *PostgresReminderRepository) GetByID(ctx context.Context, id string) (*reminder.Record, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE id = $1`
	rec, err := scanReminder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrReminderNotFound
		}
		return nil, fmt.Errorf("error getting reminder by ID: %w", err)
	}
	return rec, nil
}

func (r *PostgresReminderRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*reminder.Record, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE owner_id = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error querying reminders by owner: %w", err)
	}
	defer rows.Close()
	return scanReminders(rows)
}

func (r *PostgresReminderRepository) ListDue(ctx context.Context, now time.Time) ([]*reminder.Record, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders
               WHERE status = $1 AND next_fire_at IS NOT NULL AND next_fire_at <= $2
               ORDER BY next_fire_at ASC` // process the most overdue first
	rows, err := r.db.QueryContext(ctx, query, reminder.StatusScheduled, now)
	if err != nil {
		return nil, fmt.Errorf("error querying due reminders: %w", err)
	}
	defer rows.Close()
	return scanReminders(rows)
}

// Update is a full-row overwrite of the mutable fields; the store offers no
// compare-and-swap, so callers read-then-write per record.
func (r *PostgresReminderRepository) Update(ctx context.Context, rec *reminder.Record) error {
	query := `UPDATE reminders
               SET content = $1, recurrence_rule = $2, anchor_at = $3, status = $4,
                   next_fire_at = $5, last_fired_at = $6, fire_count = $7, updated_at = NOW()
               WHERE id = $8
               RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query,
		rec.Content, ruleColumn(rec.Rule), rec.AnchorAt, rec.Status,
		rec.NextFireAt, rec.LastFiredAt, rec.FireCount, rec.ID,
	).Scan(&rec.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrReminderNotFound
		}
		return fmt.Errorf("error updating reminder: %w", err)
	}
	return nil
}

func ruleColumn(rule *schedule.Rule) sql.NullString {
	if rule == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: rule.String(), Valid: true}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReminder(row rowScanner) (*reminder.Record, error) {
	rec := reminder.Record{}
	var ruleText sql.NullString
	if err := row.Scan(
		&rec.ID, &rec.OwnerID, &rec.Content, &rec.Locale, &ruleText,
		&rec.AnchorAt, &rec.Status, &rec.NextFireAt, &rec.LastFiredAt,
		&rec.FireCount, &rec.CreatedAt, &rec.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if ruleText.Valid {
		rule, err := schedule.ParseRule(ruleText.String)
		if err != nil {
			return nil, fmt.Errorf("error decoding recurrence rule for reminder %s: %w", rec.ID, err)
		}
		rec.Rule = &rule
	}
	return &rec, nil
}

func scanReminders(rows *sql.Rows) ([]*reminder.Record, error) {
	records := make([]*reminder.Record, 0)
	for rows.Next() {
		rec, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning reminder row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reminder rows: %w", err)
	}
	return records, nil
}
