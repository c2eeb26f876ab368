package app

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"reminder_bot/internal/domain/reminder"
	"reminder_bot/internal/domain/schedule"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var taipei = time.FixedZone("CST", 8*60*60)

func seedOneShot(repo *fakeRepo, id string, ownerID int64, fireAt time.Time) {
	repo.records[id] = &reminder.Record{
		ID:         id,
		OwnerID:    ownerID,
		Content:    "吃藥",
		Locale:     "zh-Hant",
		Status:     reminder.StatusScheduled,
		AnchorAt:   sql.NullTime{Time: fireAt, Valid: true},
		NextFireAt: sql.NullTime{Time: fireAt, Valid: true},
	}
}

func seedRecurring(repo *fakeRepo, id string, ownerID int64, rule schedule.Rule, nextAt time.Time) {
	repo.records[id] = &reminder.Record{
		ID:         id,
		OwnerID:    ownerID,
		Content:    "開會",
		Locale:     "zh-Hant",
		Status:     reminder.StatusScheduled,
		Rule:       &rule,
		AnchorAt:   sql.NullTime{Time: nextAt.AddDate(0, 0, -1), Valid: true},
		NextFireAt: sql.NullTime{Time: nextAt, Valid: true},
	}
}

func TestRunTickOneShotCompletesExactlyOnce(t *testing.T) {
	repo := newFakeRepo()
	client := &fakeClient{}
	svc := NewDispatchService(repo, client, discardLogger())

	fireAt := time.Date(2026, 1, 8, 8, 0, 0, 0, taipei)
	seedOneShot(repo, "r1", 100, fireAt)

	results, err := svc.RunTick(context.Background(), fireAt)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, OutcomeCompleted, results[0].Outcome)

	require.Len(t, client.sent, 1)
	assert.Equal(t, int64(100), client.sent[0].chatID)
	assert.Contains(t, client.sent[0].text, "吃藥")

	stored := repo.records["r1"]
	assert.Equal(t, reminder.StatusCompleted, stored.Status)
	assert.False(t, stored.NextFireAt.Valid)
	assert.Equal(t, 1, stored.FireCount)
	assert.Equal(t, fireAt, stored.LastFiredAt.Time)

	// The completed record is no longer due; a later tick is a no-op.
	results, err = svc.RunTick(context.Background(), fireAt.Add(time.Minute))
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Len(t, client.sent, 1)
}

func TestRunTickRecurringAdvances(t *testing.T) {
	repo := newFakeRepo()
	client := &fakeClient{}
	svc := NewDispatchService(repo, client, discardLogger())

	rule := schedule.Rule{Frequency: schedule.FrequencyDaily, Hour: 9, Minute: 0}
	nextAt := time.Date(2026, 1, 8, 9, 0, 0, 0, taipei)
	seedRecurring(repo, "r1", 100, rule, nextAt)

	results, err := svc.RunTick(context.Background(), nextAt)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, OutcomeRescheduled, results[0].Outcome)

	stored := repo.records["r1"]
	assert.Equal(t, reminder.StatusScheduled, stored.Status)
	assert.Equal(t, nextAt.AddDate(0, 0, 1), stored.NextFireAt.Time)
	assert.Equal(t, 1, stored.FireCount)
}

func TestRunTickLateRecurringSkipsPastOccurrences(t *testing.T) {
	repo := newFakeRepo()
	client := &fakeClient{}
	svc := NewDispatchService(repo, client, discardLogger())

	rule := schedule.Rule{Frequency: schedule.FrequencyDaily, Hour: 9, Minute: 0}
	seedRecurring(repo, "r1", 100, rule, time.Date(2026, 1, 8, 9, 0, 0, 0, taipei))

	// The process was down for two days; the tick arrives long after the
	// stored occurrence. One notification fires and the schedule resumes at
	// the next occurrence in the future, not at the missed ones.
	late := time.Date(2026, 1, 10, 11, 30, 0, 0, taipei)
	results, err := svc.RunTick(context.Background(), late)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Len(t, client.sent, 1)

	stored := repo.records["r1"]
	assert.Equal(t, time.Date(2026, 1, 11, 9, 0, 0, 0, taipei), stored.NextFireAt.Time)
}

func TestRunTickDeliveryFailureLeavesRecordDue(t *testing.T) {
	repo := newFakeRepo()
	client := &fakeClient{failFor: map[int64]error{100: errors.New("telegram: 502")}}
	svc := NewDispatchService(repo, client, discardLogger())

	fireAt := time.Date(2026, 1, 8, 8, 0, 0, 0, taipei)
	seedOneShot(repo, "r1", 100, fireAt)

	results, err := svc.RunTick(context.Background(), fireAt)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, OutcomeDeliveryFailed, results[0].Outcome)
	assert.Error(t, results[0].Err)

	// Nothing moved: no send, no state change, no Update call.
	stored := repo.records["r1"]
	assert.Equal(t, reminder.StatusScheduled, stored.Status)
	assert.Equal(t, 0, stored.FireCount)
	assert.Equal(t, fireAt, stored.NextFireAt.Time)
	assert.Zero(t, repo.updates)

	// Next tick retries and succeeds.
	delete(client.failFor, 100)
	results, err = svc.RunTick(context.Background(), fireAt.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, OutcomeCompleted, results[0].Outcome)
	assert.Equal(t, reminder.StatusCompleted, repo.records["r1"].Status)
}

func TestRunTickStoreFailureKeepsRecordDue(t *testing.T) {
	repo := newFakeRepo()
	client := &fakeClient{}
	svc := NewDispatchService(repo, client, discardLogger())

	fireAt := time.Date(2026, 1, 8, 8, 0, 0, 0, taipei)
	seedOneShot(repo, "r1", 100, fireAt)
	repo.updateErr = errors.New("pq: connection reset")

	results, err := svc.RunTick(context.Background(), fireAt)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, OutcomeStoreFailed, results[0].Outcome)

	// The message went out but the stored row kept its old state, so the
	// record stays due. The retry may duplicate the notification; it never
	// loses it.
	assert.Len(t, client.sent, 1)
	stored := repo.records["r1"]
	assert.Equal(t, reminder.StatusScheduled, stored.Status)
	assert.Equal(t, 0, stored.FireCount)
	assert.True(t, stored.NextFireAt.Valid)

	repo.updateErr = nil
	results, err = svc.RunTick(context.Background(), fireAt.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, OutcomeCompleted, results[0].Outcome)
	assert.Len(t, client.sent, 2)
}

func TestRunTickAdvanceFailureIsNotAStoreFailure(t *testing.T) {
	repo := newFakeRepo()
	client := &fakeClient{}
	svc := NewDispatchService(repo, client, discardLogger())

	// A weekly rule with an empty weekday set cannot be advanced.
	nextAt := time.Date(2026, 1, 8, 9, 0, 0, 0, taipei)
	seedRecurring(repo, "r1", 100, schedule.Rule{Frequency: schedule.FrequencyWeekly, Hour: 9}, nextAt)

	results, err := svc.RunTick(context.Background(), nextAt)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, OutcomeAdvanceFailed, results[0].Outcome)
	assert.ErrorIs(t, results[0].Err, schedule.ErrInvalidRule)

	// The notification went out; the stored row is untouched and stays due.
	assert.Len(t, client.sent, 1)
	stored := repo.records["r1"]
	assert.Equal(t, 0, stored.FireCount)
	assert.Equal(t, nextAt, stored.NextFireAt.Time)
	assert.Zero(t, repo.updates)
}

func TestRunTickIsolatesPerRecordFailures(t *testing.T) {
	repo := newFakeRepo()
	client := &fakeClient{failFor: map[int64]error{100: errors.New("blocked by user")}}
	svc := NewDispatchService(repo, client, discardLogger())

	fireAt := time.Date(2026, 1, 8, 8, 0, 0, 0, taipei)
	seedOneShot(repo, "r1", 100, fireAt)
	seedOneShot(repo, "r2", 200, fireAt)

	results, err := svc.RunTick(context.Background(), fireAt)
	require.NoError(t, err)
	require.Len(t, results, 2)

	outcomes := map[string]TickOutcome{}
	for _, res := range results {
		outcomes[res.Record.ID] = res.Outcome
	}
	assert.Equal(t, OutcomeDeliveryFailed, outcomes["r1"])
	assert.Equal(t, OutcomeCompleted, outcomes["r2"])
	assert.Equal(t, reminder.StatusScheduled, repo.records["r1"].Status)
	assert.Equal(t, reminder.StatusCompleted, repo.records["r2"].Status)
}

func TestRunTickNothingDue(t *testing.T) {
	repo := newFakeRepo()
	client := &fakeClient{}
	svc := NewDispatchService(repo, client, discardLogger())

	seedOneShot(repo, "r1", 100, time.Date(2026, 1, 8, 8, 0, 0, 0, taipei))

	results, err := svc.RunTick(context.Background(), time.Date(2026, 1, 8, 7, 59, 0, 0, taipei))
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, client.sent)
}
