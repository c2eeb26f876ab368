package app

import (
	"context"
	"io"
	"sort"
	"time"

	"reminder_bot/internal/domain/reminder"
	idb "reminder_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func discardLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// fakeRepo is an in-memory reminder.Repository. It stores and returns
// copies, so a service that mutates a record without calling Update leaves
// the stored row untouched, exactly like the SQL-backed repository.
type fakeRepo struct {
	records   map[string]*reminder.Record
	createErr error
	getErr    error
	listErr   error
	updateErr error
	updates   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: make(map[string]*reminder.Record)}
}

func copyRecord(rec *reminder.Record) *reminder.Record {
	cp := *rec
	if rec.Rule != nil {
		rule := *rec.Rule
		cp.Rule = &rule
	}
	return &cp
}

func (f *fakeRepo) Create(_ context.Context, rec *reminder.Record) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.records[rec.ID] = copyRecord(rec)
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*reminder.Record, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	rec, ok := f.records[id]
	if !ok {
		return nil, idb.ErrReminderNotFound
	}
	return copyRecord(rec), nil
}

func (f *fakeRepo) ListByOwner(_ context.Context, ownerID int64) ([]*reminder.Record, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*reminder.Record
	for _, rec := range f.records {
		if rec.OwnerID == ownerID {
			out = append(out, copyRecord(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRepo) ListDue(_ context.Context, now time.Time) ([]*reminder.Record, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*reminder.Record
	for _, rec := range f.records {
		if rec.Status == reminder.StatusScheduled && rec.NextFireAt.Valid && !rec.NextFireAt.Time.After(now) {
			out = append(out, copyRecord(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NextFireAt.Time.Before(out[j].NextFireAt.Time) })
	return out, nil
}

func (f *fakeRepo) Update(_ context.Context, rec *reminder.Record) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.records[rec.ID]; !ok {
		return idb.ErrReminderNotFound
	}
	f.records[rec.ID] = copyRecord(rec)
	f.updates++
	return nil
}

type sentMessage struct {
	chatID int64
	text   string
}

// fakeClient captures outbound messages; failFor simulates per-recipient
// delivery failures.
type fakeClient struct {
	sent    []sentMessage
	failFor map[int64]error
}

func (f *fakeClient) SendMessage(chatID int64, text string, _ *telebot.SendOptions) error {
	if err := f.failFor[chatID]; err != nil {
		return err
	}
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text})
	return nil
}
