// internal/infra/telegram/reminder_handlers.go
package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"reminder_bot/internal/app"
	"reminder_bot/internal/domain/reminder"
	"reminder_bot/internal/infra/config"
	idb "reminder_bot/internal/infra/database"
	"reminder_bot/internal/parse"
	"reminder_bot/internal/parse/locale"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const (
	cancelCallbackPrefix  = "rm_cancel_"
	restoreCallbackPrefix = "rm_restore_"
)

// RegisterReminderHandlers wires the inbound side of the bot: free-form text
// creates reminders, list keywords render the active set, and the inline
// cancel buttons deactivate records.
func RegisterReminderHandlers(
	ctx context.Context,
	b *telebot.Bot,
	cfg *config.AppConfig,
	reminders app.ReminderService,
	baseLogger *logrus.Entry,
) {
	log := baseLogger.WithField("handler_group", "reminders")

	helpFor := func(c telebot.Context) string {
		msgs := providerFor(c, cfg).Messages()
		if c.Sender().ID == cfg.AdminTelegramID {
			return msgs.Help + "\n" + msgs.AdminHint
		}
		return msgs.Help
	}

	b.Handle("/start", func(c telebot.Context) error {
		log.WithField("sender_id", c.Sender().ID).Info("Processing /start command")
		return c.Send(helpFor(c))
	})

	b.Handle("/help", func(c telebot.Context) error {
		log.WithField("sender_id", c.Sender().ID).Info("Processing /help command")
		return c.Send(helpFor(c))
	})

	b.Handle(telebot.OnText, func(c telebot.Context) error {
		senderID := c.Sender().ID
		text := strings.TrimSpace(c.Text())
		prov := providerFor(c, cfg)
		logCtx := log.WithFields(logrus.Fields{"sender_id": senderID, "locale": prov.Tag()})

		for _, kw := range prov.ListKeywords() {
			if text == kw {
				return sendReminderList(ctx, c, prov, reminders, senderID, logCtx)
			}
		}

		now := time.Now().In(cfg.Location)
		rec, outcome, err := reminders.CreateReminder(ctx, senderID, text, prov.Tag(), now)
		if err != nil {
			logCtx.WithError(err).Error("Failed to create reminder from message")
			return c.Send(prov.Messages().CreateFailed)
		}
		return c.Send(confirmation(prov.Messages(), rec, outcome), cancelMarkup(prov.Messages(), rec))
	})

	b.Handle(telebot.OnCallback, func(c telebot.Context) error {
		data := strings.TrimPrefix(c.Callback().Data, "\f")
		prov := providerFor(c, cfg)
		msgs := prov.Messages()
		senderID := c.Sender().ID

		switch {
		case strings.HasPrefix(data, cancelCallbackPrefix):
			id := strings.TrimPrefix(data, cancelCallbackPrefix)
			rec, err := reminders.CancelReminder(ctx, senderID, id)
			if err != nil {
				if err != idb.ErrReminderNotFound && err != app.ErrReminderNotActive {
					c.Bot().OnError(fmt.Errorf("error cancelling reminder %s: %w", id, err), c)
				}
				return c.Respond(&telebot.CallbackResponse{Text: msgs.NotFound})
			}
			log.WithFields(logrus.Fields{"sender_id": senderID, "reminder_id": id}).Info("Reminder cancelled via callback")
			if err := c.Send(fmt.Sprintf(msgs.Cancelled, rec.Content), restoreMarkup(msgs, rec)); err != nil {
				return err
			}
			return c.Respond()

		case strings.HasPrefix(data, restoreCallbackPrefix):
			id := strings.TrimPrefix(data, restoreCallbackPrefix)
			rec, err := reminders.ReactivateReminder(ctx, senderID, id, time.Now().In(cfg.Location))
			if err != nil {
				switch err {
				case app.ErrReminderExpired:
					return c.Respond(&telebot.CallbackResponse{Text: msgs.Expired})
				case idb.ErrReminderNotFound, app.ErrReminderNotCancelled:
					return c.Respond(&telebot.CallbackResponse{Text: msgs.NotFound})
				}
				c.Bot().OnError(fmt.Errorf("error reactivating reminder %s: %w", id, err), c)
				return c.Respond(&telebot.CallbackResponse{Text: msgs.NotFound})
			}
			log.WithFields(logrus.Fields{"sender_id": senderID, "reminder_id": id}).Info("Reminder reactivated via callback")
			if err := c.Send(fmt.Sprintf(msgs.Reactivated, rec.Content), cancelMarkup(msgs, rec)); err != nil {
				return err
			}
			return c.Respond()
		}

		c.Bot().OnError(fmt.Errorf("unhandled callback data: %s", data), c)
		return c.Respond(&telebot.CallbackResponse{Text: msgs.NotFound})
	})
}

// providerFor picks the locale from the sender's Telegram language code,
// falling back to the configured default.
func providerFor(c telebot.Context, cfg *config.AppConfig) locale.Provider {
	tag := cfg.DefaultLocale
	if s := c.Sender(); s != nil && s.LanguageCode != "" {
		if strings.HasPrefix(s.LanguageCode, "ja") {
			tag = "ja"
		} else if strings.HasPrefix(s.LanguageCode, "zh") {
			tag = "zh-Hant"
		}
	}
	return locale.ForTag(tag)
}

func confirmation(msgs locale.Messages, rec *reminder.Record, outcome parse.Outcome) string {
	switch outcome.Kind {
	case parse.KindRecurring:
		return fmt.Sprintf(msgs.CreatedRecurring, rec.Rule.String(), rec.Content)
	case parse.KindUnresolved:
		return fmt.Sprintf(msgs.FallbackNotice, rec.NextFireAt.Time.Format(msgs.TimeLayout), rec.Content)
	default:
		return fmt.Sprintf(msgs.CreatedOneShot, rec.NextFireAt.Time.Format(msgs.TimeLayout), rec.Content)
	}
}

func cancelMarkup(msgs locale.Messages, rec *reminder.Record) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	btn := markup.Data(msgs.CancelButton, cancelCallbackPrefix+rec.ID)
	markup.Inline(markup.Row(btn))
	return markup
}

func restoreMarkup(msgs locale.Messages, rec *reminder.Record) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	btn := markup.Data(msgs.RestoreButton, restoreCallbackPrefix+rec.ID)
	markup.Inline(markup.Row(btn))
	return markup
}

func sendReminderList(
	ctx context.Context,
	c telebot.Context,
	prov locale.Provider,
	reminders app.ReminderService,
	ownerID int64,
	logCtx *logrus.Entry,
) error {
	msgs := prov.Messages()
	active, err := reminders.ListReminders(ctx, ownerID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to list reminders")
		return c.Send(msgs.NotFound)
	}
	if len(active) == 0 {
		return c.Send(msgs.ListEmpty)
	}

	var body strings.Builder
	body.WriteString(msgs.ListHeader)
	markup := &telebot.ReplyMarkup{}
	var rows []telebot.Row
	for i, rec := range active {
		body.WriteString(fmt.Sprintf("\n%d. %s（%s）", i+1, rec.Content, describeSchedule(msgs, rec)))
		label := fmt.Sprintf("%s %d", msgs.CancelButton, i+1)
		rows = append(rows, markup.Row(markup.Data(label, cancelCallbackPrefix+rec.ID)))
	}
	markup.Inline(rows...)
	return c.Send(body.String(), markup)
}

func describeSchedule(msgs locale.Messages, rec *reminder.Record) string {
	if rec.IsRecurring() {
		return rec.Rule.String()
	}
	return rec.NextFireAt.Time.Format(msgs.TimeLayout)
}
