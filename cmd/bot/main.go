package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reminder_bot/internal/app"
	"reminder_bot/internal/infra/config"
	idb "reminder_bot/internal/infra/database"
	"reminder_bot/internal/infra/logger"
	"reminder_bot/internal/infra/scheduler"
	"reminder_bot/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("FATAL: Could not load application configuration: %v", err)
	}

	logger.Init(cfg)
	log := logger.Get().WithField("component", "main")
	log.Infof("Configuration loaded. LogLevel: %s, Environment: %s, Timezone: %s, DefaultLocale: %s",
		cfg.LogLevel, cfg.Environment, cfg.Location, cfg.DefaultLocale)

	// Initialize Database Connection
	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to database: %v", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully.")

	reminderRepo := idb.NewPostgresReminderRepository(db)
	log.Info("Reminder repository initialized.")

	// Initialize Telegram Bot
	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			entry := logger.Get().WithField("component", "telebot")
			if c != nil && c.Sender() != nil {
				entry = entry.WithField("sender_id", c.Sender().ID)
			}
			entry.WithError(err).Error("Telegram handler error")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		log.Fatalf("FATAL: Could not create Telegram bot: %v", err)
	}

	telegramClient := telegram.NewTelebotAdapter(bot)

	// Application services
	reminderService := app.NewReminderService(
		reminderRepo,
		logger.Get().WithField("component", "reminder_service"),
		cfg.AdminTelegramID,
		cfg.FallbackOffset,
	)
	dispatchService := app.NewDispatchService(
		reminderRepo,
		telegramClient,
		logger.Get().WithField("component", "dispatch"),
	)

	// Dispatch scheduler: one serialized tick drives all firing.
	dispatchScheduler := scheduler.NewDispatchScheduler(
		dispatchService,
		logger.Get().WithField("component", "scheduler"),
		cfg.CronSpecDispatch,
		cfg.Location,
	)
	if err := dispatchScheduler.Start(); err != nil {
		log.Fatalf("FATAL: Could not start dispatch scheduler: %v", err)
	}

	// Register handlers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	telegram.RegisterReminderHandlers(ctx, bot, cfg, reminderService, logger.Get().WithField("component", "handlers"))
	log.Info("Reminder handlers registered.")

	log.Info("Application setup complete. Bot and scheduler are starting...")
	go bot.Start()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down application...")
	cancel()
	dispatchScheduler.Stop()
	bot.Stop()
	log.Info("Application shut down gracefully.")
}
