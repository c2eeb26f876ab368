package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application.
type AppConfig struct {
	TelegramToken    string
	DatabaseURL      string
	AdminTelegramID  int64
	LogLevel         string
	Environment      string
	DefaultLocale    string         // locale tag assumed when the transport supplies none
	Location         *time.Location // the single configured time zone
	CronSpecDispatch string         // tick spec for the dispatch loop
	FallbackOffset   time.Duration  // schedule applied when no pattern matches
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID")
	if adminIDStr == "" {
		return nil, fmt.Errorf("ADMIN_TELEGRAM_ID is not set")
	}
	cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	cfg.DefaultLocale = os.Getenv("DEFAULT_LOCALE")
	if cfg.DefaultLocale == "" {
		cfg.DefaultLocale = "zh-Hant"
	}

	tzName := os.Getenv("TIMEZONE")
	if tzName == "" {
		tzName = "Asia/Taipei" // Single configured zone for all parsing and firing
	}
	cfg.Location, err = time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tzName, err)
	}

	cfg.CronSpecDispatch = os.Getenv("CRON_SPEC_DISPATCH")
	if cfg.CronSpecDispatch == "" {
		cfg.CronSpecDispatch = "* * * * *" // Default: every minute
	}

	fallbackStr := os.Getenv("FALLBACK_OFFSET_MINUTES")
	if fallbackStr == "" {
		cfg.FallbackOffset = time.Hour // Default: one hour ahead
	} else {
		minutes, convErr := strconv.Atoi(fallbackStr)
		if convErr != nil || minutes < 1 {
			return nil, fmt.Errorf("invalid FALLBACK_OFFSET_MINUTES: %q", fallbackStr)
		}
		cfg.FallbackOffset = time.Duration(minutes) * time.Minute
	}

	return cfg, nil
}
