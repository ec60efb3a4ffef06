package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config keeps runtime settings for the engine.
type Config struct {
	DatabaseURL     string
	UserID          string
	Debounce        time.Duration
	RefreshInterval time.Duration
	DigestTime      string
	TelegramToken   string
	TelegramChatID  int64
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	cfg := Config{
		DatabaseURL:     strings.TrimSpace(os.Getenv("DATABASE_URL")),
		UserID:          strings.TrimSpace(os.Getenv("USER_ID")),
		Debounce:        parseMillis(strings.TrimSpace(os.Getenv("DEBOUNCE_MS"))),
		RefreshInterval: parseMinutes(strings.TrimSpace(os.Getenv("REFRESH_INTERVAL_MINUTES"))),
		DigestTime:      strings.TrimSpace(os.Getenv("DIGEST_TIME")),
		TelegramToken:   strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
	}

	if raw := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")); raw != "" {
		chatID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid TELEGRAM_CHAT_ID %q: %w", raw, err)
		}
		cfg.TelegramChatID = chatID
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "taskmesh.db"
	}

	if cfg.Debounce == 0 {
		cfg.Debounce = 50 * time.Millisecond
	}

	if os.Getenv("REFRESH_INTERVAL_MINUTES") == "" {
		cfg.RefreshInterval = 5 * time.Minute
	}

	if cfg.UserID == "" {
		return cfg, fmt.Errorf("USER_ID is required")
	}

	if cfg.TelegramToken != "" && cfg.TelegramChatID == 0 {
		return cfg, fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_TOKEN is set")
	}

	return cfg, nil
}

func parseMillis(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	ms, err := strconv.Atoi(raw)
	if err != nil || ms <= 0 {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}

func parseMinutes(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	minutes, err := strconv.Atoi(raw)
	if err != nil || minutes < 0 {
		return 0
	}
	return time.Duration(minutes) * time.Minute
}
