package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"DATABASE_URL", "USER_ID", "DEBOUNCE_MS", "REFRESH_INTERVAL_MINUTES", "DIGEST_TIME", "TELEGRAM_TOKEN", "TELEGRAM_CHAT_ID"} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("USER_ID", "user-u")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "taskmesh.db", cfg.DatabaseURL)
	assert.Equal(t, "user-u", cfg.UserID)
	assert.Equal(t, 50*time.Millisecond, cfg.Debounce)
	assert.Equal(t, 5*time.Minute, cfg.RefreshInterval)
	assert.Empty(t, cfg.DigestTime)
}

func TestLoad_RequiresUserID(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "USER_ID")
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("USER_ID", "user-u")
	t.Setenv("DATABASE_URL", "data/tasks.db")
	t.Setenv("DEBOUNCE_MS", "120")
	t.Setenv("REFRESH_INTERVAL_MINUTES", "1")
	t.Setenv("DIGEST_TIME", "08:00")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/tasks.db", cfg.DatabaseURL)
	assert.Equal(t, 120*time.Millisecond, cfg.Debounce)
	assert.Equal(t, time.Minute, cfg.RefreshInterval)
	assert.Equal(t, "08:00", cfg.DigestTime)
}

func TestLoad_TelegramNeedsChatID(t *testing.T) {
	clearEnv(t)
	t.Setenv("USER_ID", "user-u")
	t.Setenv("TELEGRAM_TOKEN", "token")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_CHAT_ID")
}

func TestLoad_InvalidChatID(t *testing.T) {
	clearEnv(t)
	t.Setenv("USER_ID", "user-u")
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "not-a-number")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_CHAT_ID")
}
