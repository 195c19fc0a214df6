package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "SKYJO_ENV", "LOG_LEVEL", "DATABASE_URL", "PG_HOST",
		"DEFAULT_PLAYER_COUNT", "RESHUFFLE_ON_EMPTY_DECK", "HISTORIAN_ENABLED",
		"REDIS_ADDR", "REDIS_DB", "HISTORIAN_QUEUE_NAME", "HISTORIAN_BATCH_SIZE",
		"HISTORIAN_FLUSH_MS", "GAME_INACTIVITY_TIMEOUT_SEC",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, ":8080", cfg.Addr())
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "", cfg.DatabaseURL)
	assert.Equal(t, 4, cfg.DefaultPlayerCount)
	assert.True(t, cfg.ReshuffleOnEmptyDeck)
	assert.False(t, cfg.HistorianEnabled)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, "skyjo_actions", cfg.QueueName)
	assert.Equal(t, 20, cfg.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.FlushDelay)
	assert.Equal(t, 10*time.Minute, cfg.Inactivity)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("SKYJO_ENV", "Production")
	t.Setenv("DEFAULT_PLAYER_COUNT", "6")
	t.Setenv("RESHUFFLE_ON_EMPTY_DECK", "false")
	t.Setenv("HISTORIAN_ENABLED", "1")
	t.Setenv("HISTORIAN_FLUSH_MS", "not-a-number")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("POSTGRES_USER", "skyjo")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("PG_HOST", "db")
	t.Setenv("PG_PORT", "")
	t.Setenv("PG_DATABASE", "skyjo")

	cfg := Load()
	assert.Equal(t, ":9000", cfg.Addr())
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 6, cfg.DefaultPlayerCount)
	assert.False(t, cfg.ReshuffleOnEmptyDeck)
	assert.True(t, cfg.HistorianEnabled)
	assert.Equal(t, 500*time.Millisecond, cfg.FlushDelay, "bad ints fall back to the default")
	assert.Equal(t, "postgres://skyjo:secret@db:5432/skyjo", cfg.DatabaseURL)
}

func TestLoadRejectsNonPositiveDurations(t *testing.T) {
	for _, v := range []string{"0", "-5"} {
		t.Setenv("GAME_INACTIVITY_TIMEOUT_SEC", v)
		t.Setenv("HISTORIAN_FLUSH_MS", v)
		t.Setenv("HISTORIAN_BATCH_SIZE", v)

		cfg := Load()
		assert.Equal(t, 10*time.Minute, cfg.Inactivity, "value %q", v)
		assert.Equal(t, 500*time.Millisecond, cfg.FlushDelay, "value %q", v)
		assert.Equal(t, 20, cfg.BatchSize, "value %q", v)
	}
}

func TestNewLogger(t *testing.T) {
	cfg := Config{Env: "production", LogLevel: "debug"}
	logger := cfg.NewLogger()
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	cfg = Config{Env: "development", LogLevel: "loud"}
	logger = cfg.NewLogger()
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)
}
