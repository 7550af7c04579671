package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"PORT", "DATABASE_URL", "STORE", "REDIS_ADDR", "REDIS_DB", "HISTORIAN_QUEUE_NAME",
		"HISTORIAN_BATCH_SIZE", "HISTORIAN_FLUSH_MS", "GAME_INACTIVITY_TIMEOUT_SEC", "LOG_LEVEL",
		"STARTING_PILE", "HUMAN_SEATS", "TOKEN_EXPIRE_TIME", "POSTGRES_USER", "POSTGRES_PASSWORD",
		"PG_HOST", "PG_PORT", "PG_DATABASE", "AUTH_PRIVATE_KEY_PATH", "AUTH_PUBLIC_KEY_PATH",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, DefaultQueueName, cfg.HistorianQueue)
	assert.Equal(t, 20, cfg.HistorianBatchSize)
	assert.Zero(t, cfg.TokenExpire)
	assert.Equal(t, 20, cfg.HouseRules().StartingPile)
	assert.Equal(t, 1, cfg.HouseRules().HumanSeats)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("STORE", StorePostgres)
	t.Setenv("POSTGRES_USER", "rams")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("PG_HOST", "db")
	t.Setenv("TOKEN_EXPIRE_TIME", "2h")
	t.Setenv("HUMAN_SEATS", "2")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "postgres://rams:secret@db:5432/rams", cfg.DatabaseURL)
	assert.Equal(t, 2*time.Hour, cfg.TokenExpire)
	assert.Equal(t, 2, cfg.HumanSeats)
	assert.Equal(t, 0, cfg.RedisDB, "bad ints fall back to the default")
}

func TestLoadRejects(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE", StorePostgres)
	_, err := Load()
	assert.Error(t, err, "postgres without a url")

	clearEnv(t)
	t.Setenv("STORE", "sqlite")
	_, err = Load()
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv("TOKEN_EXPIRE_TIME", "soon")
	_, err = Load()
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv("AUTH_PRIVATE_KEY_PATH", "/keys/ed25519")
	_, err = Load()
	assert.Error(t, err, "one key path without the other")
}

func TestNewLogger(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, Config{LogLevel: "debug"}.NewLogger().GetLevel())
	assert.Equal(t, logrus.InfoLevel, Config{LogLevel: "loud"}.NewLogger().GetLevel())
}
