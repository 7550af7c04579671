// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/rams/internal/game"
)

// Store backends accepted in STORE.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// DefaultQueueName is the Redis list the action log is pushed onto.
const DefaultQueueName = "rams_actions"

// Config is everything the binaries read from the environment. Binaries import
// github.com/joho/godotenv/autoload so a local .env is picked up first.
type Config struct {
	Port        string
	DatabaseURL string
	Store       string

	RedisAddr string
	RedisDB   int

	HistorianQueue     string
	HistorianBatchSize int
	HistorianFlushMs   int
	InactivitySec      int

	TokenExpire time.Duration

	// PrivateKeyPath and PublicKeyPath hold raw ed25519 keys; when unset a key pair is
	// generated at startup.
	PrivateKeyPath string
	PublicKeyPath  string
	LogLevel       string

	StartingPile int
	HumanSeats   int
}

// Load reads the environment, falling back to defaults for anything unset.
func Load() (Config, error) {
	cfg := Config{
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        databaseURL(),
		Store:              getEnv("STORE", StoreMemory),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		HistorianQueue:     getEnv("HISTORIAN_QUEUE_NAME", DefaultQueueName),
		HistorianBatchSize: getEnvInt("HISTORIAN_BATCH_SIZE", 20),
		HistorianFlushMs:   getEnvInt("HISTORIAN_FLUSH_MS", 500),
		InactivitySec:      getEnvInt("GAME_INACTIVITY_TIMEOUT_SEC", 600),
		PrivateKeyPath:     getEnv("AUTH_PRIVATE_KEY_PATH", ""),
		PublicKeyPath:      getEnv("AUTH_PUBLIC_KEY_PATH", ""),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		StartingPile:       getEnvInt("STARTING_PILE", game.DefaultHouseRules().StartingPile),
		HumanSeats:         getEnvInt("HUMAN_SEATS", game.DefaultHouseRules().HumanSeats),
	}

	expire, err := parseTokenExpire(os.Getenv("TOKEN_EXPIRE_TIME"))
	if err != nil {
		return Config{}, err
	}
	cfg.TokenExpire = expire

	if (cfg.PrivateKeyPath == "") != (cfg.PublicKeyPath == "") {
		return Config{}, fmt.Errorf("AUTH_PRIVATE_KEY_PATH and AUTH_PUBLIC_KEY_PATH must be set together")
	}

	switch cfg.Store {
	case StoreMemory:
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("STORE=postgres needs DATABASE_URL or POSTGRES_* settings")
		}
	default:
		return Config{}, fmt.Errorf("unknown STORE %q (want %s or %s)", cfg.Store, StoreMemory, StorePostgres)
	}
	return cfg, nil
}

// HouseRules returns the table defaults new games start from.
func (c Config) HouseRules() game.HouseRules {
	return game.HouseRules{StartingPile: c.StartingPile, HumanSeats: c.HumanSeats}
}

// NewLogger builds the process logger at the configured level.
func (c Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		logger.WithField("level", c.LogLevel).Warn("unknown LOG_LEVEL, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// databaseURL prefers DATABASE_URL and otherwise assembles one from the POSTGRES_* / PG_* parts.
func databaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	user := os.Getenv("POSTGRES_USER")
	host := os.Getenv("PG_HOST")
	if user == "" || host == "" {
		return ""
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		user,
		os.Getenv("POSTGRES_PASSWORD"),
		host,
		getEnv("PG_PORT", "5432"),
		getEnv("PG_DATABASE", "rams"),
	)
}

// parseTokenExpire reads TOKEN_EXPIRE_TIME: "", "0" or "never" mean tokens never expire.
func parseTokenExpire(raw string) (time.Duration, error) {
	if raw == "" || raw == "0" || raw == "never" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("failed to parse TOKEN_EXPIRE_TIME: %w", err)
	}
	return d, nil
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
