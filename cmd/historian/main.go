// cmd/historian/main.go drains the redis action queue into postgres.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/rams/internal/cache"
	"github.com/jason-s-yu/rams/internal/config"
	"github.com/jason-s-yu/rams/internal/database"
	"github.com/jason-s-yu/rams/internal/historian"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	logger := cfg.NewLogger()

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Fatal("historian exited")
	}
}

func run(cfg config.Config, logger *logrus.Logger) error {
	if cfg.DatabaseURL == "" {
		return errors.New("historian needs DATABASE_URL")
	}
	if cfg.RedisAddr == "" {
		return errors.New("historian needs REDIS_ADDR")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.Connect(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := database.Migrate(ctx, pool); err != nil {
		return err
	}

	rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer rdb.Close()

	hs := historian.NewService(
		cache.NewActionLog(rdb, cfg.HistorianQueue),
		historian.NewPostgresSink(pool),
		historian.Options{
			BatchSize:     cfg.HistorianBatchSize,
			FlushInterval: time.Duration(cfg.HistorianFlushMs) * time.Millisecond,
			Inactivity:    time.Duration(cfg.InactivitySec) * time.Second,
		},
		logger,
	)

	logger.WithField("queue", cfg.HistorianQueue).Info("historian started")
	hs.Run(ctx)
	logger.Info("historian stopped")
	return nil
}
