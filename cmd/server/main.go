// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/rams/internal/ai"
	"github.com/jason-s-yu/rams/internal/auth"
	"github.com/jason-s-yu/rams/internal/cache"
	"github.com/jason-s-yu/rams/internal/config"
	"github.com/jason-s-yu/rams/internal/database"
	"github.com/jason-s-yu/rams/internal/game"
	"github.com/jason-s-yu/rams/internal/handlers"
	"github.com/jason-s-yu/rams/internal/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	logger := cfg.NewLogger()

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Fatal("server exited")
	}
}

func run(cfg config.Config, logger *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var tokens *auth.SeatTokens
	var err error
	if cfg.PrivateKeyPath != "" {
		tokens, err = auth.NewFromPath(cfg.PrivateKeyPath, cfg.PublicKeyPath, cfg.TokenExpire)
	} else {
		tokens, err = auth.New(cfg.TokenExpire)
	}
	if err != nil {
		return err
	}

	var repo game.Repository
	switch cfg.Store {
	case config.StorePostgres:
		pool, err := database.Connect(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := database.Migrate(ctx, pool); err != nil {
			return err
		}
		repo = database.NewGameRepository(pool)
	default:
		repo = game.NewMemoryStore()
	}

	hub := handlers.NewHub(logger)
	publishers := []game.Publisher{hub}
	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer rdb.Close()
		publishers = append(publishers, cache.NewActionLog(rdb, cfg.HistorianQueue))
		logger.WithField("queue", cfg.HistorianQueue).Info("publishing actions to redis")
	}

	svc := game.NewService(game.NewEngine(logger, nil), repo, ai.NewBasic(), logger, publishers...)
	api := handlers.NewAPI(svc, tokens, hub, cfg.HouseRules(), logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.LogMiddleware(logger)(api.Routes()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{"addr": srv.Addr, "store": cfg.Store}).Info("server listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
