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

	"github.com/jason-s-yu/blanks/internal/cache"
	"github.com/jason-s-yu/blanks/internal/config"
	"github.com/jason-s-yu/blanks/internal/deck"
	"github.com/jason-s-yu/blanks/internal/game"
	"github.com/jason-s-yu/blanks/internal/handlers"
	"github.com/jason-s-yu/blanks/internal/middleware"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	logger := cfg.NewLogger()

	catalog, err := deck.Load(cfg.DecksPath)
	if err != nil {
		logger.Fatalf("load decks: %v", err)
	}
	logger.Infof("Loaded %d decks", len(catalog.Decks()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// action history is optional; without Redis nothing is published
	var actions game.ActionPublisher
	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			logger.Fatalf("redis: %v", err)
		}
		defer rdb.Close()
		actions = cache.NewActionQueue(rdb, cfg.HistorianQueueName)
		logger.Infof("Publishing game actions to %s/%s", cfg.RedisAddr, cfg.HistorianQueueName)
	}

	gs := handlers.NewGameServer(cfg.Limits(), catalog, actions, logger)
	scheduler := game.NewScheduler(gs.Registry, cfg.TickRateHz, game.NewTickerGen(), logger)
	go scheduler.Run(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.LogMiddleware(logger)(gs.Routes()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warnf("shutdown: %v", err)
		}
	}()

	logger.Infof("Running on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("server exited: %v", err)
	}
	logger.Info("server stopped")
}
