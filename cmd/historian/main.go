// cmd/historian is an asynchronous historian service that pops game actions
// from a Redis queue and persists them to PostgreSQL.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/blanks/internal/cache"
	"github.com/jason-s-yu/blanks/internal/config"
	"github.com/jason-s-yu/blanks/internal/database"
	"github.com/jason-s-yu/blanks/internal/historian"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	logger := cfg.NewLogger()

	if cfg.RedisAddr == "" || cfg.DatabaseURL == "" {
		logger.Fatal("historian needs REDIS_ADDR and DATABASE_URL")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("database: %v", err)
	}
	defer pool.Close()

	if err := database.EnsureSchema(ctx, pool); err != nil {
		logger.Fatalf("schema: %v", err)
	}

	svc := historian.New(
		cache.NewActionQueue(rdb, cfg.HistorianQueueName),
		database.NewActionStore(pool),
		historian.Options{
			BatchSize:     cfg.HistorianBatchSize,
			FlushInterval: cfg.HistorianFlushInterval(),
			PopTimeout:    time.Second,
		},
		logger,
	)
	logger.Infof("Historian draining %s", cfg.HistorianQueueName)
	svc.Run(ctx)
	logger.Info("historian stopped")
}
