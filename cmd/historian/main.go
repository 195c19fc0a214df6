// cmd/historian/main.go is an asynchronous historian service that pops game
// actions from a Redis queue and persists them to a PostgreSQL database.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jason-s-yu/skyjo/internal/cache"
	"github.com/jason-s-yu/skyjo/internal/config"
	"github.com/jason-s-yu/skyjo/internal/database"
	"github.com/jason-s-yu/skyjo/internal/historian"
	_ "github.com/joho/godotenv/autoload"
)

func main() {
	cfg := config.Load()
	logger := cfg.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.ConnectDB(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatalf("database: %v", err)
	}
	defer pool.Close()
	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatalf("database: %v", err)
	}

	rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	hs := historian.NewService(rdb, database.NewStore(pool), historian.Options{
		Queue:      cfg.QueueName,
		BatchSize:  cfg.BatchSize,
		FlushDelay: cfg.FlushDelay,
		Inactivity: cfg.Inactivity,
	}, logger)
	hs.Run(ctx)
	logger.Info("Historian shutdown complete.")
}
