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

	"github.com/jason-s-yu/skyjo/internal/cache"
	"github.com/jason-s-yu/skyjo/internal/config"
	"github.com/jason-s-yu/skyjo/internal/game"
	"github.com/jason-s-yu/skyjo/internal/handlers"
	"github.com/jason-s-yu/skyjo/internal/middleware"
	_ "github.com/joho/godotenv/autoload"
)

func main() {
	cfg := config.Load()
	logger := cfg.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defaults := game.DefaultHouseRules()
	defaults.ReshuffleOnEmptyDeck = cfg.ReshuffleOnEmptyDeck
	if err := defaults.Update(map[string]interface{}{"playerCount": cfg.DefaultPlayerCount}); err != nil {
		logger.Warnf("ignoring DEFAULT_PLAYER_COUNT=%d: %v", cfg.DefaultPlayerCount, err)
	}

	var historian game.ActionPublisher
	if cfg.HistorianEnabled {
		rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			logger.Fatalf("historian enabled but redis is unavailable: %v", err)
		}
		defer rdb.Close()
		historian = cache.NewPublisher(rdb, cfg.QueueName)
		logger.WithField("queue", cfg.QueueName).Info("publishing game actions to redis")
	}

	srv := handlers.NewGameServer(logger, defaults, historian)
	go srv.RunJanitor(ctx, cfg.Inactivity)

	mux := http.NewServeMux()
	srv.Routes(mux, middleware.LogMiddleware(logger))

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warnf("shutdown: %v", err)
		}
	}()

	logger.Infof("Running on %s", cfg.Addr())
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("server exited: %v", err)
	}
	logger.Info("server stopped")
}
