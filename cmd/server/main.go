// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"csv-chat/internal/common/config"
	"csv-chat/internal/common/database"
	"csv-chat/internal/common/logger"
	"csv-chat/internal/common/observability"
	"csv-chat/internal/dataset"
	"csv-chat/internal/engine"
	"csv-chat/internal/server"
	"csv-chat/internal/session"
)

// retryWithBackoff attempts to execute a function with exponential backoff.
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("starting csv-chat",
		zap.String("environment", cfg.App.Environment),
		zap.String("model", cfg.Engine.Model),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Session store ---
	var store session.Store
	if cfg.Sessions.Store == "redis" {
		var redisClient *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redisClient, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redisClient.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redisClient.Close()
		zapLog.Info("Redis connected successfully")

		store = session.NewRedisStore(redisClient, time.Duration(cfg.Sessions.TTLMinutes)*time.Minute)
	} else {
		store = session.NewMemoryStore(time.Duration(cfg.Sessions.TTLMinutes) * time.Minute)
	}

	// --- Engine and front-end ---
	eng := engine.NewOpenAI(cfg.Engine, log)
	frontend := session.NewFrontEnd(store, eng, log, obs)

	// --- Optional CSV watch directory ---
	if cfg.Datasets.WatchDir != "" {
		if err := startWatcher(ctx, cfg.Datasets.WatchDir, frontend, log, zapLog); err != nil {
			zapLog.Fatal("dataset watcher failed", zap.Error(err))
		}
	}

	// --- HTTP server ---
	srv := server.New(frontend, cfg.Server, cfg.Datasets.PreviewRows, log)
	if err := srv.Start(ctx); err != nil {
		zapLog.Fatal("server failed", zap.Error(err))
	}

	zapLog.Info("shutdown complete")
}

// startWatcher wires the drop-directory: every CSV that lands in watchDir
// is loaded into a dedicated session whose id is logged at startup.
func startWatcher(ctx context.Context, watchDir string, frontend *session.FrontEnd, log logger.Logger, zapLog *zap.Logger) error {
	watchSession, err := frontend.CreateSession(ctx)
	if err != nil {
		return err
	}

	watcher, err := dataset.NewWatcher(log)
	if err != nil {
		return err
	}

	events, err := watcher.Watch(ctx, watchDir)
	if err != nil {
		watcher.Stop()
		return err
	}

	zapLog.Info("watching directory for CSV files",
		zap.String("dir", watchDir),
		zap.String("sessionId", watchSession.ID),
	)

	go func() {
		defer watcher.Stop()
		for ev := range events {
			if err := frontend.InstallDataset(ctx, watchSession.ID, ev.Dataset); err != nil {
				zapLog.Warn("failed to install watched dataset",
					zap.String("path", ev.Path),
					zap.Error(err),
				)
			}
		}
	}()

	return nil
}
