// Command aggrecored runs the client-side core as a standalone daemon:
// a Runtime dispatch loop backed by a BadgerDB (or Redis) store, a
// scheduler for notification pulls and library syncs, and an HTTP/
// WebSocket surface a UI can drive.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aggrecore/core/pkg/env"
	"github.com/aggrecore/core/pkg/runtime"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := newLogger("info")

	logger.Info("aggrecored: parsing config")
	config := parseConfig()
	if config.LogLevel != "info" {
		logger = newLogger(config.LogLevel)
	}
	logger.Info("aggrecored: parsed config",
		zap.String("bindAddr", config.BindAddr), zap.Int("port", config.Port),
		zap.String("storagePath", config.StoragePath), zap.Duration("schedulerInterval", config.SchedulerInterval))

	store, closeStore, err := openStore(config, logger)
	if err != nil {
		logger.Fatal("aggrecored: could not open store", zap.Error(err))
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Error("aggrecored: could not close store", zap.Error(err))
		}
	}()

	hostEnv := env.NewHTTP(store, logger)

	root := runtime.NewRoot(hostEnv, logger)
	if err := bootstrap(ctx, hostEnv, root, logger); err != nil {
		logger.Fatal("aggrecored: bootstrap failed", zap.Error(err))
	}

	rt := runtime.New(root, hostEnv, logger, runtime.WithQueueCapacity(config.QueueCapacity))
	go rt.Run(ctx)

	sched := newScheduler(hostEnv, rt, logger)
	if err := sched.Start(config.SchedulerInterval); err != nil {
		logger.Fatal("aggrecored: could not start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	handler := newServer(rt, logger)
	addr := config.BindAddr + ":" + strconv.Itoa(config.Port)
	httpServer := &http.Server{Addr: addr, Handler: handler}

	go func() {
		logger.Info("aggrecored: listening", zap.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("aggrecored: http server failed", zap.Error(err))
		}
	}()

	stoppingChan := make(chan os.Signal, 1)
	signal.Notify(stoppingChan, syscall.SIGINT, syscall.SIGTERM)
	<-stoppingChan

	logger.Info("aggrecored: shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("aggrecored: http server shutdown error", zap.Error(err))
	}
	cancel()
}

func openStore(config config, logger *zap.Logger) (env.Store, func() error, error) {
	if config.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: config.RedisAddr})
		store := env.NewRedisStore(rdb, "aggrecored:", 0)
		logger.Info("aggrecored: using redis store", zap.String("addr", config.RedisAddr))
		return store, store.Close, nil
	}

	if err := os.MkdirAll(config.StoragePath, 0o755); err != nil {
		return nil, nil, err
	}
	store, err := env.OpenBadgerStore(config.StoragePath)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("aggrecored: using badger store", zap.String("path", config.StoragePath))
	return store, store.Close, nil
}

func newLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	if err := zapLevel.Set(level); err != nil {
		zapLevel = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}
