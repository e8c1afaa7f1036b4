package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mathrelay/client/internal/channel"
	"github.com/mathrelay/client/internal/config"
	"github.com/mathrelay/client/internal/countdown"
	"github.com/mathrelay/client/internal/httpapi"
	"github.com/mathrelay/client/internal/session"
	"github.com/mathrelay/client/internal/snapshot"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := buildLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	store, err := snapshot.Open(cfg.SnapshotPath)
	if err != nil {
		logger.Fatal("open snapshot store", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clock := clockwork.NewRealClock()
	timers := countdown.NewRunner(clock, logger)
	sess := session.New(ctx, cfg.MatchID, store, timers, logger)

	client := channel.New(channel.Config{
		URL:     cfg.ServerURL,
		MatchID: cfg.MatchID,
		UserID:  cfg.UserID,
		PartyID: cfg.PartyID,
	}, sess, clock, logger)

	go func() {
		if err := client.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("channel stopped", zap.Error(err))
		}
	}()

	srv := &http.Server{Addr: cfg.ListenAddr, Handler: httpapi.SetupRoutes(sess)}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	logger.Info("status api listening", zap.String("addr", cfg.ListenAddr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("status api failed", zap.Error(err))
	}
}

func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}
