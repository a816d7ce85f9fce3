package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fxstream/internal/app"
	"fxstream/internal/domain"
	"fxstream/internal/infra/saxo"
	"fxstream/internal/infra/storage"
	"fxstream/internal/service"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(ctx, *configPath); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}

	cfg := bootstrap.Config
	logger := bootstrap.Logger

	tokens := saxo.NewTokenChain(cfg.Feed.Token, bootstrap.Cache, logger)
	client := saxo.NewClient(cfg, logger)
	worker := saxo.NewWorker(client, bootstrap.Cache, tokens, bootstrap.Metrics, logger, saxo.Options{
		Symbols:      cfg.Feed.Symbols,
		Framing:      cfg.Feed.Framing,
		BackoffFloor: time.Duration(cfg.Feed.BackoffFloorSec) * time.Second,
		BackoffCap:   time.Duration(cfg.Feed.BackoffCapSec) * time.Second,
	})

	if cfg.Archive.Enabled {
		archive, err := storage.NewTickArchive(cfg.Archive.Path)
		if err != nil {
			slog.Error("❌ Tick archive init failed", slog.Any("error", err))
			os.Exit(1)
		}
		ch := make(chan domain.Quote, 256)
		worker.SetArchive(ch)
		go archive.Run(ctx, ch)
		slog.Info("✅ Tick archive enabled", slog.String("path", cfg.Archive.Path))
	}

	supervisor := service.NewSupervisor(bootstrap.Cache, worker, bootstrap.Metrics, logger, service.Options{
		Symbols:            cfg.Feed.Symbols,
		MaxRestartAttempts: cfg.Supervisor.MaxRestartAttempts,
		RestartDelay:       time.Duration(cfg.Supervisor.RestartDelaySec) * time.Second,
		HeartbeatInterval:  time.Duration(cfg.Supervisor.HeartbeatIntervalSec) * time.Second,
	})

	slog.InfoContext(ctx, "✨ Market data service starting",
		slog.Any("symbols", cfg.Feed.Symbols), slog.String("framing", cfg.Feed.Framing))

	if err := supervisor.Start(ctx); err != nil {
		if errors.Is(err, service.ErrMaxRestarts) {
			slog.Error("❌ Stream failed permanently", slog.Any("error", err))
			os.Exit(1)
		}
		slog.Error("❌ Supervisor exited with error", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("👋 Market data service stopped")
}
