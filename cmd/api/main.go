package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"fxstream/internal/api"
	"fxstream/internal/app"
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
	defer bootstrap.Cache.Close()

	reader := service.NewReader(bootstrap.Cache)
	handler := api.NewHandler(reader, bootstrap.Cache, bootstrap.Metrics, logger)
	server := api.NewServer(cfg.API.Addr, handler, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			slog.Error("❌ Shutdown failed", slog.Any("error", err))
			os.Exit(1)
		}
	case err := <-errCh:
		if err != nil {
			slog.Error("❌ Read API failed", slog.Any("error", err))
			os.Exit(1)
		}
	}

	slog.Info("👋 Read API stopped")
}
