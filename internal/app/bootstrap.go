package app

import (
	"context"
	"log/slog"
	"time"

	"fxstream/internal/infra"
	"fxstream/internal/infra/cache"
)

// Bootstrap orchestrates the startup sequence shared by the ingestion
// service and the read API: config, logger, Redis.
type Bootstrap struct {
	Config  *infra.Config
	Logger  *slog.Logger
	Cache   *cache.RedisCache
	Metrics *infra.Metrics
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize loads configuration, installs the process logger and connects
// to Redis. On error the process should exit; nothing is retried here.
func (b *Bootstrap) Initialize(ctx context.Context, configPath string) error {
	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return err
	}
	b.Config = cfg

	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)
	b.Logger = logger

	store, err := cache.NewRedisCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, b.cacheOptions())
	if err != nil {
		return err
	}
	b.Cache = store
	slog.Info("✅ Redis connected", slog.String("addr", cfg.Redis.Addr))

	b.Metrics = infra.NewMetrics()
	return nil
}

func (b *Bootstrap) cacheOptions() cache.Options {
	opts := cache.DefaultOptions()
	opts.QuoteTTL = b.Config.CacheTTL()
	opts.HistoryCap = b.Config.Cache.HistoryLimit
	opts.StatusTTL = durationSec(b.Config.Cache.StatusTTLSec)
	opts.HeartbeatTTL = durationSec(b.Config.Cache.HeartbeatTTLSec)
	return opts
}

func durationSec(n int) time.Duration {
	return time.Duration(n) * time.Second
}

