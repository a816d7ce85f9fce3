package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"fxstream/internal/domain"
	"fxstream/internal/infra"
)

// ErrMaxRestarts is returned by Start when the stream failed more times
// than the configured cap. The process is expected to exit and be
// restarted by an external process manager.
var ErrMaxRestarts = errors.New("max restart attempts exceeded")

// Options carries the supervisor knobs.
type Options struct {
	Symbols            []string
	MaxRestartAttempts int
	RestartDelay       time.Duration
	HeartbeatInterval  time.Duration
}

// Supervisor runs the streaming worker across process-level failures,
// one level above the worker's own connection-level retries.
// It owns the cache handle: it publishes status and heartbeat records to
// it and closes it on its own terminal exit.
type Supervisor struct {
	cache    domain.Cache
	runner   domain.Runner
	metrics  *infra.Metrics
	logger   *slog.Logger
	opts     Options
	running  atomic.Bool
	restarts atomic.Int32
}

// NewSupervisor wires a supervisor around a runner (the streaming worker).
func NewSupervisor(cache domain.Cache, runner domain.Runner, metrics *infra.Metrics, logger *slog.Logger, opts Options) *Supervisor {
	if opts.MaxRestartAttempts <= 0 {
		opts.MaxRestartAttempts = 10
	}
	if opts.RestartDelay <= 0 {
		opts.RestartDelay = 5 * time.Second
	}
	if opts.HeartbeatInterval <= 0 {
		opts.HeartbeatInterval = 30 * time.Second
	}
	return &Supervisor{
		cache:   cache,
		runner:  runner,
		metrics: metrics,
		logger:  logger.With("module", "supervisor"),
		opts:    opts,
	}
}

// Start runs the supervision loop until the stream ends normally, the
// restart cap is exceeded, Stop is called, or ctx is cancelled. It blocks
// for the lifetime of the service.
func (s *Supervisor) Start(ctx context.Context) error {
	s.running.Store(true)
	s.logger.Info("starting market data service",
		slog.Any("symbols", s.opts.Symbols))
	s.setStatus(ctx, domain.StateStarting)

	hbCtx, stopHeartbeat := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.heartbeat(hbCtx)
	}()

	failed := false
	for s.running.Load() && ctx.Err() == nil {
		s.setStatus(ctx, domain.StateRunning)
		s.logger.Info("connecting to feed",
			slog.Int("attempt", int(s.restarts.Load())+1))

		err := s.runner.Run(ctx)
		if err == nil {
			s.logger.Info("stream ended normally")
			break
		}

		restarts := int(s.restarts.Add(1))
		s.metrics.RecordRestart()
		s.logger.Error("stream error",
			slog.Int("attempt", restarts), slog.Any("error", err))

		if restarts >= s.opts.MaxRestartAttempts {
			s.logger.Error("max restart attempts reached",
				slog.Int("max", s.opts.MaxRestartAttempts))
			s.setStatus(ctx, domain.StateFailed)
			failed = true
			break
		}

		s.setStatus(ctx, domain.StateRestarting)
		select {
		case <-ctx.Done():
		case <-time.After(s.opts.RestartDelay):
		}
	}

	stopHeartbeat()
	wg.Wait()
	s.running.Store(false)

	// The failed state is terminal and must stay visible to monitors; it
	// is not overwritten with "stopped".
	finalCtx := context.WithoutCancel(ctx)
	if !failed {
		s.setStatus(finalCtx, domain.StateStopped)
	}

	if err := s.cache.Close(); err != nil {
		s.logger.Warn("cache close failed", slog.Any("error", err))
	}
	s.logger.Info("market data service stopped")

	if failed {
		return ErrMaxRestarts
	}
	return nil
}

// Stop flips the running flag. Shutdown is cooperative: in-flight work
// observes the flag at loop boundaries; nothing is forcibly cancelled.
func (s *Supervisor) Stop() {
	s.logger.Info("stop requested")
	s.running.Store(false)
}

// RestartCount reports how many times the runner has been restarted within
// this supervisor's lifetime.
func (s *Supervisor) RestartCount() int {
	return int(s.restarts.Load())
}

func (s *Supervisor) heartbeat(ctx context.Context) {
	ticker := time.NewTicker(s.opts.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.running.Load() {
				return
			}
			if err := s.cache.Heartbeat(ctx, time.Now().UTC()); err != nil {
				s.logger.Warn("heartbeat update failed", slog.Any("error", err))
			}
		}
	}
}

func (s *Supervisor) setStatus(ctx context.Context, state domain.ServiceState) {
	rec := domain.NewStatusRecord(state, int(s.restarts.Load()), s.opts.Symbols)
	if err := s.cache.SetStatus(ctx, rec); err != nil {
		s.logger.Warn("status update failed",
			slog.String("status", string(state)), slog.Any("error", err))
	}
}
