package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// NewRouter creates the HTTP router with all routes
func NewRouter(h *Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /market/price/{symbol}", h.GetPrice)
	mux.HandleFunc("GET /market/ticks/{symbol}", h.GetTicks)

	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /health/service", h.ServiceHealth)
	mux.HandleFunc("GET /health/metrics", h.Metrics)

	return mux
}

// Server wraps the HTTP server with graceful shutdown
type Server struct {
	server *http.Server
	logger *slog.Logger
}

// NewServer creates the read API server.
func NewServer(addr string, h *Handler, logger *slog.Logger) *Server {
	return &Server{
		server: &http.Server{
			Addr:         addr,
			Handler:      NewRouter(h),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger.With("module", "api_server"),
	}
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.logger.Info("starting read API", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down read API")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}
