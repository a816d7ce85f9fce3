package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"fxstream/internal/domain"
	"fxstream/internal/infra"
	"fxstream/internal/service"
)

// Handler contains all HTTP handlers of the read API.
type Handler struct {
	reader  *service.Reader
	cache   domain.Cache
	metrics *infra.Metrics
	logger  *slog.Logger
}

// NewHandler creates a new handler
func NewHandler(reader *service.Reader, cache domain.Cache, metrics *infra.Metrics, logger *slog.Logger) *Handler {
	return &Handler{
		reader:  reader,
		cache:   cache,
		metrics: metrics,
		logger:  logger.With("module", "api_handler"),
	}
}

// priceResponse is a quote plus exact derived prices for display.
type priceResponse struct {
	domain.Quote
	Spread string `json:"spread"`
	Mid    string `json:"mid"`
}

func toPriceResponse(q domain.Quote) priceResponse {
	return priceResponse{
		Quote:  q,
		Spread: q.Spread().String(),
		Mid:    q.Mid().String(),
	}
}

// GetPrice returns the latest quote for a symbol.
func (h *Handler) GetPrice(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")

	q, err := h.reader.Latest(r.Context(), symbol)
	if errors.Is(err, domain.ErrNotFound) {
		respondError(w, http.StatusNotFound, "symbol not found")
		return
	}
	if err != nil {
		h.logger.Error("latest quote lookup failed",
			slog.String("symbol", symbol), slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, toPriceResponse(*q))
}

// GetTicks returns up to N recent quotes for a symbol, newest first,
// optionally filtered to timestamps at or after ?since= (RFC 3339).
func (h *Handler) GetTicks(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	var since time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid since timestamp")
			return
		}
		since = t
	}

	quotes, err := h.reader.History(r.Context(), symbol, limit, since)
	if errors.Is(err, domain.ErrNotFound) {
		respondError(w, http.StatusNotFound, "no ticks available")
		return
	}
	if err != nil {
		h.logger.Error("history lookup failed",
			slog.String("symbol", symbol), slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, quotes)
}

// Health reports API liveness and cache reachability.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	cacheStatus := "healthy"

	if err := h.cache.Ping(r.Context()); err != nil {
		status = "degraded"
		cacheStatus = "unhealthy"
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": status,
		"cache":  cacheStatus,
	})
}

// ServiceHealth reports the ingestion service's status record and
// heartbeat as seen in the cache.
func (h *Handler) ServiceHealth(w http.ResponseWriter, r *http.Request) {
	health, err := h.reader.Health(r.Context())
	if err != nil {
		h.logger.Error("service health lookup failed", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	respondJSON(w, http.StatusOK, health)
}

// Metrics returns a snapshot of the process counters.
func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.metrics.Snapshot())
}
