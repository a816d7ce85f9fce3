package service

import (
	"context"
	"errors"
	"time"

	"fxstream/internal/domain"
)

// Reader serves the cache's read contract to the API layer. It only ever
// reads; the ingestion pipeline is the sole writer.
type Reader struct {
	cache domain.Cache
}

// NewReader creates a Reader over the given cache.
func NewReader(cache domain.Cache) *Reader {
	return &Reader{cache: cache}
}

// Latest returns the most recent quote for symbol, or domain.ErrNotFound
// when the slot is absent or expired.
func (r *Reader) Latest(ctx context.Context, symbol string) (*domain.Quote, error) {
	return r.cache.GetLatest(ctx, symbol)
}

// History returns up to limit quotes for symbol, newest first, optionally
// keeping only quotes stamped at or after since. Quotes whose feed
// timestamp is missing or unparseable are excluded once a since filter is
// in effect. An empty result is domain.ErrNotFound.
func (r *Reader) History(ctx context.Context, symbol string, limit int, since time.Time) ([]domain.Quote, error) {
	quotes, err := r.cache.GetHistory(ctx, symbol, limit)
	if err != nil {
		return nil, err
	}
	if since.IsZero() {
		return quotes, nil
	}

	filtered := quotes[:0]
	for _, q := range quotes {
		t, ok := q.Time()
		if ok && !t.Before(since) {
			filtered = append(filtered, q)
		}
	}
	if len(filtered) == 0 {
		return nil, domain.ErrNotFound
	}
	return filtered, nil
}

// ServiceHealth is what external monitors see: the last status record and
// the heartbeat, whose absence (TTL expiry) marks the process unhealthy.
type ServiceHealth struct {
	Status        *domain.StatusRecord `json:"status,omitempty"`
	LastHeartbeat *time.Time           `json:"last_heartbeat,omitempty"`
	Healthy       bool                 `json:"healthy"`
}

// Health reports the ingestion service's externally visible health.
func (r *Reader) Health(ctx context.Context) (*ServiceHealth, error) {
	h := &ServiceHealth{}

	if rec, err := r.cache.GetStatus(ctx); err == nil {
		h.Status = rec
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	if hb, err := r.cache.LastHeartbeat(ctx); err == nil {
		h.LastHeartbeat = &hb
		h.Healthy = h.Status == nil || h.Status.Status == domain.StateRunning ||
			h.Status.Status == domain.StateStarting || h.Status.Status == domain.StateRestarting
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	return h, nil
}
