package cache

import (
	"context"
	"sync"
	"time"

	"fxstream/internal/domain"
)

type entry struct {
	value   string
	expires time.Time
}

func (e entry) expired(now time.Time) bool {
	return now.After(e.expires)
}

type quoteEntry struct {
	quote   domain.Quote
	expires time.Time
}

// MemoryCache implements domain.Cache in process memory with the same TTL
// and trim semantics as the Redis implementation. Used by tests and as a
// degraded mode when no Redis is reachable.
type MemoryCache struct {
	mu      sync.RWMutex
	latest  map[string]quoteEntry
	history map[string][]domain.Quote
	histExp map[string]time.Time
	status  *domain.StatusRecord
	statExp time.Time
	hb      time.Time
	hbExp   time.Time
	raw     map[string]entry
	opts    Options
	now     func() time.Time
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache(opts Options) *MemoryCache {
	return &MemoryCache{
		latest:  make(map[string]quoteEntry),
		history: make(map[string][]domain.Quote),
		histExp: make(map[string]time.Time),
		raw:     make(map[string]entry),
		opts:    opts,
		now:     time.Now,
	}
}

func (m *MemoryCache) SetLatest(ctx context.Context, q domain.Quote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest[q.Symbol] = quoteEntry{quote: q, expires: m.now().Add(m.opts.QuoteTTL)}
	return nil
}

func (m *MemoryCache) PushHistory(ctx context.Context, q domain.Quote) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := append([]domain.Quote{q}, m.history[q.Symbol]...)
	if len(list) > m.opts.HistoryCap {
		list = list[:m.opts.HistoryCap]
	}
	m.history[q.Symbol] = list
	m.histExp[q.Symbol] = m.now().Add(m.opts.QuoteTTL)
	return nil
}

func (m *MemoryCache) GetLatest(ctx context.Context, symbol string) (*domain.Quote, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.latest[symbol]
	if !ok || m.now().After(e.expires) {
		return nil, domain.ErrNotFound
	}
	q := e.quote
	return &q, nil
}

func (m *MemoryCache) GetHistory(ctx context.Context, symbol string, limit int) ([]domain.Quote, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	exp, ok := m.histExp[symbol]
	if !ok || m.now().After(exp) {
		return nil, domain.ErrNotFound
	}
	list := m.history[symbol]
	if len(list) == 0 {
		return nil, domain.ErrNotFound
	}
	if limit <= 0 || limit > len(list) {
		limit = len(list)
	}
	out := make([]domain.Quote, limit)
	copy(out, list[:limit])
	return out, nil
}

func (m *MemoryCache) SetStatus(ctx context.Context, rec domain.StatusRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = &rec
	m.statExp = m.now().Add(m.opts.StatusTTL)
	return nil
}

func (m *MemoryCache) GetStatus(ctx context.Context) (*domain.StatusRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.status == nil || m.now().After(m.statExp) {
		return nil, domain.ErrNotFound
	}
	rec := *m.status
	return &rec, nil
}

func (m *MemoryCache) Heartbeat(ctx context.Context, t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hb = t
	m.hbExp = m.now().Add(m.opts.HeartbeatTTL)
	return nil
}

func (m *MemoryCache) LastHeartbeat(ctx context.Context) (time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.hb.IsZero() || m.now().After(m.hbExp) {
		return time.Time{}, domain.ErrNotFound
	}
	return m.hb, nil
}

func (m *MemoryCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.raw[key] = entry{value: value, expires: m.now().Add(ttl)}
	return nil
}

func (m *MemoryCache) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.raw[key]
	if !ok || e.expired(m.now()) {
		return "", domain.ErrNotFound
	}
	return e.value, nil
}

func (m *MemoryCache) Ping(ctx context.Context) error { return nil }

func (m *MemoryCache) Close() error { return nil }
