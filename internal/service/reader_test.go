package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"fxstream/internal/domain"
	"fxstream/internal/infra/cache"
)

func seedHistory(t *testing.T, mem *cache.MemoryCache, stamps []string) {
	t.Helper()
	ctx := context.Background()
	for i, ts := range stamps {
		q := domain.Quote{Symbol: "EUR-USD", Bid: 1.08 + float64(i)/1000, Ask: 1.0802, Timestamp: ts}
		if err := mem.SetLatest(ctx, q); err != nil {
			t.Fatalf("SetLatest: %v", err)
		}
		if err := mem.PushHistory(ctx, q); err != nil {
			t.Fatalf("PushHistory: %v", err)
		}
	}
}

func TestReader_Latest(t *testing.T) {
	ctx := context.Background()
	mem := cache.NewMemoryCache(cache.DefaultOptions())
	r := NewReader(mem)

	if _, err := r.Latest(ctx, "EUR-USD"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	seedHistory(t, mem, []string{"2026-08-30T12:00:00Z"})

	q, err := r.Latest(ctx, "EUR-USD")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if q.Symbol != "EUR-USD" {
		t.Errorf("unexpected quote: %+v", q)
	}
}

func TestReader_HistorySinceFilter(t *testing.T) {
	ctx := context.Background()
	mem := cache.NewMemoryCache(cache.DefaultOptions())
	r := NewReader(mem)

	seedHistory(t, mem, []string{
		"2026-08-30T12:00:00Z",
		"2026-08-30T12:00:10Z",
		"2026-08-30T12:00:20Z",
	})

	all, err := r.History(ctx, "EUR-USD", 10, time.Time{})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 quotes, got %d", len(all))
	}
	// Newest first.
	if all[0].Timestamp != "2026-08-30T12:00:20Z" {
		t.Errorf("expected newest first, got %s", all[0].Timestamp)
	}

	since := time.Date(2026, 8, 30, 12, 0, 10, 0, time.UTC)
	recent, err := r.History(ctx, "EUR-USD", 10, since)
	if err != nil {
		t.Fatalf("History since: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 quotes at or after %v, got %d", since, len(recent))
	}

	if _, err := r.History(ctx, "EUR-USD", 10, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound when the filter drops everything, got %v", err)
	}
}

func TestReader_HistorySkipsUnstampedWhenFiltering(t *testing.T) {
	ctx := context.Background()
	mem := cache.NewMemoryCache(cache.DefaultOptions())
	r := NewReader(mem)

	seedHistory(t, mem, []string{"", "2026-08-30T12:00:10Z"})

	since := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	got, err := r.History(ctx, "EUR-USD", 10, since)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(got) != 1 || got[0].Timestamp == "" {
		t.Errorf("expected only the stamped quote, got %+v", got)
	}
}

func TestReader_Health(t *testing.T) {
	ctx := context.Background()
	mem := cache.NewMemoryCache(cache.DefaultOptions())
	r := NewReader(mem)

	h, err := r.Health(ctx)
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if h.Healthy || h.Status != nil || h.LastHeartbeat != nil {
		t.Errorf("expected empty health, got %+v", h)
	}

	mem.SetStatus(ctx, domain.NewStatusRecord(domain.StateRunning, 0, []string{"EUR-USD"}))
	mem.Heartbeat(ctx, time.Now().UTC())

	h, err = r.Health(ctx)
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if !h.Healthy {
		t.Error("expected healthy with fresh heartbeat and running status")
	}

	mem.SetStatus(ctx, domain.NewStatusRecord(domain.StateFailed, 10, []string{"EUR-USD"}))
	h, _ = r.Health(ctx)
	if h.Healthy {
		t.Error("failed status must not be healthy even with a heartbeat")
	}
}
