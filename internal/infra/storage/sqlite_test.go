package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"fxstream/internal/domain"
)

func setupTestArchive(t *testing.T) *TickArchive {
	t.Helper()

	a, err := NewTickArchive(filepath.Join(t.TempDir(), "ticks.db"))
	if err != nil {
		t.Fatalf("failed to open test archive: %v", err)
	}
	return a
}

func TestSaveAndRecent(t *testing.T) {
	a := setupTestArchive(t)

	for i := 0; i < 5; i++ {
		q := domain.Quote{
			Symbol:    "EUR-USD",
			Bid:       1.08 + float64(i)/1000,
			Ask:       1.0802 + float64(i)/1000,
			Timestamp: "2026-08-30T12:00:00Z",
		}
		if err := a.Save(q); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	ticks, err := a.Recent("EUR-USD", 3)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(ticks) != 3 {
		t.Fatalf("expected 3 ticks, got %d", len(ticks))
	}

	if _, err := a.Recent("GBP-USD", 10); err != nil {
		t.Fatalf("Recent for unknown symbol failed: %v", err)
	}
}

func TestPruneBefore(t *testing.T) {
	a := setupTestArchive(t)

	if err := a.Save(domain.Quote{Symbol: "EUR-USD", Bid: 1.08, Ask: 1.0802}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	deleted, err := a.PruneBefore(time.Now().Add(time.Minute))
	if err != nil {
		t.Fatalf("PruneBefore failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted row, got %d", deleted)
	}

	ticks, err := a.Recent("EUR-USD", 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(ticks) != 0 {
		t.Errorf("expected empty archive after prune, got %d ticks", len(ticks))
	}
}

func TestRunDrainsChannel(t *testing.T) {
	a := setupTestArchive(t)

	ch := make(chan domain.Quote, 4)
	ch <- domain.Quote{Symbol: "EUR-USD", Bid: 1.1, Ask: 1.2}
	ch <- domain.Quote{Symbol: "EUR-USD", Bid: 1.3, Ask: 1.4}
	close(ch)

	a.Run(context.Background(), ch)

	ticks, err := a.Recent("EUR-USD", 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(ticks) != 2 {
		t.Errorf("expected 2 archived ticks, got %d", len(ticks))
	}
}
