package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fxstream/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ArchivedTick is one accepted quote persisted for later inspection. The
// cache keeps seconds of data; the archive keeps whatever fits on disk.
type ArchivedTick struct {
	ID         uint   `gorm:"primaryKey"`
	Symbol     string `gorm:"index"`
	Bid        float64
	Ask        float64
	Timestamp  string    // feed-supplied, may be empty
	ReceivedAt time.Time `gorm:"index"`
}

// TickArchive persists ticks to a local SQLite database.
type TickArchive struct {
	db *gorm.DB
}

// NewTickArchive opens (and migrates) the archive database at path.
func NewTickArchive(path string) (*TickArchive, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open archive database: %w", err)
	}

	if err := db.AutoMigrate(&ArchivedTick{}); err != nil {
		return nil, fmt.Errorf("failed to migrate archive database: %w", err)
	}

	return &TickArchive{db: db}, nil
}

// Save appends one quote to the archive.
func (a *TickArchive) Save(q domain.Quote) error {
	rec := ArchivedTick{
		Symbol:     q.Symbol,
		Bid:        q.Bid,
		Ask:        q.Ask,
		Timestamp:  q.Timestamp,
		ReceivedAt: time.Now().UTC(),
	}
	return a.db.Create(&rec).Error
}

// Recent returns up to limit archived ticks for symbol, newest first.
func (a *TickArchive) Recent(symbol string, limit int) ([]ArchivedTick, error) {
	var ticks []ArchivedTick
	err := a.db.Where("symbol = ?", symbol).
		Order("received_at DESC").
		Limit(limit).
		Find(&ticks).Error
	return ticks, err
}

// PruneBefore deletes archived ticks received before the cutoff.
func (a *TickArchive) PruneBefore(cutoff time.Time) (int64, error) {
	res := a.db.Where("received_at < ?", cutoff).Delete(&ArchivedTick{})
	return res.RowsAffected, res.Error
}

// Run drains quotes from in until the context is cancelled or the channel
// closes. Runs alongside the supervisor; a slow disk only ever drops
// archive entries, never cache writes.
func (a *TickArchive) Run(ctx context.Context, in <-chan domain.Quote) {
	for {
		select {
		case <-ctx.Done():
			return
		case q, ok := <-in:
			if !ok {
				return
			}
			_ = a.Save(q)
		}
	}
}
