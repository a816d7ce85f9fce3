package domain

import (
	"context"
	"time"
)

// Cache is the short-TTL key-value store the ingestion pipeline writes
// through and the read path serves from. The stream consumer is the sole
// writer of quote keys; the supervisor is the sole writer of status keys.
// Every write is a last-write-wins upsert.
type Cache interface {
	// SetLatest stores q as the latest-value slot for its symbol,
	// refreshing the slot TTL.
	SetLatest(ctx context.Context, q Quote) error

	// PushHistory prepends q to the symbol's capped history list,
	// trims the list to the cap and refreshes the list TTL.
	PushHistory(ctx context.Context, q Quote) error

	// GetLatest returns the latest quote for symbol, or ErrNotFound when
	// the slot is absent or expired.
	GetLatest(ctx context.Context, symbol string) (*Quote, error)

	// GetHistory returns up to limit quotes for symbol, newest first.
	// An absent or expired list yields ErrNotFound.
	GetHistory(ctx context.Context, symbol string, limit int) ([]Quote, error)

	// SetStatus publishes the supervisor status record.
	SetStatus(ctx context.Context, rec StatusRecord) error

	// GetStatus returns the last published status record, or ErrNotFound.
	GetStatus(ctx context.Context) (*StatusRecord, error)

	// Heartbeat stores t under the heartbeat key with a short TTL.
	Heartbeat(ctx context.Context, t time.Time) error

	// LastHeartbeat returns the most recent heartbeat time, or ErrNotFound
	// when the key has expired (the monitors' unhealthy signal).
	LastHeartbeat(ctx context.Context) (time.Time, error)

	// Get reads an arbitrary string key. Used for out-of-band values such
	// as the OAuth token the authorization flow parks in the cache.
	Get(ctx context.Context, key string) (string, error)

	Ping(ctx context.Context) error
	Close() error
}

// Runner is a long-lived unit of work the supervisor restarts on failure.
// A nil return means the run ended normally (or was cancelled) and must
// not be restarted.
type Runner interface {
	Run(ctx context.Context) error
}
