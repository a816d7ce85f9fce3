package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fxstream/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	statusKey    = "service:market_data:status"
	heartbeatKey = "service:market_data:heartbeat"
)

func latestKey(symbol string) string  { return fmt.Sprintf("fx:%s", symbol) }
func historyKey(symbol string) string { return fmt.Sprintf("ticks:%s", symbol) }

// Options carries TTLs and the history cap for the quote keys.
type Options struct {
	QuoteTTL     time.Duration // latest slot and history list, refreshed on write
	HistoryCap   int           // max elements kept in a history list
	StatusTTL    time.Duration
	HeartbeatTTL time.Duration
}

// DefaultOptions mirrors the feed service defaults: 30s quote TTL,
// 100-tick history, 300s status, 60s heartbeat.
func DefaultOptions() Options {
	return Options{
		QuoteTTL:     30 * time.Second,
		HistoryCap:   100,
		StatusTTL:    300 * time.Second,
		HeartbeatTTL: 60 * time.Second,
	}
}

// RedisCache implements domain.Cache on a Redis server. The latest slot is
// a plain string key; the history is a list, newest first, trimmed after
// every push.
type RedisCache struct {
	rdb  *redis.Client
	opts Options
}

// NewRedisCache creates a RedisCache and pings the server once so that a
// misconfigured address fails at startup, not on the first tick.
func NewRedisCache(ctx context.Context, addr, password string, db int, opts Options) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisCache{rdb: rdb, opts: opts}, nil
}

func (r *RedisCache) SetLatest(ctx context.Context, q domain.Quote) error {
	b, err := json.Marshal(q)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, latestKey(q.Symbol), b, r.opts.QuoteTTL).Err()
}

func (r *RedisCache) PushHistory(ctx context.Context, q domain.Quote) error {
	b, err := json.Marshal(q)
	if err != nil {
		return err
	}

	key := historyKey(q.Symbol)
	if err := r.rdb.LPush(ctx, key, b).Err(); err != nil {
		return fmt.Errorf("lpush %s: %w", key, err)
	}
	if err := r.rdb.LTrim(ctx, key, 0, int64(r.opts.HistoryCap-1)).Err(); err != nil {
		return fmt.Errorf("ltrim %s: %w", key, err)
	}
	if err := r.rdb.Expire(ctx, key, r.opts.QuoteTTL).Err(); err != nil {
		return fmt.Errorf("expire %s: %w", key, err)
	}
	return nil
}

func (r *RedisCache) GetLatest(ctx context.Context, symbol string) (*domain.Quote, error) {
	b, err := r.rdb.Get(ctx, latestKey(symbol)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var q domain.Quote
	if err := json.Unmarshal(b, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *RedisCache) GetHistory(ctx context.Context, symbol string, limit int) ([]domain.Quote, error) {
	if limit <= 0 || limit > r.opts.HistoryCap {
		limit = r.opts.HistoryCap
	}

	members, err := r.rdb.LRange(ctx, historyKey(symbol), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, domain.ErrNotFound
	}

	quotes := make([]domain.Quote, 0, len(members))
	for _, m := range members {
		var q domain.Quote
		if err := json.Unmarshal([]byte(m), &q); err != nil {
			continue
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

func (r *RedisCache) SetStatus(ctx context.Context, rec domain.StatusRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, statusKey, b, r.opts.StatusTTL).Err()
}

func (r *RedisCache) GetStatus(ctx context.Context) (*domain.StatusRecord, error) {
	b, err := r.rdb.Get(ctx, statusKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var rec domain.StatusRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *RedisCache) Heartbeat(ctx context.Context, t time.Time) error {
	return r.rdb.Set(ctx, heartbeatKey, t.UTC().Format(time.RFC3339), r.opts.HeartbeatTTL).Err()
}

func (r *RedisCache) LastHeartbeat(ctx context.Context) (time.Time, error) {
	s, err := r.rdb.Get(ctx, heartbeatKey).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, domain.ErrNotFound
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, s)
}

func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	s, err := r.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrNotFound
	}
	return s, err
}

func (r *RedisCache) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.rdb.Close()
}
