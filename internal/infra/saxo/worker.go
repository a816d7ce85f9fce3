package saxo

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"fxstream/internal/domain"
	"fxstream/internal/infra"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// FramingBinary is the offset-framed binary protocol with HTTP-registered
// subscriptions; FramingJSON is the legacy plain-JSON protocol with one
// in-band subscribe message. The codec is picked per frame, everything
// downstream of Quote construction is shared.
const (
	FramingBinary = "binary"
	FramingJSON   = "json"
)

// Options carries the per-session knobs of the streaming worker.
type Options struct {
	Symbols      []string
	Framing      string
	BackoffFloor time.Duration
	BackoffCap   time.Duration
}

// Worker runs one streaming session at a time: subscribe, stream, write
// through to the cache, reconnect with capped exponential backoff on
// transport failures. Exactly one Worker should run per process; a second
// would double-write cache entries and waste upstream subscription slots.
type Worker struct {
	client  *Client
	cache   domain.Cache
	tokens  TokenProvider
	metrics *infra.Metrics
	logger  *slog.Logger
	opts    Options
	archive chan<- domain.Quote
}

// NewWorker creates a streaming worker. The cache handle is borrowed from
// the supervisor; the worker uses it but never closes it.
func NewWorker(client *Client, cache domain.Cache, tokens TokenProvider, metrics *infra.Metrics, logger *slog.Logger, opts Options) *Worker {
	if opts.Framing == "" {
		opts.Framing = FramingBinary
	}
	return &Worker{
		client:  client,
		cache:   cache,
		tokens:  tokens,
		metrics: metrics,
		logger:  logger.With("module", "saxo_worker"),
		opts:    opts,
	}
}

// SetArchive attaches a channel that receives every accepted quote for
// background archival. Sends never block the consumer; a full channel
// drops the quote for the archive only, the cache write is unaffected.
func (w *Worker) SetArchive(ch chan<- domain.Quote) {
	w.archive = ch
}

// newContextID returns a fresh context identifier for one streaming
// session. Subscriptions do not survive reconnects, so every session gets
// its own scope.
func newContextID() string {
	return "mds-" + uuid.NewString()[:8]
}

// Run is the reconnection loop. It returns nil when the stream ends
// normally or the context is cancelled, and an error only for conditions
// the supervisor should count as a process-level restart (e.g. no token).
func (w *Worker) Run(ctx context.Context) error {
	token, err := w.tokens.Token(ctx)
	if err != nil {
		return err
	}

	backoff := infra.NewBackoff(w.opts.BackoffFloor, w.opts.BackoffCap)

	for {
		if ctx.Err() != nil {
			return nil
		}

		contextID := newContextID()
		conn, err := w.openStream(ctx, contextID, token)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if !domain.IsRetriable(err) {
				return err
			}
			if !w.sleepBackoff(ctx, backoff, err) {
				return nil
			}
			continue
		}

		w.logger.Info("stream connected",
			slog.String("context_id", contextID), slog.Int("symbols", len(w.opts.Symbols)))
		backoff.Reset()
		w.metrics.SetConnected(true)

		err = w.consume(ctx, conn)
		w.metrics.SetConnected(false)

		if err == nil {
			// Normal upstream close or cancellation; not a failure.
			w.logger.Info("stream ended")
			return nil
		}
		if !w.sleepBackoff(ctx, backoff, err) {
			return nil
		}
	}
}

// sleepBackoff waits out the next backoff delay. It returns false when the
// context was cancelled during the wait.
func (w *Worker) sleepBackoff(ctx context.Context, backoff *infra.Backoff, cause error) bool {
	delay := backoff.Next()
	w.metrics.RecordReconnect()
	w.logger.Warn("connection error, backing off",
		slog.Any("error", cause), slog.Duration("delay", delay))

	select {
	case <-ctx.Done():
		return false
	case <-time.After(delay):
		return true
	}
}

// openStream negotiates subscriptions and connects the duplex stream. For
// the legacy framing the subscribe message travels in-band instead of via
// the HTTP call.
func (w *Worker) openStream(ctx context.Context, contextID, token string) (*websocket.Conn, error) {
	if w.opts.Framing == FramingJSON {
		conn, err := w.client.DialStream(ctx, contextID, token)
		if err != nil {
			return nil, err
		}
		msg, _ := json.Marshal(legacySubscribe{ContextID: contextID, Instruments: w.opts.Symbols})
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			conn.Close()
			return nil, domain.NewNetworkError("subscribe", err)
		}
		return conn, nil
	}

	if _, err := w.client.OpenSession(ctx, w.opts.Symbols, contextID, token); err != nil {
		if errors.Is(err, domain.ErrNoSubscriptions) {
			// Distinct log, same backoff path as a dropped connection.
			w.logger.Error("no successful subscriptions for session",
				slog.String("context_id", contextID))
			return nil, domain.NewNetworkError("subscribe", err)
		}
		return nil, err
	}
	return w.client.DialStream(ctx, contextID, token)
}

// consume reads frames until the stream ends. Malformed frames are skipped
// silently; they are high frequency and never abort the stream. A nil
// return means normal close (or cancellation), an error means transport
// failure.
func (w *Worker) consume(ctx context.Context, conn *websocket.Conn) error {
	defer conn.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		// No read deadline: a quiet market is valid, silence is not failure.
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || isNormalClose(err) {
				return nil
			}
			return domain.NewNetworkError("read", err)
		}

		var q *domain.Quote
		if w.opts.Framing == FramingJSON {
			q = DecodeJSONMessage(raw)
		} else {
			q = DecodeFrame(raw)
		}
		w.metrics.RecordFrame(q != nil)
		if q == nil {
			continue
		}

		w.writeThrough(ctx, *q)
	}
}

// writeThrough upserts the latest slot and pushes the history entry from
// the same quote, preserving per-symbol arrival order. Cache errors are
// surfaced in logs and metrics but do not stop the stream; short TTLs make
// a lost write stale, never corrupt.
func (w *Worker) writeThrough(ctx context.Context, q domain.Quote) {
	err := w.cache.SetLatest(ctx, q)
	if err == nil {
		err = w.cache.PushHistory(ctx, q)
	}
	w.metrics.RecordCacheWrite(err)
	if err != nil {
		w.logger.Warn("cache write failed",
			slog.String("symbol", q.Symbol), slog.Any("error", err))
	}

	if w.archive != nil {
		select {
		case w.archive <- q:
		default:
		}
	}
}

func isNormalClose(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}
