package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	framesReceived atomic.Uint64
	framesDropped  atomic.Uint64
	ticksDecoded   atomic.Uint64
	cacheWrites    atomic.Uint64
	cacheErrors    atomic.Uint64
	reconnects     atomic.Uint64
	restarts       atomic.Uint64

	// Gauges
	connected  atomic.Int32 // 1 = streaming, 0 = not
	lastTickNs atomic.Int64
}

// NewMetrics creates an isolated metrics instance. Each process constructs
// one at start and passes it down; tests construct their own.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordFrame records one inbound frame and whether it decoded to a tick.
func (m *Metrics) RecordFrame(decoded bool) {
	m.framesReceived.Add(1)
	if decoded {
		m.ticksDecoded.Add(1)
		m.lastTickNs.Store(time.Now().UnixNano())
	} else {
		m.framesDropped.Add(1)
	}
}

// RecordCacheWrite records a write-through to the cache.
func (m *Metrics) RecordCacheWrite(err error) {
	if err != nil {
		m.cacheErrors.Add(1)
		return
	}
	m.cacheWrites.Add(1)
}

// RecordReconnect records one connection-level retry.
func (m *Metrics) RecordReconnect() {
	m.reconnects.Add(1)
}

// RecordRestart records one process-level supervisor restart.
func (m *Metrics) RecordRestart() {
	m.restarts.Add(1)
}

// SetConnected sets the streaming connection gauge.
func (m *Metrics) SetConnected(up bool) {
	if up {
		m.connected.Store(1)
	} else {
		m.connected.Store(0)
	}
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	FramesReceived uint64    `json:"frames_received"`
	FramesDropped  uint64    `json:"frames_dropped"`
	TicksDecoded   uint64    `json:"ticks_decoded"`
	CacheWrites    uint64    `json:"cache_writes"`
	CacheErrors    uint64    `json:"cache_errors"`
	Reconnects     uint64    `json:"reconnects"`
	Restarts       uint64    `json:"restarts"`
	Connected      bool      `json:"connected"`
	LastTickAt     time.Time `json:"last_tick_at"`
	Timestamp      time.Time `json:"timestamp"`
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var lastTick time.Time
	if ns := m.lastTickNs.Load(); ns > 0 {
		lastTick = time.Unix(0, ns)
	}

	return MetricsSnapshot{
		FramesReceived: m.framesReceived.Load(),
		FramesDropped:  m.framesDropped.Load(),
		TicksDecoded:   m.ticksDecoded.Load(),
		CacheWrites:    m.cacheWrites.Load(),
		CacheErrors:    m.cacheErrors.Load(),
		Reconnects:     m.reconnects.Load(),
		Restarts:       m.restarts.Load(),
		Connected:      m.connected.Load() == 1,
		LastTickAt:     lastTick,
		Timestamp:      time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.framesReceived.Store(0)
	m.framesDropped.Store(0)
	m.ticksDecoded.Store(0)
	m.cacheWrites.Store(0)
	m.cacheErrors.Store(0)
	m.reconnects.Store(0)
	m.restarts.Store(0)
	m.connected.Store(0)
	m.lastTickNs.Store(0)
}
