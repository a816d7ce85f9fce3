package infra

import (
	"errors"
	"testing"
)

func TestMetrics_RecordFrame(t *testing.T) {
	m := NewMetrics()

	m.RecordFrame(true)
	m.RecordFrame(true)
	m.RecordFrame(false)

	snap := m.Snapshot()

	if snap.FramesReceived != 3 {
		t.Errorf("Expected 3 frames, got %d", snap.FramesReceived)
	}
	if snap.TicksDecoded != 2 {
		t.Errorf("Expected 2 ticks, got %d", snap.TicksDecoded)
	}
	if snap.FramesDropped != 1 {
		t.Errorf("Expected 1 dropped frame, got %d", snap.FramesDropped)
	}
	if snap.LastTickAt.IsZero() {
		t.Error("Expected last tick time to be set")
	}
}

func TestMetrics_CacheWrites(t *testing.T) {
	m := NewMetrics()

	m.RecordCacheWrite(nil)
	m.RecordCacheWrite(nil)
	m.RecordCacheWrite(errors.New("redis down"))

	snap := m.Snapshot()
	if snap.CacheWrites != 2 {
		t.Errorf("Expected 2 cache writes, got %d", snap.CacheWrites)
	}
	if snap.CacheErrors != 1 {
		t.Errorf("Expected 1 cache error, got %d", snap.CacheErrors)
	}
}

func TestMetrics_Connected(t *testing.T) {
	m := NewMetrics()

	snap := m.Snapshot()
	if snap.Connected {
		t.Error("Expected disconnected initially")
	}

	m.SetConnected(true)
	snap = m.Snapshot()
	if !snap.Connected {
		t.Error("Expected connected")
	}

	m.SetConnected(false)
	snap = m.Snapshot()
	if snap.Connected {
		t.Error("Expected disconnected")
	}
}

func TestMetrics_Reset(t *testing.T) {
	m := NewMetrics()

	m.RecordFrame(true)
	m.RecordReconnect()
	m.RecordRestart()
	m.SetConnected(true)

	m.Reset()
	snap := m.Snapshot()

	if snap.FramesReceived != 0 {
		t.Error("Expected 0 frames after reset")
	}
	if snap.Reconnects != 0 {
		t.Error("Expected 0 reconnects after reset")
	}
	if snap.Connected {
		t.Error("Expected disconnected after reset")
	}
}
