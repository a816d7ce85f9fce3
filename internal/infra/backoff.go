package infra

import "time"

// Backoff produces the delay sequence for reconnect attempts: starts at the
// floor, doubles after every call, never exceeds the cap. No jitter: the
// feed allows a single streaming connection per context, so synchronized
// reconnects are not a concern here.
type Backoff struct {
	floor   time.Duration
	cap     time.Duration
	current time.Duration
}

// NewBackoff creates a Backoff with the given floor and cap. Non-positive
// arguments fall back to 1s / 16s.
func NewBackoff(floor, cap time.Duration) *Backoff {
	if floor <= 0 {
		floor = time.Second
	}
	if cap < floor {
		cap = 16 * time.Second
	}
	return &Backoff{floor: floor, cap: cap, current: floor}
}

// Next returns the delay to sleep before the next attempt and advances the
// sequence.
func (b *Backoff) Next() time.Duration {
	d := b.current
	b.current *= 2
	if b.current > b.cap {
		b.current = b.cap
	}
	return d
}

// Reset returns the sequence to its floor. Called after a successful
// connect so a later failure starts over at the shortest delay.
func (b *Backoff) Reset() {
	b.current = b.floor
}
