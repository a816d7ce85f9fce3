package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote represents one normalized FX market update.
// It is built once by the stream consumer right after a successful frame
// decode and never mutated afterwards.
type Quote struct {
	Symbol    string  `json:"symbol"`    // Canonical form "BASE-QUOTE" (e.g. "EUR-USD")
	Bid       float64 `json:"bid"`       // Best bid price
	Ask       float64 `json:"ask"`       // Best ask price
	Timestamp string  `json:"timestamp"` // Feed-supplied ISO-8601 time; may be empty
}

// Spread returns ask minus bid. Computed in decimal so that the read side
// never exposes float artifacts like 0.00009999999999998899.
func (q Quote) Spread() decimal.Decimal {
	return decimal.NewFromFloat(q.Ask).Sub(decimal.NewFromFloat(q.Bid))
}

// Mid returns the midpoint between bid and ask.
func (q Quote) Mid() decimal.Decimal {
	two := decimal.NewFromInt(2)
	return decimal.NewFromFloat(q.Bid).Add(decimal.NewFromFloat(q.Ask)).Div(two)
}

// Time parses the feed-supplied timestamp. The zero time and false are
// returned when the feed omitted the timestamp or sent one we cannot parse.
func (q Quote) Time() (time.Time, bool) {
	if q.Timestamp == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, q.Timestamp)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
