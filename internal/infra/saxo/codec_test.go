package saxo

import (
	"encoding/binary"
	"fmt"
	"testing"
)

// buildFrame assembles a binary frame around the given payload, mirroring
// the feed's offset-based layout.
func buildFrame(refID string, payload []byte) []byte {
	frame := make([]byte, 11, 16+len(refID)+len(payload))
	frame[10] = byte(len(refID))
	frame = append(frame, []byte(refID)...)
	frame = append(frame, 0) // reserved byte between ref id and payload size
	var size [4]byte
	binary.LittleEndian.PutUint32(size[:], uint32(len(payload)))
	frame = append(frame, size[:]...)
	frame = append(frame, payload...)
	return frame
}

func quotePayload(bid, ask string) []byte {
	return fmt.Appendf(nil, `{"LastUpdated":"2026-08-30T12:00:00Z","Quote":{"Bid":%s,"Ask":%s}}`, bid, ask)
}

func TestDecodeFrame_Valid(t *testing.T) {
	frame := buildFrame("EUR_USD_sub", quotePayload("1.0842", "1.0844"))

	q := DecodeFrame(frame)
	if q == nil {
		t.Fatal("expected a quote")
	}
	if q.Symbol != "EUR-USD" {
		t.Errorf("expected symbol EUR-USD, got %q", q.Symbol)
	}
	if q.Bid != 1.0842 || q.Ask != 1.0844 {
		t.Errorf("unexpected prices: %v/%v", q.Bid, q.Ask)
	}
	if q.Timestamp != "2026-08-30T12:00:00Z" {
		t.Errorf("unexpected timestamp: %q", q.Timestamp)
	}
}

func TestDecodeFrame_BoundsSafety(t *testing.T) {
	valid := buildFrame("EUR_USD_sub", quotePayload("1.1", "1.2"))

	overrunRef := make([]byte, len(valid))
	copy(overrunRef, valid)
	overrunRef[10] = 0xFF // declared ref-id length runs past the buffer

	overrunPayload := buildFrame("EUR_USD_sub", quotePayload("1.1", "1.2"))
	// Declared payload length larger than what follows.
	binary.LittleEndian.PutUint32(overrunPayload[12+len("EUR_USD_sub"):], 1<<30)

	cases := []struct {
		name string
		raw  []byte
	}{
		{"empty", nil},
		{"one byte", []byte{0x01}},
		{"fifteen bytes", make([]byte, 15)},
		{"ref id overruns buffer", overrunRef},
		{"payload overruns buffer", overrunPayload},
		{"truncated mid frame", valid[:len(valid)-10]},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if q := DecodeFrame(tc.raw); q != nil {
				t.Errorf("expected nil, got %+v", q)
			}
		})
	}

	// Every prefix of a valid frame must decode to nil without panicking.
	for i := 0; i < len(valid); i++ {
		if q := DecodeFrame(valid[:i]); q != nil {
			t.Fatalf("prefix of length %d decoded to %+v", i, q)
		}
	}
}

func TestDecodeFrame_MalformedPayloads(t *testing.T) {
	cases := []struct {
		name    string
		payload []byte
	}{
		{"invalid json", []byte(`{"Quote":`)},
		{"no quote object", []byte(`{"LastUpdated":"2026-08-30T12:00:00Z"}`)},
		{"quote missing bid", []byte(`{"Quote":{"Ask":1.2}}`)},
		{"quote missing ask", []byte(`{"Quote":{"Bid":1.1}}`)},
		{"non-numeric bid", []byte(`{"Quote":{"Bid":"abc","Ask":1.2}}`)},
		{"non-numeric ask", []byte(`{"Quote":{"Bid":1.1,"Ask":"abc"}}`)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			frame := buildFrame("EUR_USD_sub", tc.payload)
			if q := DecodeFrame(frame); q != nil {
				t.Errorf("expected nil, got %+v", q)
			}
		})
	}
}

func TestDecodeFrame_EmptyTimestamp(t *testing.T) {
	frame := buildFrame("GBP_USD_sub", []byte(`{"Quote":{"Bid":1.27,"Ask":1.28}}`))

	q := DecodeFrame(frame)
	if q == nil {
		t.Fatal("expected a quote")
	}
	if q.Timestamp != "" {
		t.Errorf("expected empty timestamp, got %q", q.Timestamp)
	}
}

func TestDecodeJSONMessage(t *testing.T) {
	q := DecodeJSONMessage([]byte(`{"Symbol":"EUR-USD","Bid":1.0842,"Ask":1.0844,"TimeStamp":"2026-08-30T12:00:00Z"}`))
	if q == nil {
		t.Fatal("expected a quote")
	}
	if q.Symbol != "EUR-USD" || q.Bid != 1.0842 || q.Ask != 1.0844 {
		t.Errorf("unexpected quote: %+v", q)
	}

	cases := []struct {
		name string
		raw  string
	}{
		{"invalid json", `{`},
		{"no symbol", `{"Bid":1.1,"Ask":1.2}`},
		{"non-numeric bid", `{"Symbol":"EUR-USD","Bid":"x","Ask":1.2}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if q := DecodeJSONMessage([]byte(tc.raw)); q != nil {
				t.Errorf("expected nil, got %+v", q)
			}
		})
	}

	// Missing prices default to zero per the legacy contract.
	q = DecodeJSONMessage([]byte(`{"Symbol":"EUR-USD","TimeStamp":""}`))
	if q == nil || q.Bid != 0 || q.Ask != 0 {
		t.Errorf("expected zero prices, got %+v", q)
	}
}
