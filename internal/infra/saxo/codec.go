package saxo

import (
	"encoding/binary"
	"encoding/json"

	"fxstream/internal/domain"
)

// Binary frame layout (offset-based, no delimiter, no checksum):
//
//	byte 10:            reference-id length L
//	bytes [11, 11+L):   ASCII reference id
//	bytes [12+L, 16+L): little-endian uint32 payload length P
//	bytes [16+L, 16+L+P): UTF-8 JSON payload
//
// Every bound is checked before slicing. A wrong declared length must make
// the frame come back nil, never a truncated slice.
const minFrameLen = 16

// DecodeFrame decodes one binary frame into a Quote. It returns nil for
// anything malformed: short buffers, lengths overrunning the buffer,
// invalid JSON, a payload without a usable Quote object, or non-numeric
// prices. A nil return means skip the frame and keep reading.
func DecodeFrame(raw []byte) *domain.Quote {
	if len(raw) < minFrameLen {
		return nil
	}

	refSize := int(raw[10])
	if len(raw) < 11+refSize+5 {
		return nil
	}

	refID := string(raw[11 : 11+refSize])
	payloadSize := int(binary.LittleEndian.Uint32(raw[12+refSize : 16+refSize]))

	if payloadSize < 0 || len(raw) < 16+refSize+payloadSize {
		return nil
	}
	payload := raw[16+refSize : 16+refSize+payloadSize]

	var data framePayload
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil
	}
	if data.Quote == nil || data.Quote.Bid == nil || data.Quote.Ask == nil {
		return nil
	}

	bid, err := data.Quote.Bid.Float64()
	if err != nil {
		return nil
	}
	ask, err := data.Quote.Ask.Float64()
	if err != nil {
		return nil
	}

	return &domain.Quote{
		Symbol:    SymbolFromReference(refID),
		Bid:       bid,
		Ask:       ask,
		Timestamp: data.LastUpdated,
	}
}

// DecodeJSONMessage decodes one legacy plain-JSON tick. Messages without a
// Symbol field (heartbeats, acks) and non-numeric prices yield nil. Missing
// Bid or Ask default to zero, matching the legacy feed contract.
func DecodeJSONMessage(raw []byte) *domain.Quote {
	var data legacyTick
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil
	}
	if data.Symbol == "" {
		return nil
	}

	var bid, ask float64
	var err error
	if data.Bid != nil {
		if bid, err = data.Bid.Float64(); err != nil {
			return nil
		}
	}
	if data.Ask != nil {
		if ask, err = data.Ask.Float64(); err != nil {
			return nil
		}
	}

	return &domain.Quote{
		Symbol:    data.Symbol,
		Bid:       bid,
		Ask:       ask,
		Timestamp: data.TimeStamp,
	}
}
