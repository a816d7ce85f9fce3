package saxo

import (
	"testing"

	"fxstream/internal/infra"
)

func TestReferenceIDRoundTrip(t *testing.T) {
	for symbol := range infra.DefaultInstruments() {
		refID := ReferenceIDFor(symbol)
		if got := SymbolFromReference(refID); got != symbol {
			t.Errorf("round trip failed: %s -> %s -> %s", symbol, refID, got)
		}
	}
}

func TestReferenceIDFor(t *testing.T) {
	if got := ReferenceIDFor("EUR-USD"); got != "EUR_USD_sub" {
		t.Errorf("expected EUR_USD_sub, got %s", got)
	}
}

func TestReferenceIDsUniquePerSession(t *testing.T) {
	seen := make(map[string]string)
	for symbol := range infra.DefaultInstruments() {
		refID := ReferenceIDFor(symbol)
		if prev, dup := seen[refID]; dup {
			t.Errorf("reference id %s generated for both %s and %s", refID, prev, symbol)
		}
		seen[refID] = symbol
	}
}
