package saxo

import "strings"

// referenceSuffix tags subscription reference IDs so inbound frames can be
// mapped back to their symbol without a lookup table.
const referenceSuffix = "_sub"

// ReferenceIDFor derives the subscription reference ID for a canonical
// symbol: "EUR-USD" -> "EUR_USD_sub". The transform is pure and reversible;
// SymbolFromReference is its exact inverse.
func ReferenceIDFor(symbol string) string {
	return strings.ReplaceAll(symbol, "-", "_") + referenceSuffix
}

// SymbolFromReference reverses ReferenceIDFor: "EUR_USD_sub" -> "EUR-USD".
func SymbolFromReference(refID string) string {
	s := strings.TrimSuffix(refID, referenceSuffix)
	return strings.ReplaceAll(s, "_", "-")
}
