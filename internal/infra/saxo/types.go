package saxo

import "encoding/json"

// subscriptionArguments is the instrument selector inside a subscription
// request.
type subscriptionArguments struct {
	AssetType string `json:"AssetType"`
	Uic       int    `json:"Uic"`
}

// subscriptionRequest is the body of the create-subscription call.
type subscriptionRequest struct {
	Arguments   subscriptionArguments `json:"Arguments"`
	ContextID   string                `json:"ContextId"`
	ReferenceID string                `json:"ReferenceId"`
	RefreshRate int                   `json:"RefreshRate"`
}

// legacySubscribe is the one in-band subscribe message the legacy framing
// sends right after connecting.
type legacySubscribe struct {
	ContextID   string   `json:"ContextId"`
	Instruments []string `json:"Instruments"`
}

// legacyTick is a plain-JSON tick message from the legacy framing.
// Pointer fields distinguish absent keys from zero values.
type legacyTick struct {
	Symbol    string       `json:"Symbol"`
	Bid       *json.Number `json:"Bid"`
	Ask       *json.Number `json:"Ask"`
	TimeStamp string       `json:"TimeStamp"`
}

// framePayload is the JSON payload carried inside a binary frame.
type framePayload struct {
	LastUpdated string      `json:"LastUpdated"`
	Quote       *frameQuote `json:"Quote"`
}

type frameQuote struct {
	Bid *json.Number `json:"Bid"`
	Ask *json.Number `json:"Ask"`
}
