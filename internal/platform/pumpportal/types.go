// Package pumpportal implements the client side of the pump-portal
// real-time data feed: the wire types, the websocket transport, and the
// normalization of raw feed payloads into domain events.
package pumpportal

// DefaultEndpoint is the public pump-portal data websocket.
const DefaultEndpoint = "wss://pumpportal.fun/api/data"

// Subscription methods understood by the feed.
const (
	MethodSubscribeTokenTrade = "subscribeTokenTrade"
	MethodSubscribeNewToken   = "subscribeNewToken"
)

// SubscribeCommand is the JSON command sent to the feed to open or widen a
// subscription. The feed treats subscriptions as additive: re-sending the
// command with a larger key set extends the subscription, and there is no
// observed need to unsubscribe removed keys within a session.
type SubscribeCommand struct {
	Method string   `json:"method"`
	Keys   []string `json:"keys,omitempty"`
}

// feedMessage mirrors the superset of fields the feed emits for trade and
// token-creation events. The feed is duck-typed JSON; only Mint and
// MarketCapSol are required for a message to be usable, which is why
// MarketCapSol is a pointer (absence must be distinguishable from zero).
type feedMessage struct {
	Mint               string   `json:"mint"`
	TxType             string   `json:"txType"`
	TraderPublicKey    string   `json:"traderPublicKey"`
	TokenAmount        float64  `json:"tokenAmount"`
	VSolInBondingCurve float64  `json:"vSolInBondingCurve"`
	MarketCapSol       *float64 `json:"marketCapSol"`
	Signature          string   `json:"signature"`

	// Creation-only fields.
	Name       string  `json:"name"`
	Symbol     string  `json:"symbol"`
	URI        string  `json:"uri"`
	InitialBuy float64 `json:"initialBuy"`
}
