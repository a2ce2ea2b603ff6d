package domain

import "time"

// TradeDirection is the side of the last trade as reported by the feed.
type TradeDirection string

const (
	TradeBuy  TradeDirection = "buy"
	TradeSell TradeDirection = "sell"
)

// TradeTick is one normalized trade event for a token. Ticks are ephemeral:
// they are consumed by the history store and the statistics deriver as soon
// as they arrive and are not retained.
type TradeTick struct {
	Mint         string
	Direction    TradeDirection
	TokenAmount  float64
	// MarketCapSol is the post-trade market capitalization in SOL, the
	// feed's native unit.
	MarketCapSol float64
	// VSolInCurve is the virtual SOL reserve of the bonding curve, used to
	// derive graduation progress. Zero when the feed omits it.
	VSolInCurve float64
	// Signature identifies the originating transaction. Kept for logging
	// only; the feed is not deduplicated on it.
	Signature string
	// ReceivedAt is assigned from our own clock at normalization time. The
	// feed does not reliably carry a timestamp.
	ReceivedAt time.Time
}

// NewTokenEvent is a token-creation announcement from the feed.
type NewTokenEvent struct {
	Mint         string
	Name         string
	Symbol       string
	URI          string
	Creator      string
	InitialBuy   float64
	MarketCapSol float64
	Signature    string
	ReceivedAt   time.Time
}
