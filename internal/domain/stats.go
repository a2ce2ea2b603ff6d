package domain

import "time"

// TokenStats is the published per-token statistics snapshot. A new value is
// built and swapped in wholesale on every accepted tick, so readers never
// observe a partially updated record.
//
// USD figures are display approximations: they assume a fixed total supply
// and multiply through a cached SOL/USD rate. They are suitable for UI
// display, not accounting.
type TokenStats struct {
	Mint         string         `json:"mint"`
	MarketCapSol float64        `json:"market_cap_sol"`
	MarketCapUSD float64        `json:"market_cap_usd"`
	PriceUSD     float64        `json:"price_usd"`
	LastTradeDir TradeDirection `json:"last_trade_dir"`
	LastTradeAmt float64        `json:"last_trade_amt"`
	LastUpdated  time.Time      `json:"last_updated"`

	// Trades and VolumeUSD accumulate over the engine session. VolumeUSD
	// compounds the per-tick price approximation, matching the upstream
	// behavior this service mirrors.
	Trades    int64   `json:"trades"`
	VolumeUSD float64 `json:"volume_usd"`

	// BondingProgress is the percentage of the graduation reserve reached,
	// always in [0, 100].
	BondingProgress float64 `json:"bonding_progress"`

	Change5m  float64 `json:"change_5m"`
	Change1h  float64 `json:"change_1h"`
	Change6h  float64 `json:"change_6h"`
	Change24h float64 `json:"change_24h"`
}
