package market

import (
	"math"
	"time"

	"github.com/Creat0r69/faith/internal/domain"
)

const (
	// GraduationThresholdSol is the bonding-curve reserve at which a token
	// graduates; progress is reported as a percentage of this.
	GraduationThresholdSol = 85.0

	// AssumedTokenSupply is the fixed total supply used to derive a unit
	// price from market cap. This is a display approximation, not on-chain
	// truth.
	AssumedTokenSupply = 1_000_000_000.0
)

// Percentage-change lookback windows.
var lookbacks = struct {
	m5, h1, h6, h24 time.Duration
}{
	m5:  5 * time.Minute,
	h1:  time.Hour,
	h6:  6 * time.Hour,
	h24: 24 * time.Hour,
}

// ChangeSet holds the derived percentage changes for the standard lookbacks.
type ChangeSet struct {
	M5, H1, H6, H24 float64
}

// Changes computes percentage changes of currentMcap against the history
// baselines at each lookback horizon. A change defaults to 0 when no sample
// exists at or before the horizon, or when the baseline market cap is 0:
// insufficient history is not an error.
func Changes(h *History, mint string, now time.Time, currentMcap float64) ChangeSet {
	change := func(lookback time.Duration) float64 {
		base, ok := h.AtOrBefore(mint, now.Add(-lookback))
		if !ok || base.MarketCapSol == 0 {
			return 0
		}
		return (currentMcap - base.MarketCapSol) / base.MarketCapSol * 100
	}
	return ChangeSet{
		M5:  change(lookbacks.m5),
		H1:  change(lookbacks.h1),
		H6:  change(lookbacks.h6),
		H24: change(lookbacks.h24),
	}
}

// BondingProgress converts a bonding-curve SOL reserve into a graduation
// percentage, capped at 100.
func BondingProgress(vSol float64) float64 {
	return math.Min(vSol/GraduationThresholdSol*100, 100)
}

// BuildStats derives the next published snapshot for a token from its
// previous snapshot, the accepted tick, the SOL/USD rate, and the computed
// changes. It is pure: the caller swaps the result in atomically.
func BuildStats(prev domain.TokenStats, tick domain.TradeTick, solRate float64, ch ChangeSet) domain.TokenStats {
	if solRate <= 0 {
		solRate = FallbackSolPrice
	}

	mcapUSD := tick.MarketCapSol * solRate
	priceUSD := mcapUSD / AssumedTokenSupply

	// A tick without a positive reserve keeps the previously published
	// progress, so partial ticks never regress the indicator.
	progress := BondingProgress(tick.VSolInCurve)
	if progress <= 0 {
		progress = prev.BondingProgress
	}

	return domain.TokenStats{
		Mint:         tick.Mint,
		MarketCapSol: tick.MarketCapSol,
		MarketCapUSD: mcapUSD,
		PriceUSD:     priceUSD,
		LastTradeDir: tick.Direction,
		LastTradeAmt: tick.TokenAmount,
		LastUpdated:  tick.ReceivedAt,
		Trades:       prev.Trades + 1,
		// Volume accumulates the per-tick price approximation.
		VolumeUSD:       prev.VolumeUSD + tick.TokenAmount*priceUSD,
		BondingProgress: progress,
		Change5m:        ch.M5,
		Change1h:        ch.H1,
		Change6h:        ch.H6,
		Change24h:       ch.H24,
	}
}
