package market

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	// FallbackSolPrice is used until the first successful rate fetch.
	FallbackSolPrice = 170.0

	// DefaultRateInterval is the reference-rate refresh cadence. Fetch
	// failures are not retried faster than this.
	DefaultRateInterval = time.Minute
)

// RateSource fetches the SOL/USD conversion rate.
type RateSource interface {
	SolPrice(ctx context.Context) (float64, error)
}

// RateUpdater keeps a process-local SOL/USD rate fresh. It fetches once at
// start and then on a fixed interval; failures retain the last known rate
// (or the fallback before the first success) and are never fatal.
type RateUpdater struct {
	src      RateSource
	interval time.Duration
	logger   *slog.Logger

	mu   sync.RWMutex
	rate float64
}

// NewRateUpdater creates a RateUpdater. A zero interval falls back to
// DefaultRateInterval. The rate starts at FallbackSolPrice.
func NewRateUpdater(src RateSource, interval time.Duration, logger *slog.Logger) *RateUpdater {
	if interval <= 0 {
		interval = DefaultRateInterval
	}
	return &RateUpdater{
		src:      src,
		interval: interval,
		logger:   logger.With(slog.String("component", "rate_updater")),
		rate:     FallbackSolPrice,
	}
}

// Rate returns the last known SOL/USD rate.
func (u *RateUpdater) Rate() float64 {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.rate
}

// Refresh performs one fetch. On failure the prior rate is retained.
func (u *RateUpdater) Refresh(ctx context.Context) {
	rate, err := u.src.SolPrice(ctx)
	if err != nil {
		u.logger.WarnContext(ctx, "rate fetch failed, keeping previous rate",
			slog.Float64("rate", u.Rate()),
			slog.String("error", err.Error()),
		)
		return
	}
	u.mu.Lock()
	u.rate = rate
	u.mu.Unlock()
}

// Run fetches immediately and then every interval until ctx is cancelled.
func (u *RateUpdater) Run(ctx context.Context) error {
	u.Refresh(ctx)

	ticker := time.NewTicker(u.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			u.Refresh(ctx)
		}
	}
}
