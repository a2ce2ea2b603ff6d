// Package market implements the real-time aggregation engine: it consumes
// normalized trade ticks for a tracked token set, maintains a bounded
// rolling history per token, and publishes derived statistics snapshots.
package market

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Creat0r69/faith/internal/domain"
	"github.com/Creat0r69/faith/internal/feed"
)

// Config holds engine construction parameters. Zero values use production
// defaults; tests override the delays and the dialer.
type Config struct {
	FeedURL      string
	RateInterval time.Duration
	Retention    time.Duration

	// TrackNewTokens subscribes to token-creation events in addition to
	// trades for the tracked set.
	TrackNewTokens bool

	// OnNewToken, when set, receives each token-creation event (after the
	// creation has been aggregated as the token's first tick).
	OnNewToken func(domain.NewTokenEvent)

	// Dialer and backoff overrides for the underlying feed; test hooks.
	Dialer    feed.Dialer
	BaseDelay time.Duration
	MaxDelay  time.Duration

	// Now overrides the engine clock.
	Now func() time.Time
}

// Engine owns one feed connection, the rolling history, the rate updater,
// and the published statistics map. It is scoped to one consumer session:
// statistics accumulate from Start and are discarded with the instance.
type Engine struct {
	cfg     Config
	rates   *RateUpdater
	history *History
	sink    domain.StatsCache
	logger  *slog.Logger

	feed *feed.TradeFeed

	mu    sync.RWMutex
	stats map[string]domain.TokenStats

	ctx     context.Context
	cancel  context.CancelFunc
	stopped atomic.Bool
}

// NewEngine creates an Engine. sink may be nil, in which case snapshots are
// only held in memory.
func NewEngine(cfg Config, rates *RateUpdater, sink domain.StatsCache, logger *slog.Logger) *Engine {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Engine{
		cfg:     cfg,
		rates:   rates,
		history: NewHistory(cfg.Retention),
		sink:    sink,
		logger:  logger.With(slog.String("component", "market_engine")),
		stats:   make(map[string]domain.TokenStats),
	}
}

// Start begins aggregation for the given token set: it launches the rate
// updater and opens the feed connection. Starting with an empty set leaves
// the feed idle until SetTokens supplies one. Cancelling ctx stops the
// engine.
func (e *Engine) Start(ctx context.Context, mints []string) {
	e.ctx, e.cancel = context.WithCancel(ctx)

	go func() {
		if err := e.rates.Run(e.ctx); err != nil && e.ctx.Err() == nil {
			e.logger.Warn("rate updater exited", slog.String("error", err.Error()))
		}
	}()

	e.feed = feed.New(feed.Options{
		URL:        e.cfg.FeedURL,
		BaseDelay:  e.cfg.BaseDelay,
		MaxDelay:   e.cfg.MaxDelay,
		Dialer:     e.cfg.Dialer,
		NewTokens:  e.cfg.TrackNewTokens,
		OnTick:     e.HandleTick,
		OnNewToken: e.handleNewToken,
		Logger:     e.logger,
		Now:        e.cfg.Now,
	})
	e.feed.Start(mints)

	go func() {
		<-e.ctx.Done()
		e.Stop()
	}()
}

// Stop tears the engine down: the feed connection is closed, pending
// reconnects are cancelled, and the rate updater exits. Stop is terminal
// and idempotent; ticks arriving afterwards are ignored.
func (e *Engine) Stop() {
	if e.stopped.Swap(true) {
		return
	}
	if e.feed != nil {
		e.feed.Stop()
	}
	if e.cancel != nil {
		e.cancel()
	}
	e.logger.Info("engine stopped")
}

// SetTokens replaces the tracked token set. An empty set stops the engine's
// feed for the remainder of the session.
func (e *Engine) SetTokens(mints []string) {
	if e.stopped.Load() || e.feed == nil {
		return
	}
	e.feed.SetTokens(mints)
}

// Connected reports whether the feed connection is live.
func (e *Engine) Connected() bool {
	return e.feed != nil && e.feed.Connected()
}

// Rate returns the last known SOL/USD conversion rate.
func (e *Engine) Rate() float64 {
	return e.rates.Rate()
}

// HandleTick ingests one accepted trade tick: the sample is appended to the
// rolling history, changes are derived against it, and the token's snapshot
// is replaced wholesale. Readers of Snapshot or Stats therefore always see
// a record that is internally consistent with a single tick.
func (e *Engine) HandleTick(tick domain.TradeTick) {
	if e.stopped.Load() {
		return
	}

	e.history.Append(tick.Mint, tick.ReceivedAt, tick.MarketCapSol)
	changes := Changes(e.history, tick.Mint, tick.ReceivedAt, tick.MarketCapSol)

	e.mu.Lock()
	prev := e.stats[tick.Mint]
	next := BuildStats(prev, tick, e.rates.Rate(), changes)
	e.stats[tick.Mint] = next
	e.mu.Unlock()

	if e.sink != nil {
		ctx := e.ctx
		if ctx == nil {
			ctx = context.Background()
		}
		if err := e.sink.SetStats(ctx, next); err != nil {
			e.logger.Warn("stats mirror failed",
				slog.String("mint", tick.Mint),
				slog.String("error", err.Error()),
			)
		}
	}
}

// handleNewToken aggregates the creation as the token's first tick has
// already happened in HandleTick; here it only forwards to the consumer
// callback.
func (e *Engine) handleNewToken(ev domain.NewTokenEvent) {
	if e.stopped.Load() {
		return
	}
	if e.cfg.OnNewToken != nil {
		e.cfg.OnNewToken(ev)
	}
}

// Stats returns the published snapshot for one token.
func (e *Engine) Stats(mint string) (domain.TokenStats, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.stats[mint]
	return s, ok
}

// Snapshot returns a copy of the full statistics map. Entries are created
// lazily on a token's first tick and never evicted within the session.
func (e *Engine) Snapshot() map[string]domain.TokenStats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make(map[string]domain.TokenStats, len(e.stats))
	for mint, s := range e.stats {
		out[mint] = s
	}
	return out
}
