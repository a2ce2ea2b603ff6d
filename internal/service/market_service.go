// Package service coordinates the aggregation engine with the tracked-token
// registry and the stats mirror, and serves the read paths for the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Creat0r69/faith/internal/domain"
)

// Engine is the surface of the aggregation engine the service depends on.
type Engine interface {
	Snapshot() map[string]domain.TokenStats
	Stats(mint string) (domain.TokenStats, bool)
	SetTokens(mints []string)
	Connected() bool
	Rate() float64
}

// TokenView is a registry row joined with its live statistics, when any.
type TokenView struct {
	Token domain.TrackedToken `json:"token"`
	Stats *domain.TokenStats  `json:"stats,omitempty"`
}

// MarketService exposes tracked tokens and their live statistics, keeps the
// engine's subscription set in sync with the registry, and registers tokens
// discovered through creation events.
type MarketService struct {
	engine Engine
	store  domain.TokenStore // nil when no registry is configured
	cache  domain.StatsCache // nil when no mirror is configured
	logger *slog.Logger

	// static tokens tracked regardless of the registry contents.
	static []string

	refreshInterval time.Duration
}

// NewMarketService creates a MarketService. store and cache may be nil.
func NewMarketService(
	engine Engine,
	store domain.TokenStore,
	cache domain.StatsCache,
	static []string,
	refreshInterval time.Duration,
	logger *slog.Logger,
) *MarketService {
	return &MarketService{
		engine:          engine,
		store:           store,
		cache:           cache,
		logger:          logger.With(slog.String("component", "market_service")),
		static:          append([]string(nil), static...),
		refreshInterval: refreshInterval,
	}
}

// TrackedMints resolves the current tracked token set: the static set plus
// all active registry rows, deduplicated, insertion-ordered.
func (s *MarketService) TrackedMints(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{}, len(s.static))
	mints := make([]string, 0, len(s.static))
	for _, m := range s.static {
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		mints = append(mints, m)
	}

	if s.store != nil {
		tokens, err := s.store.ListActive(ctx)
		if err != nil {
			return nil, fmt.Errorf("market_service: list active tokens: %w", err)
		}
		for _, t := range tokens {
			if _, dup := seen[t.Mint]; dup {
				continue
			}
			seen[t.Mint] = struct{}{}
			mints = append(mints, t.Mint)
		}
	}

	return mints, nil
}

// SyncTracked pushes the resolved tracked set into the engine.
func (s *MarketService) SyncTracked(ctx context.Context) error {
	mints, err := s.TrackedMints(ctx)
	if err != nil {
		return err
	}
	s.engine.SetTokens(mints)
	s.logger.DebugContext(ctx, "tracked set synced", slog.Int("tokens", len(mints)))
	return nil
}

// Run reloads the tracked set from the registry on a fixed interval so
// tokens added or deactivated out-of-band are picked up. It is a no-op loop
// when no registry is configured.
func (s *MarketService) Run(ctx context.Context) error {
	if s.store == nil {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.SyncTracked(ctx); err != nil {
				s.logger.WarnContext(ctx, "tracked set refresh failed",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// HandleNewToken registers a token discovered through a creation event. The
// engine has already aggregated the creation as the token's first tick;
// this only persists the registry row so the token survives restarts.
func (s *MarketService) HandleNewToken(ctx context.Context, ev domain.NewTokenEvent) {
	if s.store == nil {
		return
	}
	err := s.store.Upsert(ctx, domain.TrackedToken{
		Mint:     ev.Mint,
		Name:     ev.Name,
		Symbol:   ev.Symbol,
		ImageURI: ev.URI,
		Active:   true,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "register created token failed",
			slog.String("mint", ev.Mint),
			slog.String("error", err.Error()),
		)
		return
	}
	s.logger.InfoContext(ctx, "token registered",
		slog.String("mint", ev.Mint),
		slog.String("symbol", ev.Symbol),
	)
}

// Tokens returns every tracked token joined with its live statistics.
// Tokens without a tick yet are returned with nil stats.
func (s *MarketService) Tokens(ctx context.Context) ([]TokenView, error) {
	snapshot := s.engine.Snapshot()

	if s.store == nil {
		out := make([]TokenView, 0, len(s.static))
		for _, mint := range s.static {
			view := TokenView{Token: domain.TrackedToken{Mint: mint, Active: true}}
			if st, ok := snapshot[mint]; ok {
				view.Stats = &st
			}
			out = append(out, view)
		}
		return out, nil
	}

	tokens, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("market_service: list tokens: %w", err)
	}

	out := make([]TokenView, 0, len(tokens))
	for _, t := range tokens {
		view := TokenView{Token: t}
		if st, ok := snapshot[t.Mint]; ok {
			view.Stats = &st
		}
		out = append(out, view)
	}
	return out, nil
}

// TokenStats returns the statistics snapshot for one token. The in-memory
// engine snapshot wins; the redis mirror covers tokens aggregated by a
// previous engine session.
func (s *MarketService) TokenStats(ctx context.Context, mint string) (domain.TokenStats, error) {
	if st, ok := s.engine.Stats(mint); ok {
		return st, nil
	}
	if s.cache != nil {
		st, err := s.cache.GetStats(ctx, mint)
		if err == nil {
			return st, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return domain.TokenStats{}, fmt.Errorf("market_service: stats for %q: %w", mint, err)
		}
	}
	return domain.TokenStats{}, domain.ErrNotFound
}

// Status summarizes the live aggregation state for the health endpoint.
func (s *MarketService) Status() (connected bool, rate float64, tracked int) {
	return s.engine.Connected(), s.engine.Rate(), len(s.engine.Snapshot())
}
