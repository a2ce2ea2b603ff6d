package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/Creat0r69/faith/internal/domain"
)

type stubEngine struct {
	snapshot  map[string]domain.TokenStats
	setTokens [][]string
	connected bool
	rate      float64
}

func (e *stubEngine) Snapshot() map[string]domain.TokenStats {
	out := make(map[string]domain.TokenStats, len(e.snapshot))
	for k, v := range e.snapshot {
		out[k] = v
	}
	return out
}

func (e *stubEngine) Stats(mint string) (domain.TokenStats, bool) {
	st, ok := e.snapshot[mint]
	return st, ok
}

func (e *stubEngine) SetTokens(mints []string) {
	e.setTokens = append(e.setTokens, mints)
}

func (e *stubEngine) Connected() bool { return e.connected }
func (e *stubEngine) Rate() float64   { return e.rate }

type stubStore struct {
	tokens   []domain.TrackedToken
	listErr  error
	upserted []domain.TrackedToken
}

func (s *stubStore) Upsert(ctx context.Context, t domain.TrackedToken) error {
	s.upserted = append(s.upserted, t)
	return nil
}

func (s *stubStore) ListActive(ctx context.Context) ([]domain.TrackedToken, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.tokens, nil
}

func (s *stubStore) Get(ctx context.Context, mint string) (domain.TrackedToken, error) {
	for _, t := range s.tokens {
		if t.Mint == mint {
			return t, nil
		}
	}
	return domain.TrackedToken{}, domain.ErrNotFound
}

func (s *stubStore) Deactivate(ctx context.Context, mint string) error { return nil }

type stubCache struct {
	stats map[string]domain.TokenStats
	err   error
}

func (c *stubCache) SetStats(ctx context.Context, st domain.TokenStats) error { return nil }

func (c *stubCache) GetStats(ctx context.Context, mint string) (domain.TokenStats, error) {
	if c.err != nil {
		return domain.TokenStats{}, c.err
	}
	st, ok := c.stats[mint]
	if !ok {
		return domain.TokenStats{}, domain.ErrNotFound
	}
	return st, nil
}

func (c *stubCache) GetAllStats(ctx context.Context, mints []string) (map[string]domain.TokenStats, error) {
	return c.stats, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestTrackedMintsMergesStaticAndRegistry(t *testing.T) {
	store := &stubStore{tokens: []domain.TrackedToken{
		{Mint: "mintB", Active: true},
		{Mint: "mintA", Active: true}, // duplicate of the static entry
		{Mint: "mintC", Active: true},
	}}
	svc := NewMarketService(&stubEngine{}, store, nil, []string{"mintA", "mintA"}, time.Minute, testLogger())

	mints, err := svc.TrackedMints(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"mintA", "mintB", "mintC"}
	if len(mints) != len(want) {
		t.Fatalf("mints = %v, want %v", mints, want)
	}
	for i := range want {
		if mints[i] != want[i] {
			t.Fatalf("mints = %v, want %v", mints, want)
		}
	}
}

func TestSyncTrackedPushesToEngine(t *testing.T) {
	eng := &stubEngine{}
	store := &stubStore{tokens: []domain.TrackedToken{{Mint: "mintA", Active: true}}}
	svc := NewMarketService(eng, store, nil, nil, time.Minute, testLogger())

	if err := svc.SyncTracked(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(eng.setTokens) != 1 || len(eng.setTokens[0]) != 1 || eng.setTokens[0][0] != "mintA" {
		t.Errorf("SetTokens calls = %v", eng.setTokens)
	}

	store.listErr = errors.New("registry down")
	if err := svc.SyncTracked(context.Background()); err == nil {
		t.Error("expected error when the registry fails")
	}
	if len(eng.setTokens) != 1 {
		t.Error("a failed sync must not touch the engine's token set")
	}
}

func TestHandleNewTokenRegisters(t *testing.T) {
	store := &stubStore{}
	svc := NewMarketService(&stubEngine{}, store, nil, nil, time.Minute, testLogger())

	svc.HandleNewToken(context.Background(), domain.NewTokenEvent{
		Mint: "mintN", Name: "New", Symbol: "NEW", URI: "https://example.com/n.json",
	})

	if len(store.upserted) != 1 {
		t.Fatalf("upserts = %d, want 1", len(store.upserted))
	}
	got := store.upserted[0]
	if got.Mint != "mintN" || got.Symbol != "NEW" || !got.Active {
		t.Errorf("upserted = %+v", got)
	}

	// Without a registry the event is dropped without panicking.
	NewMarketService(&stubEngine{}, nil, nil, nil, time.Minute, testLogger()).
		HandleNewToken(context.Background(), domain.NewTokenEvent{Mint: "mintN"})
}

func TestTokensJoinsRegistryWithSnapshot(t *testing.T) {
	eng := &stubEngine{snapshot: map[string]domain.TokenStats{
		"mintA": {Mint: "mintA", MarketCapSol: 30},
	}}
	store := &stubStore{tokens: []domain.TrackedToken{
		{Mint: "mintA", Symbol: "AAA", Active: true},
		{Mint: "mintB", Symbol: "BBB", Active: true},
	}}
	svc := NewMarketService(eng, store, nil, nil, time.Minute, testLogger())

	views, err := svc.Tokens(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(views) != 2 {
		t.Fatalf("views = %d, want 2", len(views))
	}
	if views[0].Stats == nil || views[0].Stats.MarketCapSol != 30 {
		t.Errorf("mintA stats = %+v", views[0].Stats)
	}
	if views[1].Stats != nil {
		t.Error("mintB has stats before its first tick")
	}
}

func TestTokenStatsFallsBackToMirror(t *testing.T) {
	eng := &stubEngine{snapshot: map[string]domain.TokenStats{
		"live": {Mint: "live", MarketCapSol: 10},
	}}
	cache := &stubCache{stats: map[string]domain.TokenStats{
		"live":     {Mint: "live", MarketCapSol: 99},
		"mirrored": {Mint: "mirrored", MarketCapSol: 5},
	}}
	svc := NewMarketService(eng, nil, cache, []string{"live"}, time.Minute, testLogger())
	ctx := context.Background()

	st, err := svc.TokenStats(ctx, "live")
	if err != nil || st.MarketCapSol != 10 {
		t.Errorf("live stats = %+v, %v (engine must win over the mirror)", st, err)
	}

	st, err = svc.TokenStats(ctx, "mirrored")
	if err != nil || st.MarketCapSol != 5 {
		t.Errorf("mirrored stats = %+v, %v", st, err)
	}

	if _, err := svc.TokenStats(ctx, "unknown"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown mint err = %v, want ErrNotFound", err)
	}

	cache.err = errors.New("redis down")
	if _, err := svc.TokenStats(ctx, "mirrored"); err == nil || errors.Is(err, domain.ErrNotFound) {
		t.Errorf("mirror failure err = %v", err)
	}
}
