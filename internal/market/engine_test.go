package market

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Creat0r69/faith/internal/domain"
	"github.com/Creat0r69/faith/internal/feed"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	src := &stubRateSource{rate: 170}
	rates := NewRateUpdater(src, time.Minute, testLogger())
	rates.Refresh(context.Background())
	return NewEngine(Config{}, rates, nil, testLogger())
}

func TestEngineHandleTickPublishesConsistentSnapshot(t *testing.T) {
	e := newTestEngine(t)
	t0 := time.Unix(1_700_000_000, 0).UTC()

	e.HandleTick(domain.TradeTick{
		Mint: "mintX", Direction: domain.TradeBuy, TokenAmount: 10,
		MarketCapSol: 100, VSolInCurve: 42.5, ReceivedAt: t0,
	})
	e.HandleTick(domain.TradeTick{
		Mint: "mintX", Direction: domain.TradeSell, TokenAmount: 20,
		MarketCapSol: 150, ReceivedAt: t0.Add(2 * time.Minute),
	})

	st, ok := e.Stats("mintX")
	if !ok {
		t.Fatal("no stats for mintX")
	}

	// Every field must reflect the second tick exactly; a mix of tick
	// states would mean the snapshot was assembled piecemeal.
	if st.MarketCapSol != 150 {
		t.Errorf("MarketCapSol = %v, want 150", st.MarketCapSol)
	}
	if !almostEqual(st.MarketCapUSD, 150*170) {
		t.Errorf("MarketCapUSD = %v, want %v", st.MarketCapUSD, 150*170)
	}
	if st.LastTradeDir != domain.TradeSell || st.LastTradeAmt != 20 {
		t.Errorf("last trade = %v %v, want sell 20", st.LastTradeDir, st.LastTradeAmt)
	}
	if st.Trades != 2 {
		t.Errorf("Trades = %d, want 2", st.Trades)
	}
	if !st.LastUpdated.Equal(t0.Add(2 * time.Minute)) {
		t.Errorf("LastUpdated = %v", st.LastUpdated)
	}
	// The partial second tick keeps the first tick's progress.
	if !almostEqual(st.BondingProgress, 50) {
		t.Errorf("BondingProgress = %v, want 50", st.BondingProgress)
	}
}

func TestEngineSnapshotIsACopy(t *testing.T) {
	e := newTestEngine(t)
	e.HandleTick(domain.TradeTick{Mint: "mintX", MarketCapSol: 100, ReceivedAt: time.Now()})

	snap := e.Snapshot()
	snap["mintX"] = domain.TokenStats{}
	delete(snap, "mintX")

	if _, ok := e.Stats("mintX"); !ok {
		t.Error("mutating the snapshot affected the engine")
	}
}

func TestEngineEntriesNeverEvicted(t *testing.T) {
	e := newTestEngine(t)
	t0 := time.Unix(1_700_000_000, 0).UTC()

	e.HandleTick(domain.TradeTick{Mint: "mintA", MarketCapSol: 1, ReceivedAt: t0})
	// Two days later the history has been pruned, but the published entry
	// survives for the session.
	e.HandleTick(domain.TradeTick{Mint: "mintB", MarketCapSol: 2, ReceivedAt: t0.Add(48 * time.Hour)})

	if len(e.Snapshot()) != 2 {
		t.Errorf("snapshot size = %d, want 2", len(e.Snapshot()))
	}
}

func TestEngineStopIsTerminal(t *testing.T) {
	src := &stubRateSource{rate: 170}
	rates := NewRateUpdater(src, time.Minute, testLogger())

	dialer := feed.DialerFunc(func(ctx context.Context, url string) (feed.Conn, error) {
		return nil, errors.New("refused")
	})
	e := NewEngine(Config{
		Dialer:    dialer,
		BaseDelay: time.Millisecond,
		MaxDelay:  5 * time.Millisecond,
	}, rates, nil, testLogger())

	e.Start(context.Background(), []string{"mintX"})
	e.Stop()

	e.HandleTick(domain.TradeTick{Mint: "mintX", MarketCapSol: 100, ReceivedAt: time.Now()})
	if len(e.Snapshot()) != 0 {
		t.Error("tick processed after Stop")
	}
	if e.Connected() {
		t.Error("Connected after Stop")
	}

	// Stop is idempotent.
	e.Stop()
}
