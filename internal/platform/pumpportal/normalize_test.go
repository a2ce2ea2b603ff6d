package pumpportal

import (
	"testing"
	"time"

	"github.com/Creat0r69/faith/internal/domain"
)

func TestParseRejects(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name string
		raw  string
	}{
		{"malformed json", `{"mint":`},
		{"subscription ack", `{"message":"Successfully subscribed to keys."}`},
		{"missing mint", `{"txType":"buy","marketCapSol":30}`},
		{"missing market cap", `{"mint":"mintA","txType":"buy"}`},
		{"null market cap", `{"mint":"mintA","marketCapSol":null}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, ok := Parse([]byte(tc.raw), now); ok {
				t.Errorf("accepted %s", tc.raw)
			}
		})
	}
}

func TestParseTrade(t *testing.T) {
	now := time.Unix(1_700_000_000, 0).UTC()
	raw := `{"mint":"mintA","txType":"sell","tokenAmount":125.5,"marketCapSol":31.2,"vSolInBondingCurve":17.5,"signature":"sig1"}`

	ev, ok := Parse([]byte(raw), now)
	if !ok {
		t.Fatal("rejected valid trade")
	}
	if ev.Created != nil {
		t.Error("trade produced a creation event")
	}
	tk := ev.Trade
	if tk.Mint != "mintA" || tk.Direction != domain.TradeSell {
		t.Errorf("tick = %+v", tk)
	}
	if tk.TokenAmount != 125.5 || tk.MarketCapSol != 31.2 || tk.VSolInCurve != 17.5 {
		t.Errorf("tick amounts = %+v", tk)
	}
	if tk.Signature != "sig1" {
		t.Errorf("signature = %q", tk.Signature)
	}
	if !tk.ReceivedAt.Equal(now) {
		t.Errorf("ReceivedAt = %v, want the receipt clock, not the message", tk.ReceivedAt)
	}
}

// Zero-valued market caps are valid; absence and zero must not be conflated.
func TestParseZeroMarketCap(t *testing.T) {
	ev, ok := Parse([]byte(`{"mint":"mintA","marketCapSol":0}`), time.Now())
	if !ok {
		t.Fatal("rejected explicit zero market cap")
	}
	if ev.Trade.MarketCapSol != 0 {
		t.Errorf("MarketCapSol = %v", ev.Trade.MarketCapSol)
	}
}

func TestParseDefaultsUnknownTxTypeToBuy(t *testing.T) {
	for _, txType := range []string{"", "buy", "somethingNew"} {
		raw := `{"mint":"mintA","marketCapSol":10,"txType":"` + txType + `"}`
		ev, ok := Parse([]byte(raw), time.Now())
		if !ok {
			t.Fatalf("rejected txType %q", txType)
		}
		if ev.Trade.Direction != domain.TradeBuy {
			t.Errorf("txType %q -> %v, want buy", txType, ev.Trade.Direction)
		}
	}
}

func TestParseCreation(t *testing.T) {
	now := time.Unix(1_700_000_000, 0).UTC()
	raw := `{"mint":"mintB","txType":"create","name":"New Token","symbol":"NEW","uri":"https://example.com/meta.json","traderPublicKey":"creator1","initialBuy":1000000,"marketCapSol":28.5,"vSolInBondingCurve":31,"signature":"sig2"}`

	ev, ok := Parse([]byte(raw), now)
	if !ok {
		t.Fatal("rejected creation")
	}
	if ev.Trade == nil {
		t.Fatal("creation did not double as a first tick")
	}
	if ev.Trade.Mint != "mintB" || ev.Trade.MarketCapSol != 28.5 {
		t.Errorf("first tick = %+v", ev.Trade)
	}

	c := ev.Created
	if c == nil {
		t.Fatal("no creation event")
	}
	if c.Name != "New Token" || c.Symbol != "NEW" || c.URI != "https://example.com/meta.json" {
		t.Errorf("metadata = %+v", c)
	}
	if c.Creator != "creator1" || c.InitialBuy != 1000000 || c.Signature != "sig2" {
		t.Errorf("creation = %+v", c)
	}
	if !c.ReceivedAt.Equal(now) {
		t.Errorf("ReceivedAt = %v", c.ReceivedAt)
	}
}
