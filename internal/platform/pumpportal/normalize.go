package pumpportal

import (
	"encoding/json"
	"time"

	"github.com/Creat0r69/faith/internal/domain"
)

// Event is the result of normalizing one raw feed payload. Trade is set for
// every accepted message; Created is additionally set when the message
// announces a token creation (a creation carries an initial market cap, so
// it doubles as the token's first tick).
type Event struct {
	Trade   *domain.TradeTick
	Created *domain.NewTokenEvent
}

// Parse validates and normalizes a raw feed payload. A message is accepted
// only if it carries a mint and a numeric marketCapSol; everything else is
// rejected with ok=false and no error, since malformed or irrelevant
// messages (subscription acks, server notices) are expected traffic.
//
// The receipt timestamp is always taken from now, never from the message:
// the feed does not reliably provide one.
func Parse(raw []byte, now time.Time) (Event, bool) {
	var msg feedMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return Event{}, false
	}
	if msg.Mint == "" || msg.MarketCapSol == nil {
		return Event{}, false
	}

	tick := &domain.TradeTick{
		Mint:         msg.Mint,
		Direction:    direction(msg.TxType),
		TokenAmount:  msg.TokenAmount,
		MarketCapSol: *msg.MarketCapSol,
		VSolInCurve:  msg.VSolInBondingCurve,
		Signature:    msg.Signature,
		ReceivedAt:   now,
	}

	ev := Event{Trade: tick}
	if msg.TxType == "create" {
		ev.Created = &domain.NewTokenEvent{
			Mint:         msg.Mint,
			Name:         msg.Name,
			Symbol:       msg.Symbol,
			URI:          msg.URI,
			Creator:      msg.TraderPublicKey,
			InitialBuy:   msg.InitialBuy,
			MarketCapSol: *msg.MarketCapSol,
			Signature:    msg.Signature,
			ReceivedAt:   now,
		}
	}
	return ev, true
}

// direction maps the feed's txType onto a trade direction, defaulting to buy
// when the field is absent or unrecognized.
func direction(txType string) domain.TradeDirection {
	if txType == "sell" {
		return domain.TradeSell
	}
	return domain.TradeBuy
}
