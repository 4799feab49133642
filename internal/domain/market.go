package domain

import (
	"github.com/shopspring/decimal"
)

// VenueRole identifies which leg of the arbitrage a feed or event belongs to.
type VenueRole string

const (
	RoleSpot  VenueRole = "SPOT"
	RoleHedge VenueRole = "HEDGE"
)

// MarketEvent is a normalized top-of-book update from one venue.
// Each event is authoritative only for the fields of its role.
type MarketEvent struct {
	Role VenueRole
	Bid  decimal.Decimal
	Ask  decimal.Decimal
}

// pricePlaces is the quantization used for all derived prices and quantities.
const pricePlaces = 8

// Snapshot is the strategy's view of both books. Fields are never cleared,
// only overwritten by Apply. Derived values are meaningful only once Ready.
type Snapshot struct {
	SpotBid  decimal.Decimal
	SpotAsk  decimal.Decimal
	HedgeBid decimal.Decimal
	HedgeAsk decimal.Decimal

	spotSeen  bool
	hedgeSeen bool
}

// Apply merges a market event into the snapshot.
func (s *Snapshot) Apply(ev MarketEvent) {
	switch ev.Role {
	case RoleSpot:
		s.SpotBid = ev.Bid
		s.SpotAsk = ev.Ask
		s.spotSeen = true
	case RoleHedge:
		s.HedgeBid = ev.Bid
		s.HedgeAsk = ev.Ask
		s.hedgeSeen = true
	}
}

// Ready reports whether every field has been populated at least once.
func (s *Snapshot) Ready() bool {
	return s.spotSeen && s.hedgeSeen
}

// Implied converts the hedge mid price into spot quotation. The hedge market
// trades the inverse pair, so implied = 1 / mid, rounded to 8 decimal places.
func (s *Snapshot) Implied() decimal.Decimal {
	mid := s.HedgeBid.Add(s.HedgeAsk).Div(decimal.NewFromInt(2))
	return decimal.NewFromInt(1).DivRound(mid, pricePlaces)
}

// BuySpread is the fractional edge of buying spot at the ask versus the
// implied price.
func (s *Snapshot) BuySpread() decimal.Decimal {
	return s.Implied().Sub(s.SpotAsk).Div(s.SpotAsk)
}

// SellSpread is the fractional edge of selling spot at the bid versus the
// implied price.
func (s *Snapshot) SellSpread() decimal.Decimal {
	return s.SpotBid.Sub(s.Implied()).Div(s.SpotBid)
}

// Quote is a venue's current best bid/ask, as returned by REST ticker queries.
type Quote struct {
	Bid decimal.Decimal
	Ask decimal.Decimal
}
