package domain

import (
	"github.com/shopspring/decimal"
)

// Side is the book side of a spot limit order. The spot venue's own wire
// naming matches: a bid buys, an ask sells.
type Side string

const (
	SideBid Side = "bid"
	SideAsk Side = "ask"
)

// HedgeDirection returns the derivative-venue direction that offsets a fill
// on this side: a spot buy is hedged with a short, and vice versa.
func (s Side) HedgeDirection() Direction {
	if s == SideBid {
		return DirSell
	}
	return DirBuy
}

// Direction is a trade direction on the hedge venue.
type Direction string

const (
	DirBuy  Direction = "BUY"
	DirSell Direction = "SELL"
)

// Opposite returns the closing direction for a position opened this way.
func (d Direction) Opposite() Direction {
	if d == DirBuy {
		return DirSell
	}
	return DirBuy
}

// Action tells the OMS what to do with a side this tick.
type Action string

const (
	ActionUpdate Action = "update"
	ActionCancel Action = "cancel"
)

// OrderIntent is one strategy decision for one side. Intents are consumed
// exactly once, in emission order.
type OrderIntent struct {
	Side   Side
	Action Action
	Price  decimal.Decimal
}

// OrderStatus is the lifecycle state reported by a venue for an order.
type OrderStatus string

const (
	StatusOpen     OrderStatus = "open"
	StatusFilled   OrderStatus = "filled"
	StatusCanceled OrderStatus = "canceled"
)

// Terminal reports whether no further executions can happen.
func (s OrderStatus) Terminal() bool {
	return s == StatusFilled || s == StatusCanceled
}

// OrderState is a point-in-time view of a spot order, from a status query.
type OrderState struct {
	ID        string
	Side      Side
	Status    OrderStatus
	FilledQty decimal.Decimal
}

// FillEvent is emitted by the fill poller when a watched order executes.
type FillEvent struct {
	Side     Side
	Quantity decimal.Decimal
}
