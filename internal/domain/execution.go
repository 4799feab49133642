package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SpotClient is the capability set the core needs from the spot venue.
// Implementations own their HTTP and auth machinery.
type SpotClient interface {
	// PlaceLimitOrder submits a resting limit order and returns its venue ID.
	PlaceLimitOrder(ctx context.Context, side Side, qty, price decimal.Decimal) (string, error)

	// CancelOrder cancels a resting order by venue ID.
	CancelOrder(ctx context.Context, orderID string) error

	// OrderStatus queries the current lifecycle state of an order.
	OrderStatus(ctx context.Context, orderID string) (OrderState, error)

	// Ticker returns the venue's current best bid/ask. Doubles as the
	// health-check ping for venues without a time endpoint.
	Ticker(ctx context.Context) (Quote, error)
}

// HedgeClient is the capability set the core needs from the derivative venue.
type HedgeClient interface {
	// PlaceMarketOrder submits an immediately-executing order and returns its ID.
	PlaceMarketOrder(ctx context.Context, dir Direction, qty decimal.Decimal) (string, error)

	// SetLeverage configures the contract leverage multiplier.
	SetLeverage(ctx context.Context, leverage int) error

	// Position returns the signed open position size (positive long, negative
	// short), used to flatten exposure.
	Position(ctx context.Context) (decimal.Decimal, error)

	// ServerTime is the lightweight health-check ping.
	ServerTime(ctx context.Context) (time.Time, error)
}
