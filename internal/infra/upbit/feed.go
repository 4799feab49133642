package upbit

import (
	"context"
	"encoding/json"
	"log/slog"

	"arb_go/internal/domain"
	"arb_go/internal/infra"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

// Feed streams depth-1 orderbook snapshots for one market and publishes
// normalized spot events. Connection handling lives in BaseWSWorker.
type Feed struct {
	base   *infra.BaseWSWorker
	wsURL  string
	market string
	events chan<- domain.MarketEvent
}

// NewFeed creates the spot market feed worker.
func NewFeed(wsURL, market string, events chan<- domain.MarketEvent) *Feed {
	f := &Feed{
		wsURL:  wsURL,
		market: market,
		events: events,
	}
	f.base = infra.NewBaseWSWorker(f)
	return f
}

func (f *Feed) ID() string     { return "UPBIT_FEED" }
func (f *Feed) GetURL() string { return f.wsURL }

// Connect starts the connection loop.
func (f *Feed) Connect(ctx context.Context) {
	f.base.Start(ctx)
}

// Disconnect terminates the feed.
func (f *Feed) Disconnect() {
	f.base.Stop()
}

// OnConnect subscribes to the depth-1 orderbook stream.
func (f *Feed) OnConnect(ctx context.Context, conn *websocket.Conn) error {
	sub := []map[string]any{
		{"ticket": uuid.NewString()},
		{"type": "orderbook", "codes": []string{f.market}, "depth": 1},
	}
	b, _ := json.Marshal(sub)
	return f.base.Write(websocket.TextMessage, b)
}

// OnMessage extracts the best bid/ask and publishes a spot market event.
// Non-orderbook and malformed messages are discarded.
func (f *Feed) OnMessage(ctx context.Context, msg []byte) {
	var book wsOrderbook
	if err := json.Unmarshal(msg, &book); err != nil || book.Type != "orderbook" {
		return
	}
	if len(book.Units) == 0 {
		return
	}

	ev, err := spotEvent(book.Units[0])
	if err != nil {
		return
	}

	select {
	case f.events <- ev:
	default:
		slog.Warn("Spot feed channel full, dropping update")
	}
}

// OnPing is a no-op; Upbit keeps the connection alive with pong frames.
func (f *Feed) OnPing(ctx context.Context, conn *websocket.Conn) error {
	return nil
}

func spotEvent(best orderbookUnit) (domain.MarketEvent, error) {
	bid, err := decimal.NewFromString(best.BidPrice.String())
	if err != nil {
		return domain.MarketEvent{}, err
	}
	ask, err := decimal.NewFromString(best.AskPrice.String())
	if err != nil {
		return domain.MarketEvent{}, err
	}
	return domain.MarketEvent{Role: domain.RoleSpot, Bid: bid, Ask: ask}, nil
}
