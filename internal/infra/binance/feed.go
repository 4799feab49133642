package binance

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"arb_go/internal/domain"
	"arb_go/internal/infra"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

// Feed streams best bid/ask (bookTicker) updates for one contract and
// publishes normalized hedge events.
type Feed struct {
	base   *infra.BaseWSWorker
	url    string
	events chan<- domain.MarketEvent
}

// NewFeed creates the hedge market feed worker. The stream name is baked into
// the URL, e.g. wss://fstream.binance.com/ws/btcusdt@bookTicker.
func NewFeed(wsURL, stream string, events chan<- domain.MarketEvent) *Feed {
	f := &Feed{
		url:    strings.TrimSuffix(wsURL, "/") + "/" + stream,
		events: events,
	}
	f.base = infra.NewBaseWSWorker(f)
	return f
}

func (f *Feed) ID() string     { return "BINANCE_FEED" }
func (f *Feed) GetURL() string { return f.url }

// Connect starts the connection loop.
func (f *Feed) Connect(ctx context.Context) {
	f.base.Start(ctx)
}

// Disconnect terminates the feed.
func (f *Feed) Disconnect() {
	f.base.Stop()
}

// OnConnect is a no-op: subscription is part of the stream URL.
func (f *Feed) OnConnect(ctx context.Context, conn *websocket.Conn) error {
	return nil
}

// OnMessage extracts best bid/ask and publishes a hedge market event.
func (f *Feed) OnMessage(ctx context.Context, msg []byte) {
	var tick wsBookTicker
	if err := json.Unmarshal(msg, &tick); err != nil {
		return
	}

	bid, err := decimal.NewFromString(tick.BidPrice.String())
	if err != nil {
		return
	}
	ask, err := decimal.NewFromString(tick.AskPrice.String())
	if err != nil {
		return
	}

	select {
	case f.events <- domain.MarketEvent{Role: domain.RoleHedge, Bid: bid, Ask: ask}:
	default:
		slog.Warn("Hedge feed channel full, dropping update")
	}
}

// OnPing responds to the server with a pong control frame.
func (f *Feed) OnPing(ctx context.Context, conn *websocket.Conn) error {
	return f.base.Write(websocket.PongMessage, nil)
}
