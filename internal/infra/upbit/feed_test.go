package upbit

import (
	"context"
	"testing"

	"arb_go/internal/domain"

	"github.com/shopspring/decimal"
)

func TestFeed_OnMessagePublishesSpotEvent(t *testing.T) {
	events := make(chan domain.MarketEvent, 1)
	f := NewFeed("ws://example", "USDT-BTC", events)

	msg := `{"type":"orderbook","code":"USDT-BTC","orderbook_units":[{"ask_price":101.2,"bid_price":100.8,"ask_size":1,"bid_size":2}]}`
	f.OnMessage(context.Background(), []byte(msg))

	select {
	case ev := <-events:
		if ev.Role != domain.RoleSpot {
			t.Errorf("role = %v, want spot", ev.Role)
		}
		if !ev.Bid.Equal(decimal.RequireFromString("100.8")) {
			t.Errorf("bid = %s, want 100.8", ev.Bid)
		}
		if !ev.Ask.Equal(decimal.RequireFromString("101.2")) {
			t.Errorf("ask = %s, want 101.2", ev.Ask)
		}
	default:
		t.Fatal("no event published")
	}
}

func TestFeed_OnMessageIgnoresNonOrderbook(t *testing.T) {
	events := make(chan domain.MarketEvent, 1)
	f := NewFeed("ws://example", "USDT-BTC", events)

	f.OnMessage(context.Background(), []byte(`{"type":"ticker","code":"USDT-BTC"}`))
	f.OnMessage(context.Background(), []byte(`not json`))
	f.OnMessage(context.Background(), []byte(`{"type":"orderbook","orderbook_units":[]}`))

	select {
	case ev := <-events:
		t.Fatalf("unexpected event %v", ev)
	default:
	}
}

func TestFeed_OnMessageDropsWhenChannelFull(t *testing.T) {
	events := make(chan domain.MarketEvent, 1)
	f := NewFeed("ws://example", "USDT-BTC", events)

	msg := `{"type":"orderbook","orderbook_units":[{"ask_price":101,"bid_price":100,"ask_size":1,"bid_size":1}]}`
	f.OnMessage(context.Background(), []byte(msg))
	// Channel is now full; a second message must not block.
	f.OnMessage(context.Background(), []byte(msg))

	if len(events) != 1 {
		t.Errorf("events buffered = %d, want 1", len(events))
	}
}
