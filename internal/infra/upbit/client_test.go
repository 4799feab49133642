package upbit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"arb_go/internal/domain"

	"github.com/shopspring/decimal"
)

func newTestClient(serverURL string) *Client {
	return NewClient(serverURL, "USDT-BTC", NewSigner("access", "secret"))
}

func TestClient_PlaceLimitOrder(t *testing.T) {
	var gotBody map[string]string
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/orders" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"uuid":"ord-1","side":"bid","state":"wait"}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	id, err := c.PlaceLimitOrder(context.Background(), domain.SideBid,
		decimal.RequireFromString("0.76923077"), decimal.RequireFromString("101.1"))
	if err != nil {
		t.Fatalf("PlaceLimitOrder failed: %v", err)
	}
	if id != "ord-1" {
		t.Errorf("order id = %q, want ord-1", id)
	}
	if !strings.HasPrefix(gotAuth, "Bearer ") {
		t.Errorf("Authorization = %q, want Bearer token", gotAuth)
	}
	if gotBody["market"] != "USDT-BTC" || gotBody["side"] != "bid" || gotBody["ord_type"] != "limit" {
		t.Errorf("body = %v", gotBody)
	}
	if gotBody["volume"] != "0.76923077" || gotBody["price"] != "101.1" {
		t.Errorf("volume/price = %q/%q", gotBody["volume"], gotBody["price"])
	}
}

func TestClient_CancelOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/v1/order" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.URL.Query().Get("uuid") != "ord-1" {
			t.Errorf("uuid = %q, want ord-1", r.URL.Query().Get("uuid"))
		}
		w.Write([]byte(`{"uuid":"ord-1","side":"bid","state":"wait"}`))
	}))
	defer server.Close()

	if err := newTestClient(server.URL).CancelOrder(context.Background(), "ord-1"); err != nil {
		t.Fatalf("CancelOrder failed: %v", err)
	}
}

func TestClient_OrderStatusMapping(t *testing.T) {
	tests := []struct {
		state string
		want  domain.OrderStatus
	}{
		{"wait", domain.StatusOpen},
		{"watch", domain.StatusOpen},
		{"done", domain.StatusFilled},
		{"cancel", domain.StatusCanceled},
	}

	for _, tt := range tests {
		state := tt.state
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"uuid":"ord-1","side":"ask","state":"` + state + `","executed_volume":"0.5"}`))
		}))

		st, err := newTestClient(server.URL).OrderStatus(context.Background(), "ord-1")
		server.Close()
		if err != nil {
			t.Fatalf("OrderStatus(%s) failed: %v", state, err)
		}
		if st.Status != tt.want {
			t.Errorf("state %q mapped to %q, want %q", state, st.Status, tt.want)
		}
		if st.Side != domain.SideAsk {
			t.Errorf("side = %q, want ask", st.Side)
		}
		if !st.FilledQty.Equal(decimal.RequireFromString("0.5")) {
			t.Errorf("filled = %s, want 0.5", st.FilledQty)
		}
	}
}

func TestClient_Ticker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/orderbook" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`[{"market":"USDT-BTC","orderbook_units":[{"ask_price":101.2,"bid_price":100.8,"ask_size":1,"bid_size":2}]}]`))
	}))
	defer server.Close()

	q, err := newTestClient(server.URL).Ticker(context.Background())
	if err != nil {
		t.Fatalf("Ticker failed: %v", err)
	}
	if !q.Bid.Equal(decimal.RequireFromString("100.8")) || !q.Ask.Equal(decimal.RequireFromString("101.2")) {
		t.Errorf("quote = %s/%s, want 100.8/101.2", q.Bid, q.Ask)
	}
}

func TestClient_TickerEmptyBook(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	if _, err := newTestClient(server.URL).Ticker(context.Background()); err == nil {
		t.Error("expected error for empty orderbook")
	}
}

func TestClient_APIErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"name":"invalid_access_key","message":"bad key"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).PlaceLimitOrder(context.Background(), domain.SideBid,
		decimal.NewFromInt(1), decimal.NewFromInt(100))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "invalid_access_key") {
		t.Errorf("error = %v, want venue error name included", err)
	}
}
