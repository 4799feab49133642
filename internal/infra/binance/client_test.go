package binance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"arb_go/internal/domain"

	"github.com/shopspring/decimal"
)

func newTestClient(serverURL string) *Client {
	return NewClient(serverURL, "BTCUSDT", NewSigner("access", "secret"))
}

func TestClient_PlaceMarketOrder(t *testing.T) {
	var gotQuery map[string][]string
	var gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/fapi/v1/order" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotQuery = r.URL.Query()
		gotKey = r.Header.Get("X-MBX-APIKEY")
		w.Write([]byte(`{"orderId":12345,"symbol":"BTCUSDT","status":"FILLED","side":"SELL","executedQty":"0.769"}`))
	}))
	defer server.Close()

	id, err := newTestClient(server.URL).PlaceMarketOrder(context.Background(),
		domain.DirSell, decimal.RequireFromString("0.769"))
	if err != nil {
		t.Fatalf("PlaceMarketOrder failed: %v", err)
	}
	if id != "12345" {
		t.Errorf("order id = %q, want 12345", id)
	}
	if gotKey != "access" {
		t.Errorf("X-MBX-APIKEY = %q, want access", gotKey)
	}

	get := func(k string) string {
		if v := gotQuery[k]; len(v) > 0 {
			return v[0]
		}
		return ""
	}
	if get("symbol") != "BTCUSDT" || get("side") != "SELL" || get("type") != "MARKET" {
		t.Errorf("query = %v", gotQuery)
	}
	if get("quantity") != "0.769" {
		t.Errorf("quantity = %q, want 0.769", get("quantity"))
	}
	if get("timestamp") == "" || get("signature") == "" {
		t.Error("timestamp and signature must be present")
	}
}

func TestClient_SetLeverage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fapi/v1/leverage" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("leverage") != "5" {
			t.Errorf("leverage = %q, want 5", r.URL.Query().Get("leverage"))
		}
		w.Write([]byte(`{"leverage":5,"symbol":"BTCUSDT"}`))
	}))
	defer server.Close()

	if err := newTestClient(server.URL).SetLeverage(context.Background(), 5); err != nil {
		t.Fatalf("SetLeverage failed: %v", err)
	}
}

func TestClient_Position(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"short", `[{"symbol":"BTCUSDT","positionAmt":"-0.769"}]`, "-0.769"},
		{"long", `[{"symbol":"BTCUSDT","positionAmt":"0.5"}]`, "0.5"},
		{"flat", `[{"symbol":"BTCUSDT","positionAmt":"0"}]`, "0"},
		{"other symbol only", `[{"symbol":"ETHUSDT","positionAmt":"3"}]`, "0"},
		{"empty", `[]`, "0"},
	}

	for _, tt := range tests {
		body := tt.body
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))

		amt, err := newTestClient(server.URL).Position(context.Background())
		server.Close()
		if err != nil {
			t.Fatalf("%s: Position failed: %v", tt.name, err)
		}
		if !amt.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("%s: position = %s, want %s", tt.name, amt, tt.want)
		}
	}
}

func TestClient_ServerTime(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fapi/v1/time" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"serverTime":1700000000000}`))
	}))
	defer server.Close()

	ts, err := newTestClient(server.URL).ServerTime(context.Background())
	if err != nil {
		t.Fatalf("ServerTime failed: %v", err)
	}
	if !ts.Equal(time.UnixMilli(1700000000000)) {
		t.Errorf("ServerTime = %v", ts)
	}
}

func TestClient_Ticker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"symbol":"BTCUSDT","bidPrice":"131200.10","askPrice":"131200.20"}`))
	}))
	defer server.Close()

	q, err := newTestClient(server.URL).Ticker(context.Background())
	if err != nil {
		t.Fatalf("Ticker failed: %v", err)
	}
	if !q.Bid.Equal(decimal.RequireFromString("131200.10")) || !q.Ask.Equal(decimal.RequireFromString("131200.20")) {
		t.Errorf("quote = %s/%s", q.Bid, q.Ask)
	}
}

func TestClient_APIErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":-2019,"msg":"Margin is insufficient."}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).PlaceMarketOrder(context.Background(),
		domain.DirBuy, decimal.NewFromInt(1))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "-2019") {
		t.Errorf("error = %v, want venue code included", err)
	}
}
