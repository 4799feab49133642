package infra

import (
	"os"
	"path/filepath"
	"testing"
)

const validYAML = `
app:
  name: arb-go
  version: 0.1.0
trading:
  mode: LIVE
strategy:
  band_pct: 0.1
  order_size_fiat: 100000
oms:
  hedge_leverage: 5
fx:
  url: "https://example.com/fx"
venues:
  upbit:
    rest_url: "https://api.upbit.com"
    ws_url: "wss://api.upbit.com/websocket/v1"
    market: "USDT-BTC"
  binance:
    rest_url: "https://fapi.binance.com"
    ws_url: "wss://fstream.binance.com/ws"
    symbol: "BTCUSDT"
    stream: "btcusdt@bookTicker"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig_ValidWithDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Strategy.TickIntervalMS != 100 {
		t.Errorf("tick_interval_ms default = %d, want 100", cfg.Strategy.TickIntervalMS)
	}
	if cfg.OMS.RateLimitRPS != 5 {
		t.Errorf("rate_limit_rps default = %d, want 5", cfg.OMS.RateLimitRPS)
	}
	if cfg.Poller.IntervalMS != 1000 {
		t.Errorf("poller interval default = %d, want 1000", cfg.Poller.IntervalMS)
	}
	if cfg.Monitor.IntervalSec != 30 || cfg.Monitor.MaxFailures != 2 {
		t.Errorf("monitor defaults = %d/%d, want 30/2", cfg.Monitor.IntervalSec, cfg.Monitor.MaxFailures)
	}
	if cfg.FX.PollIntervalSec != 10 {
		t.Errorf("fx poll default = %d, want 10", cfg.FX.PollIntervalSec)
	}
}

func TestLoadConfig_EnvOverridesSecrets(t *testing.T) {
	t.Setenv("UPBIT_KEY", "env-access")
	t.Setenv("UPBIT_SECRET", "env-secret")

	cfg, err := LoadConfig(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Venues.Upbit.AccessKey != "env-access" {
		t.Errorf("access key = %q, want env override", cfg.Venues.Upbit.AccessKey)
	}
	if cfg.Venues.Upbit.SecretKey != "env-secret" {
		t.Errorf("secret key = %q, want env override", cfg.Venues.Upbit.SecretKey)
	}
}

func TestLoadConfig_RejectsNonLiveMode(t *testing.T) {
	cfg := `
trading:
  mode: BACKTEST
strategy:
  band_pct: 0.1
  order_size_fiat: 100000
oms:
  hedge_leverage: 5
fx:
  url: "https://example.com/fx"
venues:
  upbit:
    ws_url: "wss://x"
    market: "USDT-BTC"
  binance:
    ws_url: "wss://y"
    symbol: "BTCUSDT"
`
	if _, err := LoadConfig(writeConfig(t, cfg)); err == nil {
		t.Error("expected error for non-LIVE mode")
	}
}

func TestLoadConfig_RejectsMissingBand(t *testing.T) {
	cfg := `
trading:
  mode: LIVE
strategy:
  order_size_fiat: 100000
oms:
  hedge_leverage: 5
fx:
  url: "https://example.com/fx"
venues:
  upbit:
    ws_url: "wss://x"
    market: "USDT-BTC"
  binance:
    ws_url: "wss://y"
    symbol: "BTCUSDT"
`
	if _, err := LoadConfig(writeConfig(t, cfg)); err == nil {
		t.Error("expected error for missing band_pct")
	}
}

func TestLoadConfig_RejectsBadWSURL(t *testing.T) {
	cfg := `
trading:
  mode: LIVE
strategy:
  band_pct: 0.1
  order_size_fiat: 100000
oms:
  hedge_leverage: 5
fx:
  url: "https://example.com/fx"
venues:
  upbit:
    ws_url: "http://not-a-ws"
    market: "USDT-BTC"
  binance:
    ws_url: "wss://y"
    symbol: "BTCUSDT"
`
	if _, err := LoadConfig(writeConfig(t, cfg)); err == nil {
		t.Error("expected error for non-ws URL")
	}
}
