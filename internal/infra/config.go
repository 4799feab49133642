package infra

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds every setting the executor reads. Loaded once at startup;
// secrets in the file are overridden by environment variables.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Trading struct {
		Mode string `yaml:"mode"` // LIVE is the only executable mode
	} `yaml:"trading"`

	Strategy struct {
		TickIntervalMS int     `yaml:"tick_interval_ms"`
		BandPct        float64 `yaml:"band_pct"` // threshold in percent
		OrderSizeFiat  int64   `yaml:"order_size_fiat"`
	} `yaml:"strategy"`

	OMS struct {
		RateLimitRPS     int  `yaml:"rate_limit_rps"`
		HedgeLeverage    int  `yaml:"hedge_leverage"`
		RefreshUnchanged bool `yaml:"refresh_unchanged"`
	} `yaml:"oms"`

	Poller struct {
		IntervalMS int `yaml:"interval_ms"`
	} `yaml:"poller"`

	Monitor struct {
		IntervalSec int `yaml:"interval_sec"`
		MaxFailures int `yaml:"max_failures"`
	} `yaml:"monitor"`

	FX struct {
		URL             string `yaml:"url"`
		PollIntervalSec int    `yaml:"poll_interval_sec"`
	} `yaml:"fx"`

	Venues struct {
		Upbit struct {
			RestURL   string `yaml:"rest_url"`
			WSURL     string `yaml:"ws_url"`
			Market    string `yaml:"market"` // e.g. "USDT-BTC"
			AccessKey string `yaml:"access_key"`
			SecretKey string `yaml:"secret_key"`
		} `yaml:"upbit"`
		Binance struct {
			RestURL   string `yaml:"rest_url"`
			WSURL     string `yaml:"ws_url"`
			Symbol    string `yaml:"symbol"` // e.g. "BTCUSDT"
			Stream    string `yaml:"stream"` // e.g. "btcusdt@bookTicker"
			AccessKey string `yaml:"access_key"`
			SecretKey string `yaml:"secret_key"`
		} `yaml:"binance"`
	} `yaml:"venues"`

	Journal struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"journal"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the config file, applies env overrides and
// validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Strategy.TickIntervalMS == 0 {
		cfg.Strategy.TickIntervalMS = 100
	}
	if cfg.OMS.RateLimitRPS == 0 {
		cfg.OMS.RateLimitRPS = 5
	}
	if cfg.Poller.IntervalMS == 0 {
		cfg.Poller.IntervalMS = 1000
	}
	if cfg.Monitor.IntervalSec == 0 {
		cfg.Monitor.IntervalSec = 30
	}
	if cfg.Monitor.MaxFailures == 0 {
		cfg.Monitor.MaxFailures = 2
	}
	if cfg.FX.PollIntervalSec == 0 {
		cfg.FX.PollIntervalSec = 10
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if strings.ToUpper(c.Trading.Mode) != "LIVE" {
		return fmt.Errorf("trading.mode must be LIVE, got %q", c.Trading.Mode)
	}
	if c.Strategy.BandPct <= 0 {
		return fmt.Errorf("strategy.band_pct must be positive")
	}
	if c.Strategy.OrderSizeFiat <= 0 {
		return fmt.Errorf("strategy.order_size_fiat must be positive")
	}
	if c.OMS.HedgeLeverage <= 0 {
		return fmt.Errorf("oms.hedge_leverage must be positive")
	}

	if c.Venues.Upbit.Market == "" {
		return fmt.Errorf("venues.upbit.market is required")
	}
	if !hasWSScheme(c.Venues.Upbit.WSURL) {
		return fmt.Errorf("invalid Upbit WS URL: %s", c.Venues.Upbit.WSURL)
	}
	if c.Venues.Binance.Symbol == "" {
		return fmt.Errorf("venues.binance.symbol is required")
	}
	if !hasWSScheme(c.Venues.Binance.WSURL) {
		return fmt.Errorf("invalid Binance WS URL: %s", c.Venues.Binance.WSURL)
	}
	if c.FX.URL == "" {
		return fmt.Errorf("fx.url is required")
	}
	return nil
}

func hasWSScheme(s string) bool {
	return strings.HasPrefix(s, "ws://") || strings.HasPrefix(s, "wss://")
}

// overrideWithEnv replaces secrets with environment values when present.
// Environment variables always win over the config file.
func overrideWithEnv(cfg *Config) {
	if cfg.Venues.Upbit.SecretKey != "" || cfg.Venues.Binance.SecretKey != "" {
		fmt.Println("⚠️  SECURITY WARNING: API secrets found in config file.")
		fmt.Println("   Recommendation: use environment variables or .env instead:")
		fmt.Println("   - UPBIT_KEY, UPBIT_SECRET")
		fmt.Println("   - BINANCE_KEY, BINANCE_SECRET")
	}

	if key := os.Getenv("UPBIT_KEY"); key != "" {
		cfg.Venues.Upbit.AccessKey = key
	}
	if secret := os.Getenv("UPBIT_SECRET"); secret != "" {
		cfg.Venues.Upbit.SecretKey = secret
	}
	if key := os.Getenv("BINANCE_KEY"); key != "" {
		cfg.Venues.Binance.AccessKey = key
	}
	if secret := os.Getenv("BINANCE_SECRET"); secret != "" {
		cfg.Venues.Binance.SecretKey = secret
	}
}
