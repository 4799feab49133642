package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"arb_go/internal/app"
	"arb_go/internal/domain"
	"arb_go/internal/infra"
	"arb_go/internal/infra/binance"
	"arb_go/internal/infra/upbit"
	"arb_go/internal/monitor"
	"arb_go/internal/obs"
	"arb_go/internal/oms"
	"arb_go/internal/poller"
	"arb_go/internal/strategy"

	"github.com/shopspring/decimal"

	_ "expvar"           // /debug/vars metrics endpoint
	_ "net/http/pprof"   // /debug/pprof profiling endpoint
)

func main() {
	// 1. Debug server (expvar metrics + pprof), localhost only
	go func() {
		slog.Info("🕵️ Debug server started on localhost:6060")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			slog.Error("Debug server failed", slog.Any("error", err))
		}
	}()

	// 2. System bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer bootstrap.Close()

	cfg := bootstrap.Config

	// 3. Graceful shutdown context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Metrics
	metrics := obs.NewMetrics()
	metrics.Publish("arb")

	// 5. Channels between the pipeline stages
	events := make(chan domain.MarketEvent, 1024)
	intents := make(chan domain.OrderIntent, 16)
	fills := make(chan domain.FillEvent, 16)

	// 6. Venue clients
	spotClient := upbit.NewClient(
		cfg.Venues.Upbit.RestURL,
		cfg.Venues.Upbit.Market,
		upbit.NewSigner(cfg.Venues.Upbit.AccessKey, cfg.Venues.Upbit.SecretKey),
	)
	defer spotClient.Close()

	hedgeClient := binance.NewClient(
		cfg.Venues.Binance.RestURL,
		cfg.Venues.Binance.Symbol,
		binance.NewSigner(cfg.Venues.Binance.AccessKey, cfg.Venues.Binance.SecretKey),
	)
	defer hedgeClient.Close()

	// 7. Market feeds
	spotFeed := upbit.NewFeed(cfg.Venues.Upbit.WSURL, cfg.Venues.Upbit.Market, events)
	spotFeed.Connect(ctx)
	defer spotFeed.Disconnect()
	slog.InfoContext(ctx, "✅ Spot feed started", slog.String("market", cfg.Venues.Upbit.Market))

	hedgeFeed := binance.NewFeed(cfg.Venues.Binance.WSURL, cfg.Venues.Binance.Stream, events)
	hedgeFeed.Connect(ctx)
	defer hedgeFeed.Disconnect()
	slog.InfoContext(ctx, "✅ Hedge feed started", slog.String("stream", cfg.Venues.Binance.Stream))

	// 8. Fiat rate poller
	fx := infra.NewFxPoller(cfg.FX.URL, cfg.FX.PollIntervalSec)
	fx.Start(ctx)
	defer fx.Stop()

	// 9. Core pipeline
	engine := strategy.NewEngine(strategy.Config{
		TickInterval: time.Duration(cfg.Strategy.TickIntervalMS) * time.Millisecond,
		Band:         decimal.NewFromFloat(cfg.Strategy.BandPct).Div(decimal.NewFromInt(100)),
	}, events, intents, metrics)

	watch := domain.NewWatchSet()
	limiter := infra.NewRateLimiter(cfg.OMS.RateLimitRPS, float64(cfg.OMS.RateLimitRPS))

	manager := oms.NewManager(
		spotClient,
		hedgeClient,
		oms.Config{
			OrderSizeFiat:    decimal.NewFromInt(cfg.Strategy.OrderSizeFiat),
			HedgeLeverage:    cfg.OMS.HedgeLeverage,
			RefreshUnchanged: cfg.OMS.RefreshUnchanged,
		},
		intents,
		fills,
		fx,
		limiter,
		watch,
		bootstrap.Journal,
		metrics,
	)

	fillPoller := poller.NewFillPoller(spotClient, watch,
		fills, time.Duration(cfg.Poller.IntervalMS)*time.Millisecond)

	go engine.Run(ctx)
	go manager.Run(ctx)
	go manager.RunFills(ctx)
	go fillPoller.Run(ctx)

	// 10. Health monitor: trips fatal on sustained connectivity loss
	healthMon := monitor.NewHealthMonitor(spotClient, hedgeClient, manager,
		time.Duration(cfg.Monitor.IntervalSec)*time.Second, cfg.Monitor.MaxFailures)

	monErr := make(chan error, 1)
	go func() { monErr <- healthMon.Run(ctx) }()

	slog.InfoContext(ctx, "✨ Arb executor fully operational. Press Ctrl+C to exit.")

	select {
	case <-ctx.Done():
		slog.Info("👋 Shutting down gracefully...")
	case err := <-monErr:
		if err != nil && err != context.Canceled {
			slog.Error("Fatal: health monitor tripped", slog.Any("error", err))
			stop()
			os.Exit(1)
		}
	}
}
