package strategy

import (
	"context"
	"log/slog"
	"time"

	"arb_go/internal/domain"
	"arb_go/internal/obs"

	"github.com/shopspring/decimal"
)

// Config holds the strategy parameters.
type Config struct {
	TickInterval time.Duration
	Band         decimal.Decimal // minimum spread fraction to justify an order
}

// Engine consumes market events and emits one order intent per side per tick.
// It owns the market snapshot; nothing else reads or writes it.
type Engine struct {
	cfg     Config
	events  <-chan domain.MarketEvent
	intents chan<- domain.OrderIntent
	metrics *obs.Metrics

	snap domain.Snapshot
}

// NewEngine creates the strategy engine.
func NewEngine(cfg Config, events <-chan domain.MarketEvent, intents chan<- domain.OrderIntent, metrics *obs.Metrics) *Engine {
	return &Engine{
		cfg:     cfg,
		events:  events,
		intents: intents,
		metrics: metrics,
	}
}

// Run drives the fixed-cadence loop until the context is canceled.
// A missed tick is not recovered; the next one supersedes it.
func (e *Engine) Run(ctx context.Context) {
	slog.Info("Strategy engine started",
		slog.Duration("tick", e.cfg.TickInterval),
		slog.String("band", e.cfg.Band.String()),
	)

	ticker := time.NewTicker(e.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Strategy engine stopped")
			return
		case <-ticker.C:
			e.tick(ctx)
		}
	}
}

// tick drains pending events, recomputes spreads and emits intents.
func (e *Engine) tick(ctx context.Context) {
	start := time.Now()

	e.drain()

	if e.snap.Ready() {
		e.emit(ctx)
	}

	e.metrics.ObserveTick(time.Since(start))
}

// drain merges all currently queued market events without blocking.
func (e *Engine) drain() {
	for {
		select {
		case ev := <-e.events:
			e.snap.Apply(ev)
		default:
			return
		}
	}
}

// emit sends the bid intent, then the ask intent. Always in that order, every
// warm tick; repeated updates for a resting side are idempotent downstream.
func (e *Engine) emit(ctx context.Context) {
	buySpread := e.snap.BuySpread()
	sellSpread := e.snap.SellSpread()

	slog.Debug("Spread computed",
		slog.String("buy", buySpread.String()),
		slog.String("sell", sellSpread.String()),
		slog.String("implied", e.snap.Implied().String()),
	)

	bid := domain.OrderIntent{Side: domain.SideBid, Action: domain.ActionCancel, Price: e.snap.SpotAsk}
	if buySpread.GreaterThanOrEqual(e.cfg.Band) {
		bid.Action = domain.ActionUpdate
	}

	ask := domain.OrderIntent{Side: domain.SideAsk, Action: domain.ActionCancel, Price: e.snap.SpotBid}
	if sellSpread.GreaterThanOrEqual(e.cfg.Band) {
		ask.Action = domain.ActionUpdate
	}

	select {
	case e.intents <- bid:
	case <-ctx.Done():
		return
	}
	select {
	case e.intents <- ask:
	case <-ctx.Done():
	}
}
