package poller

import (
	"context"
	"log/slog"
	"time"

	"arb_go/internal/domain"
)

// FillPoller resolves the fate of every watched spot order by polling the
// venue on a fixed interval. Orders that filled produce a FillEvent; orders
// that canceled are dropped silently. A failed status query leaves the order
// in the watch set for the next pass.
type FillPoller struct {
	spot     domain.SpotClient
	watch    *domain.WatchSet
	fills    chan<- domain.FillEvent
	interval time.Duration
}

// NewFillPoller creates the poller.
func NewFillPoller(spot domain.SpotClient, watch *domain.WatchSet, fills chan<- domain.FillEvent, interval time.Duration) *FillPoller {
	return &FillPoller{
		spot:     spot,
		watch:    watch,
		fills:    fills,
		interval: interval,
	}
}

// Run drives the polling loop until the context is canceled.
func (p *FillPoller) Run(ctx context.Context) {
	slog.Info("Fill poller started", slog.Duration("interval", p.interval))

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Fill poller stopped")
			return
		case <-ticker.C:
			p.pollOnce(ctx)
		}
	}
}

// pollOnce checks every watched order. The watch set is snapshotted up front
// so concurrent OMS insertions don't disturb iteration; removal happens as
// soon as a terminal status is observed, which is what prevents a duplicate
// hedge for the same fill.
func (p *FillPoller) pollOnce(ctx context.Context) {
	for _, id := range p.watch.Snapshot() {
		state, err := p.spot.OrderStatus(ctx, id)
		if err != nil {
			// Retried next tick; never blocks the other identifiers.
			slog.Warn("Order status query failed", slog.String("id", id), slog.Any("error", err))
			continue
		}

		if !state.Status.Terminal() {
			continue
		}

		p.watch.Remove(id)

		if state.Status == domain.StatusFilled && state.FilledQty.IsPositive() {
			slog.Info("Fill observed",
				slog.String("id", id),
				slog.String("side", string(state.Side)),
				slog.String("qty", state.FilledQty.String()),
			)
			select {
			case p.fills <- domain.FillEvent{Side: state.Side, Quantity: state.FilledQty}:
			case <-ctx.Done():
				return
			}
		}
	}
}
