package oms

import (
	"context"
	"log/slog"
	"sync"

	"arb_go/internal/domain"
	"arb_go/internal/infra"
	"arb_go/internal/obs"
	"arb_go/internal/storage"

	"github.com/shopspring/decimal"
)

// qtyPlaces is the quantization applied to computed order quantities.
const qtyPlaces = 8

// Config holds the order manager parameters.
type Config struct {
	// OrderSizeFiat is the per-order notional in the operator's home currency.
	OrderSizeFiat decimal.Decimal
	// HedgeLeverage is configured on the hedge venue once, before the first
	// hedge order.
	HedgeLeverage int
	// RefreshUnchanged forces a cancel+replace even when a repeated update
	// intent carries the same price as the resting order.
	RefreshUnchanged bool
}

// RateSource supplies the latest fiat conversion rate; zero means unknown.
type RateSource interface {
	Rate() decimal.Decimal
}

// resting is the OMS's record of one open spot order.
type resting struct {
	id    string
	price decimal.Decimal
}

// Manager owns the outbound command path to both venues. It runs two loops:
// Run consumes order intents, RunFills consumes fill events. Per-side state
// is guarded by a mutex so EmergencyFlatten can run concurrently with both.
type Manager struct {
	spot    domain.SpotClient
	hedge   domain.HedgeClient
	cfg     Config
	intents <-chan domain.OrderIntent
	fills   <-chan domain.FillEvent
	fx      RateSource
	limiter *infra.RateLimiter
	watch   *domain.WatchSet
	journal *storage.Journal // nil disables journaling
	metrics *obs.Metrics

	mu   sync.Mutex
	open map[domain.Side]resting

	levOnce sync.Once
}

// NewManager creates the order manager.
func NewManager(
	spot domain.SpotClient,
	hedge domain.HedgeClient,
	cfg Config,
	intents <-chan domain.OrderIntent,
	fills <-chan domain.FillEvent,
	fx RateSource,
	limiter *infra.RateLimiter,
	watch *domain.WatchSet,
	journal *storage.Journal,
	metrics *obs.Metrics,
) *Manager {
	return &Manager{
		spot:    spot,
		hedge:   hedge,
		cfg:     cfg,
		intents: intents,
		fills:   fills,
		fx:      fx,
		limiter: limiter,
		watch:   watch,
		journal: journal,
		metrics: metrics,
		open:    make(map[domain.Side]resting),
	}
}

// Run consumes order intents in emission order until the context is canceled.
func (m *Manager) Run(ctx context.Context) {
	slog.Info("OMS intent loop started")
	for {
		select {
		case <-ctx.Done():
			slog.Info("OMS intent loop stopped")
			return
		case intent := <-m.intents:
			switch intent.Action {
			case domain.ActionUpdate:
				m.handleUpdate(ctx, intent.Side, intent.Price)
			case domain.ActionCancel:
				m.handleCancel(ctx, intent.Side)
			}
		}
	}
}

// RunFills consumes fill events in arrival order until the context is canceled.
func (m *Manager) RunFills(ctx context.Context) {
	slog.Info("OMS fill loop started")
	for {
		select {
		case <-ctx.Done():
			slog.Info("OMS fill loop stopped")
			return
		case fill := <-m.fills:
			m.handleFill(ctx, fill)
		}
	}
}

// sizeOrder computes the spot order quantity from the configured fiat
// notional, the fiat rate and the order price. Zero means "hold": rate
// unknown or size below quantization.
func (m *Manager) sizeOrder(price decimal.Decimal) decimal.Decimal {
	rate := m.fx.Rate()
	if rate.LessThanOrEqual(decimal.Zero) || price.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	nominal := m.cfg.OrderSizeFiat.Div(rate)
	return nominal.DivRound(price, qtyPlaces)
}

func (m *Manager) handleUpdate(ctx context.Context, side domain.Side, price decimal.Decimal) {
	qty := m.sizeOrder(price)
	if qty.LessThanOrEqual(decimal.Zero) {
		slog.Debug("Order sizing returned zero, holding", slog.String("side", string(side)))
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if cur, ok := m.open[side]; ok {
		// Same price on a repeated update: leave the resting order alone
		// unless configured to always refresh.
		if !m.cfg.RefreshUnchanged && cur.price.Equal(price) {
			return
		}
		if err := m.cancelLocked(ctx, side); err != nil {
			// The old order may still rest; placing now could break the
			// one-order-per-side invariant. Retry on the next intent.
			slog.Warn("Cancel before replace failed",
				slog.String("side", string(side)), slog.Any("error", err))
			return
		}
	}

	m.limiter.Wait()
	id, err := m.spot.PlaceLimitOrder(ctx, side, qty, price)
	if err != nil {
		slog.Warn("Limit order placement failed",
			slog.String("side", string(side)), slog.Any("error", err))
		return
	}

	m.open[side] = resting{id: id, price: price}
	m.watch.Add(id)
	m.metrics.IncOrder(side)
	m.record(ctx, storage.KindPlace, id, string(side), price.String(), qty.String())

	slog.Info("Limit order placed",
		slog.String("side", string(side)),
		slog.String("price", price.String()),
		slog.String("qty", qty.String()),
		slog.String("id", id),
	)
}

func (m *Manager) handleCancel(ctx context.Context, side domain.Side) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.open[side]; !ok {
		return
	}
	if err := m.cancelLocked(ctx, side); err != nil {
		slog.Warn("Cancel failed", slog.String("side", string(side)), slog.Any("error", err))
	}
}

// cancelLocked cancels the resting order for a side and clears its state.
// Caller must hold m.mu. State is cleared only on success so a failed cancel
// is retried by the next intent.
func (m *Manager) cancelLocked(ctx context.Context, side domain.Side) error {
	cur, ok := m.open[side]
	if !ok {
		return nil
	}

	m.limiter.Wait()
	if err := m.spot.CancelOrder(ctx, cur.id); err != nil {
		return err
	}

	delete(m.open, side)
	m.record(ctx, storage.KindCancel, cur.id, string(side), cur.price.String(), "")
	return nil
}

// handleFill offsets a spot fill with a hedge market order of identical size
// in the opposite direction. Leverage is configured exactly once; a failure
// there is logged and trading continues.
func (m *Manager) handleFill(ctx context.Context, fill domain.FillEvent) {
	m.metrics.IncFill()

	m.levOnce.Do(func() {
		if err := m.hedge.SetLeverage(ctx, m.cfg.HedgeLeverage); err != nil {
			slog.Warn("Leverage configuration failed, continuing with venue default",
				slog.Any("error", err))
		}
	})

	dir := fill.Side.HedgeDirection()

	m.limiter.Wait()
	id, err := m.hedge.PlaceMarketOrder(ctx, dir, fill.Quantity)
	if err != nil {
		slog.Error("Hedge order failed, exposure is open",
			slog.String("direction", string(dir)),
			slog.String("qty", fill.Quantity.String()),
			slog.Any("error", err))
		return
	}

	m.metrics.IncHedge()
	m.record(ctx, storage.KindHedge, id, string(dir), "", fill.Quantity.String())

	slog.Info("Hedge order placed",
		slog.String("direction", string(dir)),
		slog.String("qty", fill.Quantity.String()),
		slog.String("id", id),
	)
}

// EmergencyFlatten cancels every resting order and closes the hedge position
// with an equal-and-opposite market order sized from venue position state.
// Safe to invoke concurrently with the two loops.
func (m *Manager) EmergencyFlatten(ctx context.Context) error {
	slog.Error("EMERGENCY FLATTEN: canceling orders and closing exposure")

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, side := range []domain.Side{domain.SideBid, domain.SideAsk} {
		if err := m.cancelLocked(ctx, side); err != nil {
			slog.Warn("Flatten cancel failed",
				slog.String("side", string(side)), slog.Any("error", err))
		}
	}

	m.limiter.Wait()
	pos, err := m.hedge.Position(ctx)
	if err != nil {
		return err
	}
	if pos.IsZero() {
		slog.Info("Flatten complete, no hedge position open")
		return nil
	}

	dir := domain.DirSell
	if pos.IsNegative() {
		dir = domain.DirBuy
	}
	qty := pos.Abs()

	m.limiter.Wait()
	id, err := m.hedge.PlaceMarketOrder(ctx, dir, qty)
	if err != nil {
		return err
	}

	m.record(ctx, storage.KindFlatten, id, string(dir), "", qty.String())
	slog.Info("Flatten complete",
		slog.String("direction", string(dir)),
		slog.String("qty", qty.String()),
	)
	return nil
}

// record journals an action; journal failures are logged, never propagated.
func (m *Manager) record(ctx context.Context, kind, orderID, side, price, qty string) {
	if m.journal == nil {
		return
	}
	if err := m.journal.Record(ctx, kind, orderID, side, price, qty); err != nil {
		slog.Warn("Journal write failed", slog.String("kind", kind), slog.Any("error", err))
	}
}
