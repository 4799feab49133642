package obs

import (
	"expvar"
	"sync/atomic"
	"time"

	"arb_go/internal/domain"
)

// Metrics collects lightweight counters and latency stats. Handles are passed
// into components at construction; there are no package-level singletons.
type Metrics struct {
	bidOrders uint64
	askOrders uint64
	hedges    uint64
	fills     uint64

	tickLatency LatencyStats
}

// LatencyStats aggregates duration samples in nanoseconds.
type LatencyStats struct {
	count uint64
	sum   uint64
	min   uint64
	max   uint64
}

// Observe records one duration sample.
func (l *LatencyStats) Observe(d time.Duration) {
	if d < 0 {
		return
	}
	ns := uint64(d)
	atomic.AddUint64(&l.count, 1)
	atomic.AddUint64(&l.sum, ns)

	for {
		cur := atomic.LoadUint64(&l.min)
		if cur != 0 && ns >= cur {
			break
		}
		if atomic.CompareAndSwapUint64(&l.min, cur, ns) {
			break
		}
	}
	for {
		cur := atomic.LoadUint64(&l.max)
		if ns <= cur {
			break
		}
		if atomic.CompareAndSwapUint64(&l.max, cur, ns) {
			break
		}
	}
}

// LatencySnapshot is a point-in-time view of latency stats.
type LatencySnapshot struct {
	Count uint64
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
}

// Snapshot captures the current latency values.
func (l *LatencyStats) Snapshot() LatencySnapshot {
	count := atomic.LoadUint64(&l.count)
	snap := LatencySnapshot{
		Count: count,
		Min:   time.Duration(atomic.LoadUint64(&l.min)),
		Max:   time.Duration(atomic.LoadUint64(&l.max)),
	}
	if count > 0 {
		snap.Avg = time.Duration(atomic.LoadUint64(&l.sum) / count)
	}
	return snap
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// IncOrder counts one spot limit order placement, labeled by side.
func (m *Metrics) IncOrder(side domain.Side) {
	if m == nil {
		return
	}
	if side == domain.SideBid {
		atomic.AddUint64(&m.bidOrders, 1)
	} else {
		atomic.AddUint64(&m.askOrders, 1)
	}
}

// IncHedge counts one hedge market order.
func (m *Metrics) IncHedge() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.hedges, 1)
}

// IncFill counts one observed fill.
func (m *Metrics) IncFill() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.fills, 1)
}

// ObserveTick records one strategy-loop latency sample.
func (m *Metrics) ObserveTick(d time.Duration) {
	if m == nil {
		return
	}
	m.tickLatency.Observe(d)
}

// Orders returns the per-side order counts.
func (m *Metrics) Orders(side domain.Side) uint64 {
	if side == domain.SideBid {
		return atomic.LoadUint64(&m.bidOrders)
	}
	return atomic.LoadUint64(&m.askOrders)
}

// Hedges returns the hedge order count.
func (m *Metrics) Hedges() uint64 { return atomic.LoadUint64(&m.hedges) }

// Fills returns the observed fill count.
func (m *Metrics) Fills() uint64 { return atomic.LoadUint64(&m.fills) }

// TickLatency returns a snapshot of strategy-loop latency.
func (m *Metrics) TickLatency() LatencySnapshot { return m.tickLatency.Snapshot() }

// Publish exposes the metrics under /debug/vars via expvar.
func (m *Metrics) Publish(prefix string) {
	expvar.Publish(prefix+".orders_bid", expvar.Func(func() any { return m.Orders(domain.SideBid) }))
	expvar.Publish(prefix+".orders_ask", expvar.Func(func() any { return m.Orders(domain.SideAsk) }))
	expvar.Publish(prefix+".hedges", expvar.Func(func() any { return m.Hedges() }))
	expvar.Publish(prefix+".fills", expvar.Func(func() any { return m.Fills() }))
	expvar.Publish(prefix+".tick_latency_avg_us", expvar.Func(func() any {
		return m.TickLatency().Avg.Microseconds()
	}))
}
