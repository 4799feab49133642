package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"arb_go/internal/domain"
)

// ErrVenuesDown is returned when consecutive health checks exceed the
// threshold. The caller treats this as fatal.
var ErrVenuesDown = errors.New("sustained venue connectivity loss")

// Flattener is the emergency procedure invoked on sustained failure.
type Flattener interface {
	EmergencyFlatten(ctx context.Context) error
}

// HealthMonitor pings both venues on a fixed interval and counts consecutive
// failures. At the threshold it flattens all exposure and reports fatal.
type HealthMonitor struct {
	spot      domain.SpotClient
	hedge     domain.HedgeClient
	flattener Flattener
	interval  time.Duration
	maxFail   int
}

// NewHealthMonitor creates the monitor.
func NewHealthMonitor(spot domain.SpotClient, hedge domain.HedgeClient, flattener Flattener, interval time.Duration, maxFail int) *HealthMonitor {
	return &HealthMonitor{
		spot:      spot,
		hedge:     hedge,
		flattener: flattener,
		interval:  interval,
		maxFail:   maxFail,
	}
}

// ping issues one lightweight authenticated-path call per venue.
func (m *HealthMonitor) ping(ctx context.Context) error {
	if _, err := m.spot.Ticker(ctx); err != nil {
		return fmt.Errorf("spot ping: %w", err)
	}
	if _, err := m.hedge.ServerTime(ctx); err != nil {
		return fmt.Errorf("hedge ping: %w", err)
	}
	return nil
}

// Run loops until the context is canceled or the failure threshold trips.
// A successful ping resets the counter; reaching the threshold triggers
// exactly one emergency flatten, then the monitor returns ErrVenuesDown.
func (m *HealthMonitor) Run(ctx context.Context) error {
	slog.Info("Health monitor started",
		slog.Duration("interval", m.interval),
		slog.Int("max_failures", m.maxFail),
	)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	fails := 0
	for {
		select {
		case <-ctx.Done():
			slog.Info("Health monitor stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := m.ping(ctx); err != nil {
				fails++
				slog.Warn("Venue ping failed",
					slog.Int("fails", fails),
					slog.Int("max", m.maxFail),
					slog.Any("error", err),
				)
				if fails >= m.maxFail {
					slog.Error("Consecutive ping failures exceeded threshold, flattening")
					if err := m.flattener.EmergencyFlatten(ctx); err != nil {
						slog.Error("Emergency flatten failed", slog.Any("error", err))
					}
					return ErrVenuesDown
				}
				continue
			}

			if fails > 0 {
				slog.Info("Venue ping recovered")
			}
			fails = 0
		}
	}
}
