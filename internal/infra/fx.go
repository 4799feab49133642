package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// chartResponse represents the Yahoo Finance chart API response used as the
// fiat reference price source.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string  `json:"currency"`
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FxPoller polls a fiat reference price on a fixed interval and exposes the
// latest value. A zero rate means no value has been received yet; order
// sizing treats that as "do not trade".
type FxPoller struct {
	rate         decimal.Decimal
	mu           sync.RWMutex
	pollInterval time.Duration
	apiURL       string
	httpClient   *http.Client
	cancel       context.CancelFunc
	wg           sync.WaitGroup
}

// NewFxPoller creates a poller for the given URL and interval.
func NewFxPoller(apiURL string, pollIntervalSec int) *FxPoller {
	return &FxPoller{
		rate:         decimal.Zero,
		pollInterval: time.Duration(pollIntervalSec) * time.Second,
		apiURL:       apiURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Start begins polling. Fetch failures are logged and swallowed; the previous
// rate stays in place until the next successful poll.
func (p *FxPoller) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)

	if err := p.fetch(ctx); err != nil {
		slog.Warn("Initial FX fetch failed", slog.Any("error", err))
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ticker := time.NewTicker(p.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				slog.Info("FX polling stopped")
				return
			case <-ticker.C:
				if err := p.fetch(ctx); err != nil {
					slog.Warn("FX fetch failed", slog.Any("error", err))
				}
			}
		}
	}()
}

func (p *FxPoller) fetch(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", DefaultUserAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var data chartResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return err
	}

	if data.Chart.Error != nil {
		return fmt.Errorf("fx API error: %s - %s", data.Chart.Error.Code, data.Chart.Error.Description)
	}
	if len(data.Chart.Result) == 0 {
		return fmt.Errorf("empty response from fx API")
	}

	newRate := decimal.NewFromFloat(data.Chart.Result[0].Meta.RegularMarketPrice)
	if newRate.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("non-positive fx rate: %s", newRate)
	}

	p.mu.Lock()
	old := p.rate
	p.rate = newRate
	p.mu.Unlock()

	if !old.Equal(newRate) {
		slog.Debug("FX rate updated",
			slog.String("rate", newRate.String()),
			slog.String("old_rate", old.String()),
		)
	}

	return nil
}

// Stop stops the polling.
func (p *FxPoller) Stop() {
	if p.cancel != nil {
		p.cancel()
		p.wg.Wait()
	}
}

// Rate returns the latest known rate, or zero when unknown.
func (p *FxPoller) Rate() decimal.Decimal {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.rate
}
