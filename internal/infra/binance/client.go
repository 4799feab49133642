package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"arb_go/internal/domain"
	"arb_go/internal/infra"

	"github.com/shopspring/decimal"
)

// Client implements domain.HedgeClient against the Binance USDT-M futures API.
type Client struct {
	baseURL    string
	symbol     string
	signer     *Signer
	httpClient *http.Client
}

// NewClient creates a REST client for one contract (e.g. "BTCUSDT").
func NewClient(baseURL, symbol string, signer *Signer) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		symbol:  symbol,
		signer:  signer,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Close wipes credentials.
func (c *Client) Close() {
	c.signer.Wipe()
}

// PlaceMarketOrder submits an immediately-executing futures order.
func (c *Client) PlaceMarketOrder(ctx context.Context, dir domain.Direction, qty decimal.Decimal) (string, error) {
	params := url.Values{}
	params.Set("symbol", c.symbol)
	params.Set("side", string(dir))
	params.Set("type", "MARKET")
	params.Set("quantity", qty.String())

	var resp orderResponse
	if err := c.doSigned(ctx, http.MethodPost, "/fapi/v1/order", params, &resp); err != nil {
		return "", fmt.Errorf("place market order: %w", err)
	}
	return strconv.FormatInt(resp.OrderID, 10), nil
}

// SetLeverage configures the contract leverage multiplier.
func (c *Client) SetLeverage(ctx context.Context, leverage int) error {
	params := url.Values{}
	params.Set("symbol", c.symbol)
	params.Set("leverage", strconv.Itoa(leverage))

	var resp json.RawMessage
	if err := c.doSigned(ctx, http.MethodPost, "/fapi/v1/leverage", params, &resp); err != nil {
		return fmt.Errorf("set leverage: %w", err)
	}
	return nil
}

// Position returns the signed open position size for the contract.
func (c *Client) Position(ctx context.Context) (decimal.Decimal, error) {
	params := url.Values{}
	params.Set("symbol", c.symbol)

	var positions []positionRisk
	if err := c.doSigned(ctx, http.MethodGet, "/fapi/v2/positionRisk", params, &positions); err != nil {
		return decimal.Zero, fmt.Errorf("position: %w", err)
	}

	for _, p := range positions {
		if p.Symbol != c.symbol {
			continue
		}
		amt, err := decimal.NewFromString(p.PositionAmt.String())
		if err != nil {
			return decimal.Zero, fmt.Errorf("position parse: %w", err)
		}
		return amt, nil
	}
	return decimal.Zero, nil
}

// ServerTime fetches the venue clock; used as the health-check ping.
func (c *Client) ServerTime(ctx context.Context) (time.Time, error) {
	var resp serverTimeResponse
	if err := c.doPublic(ctx, "/fapi/v1/time", nil, &resp); err != nil {
		return time.Time{}, fmt.Errorf("server time: %w", err)
	}
	return time.UnixMilli(resp.ServerTime), nil
}

// Ticker returns the current best bid/ask for the contract.
func (c *Client) Ticker(ctx context.Context) (domain.Quote, error) {
	params := url.Values{}
	params.Set("symbol", c.symbol)

	var resp bookTickerResponse
	if err := c.doPublic(ctx, "/fapi/v1/ticker/bookTicker", params, &resp); err != nil {
		return domain.Quote{}, fmt.Errorf("ticker: %w", err)
	}

	bid, err := decimal.NewFromString(resp.BidPrice.String())
	if err != nil {
		return domain.Quote{}, fmt.Errorf("ticker bid parse: %w", err)
	}
	ask, err := decimal.NewFromString(resp.AskPrice.String())
	if err != nil {
		return domain.Quote{}, fmt.Errorf("ticker ask parse: %w", err)
	}
	return domain.Quote{Bid: bid, Ask: ask}, nil
}

// doSigned executes an authenticated request. Binance signs the full query
// string, including the timestamp, with HMAC-SHA256.
func (c *Client) doSigned(ctx context.Context, method, path string, params url.Values, out any) error {
	params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
	params.Set("recvWindow", "5000")

	query := params.Encode()
	query += "&signature=" + c.signer.Sign(query)

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path+"?"+query, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-MBX-APIKEY", c.signer.APIKey())
	req.Header.Set("User-Agent", infra.DefaultUserAgent)

	return c.send(req, out)
}

func (c *Client) doPublic(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", infra.DefaultUserAgent)

	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Code != 0 {
			return fmt.Errorf("binance %d: %s", apiErr.Code, apiErr.Message)
		}
		return fmt.Errorf("binance status %d: %s", resp.StatusCode, string(body))
	}

	return json.Unmarshal(body, out)
}
