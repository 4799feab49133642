package upbit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"arb_go/internal/domain"
	"arb_go/internal/infra"

	"github.com/shopspring/decimal"
)

// Client implements domain.SpotClient against the Upbit REST API.
type Client struct {
	baseURL    string
	market     string
	signer     *Signer
	httpClient *http.Client
}

// NewClient creates a REST client for one market (e.g. "USDT-BTC").
func NewClient(baseURL, market string, signer *Signer) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		market:  market,
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

// PlaceLimitOrder submits a resting limit order. Upbit's wire side naming
// matches ours: "bid" buys, "ask" sells.
func (c *Client) PlaceLimitOrder(ctx context.Context, side domain.Side, qty, price decimal.Decimal) (string, error) {
	params := url.Values{}
	params.Set("market", c.market)
	params.Set("side", string(side))
	params.Set("volume", qty.String())
	params.Set("price", price.String())
	params.Set("ord_type", "limit")

	var resp orderResponse
	if err := c.do(ctx, http.MethodPost, "/v1/orders", params, &resp); err != nil {
		return "", fmt.Errorf("place limit order: %w", err)
	}
	return resp.UUID, nil
}

// CancelOrder cancels a resting order by its venue UUID.
func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	params := url.Values{}
	params.Set("uuid", orderID)

	var resp orderResponse
	if err := c.do(ctx, http.MethodDelete, "/v1/order", params, &resp); err != nil {
		return fmt.Errorf("cancel order %s: %w", orderID, err)
	}
	return nil
}

// OrderStatus queries the lifecycle state of an order.
func (c *Client) OrderStatus(ctx context.Context, orderID string) (domain.OrderState, error) {
	params := url.Values{}
	params.Set("uuid", orderID)

	var resp orderResponse
	if err := c.do(ctx, http.MethodGet, "/v1/order", params, &resp); err != nil {
		return domain.OrderState{}, fmt.Errorf("order status %s: %w", orderID, err)
	}

	filled, err := decimal.NewFromString(resp.ExecutedVolume.String())
	if err != nil {
		filled = decimal.Zero
	}

	return domain.OrderState{
		ID:        resp.UUID,
		Side:      domain.Side(resp.Side),
		Status:    mapState(resp.State),
		FilledQty: filled,
	}, nil
}

func mapState(state string) domain.OrderStatus {
	switch state {
	case "done":
		return domain.StatusFilled
	case "cancel":
		return domain.StatusCanceled
	default: // "wait", "watch"
		return domain.StatusOpen
	}
}

// Ticker returns the current top of book from the public orderbook endpoint.
// Also serves as the health-check ping for this venue.
func (c *Client) Ticker(ctx context.Context) (domain.Quote, error) {
	endpoint := fmt.Sprintf("%s/v1/orderbook?markets=%s", c.baseURL, url.QueryEscape(c.market))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Quote{}, err
	}
	req.Header.Set("User-Agent", infra.DefaultUserAgent)

	body, err := c.send(req)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("ticker: %w", err)
	}

	var books []orderbookResponse
	if err := json.Unmarshal(body, &books); err != nil {
		return domain.Quote{}, fmt.Errorf("ticker decode: %w", err)
	}
	if len(books) == 0 || len(books[0].Units) == 0 {
		return domain.Quote{}, fmt.Errorf("ticker: empty orderbook for %s", c.market)
	}

	best := books[0].Units[0]
	bid, err := decimal.NewFromString(best.BidPrice.String())
	if err != nil {
		return domain.Quote{}, fmt.Errorf("ticker bid parse: %w", err)
	}
	ask, err := decimal.NewFromString(best.AskPrice.String())
	if err != nil {
		return domain.Quote{}, fmt.Errorf("ticker ask parse: %w", err)
	}

	return domain.Quote{Bid: bid, Ask: ask}, nil
}

// do executes an authenticated request. Parameters travel in the query string
// for GET/DELETE and as a JSON body for POST; either way the urlencoded form
// is bound into the JWT.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, out any) error {
	query := params.Encode()

	token, err := c.signer.Token(query)
	if err != nil {
		return fmt.Errorf("sign: %w", err)
	}

	var req *http.Request
	if method == http.MethodPost {
		fields := make(map[string]string, len(params))
		for k := range params {
			fields[k] = params.Get(k)
		}
		payload, err := json.Marshal(fields)
		if err != nil {
			return err
		}
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, strings.NewReader(string(payload)))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path+"?"+query, nil)
		if err != nil {
			return err
		}
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", infra.DefaultUserAgent)

	body, err := c.send(req)
	if err != nil {
		return err
	}

	return json.Unmarshal(body, out)
}

func (c *Client) send(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Name != "" {
			return nil, fmt.Errorf("upbit %s: %s", apiErr.Error.Name, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("upbit status %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}
