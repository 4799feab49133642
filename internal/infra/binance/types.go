package binance

import "encoding/json"

// orderResponse is returned by the futures order endpoint.
type orderResponse struct {
	OrderID     int64       `json:"orderId"`
	Symbol      string      `json:"symbol"`
	Status      string      `json:"status"`
	Side        string      `json:"side"`
	ExecutedQty json.Number `json:"executedQty"`
}

// positionRisk is one entry of the position risk endpoint.
type positionRisk struct {
	Symbol      string      `json:"symbol"`
	PositionAmt json.Number `json:"positionAmt"` // signed: negative = short
}

// serverTimeResponse is the public time endpoint payload.
type serverTimeResponse struct {
	ServerTime int64 `json:"serverTime"` // milliseconds
}

// bookTickerResponse is the public best bid/ask REST payload.
type bookTickerResponse struct {
	Symbol   string      `json:"symbol"`
	BidPrice json.Number `json:"bidPrice"`
	AskPrice json.Number `json:"askPrice"`
}

// apiError is Binance's error envelope.
type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"msg"`
}

// wsBookTicker is the streaming best bid/ask message. The quantity fields
// must be mapped explicitly: encoding/json matches keys case-insensitively,
// so without them "B"/"A" would overwrite the "b"/"a" prices.
type wsBookTicker struct {
	Symbol   string      `json:"s"`
	BidPrice json.Number `json:"b"`
	BidQty   json.Number `json:"B"`
	AskPrice json.Number `json:"a"`
	AskQty   json.Number `json:"A"`
}
