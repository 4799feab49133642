package upbit

import "encoding/json"

// orderResponse is returned by order placement, cancellation and status queries.
// json.Number keeps full precision for decimal conversion.
type orderResponse struct {
	UUID           string      `json:"uuid"`
	Side           string      `json:"side"`  // "bid" or "ask"
	State          string      `json:"state"` // "wait", "watch", "done", "cancel"
	Market         string      `json:"market"`
	Price          json.Number `json:"price"`
	Volume         json.Number `json:"volume"`
	ExecutedVolume json.Number `json:"executed_volume"`
}

// apiError is Upbit's error envelope.
type apiError struct {
	Error struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	} `json:"error"`
}

// orderbookResponse is one entry of the public REST orderbook endpoint.
type orderbookResponse struct {
	Market string          `json:"market"`
	Units  []orderbookUnit `json:"orderbook_units"`
}

type orderbookUnit struct {
	AskPrice json.Number `json:"ask_price"`
	BidPrice json.Number `json:"bid_price"`
	AskSize  json.Number `json:"ask_size"`
	BidSize  json.Number `json:"bid_size"`
}

// wsOrderbook is the streaming depth snapshot pushed on the websocket.
type wsOrderbook struct {
	Type  string          `json:"type"` // "orderbook"
	Code  string          `json:"code"`
	Units []orderbookUnit `json:"orderbook_units"`
}
