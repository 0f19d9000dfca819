package core

import "strings"

// OrderSide is the direction of an order.
type OrderSide string

const (
	SideBuy  OrderSide = "BUY"
	SideSell OrderSide = "SELL"
)

func (s OrderSide) String() string {
	return string(s)
}

// OrderType selects how an order executes.
type OrderType string

// Order types accepted by the spot API.
const (
	TypeLimit           OrderType = "LIMIT"
	TypeMarket          OrderType = "MARKET"
	TypeStopLoss        OrderType = "STOP_LOSS"
	TypeStopLossLimit   OrderType = "STOP_LOSS_LIMIT"
	TypeTakeProfit      OrderType = "TAKE_PROFIT"
	TypeTakeProfitLimit OrderType = "TAKE_PROFIT_LIMIT"
	TypeLimitMaker      OrderType = "LIMIT_MAKER"
)

func (t OrderType) String() string {
	return string(t)
}

// NeedsPrice reports whether orders of this type must carry a limit price.
func (t OrderType) NeedsPrice() bool {
	switch t {
	case TypeLimit, TypeStopLossLimit, TypeTakeProfitLimit, TypeLimitMaker:
		return true
	}
	return false
}

// NeedsStopPrice reports whether orders of this type must carry a trigger price.
func (t OrderType) NeedsStopPrice() bool {
	switch t {
	case TypeStopLoss, TypeStopLossLimit, TypeTakeProfit, TypeTakeProfitLimit:
		return true
	}
	return false
}

// NeedsTimeInForce reports whether orders of this type must carry a TimeInForce.
func (t OrderType) NeedsTimeInForce() bool {
	switch t {
	case TypeLimit, TypeStopLossLimit, TypeTakeProfitLimit:
		return true
	}
	return false
}

// TimeInForce defines how long an order remains active.
type TimeInForce string

const (
	// GTC keeps the order active until filled or canceled.
	GTC TimeInForce = "GTC"
	// IOC fills what it can immediately and cancels the rest.
	IOC TimeInForce = "IOC"
	// FOK fills completely and immediately or not at all.
	FOK TimeInForce = "FOK"
)

func (t TimeInForce) String() string {
	return string(t)
}

// OrderResponseType selects how much detail the order endpoint returns.
type OrderResponseType string

const (
	ResponseAck    OrderResponseType = "ACK"
	ResponseResult OrderResponseType = "RESULT"
	ResponseFull   OrderResponseType = "FULL"
)

func (t OrderResponseType) String() string {
	return string(t)
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusNew             OrderStatus = "NEW"
	StatusPartiallyFilled OrderStatus = "PARTIALLY_FILLED"
	StatusFilled          OrderStatus = "FILLED"
	StatusCanceled        OrderStatus = "CANCELED"
	StatusPendingCancel   OrderStatus = "PENDING_CANCEL"
	StatusRejected        OrderStatus = "REJECTED"
	StatusExpired         OrderStatus = "EXPIRED"
)

// IsTerminal returns true if the order can no longer change.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusFilled || s == StatusCanceled || s == StatusRejected || s == StatusExpired
}

// KlineIntervals lists the candlestick intervals accepted by the klines endpoint.
var KlineIntervals = []string{
	"1s", "1m", "3m", "5m", "15m", "30m",
	"1h", "2h", "4h", "6h", "8h", "12h",
	"1d", "3d", "1w", "1M",
}

// ServerTime is the body of the time endpoint.
type ServerTime struct {
	ServerTime int64 `json:"serverTime"`
}

// RateLimit is one limit rule announced by exchangeInfo.
type RateLimit struct {
	RateLimitType string `json:"rateLimitType"`
	Interval      string `json:"interval"`
	IntervalNum   int    `json:"intervalNum"`
	Limit         int    `json:"limit"`
}

// ExchangeInfo is the part of the exchangeInfo body the client interprets.
type ExchangeInfo struct {
	Timezone   string       `json:"timezone"`
	ServerTime int64        `json:"serverTime"`
	RateLimits []RateLimit  `json:"rateLimits"`
	Symbols    []SymbolInfo `json:"symbols"`
}

// Symbol returns the entry for symbol, compared case-insensitively.
func (e *ExchangeInfo) Symbol(symbol string) (*SymbolInfo, bool) {
	symbol = strings.ToUpper(symbol)
	for i := range e.Symbols {
		if e.Symbols[i].Symbol == symbol {
			return &e.Symbols[i], true
		}
	}
	return nil, false
}

// SymbolInfo describes the trading rules of one symbol. Filters are kept as
// decoded JSON objects since their fields depend on filterType.
type SymbolInfo struct {
	Symbol              string           `json:"symbol"`
	Status              string           `json:"status"`
	BaseAsset           string           `json:"baseAsset"`
	BaseAssetPrecision  int              `json:"baseAssetPrecision"`
	QuoteAsset          string           `json:"quoteAsset"`
	QuoteAssetPrecision int              `json:"quoteAssetPrecision"`
	OrderTypes          []OrderType      `json:"orderTypes"`
	IcebergAllowed      bool             `json:"icebergAllowed"`
	Filters             []map[string]any `json:"filters"`
}

// Filter returns the first filter of the given filterType.
func (s *SymbolInfo) Filter(filterType string) (map[string]any, bool) {
	for _, f := range s.Filters {
		if f["filterType"] == filterType {
			return f, true
		}
	}
	return nil, false
}
