package binance

import (
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/apd/v3"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"mbx/pkg/core"
)

var validate = validator.New()

// ParamsBuilder is implemented by every typed parameter struct. Params
// validates the struct and returns the wire parameter set.
type ParamsBuilder interface {
	Params() (core.Params, error)
}

func check(name string, v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("invalid %s params: %w", name, err)
	}
	return nil
}

// TimeRange filters by start and end time in epoch milliseconds. Either bound
// may be zero. When both are set they must be at least core.MinInterval apart.
type TimeRange struct {
	StartTime int64 `validate:"min=0"`
	EndTime   int64 `validate:"min=0"`
}

func (r TimeRange) apply(p core.Params) error {
	if err := core.CheckInterval(r.StartTime, r.EndTime); err != nil {
		return err
	}
	p.SetIf(r.StartTime > 0, "startTime", r.StartTime)
	p.SetIf(r.EndTime > 0, "endTime", r.EndTime)
	return nil
}

// SymbolParams selects a single symbol.
type SymbolParams struct {
	Symbol string `validate:"required"`
}

func (s SymbolParams) Params() (core.Params, error) {
	if err := check("symbol", s); err != nil {
		return nil, err
	}
	return core.Params{"symbol": s.Symbol}, nil
}

// SymbolsParams selects one symbol, a list of symbols, or all of them when
// both are empty.
type SymbolsParams struct {
	Symbol  string   `validate:"excluded_with=Symbols"`
	Symbols []string `validate:"omitempty,dive,required"`
}

func (s SymbolsParams) Params() (core.Params, error) {
	if err := check("symbols", s); err != nil {
		return nil, err
	}
	p := core.Params{}
	p.SetIf(s.Symbol != "", "symbol", s.Symbol)
	if len(s.Symbols) > 0 {
		list, err := sonic.MarshalString(s.Symbols)
		if err != nil {
			return nil, fmt.Errorf("encode symbols: %w", err)
		}
		p.Set("symbols", list)
	}
	return p, nil
}

type DepthParams struct {
	Symbol string `validate:"required"`
	Limit  int    `validate:"omitempty,min=1,max=5000"`
}

func (d DepthParams) Params() (core.Params, error) {
	if err := check("depth", d); err != nil {
		return nil, err
	}
	return core.Params{"symbol": d.Symbol}.SetIf(d.Limit > 0, "limit", d.Limit), nil
}

type TradesParams struct {
	Symbol string `validate:"required"`
	Limit  int    `validate:"omitempty,min=1,max=1000"`
}

func (t TradesParams) Params() (core.Params, error) {
	if err := check("trades", t); err != nil {
		return nil, err
	}
	return core.Params{"symbol": t.Symbol}.SetIf(t.Limit > 0, "limit", t.Limit), nil
}

// HistoricalTradesParams pages through older trades. The endpoint requires an API key header.
type HistoricalTradesParams struct {
	Symbol string `validate:"required"`
	Limit  int    `validate:"omitempty,min=1,max=1000"`
	FromID int64  `validate:"min=0"`
}

func (h HistoricalTradesParams) Params() (core.Params, error) {
	if err := check("historical trades", h); err != nil {
		return nil, err
	}
	return core.Params{"symbol": h.Symbol}.
		SetIf(h.Limit > 0, "limit", h.Limit).
		SetIf(h.FromID > 0, "fromId", h.FromID), nil
}

type AggTradesParams struct {
	Symbol string `validate:"required"`
	FromID int64  `validate:"min=0"`
	Limit  int    `validate:"omitempty,min=1,max=1000"`
	TimeRange
}

func (a AggTradesParams) Params() (core.Params, error) {
	if err := check("aggregate trades", a); err != nil {
		return nil, err
	}
	p := core.Params{"symbol": a.Symbol}.
		SetIf(a.FromID > 0, "fromId", a.FromID).
		SetIf(a.Limit > 0, "limit", a.Limit)
	if err := a.TimeRange.apply(p); err != nil {
		return nil, err
	}
	return p, nil
}

type KlinesParams struct {
	Symbol   string `validate:"required"`
	Interval string `validate:"required,kline_interval"`
	Limit    int    `validate:"omitempty,min=1,max=1000"`
	TimeRange
}

func (k KlinesParams) Params() (core.Params, error) {
	if err := check("klines", k); err != nil {
		return nil, err
	}
	p := core.Params{"symbol": k.Symbol, "interval": k.Interval}.
		SetIf(k.Limit > 0, "limit", k.Limit)
	if err := k.TimeRange.apply(p); err != nil {
		return nil, err
	}
	return p, nil
}

func init() {
	_ = validate.RegisterValidation("kline_interval", func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		for _, iv := range core.KlineIntervals {
			if v == iv {
				return true
			}
		}
		return false
	})
}

// OrderParams describes a new order. Quantities and prices are decimals so
// they reach the wire exactly as given. NewClientOrderID defaults to a random
// UUID, which keeps a retried submission from creating a second order.
type OrderParams struct {
	Symbol           string                 `validate:"required"`
	Side             core.OrderSide         `validate:"required,oneof=BUY SELL"`
	Type             core.OrderType         `validate:"required,oneof=LIMIT MARKET STOP_LOSS STOP_LOSS_LIMIT TAKE_PROFIT TAKE_PROFIT_LIMIT LIMIT_MAKER"`
	TimeInForce      core.TimeInForce       `validate:"omitempty,oneof=GTC IOC FOK"`
	Quantity         *apd.Decimal
	QuoteOrderQty    *apd.Decimal
	Price            *apd.Decimal
	StopPrice        *apd.Decimal
	IcebergQty       *apd.Decimal
	NewClientOrderID string                 `validate:"omitempty,max=36"`
	NewOrderRespType core.OrderResponseType `validate:"omitempty,oneof=ACK RESULT FULL"`
	RecvWindow       int64                  `validate:"min=0"`
}

var errNonPositive = errors.New("must be positive")

func (o OrderParams) Params() (core.Params, error) {
	if err := check("order", o); err != nil {
		return nil, err
	}
	if (o.Quantity == nil) == (o.QuoteOrderQty == nil) {
		return nil, errors.New("invalid order params: exactly one of Quantity and QuoteOrderQty is required")
	}
	if o.Type.NeedsPrice() && o.Price == nil {
		return nil, fmt.Errorf("invalid order params: %s order requires Price", o.Type)
	}
	if o.Type.NeedsStopPrice() && o.StopPrice == nil {
		return nil, fmt.Errorf("invalid order params: %s order requires StopPrice", o.Type)
	}
	if o.Type.NeedsTimeInForce() && o.TimeInForce == "" {
		return nil, fmt.Errorf("invalid order params: %s order requires TimeInForce", o.Type)
	}
	if o.QuoteOrderQty != nil && o.Type != core.TypeMarket {
		return nil, errors.New("invalid order params: QuoteOrderQty is only valid for MARKET orders")
	}
	for _, f := range []struct {
		name  string
		value *apd.Decimal
	}{
		{"Quantity", o.Quantity},
		{"QuoteOrderQty", o.QuoteOrderQty},
		{"Price", o.Price},
		{"StopPrice", o.StopPrice},
		{"IcebergQty", o.IcebergQty},
	} {
		if f.value != nil && f.value.Sign() <= 0 {
			return nil, fmt.Errorf("invalid order params: %s %w", f.name, errNonPositive)
		}
	}

	clientID := o.NewClientOrderID
	if clientID == "" {
		clientID = uuid.New().String()
	}

	p := core.Params{
		"symbol":           o.Symbol,
		"side":             o.Side,
		"type":             o.Type,
		"newClientOrderId": clientID,
	}
	p.SetIf(o.TimeInForce != "", "timeInForce", o.TimeInForce).
		SetIf(o.Quantity != nil, "quantity", o.Quantity).
		SetIf(o.QuoteOrderQty != nil, "quoteOrderQty", o.QuoteOrderQty).
		SetIf(o.Price != nil, "price", o.Price).
		SetIf(o.StopPrice != nil, "stopPrice", o.StopPrice).
		SetIf(o.IcebergQty != nil, "icebergQty", o.IcebergQty).
		SetIf(o.NewOrderRespType != "", "newOrderRespType", o.NewOrderRespType).
		SetIf(o.RecvWindow > 0, core.RecvWindowKey, o.RecvWindow)
	return p, nil
}

// OrderQuery identifies one order by exchange ID or by client order ID.
type OrderQuery struct {
	Symbol            string `validate:"required"`
	OrderID           int64  `validate:"required_without=OrigClientOrderID,min=0"`
	OrigClientOrderID string `validate:"required_without=OrderID"`
	RecvWindow        int64  `validate:"min=0"`
}

func (q OrderQuery) Params() (core.Params, error) {
	if err := check("order query", q); err != nil {
		return nil, err
	}
	return q.params(), nil
}

func (q OrderQuery) params() core.Params {
	return core.Params{"symbol": q.Symbol}.
		SetIf(q.OrderID > 0, "orderId", q.OrderID).
		SetIf(q.OrigClientOrderID != "", "origClientOrderId", q.OrigClientOrderID).
		SetIf(q.RecvWindow > 0, core.RecvWindowKey, q.RecvWindow)
}

// CancelOrderParams identifies the order to cancel. NewClientOrderID names
// the cancellation itself.
type CancelOrderParams struct {
	OrderQuery
	NewClientOrderID string `validate:"omitempty,max=36"`
}

func (c CancelOrderParams) Params() (core.Params, error) {
	if err := check("cancel order", c); err != nil {
		return nil, err
	}
	return c.OrderQuery.params().SetIf(c.NewClientOrderID != "", "newClientOrderId", c.NewClientOrderID), nil
}

// OpenOrdersParams lists open orders of one symbol, or of all symbols when Symbol is empty.
type OpenOrdersParams struct {
	Symbol     string
	RecvWindow int64 `validate:"min=0"`
}

func (o OpenOrdersParams) Params() (core.Params, error) {
	if err := check("open orders", o); err != nil {
		return nil, err
	}
	return core.Params{}.
		SetIf(o.Symbol != "", "symbol", o.Symbol).
		SetIf(o.RecvWindow > 0, core.RecvWindowKey, o.RecvWindow), nil
}

type CancelOpenOrdersParams struct {
	Symbol     string `validate:"required"`
	RecvWindow int64  `validate:"min=0"`
}

func (c CancelOpenOrdersParams) Params() (core.Params, error) {
	if err := check("cancel open orders", c); err != nil {
		return nil, err
	}
	return core.Params{"symbol": c.Symbol}.SetIf(c.RecvWindow > 0, core.RecvWindowKey, c.RecvWindow), nil
}

type AllOrdersParams struct {
	Symbol     string `validate:"required"`
	OrderID    int64  `validate:"min=0"`
	Limit      int    `validate:"omitempty,min=1,max=1000"`
	RecvWindow int64  `validate:"min=0"`
	TimeRange
}

func (a AllOrdersParams) Params() (core.Params, error) {
	if err := check("all orders", a); err != nil {
		return nil, err
	}
	p := core.Params{"symbol": a.Symbol}.
		SetIf(a.OrderID > 0, "orderId", a.OrderID).
		SetIf(a.Limit > 0, "limit", a.Limit).
		SetIf(a.RecvWindow > 0, core.RecvWindowKey, a.RecvWindow)
	if err := a.TimeRange.apply(p); err != nil {
		return nil, err
	}
	return p, nil
}

type AccountParams struct {
	RecvWindow int64 `validate:"min=0"`
}

func (a AccountParams) Params() (core.Params, error) {
	if err := check("account", a); err != nil {
		return nil, err
	}
	return core.Params{}.SetIf(a.RecvWindow > 0, core.RecvWindowKey, a.RecvWindow), nil
}

type MyTradesParams struct {
	Symbol     string `validate:"required"`
	OrderID    int64  `validate:"min=0"`
	FromID     int64  `validate:"min=0"`
	Limit      int    `validate:"omitempty,min=1,max=1000"`
	RecvWindow int64  `validate:"min=0"`
	TimeRange
}

func (m MyTradesParams) Params() (core.Params, error) {
	if err := check("my trades", m); err != nil {
		return nil, err
	}
	p := core.Params{"symbol": m.Symbol}.
		SetIf(m.OrderID > 0, "orderId", m.OrderID).
		SetIf(m.FromID > 0, "fromId", m.FromID).
		SetIf(m.Limit > 0, "limit", m.Limit).
		SetIf(m.RecvWindow > 0, core.RecvWindowKey, m.RecvWindow)
	if err := m.TimeRange.apply(p); err != nil {
		return nil, err
	}
	return p, nil
}
