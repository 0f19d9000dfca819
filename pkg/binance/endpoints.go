package binance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mbx/pkg/core"
)

// ErrSymbolNotFound is returned by GetSymbolInfo for a symbol the exchange does not list.
var ErrSymbolNotFound = errors.New("symbol not found")

func (c *Client) invoke(ctx context.Context, op core.Operation, b ParamsBuilder) (*core.Payload, error) {
	return c.invokeWeighted(ctx, op, b, nil)
}

// invokeWeighted builds the parameters of b and, when weight is set, charges
// the rate limiter with the weight it derives from them instead of the route default.
func (c *Client) invokeWeighted(ctx context.Context, op core.Operation, b ParamsBuilder, weight func(core.Params) int) (*core.Payload, error) {
	params, err := b.Params()
	if err != nil {
		return nil, c.fail(op.String(), err)
	}
	req := core.NewRouteRequest(op).SetQueryParams(params)
	if weight != nil {
		req.SetWeight(weight(params))
	}
	return c.do(ctx, op.String(), req)
}

func depthWeight(p core.Params) int {
	limit, _ := p["limit"].(int)
	switch {
	case limit <= 100:
		return 5
	case limit <= 500:
		return 25
	case limit <= 1000:
		return 50
	default:
		return 250
	}
}

// allSymbolsWeight charges heavy when no symbol narrows the request.
func allSymbolsWeight(single, all int) func(core.Params) int {
	return func(p core.Params) int {
		if _, ok := p["symbol"]; ok {
			return single
		}
		return all
	}
}

// Ping tests connectivity to the REST API.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.call(ctx, core.OpPing, nil)
	return err
}

// ServerTime returns the exchange clock.
func (c *Client) ServerTime(ctx context.Context) (time.Time, error) {
	payload, err := c.call(ctx, core.OpServerTime, nil)
	if err != nil {
		return time.Time{}, err
	}
	var st core.ServerTime
	if err := payload.Decode(&st); err != nil {
		return time.Time{}, c.fail(core.OpServerTime.String(), fmt.Errorf("decode server time: %w", err))
	}
	return time.UnixMilli(st.ServerTime), nil
}

// SyncTime measures the offset between the exchange clock and the local one
// and applies it to the timestamps of later signed requests.
func (c *Client) SyncTime(ctx context.Context) (time.Duration, error) {
	before := c.now()
	serverTime, err := c.ServerTime(ctx)
	if err != nil {
		return 0, err
	}
	after := c.now()

	local := before.Add(after.Sub(before) / 2)
	offset := serverTime.Sub(local).Milliseconds()
	c.offset.Store(offset)

	c.logger.Debug().
		Int64("offset_ms", offset).
		Dur("round_trip", after.Sub(before)).
		Msg("server time synchronized")
	return time.Duration(offset) * time.Millisecond, nil
}

// ExchangeInfo returns trading rules and symbol information.
func (c *Client) ExchangeInfo(ctx context.Context, p SymbolsParams) (*core.Payload, error) {
	return c.invoke(ctx, core.OpExchangeInfo, p)
}

// GetSymbolInfo returns the exchangeInfo entry for symbol, compared case-insensitively.
func (c *Client) GetSymbolInfo(ctx context.Context, symbol string) (*core.SymbolInfo, error) {
	payload, err := c.ExchangeInfo(ctx, SymbolsParams{})
	if err != nil {
		return nil, err
	}
	var info core.ExchangeInfo
	if err := payload.Decode(&info); err != nil {
		return nil, c.fail(core.OpExchangeInfo.String(), fmt.Errorf("decode exchange info: %w", err))
	}
	s, ok := info.Symbol(symbol)
	if !ok {
		return nil, fmt.Errorf("%s: %w", symbol, ErrSymbolNotFound)
	}
	return s, nil
}

func (c *Client) OrderBook(ctx context.Context, p DepthParams) (*core.Payload, error) {
	return c.invokeWeighted(ctx, core.OpOrderBook, p, depthWeight)
}

func (c *Client) RecentTrades(ctx context.Context, p TradesParams) (*core.Payload, error) {
	return c.invoke(ctx, core.OpRecentTrades, p)
}

func (c *Client) HistoricalTrades(ctx context.Context, p HistoricalTradesParams) (*core.Payload, error) {
	return c.invoke(ctx, core.OpHistoricalTrades, p)
}

// AggTrades returns compressed trades. A time range shorter than an hour
// fails with *core.IntervalError before anything is sent.
func (c *Client) AggTrades(ctx context.Context, p AggTradesParams) (*core.Payload, error) {
	return c.invoke(ctx, core.OpAggTrades, p)
}

// Klines returns candlesticks. A time range shorter than an hour fails with
// *core.IntervalError before anything is sent.
func (c *Client) Klines(ctx context.Context, p KlinesParams) (*core.Payload, error) {
	return c.invoke(ctx, core.OpKlines, p)
}

func (c *Client) AvgPrice(ctx context.Context, p SymbolParams) (*core.Payload, error) {
	return c.invoke(ctx, core.OpAvgPrice, p)
}

func (c *Client) Ticker24hr(ctx context.Context, p SymbolsParams) (*core.Payload, error) {
	return c.invokeWeighted(ctx, core.OpTicker24hr, p, allSymbolsWeight(2, 80))
}

func (c *Client) TickerPrice(ctx context.Context, p SymbolsParams) (*core.Payload, error) {
	return c.invokeWeighted(ctx, core.OpTickerPrice, p, allSymbolsWeight(2, 4))
}

func (c *Client) BookTicker(ctx context.Context, p SymbolsParams) (*core.Payload, error) {
	return c.invokeWeighted(ctx, core.OpBookTicker, p, allSymbolsWeight(2, 4))
}

// PlaceOrder submits a new order.
func (c *Client) PlaceOrder(ctx context.Context, p OrderParams) (*core.Payload, error) {
	return c.invoke(ctx, core.OpPlaceOrder, p)
}

// TestOrder validates an order without sending it to the matching engine.
func (c *Client) TestOrder(ctx context.Context, p OrderParams) (*core.Payload, error) {
	return c.invoke(ctx, core.OpTestOrder, p)
}

func (c *Client) GetOrder(ctx context.Context, p OrderQuery) (*core.Payload, error) {
	return c.invoke(ctx, core.OpGetOrder, p)
}

func (c *Client) CancelOrder(ctx context.Context, p CancelOrderParams) (*core.Payload, error) {
	return c.invoke(ctx, core.OpCancelOrder, p)
}

func (c *Client) OpenOrders(ctx context.Context, p OpenOrdersParams) (*core.Payload, error) {
	return c.invokeWeighted(ctx, core.OpOpenOrders, p, allSymbolsWeight(6, 80))
}

// CancelOpenOrders cancels every open order on a symbol.
func (c *Client) CancelOpenOrders(ctx context.Context, p CancelOpenOrdersParams) (*core.Payload, error) {
	return c.invoke(ctx, core.OpCancelOpenOrders, p)
}

// AllOrders returns active, canceled and filled orders of a symbol.
func (c *Client) AllOrders(ctx context.Context, p AllOrdersParams) (*core.Payload, error) {
	return c.invoke(ctx, core.OpAllOrders, p)
}

func (c *Client) Account(ctx context.Context, p AccountParams) (*core.Payload, error) {
	return c.invoke(ctx, core.OpAccount, p)
}

func (c *Client) MyTrades(ctx context.Context, p MyTradesParams) (*core.Payload, error) {
	return c.invoke(ctx, core.OpMyTrades, p)
}
