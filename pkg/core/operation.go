package core

import "net/http"

// Operation represents a REST endpoint of the exchange.
type Operation int

// Operation constants define all supported endpoints.
const (
	// OpPing tests connectivity.
	OpPing Operation = iota
	// OpServerTime retrieves the exchange clock.
	OpServerTime
	// OpExchangeInfo retrieves trading rules and symbol information.
	OpExchangeInfo
	// OpOrderBook retrieves the current order book depth.
	OpOrderBook
	// OpRecentTrades retrieves recent trades for a symbol.
	OpRecentTrades
	// OpHistoricalTrades retrieves older trades for a symbol.
	OpHistoricalTrades
	// OpAggTrades retrieves compressed, aggregate trades.
	OpAggTrades
	// OpKlines retrieves candlestick/OHLCV data.
	OpKlines
	// OpAvgPrice retrieves the current average price for a symbol.
	OpAvgPrice
	// OpTicker24hr retrieves 24 hour price change statistics.
	OpTicker24hr
	// OpTickerPrice retrieves the latest price for a symbol or symbols.
	OpTickerPrice
	// OpBookTicker retrieves the best price/qty on the order book.
	OpBookTicker
	// OpPlaceOrder submits a new order.
	OpPlaceOrder
	// OpTestOrder validates a new order without sending it to the matching engine.
	OpTestOrder
	// OpGetOrder retrieves details of a specific order.
	OpGetOrder
	// OpCancelOrder cancels an existing order.
	OpCancelOrder
	// OpOpenOrders retrieves all open orders.
	OpOpenOrders
	// OpCancelOpenOrders cancels all open orders on a symbol.
	OpCancelOpenOrders
	// OpAllOrders retrieves all orders, active, canceled or filled.
	OpAllOrders
	// OpAccount retrieves account information and balances.
	OpAccount
	// OpMyTrades retrieves trades for a specific account and symbol.
	OpMyTrades
)

// Route is the method, path and security of an endpoint.
type Route struct {
	Name   string
	Method string
	Path   string
	Signed bool
	Weight int
}

var routes = [...]Route{
	OpPing:             {"PING", http.MethodGet, "/api/v3/ping", false, 1},
	OpServerTime:       {"SERVER_TIME", http.MethodGet, "/api/v3/time", false, 1},
	OpExchangeInfo:     {"EXCHANGE_INFO", http.MethodGet, "/api/v3/exchangeInfo", false, 20},
	OpOrderBook:        {"ORDER_BOOK", http.MethodGet, "/api/v3/depth", false, 5},
	OpRecentTrades:     {"RECENT_TRADES", http.MethodGet, "/api/v3/trades", false, 25},
	OpHistoricalTrades: {"HISTORICAL_TRADES", http.MethodGet, "/api/v3/historicalTrades", false, 25},
	OpAggTrades:        {"AGG_TRADES", http.MethodGet, "/api/v3/aggTrades", false, 2},
	OpKlines:           {"KLINES", http.MethodGet, "/api/v3/klines", false, 2},
	OpAvgPrice:         {"AVG_PRICE", http.MethodGet, "/api/v3/avgPrice", false, 2},
	OpTicker24hr:       {"TICKER_24HR", http.MethodGet, "/api/v3/ticker/24hr", false, 2},
	OpTickerPrice:      {"TICKER_PRICE", http.MethodGet, "/api/v3/ticker/price", false, 2},
	OpBookTicker:       {"BOOK_TICKER", http.MethodGet, "/api/v3/ticker/bookTicker", false, 2},
	OpPlaceOrder:       {"PLACE_ORDER", http.MethodPost, "/api/v3/order", true, 1},
	OpTestOrder:        {"TEST_ORDER", http.MethodPost, "/api/v3/order/test", true, 1},
	OpGetOrder:         {"GET_ORDER", http.MethodGet, "/api/v3/order", true, 4},
	OpCancelOrder:      {"CANCEL_ORDER", http.MethodDelete, "/api/v3/order", true, 1},
	OpOpenOrders:       {"OPEN_ORDERS", http.MethodGet, "/api/v3/openOrders", true, 6},
	OpCancelOpenOrders: {"CANCEL_OPEN_ORDERS", http.MethodDelete, "/api/v3/openOrders", true, 1},
	OpAllOrders:        {"ALL_ORDERS", http.MethodGet, "/api/v3/allOrders", true, 20},
	OpAccount:          {"ACCOUNT", http.MethodGet, "/api/v3/account", true, 20},
	OpMyTrades:         {"MY_TRADES", http.MethodGet, "/api/v3/myTrades", true, 20},
}

// Route returns the endpoint table entry for the operation.
func (o Operation) Route() Route {
	if o < 0 || int(o) >= len(routes) {
		return Route{Name: "UNKNOWN"}
	}
	return routes[o]
}

// String returns the string representation of the operation.
func (o Operation) String() string {
	return o.Route().Name
}

// Operations returns every known operation in declaration order.
func Operations() []Operation {
	ops := make([]Operation, len(routes))
	for i := range routes {
		ops[i] = Operation(i)
	}
	return ops
}
