package core

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperation_String(t *testing.T) {
	tests := []struct {
		name string
		op   Operation
		want string
	}{
		{"ping", OpPing, "PING"},
		{"klines", OpKlines, "KLINES"},
		{"place_order", OpPlaceOrder, "PLACE_ORDER"},
		{"cancel_open_orders", OpCancelOpenOrders, "CANCEL_OPEN_ORDERS"},
		{"my_trades", OpMyTrades, "MY_TRADES"},
		{"unknown", Operation(99), "UNKNOWN"},
		{"negative", Operation(-1), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.op.String())
		})
	}
}

func TestOperation_Route(t *testing.T) {
	tests := []struct {
		op     Operation
		method string
		path   string
		signed bool
	}{
		{OpPing, http.MethodGet, "/api/v3/ping", false},
		{OpServerTime, http.MethodGet, "/api/v3/time", false},
		{OpHistoricalTrades, http.MethodGet, "/api/v3/historicalTrades", false},
		{OpPlaceOrder, http.MethodPost, "/api/v3/order", true},
		{OpTestOrder, http.MethodPost, "/api/v3/order/test", true},
		{OpGetOrder, http.MethodGet, "/api/v3/order", true},
		{OpCancelOrder, http.MethodDelete, "/api/v3/order", true},
		{OpCancelOpenOrders, http.MethodDelete, "/api/v3/openOrders", true},
		{OpAccount, http.MethodGet, "/api/v3/account", true},
	}

	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			route := tt.op.Route()
			assert.Equal(t, tt.method, route.Method)
			assert.Equal(t, tt.path, route.Path)
			assert.Equal(t, tt.signed, route.Signed)
		})
	}
}

func TestOperations(t *testing.T) {
	ops := Operations()
	assert.Len(t, ops, 21)

	seen := make(map[string]bool)
	for _, op := range ops {
		route := op.Route()
		assert.False(t, seen[route.Name], "duplicate name %s", route.Name)
		seen[route.Name] = true
		assert.True(t, strings.HasPrefix(route.Path, "/api/v3/"))
		assert.Positive(t, route.Weight)
	}
}
