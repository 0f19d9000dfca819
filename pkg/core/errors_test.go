package core

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestErrorType_String(t *testing.T) {
	tests := []struct {
		name      string
		errorType ErrorType
		want      string
	}{
		{"unknown", ErrorTypeUnknown, "UNKNOWN"},
		{"rate_limit", ErrorTypeRateLimit, "RATE_LIMIT"},
		{"authentication", ErrorTypeAuthentication, "AUTHENTICATION"},
		{"bad_request", ErrorTypeBadRequest, "BAD_REQUEST"},
		{"not_found", ErrorTypeNotFound, "NOT_FOUND"},
		{"server_error", ErrorTypeServerError, "SERVER_ERROR"},
		{"insufficient_funds", ErrorTypeInsufficientFunds, "INSUFFICIENT_FUNDS"},
		{"invalid_order", ErrorTypeInvalidOrder, "INVALID_ORDER"},
		{"out_of_range", ErrorType(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.errorType.String())
		})
	}
}

func TestAPIError_Error(t *testing.T) {
	err := &APIError{StatusCode: 418, Code: -1003, Message: "Too much request weight used"}
	assert.Equal(t, "api error (status=418, code=-1003): Too much request weight used", err.Error())
}

func TestRequestError_Error(t *testing.T) {
	err := &RequestError{StatusCode: 200, Message: "invalid response: <html>"}
	assert.Equal(t, "request error: invalid response: <html>", err.Error())
}

func TestTransportError(t *testing.T) {
	err := &TransportError{Method: http.MethodGet, URL: "https://api.binance.com/api/v3/ping", Attempts: 7, Err: io.EOF}

	assert.Contains(t, err.Error(), "7 attempt(s)")
	assert.ErrorIs(t, err, io.EOF)
	assert.True(t, IsTransportError(fmt.Errorf("wrapped: %w", err)))
}

func TestCheckInterval(t *testing.T) {
	hour := time.Hour.Milliseconds()

	tests := []struct {
		name    string
		start   int64
		end     int64
		wantErr bool
	}{
		{"both unset", 0, 0, false},
		{"start only", 1000, 0, false},
		{"end only", 0, 1000, false},
		{"one hour", 1000, 1000 + hour, false},
		{"more than an hour", 1000, 1000 + 2*hour, false},
		{"one ms short", 1000, 999 + hour, true},
		{"equal", 1000, 1000, true},
		{"end before start", 1000 + hour, 1000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckInterval(tt.start, tt.end)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var intervalErr *IntervalError
			assert.ErrorAs(t, err, &intervalErr)
			assert.Equal(t, tt.start, intervalErr.StartTime)
			assert.Equal(t, tt.end, intervalErr.EndTime)
			assert.Contains(t, err.Error(), "1h0m0s")
		})
	}
}

func TestErrorHelpers(t *testing.T) {
	rateLimited := &APIError{StatusCode: 429, Code: CodeTooManyRequests, Type: ErrorTypeRateLimit}
	badSig := &APIError{StatusCode: 400, Code: CodeInvalidSignature, Type: ErrorTypeAuthentication}
	noOrder := &APIError{StatusCode: 400, Code: CodeNoSuchOrder, Type: ErrorTypeNotFound}
	server := &APIError{StatusCode: 503, Type: ErrorTypeServerError}

	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"api", rateLimited, IsAPIError, true},
		{"api wrapped", fmt.Errorf("call: %w", rateLimited), IsAPIError, true},
		{"api on request error", &RequestError{}, IsAPIError, false},
		{"request", &RequestError{}, IsRequestError, true},
		{"interval", &IntervalError{}, IsIntervalError, true},
		{"interval on nil", nil, IsIntervalError, false},
		{"rate limit", rateLimited, IsRateLimitError, true},
		{"rate limit on auth", badSig, IsRateLimitError, false},
		{"auth", badSig, IsAuthenticationError, true},
		{"auth on plain", errors.New("x"), IsAuthenticationError, false},
		{"terminal not found", noOrder, IsTerminalError, true},
		{"terminal server", server, IsTerminalError, false},
		{"transport", &TransportError{Err: io.EOF}, IsTransportError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.check(tt.err))
		})
	}
}

func TestClassifyCode(t *testing.T) {
	tests := []struct {
		name   string
		code   int
		status int
		want   ErrorType
	}{
		{"too many requests", CodeTooManyRequests, 429, ErrorTypeRateLimit},
		{"too many orders", CodeTooManyOrders, 429, ErrorTypeRateLimit},
		{"ip banned without code", 0, http.StatusTeapot, ErrorTypeRateLimit},
		{"timestamp outside window", CodeInvalidTimestamp, 400, ErrorTypeAuthentication},
		{"bad signature", CodeInvalidSignature, 400, ErrorTypeAuthentication},
		{"rejected key", CodeRejectedAPIKey, 401, ErrorTypeAuthentication},
		{"insufficient balance", CodeNewOrderRejected, 400, ErrorTypeInsufficientFunds},
		{"no such order", CodeNoSuchOrder, 400, ErrorTypeNotFound},
		{"cancel rejected", CodeCancelRejected, 400, ErrorTypeInvalidOrder},
		{"unknown error", CodeUnknown, 500, ErrorTypeServerError},
		{"disconnected", CodeDisconnected, 503, ErrorTypeServerError},
		{"illegal chars", -1100, 400, ErrorTypeBadRequest},
		{"bad interval", -1120, 400, ErrorTypeBadRequest},
		{"other order error", -2026, 400, ErrorTypeInvalidOrder},
		{"forbidden", 0, http.StatusForbidden, ErrorTypeAuthentication},
		{"not found", 0, http.StatusNotFound, ErrorTypeNotFound},
		{"gateway", 0, http.StatusBadGateway, ErrorTypeServerError},
		{"generic 4xx", 0, http.StatusConflict, ErrorTypeBadRequest},
		{"unclassified code falls back to status", -9999, 500, ErrorTypeServerError},
		{"nothing known", 0, 302, ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyCode(tt.code, tt.status))
		})
	}
}
