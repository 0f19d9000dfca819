package core

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the category of an exchange-reported error.
type ErrorType int

// Error type constants categorize exchange error codes for programmatic handling.
const (
	// ErrorTypeUnknown indicates an unclassified error.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeRateLimit indicates request weight or order rate was exceeded.
	ErrorTypeRateLimit
	// ErrorTypeAuthentication indicates an invalid key, signature or timestamp.
	ErrorTypeAuthentication
	// ErrorTypeBadRequest indicates invalid request parameters.
	ErrorTypeBadRequest
	// ErrorTypeNotFound indicates the requested order or resource does not exist.
	ErrorTypeNotFound
	// ErrorTypeServerError indicates a server-side error.
	ErrorTypeServerError
	// ErrorTypeInsufficientFunds indicates account lacks required balance.
	ErrorTypeInsufficientFunds
	// ErrorTypeInvalidOrder indicates the order violates exchange rules.
	ErrorTypeInvalidOrder
)

// String returns the string representation of the error type.
func (t ErrorType) String() string {
	names := [...]string{
		"UNKNOWN",
		"RATE_LIMIT",
		"AUTHENTICATION",
		"BAD_REQUEST",
		"NOT_FOUND",
		"SERVER_ERROR",
		"INSUFFICIENT_FUNDS",
		"INVALID_ORDER",
	}
	if t < 0 || int(t) >= len(names) {
		return "UNKNOWN"
	}
	return names[t]
}

// Sentinel errors for client state conditions.
var (
	// ErrClientClosed is returned when attempting to use a closed client.
	ErrClientClosed = errors.New("client is closed")
	// ErrCircuitBreakerOpen is returned when the circuit breaker rejects a call.
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open")
	// ErrNoCredentials is returned when a signed endpoint is called on a public-only client.
	ErrNoCredentials = errors.New("no credentials configured")
)

// APIError is returned when the exchange answers with a non-2xx status.
// Code and Message come from the exchange's {"code","msg"} body when it parses;
// otherwise Code is 0 and Message holds the raw body verbatim.
type APIError struct {
	// StatusCode is the HTTP status code from the response.
	StatusCode int `json:"status_code"`
	// Code is the exchange-defined error code, for example -1003.
	Code int `json:"code"`
	// Message is the exchange-defined error description.
	Message string `json:"message"`
	// Type categorizes Code for programmatic handling.
	Type ErrorType `json:"type"`
	// Body is the raw response body.
	Body []byte `json:"-"`
	// Method and URL identify the request that produced the response.
	Method string `json:"method"`
	URL    string `json:"url"`
	// Timestamp is when the error was classified.
	Timestamp time.Time `json:"timestamp"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status=%d, code=%d): %s", e.StatusCode, e.Code, e.Message)
}

// RequestError is returned when a 2xx response body is not valid JSON.
type RequestError struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Body       []byte `json:"-"`
}

func (e *RequestError) Error() string {
	return "request error: " + e.Message
}

// IntervalError is returned before any network call when a start/end time
// filter spans less than MinInterval.
type IntervalError struct {
	StartTime int64 `json:"start_time"`
	EndTime   int64 `json:"end_time"`
}

// MinInterval is the smallest accepted span between a start and end time filter.
const MinInterval = time.Hour

func (e *IntervalError) Error() string {
	return fmt.Sprintf("interval error: end time %d should be at least %s after start time %d",
		e.EndTime, MinInterval, e.StartTime)
}

// CheckInterval returns an IntervalError when both bounds are set (non-zero)
// and end - start is shorter than MinInterval. Times are epoch milliseconds.
func CheckInterval(startTime, endTime int64) error {
	if startTime == 0 || endTime == 0 {
		return nil
	}
	if endTime-startTime < MinInterval.Milliseconds() {
		return &IntervalError{StartTime: startTime, EndTime: endTime}
	}
	return nil
}

// TransportError is returned when every attempt of a call failed before an
// HTTP response was received. Err is the last transport error observed.
type TransportError struct {
	Method   string `json:"method"`
	URL      string `json:"url"`
	Attempts int    `json:"attempts"`
	Err      error  `json:"-"`
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error after %d attempt(s) (%s %s): %v", e.Attempts, e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsAPIError returns true if err is or wraps an APIError.
func IsAPIError(err error) bool {
	var e *APIError
	return errors.As(err, &e)
}

// IsRequestError returns true if err is or wraps a RequestError.
func IsRequestError(err error) bool {
	var e *RequestError
	return errors.As(err, &e)
}

// IsIntervalError returns true if err is or wraps an IntervalError.
func IsIntervalError(err error) bool {
	var e *IntervalError
	return errors.As(err, &e)
}

// IsTransportError returns true if err is or wraps a TransportError.
// Transport errors have already been retried up to the configured limit.
func IsTransportError(err error) bool {
	var e *TransportError
	return errors.As(err, &e)
}

// IsRateLimitError returns true if the exchange rejected the call for exceeding limits.
// Rate limit errors should be retried after a delay.
func IsRateLimitError(err error) bool {
	var e *APIError
	if errors.As(err, &e) {
		return e.Type == ErrorTypeRateLimit
	}
	return false
}

// IsAuthenticationError returns true if the exchange rejected the key, signature or timestamp.
func IsAuthenticationError(err error) bool {
	var e *APIError
	if errors.As(err, &e) {
		return e.Type == ErrorTypeAuthentication
	}
	return false
}

// IsTerminalError returns true if the error indicates a terminal condition.
// Terminal errors should not be retried as they will not succeed.
func IsTerminalError(err error) bool {
	var e *APIError
	if errors.As(err, &e) {
		return e.Type == ErrorTypeInsufficientFunds ||
			e.Type == ErrorTypeInvalidOrder ||
			e.Type == ErrorTypeNotFound
	}
	return false
}
