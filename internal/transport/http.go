// Package transport sends REST calls over HTTP and retries transport failures.
package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"resty.dev/v3"

	"mbx/pkg/core"
)

// Call is one HTTP exchange. Query is sent verbatim as the raw query string so
// that the bytes on the wire are the bytes that were signed.
type Call struct {
	Method  string
	URL     string
	Query   string
	// BuildQuery, when set, is called before every attempt and replaces Query.
	BuildQuery func() string
	Headers    map[string]string
	// Timeout bounds a single attempt. Zero means no per-attempt bound.
	Timeout time.Duration
}

// Target returns the URL with the query string attached.
func (c *Call) Target() string {
	if c.Query == "" {
		return c.URL
	}
	return c.URL + "?" + c.Query
}

// Response represents an HTTP response with its status code, body, and headers.
type Response struct {
	// StatusCode is the HTTP status code returned by the server.
	StatusCode int

	// Body contains the raw response body bytes.
	Body []byte

	// Headers contains the first value of each response header, keyed canonically.
	Headers map[string]string
}

// IsSuccess returns true if the response status code indicates success (2xx).
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsError returns true if the response status code indicates an error (4xx or 5xx).
func (r *Response) IsError() bool {
	return r.StatusCode >= http.StatusBadRequest
}

// Unmarshal parses the response body into the provided value using sonic.
func (r *Response) Unmarshal(v any) error {
	return sonic.Unmarshal(r.Body, v)
}

// Doer performs a single attempt of a call. It returns an error only when no
// HTTP response was received; any status code is a successful Do.
type Doer interface {
	Do(ctx context.Context, call *Call) (*Response, error)
}

// Config configures the resty-backed Client.
type Config struct {
	// ProxyURL routes HTTP and HTTPS traffic through a forward proxy when set.
	ProxyURL  string            `validate:"omitempty,url"`
	UserAgent string            `validate:"omitempty"`
	Headers   map[string]string `validate:"omitempty"`
	// Timeout caps any single request at the client level. Zero leaves it to the per-call timeout.
	Timeout time.Duration `validate:"min=0"`
}

// Client wraps a resty HTTP client with logging. It sends directly or through
// the configured proxy and never retries on its own.
type Client struct {
	client *resty.Client
	logger zerolog.Logger
	mu     sync.RWMutex
	closed bool
}

// NewClient creates a Client from config. Requests and responses are logged at debug level.
func NewClient(config *Config, logger zerolog.Logger) (*Client, error) {
	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid transport config: %w", err)
	}

	client := resty.New()
	client.SetRetryCount(0)
	if config.Timeout > 0 {
		client.SetTimeout(config.Timeout)
	}
	if config.ProxyURL != "" {
		client.SetProxy(config.ProxyURL)
	}
	client.SetHeader("Accept", "application/json")
	if config.UserAgent != "" {
		client.SetHeader("User-Agent", config.UserAgent)
	}
	for k, v := range config.Headers {
		client.SetHeader(k, v)
	}

	client.AddContentTypeEncoder("application/json", func(w io.Writer, v any) error {
		data, err := sonic.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	})
	client.AddContentTypeDecoder("application/json", func(r io.Reader, v any) error {
		data, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		return sonic.Unmarshal(data, v)
	})

	client.AddRequestMiddleware(func(_ *resty.Client, req *resty.Request) error {
		logger.Debug().
			Str("method", req.Method).
			Str("url", req.URL).
			Msg("http request")
		return nil
	})

	client.AddResponseMiddleware(func(_ *resty.Client, resp *resty.Response) error {
		logger.Debug().
			Str("method", resp.Request.Method).
			Str("url", resp.Request.URL).
			Int("status", resp.StatusCode()).
			Int("size", len(resp.Bytes())).
			Msg("http response")
		return nil
	})

	return &Client{
		client: client,
		logger: logger,
	}, nil
}

// Do executes one attempt of call.
func (c *Client) Do(ctx context.Context, call *Call) (*Response, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, core.ErrClientClosed
	}

	switch call.Method {
	case http.MethodGet, http.MethodPost, http.MethodDelete:
	default:
		return nil, fmt.Errorf("unsupported http method: %s", call.Method)
	}

	req := c.client.R().SetContext(ctx)
	for k, v := range call.Headers {
		req.SetHeader(k, v)
	}

	resp, err := req.Execute(call.Method, call.Target())
	if err != nil {
		return nil, fmt.Errorf("http %s: %w", call.Method, err)
	}

	headers := make(map[string]string, len(resp.Header()))
	for k, v := range resp.Header() {
		if len(v) > 0 {
			headers[http.CanonicalHeaderKey(k)] = v[0]
		}
	}

	return &Response{
		StatusCode: resp.StatusCode(),
		Body:       resp.Bytes(),
		Headers:    headers,
	}, nil
}

// Close releases idle connections. Calls made after Close fail with core.ErrClientClosed.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.client.Close()
}
