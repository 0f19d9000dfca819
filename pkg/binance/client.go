package binance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"mbx/internal/canonical"
	"mbx/internal/circuitbreaker"
	"mbx/internal/ratelimit"
	"mbx/internal/response"
	"mbx/internal/retry"
	"mbx/internal/signer"
	"mbx/internal/transport"
	"mbx/pkg/core"
)

// APIKeyHeader carries the API key on every request of a client with credentials.
const APIKeyHeader = "X-MBX-APIKEY"

// Client is a Binance spot REST client. It is safe for concurrent use.
type Client struct {
	config   *core.Config
	creds    *core.Credentials
	signer   *signer.Signer
	http     *transport.Client
	executor *transport.Executor
	limiter  *ratelimit.Limiter
	breaker  *circuitbreaker.Breaker
	logger   zerolog.Logger
	now      func() time.Time
	// offset is server time minus local time, in milliseconds.
	offset atomic.Int64
}

// Option is a functional option for configuring the Client.
type Option func(*Options)

// Options holds configuration options for the Client.
type Options struct {
	Logger zerolog.Logger
	Doer   transport.Doer
	Clock  func() time.Time
}

// WithLogger returns an option that sets the logger for the client.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithDoer replaces the resty transport with d. Proxy, user agent and
// timeout settings of the config are then up to d.
func WithDoer(d transport.Doer) Option {
	return func(o *Options) {
		o.Doer = d
	}
}

// WithClock sets the local time source used for request timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Options) {
		o.Clock = now
	}
}

// New creates a Client from config. A config without credentials yields a
// public-only client whose signed calls fail with core.ErrNoCredentials.
func New(config *core.Config, opts ...Option) (*Client, error) {
	if config == nil {
		config = core.DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	options := &Options{
		Logger: zerolog.Nop(),
		Clock:  time.Now,
	}
	for _, opt := range opts {
		opt(options)
	}

	c := &Client{
		config: config,
		logger: options.Logger.With().Str("component", "binance").Logger(),
		now:    options.Clock,
	}

	if config.Credentials != nil {
		creds := *config.Credentials
		c.creds = &creds
		s, err := signer.New(creds.SecretKey,
			signer.WithRecvWindow(config.RecvWindow),
			signer.WithClock(c.serverNow),
		)
		if err != nil {
			return nil, fmt.Errorf("create signer: %w", err)
		}
		c.signer = s
	}

	doer := options.Doer
	if doer == nil {
		httpClient, err := transport.NewClient(&transport.Config{
			ProxyURL:  config.ProxyURL,
			UserAgent: config.UserAgent,
		}, c.logger)
		if err != nil {
			return nil, fmt.Errorf("create http client: %w", err)
		}
		c.http = httpClient
		doer = httpClient
	}

	policy := retry.NewPolicy(config.MaxAttempts, config.RetryWaitMin, config.RetryWaitMax)
	c.executor = transport.NewExecutor(doer, policy, c.logger)

	if config.RateLimitWeight > 0 {
		c.limiter = ratelimit.New(config.RateLimitWeight, config.RateLimitPeriod)
	}

	if config.CircuitBreakerEnabled {
		c.breaker = circuitbreaker.New(circuitbreaker.Config{
			FailThreshold:    config.CircuitBreakerFailThreshold,
			SuccessThreshold: config.CircuitBreakerSuccessThreshold,
			Timeout:          config.CircuitBreakerTimeout,
			OnStateChange: func(from, to circuitbreaker.State) {
				c.logger.Warn().
					Str("from", from.String()).
					Str("to", to.String()).
					Msg("circuit breaker state changed")
			},
		})
	}

	return c, nil
}

// serverNow is the local clock corrected by the offset learned in SyncTime.
func (c *Client) serverNow() time.Time {
	return c.now().Add(time.Duration(c.offset.Load()) * time.Millisecond)
}

// TimeOffset returns the server clock offset applied to signed requests.
func (c *Client) TimeOffset() time.Duration {
	return time.Duration(c.offset.Load()) * time.Millisecond
}

// Close releases the underlying HTTP client. A client built WithDoer owns nothing to release.
func (c *Client) Close() error {
	if c.http != nil {
		return c.http.Close()
	}
	return nil
}

// Stats is a snapshot of the client's rate limiter and circuit breaker.
type Stats struct {
	RateLimit      *ratelimit.MetricsSnapshot
	CircuitBreaker *circuitbreaker.MetricsSnapshot
}

func (c *Client) Stats() Stats {
	var s Stats
	if c.limiter != nil {
		m := c.limiter.Metrics()
		s.RateLimit = &m
	}
	if c.breaker != nil {
		m := c.breaker.Metrics()
		s.CircuitBreaker = &m
	}
	return s
}

// Do sends an arbitrary request through the full pipeline. Signed requests
// get timestamp, recvWindow and signature added.
func (c *Client) Do(ctx context.Context, req *core.Request) (*core.Payload, error) {
	if req == nil {
		return nil, c.fail("DO", errors.New("nil request"))
	}
	return c.do(ctx, req.Path, req)
}

func (c *Client) call(ctx context.Context, op core.Operation, params core.Params) (*core.Payload, error) {
	req := core.NewRouteRequest(op).SetQueryParams(params)
	return c.do(ctx, op.String(), req)
}

func (c *Client) do(ctx context.Context, name string, req *core.Request) (*core.Payload, error) {
	if !req.Valid() {
		return nil, c.fail(name, fmt.Errorf("invalid request: %s %q", req.Method, req.Path))
	}

	call := &transport.Call{
		Method:  req.Method,
		URL:     strings.TrimRight(c.config.URL(), "/") + req.Path,
		Timeout: c.config.PublicTimeout,
	}
	if c.creds != nil && c.creds.APIKey != "" {
		call.Headers = map[string]string{APIKeyHeader: c.creds.APIKey}
	}

	if req.Signed {
		if c.signer == nil {
			return nil, c.fail(name, core.ErrNoCredentials)
		}
		// Each attempt is stamped and signed when it is sent.
		params := req.Query.Clone()
		call.BuildQuery = func() string {
			return c.signer.Sign(params).Encode()
		}
		call.Timeout = c.config.SignedTimeout
	} else {
		call.Query = canonical.Encode(req.Query)
	}

	if c.breaker != nil {
		if err := c.breaker.Allow(); err != nil {
			return nil, c.fail(name, err)
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, req.Weight); err != nil {
			return nil, c.fail(name, fmt.Errorf("rate limit: %w", err))
		}
	}

	resp, err := c.executor.Execute(ctx, call)
	if c.breaker != nil {
		c.breaker.Record(err == nil && resp.StatusCode < 500)
	}
	if err != nil {
		return nil, c.fail(name, err)
	}

	if c.limiter != nil {
		c.limiter.Sync(core.ParseUsedWeight(resp.Headers))
	}

	payload, err := response.Classify(resp, call)
	if err != nil {
		return nil, c.fail(name, err)
	}
	return payload, nil
}

// fail logs err once, at the point it was detected, and returns it unchanged.
func (c *Client) fail(name string, err error) error {
	event := c.logger.Error().Err(err).Str("op", name)

	var (
		apiErr       *core.APIError
		requestErr   *core.RequestError
		intervalErr  *core.IntervalError
		transportErr *core.TransportError
	)
	switch {
	case errors.As(err, &apiErr):
		event.Str("kind", "api").
			Int("status", apiErr.StatusCode).
			Int("code", apiErr.Code).
			Str("type", apiErr.Type.String())
	case errors.As(err, &requestErr):
		event.Str("kind", "request").Int("status", requestErr.StatusCode)
	case errors.As(err, &intervalErr):
		event.Str("kind", "interval").
			Int64("start_time", intervalErr.StartTime).
			Int64("end_time", intervalErr.EndTime)
	case errors.As(err, &transportErr):
		event.Str("kind", "transport").Int("attempts", transportErr.Attempts)
	default:
		event.Str("kind", "client")
	}
	event.Msg("request failed")
	return err
}
