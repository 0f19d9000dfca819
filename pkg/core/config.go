package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Base URLs of the spot REST API.
const (
	ProductionURL = "https://api.binance.com"
	SandboxURL    = "https://testnet.binance.vision"
)

// DefaultRecvWindow is the receive window, in milliseconds, injected into
// signed requests that do not carry their own.
const DefaultRecvWindow int64 = 120000

// Credentials holds API authentication credentials.
type Credentials struct {
	// APIKey identifies the caller and is sent as the X-MBX-APIKEY header.
	APIKey string `json:"api_key"`
	// SecretKey keys the request signature. It is never transmitted.
	SecretKey string `json:"secret_key"`
}

// String masks the key and omits the secret so credentials are safe to log.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{APIKey:%s}", maskKey(c.APIKey))
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}

// Config contains all configuration options for a client.
// It covers authentication, networking, retry, rate limiting and circuit breaker settings.
type Config struct {
	BaseURL     string       `json:"base_url" envconfig:"BASE_URL" validate:"omitempty,url"`
	Sandbox     bool         `json:"sandbox" envconfig:"SANDBOX"`
	Credentials *Credentials `json:"credentials,omitempty" ignored:"true"`

	// ProxyURL routes HTTP and HTTPS traffic through a forward proxy when set.
	ProxyURL  string `json:"proxy_url" envconfig:"PROXY_URL" validate:"omitempty,url"`
	UserAgent string `json:"user_agent" envconfig:"USER_AGENT"`

	// PublicTimeout and SignedTimeout bound each attempt of unsigned and signed calls.
	PublicTimeout time.Duration `json:"public_timeout" envconfig:"PUBLIC_TIMEOUT" validate:"min=1ms"`
	SignedTimeout time.Duration `json:"signed_timeout" envconfig:"SIGNED_TIMEOUT" validate:"min=1ms"`
	RecvWindow    int64         `json:"recv_window" envconfig:"RECV_WINDOW" validate:"min=1"`

	// MaxAttempts counts the first attempt; 1 disables retries.
	MaxAttempts int `json:"max_attempts" envconfig:"MAX_ATTEMPTS" validate:"min=1"`
	// RetryWaitMin of zero retries immediately; otherwise waits grow
	// exponentially from RetryWaitMin up to RetryWaitMax.
	RetryWaitMin time.Duration `json:"retry_wait_min" envconfig:"RETRY_WAIT_MIN" validate:"min=0"`
	RetryWaitMax time.Duration `json:"retry_wait_max" envconfig:"RETRY_WAIT_MAX" validate:"min=0,gtefield=RetryWaitMin"`

	// RateLimitWeight is the request weight allowed per RateLimitPeriod. Zero disables limiting.
	RateLimitWeight int           `json:"rate_limit_weight" envconfig:"RATE_LIMIT_WEIGHT" validate:"min=0"`
	RateLimitPeriod time.Duration `json:"rate_limit_period" envconfig:"RATE_LIMIT_PERIOD" validate:"min=1ms"`

	CircuitBreakerEnabled          bool          `json:"circuit_breaker_enabled" envconfig:"CIRCUIT_BREAKER_ENABLED"`
	CircuitBreakerFailThreshold    int           `json:"circuit_breaker_fail_threshold" envconfig:"CIRCUIT_BREAKER_FAIL_THRESHOLD"`
	CircuitBreakerSuccessThreshold int           `json:"circuit_breaker_success_threshold" envconfig:"CIRCUIT_BREAKER_SUCCESS_THRESHOLD"`
	CircuitBreakerTimeout          time.Duration `json:"circuit_breaker_timeout" envconfig:"CIRCUIT_BREAKER_TIMEOUT"`

	LogLevel string `json:"log_level" envconfig:"LOG_LEVEL" validate:"omitempty,oneof=debug info warn error"`
}

// DefaultConfig returns a Config initialized with the default policy:
// 7s unsigned and 30s signed attempt timeouts, 7 attempts with immediate
// retry, a 120000ms receive window, 6000 weight/min rate limit and the
// circuit breaker disabled.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:       ProductionURL,
		UserAgent:     "mbx/go",
		PublicTimeout: 7 * time.Second,
		SignedTimeout: 30 * time.Second,
		RecvWindow:    DefaultRecvWindow,

		MaxAttempts:  7,
		RetryWaitMin: 0,
		RetryWaitMax: 0,

		RateLimitWeight: 6000,
		RateLimitPeriod: time.Minute,

		CircuitBreakerEnabled:          false,
		CircuitBreakerFailThreshold:    5,
		CircuitBreakerSuccessThreshold: 2,
		CircuitBreakerTimeout:          30 * time.Second,

		LogLevel: "info",
	}
}

var validate = validator.New()

// Validate checks field constraints and cross-field rules. A configured
// credential pair must carry a secret: signing cannot work without one.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Credentials != nil && c.Credentials.SecretKey == "" {
		return errors.New("Credentials.SecretKey is required when credentials are set")
	}
	if c.CircuitBreakerEnabled {
		if c.CircuitBreakerFailThreshold <= 0 {
			return errors.New("CircuitBreakerFailThreshold must be positive when enabled")
		}
		if c.CircuitBreakerSuccessThreshold <= 0 {
			return errors.New("CircuitBreakerSuccessThreshold must be positive when enabled")
		}
		if c.CircuitBreakerTimeout <= 0 {
			return errors.New("CircuitBreakerTimeout must be positive when enabled")
		}
	}
	return nil
}

// URL returns the REST base URL, honoring Sandbox when BaseURL is unset or the production default.
func (c *Config) URL() string {
	if c.Sandbox && (c.BaseURL == "" || c.BaseURL == ProductionURL) {
		return SandboxURL
	}
	if c.BaseURL == "" {
		return ProductionURL
	}
	return c.BaseURL
}

// Level parses LogLevel, defaulting to info.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || c.LogLevel == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// WithCredentials sets the API credentials and returns the config for chaining.
func (c *Config) WithCredentials(creds *Credentials) *Config {
	c.Credentials = creds
	return c
}

// WithSandbox enables or disables sandbox mode and returns the config for chaining.
func (c *Config) WithSandbox(sandbox bool) *Config {
	c.Sandbox = sandbox
	return c
}

// WithProxy routes traffic through the given forward proxy.
func (c *Config) WithProxy(proxyURL string) *Config {
	c.ProxyURL = proxyURL
	return c
}

// WithTimeouts sets the per-attempt timeouts for unsigned and signed calls.
func (c *Config) WithTimeouts(public, signed time.Duration) *Config {
	c.PublicTimeout = public
	c.SignedTimeout = signed
	return c
}

// WithRetry sets the attempt limit and backoff bounds.
func (c *Config) WithRetry(maxAttempts int, waitMin, waitMax time.Duration) *Config {
	c.MaxAttempts = maxAttempts
	c.RetryWaitMin = waitMin
	c.RetryWaitMax = waitMax
	return c
}

// WithRecvWindow sets the default receive window in milliseconds.
func (c *Config) WithRecvWindow(ms int64) *Config {
	c.RecvWindow = ms
	return c
}

// WithRateLimit sets the request weight budget per period and returns the config for chaining.
func (c *Config) WithRateLimit(weight int, period time.Duration) *Config {
	c.RateLimitWeight = weight
	c.RateLimitPeriod = period
	return c
}
