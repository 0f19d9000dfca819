package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ProductionURL, config.BaseURL)
	assert.False(t, config.Sandbox)
	assert.Nil(t, config.Credentials)
	assert.Equal(t, 7*time.Second, config.PublicTimeout)
	assert.Equal(t, 30*time.Second, config.SignedTimeout)
	assert.Equal(t, int64(120000), config.RecvWindow)
	assert.Equal(t, 7, config.MaxAttempts)
	assert.Zero(t, config.RetryWaitMin)
	assert.Zero(t, config.RetryWaitMax)
	assert.Equal(t, 6000, config.RateLimitWeight)
	assert.Equal(t, time.Minute, config.RateLimitPeriod)
	assert.False(t, config.CircuitBreakerEnabled)
	assert.Equal(t, "info", config.LogLevel)
	assert.NoError(t, config.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid_config",
			modify: func(*Config) {},
		},
		{
			name: "credentials_without_secret",
			modify: func(c *Config) {
				c.Credentials = &Credentials{APIKey: "key"}
			},
			wantErr: true,
			errMsg:  "SecretKey",
		},
		{
			name: "secret_without_key",
			modify: func(c *Config) {
				c.Credentials = &Credentials{SecretKey: "secret"}
			},
		},
		{
			name: "invalid_base_url",
			modify: func(c *Config) {
				c.BaseURL = "not a url"
			},
			wantErr: true,
			errMsg:  "BaseURL",
		},
		{
			name: "invalid_proxy_url",
			modify: func(c *Config) {
				c.ProxyURL = "::"
			},
			wantErr: true,
			errMsg:  "ProxyURL",
		},
		{
			name: "zero_public_timeout",
			modify: func(c *Config) {
				c.PublicTimeout = 0
			},
			wantErr: true,
			errMsg:  "PublicTimeout",
		},
		{
			name: "zero_attempts",
			modify: func(c *Config) {
				c.MaxAttempts = 0
			},
			wantErr: true,
			errMsg:  "MaxAttempts",
		},
		{
			name: "wait_max_below_min",
			modify: func(c *Config) {
				c.RetryWaitMin = time.Second
				c.RetryWaitMax = time.Millisecond
			},
			wantErr: true,
			errMsg:  "RetryWaitMax",
		},
		{
			name: "exponential_backoff",
			modify: func(c *Config) {
				c.RetryWaitMin = 100 * time.Millisecond
				c.RetryWaitMax = time.Second
			},
		},
		{
			name: "bad_log_level",
			modify: func(c *Config) {
				c.LogLevel = "verbose"
			},
			wantErr: true,
			errMsg:  "LogLevel",
		},
		{
			name: "breaker_zero_threshold",
			modify: func(c *Config) {
				c.CircuitBreakerEnabled = true
				c.CircuitBreakerFailThreshold = 0
			},
			wantErr: true,
			errMsg:  "CircuitBreakerFailThreshold",
		},
		{
			name: "breaker_zero_timeout",
			modify: func(c *Config) {
				c.CircuitBreakerEnabled = true
				c.CircuitBreakerTimeout = 0
			},
			wantErr: true,
			errMsg:  "CircuitBreakerTimeout",
		},
		{
			name: "breaker_disabled_ignores_thresholds",
			modify: func(c *Config) {
				c.CircuitBreakerFailThreshold = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(config)

			err := config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, strings.Contains(err.Error(), tt.errMsg), "error %q should mention %q", err, tt.errMsg)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestConfig_URL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		sandbox bool
		want    string
	}{
		{"production", ProductionURL, false, ProductionURL},
		{"sandbox", ProductionURL, true, SandboxURL},
		{"empty", "", false, ProductionURL},
		{"empty sandbox", "", true, SandboxURL},
		{"custom wins over sandbox", "http://127.0.0.1:8080", true, "http://127.0.0.1:8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			config.BaseURL = tt.baseURL
			config.Sandbox = tt.sandbox
			assert.Equal(t, tt.want, config.URL())
		})
	}
}

func TestConfig_Level(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"nonsense", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			config := DefaultConfig()
			config.LogLevel = tt.level
			assert.Equal(t, tt.want, config.Level())
		})
	}
}

func TestConfig_Chaining(t *testing.T) {
	creds := &Credentials{APIKey: "key", SecretKey: "secret"}

	config := DefaultConfig().
		WithCredentials(creds).
		WithSandbox(true).
		WithProxy("http://proxy.local:3128").
		WithTimeouts(time.Second, 2*time.Second).
		WithRetry(3, 10*time.Millisecond, time.Second).
		WithRecvWindow(5000).
		WithRateLimit(1200, time.Minute)

	assert.Same(t, creds, config.Credentials)
	assert.True(t, config.Sandbox)
	assert.Equal(t, "http://proxy.local:3128", config.ProxyURL)
	assert.Equal(t, time.Second, config.PublicTimeout)
	assert.Equal(t, 2*time.Second, config.SignedTimeout)
	assert.Equal(t, 3, config.MaxAttempts)
	assert.Equal(t, 10*time.Millisecond, config.RetryWaitMin)
	assert.Equal(t, time.Second, config.RetryWaitMax)
	assert.Equal(t, int64(5000), config.RecvWindow)
	assert.Equal(t, 1200, config.RateLimitWeight)
	assert.NoError(t, config.Validate())
}

func TestCredentials_String(t *testing.T) {
	creds := Credentials{APIKey: "vmPUZE6mv9SD5VNHk4HlWFsOr6aKE2zv", SecretKey: "NhqPtmdSJYdKjVHjA7PZj4Mge3R5YNiP"}

	s := creds.String()
	assert.Equal(t, "Credentials{APIKey:vmPU****E2zv}", s)
	assert.NotContains(t, s, creds.SecretKey)

	assert.Equal(t, "Credentials{APIKey:****}", Credentials{APIKey: "short"}.String())
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("MBXTEST_API_KEY", "env-key")
	t.Setenv("MBXTEST_SECRET_KEY", "env-secret")
	t.Setenv("MBXTEST_MAX_ATTEMPTS", "3")
	t.Setenv("MBXTEST_PUBLIC_TIMEOUT", "2s")
	t.Setenv("MBXTEST_SANDBOX", "true")

	config, err := LoadConfig("MBXTEST", filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	require.NotNil(t, config.Credentials)
	assert.Equal(t, "env-key", config.Credentials.APIKey)
	assert.Equal(t, "env-secret", config.Credentials.SecretKey)
	assert.Equal(t, 3, config.MaxAttempts)
	assert.Equal(t, 2*time.Second, config.PublicTimeout)
	assert.Equal(t, SandboxURL, config.URL())
	assert.Equal(t, 30*time.Second, config.SignedTimeout)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("MBXDOTENV_PROXY_URL=http://proxy.local:8080\nMBXDOTENV_RECV_WINDOW=5000\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("MBXDOTENV_PROXY_URL")
		os.Unsetenv("MBXDOTENV_RECV_WINDOW")
	})
	t.Setenv("MBXDOTENV_RECV_WINDOW", "7000")

	config, err := LoadConfig("MBXDOTENV", path)
	require.NoError(t, err)

	assert.Equal(t, "http://proxy.local:8080", config.ProxyURL)
	assert.Equal(t, int64(7000), config.RecvWindow, "environment overrides dotenv")
	assert.Nil(t, config.Credentials)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("MBXBAD_API_KEY", "key-only")

	_, err := LoadConfig("MBXBAD", filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)

	t.Setenv("MBXBAD_API_KEY", "")
	t.Setenv("MBXBAD_MAX_ATTEMPTS", "many")

	_, err = LoadConfig("MBXBAD", filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
