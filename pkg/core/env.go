package core

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type envCredentials struct {
	APIKey    string `envconfig:"API_KEY"`
	SecretKey string `envconfig:"SECRET_KEY"`
}

// LoadConfig builds a Config from DefaultConfig, dotenv files and the
// environment, in increasing precedence. Variables are read under prefix,
// e.g. BINANCE_API_KEY, BINANCE_PROXY_URL. Missing dotenv files are skipped.
func LoadConfig(prefix string, files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := DefaultConfig()
	if err := envconfig.Process(prefix, cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}

	var creds envCredentials
	if err := envconfig.Process(prefix, &creds); err != nil {
		return nil, fmt.Errorf("process credentials: %w", err)
	}
	if creds.APIKey != "" || creds.SecretKey != "" {
		cfg.Credentials = &Credentials{APIKey: creds.APIKey, SecretKey: creds.SecretKey}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}
