// Package config loads process configuration from the environment once at
// startup. Credentials are immutable for the process lifetime; a missing key
// pair is a fatal startup error.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"nakula/pkg/core"
)

// Config is the full process configuration, populated from environment
// variables (optionally via a .env file).
type Config struct {
	Binance struct {
		APIKey    string `envconfig:"BINANCE_TESTNET_API_KEY" required:"true"`
		APISecret string `envconfig:"BINANCE_TESTNET_API_SECRET" required:"true"`
		// Sandbox selects the testnet endpoints. Leave it on unless you
		// really mean to trade production funds.
		Sandbox bool `envconfig:"BINANCE_SANDBOX" default:"true"`
	}

	HTTP struct {
		Timeout    time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
		MaxRetries int           `envconfig:"HTTP_MAX_RETRIES" default:"3"`
	}

	Log struct {
		Level string `envconfig:"LOG_LEVEL" default:"info"`
		// File receives a copy of every log line in addition to the
		// console. Empty disables the file sink.
		File string `envconfig:"LOG_FILE" default:"trading_terminal.log"`
	}

	Web struct {
		ListenAddr string `envconfig:"LISTEN_ADDR" default:":8080"`
	}
}

// Load reads configuration from a .env file (when present) and the process
// environment. It fails when either credential value is absent.
func Load() (*Config, error) {
	// .env is a convenience for local runs; absence is not an error.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Binance.APIKey == "" || c.Binance.APISecret == "" {
		return errors.New("BINANCE_TESTNET_API_KEY and BINANCE_TESTNET_API_SECRET are required")
	}
	if c.HTTP.Timeout < time.Second {
		return errors.New("HTTP_TIMEOUT must be at least 1s")
	}
	if c.HTTP.MaxRetries < 0 {
		return errors.New("HTTP_MAX_RETRIES must not be negative")
	}
	return nil
}

// Credentials returns the immutable API key pair.
func (c *Config) Credentials() *core.Credentials {
	return &core.Credentials{
		APIKey:    c.Binance.APIKey,
		SecretKey: c.Binance.APISecret,
	}
}

// ClientConfig builds the facade configuration from the process settings.
func (c *Config) ClientConfig() *core.Config {
	cfg := core.DefaultConfig().
		WithCredentials(c.Credentials()).
		WithSandbox(c.Binance.Sandbox).
		WithTimeout(c.HTTP.Timeout)
	cfg.MaxRetries = c.HTTP.MaxRetries
	return cfg
}
