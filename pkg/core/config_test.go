package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, cfg.Sandbox)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 1200, cfg.RateLimitRequests)
	assert.Equal(t, time.Minute, cfg.RateLimitPeriod)
	assert.True(t, cfg.CircuitBreakerEnabled)

	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Timeout = 0 },
			wantErr: true,
		},
		{
			name:    "negative retries",
			mutate:  func(c *Config) { c.MaxRetries = -1 },
			wantErr: true,
		},
		{
			name:    "zero rate limit",
			mutate:  func(c *Config) { c.RateLimitRequests = 0 },
			wantErr: true,
		},
		{
			name:    "breaker enabled without thresholds",
			mutate:  func(c *Config) { c.CircuitBreakerFailThreshold = 0 },
			wantErr: true,
		},
		{
			name: "breaker disabled ignores thresholds",
			mutate: func(c *Config) {
				c.CircuitBreakerEnabled = false
				c.CircuitBreakerFailThreshold = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_Chaining(t *testing.T) {
	creds := &Credentials{APIKey: "key", SecretKey: "secret"}
	cfg := DefaultConfig().
		WithCredentials(creds).
		WithSandbox(false).
		WithTimeout(5 * time.Second).
		WithRateLimit(600, 30*time.Second)

	assert.Same(t, creds, cfg.Credentials)
	assert.False(t, cfg.Sandbox)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 600, cfg.RateLimitRequests)
	assert.Equal(t, 30*time.Second, cfg.RateLimitPeriod)
}

func TestCredentials_String_Masks(t *testing.T) {
	long := Credentials{APIKey: "abcdefghijklmnop", SecretKey: "supersecret"}
	assert.Equal(t, "Credentials{APIKey:abcd****mnop}", long.String())
	assert.NotContains(t, long.String(), "supersecret")

	short := Credentials{APIKey: "abc"}
	assert.Equal(t, "Credentials{APIKey:****}", short.String())
}
