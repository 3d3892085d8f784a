package breezmcp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breez/breez-mcp/wallet"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

// validConfig returns a minimal configuration that passes validation.
func validConfig() Config {
	return Config{
		APIKey:    "test-api-key",
		Mnemonic:  testMnemonic,
		DaemonURL: "http://127.0.0.1:8720",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string // substring of the error; empty means no error
	}{
		{
			name:   "valid with defaults",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing api key",
			mutate:  func(c *Config) { c.APIKey = "" },
			wantErr: "APIKey",
		},
		{
			name:    "missing mnemonic",
			mutate:  func(c *Config) { c.Mnemonic = "" },
			wantErr: "Mnemonic",
		},
		{
			name:    "mnemonic word count",
			mutate:  func(c *Config) { c.Mnemonic = "too few words" },
			wantErr: "12 or 24 words",
		},
		{
			name:   "24 word mnemonic accepted",
			mutate: func(c *Config) { c.Mnemonic = strings.TrimSpace(strings.Repeat("abandon ", 24)) },
		},
		{
			name:    "bad network",
			mutate:  func(c *Config) { c.Network = "simnet" },
			wantErr: "Network",
		},
		{
			name:    "missing daemon url",
			mutate:  func(c *Config) { c.DaemonURL = "" },
			wantErr: "DaemonURL",
		},
		{
			name:    "malformed daemon url",
			mutate:  func(c *Config) { c.DaemonURL = "not a url" },
			wantErr: "DaemonURL",
		},
		{
			name:    "bad transport",
			mutate:  func(c *Config) { c.Transport = "websocket" },
			wantErr: "Transport",
		},
		{
			name:    "http path must be absolute",
			mutate:  func(c *Config) { c.Transport = TransportHTTP; c.HTTPPath = "mcp" },
			wantErr: "HTTPPath",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var cfgErr *ConfigError
			assert.ErrorAs(t, err, &cfgErr, "all validation failures must be ConfigError")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_defaults(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, wallet.Mainnet, cfg.Network)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, TransportStdio, cfg.Transport)

	httpCfg := validConfig()
	httpCfg.Transport = TransportHTTP
	require.NoError(t, httpCfg.Validate())
	assert.Equal(t, "127.0.0.1:8723", httpCfg.HTTPAddr)
	assert.Equal(t, "/mcp", httpCfg.HTTPPath)
}

func TestConfigError_redaction(t *testing.T) {
	// The error text must never echo the secrets themselves.
	cfg := validConfig()
	cfg.Mnemonic = "correct horse battery"
	err := cfg.Validate()
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "correct horse battery")
	assert.NotContains(t, err.Error(), cfg.APIKey)
}
