package mcp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrGarbonzo/secret-network-mcp/chain"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, chain.DefaultLCDURL, config.LCDURL)
	assert.Equal(t, "secret-4", config.ChainID)
	assert.Equal(t, "127.0.0.1", config.HTTPHost)
	assert.Equal(t, 8080, config.HTTPPort)
	assert.Equal(t, []string{"*"}, config.CORSOrigins)
	assert.Empty(t, config.DatabaseURL)
	assert.Empty(t, config.APIKey)
	assert.NoError(t, config.Validate())
}

func TestConfigApplyEnv(t *testing.T) {
	t.Setenv("SECRET_LCD_URL", "https://lcd.example.com")
	t.Setenv("SECRET_CHAIN_ID", "pulsar-3")
	t.Setenv("DATABASE_URL", "file:mcp.db")
	t.Setenv("MCP_API_KEY", "s3cret")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("LCD_MAX_RETRIES", "5")
	t.Setenv("LCD_RPS", "2.5")
	t.Setenv("LCD_TIMEOUT", "5s")
	t.Setenv("CODE_HASH_TTL", "1h")
	t.Setenv("LOG_JSON", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	config := DefaultConfig()
	require.NoError(t, config.ApplyEnv())

	assert.Equal(t, "https://lcd.example.com", config.LCDURL)
	assert.Equal(t, "pulsar-3", config.ChainID)
	assert.Equal(t, "file:mcp.db", config.DatabaseURL)
	assert.Equal(t, "s3cret", config.APIKey)
	assert.Equal(t, 9090, config.HTTPPort)
	assert.Equal(t, 5, config.LCDRetries)
	assert.Equal(t, 2.5, config.LCDRate)
	assert.Equal(t, 5*time.Second, config.LCDTimeout)
	assert.Equal(t, time.Hour, config.CodeHashTTL)
	assert.True(t, config.LogJSON)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, config.CORSOrigins)

	// untouched
	assert.Equal(t, "127.0.0.1", config.HTTPHost)
	assert.Equal(t, 20, config.LCDBurst)
}

func TestConfigApplyEnvRejectsMalformed(t *testing.T) {
	tests := map[string]string{
		"HTTP_PORT":   "eighty",
		"LCD_TIMEOUT": "5 seconds",
		"MCP_DEBUG":   "maybe",
		"LCD_RPS":     "fast",
	}

	for name, value := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(name, value)
			config := DefaultConfig()
			err := config.ApplyEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), name)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no lcd", func(c *Config) { c.LCDURL = "" }},
		{"no chain id", func(c *Config) { c.ChainID = "" }},
		{"port too large", func(c *Config) { c.HTTPPort = 70000 }},
		{"negative rate", func(c *Config) { c.HTTPRate = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(&config)
			assert.Error(t, config.Validate())
		})
	}
}

func TestConfigChainConfig(t *testing.T) {
	config := DefaultConfig()
	config.LCDURL = "http://localhost:1317"
	config.ChainID = "secretdev-1"
	config.LCDRetries = 0
	config.LCDRate = 0

	cc := config.ChainConfig()
	assert.Equal(t, "http://localhost:1317", cc.BaseURL)
	assert.Equal(t, "secretdev-1", cc.ChainID)
	assert.Equal(t, 0, cc.Retry.MaxRetries)
	assert.Equal(t, chain.DefaultConfig().RequestsPerSec, cc.RequestsPerSec)
	assert.Equal(t, 24*time.Hour, cc.CodeHashTTL)
}

func TestConfigLoggerConfig(t *testing.T) {
	config := DefaultConfig()
	config.LogLevel = "warn"
	assert.Equal(t, "warn", config.LoggerConfig().Level)

	config.Debug = true
	lc := config.LoggerConfig()
	assert.Equal(t, "debug", lc.Level)
	assert.Equal(t, "secret-mcp", lc.Service)
}
