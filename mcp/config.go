package mcp

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/MrGarbonzo/secret-network-mcp/chain"
	"github.com/MrGarbonzo/secret-network-mcp/internal/logger"
	"github.com/MrGarbonzo/secret-network-mcp/query"
)

// Config holds the MCP server configuration
type Config struct {
	// Chain
	LCDURL      string
	ChainID     string
	LCDTimeout  time.Duration
	LCDRetries  int
	LCDRate     float64
	LCDBurst    int
	CodeHashTTL time.Duration

	// Optional TOML file extending the built-in token registry
	TokensFile string

	// Database; empty keeps wallets in memory and disables the query log
	DatabaseURL string

	// Logging
	LogLevel string
	LogJSON  bool
	Debug    bool

	// HTTP transport
	HTTPHost    string
	HTTPPort    int
	APIKey      string
	CORSOrigins []string
	HTTPRate    int
	HTTPBurst   int
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() Config {
	return Config{
		LCDURL:      chain.DefaultLCDURL,
		ChainID:     query.DefaultChainID,
		LCDTimeout:  30 * time.Second,
		LCDRetries:  3,
		LCDRate:     10,
		LCDBurst:    20,
		CodeHashTTL: 24 * time.Hour,
		LogLevel:    "info",
		HTTPHost:    "127.0.0.1",
		HTTPPort:    8080,
		CORSOrigins: []string{"*"},
		HTTPRate:    20,
		HTTPBurst:   40,
	}
}

// ApplyEnv overrides fields from the environment. Unset variables leave the
// current value alone; malformed ones are an error.
func (c *Config) ApplyEnv() error {
	strs := map[string]*string{
		"SECRET_LCD_URL":     &c.LCDURL,
		"SECRET_CHAIN_ID":    &c.ChainID,
		"SECRET_TOKENS_FILE": &c.TokensFile,
		"DATABASE_URL":       &c.DatabaseURL,
		"LOG_LEVEL":          &c.LogLevel,
		"HTTP_HOST":          &c.HTTPHost,
		"MCP_API_KEY":        &c.APIKey,
	}
	for name, target := range strs {
		if v, ok := os.LookupEnv(name); ok {
			*target = v
		}
	}

	ints := map[string]*int{
		"LCD_BURST":       &c.LCDBurst,
		"LCD_MAX_RETRIES": &c.LCDRetries,
		"HTTP_PORT":       &c.HTTPPort,
		"HTTP_RPS":        &c.HTTPRate,
	}
	for name, target := range ints {
		if v, ok := os.LookupEnv(name); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			*target = n
		}
	}

	durations := map[string]*time.Duration{
		"CODE_HASH_TTL": &c.CodeHashTTL,
		"LCD_TIMEOUT":   &c.LCDTimeout,
	}
	for name, target := range durations {
		if v, ok := os.LookupEnv(name); ok {
			d, err := time.ParseDuration(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			*target = d
		}
	}

	bools := map[string]*bool{
		"LOG_JSON":  &c.LogJSON,
		"MCP_DEBUG": &c.Debug,
	}
	for name, target := range bools {
		if v, ok := os.LookupEnv(name); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			*target = b
		}
	}

	if v, ok := os.LookupEnv("LCD_RPS"); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("LCD_RPS: %w", err)
		}
		c.LCDRate = f
	}
	if v, ok := os.LookupEnv("CORS_ALLOWED_ORIGINS"); ok {
		c.CORSOrigins = splitList(v)
	}
	return nil
}

// Validate rejects settings no transport can run with.
func (c Config) Validate() error {
	if c.LCDURL == "" {
		return fmt.Errorf("LCD URL is required")
	}
	if c.ChainID == "" {
		return fmt.Errorf("chain id is required")
	}
	if c.HTTPPort < 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("HTTP port %d out of range", c.HTTPPort)
	}
	if c.HTTPRate < 0 || c.HTTPBurst < 0 {
		return fmt.Errorf("HTTP rate limit must not be negative")
	}
	return nil
}

// ChainConfig derives the LCD client settings.
func (c Config) ChainConfig() chain.Config {
	cfg := chain.DefaultConfig()
	cfg.BaseURL = c.LCDURL
	cfg.ChainID = c.ChainID
	if c.LCDTimeout > 0 {
		cfg.Timeout = c.LCDTimeout
	}
	cfg.Retry.MaxRetries = c.LCDRetries
	if c.LCDRate > 0 {
		cfg.RequestsPerSec = c.LCDRate
	}
	if c.LCDBurst > 0 {
		cfg.Burst = c.LCDBurst
	}
	if c.CodeHashTTL > 0 {
		cfg.CodeHashTTL = c.CodeHashTTL
	}
	return cfg
}

// LoggerConfig derives the zap logger settings. Debug forces debug level.
func (c Config) LoggerConfig() logger.Config {
	level := c.LogLevel
	if c.Debug {
		level = "debug"
	}
	return logger.Config{Level: level, JSON: c.LogJSON, Service: "secret-mcp"}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
