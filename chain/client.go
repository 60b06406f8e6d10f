package chain

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/MrGarbonzo/secret-network-mcp/internal/logger"
)

// DefaultLCDURL is the public mainnet LCD endpoint.
const DefaultLCDURL = "https://lcd.mainnet.secretsaturn.net"

// Querier is the chain surface consumed by the tool layer.
type Querier interface {
	GetBalance(ctx context.Context, address, denom string) (*Coin, error)
	GetAllBalances(ctx context.Context, address string) ([]Coin, error)
	GetAccount(ctx context.Context, address string) (*Account, error)
	GetLatestBlock(ctx context.Context) (*Block, error)
	GetBlock(ctx context.Context, height int64) (*Block, error)
	GetTransaction(ctx context.Context, hash string) (*Transaction, error)
	GetContractInfo(ctx context.Context, address string) (*ContractInfo, error)
	GetCodeHash(ctx context.Context, address string) (string, error)
	QueryContract(ctx context.Context, address, codeHash string, query any) (json.RawMessage, error)
	Ping(ctx context.Context) error
}

// RetryConfig configures the retry behavior
type RetryConfig struct {
	MaxRetries           int
	InitialInterval      time.Duration
	MaxInterval          time.Duration
	Multiplier           float64
	MaxElapsedTime       time.Duration
	RetryableStatusCodes []int
}

// DefaultRetryConfig provides sensible defaults for retries
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:           3,
		InitialInterval:      200 * time.Millisecond,
		MaxInterval:          5 * time.Second,
		Multiplier:           2.0,
		MaxElapsedTime:       30 * time.Second,
		RetryableStatusCodes: []int{408, 429, 500, 502, 503, 504},
	}
}

// Config holds the client settings.
type Config struct {
	BaseURL        string
	ChainID        string
	Timeout        time.Duration
	Retry          *RetryConfig
	RequestsPerSec float64
	Burst          int
	CodeHashTTL    time.Duration
	// KeySeed fixes the x25519 query keypair. Random when nil.
	KeySeed []byte
}

// DefaultConfig returns mainnet defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:        DefaultLCDURL,
		ChainID:        "secret-4",
		Timeout:        30 * time.Second,
		Retry:          DefaultRetryConfig(),
		RequestsPerSec: 10,
		Burst:          20,
		CodeHashTTL:    24 * time.Hour,
	}
}

// ClientOption represents a function that can modify the client
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithEncryptor fixes the query encryptor, skipping the tx-key lookup.
func WithEncryptor(enc *Encryptor) ClientOption {
	return func(c *Client) {
		c.encryptor = enc
	}
}

// Client talks to a Secret Network LCD. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	chainID    string
	retry      *RetryConfig
	limiter    *rate.Limiter
	codeHashes *CodeHashCache
	keySeed    []byte

	encMu     sync.Mutex
	encryptor *Encryptor
}

var _ Querier = (*Client)(nil)

// NewClient builds a client from config.
func NewClient(config Config, options ...ClientOption) *Client {
	defaults := DefaultConfig()
	if config.BaseURL == "" {
		config.BaseURL = defaults.BaseURL
	}
	if config.ChainID == "" {
		config.ChainID = defaults.ChainID
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.Retry == nil {
		config.Retry = defaults.Retry
	}

	limit := rate.Inf
	if config.RequestsPerSec > 0 {
		limit = rate.Limit(config.RequestsPerSec)
	}
	burst := config.Burst
	if burst <= 0 {
		burst = 1
	}

	c := &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		baseURL:    strings.TrimSuffix(config.BaseURL, "/"),
		chainID:    config.ChainID,
		retry:      config.Retry,
		limiter:    rate.NewLimiter(limit, burst),
		codeHashes: NewCodeHashCache(config.CodeHashTTL),
		keySeed:    config.KeySeed,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// ChainID returns the configured chain id.
func (c *Client) ChainID() string { return c.chainID }

// BaseURL returns the LCD base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// CodeHashes exposes the code-hash cache so callers can seed known hashes.
func (c *Client) CodeHashes() *CodeHashCache { return c.codeHashes }

// get performs a GET with rate limiting and retries, returning the body of a
// 2xx response.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	fullURL := c.baseURL + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}
	start := time.Now()

	var body []byte
	operation := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}
		if resp.StatusCode >= 400 {
			httpErr := &HTTPError{
				StatusCode: resp.StatusCode,
				Status:     resp.Status,
				URL:        fullURL,
				Method:     http.MethodGet,
				Body:       string(data),
			}
			// contract errors are deterministic
			if c.retryable(resp.StatusCode) && !strings.Contains(httpErr.Body, "encrypted:") {
				return httpErr
			}
			return backoff.Permanent(httpErr)
		}
		body = data
		return nil
	}

	var err error
	if c.retry != nil && c.retry.MaxRetries > 0 {
		expBackoff := backoff.NewExponentialBackOff()
		expBackoff.InitialInterval = c.retry.InitialInterval
		expBackoff.MaxInterval = c.retry.MaxInterval
		expBackoff.Multiplier = c.retry.Multiplier
		expBackoff.MaxElapsedTime = c.retry.MaxElapsedTime

		err = backoff.Retry(operation, backoff.WithContext(
			backoff.WithMaxRetries(expBackoff, uint64(c.retry.MaxRetries)), ctx))
	} else {
		err = operation()
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			err = permanent.Err
		}
	}

	duration := time.Since(start)
	if err != nil {
		logger.Log.Warn("LCD request failed",
			zap.String("path", path),
			zap.Error(err),
			zap.Duration("duration", duration))
		return nil, err
	}

	logger.Log.Debug("LCD request successful",
		zap.String("path", path),
		zap.Duration("duration", duration))
	return body, nil
}

func (c *Client) retryable(status int) bool {
	for _, code := range c.retry.RetryableStatusCodes {
		if status == code {
			return true
		}
	}
	return false
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, target any) error {
	body, err := c.get(ctx, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// GetBalance returns the bank balance of address in denom.
func (c *Client) GetBalance(ctx context.Context, address, denom string) (*Coin, error) {
	if denom == "" {
		denom = "uscrt"
	}
	var resp balanceResponse
	path := "/cosmos/bank/v1beta1/balances/" + url.PathEscape(address) + "/by_denom"
	if err := c.getJSON(ctx, path, url.Values{"denom": {denom}}, &resp); err != nil {
		return nil, err
	}
	if resp.Balance.Denom == "" {
		resp.Balance.Denom = denom
	}
	if resp.Balance.Amount == "" {
		resp.Balance.Amount = "0"
	}
	return &resp.Balance, nil
}

// GetAllBalances returns every bank balance of address.
func (c *Client) GetAllBalances(ctx context.Context, address string) ([]Coin, error) {
	var resp balancesResponse
	if err := c.getJSON(ctx, "/cosmos/bank/v1beta1/balances/"+url.PathEscape(address), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Balances == nil {
		resp.Balances = []Coin{}
	}
	return resp.Balances, nil
}

// GetAccount returns the auth account of address.
func (c *Client) GetAccount(ctx context.Context, address string) (*Account, error) {
	var resp accountResponse
	if err := c.getJSON(ctx, "/cosmos/auth/v1beta1/accounts/"+url.PathEscape(address), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Account, nil
}

// GetLatestBlock returns the newest block.
func (c *Client) GetLatestBlock(ctx context.Context) (*Block, error) {
	var block Block
	if err := c.getJSON(ctx, "/cosmos/base/tendermint/v1beta1/blocks/latest", nil, &block); err != nil {
		return nil, err
	}
	return &block, nil
}

// GetBlock returns the block at height.
func (c *Client) GetBlock(ctx context.Context, height int64) (*Block, error) {
	if height <= 0 {
		return nil, fmt.Errorf("block height must be positive, got %d", height)
	}
	var block Block
	path := "/cosmos/base/tendermint/v1beta1/blocks/" + strconv.FormatInt(height, 10)
	if err := c.getJSON(ctx, path, nil, &block); err != nil {
		return nil, err
	}
	return &block, nil
}

// GetTransaction returns the transaction with hash.
func (c *Client) GetTransaction(ctx context.Context, hash string) (*Transaction, error) {
	hash = strings.ToUpper(strings.TrimPrefix(hash, "0x"))
	var tx Transaction
	if err := c.getJSON(ctx, "/cosmos/tx/v1beta1/txs/"+url.PathEscape(hash), nil, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// GetContractInfo returns the compute metadata of a contract.
func (c *Client) GetContractInfo(ctx context.Context, address string) (*ContractInfo, error) {
	var resp contractInfoResponse
	if err := c.getJSON(ctx, "/compute/v1beta1/info/"+url.PathEscape(address), nil, &resp); err != nil {
		return nil, err
	}
	contract := resp.ContractAddress
	if contract == "" {
		contract = address
	}
	return &ContractInfo{
		ContractAddress: contract,
		CodeID:          resp.ContractInfo.CodeID,
		Creator:         resp.ContractInfo.Creator,
		Label:           resp.ContractInfo.Label,
		Admin:           resp.ContractInfo.Admin,
	}, nil
}

// GetCodeHash returns the code hash of a contract, served from cache when
// possible.
func (c *Client) GetCodeHash(ctx context.Context, address string) (string, error) {
	if hash, ok := c.codeHashes.Get(address); ok {
		return hash, nil
	}

	var resp codeHashResponse
	path := "/compute/v1beta1/code_hash/by_contract_address/" + url.PathEscape(address)
	if err := c.getJSON(ctx, path, nil, &resp); err != nil {
		return "", err
	}
	if resp.CodeHash == "" {
		return "", fmt.Errorf("no code hash returned for %s", address)
	}
	c.codeHashes.Set(address, resp.CodeHash)
	hash, _ := c.codeHashes.Get(address)
	return hash, nil
}

// Encryptor returns the query encryptor, fetching the consensus IO key on
// first use.
func (c *Client) Encryptor(ctx context.Context) (*Encryptor, error) {
	c.encMu.Lock()
	defer c.encMu.Unlock()

	if c.encryptor != nil {
		return c.encryptor, nil
	}

	var resp txKeyResponse
	if err := c.getJSON(ctx, "/registration/v1beta1/tx-key", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch consensus io key: %w", err)
	}
	ioKey, err := base64.StdEncoding.DecodeString(resp.Key)
	if err != nil {
		return nil, fmt.Errorf("consensus io key is not base64: %w", err)
	}
	enc, err := NewEncryptor(c.keySeed, ioKey)
	if err != nil {
		return nil, err
	}
	c.encryptor = enc
	return enc, nil
}

// QueryContract runs an encrypted smart query and returns the contract's JSON
// answer. An empty codeHash is resolved through GetCodeHash.
func (c *Client) QueryContract(ctx context.Context, address, codeHash string, query any) (json.RawMessage, error) {
	if codeHash == "" {
		hash, err := c.GetCodeHash(ctx, address)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve code hash for %s: %w", address, err)
		}
		codeHash = hash
	}
	codeHash = NormalizeCodeHash(codeHash)

	enc, err := c.Encryptor(ctx)
	if err != nil {
		return nil, err
	}
	sealed, nonce, err := enc.Encrypt(codeHash, query)
	if err != nil {
		return nil, err
	}

	path := "/compute/v1beta1/query/" + url.PathEscape(address)
	body, err := c.get(ctx, path, url.Values{"query": {base64.StdEncoding.EncodeToString(sealed)}})
	if err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && strings.Contains(httpErr.Body, "encrypted:") {
			return nil, &ContractError{Contract: address, Message: enc.DecryptError(httpErr.Body, nonce)}
		}
		return nil, err
	}

	var resp contractQueryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode query response: %w", err)
	}
	return enc.DecryptResponse(resp.Data, nonce)
}

// Ping checks that the LCD answers.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.get(ctx, "/cosmos/base/tendermint/v1beta1/node_info", nil)
	return err
}
