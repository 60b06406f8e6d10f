package types

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrGarbonzo/secret-network-mcp/chain"
	"github.com/MrGarbonzo/secret-network-mcp/query"
	"github.com/MrGarbonzo/secret-network-mcp/registry"
	"github.com/MrGarbonzo/secret-network-mcp/wallet"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"invalid permit", &query.PermitValidationError{Field: "signature", Reason: "missing"}, InvalidPermit},
		{"unsupported auth", &query.UnsupportedAuthError{AuthType: query.AuthViewingKey, Reason: "multi-key"}, UnsupportedAuth},
		{"missing field", &query.BuilderError{QueryType: "allowance", Field: "owner"}, MissingField},
		{"token not found", fmt.Errorf("%w: FOO", registry.ErrTokenNotFound), TokenNotFound},
		{"wallet", fmt.Errorf("%w: secret1xyz", wallet.ErrNotConnected), WalletNotConnected},
		{"contract", &chain.ContractError{Contract: "secret1abc", Message: "bad key"}, ContractQueryFailed},
		{"http", fmt.Errorf("lookup: %w", &chain.HTTPError{StatusCode: 503}), ChainQueryFailed},
		{"deadline", context.DeadlineExceeded, ChainQueryFailed},
		{"mcp passthrough", NewMCPError(InvalidParams, "bad", nil), InvalidParams},
		{"unknown", errors.New("boom"), InternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromError(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.code, got.Code)
			assert.NotEmpty(t, got.Message)
		})
	}

	assert.Nil(t, FromError(nil))
}

func TestFromErrorContractData(t *testing.T) {
	got := FromError(&chain.ContractError{Contract: "secret1abc", Message: "Wrong viewing key"})
	assert.Equal(t, "Wrong viewing key", got.Message)
	assert.Equal(t, map[string]any{"contract": "secret1abc"}, got.Data)
}

func TestWrapError(t *testing.T) {
	err := WrapError(InvalidParams, "Invalid arguments", errors.New("unexpected EOF"))
	assert.Equal(t, InvalidParams, err.Code)
	assert.Equal(t, "Invalid arguments", err.Error())
	assert.Equal(t, map[string]any{"error": "unexpected EOF"}, err.Data)
}

func TestNormalizeSchema(t *testing.T) {
	source := map[string]any{
		"properties": map[string]any{"address": map[string]any{"type": "string"}},
		"required":   []string{"address"},
	}
	got := NormalizeSchema(source)

	assert.Equal(t, "object", got["type"])
	assert.Equal(t, DefaultJSONSchemaURI, got["$schema"])

	got["properties"].(map[string]any)["address"].(map[string]any)["type"] = "integer"
	assert.Equal(t, "string", source["properties"].(map[string]any)["address"].(map[string]any)["type"])
	_, hasSchema := source["$schema"]
	assert.False(t, hasSchema)
}

func TestResultEncoding(t *testing.T) {
	ok, err := json.Marshal(TextResult("Balance: 1.5 SSCRT", map[string]any{"amount": "1500000"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":[{"type":"text","text":"Balance: 1.5 SSCRT"}],"structuredContent":{"amount":"1500000"}}`, string(ok))

	failed, err := json.Marshal(ErrorResult(NewMCPError(TokenNotFound, "token not found: FOO", nil)))
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":[{"type":"text","text":"token not found: FOO"}],"structuredContent":{"code":10004,"message":"token not found: FOO"},"isError":true}`, string(failed))
}
