package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrGarbonzo/secret-network-mcp/chain"
	"github.com/MrGarbonzo/secret-network-mcp/mcp/types"
	"github.com/MrGarbonzo/secret-network-mcp/query"
)

func TestBuildQueryTool(t *testing.T) {
	r, server := newTestRegistry(t)
	server.chain.codeHash = "af74387e276be8874f07bec3a87023ee49b0e7ebe08178c49d0a49c3c98ed60e"

	tests := []struct {
		name     string
		args     map[string]any
		query    string
		auth     string
		codeHash string
	}{
		{
			name:  "public",
			args:  map[string]any{"contract": "SSCRT", "query_type": "token_info"},
			query: `{"token_info":{}}`,
			auth:  query.AuthNone,
		},
		{
			name:     "resolved code hash",
			args:     map[string]any{"contract": "SSCRT", "query_type": "minters", "resolve_code_hash": true},
			query:    `{"minters":{}}`,
			auth:     query.AuthNone,
			codeHash: server.chain.codeHash,
		},
		{
			name:  "viewing key balance",
			args:  map[string]any{"contract": "SSCRT", "query_type": "balance", "address": addrA, "viewing_key": "k"},
			query: `{"balance":{"address":"` + addrA + `","key":"k"}}`,
			auth:  query.AuthViewingKey,
		},
		{
			name:  "transaction history page",
			args:  map[string]any{"contract": "SSCRT", "query_type": "transaction_history", "address": addrA, "viewing_key": "k", "page": 0},
			query: `{"transaction_history":{"address":"` + addrA + `","key":"k","page":0,"page_size":10}}`,
			auth:  query.AuthViewingKey,
		},
		{
			name:  "nft count",
			args:  map[string]any{"contract": nftContract, "query_type": "num_tokens"},
			query: `{"num_tokens":{}}`,
			auth:  query.AuthNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := execute(t, r, "build_query", tt.args)
			require.NoError(t, err)

			out := structured(t, result)
			encoded, err := json.Marshal(out["query"])
			require.NoError(t, err)
			assert.JSONEq(t, tt.query, string(encoded))
			assert.Equal(t, tt.auth, out["auth_type"])
			assert.Equal(t, tt.codeHash, out["code_hash"])
		})
	}
	assert.Empty(t, server.chain.calls, "build_query never sends")
}

func TestBuildQueryToolErrors(t *testing.T) {
	r, _ := newTestRegistry(t)

	tests := []struct {
		name string
		args map[string]any
		code int
	}{
		{"credential on public query", map[string]any{"contract": "SSCRT", "query_type": "token_info", "viewing_key": "k"}, types.InvalidParams},
		{"missing token id", map[string]any{"contract": nftContract, "query_type": "nft_info"}, types.MissingField},
		{"allowance without spender", map[string]any{"contract": "SSCRT", "query_type": "allowance", "owner": addrA, "viewing_key": "k"}, types.InvalidParams},
		{"bad permit", map[string]any{"contract": "SSCRT", "query_type": "transfer_history", "address": addrA, "permit": map[string]any{"params": map[string]any{}}}, types.InvalidPermit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, r, "build_query", tt.args)
			assert.Equal(t, tt.code, mcpCode(t, err))
		})
	}
}

func TestQueryContractTool(t *testing.T) {
	r, server := newTestRegistry(t)
	server.chain.respond = func(q map[string]any) (json.RawMessage, error) {
		return json.Marshal(map[string]any{"received": q})
	}

	tests := []struct {
		name  string
		args  map[string]any
		query string
		audit string
	}{
		{
			name:  "raw",
			args:  map[string]any{"contract": nftContract, "query": map[string]any{"config": map[string]any{}}},
			query: `{"config":{}}`,
			audit: query.AuthNone,
		},
		{
			name: "viewing key",
			args: map[string]any{
				"contract": nftContract, "address": addrA, "viewing_key": "k",
				"query": map[string]any{"private_metadata": map[string]any{"token_id": "1"}},
			},
			query: `{"private_metadata":{"token_id":"1","viewer":{"address":"` + addrA + `","viewing_key":"k"}}}`,
			audit: query.AuthViewingKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, audit := types.WithAudit(context.Background())
			result, err := executeCtx(ctx, t, r, "query_contract", tt.args)
			require.NoError(t, err)
			assert.JSONEq(t, tt.query, string(server.chain.lastCall().Query))
			assert.Contains(t, structured(t, result), "received")

			contract, _, authType, _ := audit.Snapshot()
			assert.Equal(t, nftContract, contract)
			assert.Equal(t, tt.audit, authType)
		})
	}
}

func TestQueryContractToolPermit(t *testing.T) {
	r, server := newTestRegistry(t)
	ctx, audit := types.WithAudit(context.Background())

	_, err := executeCtx(ctx, t, r, "query_contract", map[string]any{
		"contract": "SSCRT",
		"query":    map[string]any{"balance": map[string]any{}},
		"permit":   testPermit("balance"),
	})
	require.NoError(t, err)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(server.chain.lastCall().Query, &sent))
	assert.Contains(t, sent, "with_permit")

	_, queryType, authType, digest := audit.Snapshot()
	assert.Equal(t, "balance", queryType)
	assert.Equal(t, query.AuthPermit, authType)
	assert.NotEmpty(t, digest)
	assert.Len(t, server.progress, 2)
}

func TestQueryContractToolErrors(t *testing.T) {
	r, server := newTestRegistry(t)

	_, err := execute(t, r, "query_contract", map[string]any{
		"contract": "SSCRT", "address": addrA, "viewing_key": "k",
		"query": map[string]any{"a": map[string]any{}, "b": map[string]any{}},
	})
	assert.Equal(t, types.UnsupportedAuth, mcpCode(t, err))

	_, err = execute(t, r, "query_contract", map[string]any{
		"contract": "SSCRT", "viewing_key": "k", "query": map[string]any{"balance": map[string]any{}},
	})
	assert.Equal(t, types.InvalidParams, mcpCode(t, err))

	server.chain.err = &chain.ContractError{Contract: sscrt, Message: "unknown variant `config`"}
	_, err = execute(t, r, "query_contract", map[string]any{"contract": "SSCRT", "query": map[string]any{"config": map[string]any{}}})
	assert.Equal(t, types.ContractQueryFailed, mcpCode(t, err))
}
