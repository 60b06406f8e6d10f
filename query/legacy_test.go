package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/MrGarbonzo/secret-network-mcp/internal/logger"
)

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	prev := logger.Log
	logger.Log = zap.New(core)
	t.Cleanup(func() { logger.Log = prev })
	return logs
}

func TestFormatTokenBalanceQueryPermit(t *testing.T) {
	logs := observeLogs(t)

	got, err := FormatTokenBalanceQuery("", "", validRawPermit())
	require.NoError(t, err)

	want, err := TokenBalanceWithPermit(validRawPermit())
	require.NoError(t, err)
	wantQuery, err := want.Build()
	require.NoError(t, err)
	assert.Equal(t, wantQuery, got)
	assert.Zero(t, logs.Len())
}

func TestFormatTokenBalanceQueryLegacyFallback(t *testing.T) {
	logs := observeLogs(t)

	raw := validRawPermit()
	params := raw["params"].(map[string]any)
	params["permissions"] = []any{}
	params["allowed_tokens"] = nil
	delete(params, "chain_id")
	raw["chain_id"] = "pulsar-3"
	raw["signature"].(map[string]any)["pub_key"].(map[string]any)["type"] = "/cosmos.crypto.secp256k1.PubKey"

	got, err := FormatTokenBalanceQuery("", "", raw)
	require.NoError(t, err)

	assert.Equal(t, Query{
		"with_permit": map[string]any{
			"permit": map[string]any{
				"params": map[string]any{
					"permit_name": "p",
					"permissions": []any{},
					"chain_id":    "pulsar-3",
				},
				"signature": map[string]any{
					"pub_key": map[string]any{
						"type":  "/cosmos.crypto.secp256k1.PubKey",
						"value": "AAA",
					},
					"signature": "BBB",
				},
			},
			"query": map[string]any{"balance": map[string]any{}},
		},
	}, got)

	entries := logs.FilterField(zap.String("path", "legacy_permit_fallback")).All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
}

func TestLegacyCleanPermitCopiesLists(t *testing.T) {
	raw := validRawPermit()
	params := raw["params"].(map[string]any)
	permissions := []any{"balance", "history"}
	allowed := []any{"secret1k0jntykt7e4g3y88ltc60czgjuqdy4c9e8fzek"}
	params["permissions"] = permissions
	params["allowed_tokens"] = allowed

	clean, err := legacyCleanPermit(raw)
	require.NoError(t, err)

	permissions[0] = "owner"
	allowed[0] = "secret1other"
	params["permissions"] = append(permissions, "allowance")

	cleanParams := clean["params"].(map[string]any)
	assert.Equal(t, []any{"balance", "history"}, cleanParams["permissions"])
	assert.Equal(t, []any{"secret1k0jntykt7e4g3y88ltc60czgjuqdy4c9e8fzek"}, cleanParams["allowed_tokens"])
}

func TestFormatTokenBalanceQueryLegacyFailure(t *testing.T) {
	observeLogs(t)

	_, err := FormatTokenBalanceQuery("", "", RawPermit{"signature": map[string]any{}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPermit)
	assert.Contains(t, err.Error(), "legacy permit cleaning")
}

func TestFormatTokenBalanceQueryViewingKey(t *testing.T) {
	got, err := FormatTokenBalanceQuery("secret1abc", "key123", nil)
	require.NoError(t, err)
	assert.Equal(t, Query{"balance": map[string]any{"address": "secret1abc", "key": "key123"}}, got)

	_, err = FormatTokenBalanceQuery("", "key123", nil)
	assert.Error(t, err)
}

func TestFormatTokenBalanceQueryUnauthenticated(t *testing.T) {
	got, err := FormatTokenBalanceQuery("secret1abc", "", nil)
	require.NoError(t, err)
	assert.Equal(t, Query{"balance": map[string]any{}}, got)
}

func TestFormatStaticQueries(t *testing.T) {
	assert.Equal(t, Query{"token_info": map[string]any{}}, FormatTokenInfoQuery())
	assert.Equal(t, Query{"token_config": map[string]any{}}, FormatTokenConfigQuery())
	assert.Equal(t, Query{"exchange_rate": map[string]any{}}, FormatExchangeRateQuery())
	assert.Equal(t, Query{"minters": map[string]any{}}, FormatMintersQuery())
}

func TestFormatAllowanceQuery(t *testing.T) {
	got, err := FormatAllowanceQuery("A", "B", "")
	require.NoError(t, err)
	assert.Equal(t, Query{"allowance": map[string]any{"owner": "A", "spender": "B"}}, got)

	got, err = FormatAllowanceQuery("A", "B", "vk")
	require.NoError(t, err)
	assert.Equal(t, Query{"allowance": map[string]any{"owner": "A", "spender": "B", "key": "vk"}}, got)

	_, err = FormatAllowanceQuery("A", "", "")
	assert.ErrorIs(t, err, ErrMissingField)
}
