package query

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBalanceWithPermitEndToEnd(t *testing.T) {
	b, err := TokenBalanceWithPermit(validRawPermit())
	require.NoError(t, err)

	got, err := b.Build()
	require.NoError(t, err)

	encoded, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"with_permit": {
			"permit": {
				"params": {
					"permit_name": "p",
					"allowed_tokens": [],
					"permissions": ["balance"],
					"chain_id": "secret-4"
				},
				"signature": {
					"pub_key": {"type": "tendermint/PubKeySecp256k1", "value": "AAA"},
					"signature": "BBB"
				}
			},
			"query": {"balance": {}}
		}
	}`, string(encoded))
}

func TestTokenBalanceWithViewingKey(t *testing.T) {
	b, err := TokenBalanceWithViewingKey("secret1abc", "key123")
	require.NoError(t, err)

	got, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, Query{"balance": map[string]any{"address": "secret1abc", "key": "key123"}}, got)

	_, err = TokenBalanceWithViewingKey("secret1abc", "")
	assert.Error(t, err)
}

func TestTokenInfoFactory(t *testing.T) {
	b := TokenInfo()
	assert.Equal(t, AuthNone, b.Auth().Type())

	got, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, Query{"token_info": map[string]any{}}, got)
}

func TestAllowanceFactories(t *testing.T) {
	b, err := AllowanceWithPermit("ownerX", "spenderY", validRawPermit())
	require.NoError(t, err)
	got, err := b.Build()
	require.NoError(t, err)
	wp := got["with_permit"].(map[string]any)
	assert.Equal(t, Query{"allowance": map[string]any{"owner": "ownerX", "spender": "spenderY"}}, wp["query"])

	vk, err := AllowanceWithViewingKey("ownerX", "spenderY", "ownerX", "vk")
	require.NoError(t, err)
	got, err = vk.Build()
	require.NoError(t, err)
	assert.Equal(t, Query{"allowance": map[string]any{
		"owner":   "ownerX",
		"spender": "spenderY",
		"key":     "vk",
	}}, got)

	bad := validRawPermit()
	delete(bad, "params")
	_, err = AllowanceWithPermit("ownerX", "spenderY", bad)
	assert.ErrorIs(t, err, ErrInvalidPermit)
}

func TestNFTOwnershipFactories(t *testing.T) {
	b, err := NFTOwnershipWithPermit("ownerX", validRawPermit())
	require.NoError(t, err)
	got, err := b.Build()
	require.NoError(t, err)
	wp := got["with_permit"].(map[string]any)
	assert.Equal(t, Query{"tokens": map[string]any{"owner": "ownerX", "limit": 100}}, wp["query"])

	vk, err := NFTOwnershipWithViewingKey("ownerX", "vk")
	require.NoError(t, err)
	got, err = vk.Build()
	require.NoError(t, err)
	assert.Contains(t, got["tokens"], "viewer")
}

func TestTransferHistoryWithAuth(t *testing.T) {
	b, err := TransferHistoryWithAuth("secret1abc", "vk", nil)
	require.NoError(t, err)
	got, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, Query{"transfer_history": map[string]any{
		"address":   "secret1abc",
		"key":       "vk",
		"page_size": DefaultHistoryPageSize,
	}}, got)

	_, err = TransferHistoryWithAuth("secret1abc", "", nil)
	assert.ErrorIs(t, err, ErrUnsupportedAuth)
}

func TestCredentialAuth(t *testing.T) {
	auth, err := CredentialAuth("secret1abc", "", nil)
	require.NoError(t, err)
	assert.Equal(t, AuthNone, auth.Type())

	auth, err = CredentialAuth("secret1abc", "vk", nil)
	require.NoError(t, err)
	assert.Equal(t, AuthViewingKey, auth.Type())

	auth, err = CredentialAuth("", "", validRawPermit())
	require.NoError(t, err)
	assert.Equal(t, AuthPermit, auth.Type())

	_, err = CredentialAuth("secret1abc", "vk", validRawPermit())
	assert.ErrorIs(t, err, ErrUnsupportedAuth)
}
