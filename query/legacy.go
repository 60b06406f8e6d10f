package query

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/MrGarbonzo/secret-network-mcp/internal/logger"
)

// The Format* functions keep the older flat call surface working on top of the
// builders. New code should use the builders or factory functions directly.

// FormatTokenBalanceQuery builds a balance query from at most one credential.
// If the permit fails strict validation it falls back to legacyCleanPermit and
// logs a warning; that path is a migration shim.
func FormatTokenBalanceQuery(address, viewingKey string, permit RawPermit) (Query, error) {
	if permit != nil {
		q, err := permitBalanceQuery(permit)
		if err == nil {
			return q, nil
		}

		logger.Log.Warn("Permit rejected by validator, using legacy permit cleaning",
			zap.String("path", "legacy_permit_fallback"),
			zap.Strings("discarded_fields", permit.ExtraFields()),
			zap.Error(err),
		)

		clean, legacyErr := legacyCleanPermit(permit)
		if legacyErr != nil {
			return nil, errors.Join(err, legacyErr)
		}
		return Query{
			"with_permit": map[string]any{
				"permit": clean,
				"query":  map[string]any{"balance": map[string]any{}},
			},
		}, nil
	}

	if viewingKey != "" {
		b, err := TokenBalanceWithViewingKey(address, viewingKey)
		if err != nil {
			return nil, err
		}
		return b.Build()
	}

	return NewBalanceQuery().Build()
}

func permitBalanceQuery(permit RawPermit) (Query, error) {
	b, err := TokenBalanceWithPermit(permit)
	if err != nil {
		return nil, err
	}
	return b.Build()
}

// FormatTokenInfoQuery returns {token_info: {}}.
func FormatTokenInfoQuery() Query {
	return Query{"token_info": map[string]any{}}
}

// FormatTokenConfigQuery returns {token_config: {}}.
func FormatTokenConfigQuery() Query {
	return Query{"token_config": map[string]any{}}
}

// FormatExchangeRateQuery returns {exchange_rate: {}}.
func FormatExchangeRateQuery() Query {
	return Query{"exchange_rate": map[string]any{}}
}

// FormatMintersQuery returns {minters: {}}.
func FormatMintersQuery() Query {
	return Query{"minters": map[string]any{}}
}

// FormatAllowanceQuery builds an allowance query, adding the viewing key when
// one is given. The key is assumed to belong to owner.
func FormatAllowanceQuery(owner, spender, viewingKey string) (Query, error) {
	b := AllowanceBetween(owner, spender)
	if viewingKey != "" {
		auth, err := NewViewingKeyAuth(owner, viewingKey)
		if err != nil {
			return nil, err
		}
		b.WithAuth(auth)
	}
	return b.Build()
}

// legacyCleanPermit is the pre-validator cleaning routine. It copies whatever
// params and signature fields are present, drops nil params, resolves chain_id
// like ValidateAndClean and leaves pub_key.type untouched.
func legacyCleanPermit(raw RawPermit) (map[string]any, error) {
	params, ok := raw["params"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("legacy permit cleaning: params missing or not an object")
	}
	signature, ok := raw["signature"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("legacy permit cleaning: signature missing or not an object")
	}

	cleanParams := make(map[string]any, 4)
	for _, field := range []string{"permit_name", "allowed_tokens", "permissions"} {
		if v, present := params[field]; present && v != nil {
			cleanParams[field] = cloneList(v)
		}
	}
	cleanParams["chain_id"] = resolveChainID(raw, params)

	cleanSignature := map[string]any{}
	if pk, ok := signature["pub_key"].(map[string]any); ok {
		pubKey := map[string]any{}
		if v, present := pk["type"]; present && v != nil {
			pubKey["type"] = v
		}
		if v, present := pk["value"]; present && v != nil {
			pubKey["value"] = v
		}
		cleanSignature["pub_key"] = pubKey
	}
	if v, present := signature["signature"]; present && v != nil {
		cleanSignature["signature"] = v
	}

	return map[string]any{
		"params":    cleanParams,
		"signature": cleanSignature,
	}, nil
}

// cloneList copies slice values so the cleaned permit does not share backing
// arrays with the caller's.
func cloneList(v any) any {
	switch list := v.(type) {
	case []any:
		return slices.Clone(list)
	case []string:
		return slices.Clone(list)
	}
	return v
}
