package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MrGarbonzo/secret-network-mcp/mcp/types"
)

var tokenRef = map[string]any{
	"token":     CommonSchemas.Token,
	"code_hash": CommonSchemas.CodeHash,
}

func withTokenRef(properties map[string]any) map[string]any {
	for k, v := range tokenRef {
		properties[k] = v
	}
	return properties
}

// publicTokenTool builds a tool for a parameterless SNIP-20 query.
func publicTokenTool(server types.ServerInterface, name, queryType, description string) types.Tool {
	return NewTool(name).
		WithDescription(description).
		WithInputSchema(object(withTokenRef(map[string]any{}), "token")).
		WithHandler(func(ctx context.Context, params json.RawMessage) (any, error) {
			args, err := ParseParams[struct {
				Token    string `json:"token"`
				CodeHash string `json:"code_hash"`
			}](params)
			if err != nil {
				return nil, err
			}
			token, raw, err := runQuery(ctx, server, queryRequest{
				Contract:  args.Token,
				CodeHash:  args.CodeHash,
				QueryType: queryType,
			})
			if err != nil {
				return nil, err
			}
			return contractResult(fmt.Sprintf("%s for %s", queryType, contractLabel(token)), raw)
		}).
		Build()
}

// NewGetTokenInfoTool reports name, symbol, decimals and supply.
func NewGetTokenInfoTool(server types.ServerInterface) types.Tool {
	return publicTokenTool(server, "get_token_info", "token_info",
		"Get SNIP-20 token name, symbol, decimals and total supply")
}

// NewGetTokenConfigTool reports the enabled token features.
func NewGetTokenConfigTool(server types.ServerInterface) types.Tool {
	return publicTokenTool(server, "get_token_config", "token_config",
		"Get SNIP-20 token configuration flags (public supply, deposit, redeem, mint, burn)")
}

// NewGetExchangeRateTool reports the token's rate against its native denom.
func NewGetExchangeRateTool(server types.ServerInterface) types.Tool {
	return publicTokenTool(server, "get_exchange_rate", "exchange_rate",
		"Get the SNIP-20 exchange rate against the native denomination")
}

// NewGetMintersTool lists the token's minters.
func NewGetMintersTool(server types.ServerInterface) types.Tool {
	return publicTokenTool(server, "get_minters", "minters",
		"List the addresses allowed to mint the SNIP-20 token")
}

// GetTokenBalanceTool reads a private SNIP-20 balance with a viewing key or
// permit.
type GetTokenBalanceTool struct {
	*BaseTool
	server types.ServerInterface
}

// NewGetTokenBalanceTool creates the token balance tool.
func NewGetTokenBalanceTool(server types.ServerInterface) *GetTokenBalanceTool {
	tool := &GetTokenBalanceTool{server: server}

	tool.BaseTool = &BaseTool{
		name:        "get_token_balance",
		description: "Get a private SNIP-20 balance. Requires either a viewing_key (with address) or a signed permit granting \"balance\".",
		inputSchema: object(withTokenRef(map[string]any{
			"address":     CommonSchemas.Address,
			"viewing_key": CommonSchemas.ViewingKey,
			"permit":      CommonSchemas.Permit,
		}), "token"),
		handler: tool.handle,
	}

	return tool
}

func (t *GetTokenBalanceTool) handle(ctx context.Context, params json.RawMessage) (any, error) {
	args, err := ParseParams[struct {
		credentials
		Token    string `json:"token"`
		CodeHash string `json:"code_hash"`
		Address  string `json:"address"`
	}](params)
	if err != nil {
		return nil, err
	}

	token, raw, err := runQuery(ctx, t.server, queryRequest{
		credentials: args.credentials,
		Contract:    args.Token,
		CodeHash:    args.CodeHash,
		QueryType:   "balance",
		Address:     args.Address,
	})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Balance struct {
			Amount string `json:"amount"`
		} `json:"balance"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil || resp.Balance.Amount == "" {
		return contractResult("balance response from "+contractLabel(token), raw)
	}

	owner := args.Address
	if owner == "" {
		owner = "permit signer"
	}
	structured := map[string]any{
		"contract_address": token.Address,
		"amount":           resp.Balance.Amount,
	}
	text := fmt.Sprintf("Balance of %s in %s: %s", owner, contractLabel(token), resp.Balance.Amount)
	if token.Symbol != "" {
		formatted := formatAmount(resp.Balance.Amount, token.Decimals)
		structured["symbol"] = token.Symbol
		structured["decimals"] = token.Decimals
		structured["formatted"] = formatted
		text = fmt.Sprintf("Balance of %s: %s %s", owner, formatted, token.Symbol)
	}
	return types.TextResult(text, structured), nil
}

// NewGetAllowanceTool reads the allowance granted by owner to spender.
func NewGetAllowanceTool(server types.ServerInterface) types.Tool {
	return NewTool("get_allowance").
		WithDescription("Get the SNIP-20 allowance owner granted to spender. The viewing key belongs to key_holder (owner by default); a permit may be signed by either party.").
		WithInputSchema(object(withTokenRef(map[string]any{
			"owner":       CommonSchemas.Address,
			"spender":     CommonSchemas.Address,
			"key_holder":  map[string]any{"type": "string", "enum": []string{"owner", "spender"}},
			"viewing_key": CommonSchemas.ViewingKey,
			"permit":      CommonSchemas.Permit,
		}), "token", "owner", "spender")).
		WithHandler(func(ctx context.Context, params json.RawMessage) (any, error) {
			args, err := ParseParams[struct {
				credentials
				Token     string `json:"token"`
				CodeHash  string `json:"code_hash"`
				Owner     string `json:"owner"`
				Spender   string `json:"spender"`
				KeyHolder string `json:"key_holder"`
			}](params)
			if err != nil {
				return nil, err
			}
			token, raw, err := runQuery(ctx, server, queryRequest{
				credentials: args.credentials,
				Contract:    args.Token,
				CodeHash:    args.CodeHash,
				QueryType:   "allowance",
				Owner:       args.Owner,
				Spender:     args.Spender,
				KeyHolder:   args.KeyHolder,
			})
			if err != nil {
				return nil, err
			}
			return contractResult(fmt.Sprintf("Allowance from %s to %s in %s", args.Owner, args.Spender, contractLabel(token)), raw)
		}).
		Build()
}

// NewGetTransferHistoryTool pages through an address's transfers.
func NewGetTransferHistoryTool(server types.ServerInterface) types.Tool {
	return NewTool("get_transfer_history").
		WithDescription("Get SNIP-20 transfer history for an address. Set transactions to true for the richer transaction_history query.").
		WithInputSchema(object(withTokenRef(map[string]any{
			"address":      CommonSchemas.Address,
			"viewing_key":  CommonSchemas.ViewingKey,
			"permit":       CommonSchemas.Permit,
			"page":         map[string]any{"type": "integer", "minimum": 0},
			"page_size":    CommonSchemas.Limit,
			"transactions": map[string]any{"type": "boolean"},
		}), "token", "address")).
		WithHandler(func(ctx context.Context, params json.RawMessage) (any, error) {
			args, err := ParseParams[struct {
				credentials
				Token        string `json:"token"`
				CodeHash     string `json:"code_hash"`
				Address      string `json:"address"`
				Page         *int   `json:"page"`
				PageSize     *int   `json:"page_size"`
				Transactions bool   `json:"transactions"`
			}](params)
			if err != nil {
				return nil, err
			}
			queryType := "transfer_history"
			if args.Transactions {
				queryType = "transaction_history"
			}
			token, raw, err := runQuery(ctx, server, queryRequest{
				credentials: args.credentials,
				Contract:    args.Token,
				CodeHash:    args.CodeHash,
				QueryType:   queryType,
				Address:     args.Address,
				Page:        args.Page,
				PageSize:    args.PageSize,
			})
			if err != nil {
				return nil, err
			}
			return contractResult(fmt.Sprintf("%s of %s in %s", queryType, args.Address, contractLabel(token)), raw)
		}).
		Build()
}
