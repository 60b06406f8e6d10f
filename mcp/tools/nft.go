package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MrGarbonzo/secret-network-mcp/mcp/types"
)

// NewGetNFTTokensTool lists the token ids owned by an address.
func NewGetNFTTokensTool(server types.ServerInterface) types.Tool {
	return NewTool("get_nft_tokens").
		WithDescription("List SNIP-721 token ids owned by an address. Private inventories need the owner's viewing_key or a permit with the \"owner\" permission.").
		WithInputSchema(object(map[string]any{
			"contract":    CommonSchemas.Token,
			"code_hash":   CommonSchemas.CodeHash,
			"owner":       CommonSchemas.Address,
			"viewing_key": CommonSchemas.ViewingKey,
			"permit":      CommonSchemas.Permit,
			"limit":       CommonSchemas.Limit,
			"start_after": map[string]any{"type": "string", "description": "Pagination cursor: last token id of the previous page"},
		}, "contract", "owner")).
		WithHandler(func(ctx context.Context, params json.RawMessage) (any, error) {
			args, err := ParseParams[queryRequest](params)
			if err != nil {
				return nil, err
			}
			args.QueryType = "nft_tokens"
			token, raw, err := runQuery(ctx, server, *args)
			if err != nil {
				return nil, err
			}

			var resp struct {
				TokenList struct {
					Tokens []string `json:"tokens"`
				} `json:"token_list"`
			}
			summary := fmt.Sprintf("Tokens owned by %s in %s", args.Owner, contractLabel(token))
			if err := json.Unmarshal(raw, &resp); err == nil {
				summary = fmt.Sprintf("%s owns %d token(s) in %s", args.Owner, len(resp.TokenList.Tokens), contractLabel(token))
			}
			return contractResult(summary, raw)
		}).
		Build()
}

// NewGetNFTInfoTool reads the public metadata of one token.
func NewGetNFTInfoTool(server types.ServerInterface) types.Tool {
	return NewTool("get_nft_info").
		WithDescription("Get the public metadata of a SNIP-721 token").
		WithInputSchema(object(map[string]any{
			"contract":  CommonSchemas.Token,
			"code_hash": CommonSchemas.CodeHash,
			"token_id":  CommonSchemas.TokenID,
		}, "contract", "token_id")).
		WithHandler(func(ctx context.Context, params json.RawMessage) (any, error) {
			args, err := ParseParams[queryRequest](params)
			if err != nil {
				return nil, err
			}
			args.QueryType = "nft_info"
			token, raw, err := runQuery(ctx, server, *args)
			if err != nil {
				return nil, err
			}
			return contractResult(fmt.Sprintf("Token %s in %s", args.TokenID, contractLabel(token)), raw)
		}).
		Build()
}
