package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MrGarbonzo/secret-network-mcp/mcp/types"
	"github.com/MrGarbonzo/secret-network-mcp/registry"
)

// NewListTokensTool lists registry entries, optionally filtered.
func NewListTokensTool(server types.ServerInterface) types.Tool {
	return NewTool("list_tokens").
		WithDescription("List known token and NFT contracts. pattern is a glob over symbol and name, e.g. \"s*\".").
		WithInputSchema(object(map[string]any{
			"kind":    map[string]any{"type": "string", "enum": []string{string(registry.KindSNIP20), string(registry.KindSNIP721)}},
			"pattern": map[string]any{"type": "string", "minLength": 1},
		})).
		WithHandler(func(ctx context.Context, params json.RawMessage) (any, error) {
			args, err := ParseParams[struct {
				Kind    registry.Kind `json:"kind"`
				Pattern string        `json:"pattern"`
			}](params)
			if err != nil {
				return nil, err
			}

			tokens := server.Tokens().List(args.Kind)
			if args.Pattern != "" {
				matched, err := server.Tokens().Filter(args.Pattern)
				if err != nil {
					return nil, types.WrapError(types.InvalidParams, "Invalid pattern", err)
				}
				tokens = tokens[:0:0]
				for _, t := range matched {
					if args.Kind == "" || t.Kind == args.Kind {
						tokens = append(tokens, t)
					}
				}
			}

			var text strings.Builder
			fmt.Fprintf(&text, "%d token(s):", len(tokens))
			for _, t := range tokens {
				fmt.Fprintf(&text, "\n- %s (%s) %s [%s, %d decimals]", t.Symbol, t.Name, t.Address, t.Kind, t.Decimals)
			}
			return types.TextResult(text.String(), map[string]any{"tokens": tokens}), nil
		}).
		Build()
}

// NewLookupTokenTool resolves a symbol or address.
func NewLookupTokenTool(server types.ServerInterface) types.Tool {
	return NewTool("lookup_token").
		WithDescription("Resolve a token symbol (case-insensitive) or contract address to its registry entry").
		WithInputSchema(object(map[string]any{"token": CommonSchemas.Token}, "token")).
		WithHandler(func(ctx context.Context, params json.RawMessage) (any, error) {
			args, err := ParseParams[struct {
				Token string `json:"token"`
			}](params)
			if err != nil {
				return nil, err
			}
			token, err := server.Tokens().Lookup(strings.TrimSpace(args.Token))
			if err != nil {
				return nil, err
			}
			return types.TextResult(
				fmt.Sprintf("%s (%s): %s, %d decimals", token.Symbol, token.Name, token.Address, token.Decimals),
				token,
			), nil
		}).
		Build()
}
