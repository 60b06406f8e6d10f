package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/MrGarbonzo/secret-network-mcp/internal/logger"
	"github.com/MrGarbonzo/secret-network-mcp/mcp/types"
	"github.com/MrGarbonzo/secret-network-mcp/query"
	"github.com/MrGarbonzo/secret-network-mcp/registry"
)

// Query types accepted by build_query.
var queryTypes = []string{
	"token_info", "token_config", "exchange_rate", "minters",
	"balance", "allowance", "transfer_history", "transaction_history",
	"nft_tokens", "nft_info", "num_tokens", "contract_info",
}

// queryRequest is the argument set shared by build_query and the typed
// contract tools. Only the fields relevant to QueryType are read.
type queryRequest struct {
	credentials
	Contract   string `json:"contract"`
	CodeHash   string `json:"code_hash,omitempty"`
	QueryType  string `json:"query_type"`
	Address    string `json:"address,omitempty"`
	Owner      string `json:"owner,omitempty"`
	Spender    string `json:"spender,omitempty"`
	KeyHolder  string `json:"key_holder,omitempty"`
	TokenID    string `json:"token_id,omitempty"`
	StartAfter string `json:"start_after,omitempty"`
	Page       *int   `json:"page,omitempty"`
	PageSize   *int   `json:"page_size,omitempty"`
	Limit      *int   `json:"limit,omitempty"`
}

// builtQuery is a ready-to-send query and a summary of its credential.
type builtQuery struct {
	Query        query.Query
	AuthType     string
	PermitDigest string
}

func (r queryRequest) build() (builtQuery, error) {
	switch r.QueryType {
	case "token_info":
		return r.public(query.TokenInfo())
	case "token_config":
		return r.public(query.NewTokenConfigQuery())
	case "exchange_rate":
		return r.public(query.NewExchangeRateQuery())
	case "minters":
		return r.public(query.NewMintersQuery())
	case "num_tokens":
		return r.public(query.NewNumTokensQuery())
	case "contract_info":
		return r.public(query.NewContractInfoQuery())
	case "nft_info":
		return r.public(query.NewNFTInfoQuery(r.TokenID))
	case "balance":
		return r.balance()
	case "allowance":
		return r.allowance()
	case "transfer_history", "transaction_history":
		return r.history()
	case "nft_tokens":
		return r.nftTokens()
	default:
		return builtQuery{}, types.NewMCPError(types.InvalidParams, fmt.Sprintf("Unknown query_type %q", r.QueryType),
			map[string]any{"supported": queryTypes})
	}
}

func (r queryRequest) public(b query.Builder) (builtQuery, error) {
	if r.ViewingKey != "" || r.hasPermit() {
		return builtQuery{}, types.NewMCPError(types.InvalidParams,
			fmt.Sprintf("%s is a public query and takes no viewing_key or permit", r.QueryType), nil)
	}
	q, err := b.Build()
	if err != nil {
		return builtQuery{}, err
	}
	return builtQuery{Query: q, AuthType: query.AuthNone}, nil
}

// balance goes through the compatibility adapter so that permits rejected by
// the validator still get the legacy cleaning path.
func (r queryRequest) balance() (builtQuery, error) {
	if err := r.requireAny("balance"); err != nil {
		return builtQuery{}, err
	}
	raw, err := r.rawPermit()
	if err != nil {
		return builtQuery{}, err
	}
	if r.ViewingKey != "" {
		if err := validateAddress("address", r.Address); err != nil {
			return builtQuery{}, err
		}
	}
	q, err := query.FormatTokenBalanceQuery(r.Address, r.ViewingKey, raw)
	if err != nil {
		return builtQuery{}, err
	}
	out := builtQuery{Query: q, AuthType: query.AuthViewingKey}
	if raw != nil {
		out.AuthType = query.AuthPermit
		if permit, err := query.ValidateAndClean(raw); err == nil {
			out.PermitDigest, _ = query.PermitDigest(permit)
		}
	}
	return out, nil
}

func (r queryRequest) allowance() (builtQuery, error) {
	if err := validateAddress("owner", r.Owner); err != nil {
		return builtQuery{}, err
	}
	if err := validateAddress("spender", r.Spender); err != nil {
		return builtQuery{}, err
	}
	if err := r.requireAny("allowance"); err != nil {
		return builtQuery{}, err
	}
	holder := r.Owner
	if r.KeyHolder == "spender" {
		holder = r.Spender
	}
	auth, err := r.authFor(holder)
	if err != nil {
		return builtQuery{}, err
	}
	return r.finish(query.AllowanceBetween(r.Owner, r.Spender).WithAuth(auth), auth)
}

func (r queryRequest) history() (builtQuery, error) {
	if err := validateAddress("address", r.Address); err != nil {
		return builtQuery{}, err
	}
	if err := r.requireAny(r.QueryType); err != nil {
		return builtQuery{}, err
	}
	auth, err := r.authFor(r.Address)
	if err != nil {
		return builtQuery{}, err
	}
	b := query.NewTransferHistoryQuery()
	if r.QueryType == "transaction_history" {
		b = query.NewTransactionHistoryQuery()
	}
	b.ForAddress(r.Address).WithAuth(auth)
	if r.Page != nil {
		b.WithPage(*r.Page)
	}
	if r.PageSize != nil {
		b.WithPageSize(*r.PageSize)
	}
	return r.finish(b, auth)
}

func (r queryRequest) nftTokens() (builtQuery, error) {
	if err := validateAddress("owner", r.Owner); err != nil {
		return builtQuery{}, err
	}
	auth, err := r.authFor(r.Owner)
	if err != nil {
		return builtQuery{}, err
	}
	if permitAuth, ok := auth.(*query.PermitAuth); ok && !permitAuth.Permit().HasPermission("owner") {
		return builtQuery{}, &query.PermitValidationError{Field: "params.permissions", Reason: `listing tokens requires the "owner" permission`}
	}
	b := query.NFTOwnershipFor(r.Owner).WithAuth(auth)
	if r.Limit != nil {
		b.WithLimit(*r.Limit)
	}
	if r.StartAfter != "" {
		b.StartAfter(r.StartAfter)
	}
	return r.finish(b, auth)
}

func (r queryRequest) finish(b query.Builder, auth query.AuthMethod) (builtQuery, error) {
	q, err := b.Build()
	if err != nil {
		return builtQuery{}, err
	}
	return describeAuth(q, auth), nil
}

func describeAuth(q query.Query, auth query.AuthMethod) builtQuery {
	out := builtQuery{Query: q, AuthType: query.AuthNone}
	if auth == nil {
		return out
	}
	out.AuthType = auth.Type()
	if permitAuth, ok := auth.(*query.PermitAuth); ok {
		out.PermitDigest, _ = query.PermitDigest(permitAuth.Permit())
		if discarded := permitAuth.Discarded(); len(discarded) > 0 {
			logger.Log.Debug("Discarded non-canonical permit fields",
				zap.Strings("fields", discarded),
				zap.String("permit_digest", out.PermitDigest))
		}
	}
	return out
}

// runQuery builds req, records it for auditing and sends it to the contract.
func runQuery(ctx context.Context, server types.ServerInterface, req queryRequest) (registry.Token, json.RawMessage, error) {
	token, err := resolveContract(server.Tokens(), req.Contract, req.CodeHash)
	if err != nil {
		return registry.Token{}, nil, err
	}
	built, err := req.build()
	if err != nil {
		return token, nil, err
	}
	raw, err := sendQuery(ctx, server, token, req.QueryType, built)
	return token, raw, err
}

func sendQuery(ctx context.Context, server types.ServerInterface, token registry.Token, queryType string, built builtQuery) (json.RawMessage, error) {
	types.AuditFromContext(ctx).Record(token.Address, queryType, built.AuthType, built.PermitDigest)
	logger.Log.Debug("Querying contract",
		zap.String("contract", token.Address),
		zap.String("query_type", queryType),
		zap.String("auth", built.AuthType),
		zap.String("permit_digest", built.PermitDigest))
	notifyProgress(ctx, server, 0, 1, "querying "+token.Address)
	raw, err := server.Chain().QueryContract(ctx, token.Address, token.CodeHash, built.Query)
	if err != nil {
		return nil, err
	}
	notifyProgress(ctx, server, 1, 1, "done")
	return raw, nil
}

func contractLabel(token registry.Token) string {
	if token.Symbol == "" {
		return token.Address
	}
	return fmt.Sprintf("%s (%s)", token.Symbol, token.Address)
}

// NewBuildQueryTool returns the authenticated query JSON without sending it,
// for clients that execute queries through their own wallet.
func NewBuildQueryTool(server types.ServerInterface) types.Tool {
	return NewTool("build_query").
		WithDescription("Build an authenticated SNIP-20/SNIP-721 query without executing it. Returns the contract address, code hash and query JSON.").
		WithInputSchema(object(map[string]any{
			"contract":    CommonSchemas.Token,
			"code_hash":   CommonSchemas.CodeHash,
			"query_type":  map[string]any{"type": "string", "enum": queryTypes},
			"address":     CommonSchemas.Address,
			"owner":       CommonSchemas.Address,
			"spender":     CommonSchemas.Address,
			"key_holder":  map[string]any{"type": "string", "enum": []string{"owner", "spender"}},
			"token_id":    CommonSchemas.TokenID,
			"start_after": map[string]any{"type": "string"},
			"page":        map[string]any{"type": "integer", "minimum": 0},
			"page_size":   CommonSchemas.Limit,
			"limit":       CommonSchemas.Limit,
			"viewing_key": CommonSchemas.ViewingKey,
			"permit":      CommonSchemas.Permit,
			"resolve_code_hash": map[string]any{
				"type":        "boolean",
				"description": "Look up the code hash on chain when it is not known locally",
			},
		}, "contract", "query_type")).
		WithHandler(func(ctx context.Context, params json.RawMessage) (any, error) {
			args, err := ParseParams[struct {
				queryRequest
				ResolveCodeHash bool `json:"resolve_code_hash"`
			}](params)
			if err != nil {
				return nil, err
			}
			token, err := resolveContract(server.Tokens(), args.Contract, args.CodeHash)
			if err != nil {
				return nil, err
			}
			built, err := args.build()
			if err != nil {
				return nil, err
			}
			if token.CodeHash == "" && args.ResolveCodeHash {
				if token.CodeHash, err = server.Chain().GetCodeHash(ctx, token.Address); err != nil {
					return nil, err
				}
			}

			result := map[string]any{
				"contract_address": token.Address,
				"code_hash":        token.CodeHash,
				"query":            built.Query,
				"auth_type":        built.AuthType,
			}
			return jsonResult(fmt.Sprintf("%s query for %s", args.QueryType, contractLabel(token)), result)
		}).
		Build()
}

// QueryContractTool sends an arbitrary query, optionally wrapped with a
// credential.
type QueryContractTool struct {
	*BaseTool
	server types.ServerInterface
}

// NewQueryContractTool creates the raw contract query tool.
func NewQueryContractTool(server types.ServerInterface) *QueryContractTool {
	tool := &QueryContractTool{server: server}

	tool.BaseTool = &BaseTool{
		name:        "query_contract",
		description: "Send a raw smart query to any contract. A viewing_key (with address) or permit wraps the query in the matching authenticated shape.",
		inputSchema: object(map[string]any{
			"contract":    CommonSchemas.Token,
			"code_hash":   CommonSchemas.CodeHash,
			"query":       map[string]any{"type": "object", "minProperties": 1, "description": "Contract query, e.g. {\"token_info\":{}}"},
			"address":     CommonSchemas.Address,
			"viewing_key": CommonSchemas.ViewingKey,
			"permit":      CommonSchemas.Permit,
		}, "contract", "query"),
		handler: tool.handle,
	}

	return tool
}

func (t *QueryContractTool) handle(ctx context.Context, params json.RawMessage) (any, error) {
	args, err := ParseParams[struct {
		credentials
		Contract string      `json:"contract"`
		CodeHash string      `json:"code_hash"`
		Query    query.Query `json:"query"`
		Address  string      `json:"address"`
	}](params)
	if err != nil {
		return nil, err
	}
	if args.ViewingKey != "" {
		if err := validateAddress("address", args.Address); err != nil {
			return nil, err
		}
	}

	token, err := resolveContract(t.server.Tokens(), args.Contract, args.CodeHash)
	if err != nil {
		return nil, err
	}
	auth, err := args.authFor(args.Address)
	if err != nil {
		return nil, err
	}
	wrapped, err := auth.Wrap(args.Query)
	if err != nil {
		return nil, err
	}

	variant, ok := args.Query.Variant()
	if !ok {
		variant = "raw"
	}
	raw, err := sendQuery(ctx, t.server, token, variant, describeAuth(wrapped, auth))
	if err != nil {
		return nil, err
	}
	return contractResult(fmt.Sprintf("%s response from %s", variant, contractLabel(token)), raw)
}
