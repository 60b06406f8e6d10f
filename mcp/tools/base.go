package tools

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/MrGarbonzo/secret-network-mcp/mcp/types"
	"github.com/MrGarbonzo/secret-network-mcp/query"
	"github.com/MrGarbonzo/secret-network-mcp/registry"
	"github.com/MrGarbonzo/secret-network-mcp/wallet"
)

// BaseTool provides common tool functionality
type BaseTool struct {
	name        string
	description string
	inputSchema map[string]any
	handler     types.ToolHandler
}

// Name returns the tool name
func (t *BaseTool) Name() string {
	return t.name
}

// Description returns the tool description
func (t *BaseTool) Description() string {
	return t.description
}

// InputSchema returns the tool's input schema
func (t *BaseTool) InputSchema() map[string]any {
	return t.inputSchema
}

// Handler returns the tool's handler function
func (t *BaseTool) Handler() types.ToolHandler {
	return t.handler
}

// ToolBuilder helps construct tools with fluent interface
type ToolBuilder struct {
	tool *BaseTool
}

// NewTool creates a new tool builder
func NewTool(name string) *ToolBuilder {
	return &ToolBuilder{
		tool: &BaseTool{
			name:        name,
			inputSchema: map[string]any{"type": "object", "properties": map[string]any{}},
		},
	}
}

// WithDescription sets the tool description
func (b *ToolBuilder) WithDescription(desc string) *ToolBuilder {
	b.tool.description = desc
	return b
}

// WithInputSchema sets the input schema
func (b *ToolBuilder) WithInputSchema(schema map[string]any) *ToolBuilder {
	b.tool.inputSchema = schema
	return b
}

// WithHandler sets the handler function
func (b *ToolBuilder) WithHandler(handler types.ToolHandler) *ToolBuilder {
	b.tool.handler = handler
	return b
}

// Build returns the constructed tool
func (b *ToolBuilder) Build() types.Tool {
	return b.tool
}

// object builds an object schema with the given properties and required keys.
func object(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// CommonSchemas provides reusable schema definitions
var CommonSchemas = struct {
	Address    map[string]any
	Token      map[string]any
	CodeHash   map[string]any
	ViewingKey map[string]any
	Permit     map[string]any
	TokenID    map[string]any
	Limit      map[string]any
}{
	Address: map[string]any{
		"type":        "string",
		"description": "Secret Network address (secret1...)",
		"pattern":     "^secret1[02-9ac-hj-np-z]{38}([02-9ac-hj-np-z]{20})?$",
	},
	Token: map[string]any{
		"type":        "string",
		"description": "Token symbol from the registry (e.g. SSCRT) or a contract address",
		"minLength":   1,
	},
	CodeHash: map[string]any{
		"type":        "string",
		"description": "Contract code hash; resolved from the chain when omitted",
		"pattern":     "^(0x)?[0-9a-fA-F]{64}$",
	},
	ViewingKey: map[string]any{
		"type":        "string",
		"description": "Viewing key of the queried address",
		"minLength":   1,
	},
	Permit: map[string]any{
		"type":        "object",
		"description": "Signed SNIP-24 query permit with params and signature",
	},
	TokenID: map[string]any{
		"type":        "string",
		"description": "NFT token id",
		"minLength":   1,
	},
	Limit: map[string]any{
		"type":    "integer",
		"minimum": 1,
		"maximum": 1000,
	},
}

// ParseParams is a helper to unmarshal parameters with proper error handling
func ParseParams[T any](params json.RawMessage) (*T, error) {
	var result T
	if len(params) == 0 || string(params) == "null" {
		return &result, nil
	}
	if err := json.Unmarshal(params, &result); err != nil {
		return nil, types.WrapError(types.InvalidParams, "Invalid arguments", err)
	}
	return &result, nil
}

// credentials are the optional viewing_key/permit arguments shared by
// authenticated tools.
type credentials struct {
	ViewingKey string          `json:"viewing_key,omitempty"`
	Permit     json.RawMessage `json:"permit,omitempty"`
}

// rawPermit decodes the permit argument, returning nil when absent. At most
// one credential may be supplied.
func (c credentials) rawPermit() (query.RawPermit, error) {
	if c.ViewingKey != "" && c.hasPermit() {
		return nil, types.NewMCPError(types.InvalidParams, "Supply either viewing_key or permit, not both", nil)
	}
	if !c.hasPermit() {
		return nil, nil
	}
	return query.ParseRawPermit(c.Permit)
}

// authFor returns the auth method for address from whichever credential was
// supplied.
func (c credentials) authFor(address string) (query.AuthMethod, error) {
	raw, err := c.rawPermit()
	if err != nil {
		return nil, err
	}
	return query.CredentialAuth(address, c.ViewingKey, raw)
}

func (c credentials) hasPermit() bool {
	return len(c.Permit) > 0 && string(c.Permit) != "null"
}

func (c credentials) requireAny(tool string) error {
	if c.ViewingKey == "" && !c.hasPermit() {
		return types.NewMCPError(types.InvalidParams, tool+" requires viewing_key or permit", nil)
	}
	return nil
}

// resolveContract maps a registry symbol or raw contract address to a token
// entry. Unknown addresses are accepted with no metadata so that any contract
// can be queried.
func resolveContract(tokens *registry.Registry, ref, codeHash string) (registry.Token, error) {
	ref = strings.TrimSpace(ref)
	token, err := tokens.Lookup(ref)
	if err != nil {
		if !errors.Is(err, registry.ErrTokenNotFound) || wallet.ValidateAddress(ref) != nil {
			return registry.Token{}, err
		}
		token = registry.Token{Address: ref}
	}
	if codeHash != "" {
		token.CodeHash = codeHash
	}
	return token, nil
}

// validateAddress wraps wallet.ValidateAddress as an InvalidParams error.
func validateAddress(field, address string) error {
	if err := wallet.ValidateAddress(address); err != nil {
		return types.NewMCPError(types.InvalidParams, "Invalid "+field, map[string]any{"error": err.Error()})
	}
	return nil
}

func notifyProgress(ctx context.Context, server types.ServerInterface, progress, total float64, message string) {
	if server == nil {
		return
	}
	server.ReportProgress(ctx, progress, total, message)
}

func isCancelled(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}
