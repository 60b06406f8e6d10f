// Package types provides shared types and interfaces for MCP components
// This avoids circular dependencies between packages
package types

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/MrGarbonzo/secret-network-mcp/chain"
	"github.com/MrGarbonzo/secret-network-mcp/query"
	"github.com/MrGarbonzo/secret-network-mcp/registry"
	"github.com/MrGarbonzo/secret-network-mcp/wallet"
)

// ServerInterface defines what tools need from the server
type ServerInterface interface {
	Chain() chain.Querier
	Tokens() *registry.Registry
	Wallets() wallet.Store
	GetSessionID() string
	ChainID() string
	ReportProgress(ctx context.Context, progress, total float64, message string)
}

// ToolHandler represents a function that handles a tool call
type ToolHandler func(ctx context.Context, params json.RawMessage) (any, error)

// Component represents a registrable MCP component
type Component interface {
	Name() string
	Description() string
}

// Tool represents an executable tool with handler
type Tool interface {
	Component
	Handler() ToolHandler
	InputSchema() map[string]any
}

// DefaultJSONSchemaURI represents the canonical JSON Schema reference for tool inputs.
const DefaultJSONSchemaURI = "https://json-schema.org/draft/2020-12/schema"

// NormalizeSchema clones the provided schema and injects required defaults.
func NormalizeSchema(schema map[string]any) map[string]any {
	cloned := cloneSchemaMap(schema)
	if cloned == nil {
		cloned = map[string]any{}
	}
	if _, ok := cloned["type"]; !ok {
		cloned["type"] = "object"
	}
	if _, ok := cloned["$schema"]; !ok {
		cloned["$schema"] = DefaultJSONSchemaURI
	}
	return cloned
}

func cloneSchemaMap(source map[string]any) map[string]any {
	if source == nil {
		return nil
	}
	result := make(map[string]any, len(source))
	for key, value := range source {
		result[key] = cloneSchemaValue(value)
	}
	return result
}

func cloneSchemaValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return cloneSchemaMap(typed)
	case []any:
		result := make([]any, len(typed))
		for i, v := range typed {
			result[i] = cloneSchemaValue(v)
		}
		return result
	case []string:
		return append([]string(nil), typed...)
	default:
		return typed
	}
}

// ToolDefinition is the tool metadata exposed to clients.
type ToolDefinition struct {
	Name         string         `json:"name"`
	Title        string         `json:"title,omitempty"`
	Description  string         `json:"description,omitempty"`
	InputSchema  map[string]any `json:"inputSchema,omitempty"`
	OutputSchema map[string]any `json:"outputSchema,omitempty"`
	Annotations  map[string]any `json:"annotations,omitempty"`
}

// Error codes for MCP. JSON-RPC codes are negative, domain codes use 10xxx.
const (
	ParseError     = -32700
	InvalidRequest = -32600
	MethodNotFound = -32601
	InvalidParams  = -32602
	InternalError  = -32603

	InvalidPermit          = 10001 // permit failed structural validation
	UnsupportedAuth        = 10002 // credential cannot wrap the query
	MissingField           = 10003 // builder was missing a required setter
	TokenNotFound          = 10004 // symbol or address not in the registry
	ChainQueryFailed       = 10005 // LCD request failed
	ContractQueryFailed    = 10006 // contract returned an error
	WalletNotConnected     = 10007
	SchemaValidationFailed = 10008 // tool arguments do not match the input schema
	StorageError           = 10009
)

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Error implements the error interface
func (e *MCPError) Error() string {
	return e.Message
}

// NewMCPError creates a new MCP error
func NewMCPError(code int, message string, data any) *MCPError {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// WrapError wraps an error with MCP error code
func WrapError(code int, message string, err error) *MCPError {
	data := map[string]any{
		"error": err.Error(),
	}
	return NewMCPError(code, message, data)
}

// FromError maps errors from the query, chain, registry and wallet packages
// to an MCPError. Errors it does not recognise become InternalError.
func FromError(err error) *MCPError {
	if err == nil {
		return nil
	}

	var mcpErr *MCPError
	if errors.As(err, &mcpErr) {
		return mcpErr
	}

	var contractErr *chain.ContractError
	var httpErr *chain.HTTPError
	switch {
	case errors.Is(err, query.ErrInvalidPermit):
		return NewMCPError(InvalidPermit, err.Error(), nil)
	case errors.Is(err, query.ErrUnsupportedAuth):
		return NewMCPError(UnsupportedAuth, err.Error(), nil)
	case errors.Is(err, query.ErrMissingField):
		return NewMCPError(MissingField, err.Error(), nil)
	case errors.Is(err, registry.ErrTokenNotFound):
		return NewMCPError(TokenNotFound, err.Error(), nil)
	case errors.Is(err, wallet.ErrNotConnected):
		return NewMCPError(WalletNotConnected, err.Error(), nil)
	case errors.As(err, &contractErr):
		return NewMCPError(ContractQueryFailed, contractErr.Message, map[string]any{"contract": contractErr.Contract})
	case errors.As(err, &httpErr):
		return NewMCPError(ChainQueryFailed, err.Error(), map[string]any{"status": httpErr.StatusCode})
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return NewMCPError(ChainQueryFailed, err.Error(), nil)
	default:
		return NewMCPError(InternalError, err.Error(), nil)
	}
}

// ContentBlock represents a unit of textual content returned by tools.
type ContentBlock struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
}

// CallToolResult models the standard MCP response payload for tool invocations.
type CallToolResult struct {
	Content           []ContentBlock `json:"content"`
	StructuredContent any            `json:"structuredContent,omitempty"`
	IsError           bool           `json:"isError,omitempty"`
}

// TextResult builds a single-block result.
func TextResult(text string, structured any) CallToolResult {
	return CallToolResult{
		Content:           []ContentBlock{{Type: "text", Text: text}},
		StructuredContent: structured,
	}
}

// ErrorResult builds an isError result carrying the error text and code.
func ErrorResult(err *MCPError) CallToolResult {
	structured := map[string]any{"code": err.Code, "message": err.Message}
	if err.Data != nil {
		structured["data"] = err.Data
	}
	return CallToolResult{
		Content:           []ContentBlock{{Type: "text", Text: err.Message}},
		StructuredContent: structured,
		IsError:           true,
	}
}
