package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/kaptinlin/jsonschema"

	"github.com/MrGarbonzo/secret-network-mcp/mcp/types"
)

// Registry manages tools in registration order. Arguments are validated
// against each tool's input schema before its handler runs.
type Registry struct {
	mu      sync.RWMutex
	tools   map[string]types.Tool
	schemas map[string]*jsonschema.Schema
	ordered []string
	server  types.ServerInterface
}

// NewRegistry creates a registry holding every built-in tool.
func NewRegistry(server types.ServerInterface) (*Registry, error) {
	r := &Registry{
		tools:   make(map[string]types.Tool),
		schemas: make(map[string]*jsonschema.Schema),
		server:  server,
	}
	if err := RegisterAll(r, server); err != nil {
		return nil, err
	}
	return r, nil
}

// Register adds a tool to the registry, replacing any tool with the same name.
func (r *Registry) Register(tool types.Tool) error {
	schema, err := compileSchema(tool.InputSchema())
	if err != nil {
		return fmt.Errorf("tool %s: %w", tool.Name(), err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[tool.Name()]; !exists {
		r.ordered = append(r.ordered, tool.Name())
	}
	r.tools[tool.Name()] = tool
	r.schemas[tool.Name()] = schema
	return nil
}

// Get retrieves a tool by name
func (r *Registry) Get(name string) (types.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, exists := r.tools[name]
	return tool, exists
}

// List returns all tools in registration order
func (r *Registry) List() []types.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]types.Tool, 0, len(r.ordered))
	for _, name := range r.ordered {
		result = append(result, r.tools[name])
	}
	return result
}

// Execute validates params and runs the named tool.
func (r *Registry) Execute(ctx context.Context, name string, params json.RawMessage) (any, error) {
	r.mu.RLock()
	tool, exists := r.tools[name]
	schema := r.schemas[name]
	r.mu.RUnlock()
	if !exists {
		return nil, types.NewMCPError(types.MethodNotFound, fmt.Sprintf("Tool not found: %s", name), nil)
	}

	if err := validateArguments(schema, params); err != nil {
		return nil, err
	}
	if err := isCancelled(ctx); err != nil {
		return nil, err
	}
	return tool.Handler()(ctx, params)
}

// Definitions returns all tool definitions
func (r *Registry) Definitions() []types.ToolDefinition {
	tools := r.List()
	definitions := make([]types.ToolDefinition, 0, len(tools))

	for _, tool := range tools {
		definitions = append(definitions, types.ToolDefinition{
			Name:        tool.Name(),
			Title:       tool.Name(),
			Description: tool.Description(),
			InputSchema: types.NormalizeSchema(tool.InputSchema()),
			Annotations: map[string]any{"title": tool.Name(), "readOnlyHint": readOnly(tool.Name())},
		})
	}

	return definitions
}

func readOnly(name string) bool {
	switch name {
	case "connect_wallet", "disconnect_wallet":
		return false
	}
	return true
}

// RegisterAll registers all built-in tools
func RegisterAll(r *Registry, server types.ServerInterface) error {
	builtin := []types.Tool{
		// Chain
		NewGetBalanceTool(server),
		NewGetAccountTool(server),
		NewGetLatestBlockTool(server),
		NewGetBlockTool(server),
		NewGetTransactionTool(server),
		NewGetContractInfoTool(server),
		NewGetCodeHashTool(server),

		// SNIP-20
		NewGetTokenInfoTool(server),
		NewGetTokenConfigTool(server),
		NewGetExchangeRateTool(server),
		NewGetMintersTool(server),
		NewGetTokenBalanceTool(server),
		NewGetAllowanceTool(server),
		NewGetTransferHistoryTool(server),

		// SNIP-721
		NewGetNFTTokensTool(server),
		NewGetNFTInfoTool(server),

		// Registry
		NewListTokensTool(server),
		NewLookupTokenTool(server),

		// Wallet
		NewConnectWalletTool(server),
		NewDisconnectWalletTool(server),
		NewWalletStatusTool(server),

		// Permits and raw queries
		NewValidatePermitTool(server),
		NewBuildQueryTool(server),
		NewQueryContractTool(server),
	}

	for _, tool := range builtin {
		if err := r.Register(tool); err != nil {
			return err
		}
	}
	return nil
}
