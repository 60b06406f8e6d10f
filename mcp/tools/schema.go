package tools

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/kaptinlin/jsonschema"

	"github.com/MrGarbonzo/secret-network-mcp/mcp/types"
)

// compileSchema compiles a tool input schema for argument validation.
func compileSchema(schema map[string]any) (*jsonschema.Schema, error) {
	data, err := json.Marshal(types.NormalizeSchema(schema))
	if err != nil {
		return nil, fmt.Errorf("encode schema: %w", err)
	}
	compiled, err := jsonschema.NewCompiler().Compile(data)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return compiled, nil
}

// validateArguments checks raw tool arguments against a compiled schema.
// Missing arguments are validated as an empty object.
func validateArguments(schema *jsonschema.Schema, raw json.RawMessage) error {
	if len(raw) == 0 || string(raw) == "null" {
		raw = json.RawMessage(`{}`)
	}
	result := schema.ValidateJSON(raw)
	if result.IsValid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors))
	for key, evalErr := range result.Errors {
		details = append(details, fmt.Sprintf("%s: %v", key, evalErr))
	}
	sort.Strings(details)
	return types.NewMCPError(types.SchemaValidationFailed, "Arguments do not match the tool input schema",
		map[string]any{"errors": details})
}
