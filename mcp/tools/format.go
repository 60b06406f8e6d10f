package tools

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrGarbonzo/secret-network-mcp/mcp/types"
)

// formatAmount renders a base-unit integer amount with the token's decimals.
// Unparseable input is returned as-is.
func formatAmount(amount string, decimals int) string {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return amount
	}
	if decimals <= 0 {
		return d.String()
	}
	return d.Shift(int32(-decimals)).String()
}

// formatCoin renders a bank coin. uscrt is shown in SCRT.
func formatCoin(amount, denom string) string {
	if denom == "uscrt" {
		return formatAmount(amount, 6) + " SCRT"
	}
	return amount + " " + denom
}

// contractResult decodes a contract JSON answer for structuredContent and
// pairs it with a one-line summary.
func contractResult(summary string, raw json.RawMessage) (types.CallToolResult, error) {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return types.CallToolResult{}, fmt.Errorf("decode contract response: %w", err)
	}
	pretty, err := json.MarshalIndent(decoded, "", "  ")
	if err != nil {
		return types.CallToolResult{}, err
	}
	var text strings.Builder
	text.WriteString(summary)
	text.WriteString("\n\n")
	text.Write(pretty)
	return types.TextResult(text.String(), decoded), nil
}

// jsonResult returns v both pretty-printed and as structuredContent.
func jsonResult(summary string, v any) (types.CallToolResult, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return types.CallToolResult{}, fmt.Errorf("encode result: %w", err)
	}
	return contractResult(summary, raw)
}
