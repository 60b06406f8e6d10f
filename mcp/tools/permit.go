package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/MrGarbonzo/secret-network-mcp/mcp/types"
	"github.com/MrGarbonzo/secret-network-mcp/query"
	"github.com/MrGarbonzo/secret-network-mcp/registry"
)

// ValidatePermitTool checks a permit without sending it anywhere.
type ValidatePermitTool struct {
	*BaseTool
	server types.ServerInterface
}

// NewValidatePermitTool creates the permit validation tool.
func NewValidatePermitTool(server types.ServerInterface) *ValidatePermitTool {
	tool := &ValidatePermitTool{server: server}

	tool.BaseTool = &BaseTool{
		name: "validate_permit",
		description: "Validate a SNIP-24 permit's structure and scope before use. Optionally checks that it grants a permission, " +
			"covers a token, uses only SNIP-721 permissions, and carries a valid secp256k1 signature.",
		inputSchema: object(map[string]any{
			"permit":     CommonSchemas.Permit,
			"permission": map[string]any{"type": "string", "minLength": 1},
			"token":      CommonSchemas.Token,
			"nft":        map[string]any{"type": "boolean", "description": "Require SNIP-721 permission names"},
			"verify_signature": map[string]any{
				"type":        "boolean",
				"description": "Verify the signature against the amino sign document",
			},
		}, "permit"),
		handler: tool.handle,
	}

	return tool
}

func (t *ValidatePermitTool) handle(_ context.Context, params json.RawMessage) (any, error) {
	args, err := ParseParams[struct {
		Permit          json.RawMessage `json:"permit"`
		Permission      string          `json:"permission"`
		Token           string          `json:"token"`
		NFT             bool            `json:"nft"`
		VerifySignature bool            `json:"verify_signature"`
	}](params)
	if err != nil {
		return nil, err
	}

	raw, err := query.ParseRawPermit(args.Permit)
	if err != nil {
		return nil, err
	}
	auth, err := query.NewPermitAuth(raw)
	if err != nil {
		return nil, err
	}
	permit := auth.Permit()

	var checks []string
	if args.NFT {
		if err := query.ValidateNFTPermissions(permit.Params.Permissions); err != nil {
			return nil, err
		}
		checks = append(checks, "nft permissions")
	}
	if args.Permission != "" {
		if !permit.HasPermission(args.Permission) {
			return nil, &query.PermitValidationError{
				Field:  "params.permissions",
				Reason: fmt.Sprintf("permission %q not granted", args.Permission),
			}
		}
		checks = append(checks, "permission "+args.Permission)
	}
	if args.Token != "" {
		address := args.Token
		if token, err := t.server.Tokens().Lookup(args.Token); err == nil {
			address = token.Address
		} else if !errors.Is(err, registry.ErrTokenNotFound) {
			return nil, err
		}
		if !permit.IsTokenAllowed(address) {
			return nil, &query.PermitValidationError{
				Field:  "params.allowed_tokens",
				Reason: fmt.Sprintf("token %s not allowed", address),
			}
		}
		checks = append(checks, "token "+address)
	}
	if args.VerifySignature {
		if err := query.VerifyPermitSignature(permit); err != nil {
			return nil, err
		}
		checks = append(checks, "signature")
	}

	digest, err := query.PermitDigest(permit)
	if err != nil {
		return nil, err
	}

	text := fmt.Sprintf("Permit %q is valid for %s with permissions [%s]",
		permit.Params.PermitName, permit.Params.ChainID, strings.Join(permit.Params.Permissions, ", "))
	if len(checks) > 0 {
		text += "\nChecked: " + strings.Join(checks, ", ")
	}
	if discarded := auth.Discarded(); len(discarded) > 0 {
		text += "\nIgnored fields: " + strings.Join(discarded, ", ")
	}
	return types.TextResult(text, map[string]any{
		"valid":          true,
		"permit_name":    permit.Params.PermitName,
		"chain_id":       permit.Params.ChainID,
		"permissions":    permit.Params.Permissions,
		"allowed_tokens": permit.Params.AllowedTokens,
		"digest":         digest,
		"checks":         checks,
		"discarded":      auth.Discarded(),
	}), nil
}
