package query

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"
)

// DefaultChainID is used when neither the permit params nor the legacy
// top-level field carry a chain id.
const DefaultChainID = "secret-4"

// RawPermit is an untrusted permit as produced by a wallet signing flow. Its
// shape is not guaranteed: fields may be missing, mistyped, or accompanied by
// sign-doc leftovers such as account_number, sequence and memo. All narrowing
// happens in ValidateAndClean.
type RawPermit map[string]any

// ParseRawPermit decodes JSON into a RawPermit without validating it.
func ParseRawPermit(data []byte) (RawPermit, error) {
	var raw RawPermit
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &PermitValidationError{Field: "permit", Reason: fmt.Sprintf("not a JSON object: %v", err)}
	}
	if raw == nil {
		return nil, &PermitValidationError{Field: "permit", Reason: "permit is null"}
	}
	return raw, nil
}

// ExtraFields lists the top-level fields that are not part of the canonical
// permit and are discarded during cleaning, sorted for stable diagnostics.
func (r RawPermit) ExtraFields() []string {
	var extra []string
	for key := range r {
		if key == "params" || key == "signature" {
			continue
		}
		extra = append(extra, key)
	}
	sort.Strings(extra)
	return extra
}

// Permit is the canonical SNIP-24 permit shape accepted by contracts.
type Permit struct {
	Params    PermitParams    `json:"params"`
	Signature PermitSignature `json:"signature"`
}

// PermitParams holds the signed scope of a permit.
type PermitParams struct {
	PermitName    string   `json:"permit_name"`
	AllowedTokens []string `json:"allowed_tokens"`
	Permissions   []string `json:"permissions"`
	ChainID       string   `json:"chain_id"`
}

// PermitSignature is the signature block of a permit.
type PermitSignature struct {
	PubKey    PubKey `json:"pub_key"`
	Signature string `json:"signature"`
}

// PubKey identifies the signing key.
type PubKey struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// HasPermission reports whether the permit grants the named permission.
func (p *Permit) HasPermission(permission string) bool {
	return slices.Contains(p.Params.Permissions, permission)
}

// IsTokenAllowed reports whether the permit may be used against the token.
// An empty allowed_tokens list grants access to every token.
func (p *Permit) IsTokenAllowed(tokenID string) bool {
	if len(p.Params.AllowedTokens) == 0 {
		return true
	}
	return slices.Contains(p.Params.AllowedTokens, tokenID)
}

// Clone returns a deep copy of the permit.
func (p *Permit) Clone() *Permit {
	clone := *p
	clone.Params.AllowedTokens = slices.Clone(p.Params.AllowedTokens)
	clone.Params.Permissions = slices.Clone(p.Params.Permissions)
	return &clone
}

// HasPermission reports whether permit grants permission.
func HasPermission(permit *Permit, permission string) bool {
	return permit != nil && permit.HasPermission(permission)
}

// IsTokenAllowed reports whether permit may be used against tokenID.
func IsTokenAllowed(permit *Permit, tokenID string) bool {
	return permit != nil && permit.IsTokenAllowed(tokenID)
}

// ValidateAndClean narrows a RawPermit into a canonical Permit. It fails on the
// first structural problem found; nothing is defaulted except chain_id.
func ValidateAndClean(raw RawPermit) (*Permit, error) {
	if raw == nil {
		return nil, &PermitValidationError{Field: "permit", Reason: "permit is missing"}
	}

	params, ok := raw["params"].(map[string]any)
	if !ok {
		return nil, &PermitValidationError{Field: "params", Reason: "missing or not an object"}
	}
	signature, ok := raw["signature"].(map[string]any)
	if !ok {
		return nil, &PermitValidationError{Field: "signature", Reason: "missing or not an object"}
	}
	pubKeyValue, present := signature["pub_key"]
	if !present || pubKeyValue == nil {
		return nil, &PermitValidationError{Field: "signature.pub_key", Reason: "missing"}
	}
	sig, ok := signature["signature"].(string)
	if !ok {
		return nil, &PermitValidationError{Field: "signature.signature", Reason: "missing or not a string"}
	}

	permitName, ok := params["permit_name"].(string)
	if !ok || permitName == "" {
		return nil, &PermitValidationError{Field: "params.permit_name", Reason: "missing or not a non-empty string"}
	}
	allowedTokens, err := stringSequence(params, "allowed_tokens")
	if err != nil {
		return nil, err
	}
	permissions, err := stringSequence(params, "permissions")
	if err != nil {
		return nil, err
	}
	if len(permissions) == 0 {
		return nil, &PermitValidationError{Field: "params.permissions", Reason: "must contain at least one permission"}
	}

	pubKey, ok := pubKeyValue.(map[string]any)
	if !ok {
		return nil, &PermitValidationError{Field: "signature.pub_key", Reason: "not an object"}
	}
	keyType, ok := pubKey["type"].(string)
	if !ok {
		return nil, &PermitValidationError{Field: "signature.pub_key.type", Reason: "missing or not a string"}
	}
	keyValue, ok := pubKey["value"].(string)
	if !ok {
		return nil, &PermitValidationError{Field: "signature.pub_key.value", Reason: "missing or not a string"}
	}

	return &Permit{
		Params: PermitParams{
			PermitName:    permitName,
			AllowedTokens: allowedTokens,
			Permissions:   permissions,
			ChainID:       resolveChainID(raw, params),
		},
		Signature: PermitSignature{
			PubKey: PubKey{
				Type:  keyType,
				Value: keyValue,
			},
			Signature: sig,
		},
	}, nil
}

// resolveChainID applies params.chain_id, then the legacy top-level chain_id,
// then DefaultChainID.
func resolveChainID(raw RawPermit, params map[string]any) string {
	if id, ok := params["chain_id"].(string); ok && id != "" {
		return id
	}
	if id, ok := raw["chain_id"].(string); ok && id != "" {
		return id
	}
	return DefaultChainID
}

// stringSequence copies params[field] into a fresh, non-nil []string.
func stringSequence(params map[string]any, field string) ([]string, error) {
	name := "params." + field
	value, present := params[field]
	if !present || value == nil {
		return nil, &PermitValidationError{Field: name, Reason: "missing"}
	}

	switch typed := value.(type) {
	case []string:
		out := make([]string, len(typed))
		copy(out, typed)
		return out, nil
	case []any:
		out := make([]string, 0, len(typed))
		for i, item := range typed {
			s, ok := item.(string)
			if !ok {
				return nil, &PermitValidationError{Field: fmt.Sprintf("%s[%d]", name, i), Reason: "not a string"}
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, &PermitValidationError{Field: name, Reason: "not an array"}
	}
}

// NFTPermissions is the SNIP-721 permission vocabulary.
var NFTPermissions = []string{
	"balance",
	"history",
	"metadata",
	"owner",
	"private_metadata",
	"royalty_info",
	"tokens",
	"token_approvals",
	"inventory_approvals",
}

// ValidateNFTPermissions checks that every permission belongs to the SNIP-721
// vocabulary.
func ValidateNFTPermissions(permissions []string) error {
	var invalid []string
	for _, p := range permissions {
		if !slices.Contains(NFTPermissions, p) {
			invalid = append(invalid, p)
		}
	}
	if len(invalid) == 0 {
		return nil
	}
	return &PermitValidationError{
		Field: "params.permissions",
		Reason: fmt.Sprintf("invalid NFT permissions: %s. Valid permissions: %s",
			strings.Join(invalid, ", "), strings.Join(NFTPermissions, ", ")),
	}
}
