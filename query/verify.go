package query

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gowebpki/jcs"
)

// PermitMsgType is the amino message type signed by SNIP-24 wallets.
const PermitMsgType = "query_permit"

// SignDoc returns the canonical amino sign doc a wallet signs for permit.
// Keys are sorted per RFC 8785, which matches amino's sorted JSON.
func SignDoc(permit *Permit) ([]byte, error) {
	allowed := permit.Params.AllowedTokens
	if allowed == nil {
		allowed = []string{}
	}
	permissions := permit.Params.Permissions
	if permissions == nil {
		permissions = []string{}
	}

	doc := map[string]any{
		"account_number": "0",
		"chain_id":       permit.Params.ChainID,
		"fee": map[string]any{
			"amount": []any{map[string]any{"amount": "0", "denom": "uscrt"}},
			"gas":    "1",
		},
		"memo": "",
		"msgs": []any{map[string]any{
			"type": PermitMsgType,
			"value": map[string]any{
				"allowed_tokens": allowed,
				"permissions":    permissions,
				"permit_name":    permit.Params.PermitName,
			},
		}},
		"sequence": "0",
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal sign doc: %w", err)
	}
	return jcs.Transform(raw)
}

// PermitDigest returns the hex sha256 of the permit's canonical sign doc.
func PermitDigest(permit *Permit) (string, error) {
	doc, err := SignDoc(permit)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(doc)
	return hex.EncodeToString(sum[:]), nil
}

// VerifyPermitSignature checks the secp256k1 signature over the permit's sign
// doc. Validation alone never calls this; contracts verify on their side.
func VerifyPermitSignature(permit *Permit) error {
	if permit == nil {
		return &PermitValidationError{Field: "permit", Reason: "permit is missing"}
	}

	pubKey, err := base64.StdEncoding.DecodeString(permit.Signature.PubKey.Value)
	if err != nil {
		return &PermitValidationError{Field: "signature.pub_key.value", Reason: "not base64"}
	}
	if len(pubKey) != 33 {
		return &PermitValidationError{
			Field:  "signature.pub_key.value",
			Reason: fmt.Sprintf("expected 33-byte compressed key, got %d bytes", len(pubKey)),
		}
	}

	sig, err := base64.StdEncoding.DecodeString(permit.Signature.Signature)
	if err != nil {
		return &PermitValidationError{Field: "signature.signature", Reason: "not base64"}
	}
	if len(sig) != 64 {
		return &PermitValidationError{
			Field:  "signature.signature",
			Reason: fmt.Sprintf("expected 64-byte signature, got %d bytes", len(sig)),
		}
	}

	doc, err := SignDoc(permit)
	if err != nil {
		return err
	}
	hash := sha256.Sum256(doc)
	if !crypto.VerifySignature(pubKey, hash[:], sig) {
		return &PermitValidationError{Field: "signature.signature", Reason: "does not match sign doc"}
	}
	return nil
}
