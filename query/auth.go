package query

import (
	"errors"
	"sort"
)

// Auth method identifiers returned by AuthMethod.Type.
const (
	AuthNone       = "none"
	AuthViewingKey = "viewing_key"
	AuthPermit     = "permit"
)

// Query is a JSON-serializable contract query. Its single top-level key names
// the query variant, e.g. {"balance": {}}.
type Query map[string]any

// Variant returns the top-level key of a single-key query.
func (q Query) Variant() (string, bool) {
	if len(q) != 1 {
		return "", false
	}
	for key := range q {
		return key, true
	}
	return "", false
}

// Keys returns the top-level keys in sorted order.
func (q Query) Keys() []string {
	keys := make([]string, 0, len(q))
	for key := range q {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// AuthMethod wraps a bare query into the authenticated shape its credential
// requires. The set of implementations is closed: NoAuth, *ViewingKeyAuth and
// *PermitAuth.
type AuthMethod interface {
	Wrap(q Query) (Query, error)
	Type() string
	authMethod()
}

// NoAuth leaves queries unchanged. Used for public queries such as token_info.
type NoAuth struct{}

// Wrap returns q unchanged.
func (NoAuth) Wrap(q Query) (Query, error) { return q, nil }

// Type returns AuthNone.
func (NoAuth) Type() string { return AuthNone }

func (NoAuth) authMethod() {}

// ViewingKeyAuth threads an address and viewing key into the field each query
// variant expects.
type ViewingKeyAuth struct {
	address    string
	viewingKey string
}

// NewViewingKeyAuth requires both address and key to be non-empty.
func NewViewingKeyAuth(address, viewingKey string) (*ViewingKeyAuth, error) {
	if address == "" {
		return nil, errors.New("viewing key auth requires an address")
	}
	if viewingKey == "" {
		return nil, errors.New("viewing key auth requires a viewing key")
	}
	return &ViewingKeyAuth{address: address, viewingKey: viewingKey}, nil
}

// Address returns the address the key was issued for.
func (a *ViewingKeyAuth) Address() string { return a.address }

// Type returns AuthViewingKey.
func (a *ViewingKeyAuth) Type() string { return AuthViewingKey }

func (a *ViewingKeyAuth) authMethod() {}

// Wrap injects the credential into q. The input is not mutated.
func (a *ViewingKeyAuth) Wrap(q Query) (Query, error) {
	variant, ok := q.Variant()
	if !ok {
		return nil, &UnsupportedAuthError{
			AuthType: AuthViewingKey,
			Reason:   "query must have exactly one top-level key",
		}
	}
	body, ok := asObject(q[variant])
	if !ok {
		return nil, &UnsupportedAuthError{
			AuthType:  AuthViewingKey,
			QueryType: variant,
			Reason:    "query body is not an object",
		}
	}

	switch variant {
	case "balance":
		return Query{"balance": map[string]any{
			"address": a.address,
			"key":     a.viewingKey,
		}}, nil
	case "allowance":
		merged := copyObject(body)
		merged["key"] = a.viewingKey
		return Query{variant: merged}, nil
	case "transfer_history", "transaction_history":
		merged := copyObject(body)
		merged["address"] = a.address
		merged["key"] = a.viewingKey
		return Query{variant: merged}, nil
	default:
		merged := copyObject(body)
		merged["viewer"] = map[string]any{
			"address":     a.address,
			"viewing_key": a.viewingKey,
		}
		return Query{variant: merged}, nil
	}
}

// PermitAuth wraps any query in the uniform with_permit envelope.
type PermitAuth struct {
	permit    *Permit
	discarded []string
}

// NewPermitAuth validates and cleans raw. Later changes to raw do not affect
// the returned auth method.
func NewPermitAuth(raw RawPermit) (*PermitAuth, error) {
	permit, err := ValidateAndClean(raw)
	if err != nil {
		return nil, err
	}
	return &PermitAuth{permit: permit, discarded: raw.ExtraFields()}, nil
}

// Permit returns a copy of the canonical permit.
func (a *PermitAuth) Permit() *Permit { return a.permit.Clone() }

// Discarded lists the top-level raw fields dropped during cleaning.
func (a *PermitAuth) Discarded() []string {
	out := make([]string, len(a.discarded))
	copy(out, a.discarded)
	return out
}

// Type returns AuthPermit.
func (a *PermitAuth) Type() string { return AuthPermit }

func (a *PermitAuth) authMethod() {}

// Wrap produces {with_permit: {permit, query}} regardless of q's shape.
func (a *PermitAuth) Wrap(q Query) (Query, error) {
	return Query{
		"with_permit": map[string]any{
			"permit": a.permit.Clone(),
			"query":  q,
		},
	}, nil
}

func asObject(v any) (map[string]any, bool) {
	switch typed := v.(type) {
	case map[string]any:
		return typed, true
	case Query:
		return typed, true
	default:
		return nil, false
	}
}

func copyObject(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src)+2)
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
