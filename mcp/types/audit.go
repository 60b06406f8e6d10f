package types

import (
	"context"
	"sync"
)

// Audit collects what a tool call touched so the server can persist a query
// log entry. Tools fill it in through the context; it never holds credentials.
type Audit struct {
	mu           sync.Mutex
	Contract     string
	QueryType    string
	AuthType     string
	PermitDigest string
}

// Record stores the contract, query variant and credential summary.
func (a *Audit) Record(contract, queryType, authType, permitDigest string) {
	if a == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Contract = contract
	a.QueryType = queryType
	a.AuthType = authType
	a.PermitDigest = permitDigest
}

// Snapshot returns a copy of the recorded fields.
func (a *Audit) Snapshot() (contract, queryType, authType, permitDigest string) {
	if a == nil {
		return "", "", "", ""
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Contract, a.QueryType, a.AuthType, a.PermitDigest
}

type auditContextKey struct{}

// WithAudit attaches a fresh Audit to ctx.
func WithAudit(ctx context.Context) (context.Context, *Audit) {
	audit := &Audit{}
	return context.WithValue(ctx, auditContextKey{}, audit), audit
}

// AuditFromContext returns the Audit attached to ctx, or nil. Record is safe
// to call on nil.
func AuditFromContext(ctx context.Context) *Audit {
	if ctx == nil {
		return nil
	}
	audit, _ := ctx.Value(auditContextKey{}).(*Audit)
	return audit
}
