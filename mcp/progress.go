package mcp

import "context"

type progressContextKey struct{}

// withProgressToken attaches the client's progress token to ctx. A nil token
// leaves ctx unchanged.
func withProgressToken(ctx context.Context, token any) context.Context {
	if token == nil {
		return ctx
	}
	return context.WithValue(ctx, progressContextKey{}, token)
}

func progressTokenFromContext(ctx context.Context) (any, bool) {
	if ctx == nil {
		return nil, false
	}
	token := ctx.Value(progressContextKey{})
	return token, token != nil
}
