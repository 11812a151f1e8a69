package auth

import "context"

// Principal identifies the authenticated admin for the current request.
type Principal struct {
	Username string
}

type contextKey struct{}

// ContextWithPrincipal returns a context carrying the authenticated admin.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext extracts the authenticated admin, if any. Admin commands use
// this as their capability check instead of trusting the caller.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok
}
