package api

import "context"

// TokenProvider supplies the bearer token attached to every API request.
// Implementations refresh expired credentials transparently.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// StaticTokenProvider returns a fixed token. Suitable for tests and for
// deployments where refresh is handled out of process.
type StaticTokenProvider string

// Token returns the fixed token.
func (p StaticTokenProvider) Token(context.Context) (string, error) {
	return string(p), nil
}

// TokenProviderFunc adapts a function to the TokenProvider interface.
type TokenProviderFunc func(ctx context.Context) (string, error)

// Token calls the wrapped function.
func (f TokenProviderFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}
