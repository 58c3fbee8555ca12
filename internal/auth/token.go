package auth

import (
	"context"
)

type tokenKey struct{}

// WithToken attaches the caller's access token to ctx.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey{}).(string)
	return token, ok && token != ""
}

// StaticToken is a fixed token, used by the CLI.
type StaticToken string

func (t StaticToken) Token(ctx context.Context) (string, error) {
	return string(t), nil
}

// ContextToken forwards whatever token the request context carries, falling back to Fallback.
type ContextToken struct {
	Fallback string
}

func (t ContextToken) Token(ctx context.Context) (string, error) {
	if token, ok := TokenFromContext(ctx); ok {
		return token, nil
	}
	return t.Fallback, nil
}
