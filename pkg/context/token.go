// Package context carries request-scoped values between middleware and handlers.
package context

import (
	"context"

	"github.com/octobridge/octobridge/pkg/utils"
)

type tokenCtx string

var tokenCtxKey tokenCtx = "tokenctx"

// TokenInfo holds the caller's bearer token and its classification for the
// lifetime of a single request. It is never persisted.
type TokenInfo struct {
	Token     string
	TokenType utils.TokenType
}

// WithTokenInfo adds TokenInfo to the context.
func WithTokenInfo(ctx context.Context, tokenInfo *TokenInfo) context.Context {
	return context.WithValue(ctx, tokenCtxKey, tokenInfo)
}

// GetTokenInfo retrieves the authentication token from the context.
func GetTokenInfo(ctx context.Context) (*TokenInfo, bool) {
	if tokenInfo, ok := ctx.Value(tokenCtxKey).(*TokenInfo); ok {
		return tokenInfo, true
	}
	return nil, false
}
