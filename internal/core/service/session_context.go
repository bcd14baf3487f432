package service

import (
	"context"

	"github.com/zhangir128/UAV/internal/core/ports"
)

type sessionKey struct{}

// WithSession returns a context carrying h. Gateways built with SessionTokens
// read the bearer token from it on every call.
func WithSession(ctx context.Context, h *SessionHolder) context.Context {
	return context.WithValue(ctx, sessionKey{}, h)
}

// SessionFrom returns the holder carried by ctx, if any.
func SessionFrom(ctx context.Context) (*SessionHolder, bool) {
	h, ok := ctx.Value(sessionKey{}).(*SessionHolder)
	return h, ok && h != nil
}

// SessionTokens resolves the token of whichever session the call is made for.
var SessionTokens ports.TokenSource = ports.TokenSourceFunc(func(ctx context.Context) string {
	if h, ok := SessionFrom(ctx); ok {
		return h.Token(ctx)
	}
	return ""
})
