package ports

import (
	"context"
)

// SessionRecord is the persisted form of a session. Role is kept as the raw
// string so a corrupted value can be detected when it is read back.
type SessionRecord struct {
	Token       string
	Role        string
	DisplayName string
}

// SessionStore is durable storage for session records keyed by session id.
type SessionStore interface {
	// Load returns domain.ErrSessionNotFound when nothing is stored for id.
	Load(ctx context.Context, id string) (SessionRecord, error)
	Save(ctx context.Context, id string, rec SessionRecord) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// TokenSource yields the bearer token to attach to an outgoing call.
// It is consulted on every call; an empty string means no credential.
type TokenSource interface {
	Token(ctx context.Context) string
}

// TokenSourceFunc adapts a function to TokenSource.
type TokenSourceFunc func(ctx context.Context) string

func (f TokenSourceFunc) Token(ctx context.Context) string { return f(ctx) }
