package service

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/zhangir128/UAV/internal/core/domain"
	"github.com/zhangir128/UAV/internal/core/ports"
	"github.com/zhangir128/UAV/internal/pkg/metrics"
)

// SessionHolder owns the credentials of one browser session. Reads are
// lock-free of I/O; every mutation is written to the store before the
// in-memory value is replaced.
type SessionHolder struct {
	id    string
	store ports.SessionStore
	log   zerolog.Logger

	mu  sync.RWMutex
	cur domain.Session
}

var _ ports.TokenSource = (*SessionHolder)(nil)

// NewSessionHolder returns an empty holder for session id.
func NewSessionHolder(id string, store ports.SessionStore, log zerolog.Logger) *SessionHolder {
	return &SessionHolder{
		id:    id,
		store: store,
		log:   log.With().Str("session_id", id).Logger(),
	}
}

// ID returns the session id the holder is keyed by.
func (h *SessionHolder) ID() string { return h.id }

// Restore loads the persisted record. A missing record leaves the holder
// empty. A record whose role is not recognised restores as an empty session
// and is removed from the store, since token and role are only ever held
// together.
func (h *SessionHolder) Restore(ctx context.Context) error {
	rec, err := h.store.Load(ctx, h.id)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	s := domain.Session{Token: rec.Token, Role: domain.ParseRole(rec.Role), DisplayName: rec.DisplayName}
	if s.Token == "" || !s.Role.Valid() {
		h.log.Warn().Str("role", rec.Role).Msg("discarding malformed session record")
		s = domain.Session{}
		if err := h.store.Delete(ctx, h.id); err != nil {
			h.log.Warn().Err(err).Msg("failed to delete malformed session record")
		}
	}

	h.mu.Lock()
	h.cur = s
	h.mu.Unlock()

	if s.Authenticated() {
		metrics.SessionEventsTotal.WithLabelValues("restored").Inc()
	}
	return nil
}

// Login stores credentials. An empty token or an unknown role is refused and
// leaves the current session untouched.
func (h *SessionHolder) Login(ctx context.Context, token string, role domain.Role, displayName string) error {
	if token == "" {
		return domain.NewValidationError("token", "token is required")
	}
	if !role.Valid() {
		return domain.NewValidationError("role", "account has no console role")
	}

	next := domain.Session{Token: token, Role: role, DisplayName: displayName}
	if err := h.store.Save(ctx, h.id, ports.SessionRecord{
		Token:       next.Token,
		Role:        string(next.Role),
		DisplayName: next.DisplayName,
	}); err != nil {
		return err
	}

	h.mu.Lock()
	h.cur = next
	h.mu.Unlock()
	return nil
}

// Logout clears credentials. Memory is cleared even when the store delete
// fails; the delete error is still returned.
func (h *SessionHolder) Logout(ctx context.Context) error {
	err := h.store.Delete(ctx, h.id)

	h.mu.Lock()
	h.cur = domain.Session{}
	h.mu.Unlock()

	if err != nil {
		h.log.Error().Err(err).Msg("failed to delete persisted session")
	}
	return err
}

// Current returns a copy of the session.
func (h *SessionHolder) Current() domain.Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cur
}

// IsAuthenticated reports whether a token is held.
func (h *SessionHolder) IsAuthenticated() bool {
	return h.Current().Authenticated()
}

// Token implements ports.TokenSource.
func (h *SessionHolder) Token(context.Context) string {
	return h.Current().Token
}
