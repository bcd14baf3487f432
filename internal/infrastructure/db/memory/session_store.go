// Package memory holds an in-process session store for development and tests.
package memory

import (
	"context"
	"sync"

	"github.com/zhangir128/UAV/internal/core/domain"
	"github.com/zhangir128/UAV/internal/core/ports"
)

// SessionStore keeps records in a map. Records do not survive a restart.
type SessionStore struct {
	mu   sync.RWMutex
	recs map[string]ports.SessionRecord
}

var _ ports.SessionStore = (*SessionStore)(nil)

func NewSessionStore() *SessionStore {
	return &SessionStore{recs: make(map[string]ports.SessionRecord)}
}

func (s *SessionStore) Load(_ context.Context, id string) (ports.SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.recs[id]
	if !ok {
		return ports.SessionRecord{}, domain.ErrSessionNotFound
	}
	return rec, nil
}

func (s *SessionStore) Save(_ context.Context, id string, rec ports.SessionRecord) error {
	s.mu.Lock()
	s.recs[id] = rec
	s.mu.Unlock()
	return nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.recs, id)
	s.mu.Unlock()
	return nil
}

func (s *SessionStore) Ping(context.Context) error { return nil }
