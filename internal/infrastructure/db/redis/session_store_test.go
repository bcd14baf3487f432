package redis

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/zhangir128/UAV/internal/core/domain"
	"github.com/zhangir128/UAV/internal/core/ports"
)

func newTestStore(t *testing.T) *SessionStore {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client, err := Connect(context.Background(), Config{Addr: addr})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionStore(client, time.Minute)
}

func TestSessionStore_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := uuid.NewString()
	t.Cleanup(func() { _ = s.Delete(ctx, id) })

	if _, err := s.Load(ctx, id); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	want := ports.SessionRecord{Token: "T", Role: "user", DisplayName: "Jane Doe"}
	if err := s.Save(ctx, id, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load(ctx, id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	ttl, err := s.client.TTL(ctx, s.key(id)).Result()
	if err != nil || ttl <= 0 {
		t.Fatalf("expected expiry on session key, ttl=%v err=%v", ttl, err)
	}

	if err := s.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Load(ctx, id); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
	}
}

func TestSessionStore_SaveReplacesRecord(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := uuid.NewString()
	t.Cleanup(func() { _ = s.Delete(ctx, id) })

	_ = s.Save(ctx, id, ports.SessionRecord{Token: "A", Role: "police", DisplayName: "Officer"})
	if err := s.Save(ctx, id, ports.SessionRecord{Token: "B", Role: "user"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load(ctx, id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Token != "B" || got.Role != "user" || got.DisplayName != "" {
		t.Fatalf("stale fields survived: %+v", got)
	}
}
