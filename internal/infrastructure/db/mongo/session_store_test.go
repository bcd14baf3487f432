package mongo

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

func newTestStore(t *testing.T, ttl time.Duration) *SessionStore {
	t.Helper()
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}
	client, db, err := Connect(context.Background(), Config{URI: uri, Database: "console_test"})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	s := NewSessionStore(db, ttl)
	if err := s.EnsureIndexes(context.Background()); err != nil {
		t.Fatalf("indexes: %v", err)
	}
	return s
}

func TestSessionStore_RoundTrip(t *testing.T) {
	s := newTestStore(t, time.Hour)
	ctx := context.Background()
	id := uuid.NewString()
	t.Cleanup(func() { _ = s.Delete(ctx, id) })

	if _, err := s.Load(ctx, id); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	want := ports.SessionRecord{Token: "T", Role: "police", DisplayName: "Officer"}
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

	if err := s.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Load(ctx, id); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
	}
}

func TestSessionStore_ExpiredRecordIsMissing(t *testing.T) {
	s := newTestStore(t, time.Minute)
	ctx := context.Background()
	id := uuid.NewString()
	t.Cleanup(func() { _ = s.Delete(ctx, id) })

	if err := s.Save(ctx, id, ports.SessionRecord{Token: "T", Role: "user"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	s.now = func() time.Time { return time.Now().UTC().Add(2 * time.Minute) }

	if _, err := s.Load(ctx, id); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected expired record to be missing, got %v", err)
	}
}
