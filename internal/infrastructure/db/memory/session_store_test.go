package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/zhangir128/UAV/internal/core/domain"
	"github.com/zhangir128/UAV/internal/core/ports"
)

func TestSessionStore(t *testing.T) {
	s := NewSessionStore()
	ctx := context.Background()

	if _, err := s.Load(ctx, "sid"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	rec := ports.SessionRecord{Token: "T", Role: "user", DisplayName: "Jane Doe"}
	_ = s.Save(ctx, "sid", rec)
	got, err := s.Load(ctx, "sid")
	if err != nil || got != rec {
		t.Fatalf("got %+v, %v", got, err)
	}

	_ = s.Delete(ctx, "sid")
	if _, err := s.Load(ctx, "sid"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
	}
}
