package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/zhangir128/UAV/internal/core/domain"
	"github.com/zhangir128/UAV/internal/core/ports"
)

func TestZones_ListZonesToleratesBadExpiry(t *testing.T) {
	srv := newServer(t, nil, http.StatusOK, `[
		{"id": 1, "name": "stadium", "state": "active", "expires_at": "2030-05-01T10:00:00Z"},
		{"id": 2, "name": "airport", "state": "active", "expires_at": "next tuesday"},
		{"id": 3, "name": "park", "state": "active", "expires_at": "2030-05-01 10:00:00"},
		{"id": 4, "name": "bridge", "state": "active", "expires_at": null}
	]`)
	g := NewZones(NewClient("zones", srv.URL))

	zones, err := g.ListZones(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(zones) != 4 {
		t.Fatalf("expected every zone, got %d", len(zones))
	}
	want := time.Date(2030, 5, 1, 10, 0, 0, 0, time.UTC)
	if !zones[0].ExpiresAt.Equal(want) || !zones[2].ExpiresAt.Equal(want) {
		t.Fatalf("expected parsed expiries, got %v and %v", zones[0].ExpiresAt, zones[2].ExpiresAt)
	}
	if !zones[1].ExpiresAt.IsZero() || !zones[3].ExpiresAt.IsZero() {
		t.Fatalf("expected unreadable expiries to decode as zero, got %v and %v", zones[1].ExpiresAt, zones[3].ExpiresAt)
	}
	if !zones[1].InForce(want) {
		t.Fatal("expected a zone with unreadable expiry to stay in force")
	}
}

func TestZones_CreateZoneSendsRFC3339Expiry(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = decodeBody(r, &got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 9, "name": "stadium", "state": "active", "expires_at": "2030-05-01T10:00:00Z"}`))
	}))
	t.Cleanup(srv.Close)
	g := NewZones(NewClient("zones", srv.URL))

	exp := time.Date(2030, 5, 1, 15, 0, 0, 0, time.FixedZone("ALMT", 5*3600))
	z, err := g.CreateZone(context.Background(), ports.ZoneInput{
		Name:      "stadium",
		Radius:    100,
		Status:    domain.ZoneActive,
		ExpiresAt: exp,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got["expires_at"] != "2030-05-01T10:00:00Z" {
		t.Fatalf("expected UTC RFC3339 expiry, got %v", got["expires_at"])
	}
	if !z.ExpiresAt.Equal(exp) {
		t.Fatalf("expected stored expiry %v, got %v", exp, z.ExpiresAt)
	}
}
