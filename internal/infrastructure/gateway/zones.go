package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/zhangir128/UAV/internal/core/domain"
	"github.com/zhangir128/UAV/internal/core/ports"
)

// Zones is the restricted-zone registry gateway.
type Zones struct {
	c *Client
}

// NewZones wraps c as a zone registry gateway.
func NewZones(c *Client) *Zones {
	return &Zones{c: c}
}

var _ ports.ZoneGateway = (*Zones)(nil)

type zoneDTO struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	Radius    float64   `json:"radius"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Altitude  float64   `json:"altitude"`
	State     string    `json:"state"`
	ExpiresAt zoneTime  `json:"expires_at"`
}

// zoneTimeLayouts are the expiry formats the registry has been seen to emit.
var zoneTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// zoneTime decodes an expiry leniently. A value in none of the known layouts
// decodes as zero (never expires) so one bad zone cannot fail the list.
type zoneTime struct {
	time.Time
}

func (t zoneTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(time.RFC3339))
}

func (t *zoneTime) UnmarshalJSON(b []byte) error {
	t.Time = time.Time{}
	var s string
	if err := json.Unmarshal(b, &s); err != nil || s == "" {
		return nil
	}
	for _, layout := range zoneTimeLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			t.Time = v
			return nil
		}
	}
	return nil
}

func (z zoneDTO) toDomain() domain.RestrictedZone {
	return domain.RestrictedZone{
		ID:      z.ID,
		OwnerID: z.UserID,
		Name:    z.Name,
		Center: domain.Position{
			Lat:      z.Latitude,
			Lng:      z.Longitude,
			Altitude: z.Altitude,
		},
		Radius:    z.Radius,
		Status:    domain.ParseZoneStatus(z.State),
		ExpiresAt: z.ExpiresAt.UTC(),
	}
}

// ListZones returns every restricted zone the registry knows about.
func (g *Zones) ListZones(ctx context.Context) ([]domain.RestrictedZone, error) {
	var resp []zoneDTO
	if err := g.c.do(ctx, "list_zones", http.MethodGet, "", nil, nil, &resp); err != nil {
		return nil, err
	}
	zones := make([]domain.RestrictedZone, 0, len(resp))
	for _, z := range resp {
		zones = append(zones, z.toDomain())
	}
	return zones, nil
}

// CreateZone declares a new restricted zone. The registry answers with the
// stored zone; an answer without an id is treated as a rejection.
func (g *Zones) CreateZone(ctx context.Context, in ports.ZoneInput) (*domain.RestrictedZone, error) {
	req := zoneDTO{
		UserID:    in.OwnerID,
		Name:      in.Name,
		Radius:    in.Radius,
		Latitude:  in.Center.Lat,
		Longitude: in.Center.Lng,
		Altitude:  in.Center.Altitude,
		State:     string(in.Status),
		ExpiresAt: zoneTime{in.ExpiresAt},
	}
	var resp zoneDTO
	if err := g.c.do(ctx, "create_zone", http.MethodPost, "/create", nil, req, &resp); err != nil {
		return nil, err
	}
	if resp.ID == 0 {
		return nil, &domain.RejectedError{Op: "zones.create_zone", Reason: "zone was not stored"}
	}
	z := resp.toDomain()
	return &z, nil
}
