package domain

import (
	"strings"
	"time"
)

// ZoneStatus is the state a restricted zone was declared with.
type ZoneStatus string

const (
	ZoneActive   ZoneStatus = "active"
	ZoneInactive ZoneStatus = "inactive"
	ZoneUnknown  ZoneStatus = "unknown"
)

// ParseZoneStatus maps a registry zone state to a display state.
func ParseZoneStatus(raw string) ZoneStatus {
	switch ZoneStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case ZoneActive:
		return ZoneActive
	case ZoneInactive:
		return ZoneInactive
	default:
		return ZoneUnknown
	}
}

// RestrictedZone is a geofenced cylinder flights must avoid.
// Radius is in metres; Center.Altitude is the ceiling of the cylinder.
type RestrictedZone struct {
	ID        int64      `json:"id"`
	OwnerID   int64      `json:"owner_id"`
	Name      string     `json:"name"`
	Center    Position   `json:"center"`
	Radius    float64    `json:"radius"`
	Status    ZoneStatus `json:"status"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// Expired reports whether now is past the zone's expiry.
// A zero expiry never expires.
func (z RestrictedZone) Expired(now time.Time) bool {
	return !z.ExpiresAt.IsZero() && now.After(z.ExpiresAt)
}

// InForce reports whether the zone should be drawn as restricting flights.
func (z RestrictedZone) InForce(now time.Time) bool {
	return z.Status == ZoneActive && !z.Expired(now)
}
