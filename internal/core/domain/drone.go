package domain

import (
	"strings"
	"time"
)

// DroneStatus is the display state of a drone.
type DroneStatus string

const (
	DroneOffline         DroneStatus = "offline"
	DroneActive          DroneStatus = "active"
	DroneFlying          DroneStatus = "flying"
	DroneStopped         DroneStatus = "stopped"
	DroneDepletedBattery DroneStatus = "depleted_battery"
	DroneUnknown         DroneStatus = "unknown"
)

// ParseDroneStatus maps a registry status to a display state.
// Unrecognised values become DroneUnknown.
func ParseDroneStatus(raw string) DroneStatus {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, " ", "_")
	switch DroneStatus(s) {
	case DroneOffline, DroneActive, DroneFlying, DroneStopped, DroneDepletedBattery:
		return DroneStatus(s)
	default:
		return DroneUnknown
	}
}

// Position is a point in space; Altitude is metres above ground.
type Position struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Altitude float64 `json:"altitude"`
}

// Drone is the console's cached copy of a registry entry.
type Drone struct {
	ID       int64       `json:"id"`
	OwnerID  int64       `json:"owner_id"`
	Name     string      `json:"name"`
	MaxSpeed float64     `json:"max_speed"`
	Position Position    `json:"position"`
	Battery  float64     `json:"battery"`
	Status   DroneStatus `json:"status"`
}

// Telemetry is a drone's reported state at a point in time.
type Telemetry struct {
	Position       Position    `json:"position"`
	Speed          float64     `json:"speed"`
	Battery        float64     `json:"battery"`
	Status         DroneStatus `json:"status"`
	MovingToTarget bool        `json:"moving_to_target"`
	ReceivedAt     time.Time   `json:"received_at"`
}

// DroneRegistration is the registry's answer to a new drone.
type DroneRegistration struct {
	DroneID int64  `json:"drone_id"`
	Name    string `json:"name"`
}
