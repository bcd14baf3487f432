package domain

import (
	"strings"
	"time"
)

// RequestStatus is the lifecycle state of a flight request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
	RequestUnknown  RequestStatus = "unknown"
)

// ParseRequestStatus maps a registry status code to a display state.
func ParseRequestStatus(raw string) RequestStatus {
	switch RequestStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case RequestPending:
		return RequestPending
	case RequestApproved:
		return RequestApproved
	case RequestRejected:
		return RequestRejected
	default:
		return RequestUnknown
	}
}

// Label is the text shown next to a request.
func (s RequestStatus) Label() string {
	switch s {
	case RequestPending:
		return "Pending"
	case RequestApproved:
		return "Approved"
	case RequestRejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}

// FlightRequest asks for permission to fly a drone between two points.
// Only a reviewer can move it out of pending, and only the server decides.
type FlightRequest struct {
	ID            int64         `json:"id"`
	DroneID       int64         `json:"drone_id"`
	Requester     string        `json:"requester"`
	DepartureTime time.Time     `json:"departure_time"`
	Altitude      float64       `json:"altitude"`
	Start         Position      `json:"start"`
	End           Position      `json:"end"`
	Status        RequestStatus `json:"status"`
}
