package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/zhangir128/UAV/internal/core/domain"
	"github.com/zhangir128/UAV/internal/core/ports"
)

// Drones is the gateway for the drone registry (drones and flight requests)
// and the drone control service (telemetry and move commands).
type Drones struct {
	registry *Client
	control  *Client
}

// NewDrones builds a drone gateway from the registry and control clients.
func NewDrones(registry, control *Client) *Drones {
	return &Drones{registry: registry, control: control}
}

var _ ports.DroneGateway = (*Drones)(nil)

// --- Wire types ---

type droneDTO struct {
	ID        int64   `json:"id"`
	UserID    int64   `json:"user_id"`
	Name      string  `json:"name"`
	MaxSpeed  float64 `json:"max_speed"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
	Battery   float64 `json:"battery"`
	State     string  `json:"state"`
}

type requestDTO struct {
	ID            int64     `json:"id"`
	DroneID       int64     `json:"drone_id"`
	Requester     string    `json:"requester,omitempty"`
	DepartureTime time.Time `json:"departure_time"`
	Altitude      float64   `json:"altitude"`
	StartLat      float64   `json:"start_lat"`
	StartLng      float64   `json:"start_lng"`
	EndLat        float64   `json:"end_lat"`
	EndLng        float64   `json:"end_lng"`
	State         string    `json:"state,omitempty"`
}

func (r requestDTO) toDomain() domain.FlightRequest {
	return domain.FlightRequest{
		ID:            r.ID,
		DroneID:       r.DroneID,
		Requester:     r.Requester,
		DepartureTime: r.DepartureTime.UTC(),
		Altitude:      r.Altitude,
		Start:         domain.Position{Lat: r.StartLat, Lng: r.StartLng, Altitude: r.Altitude},
		End:           domain.Position{Lat: r.EndLat, Lng: r.EndLng, Altitude: r.Altitude},
		Status:        domain.ParseRequestStatus(r.State),
	}
}

type telemetryDTO struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	Altitude       float64 `json:"altitude"`
	Speed          float64 `json:"speed"`
	Battery        float64 `json:"battery"`
	IsFlying       bool    `json:"is_flying"`
	MovingToTarget bool    `json:"moving_to_target"`
	State          string  `json:"state"`
}

type droneStatusResponse struct {
	Status *telemetryDTO `json:"status"`
}

type registerDroneRequest struct {
	Name     string  `json:"name"`
	UserID   int64   `json:"user_id"`
	Port     string  `json:"port"`
	MaxSpeed float64 `json:"max_speed"`
}

type registerDroneResponse struct {
	ackEnvelope
	DroneID int64 `json:"drone_id"`
	Details struct {
		Name string `json:"name"`
	} `json:"details"`
}

type submitRequestResponse struct {
	ackEnvelope
	ID      int64       `json:"id"`
	Request *requestDTO `json:"request"`
}

type updateRequestBody struct {
	ID    int64  `json:"id"`
	State string `json:"state"`
}

type ackResponse struct {
	ackEnvelope
}

type moveBody struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Altitude float64 `json:"altitude"`
}

// --- Registry ---

// ListDrones returns the drones visible to the caller.
func (g *Drones) ListDrones(ctx context.Context) ([]domain.Drone, error) {
	var resp []droneDTO
	if err := g.registry.do(ctx, "list_drones", http.MethodGet, "/drones", nil, nil, &resp); err != nil {
		return nil, err
	}
	drones := make([]domain.Drone, 0, len(resp))
	for _, d := range resp {
		drones = append(drones, domain.Drone{
			ID:       d.ID,
			OwnerID:  d.UserID,
			Name:     d.Name,
			MaxSpeed: d.MaxSpeed,
			Position: domain.Position{Lat: d.Latitude, Lng: d.Longitude, Altitude: d.Altitude},
			Battery:  d.Battery,
			Status:   domain.ParseDroneStatus(d.State),
		})
	}
	return drones, nil
}

// RegisterDrone adds a drone to the caller's fleet.
func (g *Drones) RegisterDrone(ctx context.Context, in ports.DroneRegistration) (*domain.DroneRegistration, error) {
	var resp registerDroneResponse
	err := g.registry.do(ctx, "register_drone", http.MethodPost, "/drones/register", nil, registerDroneRequest{
		Name:     in.Name,
		UserID:   in.OwnerID,
		Port:     in.Port,
		MaxSpeed: in.MaxSpeed,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.DroneID == 0 {
		return nil, &domain.DecodeError{Op: "drones.register_drone", Err: errors.New("missing drone_id")}
	}
	name := resp.Details.Name
	if name == "" {
		name = in.Name
	}
	return &domain.DroneRegistration{DroneID: resp.DroneID, Name: name}, nil
}

// ListRequests returns the flight requests visible to the caller.
func (g *Drones) ListRequests(ctx context.Context) ([]domain.FlightRequest, error) {
	var resp []requestDTO
	if err := g.registry.do(ctx, "list_requests", http.MethodGet, "", nil, nil, &resp); err != nil {
		return nil, err
	}
	out := make([]domain.FlightRequest, 0, len(resp))
	for _, r := range resp {
		out = append(out, r.toDomain())
	}
	return out, nil
}

// SubmitRequest files a new flight request.
func (g *Drones) SubmitRequest(ctx context.Context, in ports.FlightRequestInput) (*domain.FlightRequest, error) {
	body := requestDTO{
		DroneID:       in.DroneID,
		DepartureTime: in.DepartureTime.UTC(),
		Altitude:      in.Altitude,
		StartLat:      in.Start.Lat,
		StartLng:      in.Start.Lng,
		EndLat:        in.End.Lat,
		EndLng:        in.End.Lng,
	}
	var resp submitRequestResponse
	if err := g.registry.do(ctx, "submit_request", http.MethodPost, "/create", nil, body, &resp); err != nil {
		return nil, err
	}

	if resp.Request != nil {
		fr := resp.Request.toDomain()
		if fr.Status == domain.RequestUnknown {
			fr.Status = domain.RequestPending
		}
		return &fr, nil
	}
	body.ID = resp.ID
	fr := body.toDomain()
	fr.Status = domain.RequestPending
	return &fr, nil
}

// UpdateRequestStatus asks the registry to move a request to status.
func (g *Drones) UpdateRequestStatus(ctx context.Context, id int64, status domain.RequestStatus) (*ports.Ack, error) {
	var resp ackResponse
	if err := g.registry.do(ctx, "update_request_status", http.MethodPost, "/update", nil, updateRequestBody{ID: id, State: string(status)}, &resp); err != nil {
		return nil, err
	}
	return &ports.Ack{Message: resp.text()}, nil
}

// --- Control ---

// DroneStatus returns the latest telemetry of one drone.
func (g *Drones) DroneStatus(ctx context.Context, droneID int64) (*domain.Telemetry, error) {
	var resp droneStatusResponse
	if err := g.control.do(ctx, "drone_status", http.MethodGet, fmt.Sprintf("/drones/%d/status", droneID), nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Status == nil {
		return nil, &domain.DecodeError{Op: "control.drone_status", Err: errors.New("missing status")}
	}
	s := resp.Status

	status := domain.ParseDroneStatus(s.State)
	if status == domain.DroneUnknown && s.State == "" {
		status = domain.DroneActive
		if s.IsFlying {
			status = domain.DroneFlying
		}
	}
	return &domain.Telemetry{
		Position:       domain.Position{Lat: s.Latitude, Lng: s.Longitude, Altitude: s.Altitude},
		Speed:          s.Speed,
		Battery:        s.Battery,
		Status:         status,
		MovingToTarget: s.MovingToTarget,
		ReceivedAt:     time.Now().UTC(),
	}, nil
}

// MoveToStart sends the drone to its take-off position.
func (g *Drones) MoveToStart(ctx context.Context, droneID int64, target domain.Position) (*ports.Ack, error) {
	return g.move(ctx, "move_to_start", fmt.Sprintf("/drones/%d/start", droneID), target)
}

// MoveTo sends the drone to a target position.
func (g *Drones) MoveTo(ctx context.Context, droneID int64, target domain.Position) (*ports.Ack, error) {
	return g.move(ctx, "move_to", fmt.Sprintf("/drones/%d/move", droneID), target)
}

func (g *Drones) move(ctx context.Context, op, path string, target domain.Position) (*ports.Ack, error) {
	var resp ackResponse
	if err := g.control.do(ctx, op, http.MethodPost, path, nil, moveBody{Lat: target.Lat, Lng: target.Lng, Altitude: target.Altitude}, &resp); err != nil {
		return nil, err
	}
	return &ports.Ack{Message: resp.text()}, nil
}
