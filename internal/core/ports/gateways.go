package ports

import (
	"context"
	"time"

	"github.com/zhangir128/UAV/internal/core/domain"
)

// LoginResult is what the identity service returns on a successful login.
type LoginResult struct {
	Token    string
	RoleName string
	FullName string
}

// Profile is a new pilot account.
type Profile struct {
	FullName string
	Email    string
	Address  string
	Phone    string
	Password string
	RoleID   int
}

// Ack is an explicit acceptance from a remote service.
type Ack struct {
	Message string
}

// IdentityGateway talks to the authentication service.
type IdentityGateway interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Register(ctx context.Context, p Profile) (*Ack, error)
}

// DroneRegistration carries the fields of a new drone.
type DroneRegistration struct {
	Name     string
	OwnerID  int64
	Port     string
	MaxSpeed float64
}

// FlightRequestInput is a new flight request.
type FlightRequestInput struct {
	DroneID       int64
	DepartureTime time.Time
	Altitude      float64
	Start         domain.Position
	End           domain.Position
}

// DroneGateway talks to the drone registry and drone control services.
// Every mutating call returns an error unless the service acknowledged it.
type DroneGateway interface {
	ListDrones(ctx context.Context) ([]domain.Drone, error)
	RegisterDrone(ctx context.Context, in DroneRegistration) (*domain.DroneRegistration, error)
	ListRequests(ctx context.Context) ([]domain.FlightRequest, error)
	SubmitRequest(ctx context.Context, in FlightRequestInput) (*domain.FlightRequest, error)
	UpdateRequestStatus(ctx context.Context, id int64, status domain.RequestStatus) (*Ack, error)
	DroneStatus(ctx context.Context, droneID int64) (*domain.Telemetry, error)
	MoveToStart(ctx context.Context, droneID int64, target domain.Position) (*Ack, error)
	MoveTo(ctx context.Context, droneID int64, target domain.Position) (*Ack, error)
}

// ZoneInput is a new restricted zone.
type ZoneInput struct {
	OwnerID   int64
	Name      string
	Radius    float64
	Center    domain.Position
	Status    domain.ZoneStatus
	ExpiresAt time.Time
}

// ZoneGateway talks to the restricted-zone registry.
type ZoneGateway interface {
	ListZones(ctx context.Context) ([]domain.RestrictedZone, error)
	CreateZone(ctx context.Context, in ZoneInput) (*domain.RestrictedZone, error)
}

// WeatherGateway fetches current conditions at the reference location.
type WeatherGateway interface {
	Current(ctx context.Context) (*domain.WeatherSnapshot, error)
}
