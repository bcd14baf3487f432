package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/zhangir128/UAV/internal/core/domain"
	"github.com/zhangir128/UAV/internal/core/ports"
)

// DroneForm registers a drone. The identity service does not return account
// ids, so the owner is supplied with the form.
type DroneForm struct {
	Name     string  `json:"name" validate:"required"`
	OwnerID  int64   `json:"owner_id" validate:"required,gt=0"`
	Port     string  `json:"port" validate:"required,numeric"`
	MaxSpeed float64 `json:"max_speed" validate:"gt=0"`
}

// DroneService lists and registers drones on behalf of a session.
type DroneService struct {
	drones ports.DroneGateway
	log    zerolog.Logger
}

func NewDroneService(drones ports.DroneGateway, log zerolog.Logger) *DroneService {
	return &DroneService{drones: drones, log: log}
}

// List returns the drones visible to the session.
func (s *DroneService) List(ctx context.Context, holder *SessionHolder) ([]domain.Drone, error) {
	if !holder.IsAuthenticated() {
		return nil, domain.ErrNotAuthenticated
	}
	ctx = WithSession(ctx, holder)
	drones, err := s.drones.ListDrones(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("list drones failed")
		return nil, err
	}
	return drones, nil
}

// Register adds a drone to an operator's fleet.
func (s *DroneService) Register(ctx context.Context, holder *SessionHolder, form DroneForm) (*domain.DroneRegistration, error) {
	session := holder.Current()
	if !session.Authenticated() {
		return nil, domain.ErrNotAuthenticated
	}
	if session.Role != domain.RoleOperator {
		return nil, domain.ErrForbidden
	}
	if err := Validate(form); err != nil {
		return nil, err
	}

	reg, err := s.drones.RegisterDrone(WithSession(ctx, holder), ports.DroneRegistration{
		Name:     form.Name,
		OwnerID:  form.OwnerID,
		Port:     form.Port,
		MaxSpeed: form.MaxSpeed,
	})
	if err != nil {
		s.log.Warn().Err(err).Str("name", form.Name).Msg("register drone failed")
		return nil, err
	}
	s.log.Info().Int64("drone_id", reg.DroneID).Str("name", reg.Name).Msg("drone registered")
	return reg, nil
}
