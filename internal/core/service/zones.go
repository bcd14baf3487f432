package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/zhangir128/UAV/internal/core/domain"
	"github.com/zhangir128/UAV/internal/core/ports"
)

// ZoneForm declares a restricted zone. Radius is in metres, altitude is the
// zone ceiling.
type ZoneForm struct {
	OwnerID   int64     `json:"owner_id" validate:"required,gt=0"`
	Name      string    `json:"name" validate:"required"`
	Radius    float64   `json:"radius" validate:"gt=0"`
	Latitude  float64   `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64   `json:"longitude" validate:"gte=-180,lte=180"`
	Altitude  float64   `json:"altitude" validate:"gte=0"`
	ExpiresAt time.Time `json:"expires_at" validate:"required"`
}

// ZoneService reads and declares restricted zones.
type ZoneService struct {
	zones ports.ZoneGateway
	log   zerolog.Logger
	now   func() time.Time
}

func NewZoneService(zones ports.ZoneGateway, log zerolog.Logger) *ZoneService {
	return &ZoneService{zones: zones, log: log, now: time.Now}
}

// List returns every zone the registry knows about, expired ones included.
func (s *ZoneService) List(ctx context.Context, holder *SessionHolder) ([]domain.RestrictedZone, error) {
	if !holder.IsAuthenticated() {
		return nil, domain.ErrNotAuthenticated
	}
	zones, err := s.zones.ListZones(WithSession(ctx, holder))
	if err != nil {
		s.log.Warn().Err(err).Msg("list zones failed")
		return nil, err
	}
	return zones, nil
}

// Create declares a new active zone. Reviewers only.
func (s *ZoneService) Create(ctx context.Context, holder *SessionHolder, form ZoneForm) (*domain.RestrictedZone, error) {
	session := holder.Current()
	if !session.Authenticated() {
		return nil, domain.ErrNotAuthenticated
	}
	if session.Role != domain.RoleReviewer {
		return nil, domain.ErrForbidden
	}
	if err := Validate(form); err != nil {
		return nil, err
	}
	if !form.ExpiresAt.After(s.now()) {
		return nil, domain.NewValidationError("expires_at", "expires_at must be in the future")
	}

	z, err := s.zones.CreateZone(WithSession(ctx, holder), ports.ZoneInput{
		OwnerID:   form.OwnerID,
		Name:      form.Name,
		Radius:    form.Radius,
		Center:    domain.Position{Lat: form.Latitude, Lng: form.Longitude, Altitude: form.Altitude},
		Status:    domain.ZoneActive,
		ExpiresAt: form.ExpiresAt,
	})
	if err != nil {
		s.log.Warn().Err(err).Str("name", form.Name).Msg("create zone failed")
		return nil, err
	}
	s.log.Info().Int64("zone_id", z.ID).Str("name", z.Name).Msg("restricted zone created")
	return z, nil
}
