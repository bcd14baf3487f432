package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/zhangir128/UAV/internal/core/domain"
	"github.com/zhangir128/UAV/internal/core/ports"
	"github.com/zhangir128/UAV/internal/pkg/metrics"
)

// operatorRoleID is the identity service's role id for pilot accounts.
const operatorRoleID = 1

// LoginForm is the sign-in form.
type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterForm is the pilot sign-up form.
type RegisterForm struct {
	FirstName       string `json:"first_name" validate:"required"`
	LastName        string `json:"last_name" validate:"required"`
	MiddleName      string `json:"middle_name"`
	Email           string `json:"email" validate:"required,email"`
	Address         string `json:"address"`
	Phone           string `json:"phone"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// FullName joins the name parts in the order the identity service stores them.
func (f RegisterForm) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{f.FirstName, f.LastName, f.MiddleName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// AuthService signs sessions in and out against the identity service.
type AuthService struct {
	identity ports.IdentityGateway
	log      zerolog.Logger
}

func NewAuthService(identity ports.IdentityGateway, log zerolog.Logger) *AuthService {
	return &AuthService{identity: identity, log: log}
}

// Login authenticates the form and stores the result in holder. It returns
// the route the console should navigate to. On any failure the holder keeps
// its previous session.
func (s *AuthService) Login(ctx context.Context, holder *SessionHolder, form LoginForm) (string, error) {
	if err := Validate(form); err != nil {
		return "", err
	}

	res, err := s.identity.Login(ctx, form.Email, form.Password)
	if err != nil {
		metrics.SessionEventsTotal.WithLabelValues("login_failed").Inc()
		s.log.Warn().Err(err).Str("email", form.Email).Msg("login failed")
		return "", err
	}

	role := domain.ParseRole(res.RoleName)
	if err := holder.Login(ctx, res.Token, role, res.FullName); err != nil {
		metrics.SessionEventsTotal.WithLabelValues("login_failed").Inc()
		s.log.Warn().Err(err).Str("email", form.Email).Str("role", res.RoleName).Msg("login refused")
		return "", err
	}

	metrics.SessionEventsTotal.WithLabelValues("login").Inc()
	s.log.Info().Str("session_id", holder.ID()).Str("role", string(role)).Msg("signed in")
	return domain.HomeRoute(role), nil
}

// Logout clears the holder's credentials.
func (s *AuthService) Logout(ctx context.Context, holder *SessionHolder) error {
	metrics.SessionEventsTotal.WithLabelValues("logout").Inc()
	return holder.Logout(ctx)
}

// Register creates a pilot account. The session is not signed in.
func (s *AuthService) Register(ctx context.Context, form RegisterForm) (*ports.Ack, error) {
	if err := Validate(form); err != nil {
		return nil, err
	}

	ack, err := s.identity.Register(ctx, ports.Profile{
		FullName: form.FullName(),
		Email:    form.Email,
		Address:  form.Address,
		Phone:    form.Phone,
		Password: form.Password,
		RoleID:   operatorRoleID,
	})
	if err != nil {
		s.log.Warn().Err(err).Str("email", form.Email).Msg("registration failed")
		return nil, err
	}

	s.log.Info().Str("email", form.Email).Msg("pilot registered")
	return ack, nil
}
