package gateway

import (
	"context"
	"errors"
	"net/http"

	"github.com/zhangir128/UAV/internal/core/domain"
	"github.com/zhangir128/UAV/internal/core/ports"
)

// Identity is the authentication service gateway.
type Identity struct {
	c *Client
}

// NewIdentity wraps c as an identity gateway.
func NewIdentity(c *Client) *Identity {
	return &Identity{c: c}
}

var _ ports.IdentityGateway = (*Identity)(nil)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  *struct {
		RoleName string `json:"role_name"`
		FullName string `json:"full_name"`
	} `json:"user"`
}

// Login exchanges credentials for a token and the caller's profile.
func (g *Identity) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	var resp loginResponse
	if err := g.c.do(ctx, "login", http.MethodPost, "/login", nil, loginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, &domain.DecodeError{Op: "identity.login", Err: errors.New("missing token")}
	}
	if resp.User == nil {
		return nil, &domain.DecodeError{Op: "identity.login", Err: errors.New("missing user")}
	}
	return &ports.LoginResult{
		Token:    resp.Token,
		RoleName: resp.User.RoleName,
		FullName: resp.User.FullName,
	}, nil
}

type registerRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	RoleID   int    `json:"role_id"`
}

type registerResponse struct {
	ackEnvelope
}

// Register creates a pilot account.
func (g *Identity) Register(ctx context.Context, p ports.Profile) (*ports.Ack, error) {
	var resp registerResponse
	err := g.c.do(ctx, "register", http.MethodPost, "/register", nil, registerRequest{
		FullName: p.FullName,
		Email:    p.Email,
		Address:  p.Address,
		Phone:    p.Phone,
		Password: p.Password,
		RoleID:   p.RoleID,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &ports.Ack{Message: resp.text()}, nil
}
