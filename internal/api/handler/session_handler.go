package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/zhangir128/UAV/internal/core/domain"
	"github.com/zhangir128/UAV/internal/core/service"
)

type SessionHandler struct {
	auth *service.AuthService
	log  zerolog.Logger
}

func NewSessionHandler(auth *service.AuthService, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{auth: auth, log: log}
}

type sessionResponse struct {
	Authenticated bool        `json:"authenticated"`
	Role          domain.Role `json:"role,omitempty"`
	DisplayName   string      `json:"display_name,omitempty"`
	Route         string      `json:"route"`
}

type registerResponse struct {
	Message string `json:"message"`
	Route   string `json:"route"`
}

func newSessionResponse(s domain.Session) sessionResponse {
	resp := sessionResponse{
		Authenticated: s.Authenticated(),
		Role:          s.Role,
		DisplayName:   s.DisplayName,
		Route:         domain.RouteEntry,
	}
	if resp.Authenticated {
		resp.Route = domain.HomeRoute(s.Role)
	}
	return resp
}

// Login signs the browser session in.
//
// @Summary      Sign in
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      service.LoginForm  true  "Credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Failure      502   {object}  ErrorResponse
// @Router       /api/v1/session/login [post]
func (h *SessionHandler) Login(c echo.Context) error {
	var form service.LoginForm
	if err := c.Bind(&form); err != nil {
		return invalidPayload(c)
	}
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}

	prev := ws.Session.Current()
	route, err := h.auth.Login(c.Request().Context(), ws.Session, form)
	if err != nil {
		return err
	}
	// A different account must not inherit the previous one's monitors.
	if cur := ws.Session.Current(); prev.Authenticated() && (prev.Token != cur.Token || prev.Role != cur.Role) {
		ws.Reset()
	}

	resp := newSessionResponse(ws.Session.Current())
	resp.Route = route
	return c.JSON(http.StatusOK, resp)
}

// Logout signs the session out and stops everything it was monitoring.
//
// @Summary      Sign out
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /api/v1/session/logout [post]
func (h *SessionHandler) Logout(c echo.Context) error {
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}

	if err := h.auth.Logout(c.Request().Context(), ws.Session); err != nil {
		h.log.Warn().Err(err).Str("session_id", ws.ID).Msg("session record not removed")
	}
	ws.Reset()
	return c.JSON(http.StatusOK, newSessionResponse(ws.Session.Current()))
}

// Register creates a pilot account without signing in.
//
// @Summary      Register a pilot
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      service.RegisterForm  true  "Pilot profile"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Failure      502   {object}  ErrorResponse
// @Router       /api/v1/session/register [post]
func (h *SessionHandler) Register(c echo.Context) error {
	var form service.RegisterForm
	if err := c.Bind(&form); err != nil {
		return invalidPayload(c)
	}

	ack, err := h.auth.Register(c.Request().Context(), form)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, registerResponse{Message: ack.Message, Route: domain.RouteLogin})
}

// Current returns who the browser session is signed in as.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /api/v1/session [get]
func (h *SessionHandler) Current(c echo.Context) error {
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newSessionResponse(ws.Session.Current()))
}
