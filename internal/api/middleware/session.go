package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/zhangir128/UAV/internal/core/service"
)

// WorkspaceKey is the echo context key the session middleware stores the
// request's *service.Workspace under.
const WorkspaceKey = "workspace"

// WorkspaceResolver returns the workspace for a session id.
type WorkspaceResolver interface {
	Get(ctx context.Context, id string) (*service.Workspace, error)
}

// SessionOptions configures the session cookie.
type SessionOptions struct {
	Secret     string
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Session identifies the browser by a signed cookie carrying a random
// session id, issuing a fresh one when the cookie is missing, expired or
// forged. The matching workspace is attached to the echo context and its
// session holder to the request context.
func Session(opts SessionOptions, workspaces WorkspaceResolver) echo.MiddlewareFunc {
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid, ok := sessionID(c, opts)
			if !ok {
				sid = uuid.NewString()
				if err := issueCookie(c, opts, sid); err != nil {
					return err
				}
			}

			w, err := workspaces.Get(c.Request().Context(), sid)
			if err != nil {
				return err
			}

			c.Set(WorkspaceKey, w)
			c.SetRequest(c.Request().WithContext(service.WithSession(c.Request().Context(), w.Session)))
			return next(c)
		}
	}
}

func sessionID(c echo.Context, opts SessionOptions) (string, bool) {
	cookie, err := c.Cookie(opts.CookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}

	claims := &jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(cookie.Value, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(opts.Secret), nil
	})
	if err != nil || !tkn.Valid {
		return "", false
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", false
	}
	return claims.Subject, true
}

func issueCookie(c echo.Context, opts SessionOptions, sid string) error {
	now := time.Now()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sid,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(opts.TTL)),
	}).SignedString([]byte(opts.Secret))
	if err != nil {
		return fmt.Errorf("sign session cookie: %w", err)
	}

	c.SetCookie(&http.Cookie{
		Name:     opts.CookieName,
		Value:    signed,
		Path:     "/",
		Expires:  now.Add(opts.TTL),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
