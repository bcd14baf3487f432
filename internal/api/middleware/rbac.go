package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zhangir128/UAV/internal/core/domain"
	"github.com/zhangir128/UAV/internal/core/service"
)

func workspace(c echo.Context) *service.Workspace {
	w, _ := c.Get(WorkspaceKey).(*service.Workspace)
	return w
}

// RBAC enforces role-based access control on API routes: 401 without a
// session, 403 for a role outside allowedRoles. No roles means any signed-in
// session.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			w := workspace(c)
			if w == nil || !w.Session.IsAuthenticated() {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
			}
			if len(allowed) == 0 {
				return next(c)
			}
			if _, ok := allowed[w.Session.Current().Role]; !ok {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

// PageGate redirects navigation the route table does not allow for the
// session's role to the entry route.
func PageGate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var s domain.Session
			if w := workspace(c); w != nil {
				s = w.Session.Current()
			}
			if redirect, ok := domain.Gate(s, c.Request().URL.Path); !ok {
				return c.Redirect(http.StatusFound, redirect)
			}
			return next(c)
		}
	}
}
