package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/zhangir128/UAV/internal/api/middleware"
	"github.com/zhangir128/UAV/internal/core/service"
)

// ctxWorkspace returns the workspace attached by the Session middleware.
// Its absence means the route was registered without that middleware.
func ctxWorkspace(c echo.Context) (*service.Workspace, error) {
	w, ok := c.Get(middleware.WorkspaceKey).(*service.Workspace)
	if !ok || w == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	return w, nil
}

// int64Param parses a positive numeric path parameter.
func int64Param(c echo.Context, name string) (int64, error) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || v <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return v, nil
}

func invalidPayload(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid payload"})
}
