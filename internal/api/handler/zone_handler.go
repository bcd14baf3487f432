package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zhangir128/UAV/internal/core/service"
)

type ZoneHandler struct {
	zones *service.ZoneService
}

func NewZoneHandler(zones *service.ZoneService) *ZoneHandler {
	return &ZoneHandler{zones: zones}
}

// List returns every restricted zone.
//
// @Summary      List restricted zones
// @Tags         zones
// @Produce      json
// @Success      200  {array}   domain.RestrictedZone
// @Failure      401  {object}  ErrorResponse
// @Failure      502  {object}  ErrorResponse
// @Router       /api/v1/zones [get]
func (h *ZoneHandler) List(c echo.Context) error {
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	zones, err := h.zones.List(c.Request().Context(), ws.Session)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, zones)
}

// Create registers a restricted zone. Reviewers only.
//
// @Summary      Create a restricted zone
// @Tags         zones
// @Accept       json
// @Produce      json
// @Param        body  body      service.ZoneForm  true  "Zone"
// @Success      201   {object}  domain.RestrictedZone
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Failure      502   {object}  ErrorResponse
// @Router       /api/v1/zones [post]
func (h *ZoneHandler) Create(c echo.Context) error {
	var form service.ZoneForm
	if err := c.Bind(&form); err != nil {
		return invalidPayload(c)
	}
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}

	zone, err := h.zones.Create(c.Request().Context(), ws.Session, form)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, zone)
}
