package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zhangir128/UAV/internal/core/service"
)

type DroneHandler struct {
	drones *service.DroneService
}

func NewDroneHandler(drones *service.DroneService) *DroneHandler {
	return &DroneHandler{drones: drones}
}

// List returns the drones visible to the session.
//
// @Summary      List drones
// @Tags         drones
// @Produce      json
// @Success      200  {array}   domain.Drone
// @Failure      401  {object}  ErrorResponse
// @Failure      502  {object}  ErrorResponse
// @Router       /api/v1/drones [get]
func (h *DroneHandler) List(c echo.Context) error {
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	drones, err := h.drones.List(c.Request().Context(), ws.Session)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, drones)
}

// Register adds a drone to the registry.
//
// @Summary      Register a drone
// @Tags         drones
// @Accept       json
// @Produce      json
// @Param        body  body      service.DroneForm  true  "Drone"
// @Success      201   {object}  domain.DroneRegistration
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Failure      502   {object}  ErrorResponse
// @Router       /api/v1/drones [post]
func (h *DroneHandler) Register(c echo.Context) error {
	var form service.DroneForm
	if err := c.Bind(&form); err != nil {
		return invalidPayload(c)
	}
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}

	reg, err := h.drones.Register(c.Request().Context(), ws.Session, form)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, reg)
}
