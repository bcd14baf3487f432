package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zhangir128/UAV/internal/core/domain"
	"github.com/zhangir128/UAV/internal/core/service"
)

// MonitorHandler exposes the workspace's live drone monitors and the
// reviewer fleet map.
type MonitorHandler struct{}

func NewMonitorHandler() *MonitorHandler {
	return &MonitorHandler{}
}

type positionRequest struct {
	Lat      float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng      float64 `json:"lng" validate:"gte=-180,lte=180"`
	Altitude float64 `json:"altitude" validate:"gte=0"`
}

func (p positionRequest) toDomain() domain.Position {
	return domain.Position{Lat: p.Lat, Lng: p.Lng, Altitude: p.Altitude}
}

func (h *MonitorHandler) monitor(c echo.Context) (*service.LiveMonitor, error) {
	id, err := int64Param(c, "droneId")
	if err != nil {
		return nil, err
	}
	ws, err := ctxWorkspace(c)
	if err != nil {
		return nil, err
	}
	return ws.Monitor(id)
}

// Open starts polling a drone, or joins the monitor already running.
//
// @Summary      Open a drone monitor
// @Tags         monitors
// @Produce      json
// @Param        droneId  path      int  true  "Drone ID"
// @Success      201      {object}  service.MonitorSnapshot
// @Failure      401      {object}  ErrorResponse
// @Router       /api/v1/monitors/{droneId} [post]
func (h *MonitorHandler) Open(c echo.Context) error {
	id, err := int64Param(c, "droneId")
	if err != nil {
		return err
	}
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	m, err := ws.OpenMonitor(id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, m.Snapshot())
}

// Snapshot returns the monitor's current state.
//
// @Summary      Drone monitor snapshot
// @Tags         monitors
// @Produce      json
// @Param        droneId  path      int  true  "Drone ID"
// @Success      200      {object}  service.MonitorSnapshot
// @Failure      404      {object}  ErrorResponse
// @Router       /api/v1/monitors/{droneId} [get]
func (h *MonitorHandler) Snapshot(c echo.Context) error {
	m, err := h.monitor(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m.Snapshot())
}

// Stream pushes every new snapshot as a Server-Sent Event.
//
// @Summary      Stream drone monitor snapshots
// @Tags         monitors
// @Produce      text/event-stream
// @Param        droneId  path  int  true  "Drone ID"
// @Success      200
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/monitors/{droneId}/stream [get]
func (h *MonitorHandler) Stream(c echo.Context) error {
	id, err := int64Param(c, "droneId")
	if err != nil {
		return err
	}
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	release := ws.Watch()
	defer release()

	m, err := ws.Monitor(id)
	if err != nil {
		return err
	}
	updates, cancel := m.Subscribe()
	defer cancel()
	return stream(c, "snapshot", updates)
}

// MoveToStart sends the drone to its start point.
//
// @Summary      Move drone to start
// @Tags         monitors
// @Accept       json
// @Produce      json
// @Param        droneId  path      int              true  "Drone ID"
// @Param        body     body      positionRequest  true  "Start point"
// @Success      200      {object}  service.MonitorSnapshot
// @Failure      404      {object}  ErrorResponse
// @Failure      409      {object}  ErrorResponse
// @Failure      422      {object}  ErrorResponse
// @Router       /api/v1/monitors/{droneId}/start [post]
func (h *MonitorHandler) MoveToStart(c echo.Context) error {
	return h.move(c, (*service.LiveMonitor).SetStart)
}

// MoveTo sends the drone to its destination.
//
// @Summary      Move drone to destination
// @Tags         monitors
// @Accept       json
// @Produce      json
// @Param        droneId  path      int              true  "Drone ID"
// @Param        body     body      positionRequest  true  "Destination"
// @Success      200      {object}  service.MonitorSnapshot
// @Failure      404      {object}  ErrorResponse
// @Failure      409      {object}  ErrorResponse
// @Failure      422      {object}  ErrorResponse
// @Router       /api/v1/monitors/{droneId}/move [post]
func (h *MonitorHandler) MoveTo(c echo.Context) error {
	return h.move(c, (*service.LiveMonitor).SetEnd)
}

func (h *MonitorHandler) move(c echo.Context, send func(*service.LiveMonitor, context.Context, domain.Position) error) error {
	var req positionRequest
	if err := c.Bind(&req); err != nil {
		return invalidPayload(c)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	m, err := h.monitor(c)
	if err != nil {
		return err
	}
	if err := send(m, c.Request().Context(), req.toDomain()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m.Snapshot())
}

// Close stops polling a drone.
//
// @Summary      Close a drone monitor
// @Tags         monitors
// @Param        droneId  path  int  true  "Drone ID"
// @Success      204
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/monitors/{droneId} [delete]
func (h *MonitorHandler) Close(c echo.Context) error {
	id, err := int64Param(c, "droneId")
	if err != nil {
		return err
	}
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	if err := ws.CloseMonitor(id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Fleet returns the reviewer fleet map, starting it when needed.
//
// @Summary      Fleet map snapshot
// @Tags         fleet
// @Produce      json
// @Success      200  {object}  service.FleetSnapshot
// @Failure      403  {object}  ErrorResponse
// @Router       /api/v1/fleet [get]
func (h *MonitorHandler) Fleet(c echo.Context) error {
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	f, err := ws.Fleet()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, f.Snapshot())
}

// FleetStream pushes fleet map snapshots as Server-Sent Events.
//
// @Summary      Stream fleet map snapshots
// @Tags         fleet
// @Produce      text/event-stream
// @Success      200
// @Failure      403  {object}  ErrorResponse
// @Router       /api/v1/fleet/stream [get]
func (h *MonitorHandler) FleetStream(c echo.Context) error {
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	release := ws.Watch()
	defer release()

	f, err := ws.Fleet()
	if err != nil {
		return err
	}
	updates, cancel := f.Subscribe()
	defer cancel()
	return stream(c, "fleet", updates)
}

// CloseFleet stops the fleet map.
//
// @Summary      Close the fleet map
// @Tags         fleet
// @Success      204
// @Router       /api/v1/fleet [delete]
func (h *MonitorHandler) CloseFleet(c echo.Context) error {
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	ws.CloseFleet()
	return c.NoContent(http.StatusNoContent)
}
