package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zhangir128/UAV/internal/core/domain"
	"github.com/zhangir128/UAV/internal/core/service"
)

// PageHandler renders the console's pages as JSON view models. Access is
// decided by the PageGate middleware before any of these run.
type PageHandler struct {
	drones *service.DroneService
	zones  *service.ZoneService
}

func NewPageHandler(drones *service.DroneService, zones *service.ZoneService) *PageHandler {
	return &PageHandler{drones: drones, zones: zones}
}

type pageView struct {
	Route   string          `json:"route"`
	Session sessionResponse `json:"session"`
	Data    any             `json:"data,omitempty"`
}

type operatorHome struct {
	Drones   []domain.Drone            `json:"drones"`
	Requests service.FlightRequestView `json:"requests"`
	Alert    string                    `json:"alert,omitempty"`
}

type reviewerHome struct {
	Requests service.FlightRequestView `json:"requests"`
	Zones    []domain.RestrictedZone   `json:"zones"`
	Alert    string                    `json:"alert,omitempty"`
}

func (h *PageHandler) render(c echo.Context, ws *service.Workspace, data any) error {
	return c.JSON(http.StatusOK, pageView{
		Route:   c.Request().URL.Path,
		Session: newSessionResponse(ws.Session.Current()),
		Data:    data,
	})
}

// Public renders the entry, login and register pages.
//
// @Summary      Public page
// @Tags         pages
// @Produce      json
// @Success      200  {object}  pageView
// @Router       / [get]
// @Router       /login [get]
// @Router       /register [get]
func (h *PageHandler) Public(c echo.Context) error {
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	return h.render(c, ws, nil)
}

// OperatorHome lists the operator's drones and flight requests.
//
// @Summary      Operator home
// @Tags         pages
// @Produce      json
// @Success      200  {object}  pageView
// @Failure      302
// @Router       /home [get]
func (h *PageHandler) OperatorHome(c echo.Context) error {
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	var page operatorHome
	drones, err := h.drones.List(ctx, ws.Session)
	if err != nil && !remoteFailure(err) {
		return err
	}
	page.Drones = drones
	page.Alert = domain.UserMessage(err)
	if page.Drones == nil {
		page.Drones = []domain.Drone{}
	}

	if err := ws.Requests.Load(ctx); err != nil && !remoteFailure(err) {
		return err
	}
	page.Requests = ws.Requests.View()
	return h.render(c, ws, page)
}

// DroneMonitor opens the live monitor for one drone.
//
// @Summary      Drone monitor page
// @Tags         pages
// @Produce      json
// @Param        droneId  path      int  true  "Drone ID"
// @Success      200      {object}  pageView
// @Failure      302
// @Router       /home/{droneId} [get]
func (h *PageHandler) DroneMonitor(c echo.Context) error {
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
	return h.render(c, ws, m.Snapshot())
}

// ReviewerHome lists every flight request and the restricted zones.
//
// @Summary      Reviewer home
// @Tags         pages
// @Produce      json
// @Success      200  {object}  pageView
// @Failure      302
// @Router       /admin [get]
func (h *PageHandler) ReviewerHome(c echo.Context) error {
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	var page reviewerHome
	if err := ws.Requests.Load(ctx); err != nil && !remoteFailure(err) {
		return err
	}
	page.Requests = ws.Requests.View()

	zones, err := h.zones.List(ctx, ws.Session)
	if err != nil && !remoteFailure(err) {
		return err
	}
	page.Zones = zones
	page.Alert = domain.UserMessage(err)
	if page.Zones == nil {
		page.Zones = []domain.RestrictedZone{}
	}
	return h.render(c, ws, page)
}

// FleetMonitor opens the reviewer fleet map.
//
// @Summary      Fleet map page
// @Tags         pages
// @Produce      json
// @Success      200  {object}  pageView
// @Failure      302
// @Router       /admin-monitor [get]
func (h *PageHandler) FleetMonitor(c echo.Context) error {
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	f, err := ws.Fleet()
	if err != nil {
		return err
	}
	return h.render(c, ws, f.Snapshot())
}
