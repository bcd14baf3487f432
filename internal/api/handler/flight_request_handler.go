package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zhangir128/UAV/internal/core/service"
)

// FlightRequestHandler drives the workspace's flight request view model.
type FlightRequestHandler struct{}

func NewFlightRequestHandler() *FlightRequestHandler {
	return &FlightRequestHandler{}
}

// List reloads the requests. A remote failure keeps the previous rows and
// is reported in the view's alert.
//
// @Summary      List flight requests
// @Tags         flight-requests
// @Produce      json
// @Success      200  {object}  service.FlightRequestView
// @Failure      401  {object}  ErrorResponse
// @Router       /api/v1/flight-requests [get]
func (h *FlightRequestHandler) List(c echo.Context) error {
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	if err := ws.Requests.Load(c.Request().Context()); err != nil && !remoteFailure(err) {
		return err
	}
	return c.JSON(http.StatusOK, ws.Requests.View())
}

// Submit files a flight request. Operators only.
//
// @Summary      Submit a flight request
// @Tags         flight-requests
// @Accept       json
// @Produce      json
// @Param        body  body      service.FlightRequestForm  true  "Flight request"
// @Success      201   {object}  domain.FlightRequest
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Failure      502   {object}  ErrorResponse
// @Router       /api/v1/flight-requests [post]
func (h *FlightRequestHandler) Submit(c echo.Context) error {
	var form service.FlightRequestForm
	if err := c.Bind(&form); err != nil {
		return invalidPayload(c)
	}
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}

	fr, err := ws.Requests.Submit(c.Request().Context(), form)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, fr)
}

// Approve marks a request approved. Reviewers only.
//
// @Summary      Approve a flight request
// @Tags         flight-requests
// @Produce      json
// @Param        id   path      int  true  "Request ID"
// @Success      200  {object}  service.FlightRequestView
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      502  {object}  ErrorResponse
// @Router       /api/v1/flight-requests/{id}/approve [post]
func (h *FlightRequestHandler) Approve(c echo.Context) error {
	return h.review(c, (*service.FlightRequests).Approve)
}

// Reject marks a request rejected. Reviewers only.
//
// @Summary      Reject a flight request
// @Tags         flight-requests
// @Produce      json
// @Param        id   path      int  true  "Request ID"
// @Success      200  {object}  service.FlightRequestView
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      502  {object}  ErrorResponse
// @Router       /api/v1/flight-requests/{id}/reject [post]
func (h *FlightRequestHandler) Reject(c echo.Context) error {
	return h.review(c, (*service.FlightRequests).Reject)
}

type reviewFunc func(*service.FlightRequests, context.Context, int64) error

func (h *FlightRequestHandler) review(c echo.Context, apply reviewFunc) error {
	id, err := int64Param(c, "id")
	if err != nil {
		return err
	}
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	if err := apply(ws.Requests, c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ws.Requests.View())
}
