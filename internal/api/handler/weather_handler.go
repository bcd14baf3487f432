package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zhangir128/UAV/internal/core/ports"
)

type WeatherHandler struct {
	weather ports.WeatherGateway
}

func NewWeatherHandler(weather ports.WeatherGateway) *WeatherHandler {
	return &WeatherHandler{weather: weather}
}

// Current returns current conditions at the configured location.
//
// @Summary      Current weather
// @Tags         weather
// @Produce      json
// @Success      200  {object}  domain.WeatherSnapshot
// @Failure      502  {object}  ErrorResponse
// @Router       /api/v1/weather [get]
func (h *WeatherHandler) Current(c echo.Context) error {
	snap, err := h.weather.Current(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snap)
}
