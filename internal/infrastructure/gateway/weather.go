package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/zhangir128/UAV/internal/core/domain"
	"github.com/zhangir128/UAV/internal/core/ports"
)

// Weather fetches current conditions from a weatherapi.com compatible service
// for a fixed reference location. Calls carry no session credential.
type Weather struct {
	c      *Client
	apiKey string
	lat    float64
	lng    float64
}

// NewWeather wraps c as a weather gateway for the given reference location.
func NewWeather(c *Client, apiKey string, lat, lng float64) *Weather {
	return &Weather{c: c, apiKey: apiKey, lat: lat, lng: lng}
}

var _ ports.WeatherGateway = (*Weather)(nil)

type currentResponse struct {
	Current *struct {
		TempC            float64 `json:"temp_c"`
		WindKph          float64 `json:"wind_kph"`
		WindDegree       float64 `json:"wind_degree"`
		VisKm            float64 `json:"vis_km"`
		LastUpdatedEpoch int64   `json:"last_updated_epoch"`
	} `json:"current"`
}

// Current returns the latest conditions. Wind speed is converted from km/h to m/s.
func (g *Weather) Current(ctx context.Context) (*domain.WeatherSnapshot, error) {
	q := url.Values{}
	q.Set("key", g.apiKey)
	q.Set("q", strconv.FormatFloat(g.lat, 'f', -1, 64)+","+strconv.FormatFloat(g.lng, 'f', -1, 64))
	q.Set("aqi", "no")

	var resp currentResponse
	if err := g.c.do(ctx, "current", http.MethodGet, "/current.json", q, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Current == nil {
		return nil, &domain.DecodeError{Op: "weather.current", Err: errors.New("missing current conditions")}
	}

	observed := time.Now().UTC()
	if resp.Current.LastUpdatedEpoch > 0 {
		observed = time.Unix(resp.Current.LastUpdatedEpoch, 0).UTC()
	}
	return &domain.WeatherSnapshot{
		Temperature:   resp.Current.TempC,
		WindSpeed:     resp.Current.WindKph / 3.6,
		WindDirection: resp.Current.WindDegree,
		Visibility:    resp.Current.VisKm,
		ObservedAt:    observed,
	}, nil
}
