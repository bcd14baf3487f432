package domain

import "time"

// WeatherSnapshot is the current conditions at the reference location.
// WindSpeed is m/s, WindDirection degrees, Visibility km, Temperature Celsius.
type WeatherSnapshot struct {
	Temperature   float64   `json:"temperature"`
	WindSpeed     float64   `json:"wind_speed"`
	WindDirection float64   `json:"wind_direction"`
	Visibility    float64   `json:"visibility"`
	ObservedAt    time.Time `json:"observed_at"`
}
