// Package config loads the console configuration from environment variables.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Session  SessionConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Upstream UpstreamConfig
	Weather  WeatherConfig
	Monitor  MonitorConfig
}

type SessionConfig struct {
	// Secret signs the session cookie.
	Secret      string        `env:"SESSION_SECRET, required"`
	CookieName  string        `env:"SESSION_COOKIE, default=console_session"`
	TTL         time.Duration `env:"SESSION_TTL,    default=24h"`
	Backend     string        `env:"SESSION_BACKEND, default=redis"`
	IdleTimeout time.Duration `env:"WORKSPACE_IDLE_TIMEOUT, default=30m"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=drone_console"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// UpstreamConfig locates the remote services.
type UpstreamConfig struct {
	IdentityURL      string        `env:"IDENTITY_URL,       required"`
	DroneRegistryURL string        `env:"DRONE_REGISTRY_URL, required"`
	DroneControlURL  string        `env:"DRONE_CONTROL_URL,  required"`
	ZoneRegistryURL  string        `env:"ZONE_REGISTRY_URL,  required"`
	TunnelBypass     bool          `env:"TUNNEL_BYPASS,      default=true"`
	Timeout          time.Duration `env:"UPSTREAM_TIMEOUT,   default=10s"`
}

type WeatherConfig struct {
	URL    string  `env:"WEATHER_URL,     default=https://api.weatherapi.com/v1"`
	APIKey string  `env:"WEATHER_API_KEY"`
	Lat    float64 `env:"WEATHER_LAT,     default=51.1694"`
	Lng    float64 `env:"WEATHER_LNG,     default=71.4491"`
}

type MonitorConfig struct {
	Interval      time.Duration `env:"MONITOR_INTERVAL,       default=60s"`
	ZoneInterval  time.Duration `env:"MONITOR_ZONE_INTERVAL,  default=60s"`
	FleetInterval time.Duration `env:"MONITOR_FLEET_INTERVAL, default=2s"`
}

// Development reports whether the console runs in development mode.
func (c *Config) Development() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	switch cfg.Session.Backend {
	case "redis", "mongo", "memory":
	default:
		return nil, fmt.Errorf("config: unknown SESSION_BACKEND %q", cfg.Session.Backend)
	}
	return &cfg, nil
}
