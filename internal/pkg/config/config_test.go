package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func required() map[string]string {
	return map[string]string{
		"SESSION_SECRET":     "s3cret",
		"IDENTITY_URL":       "http://identity",
		"DRONE_REGISTRY_URL": "http://registry",
		"DRONE_CONTROL_URL":  "http://control",
		"ZONE_REGISTRY_URL":  "http://zones",
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(required()))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.Session.Backend != "redis" || cfg.Session.TTL != 24*time.Hour {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Monitor.Interval != time.Minute || cfg.Monitor.FleetInterval != 2*time.Second {
		t.Fatalf("unexpected monitor defaults %+v", cfg.Monitor)
	}
	if !cfg.Upstream.TunnelBypass {
		t.Fatal("expected tunnel bypass on by default")
	}
	if cfg.Weather.Lat != 51.1694 || cfg.Weather.Lng != 71.4491 {
		t.Fatalf("unexpected reference location %+v", cfg.Weather)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	env := required()
	delete(env, "SESSION_SECRET")
	if _, err := load(context.Background(), envconfig.MapLookuper(env)); err == nil {
		t.Fatal("expected error for missing SESSION_SECRET")
	}
}

func TestLoad_UnknownBackend(t *testing.T) {
	env := required()
	env["SESSION_BACKEND"] = "etcd"
	if _, err := load(context.Background(), envconfig.MapLookuper(env)); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
