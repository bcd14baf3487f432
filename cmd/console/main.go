// @title        Drone Console API
// @version      1.0
// @description  Backend for the drone flight console: sessions, flight requests, live monitoring and restricted zones.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/zhangir128/UAV/internal/api"
	"github.com/zhangir128/UAV/internal/api/handler"
	"github.com/zhangir128/UAV/internal/api/middleware"
	"github.com/zhangir128/UAV/internal/core/ports"
	"github.com/zhangir128/UAV/internal/core/service"
	"github.com/zhangir128/UAV/internal/infrastructure/db/memory"
	mongodb "github.com/zhangir128/UAV/internal/infrastructure/db/mongo"
	redisdb "github.com/zhangir128/UAV/internal/infrastructure/db/redis"
	"github.com/zhangir128/UAV/internal/infrastructure/gateway"
	"github.com/zhangir128/UAV/internal/infrastructure/schedule"
	"github.com/zhangir128/UAV/internal/pkg/config"
	"github.com/zhangir128/UAV/pkg/logger"
)

const janitorInterval = time.Minute

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Init(logger.Options{})
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Development(),
		Service: "drone-console",
	})

	store, closeStore, err := openSessionStore(ctx, cfg, logger.Component("session_store"))
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Session.Backend).Msg("failed to open session store")
	}
	defer closeStore()

	gwLog := logger.Component("gateway")
	httpClient := &http.Client{Timeout: cfg.Upstream.Timeout}
	upstream := []gateway.Option{
		gateway.WithTokenSource(service.SessionTokens),
		gateway.WithTunnelBypass(cfg.Upstream.TunnelBypass),
		gateway.WithHTTPClient(httpClient),
		gateway.WithLogger(gwLog),
	}
	identityClient := gateway.NewClient("identity", cfg.Upstream.IdentityURL, upstream...)
	registryClient := gateway.NewClient("drones", cfg.Upstream.DroneRegistryURL, upstream...)
	controlClient := gateway.NewClient("control", cfg.Upstream.DroneControlURL, upstream...)
	zonesClient := gateway.NewClient("zones", cfg.Upstream.ZoneRegistryURL, upstream...)
	weatherClient := gateway.NewClient("weather", cfg.Weather.URL,
		gateway.WithTunnelBypass(false),
		gateway.WithHTTPClient(httpClient),
		gateway.WithLogger(gwLog),
	)

	gws := service.Gateways{
		Identity: gateway.NewIdentity(identityClient),
		Drones:   gateway.NewDrones(registryClient, controlClient),
		Zones:    gateway.NewZones(zonesClient),
		Weather:  gateway.NewWeather(weatherClient, cfg.Weather.APIKey, cfg.Weather.Lat, cfg.Weather.Lng),
	}

	sched := schedule.New(logger.Component("scheduler"))
	defer sched.Shutdown()

	svcLog := logger.Component("service")
	workspaces := service.NewWorkspaces(store, gws, sched, service.WorkspaceConfig{
		Monitor: service.MonitorConfig{
			Interval:     cfg.Monitor.Interval,
			ZoneInterval: cfg.Monitor.ZoneInterval,
		},
		FleetInterval: cfg.Monitor.FleetInterval,
		IdleTimeout:   cfg.Session.IdleTimeout,
	}, svcLog)
	defer workspaces.Shutdown()

	sched.Every(ctx, "workspaces:evict-idle", janitorInterval, workspaces.EvictIdle)

	e := api.NewRouter(api.Dependencies{
		Log: logger.Component("http"),
		Session: middleware.SessionOptions{
			Secret:     cfg.Session.Secret,
			CookieName: cfg.Session.CookieName,
			TTL:        cfg.Session.TTL,
			Secure:     !cfg.Development(),
		},
		Workspaces: workspaces,
		Auth:       service.NewAuthService(gws.Identity, svcLog),
		Drones:     service.NewDroneService(gws.Drones, svcLog),
		Zones:      service.NewZoneService(gws.Zones, svcLog),
		Weather:    gws.Weather,
		Ready: map[string]handler.Pinger{
			"session_store":  store,
			"identity":       identityClient,
			"drone_registry": registryClient,
			"drone_control":  controlClient,
			"zone_registry":  zonesClient,
		},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
		// Request contexts end with the process so open event streams close on shutdown.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("session_backend", cfg.Session.Backend).Msg("console listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}
	log.Info().Msg("shutdown complete")
}

// openSessionStore connects the configured session backend. The returned
// func releases its connection.
func openSessionStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.SessionStore, func(), error) {
	switch cfg.Session.Backend {
	case "mongo":
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, nil, err
		}
		store := mongodb.NewSessionStore(db, cfg.Session.TTL)
		if err := store.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("session ttl index not created")
		}
		return store, func() { _ = client.Disconnect(context.Background()) }, nil
	case "memory":
		log.Warn().Msg("sessions are kept in memory and lost on restart")
		return memory.NewSessionStore(), func() {}, nil
	default:
		client, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		return redisdb.NewSessionStore(client, cfg.Session.TTL), func() { _ = client.Close() }, nil
	}
}
