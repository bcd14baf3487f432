package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/zhangir128/UAV/docs"
	"github.com/zhangir128/UAV/internal/api/handler"
	"github.com/zhangir128/UAV/internal/api/middleware"
	"github.com/zhangir128/UAV/internal/core/domain"
	"github.com/zhangir128/UAV/internal/core/ports"
	"github.com/zhangir128/UAV/internal/core/service"
)

// Dependencies is everything the router wires into handlers.
type Dependencies struct {
	Log        zerolog.Logger
	Session    middleware.SessionOptions
	Workspaces *service.Workspaces
	Auth       *service.AuthService
	Drones     *service.DroneService
	Zones      *service.ZoneService
	Weather    ports.WeatherGateway
	// Ready lists what /health/ready pings, by name.
	Ready map[string]handler.Pinger
	// Metrics receives the HTTP metrics. Nil means the default registry.
	Metrics *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Metrics != nil {
		registerer, gatherer = deps.Metrics, deps.Metrics
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "console",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Operational endpoints (no session) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewReadinessHandler(deps.Ready).Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	session := middleware.Session(deps.Session, deps.Workspaces)
	signedIn := middleware.RBAC()
	operator := middleware.RBAC(domain.RoleOperator)
	reviewer := middleware.RBAC(domain.RoleReviewer)

	// --- Pages ---
	pageHandler := handler.NewPageHandler(deps.Drones, deps.Zones)
	pages := e.Group("", session, middleware.PageGate())
	pages.GET(domain.RouteEntry, pageHandler.Public)
	pages.GET(domain.RouteLogin, pageHandler.Public)
	pages.GET(domain.RouteRegister, pageHandler.Public)
	pages.GET(domain.RouteOperatorHome, pageHandler.OperatorHome)
	pages.GET(domain.RouteOperatorHome+"/:droneId", pageHandler.DroneMonitor)
	pages.GET(domain.RouteReviewerHome, pageHandler.ReviewerHome)
	pages.GET(domain.RouteFleetMonitor, pageHandler.FleetMonitor)

	// --- API ---
	v1 := e.Group("/api/v1", session)

	sessionHandler := handler.NewSessionHandler(deps.Auth, deps.Log)
	v1.GET("/session", sessionHandler.Current)
	v1.POST("/session/login", sessionHandler.Login)
	v1.POST("/session/logout", sessionHandler.Logout)
	v1.POST("/session/register", sessionHandler.Register)

	droneHandler := handler.NewDroneHandler(deps.Drones)
	v1.GET("/drones", droneHandler.List, signedIn)
	v1.POST("/drones", droneHandler.Register, operator)

	requestHandler := handler.NewFlightRequestHandler()
	v1.GET("/flight-requests", requestHandler.List, signedIn)
	v1.POST("/flight-requests", requestHandler.Submit, operator)
	v1.POST("/flight-requests/:id/approve", requestHandler.Approve, reviewer)
	v1.POST("/flight-requests/:id/reject", requestHandler.Reject, reviewer)

	monitorHandler := handler.NewMonitorHandler()
	v1.POST("/monitors/:droneId", monitorHandler.Open, signedIn)
	v1.GET("/monitors/:droneId", monitorHandler.Snapshot, signedIn)
	v1.GET("/monitors/:droneId/stream", monitorHandler.Stream, signedIn)
	v1.POST("/monitors/:droneId/start", monitorHandler.MoveToStart, signedIn)
	v1.POST("/monitors/:droneId/move", monitorHandler.MoveTo, signedIn)
	v1.DELETE("/monitors/:droneId", monitorHandler.Close, signedIn)

	v1.GET("/fleet", monitorHandler.Fleet, reviewer)
	v1.GET("/fleet/stream", monitorHandler.FleetStream, reviewer)
	v1.DELETE("/fleet", monitorHandler.CloseFleet, reviewer)

	zoneHandler := handler.NewZoneHandler(deps.Zones)
	v1.GET("/zones", zoneHandler.List, signedIn)
	v1.POST("/zones", zoneHandler.Create, reviewer)

	v1.GET("/weather", handler.NewWeatherHandler(deps.Weather).Current, signedIn)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil {
				evt = log.Warn().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
