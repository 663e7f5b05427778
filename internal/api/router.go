package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/udla/user-directory/internal/api/handler"
	"github.com/udla/user-directory/internal/api/middleware"
	"github.com/udla/user-directory/internal/core/ports"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Auth         ports.AuthService
	Registration ports.RegistrationService
	Directory    ports.DirectoryService
	Flags        ports.FeatureFlags
	Health       []handler.Dependency
	Log          zerolog.Logger
	// Registerer receives the HTTP request metrics. Nil means a private
	// registry, which keeps repeated router construction in tests legal.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(d.Log))
	reg := d.Registerer
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "users_http",
		Registerer: reg,
	}))

	authHandler := handler.NewAuthHandler(d.Auth, d.Registration, d.Flags)
	userHandler := handler.NewUserHandler(d.Directory)
	flagsHandler := handler.NewFlagsHandler(d.Flags)
	healthHandler := handler.NewHealthHandler(d.Health...)

	authenticated := middleware.Auth(d.Auth)
	adminOnly := middleware.RequireAdmin()

	// --- Public routes ---
	e.POST("/login", authHandler.Login)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Admin routes ---
	admin := e.Group("", authenticated, adminOnly)
	admin.POST("/register", authHandler.Register)
	admin.GET("/users", userHandler.List)
	admin.GET("/users/:username", userHandler.Get)
	admin.PATCH("/users/:username", userHandler.Update)
	admin.DELETE("/users/:username", userHandler.Delete)
	admin.GET("/flags/status", flagsHandler.Status)
	admin.GET("/flags/:key", flagsHandler.Evaluate)

	return e
}

// requestLogger writes one zerolog event per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
