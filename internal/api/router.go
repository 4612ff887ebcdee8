package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/p3biosecurity/portal/docs" // Swagger docs
	"github.com/p3biosecurity/portal/internal/api/handler"
	"github.com/p3biosecurity/portal/internal/api/middleware"
	"github.com/p3biosecurity/portal/internal/core/domain"
)

const metricsSubsystem = "portal_http"

// Dependencies are the collaborators the router wires into handlers.
type Dependencies struct {
	Log    zerolog.Logger
	Portal *handler.PortalHandler
	// Accounts is nil when the accounts backend runs elsewhere.
	Accounts  *handler.AccountHandler
	JWTSecret string
	Scope     middleware.ScopeConfig
	Health    map[string]handler.Pinger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddleware(metricsSubsystem))

	// --- Portal shell ---
	portal := e.Group("/portal", middleware.Scope(deps.Scope))
	portal.GET("/view", deps.Portal.View)
	portal.GET("/screen", deps.Portal.Screen)
	portal.POST("/login", deps.Portal.Login)
	portal.POST("/register", deps.Portal.Register)
	portal.POST("/logout", deps.Portal.Logout)

	// --- Accounts backend ---
	if deps.Accounts != nil {
		e.POST("/auth/register", deps.Accounts.Register)
		e.POST("/auth/login", deps.Accounts.Login)

		authed := e.Group("/auth", middleware.Auth(deps.JWTSecret))
		authed.GET("/me", deps.Accounts.Me)
		authed.GET("/accounts", deps.Accounts.List, middleware.RBAC(domain.RoleAdmin))
	}

	// --- Health probes (no auth required) ---
	health := handler.NewHealthHandler(deps.Health)
	e.GET("/health", health.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", health.Readiness) // readiness – are dependencies up?

	// --- Ops ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
