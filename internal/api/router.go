package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/vytalle/storefront/internal/api/handler"
	"github.com/vytalle/storefront/internal/api/middleware"
	"github.com/vytalle/storefront/internal/core/ports"
	"github.com/vytalle/storefront/internal/core/resilience"
	"github.com/vytalle/storefront/internal/core/service"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Log      zerolog.Logger
	Engine   *resilience.Engine
	Sessions *service.SessionAuthority
	Stores   ports.SessionScoper
	Products *service.ProductAccess
	// Checks feed the readiness probe, keyed by dependency name.
	Checks        map[string]handler.Check
	SecureCookies bool
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
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(middleware.Metrics())

	// --- Health, metrics and docs (no session) ---
	health := handler.NewHealthHandler(d.Engine, d.Checks)
	e.GET("/health", health.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", health.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	session := middleware.Session(d.Sessions, d.Stores, d.Products)

	// --- Auth routes ---
	auth := handler.NewAuthHandler(d.Engine, d.SecureCookies)
	ag := e.Group("/auth", session)
	ag.POST("/login", auth.Login)
	ag.POST("/logout", auth.Logout)
	ag.GET("/session", auth.Session)

	// --- Catalog ---
	products := handler.NewProductHandler()
	v1 := e.Group("/v1", session)
	v1.GET("/products", products.List)
	v1.GET("/products/:slug", products.GetBySlug)
	v1.POST("/admin/cache/clear", products.ClearCache, middleware.RequireAdmin())

	return e
}
