package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/civichub/society-api/docs"
	"github.com/civichub/society-api/internal/api/handler"
	"github.com/civichub/society-api/internal/api/middleware"
	"github.com/civichub/society-api/internal/core/domain"
	"github.com/civichub/society-api/internal/core/ports"
	"github.com/civichub/society-api/internal/infrastructure/http/handlers"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Log           zerolog.Logger
	Guard         ports.AccessGuard
	Auth          ports.AuthService
	Complaints    ports.ComplaintService
	Notifications ports.NotificationService
	// AuthLimiter throttles /auth routes per client IP. Nil disables it.
	AuthLimiter *middleware.RateLimiter
	Readiness   []handlers.Dependency
}

// NewRouter builds and returns the Echo instance with all routes registered.
//
// @title                       Society API
// @version                     1.0
// @description                 Residents raise complaints; administrators triage them.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
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

	authHandler := handler.NewAuthHandler(d.Auth)
	complaintHandler := handler.NewComplaintHandler(d.Complaints)
	notificationHandler := handler.NewNotificationHandler(d.Notifications)

	authenticated := middleware.Auth(d.Guard)
	residentOnly := middleware.RequireRole(d.Guard, domain.RoleResident)
	adminOnly := middleware.RequireRole(d.Guard, domain.RoleAdmin)

	// --- Auth routes ---
	auth := e.Group("/auth")
	if d.AuthLimiter != nil {
		auth.Use(d.AuthLimiter.Middleware())
	}
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// --- Complaints ---
	complaints := e.Group("/complaints", authenticated)
	complaints.POST("", complaintHandler.Submit, residentOnly)
	complaints.GET("/my", complaintHandler.ListOwn, residentOnly)
	complaints.GET("/all", complaintHandler.ListAll, adminOnly)
	complaints.PUT("/:id/status", complaintHandler.UpdateStatus, adminOnly)

	// --- Notifications (any authenticated role) ---
	notifications := e.Group("/notifications", authenticated)
	notifications.GET("", notificationHandler.List)
	notifications.PATCH("/:id/read", notificationHandler.MarkRead)
	notifications.POST("/read-all", notificationHandler.MarkAllRead)

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.Readiness...)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	// --- Operations ---
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
