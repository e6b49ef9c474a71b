package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/cargo-tracking/docs"
	"github.com/99minutos/cargo-tracking/internal/api/handler"
	"github.com/99minutos/cargo-tracking/internal/api/middleware"
	"github.com/99minutos/cargo-tracking/internal/core/domain"
)

// TrackingRoutes are the handlers served by tracking-api.
type TrackingRoutes struct {
	Tracking  *handler.TrackingHandler
	Hub       *handler.HubHandler
	Health    *handler.HealthHandler
	JWTSecret string
}

// ShipmentRoutes are the handlers served by shipment-api.
type ShipmentRoutes struct {
	Shipments *handler.ShipmentHandler
	Auth      *handler.AuthHandler
	Health    *handler.HealthHandler
	JWTSecret string
}

// NotificationRoutes are the handlers served by notification-api.
type NotificationRoutes struct {
	Hub       *handler.HubHandler
	Health    *handler.HealthHandler
	JWTSecret string
}

// NewTrackingRouter builds the Echo instance for location ingest and the
// tracking hub.
func NewTrackingRouter(r TrackingRoutes, log zerolog.Logger) *echo.Echo {
	e := newEcho("tracking_api", r.Health, log)

	t := e.Group("/tracking")
	t.POST("/update-location", r.Tracking.UpdateLocation)
	t.POST("/history", r.Tracking.RecordHistory)
	t.GET("/:shipmentId/history", r.Tracking.History)
	t.GET("/:shipmentId/last-location", r.Tracking.LastLocation)

	e.GET("/hubs/tracking", r.Hub.Connect, middleware.OptionalAuth(r.JWTSecret))
	return e
}

// NewShipmentRouter builds the Echo instance for shipment records and auth.
func NewShipmentRouter(r ShipmentRoutes, log zerolog.Logger) *echo.Echo {
	e := newEcho("shipment_api", r.Health, log)

	// --- Auth routes ---
	e.POST("/auth/register", r.Auth.Register)
	e.POST("/auth/login", r.Auth.Login)

	// --- Shipment routes ---
	s := e.Group("/shipments")
	s.POST("", r.Shipments.Create, middleware.Auth(r.JWTSecret), middleware.RequireRole(domain.RoleAdmin))
	s.POST("/status-history", r.Shipments.AddStatusHistory)
	s.GET("/:id", r.Shipments.Get)
	s.PUT("/:id/status", r.Shipments.UpdateStatus)
	s.GET("/:id/status-history", r.Shipments.StatusHistory)
	s.POST("/:id/locations", r.Shipments.RecordLocation)
	s.GET("/:id/delivered", r.Shipments.IsDelivered)
	return e
}

// NewNotificationRouter builds the Echo instance for the notification hub.
func NewNotificationRouter(r NotificationRoutes, log zerolog.Logger) *echo.Echo {
	e := newEcho("notification_api", r.Health, log)
	e.GET("/hubs/notifications", r.Hub.Connect, middleware.OptionalAuth(r.JWTSecret))
	return e
}

// newEcho registers the middleware and operational routes shared by every
// service.
func newEcho(subsystem string, health *handler.HealthHandler, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware(subsystem))

	// --- Operational routes (no auth required) ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)

	return e
}
