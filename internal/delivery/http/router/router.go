// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"pulse/internal/delivery/http/middleware"
	"pulse/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	UserHandler         *handler.UserHandler
	BusinessHandler     *handler.BusinessHandler
	NotificationHandler *handler.NotificationHandler
	PreferenceHandler   *handler.PreferenceHandler
	AuthMiddleware      *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	userHandler         *handler.UserHandler
	businessHandler     *handler.BusinessHandler
	notificationHandler *handler.NotificationHandler
	preferenceHandler   *handler.PreferenceHandler
	authMiddleware      *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		userHandler:         params.UserHandler,
		businessHandler:     params.BusinessHandler,
		notificationHandler: params.NotificationHandler,
		preferenceHandler:   params.PreferenceHandler,
		authMiddleware:      params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Auth routes
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/register", r.userHandler.Register)
		authGroup.POST("/login", r.userHandler.Login)
	}

	// User routes that require authentication
	userGroup := e.Group("/user")
	userGroup.Use(r.authMiddleware.Authenticate)
	{
		userGroup.GET("/profile", r.userHandler.GetProfile)
		userGroup.GET("/notifications", r.notificationHandler.List)
		userGroup.GET("/preference", r.preferenceHandler.Get)
		userGroup.PUT("/preference", r.preferenceHandler.Update)
	}

	// Business and review routes
	businessGroup := e.Group("/businesses")
	businessGroup.Use(r.authMiddleware.Authenticate)
	{
		businessGroup.POST("", r.businessHandler.Create)
		businessGroup.GET("", r.businessHandler.List)
		businessGroup.GET("/:id", r.businessHandler.Get)
		businessGroup.PATCH("/:id", r.businessHandler.Update)
		businessGroup.POST("/:id/listings", r.businessHandler.AddListing)
		businessGroup.POST("/:id/platforms/:platform/ingest", r.businessHandler.TriggerIngest)
		businessGroup.GET("/:id/reviews", r.businessHandler.ListReviews)
	}

	reviewGroup := e.Group("/reviews")
	reviewGroup.Use(r.authMiddleware.Authenticate)
	{
		reviewGroup.GET("/:id", r.businessHandler.GetReview)
		reviewGroup.POST("/:id/reclassify", r.businessHandler.ReclassifyReview)
	}
}
