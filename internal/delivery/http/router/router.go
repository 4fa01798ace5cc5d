// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"gymid/config"
	"gymid/internal/delivery/http/middleware"
	"gymid/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	Config         *config.Config
	UserHandler    *handler.UserHandler
	AuthHandler    *handler.AuthHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	cfg            *config.Config
	userHandler    *handler.UserHandler
	authHandler    *handler.AuthHandler
	authMiddleware *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		cfg:            params.Config,
		userHandler:    params.UserHandler,
		authHandler:    params.AuthHandler,
		authMiddleware: params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	api := e.Group(r.cfg.HTTP.APIPrefix)

	// Auth routes
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/token", r.authHandler.Token)
	}

	// User routes
	userGroup := api.Group("/users")
	{
		userGroup.POST("", r.userHandler.Register)
		userGroup.GET("", r.userHandler.ListUsers)
		// The static /me route must sit behind authentication and is
		// registered before the /:id parameter route.
		userGroup.GET("/me", r.userHandler.Me, r.authMiddleware.Authenticate)
		userGroup.GET("/:id", r.userHandler.GetUser)
	}
}
