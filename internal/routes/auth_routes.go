package routes

import (
	"github.com/labstack/echo/v4"

	"smartentrance/internal/config"
	"smartentrance/internal/handlers"
)

func SetupAuthRoutes(e *echo.Echo, cfg *config.Config, deps Dependencies) {
	authHandler := handlers.NewAuthHandler(handlers.AuthOptions{
		Sessions:      deps.Sessions,
		Backend:       deps.Backend,
		Limiter:       deps.Limiter,
		Session:       cfg.Session,
		SecureCookies: cfg.Server.SecureCookies,
	})

	e.GET("/login", authHandler.LoginPage)

	// Public auth routes (no session required)
	auth := e.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/register", authHandler.Register)
	auth.POST("/logout", authHandler.Logout)
}
