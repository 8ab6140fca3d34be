package api

import (
	"net/http"

	_ "smartentrance/docs/swagger"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"smartentrance/internal/routes"
)

func (s *Server) registerRoutes() {
	s.echo.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, "/dashboard")
	})
	// Health check
	// @Summary Health check
	// @Description Check if the server and its stores are reachable
	// @Accept json
	// @Produce json
	// @Success 200 {object} map[string]interface{} "OK"
	// @Failure 503 {object} map[string]interface{} "A dependency is down"
	// @Router /health [get]
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	routes.SetupAuthRoutes(s.echo, s.config, s.deps)
	routes.SetupDashboardRoutes(s.echo, s.deps)
	routes.SetupAppRoutes(s.echo, s.deps)
}
