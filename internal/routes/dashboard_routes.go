package routes

import (
	"github.com/labstack/echo/v4"

	"smartentrance/internal/api/middleware"
	"smartentrance/internal/handlers"
	"smartentrance/internal/views"
)

// SetupDashboardRoutes mounts both dashboards. Either flavor is reachable by any signed
// in user; the backend decides what data they get.
func SetupDashboardRoutes(e *echo.Echo, deps Dependencies) {
	for _, flavor := range []views.Flavor{views.Resident, views.Manager} {
		h := handlers.NewDashboardHandler(flavor, deps.Registry)

		g := e.Group(flavor.BasePath())
		g.Use(middleware.RequireSession())
		g.GET("", h.Root)
		g.GET("/", h.Root)
		g.GET("/:view", h.Show)
	}
}
