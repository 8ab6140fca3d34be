package routes

import (
	"github.com/labstack/echo/v4"

	"smartentrance/internal/api/middleware"
	"smartentrance/internal/api/registry"
	"smartentrance/internal/handlers"
	"smartentrance/internal/utils/logger"
)

// SetupAppRoutes mounts the calls the dashboard pages make.
func SetupAppRoutes(e *echo.Echo, deps Dependencies) {
	log := logger.New("app_routes")

	app := e.Group("/app")
	app.Use(middleware.RequireSession())

	selectionHandler := handlers.NewSelectionHandler()
	app.GET("/selection", selectionHandler.Get)
	app.POST("/selection/building", selectionHandler.SelectBuilding)
	app.POST("/selection/unit", selectionHandler.SelectUnit)
	app.DELETE("/selection", selectionHandler.Clear)

	homesHandler := handlers.NewHomesHandler(deps.Registry)
	app.GET("/homes", homesHandler.List)
	app.POST("/buildings", homesHandler.CreateBuilding)

	registry.RegisterSectionRoutes(app, deps.Registry)

	paymentHandler := handlers.NewPaymentHandler()
	app.POST("/payments", paymentHandler.Record)
	app.POST("/payments/card/intent", paymentHandler.CardIntent)
	app.POST("/payments/card/result", paymentHandler.CardResult)

	community := handlers.NewCommunityHandler()
	app.POST("/units", community.CreateUnit)
	app.PUT("/units/:id/fee", community.UpdateFee)
	app.POST("/polls", community.CreatePoll)
	app.POST("/polls/:id/votes", community.Vote)
	app.POST("/notices", community.CreateNotice)
	app.POST("/invitations", community.CreateInvitation)
	app.POST("/invitations/accept", community.AcceptInvitation)

	uploadHandler := handlers.NewUploadHandler()
	app.POST("/documents", uploadHandler.UploadDocument)

	log.Success("App routes initialized successfully")
}
