package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"smartentrance/internal/api/controllers"
	"smartentrance/internal/api/middleware"
	"smartentrance/internal/api/registry"
	"smartentrance/internal/apiclient"
	"smartentrance/internal/selection"
	"smartentrance/internal/services"
	"smartentrance/internal/utils/logger"
	"smartentrance/internal/views"
)

type HomesHandler struct {
	registry *registry.Registry
	log      *logger.Logger
}

func NewHomesHandler(r *registry.Registry) *HomesHandler {
	return &HomesHandler{registry: r, log: logger.New("HomesHandler")}
}

// List returns the buildings the user manages and the units they live in
// @Summary My homes
// @Tags homes
// @Produce json
// @Success 200 {array} controllers.Section
// @Router /app/homes [get]
func (h *HomesHandler) List(c echo.Context) error {
	flavor := views.Resident
	if middleware.GetSession(c).IsManager() {
		flavor = views.Manager
	}

	sections := h.registry.LoadView(c.Request().Context(), middleware.GetServices(c), controllers.Query{
		Flavor: flavor,
		Scope:  middleware.CurrentScope(c),
	}, views.Homes, middleware.GetPrinter(c))

	if middleware.SessionExpired(c) {
		return apiclient.ErrUnauthorized
	}
	return c.JSON(http.StatusOK, sections)
}

// CreateBuilding registers a building and makes it the tab's scope
// @Summary Create building
// @Tags homes
// @Accept json
// @Produce json
// @Param request body services.CreateBuildingRequest true "Building"
// @Success 201 {object} models.Building
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Failure 409 {object} middleware.ErrorBody "Duplicate address"
// @Router /app/buildings [post]
func (h *HomesHandler) CreateBuilding(c echo.Context) error {
	var req services.CreateBuildingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	building, err := middleware.GetServices(c).Buildings.Create(ctx, req)
	if err != nil {
		return rejectedAs(c, err, "error.duplicate_building", []int{http.StatusConflict}, "already exists")
	}

	if err := middleware.GetSelection(c).SelectBuilding(ctx, *building); err != nil {
		h.log.Warn("Created building %d but could not select it: %v", building.ID, err)
	}
	return c.JSON(http.StatusCreated, building)
}

// scopeEnvelope is returned by mutations that change the scope.
func scopeEnvelope(c echo.Context) selection.Envelope {
	return selection.ToEnvelope(middleware.CurrentScope(c))
}
