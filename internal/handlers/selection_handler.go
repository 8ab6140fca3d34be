package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"smartentrance/internal/api/middleware"
	"smartentrance/internal/api/validator"
	"smartentrance/internal/selection"
	"smartentrance/internal/utils/logger"
)

// SelectionHandler reads and switches the tab's scope. Selections are re-fetched from
// the backend so the stored building or unit is always the canonical record.
type SelectionHandler struct {
	log *logger.Logger
}

func NewSelectionHandler() *SelectionHandler {
	return &SelectionHandler{log: logger.New("SelectionHandler")}
}

// Get returns the tab's scope
// @Summary Current scope
// @Tags selection
// @Produce json
// @Success 200 {object} selection.Envelope
// @Router /app/selection [get]
func (h *SelectionHandler) Get(c echo.Context) error {
	return c.JSON(http.StatusOK, selection.ToEnvelope(middleware.CurrentScope(c)))
}

// SelectBuilding switches the tab to the manager perspective of a building
// @Summary Select building
// @Tags selection
// @Accept json
// @Produce json
// @Param request body validator.SelectBuildingRequest true "Building"
// @Success 200 {object} selection.Envelope
// @Router /app/selection/building [post]
func (h *SelectionHandler) SelectBuilding(c echo.Context) error {
	var req validator.SelectBuildingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	building, err := middleware.GetServices(c).Buildings.Get(ctx, req.BuildingID)
	if err != nil {
		return backendError(c, err)
	}

	store := middleware.GetSelection(c)
	if err := store.SelectBuilding(ctx, *building); err != nil {
		return h.log.Error("Failed to persist building selection", err)
	}
	return c.JSON(http.StatusOK, selection.ToEnvelope(store.Scope()))
}

// SelectUnit switches the tab to the resident perspective of one of the user's units
// @Summary Select unit
// @Tags selection
// @Accept json
// @Produce json
// @Param request body validator.SelectUnitRequest true "Unit"
// @Success 200 {object} selection.Envelope
// @Failure 404 {object} middleware.ErrorBody "Unit not linked to the account"
// @Router /app/selection/unit [post]
func (h *SelectionHandler) SelectUnit(c echo.Context) error {
	var req validator.SelectUnitRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	units, err := middleware.GetServices(c).Units.ListMine(ctx)
	if err != nil {
		return backendError(c, err)
	}

	for _, u := range units {
		if u.UnitID != req.UnitID {
			continue
		}
		store := middleware.GetSelection(c)
		if err := store.SelectUnit(ctx, u); err != nil {
			return h.log.Error("Failed to persist unit selection", err)
		}
		return c.JSON(http.StatusOK, selection.ToEnvelope(store.Scope()))
	}
	return middleware.Fail(c, http.StatusNotFound, "error.unknown_home")
}

// Clear resets the tab to no scope
// @Summary Clear scope
// @Tags selection
// @Success 204
// @Router /app/selection [delete]
func (h *SelectionHandler) Clear(c echo.Context) error {
	if err := middleware.GetSelection(c).Clear(c.Request().Context()); err != nil {
		return h.log.Error("Failed to clear selection", err)
	}
	return c.NoContent(http.StatusNoContent)
}
