package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"smartentrance/internal/api/controllers"
	"smartentrance/internal/api/middleware"
	"smartentrance/internal/api/registry"
	"smartentrance/internal/api/validator"
	"smartentrance/internal/apiclient"
	"smartentrance/internal/selection"
	"smartentrance/internal/views"
)

// DashboardHandler serves one dashboard flavor.
type DashboardHandler struct {
	flavor   views.Flavor
	registry *registry.Registry
}

func NewDashboardHandler(flavor views.Flavor, r *registry.Registry) *DashboardHandler {
	return &DashboardHandler{flavor: flavor, registry: r}
}

// MenuItem is a localized sidebar entry.
type MenuItem struct {
	views.MenuEntry
	Label string `json:"label"`
}

// Page is the view model of a dashboard view.
type Page struct {
	Flavor   views.Flavor          `json:"flavor"`
	View     views.View            `json:"view"`
	Scope    selection.Envelope    `json:"scope"`
	Menu     []MenuItem            `json:"menu"`
	Sections []controllers.Section `json:"sections"`
	Period   string                `json:"period,omitempty"`

	// NeedsHome is set when the view shows scope-bound data but no fitting home is selected.
	NeedsHome bool `json:"needsHome"`
}

// Root sends the bare dashboard path to its default view.
func (h *DashboardHandler) Root(c echo.Context) error {
	return c.Redirect(http.StatusFound, h.flavor.Path(views.Default))
}

// Show renders a dashboard view. Views outside the flavor's set redirect to the
// overview; a missing scope still renders, with a reduced menu and empty sections.
// @Summary Dashboard view
// @Description View model of one dashboard view: menu, scope and section data
// @Tags dashboard
// @Produce json
// @Param view path string true "View name"
// @Param period query string false "YYYY-MM"
// @Success 200 {object} Page
// @Success 302 "Unknown view, redirected to overview"
// @Router /dashboard/{view} [get]
// @Router /admin/dashboard/{view} [get]
func (h *DashboardHandler) Show(c echo.Context) error {
	view, ok := views.Resolve(h.flavor, c.Param("view"))
	if !ok {
		return c.Redirect(http.StatusFound, h.flavor.Path(view))
	}

	period := c.QueryParam("period")
	if err := c.Validate(&validator.SectionQuery{Flavor: string(h.flavor), Period: period}); err != nil {
		return err
	}

	store := middleware.GetSelection(c)
	ticket := store.Begin("page:" + string(h.flavor))
	scope := store.Scope()
	printer := middleware.GetPrinter(c)

	sections := h.registry.LoadView(c.Request().Context(), middleware.GetServices(c), controllers.Query{
		Flavor: h.flavor,
		Scope:  scope,
		Period: period,
	}, view, printer)

	if middleware.SessionExpired(c) {
		return apiclient.ErrUnauthorized
	}
	if !ticket.Current() {
		return controllers.Superseded(c)
	}

	entries := views.Menu(h.flavor, scope, view)
	menu := make([]MenuItem, 0, len(entries))
	for _, e := range entries {
		menu = append(menu, MenuItem{MenuEntry: e, Label: printer.T(e.LabelKey)})
	}

	return c.JSON(http.StatusOK, Page{
		Flavor:   h.flavor,
		View:     view,
		Scope:    selection.ToEnvelope(scope),
		Menu:     menu,
		Sections: sections,
		Period:   period,

		NeedsHome: views.NeedsScope(view) && !h.flavor.Accepts(scope),
	})
}
