package controllers

import (
	"context"
	"net/http"
	"reflect"

	"github.com/labstack/echo/v4"

	"smartentrance/internal/apiclient"
	"smartentrance/internal/api/middleware"
	"smartentrance/internal/api/validator"
	"smartentrance/internal/i18n"
	"smartentrance/internal/selection"
	"smartentrance/internal/services"
	"smartentrance/internal/views"
)

// State of one dashboard section.
type State string

const (
	StateOK    State = "ok"
	StateEmpty State = "empty"
	StateError State = "error"
)

// Section is what a dashboard renders for one data block.
type Section struct {
	Name  string `json:"name"`
	State State  `json:"state"`
	Items any    `json:"items,omitempty"`
	Error string `json:"error,omitempty"`
}

// Query is the context a section is loaded in.
type Query struct {
	Flavor views.Flavor
	Scope  selection.Scope
	Period string
}

// Fetcher loads a section's data. Returning a nil or empty value yields an empty
// section.
type Fetcher[T any] func(ctx context.Context, svc *services.Services, q Query) (T, error)

// Loader is a registered section.
type Loader interface {
	Name() string
	Load(ctx context.Context, svc *services.Services, q Query, p *i18n.Printer) Section
	List(c echo.Context) error
}

// SectionController loads one kind of section for either dashboard
type SectionController[T any] struct {
	name       string
	needsScope bool
	fetch      Fetcher[T]
}

// NewSectionController creates a section. When needsScope is set the section is empty
// unless the tab's scope is the variant the dashboard operates on.
func NewSectionController[T any](name string, needsScope bool, fetch Fetcher[T]) *SectionController[T] {
	return &SectionController[T]{
		name:       name,
		needsScope: needsScope,
		fetch:      fetch,
	}
}

func (c *SectionController[T]) Name() string {
	return c.name
}

// Load fetches the section. Failures stay inside the section so one broken block does
// not take down the page.
func (c *SectionController[T]) Load(ctx context.Context, svc *services.Services, q Query, p *i18n.Printer) Section {
	section := Section{Name: c.name, State: StateEmpty}
	if c.needsScope && !q.Flavor.Accepts(q.Scope) {
		return section
	}

	items, err := c.fetch(ctx, svc, q)
	if err != nil {
		section.State = StateError
		section.Error = p.T(middleware.MessageKey(err))
		return section
	}
	if isEmpty(items) {
		return section
	}

	section.State = StateOK
	section.Items = items
	return section
}

// List serves the section on its own
// @Summary Load a dashboard section
// @Description Loads one scope-driven section for the given dashboard flavor
// @Tags sections
// @Produce json
// @Param flavor query string true "resident or manager"
// @Param period query string false "YYYY-MM, payments only"
// @Success 200 {object} Section
// @Failure 409 {object} map[string]string "Superseded by a newer request"
// @Router /app/sections/{name} [get]
func (c *SectionController[T]) List(ctx echo.Context) error {
	var q validator.SectionQuery
	if err := ctx.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query "+err.Error())
	}
	if err := ctx.Validate(&q); err != nil {
		return err
	}

	store := middleware.GetSelection(ctx)
	ticket := store.Begin("section:" + c.name)

	section := c.Load(ctx.Request().Context(), middleware.GetServices(ctx), Query{
		Flavor: views.Flavor(q.Flavor),
		Scope:  store.Scope(),
		Period: q.Period,
	}, middleware.GetPrinter(ctx))

	if middleware.SessionExpired(ctx) {
		return apiclient.ErrUnauthorized
	}
	if !ticket.Current() {
		return Superseded(ctx)
	}
	return ctx.JSON(http.StatusOK, section)
}

// Superseded answers a request whose result a newer request or scope change replaced.
func Superseded(c echo.Context) error {
	return middleware.Fail(c, http.StatusConflict, "error.superseded")
}

func isEmpty(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Invalid:
		return true
	case reflect.Slice, reflect.Map:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
