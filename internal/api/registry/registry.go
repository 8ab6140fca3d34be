package registry

import (
	"context"
	"sync"

	"github.com/labstack/echo/v4"

	"smartentrance/internal/api/controllers"
	"smartentrance/internal/i18n"
	"smartentrance/internal/models"
	"smartentrance/internal/selection"
	"smartentrance/internal/services"
	"smartentrance/internal/views"
)

// Section names
const (
	SectionPayments   = "payments"
	SectionPolls      = "polls"
	SectionNotices    = "notices"
	SectionDocuments  = "documents"
	SectionUnits      = "units"
	SectionBuildings  = "buildings"
	SectionResidences = "residences"
	SectionProfile    = "profile"
)

// Registry knows every dashboard section and which sections make up each view.
type Registry struct {
	loaders map[string]controllers.Loader
	order   []string
	layout  map[views.Flavor]map[views.View][]string
}

// New returns a registry with the standard sections and layouts.
func New() *Registry {
	r := &Registry{
		loaders: make(map[string]controllers.Loader),
		layout: map[views.Flavor]map[views.View][]string{
			views.Resident: {
				views.Overview:  {SectionPayments, SectionPolls, SectionNotices},
				views.Homes:     {SectionResidences},
				views.Payments:  {SectionPayments},
				views.Polls:     {SectionPolls},
				views.Notices:   {SectionNotices},
				views.Documents: {SectionDocuments},
				views.Profile:   {SectionProfile},
			},
			views.Manager: {
				views.Overview:    {SectionUnits, SectionPayments, SectionPolls, SectionNotices},
				views.Homes:       {SectionBuildings, SectionResidences},
				views.Units:       {SectionUnits},
				views.Payments:    {SectionPayments},
				views.Polls:       {SectionPolls},
				views.Notices:     {SectionNotices},
				views.Documents:   {SectionDocuments},
				views.Invitations: {SectionUnits},
				views.Profile:     {SectionProfile},
			},
		},
	}

	r.Register(controllers.NewSectionController(SectionPayments, true, fetchPayments))
	r.Register(controllers.NewSectionController(SectionPolls, true, byBuilding(func(s *services.Services) func(context.Context, int64) ([]models.Poll, error) {
		return s.Polls.ListByBuilding
	})))
	r.Register(controllers.NewSectionController(SectionNotices, true, byBuilding(func(s *services.Services) func(context.Context, int64) ([]models.Notice, error) {
		return s.Notices.ListByBuilding
	})))
	r.Register(controllers.NewSectionController(SectionDocuments, true, byBuilding(func(s *services.Services) func(context.Context, int64) ([]models.Document, error) {
		return s.Documents.ListByBuilding
	})))
	r.Register(controllers.NewSectionController(SectionUnits, true, fetchUnits))
	r.Register(controllers.NewSectionController(SectionBuildings, false, fetchBuildings))
	r.Register(controllers.NewSectionController(SectionResidences, false,
		func(ctx context.Context, svc *services.Services, _ controllers.Query) ([]models.Unit, error) {
			return svc.Units.ListMine(ctx)
		}))
	r.Register(controllers.NewSectionController(SectionProfile, false,
		func(ctx context.Context, svc *services.Services, _ controllers.Query) (*models.User, error) {
			return svc.Auth.Me(ctx)
		}))
	return r
}

// Register adds or replaces a section.
func (r *Registry) Register(l controllers.Loader) {
	if _, ok := r.loaders[l.Name()]; !ok {
		r.order = append(r.order, l.Name())
	}
	r.loaders[l.Name()] = l
}

func (r *Registry) Loader(name string) (controllers.Loader, bool) {
	l, ok := r.loaders[name]
	return l, ok
}

// Sections lists the section names of a view.
func (r *Registry) Sections(f views.Flavor, v views.View) []string {
	return r.layout[f][v]
}

// LoadView loads every section of the view concurrently. Sections come back in layout
// order, each carrying its own state.
func (r *Registry) LoadView(ctx context.Context, svc *services.Services, q controllers.Query, v views.View, p *i18n.Printer) []controllers.Section {
	names := r.Sections(q.Flavor, v)
	out := make([]controllers.Section, len(names))

	var wg sync.WaitGroup
	for i, name := range names {
		l, ok := r.loaders[name]
		if !ok {
			out[i] = controllers.Section{Name: name, State: controllers.StateEmpty}
			continue
		}
		wg.Add(1)
		go func(i int, l controllers.Loader) {
			defer wg.Done()
			out[i] = l.Load(ctx, svc, q, p)
		}(i, l)
	}
	wg.Wait()
	return out
}

// 📝 RegisterSectionRoutes exposes every section on its own - godoc
// @Summary Register dashboard section routes
// @Description Each section can be refetched without reloading the page
// @Produce json
func RegisterSectionRoutes(g *echo.Group, r *Registry) {
	sections := g.Group("/sections")
	for _, name := range r.order {
		sections.GET("/"+name, r.loaders[name].List)
	}
}

// Residents see their unit's payments, managers the building's for a period.
func fetchPayments(ctx context.Context, svc *services.Services, q controllers.Query) ([]models.Transaction, error) {
	if q.Flavor == views.Manager {
		b := selection.BuildingOf(q.Scope)
		return svc.Transactions.ListByBuilding(ctx, b.ID, q.Period)
	}
	u := selection.UnitOf(q.Scope)
	return svc.Transactions.ListByUnit(ctx, u.UnitID)
}

func fetchUnits(ctx context.Context, svc *services.Services, q controllers.Query) ([]models.UnitDetails, error) {
	if q.Flavor != views.Manager {
		return nil, nil
	}
	return svc.Units.ListByBuilding(ctx, selection.BuildingOf(q.Scope).ID)
}

func fetchBuildings(ctx context.Context, svc *services.Services, q controllers.Query) ([]models.Building, error) {
	if q.Flavor != views.Manager {
		return nil, nil
	}
	return svc.Buildings.ListManaged(ctx)
}

// byBuilding adapts a per-building list call. Units carry their building, so it works
// for both scope variants.
func byBuilding[T any](pick func(*services.Services) func(context.Context, int64) ([]T, error)) controllers.Fetcher[[]T] {
	return func(ctx context.Context, svc *services.Services, q controllers.Query) ([]T, error) {
		id, ok := selection.BuildingID(q.Scope)
		if !ok {
			return nil, nil
		}
		return pick(svc)(ctx, id)
	}
}
