package views

import (
	"fmt"

	"smartentrance/internal/selection"
)

// Flavor is one of the two dashboards.
type Flavor string

const (
	Resident Flavor = "resident"
	Manager  Flavor = "manager"
)

// View is a dashboard section and doubles as its route segment and menu key.
type View string

const (
	Overview    View = "overview"
	Homes       View = "homes"
	Units       View = "units"
	Payments    View = "payments"
	Polls       View = "polls"
	Notices     View = "notices"
	Documents   View = "documents"
	Invitations View = "invitations"
	Profile     View = "profile"
)

// Default is where unknown views land.
const Default = Overview

var catalog = map[Flavor][]View{
	Resident: {Overview, Homes, Payments, Polls, Notices, Documents, Profile},
	Manager:  {Overview, Homes, Units, Payments, Polls, Notices, Documents, Invitations, Profile},
}

var basePaths = map[Flavor]string{
	Resident: "/dashboard",
	Manager:  "/admin/dashboard",
}

// ParseFlavor accepts "resident" or "manager".
func ParseFlavor(s string) (Flavor, error) {
	f := Flavor(s)
	if _, ok := catalog[f]; !ok {
		return "", fmt.Errorf("unknown dashboard flavor %q", s)
	}
	return f, nil
}

// Views lists the flavor's views in menu order.
func (f Flavor) Views() []View {
	return append([]View(nil), catalog[f]...)
}

// Has reports whether v belongs to the flavor's closed set.
func (f Flavor) Has(v View) bool {
	for _, known := range catalog[f] {
		if known == v {
			return true
		}
	}
	return false
}

// Accepts reports whether the scope is the variant this dashboard operates on.
func (f Flavor) Accepts(scope selection.Scope) bool {
	if scope == nil {
		return false
	}
	switch f {
	case Resident:
		return scope.Kind() == selection.KindUnit
	case Manager:
		return scope.Kind() == selection.KindBuilding
	default:
		return false
	}
}

// Path is the route of v in this dashboard.
func (f Flavor) Path(v View) string {
	return basePaths[f] + "/" + string(v)
}

// BasePath is the dashboard root, e.g. /admin/dashboard.
func (f Flavor) BasePath() string {
	return basePaths[f]
}

// Resolve maps a requested route segment to the view to render. The second result is
// true when the caller must redirect to the returned view instead of rendering.
func Resolve(f Flavor, requested string) (View, bool) {
	v := View(requested)
	if f.Has(v) {
		return v, false
	}
	return Default, true
}
