package views

import "smartentrance/internal/selection"

// MenuEntry is one sidebar link.
type MenuEntry struct {
	View     View   `json:"view"`
	Path     string `json:"path"`
	LabelKey string `json:"labelKey"`
	Active   bool   `json:"active"`
}

// Menu computes the sidebar. Without a scope the dashboard can act on, entries other
// than homes (and profile while it is open) are left out. This only shapes navigation;
// every section endpoint still goes through the backend's own access checks.
func Menu(f Flavor, scope selection.Scope, current View) []MenuEntry {
	scoped := f.Accepts(scope)

	entries := make([]MenuEntry, 0, len(catalog[f]))
	for _, v := range catalog[f] {
		if !scoped && v != Homes && !(v == Profile && current == Profile) {
			continue
		}
		entries = append(entries, MenuEntry{
			View:     v,
			Path:     f.Path(v),
			LabelKey: "menu." + string(v),
			Active:   v == current,
		})
	}
	return entries
}

// NeedsScope reports whether the view shows scope-bound data.
func NeedsScope(v View) bool {
	switch v {
	case Homes, Profile:
		return false
	default:
		return true
	}
}
