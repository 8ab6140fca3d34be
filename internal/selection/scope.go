package selection

import "smartentrance/internal/models"

// Kind tags which variant a Scope is.
type Kind string

const (
	KindNone     Kind = "none"
	KindBuilding Kind = "building"
	KindUnit     Kind = "unit"
)

// Scope is what the dashboard currently operates against. Only NoScope, BuildingScope
// and UnitScope implement it, so "building and unit both set" cannot be expressed.
type Scope interface {
	Kind() Kind
	scope()
}

// NoScope means nothing has been picked yet.
type NoScope struct{}

// BuildingScope is the manager perspective: one managed entrance.
type BuildingScope struct {
	Building models.Building
}

// UnitScope is the resident perspective: one apartment.
type UnitScope struct {
	Unit models.Unit
}

func (NoScope) Kind() Kind       { return KindNone }
func (BuildingScope) Kind() Kind { return KindBuilding }
func (UnitScope) Kind() Kind     { return KindUnit }

func (NoScope) scope()       {}
func (BuildingScope) scope() {}
func (UnitScope) scope()     {}

// BuildingOf returns the selected building, or nil unless s is a BuildingScope.
func BuildingOf(s Scope) *models.Building {
	if b, ok := s.(BuildingScope); ok {
		building := b.Building
		return &building
	}
	return nil
}

// UnitOf returns the selected unit, or nil unless s is a UnitScope.
func UnitOf(s Scope) *models.Unit {
	if u, ok := s.(UnitScope); ok {
		unit := u.Unit
		return &unit
	}
	return nil
}

// BuildingID returns the building the scope points at, whichever variant it is.
func BuildingID(s Scope) (int64, bool) {
	switch v := s.(type) {
	case BuildingScope:
		return v.Building.ID, true
	case UnitScope:
		return v.Unit.BuildingID, true
	default:
		return 0, false
	}
}
