package views

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartentrance/internal/models"
	"smartentrance/internal/selection"
)

var (
	building = selection.BuildingScope{Building: models.Building{ID: 7, Name: "Blok A", Address: "Vitosha 1", Entrance: "A"}}
	unit     = selection.UnitScope{Unit: models.Unit{UnitID: 3, UnitNumber: 101, BuildingID: 7}}
)

func menuViews(entries []MenuEntry) []View {
	out := make([]View, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.View)
	}
	return out
}

func TestResolveUnknownViewRedirectsToOverview(t *testing.T) {
	v, redirect := Resolve(Resident, "bogus")
	assert.True(t, redirect)
	assert.Equal(t, Overview, v)
	assert.Equal(t, "/dashboard/overview", Resident.Path(v))

	v, redirect = Resolve(Manager, "")
	assert.True(t, redirect)
	assert.Equal(t, "/admin/dashboard/overview", Manager.Path(v))
}

func TestResolveKnownViews(t *testing.T) {
	for _, f := range []Flavor{Resident, Manager} {
		for _, v := range f.Views() {
			got, redirect := Resolve(f, string(v))
			assert.False(t, redirect, "%s/%s", f, v)
			assert.Equal(t, v, got)
		}
	}
}

func TestInvitationsAndUnitsAreManagerOnly(t *testing.T) {
	_, redirect := Resolve(Resident, "invitations")
	assert.True(t, redirect)
	_, redirect = Resolve(Resident, "units")
	assert.True(t, redirect)

	assert.True(t, Manager.Has(Invitations))
	assert.True(t, Manager.Has(Units))
}

func TestMenuWithoutScope(t *testing.T) {
	assert.Equal(t, []View{Homes}, menuViews(Menu(Manager, selection.NoScope{}, Payments)))
	assert.Equal(t, []View{Homes}, menuViews(Menu(Resident, nil, Overview)))
	assert.Equal(t, []View{Homes, Profile}, menuViews(Menu(Resident, selection.NoScope{}, Profile)))
}

func TestMenuWithWrongVariant(t *testing.T) {
	assert.Equal(t, []View{Homes}, menuViews(Menu(Manager, unit, Overview)))
	assert.Equal(t, []View{Homes, Profile}, menuViews(Menu(Resident, building, Profile)))
}

func TestMenuWithScopeShowsEverything(t *testing.T) {
	assert.Equal(t, Manager.Views(), menuViews(Menu(Manager, building, Overview)))
	assert.Equal(t, Resident.Views(), menuViews(Menu(Resident, unit, Overview)))
}

func TestMenuMarksActiveEntry(t *testing.T) {
	entries := Menu(Manager, building, Polls)
	for _, e := range entries {
		assert.Equal(t, e.View == Polls, e.Active, e.View)
		assert.Equal(t, "menu."+string(e.View), e.LabelKey)
	}
}

func TestParseFlavor(t *testing.T) {
	f, err := ParseFlavor("manager")
	require.NoError(t, err)
	assert.Equal(t, Manager, f)

	_, err = ParseFlavor("admin")
	assert.Error(t, err)
}

func TestViewsReturnsCopy(t *testing.T) {
	vs := Resident.Views()
	vs[0] = "mutated"
	assert.Equal(t, Overview, Resident.Views()[0])
}

func TestNeedsScope(t *testing.T) {
	assert.False(t, NeedsScope(Homes))
	assert.False(t, NeedsScope(Profile))
	assert.True(t, NeedsScope(Payments))
	assert.True(t, NeedsScope(Overview))
}
