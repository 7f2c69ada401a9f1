package trip_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoroute/ecoroute/internal/trip"
)

func sampleRoutes() []trip.RouteOption {
	return []trip.RouteOption{
		{Mode: trip.ModeCarGas, DurationMinutes: 20, EmissionsKg: 4.0, CostEstimate: "$12", GreenScore: 10},
		{Mode: trip.ModeBus, DurationMinutes: 35, EmissionsKg: 1.0, CostEstimate: "$3", GreenScore: 70},
		{Mode: trip.ModeBike, DurationMinutes: 45, EmissionsKg: 0, CostEstimate: "Free", GreenScore: 95},
		{Mode: trip.ModeWalk, DurationMinutes: 120, EmissionsKg: 0, CostEstimate: "Free", GreenScore: 100},
	}
}

func modesOf(routes []trip.RouteOption) []trip.Mode {
	modes := make([]trip.Mode, 0, len(routes))
	for _, r := range routes {
		modes = append(modes, r.Mode)
	}
	return modes
}

func TestSelect_SortKeys(t *testing.T) {
	tests := []struct {
		name string
		key  trip.SortKey
		want []trip.Mode
	}{
		{"duration ascending", trip.SortDuration, []trip.Mode{trip.ModeCarGas, trip.ModeBus, trip.ModeBike, trip.ModeWalk}},
		{"emissions ascending stable", trip.SortEmissions, []trip.Mode{trip.ModeBike, trip.ModeWalk, trip.ModeBus, trip.ModeCarGas}},
		{"green score descending", trip.SortGreenScore, []trip.Mode{trip.ModeWalk, trip.ModeBike, trip.ModeBus, trip.ModeCarGas}},
		{"cost ascending", trip.SortCost, []trip.Mode{trip.ModeBike, trip.ModeWalk, trip.ModeBus, trip.ModeCarGas}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := trip.Select(sampleRoutes(), trip.AllModeSet(), tt.key)
			assert.Equal(t, tt.want, modesOf(sel.Routes))
		})
	}
}

func TestSelect_TiesKeepInputOrder(t *testing.T) {
	routes := []trip.RouteOption{
		{Mode: trip.ModeCarGas, DurationMinutes: 30, EmissionsKg: 2, CostEstimate: "$9", GreenScore: 50},
		{Mode: trip.ModeBus, DurationMinutes: 30, EmissionsKg: 1, CostEstimate: "$3", GreenScore: 80},
		{Mode: trip.ModeBike, DurationMinutes: 30, EmissionsKg: 2, CostEstimate: "$9", GreenScore: 50},
		{Mode: trip.ModeWalk, DurationMinutes: 30, EmissionsKg: 2, CostEstimate: "$9", GreenScore: 50},
	}

	tests := []struct {
		name string
		key  trip.SortKey
		want []trip.Mode
	}{
		{"green score", trip.SortGreenScore, []trip.Mode{trip.ModeBus, trip.ModeCarGas, trip.ModeBike, trip.ModeWalk}},
		{"duration", trip.SortDuration, []trip.Mode{trip.ModeCarGas, trip.ModeBus, trip.ModeBike, trip.ModeWalk}},
		{"emissions", trip.SortEmissions, []trip.Mode{trip.ModeBus, trip.ModeCarGas, trip.ModeBike, trip.ModeWalk}},
		{"cost", trip.SortCost, []trip.Mode{trip.ModeBus, trip.ModeCarGas, trip.ModeBike, trip.ModeWalk}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := trip.Select(routes, trip.AllModeSet(), tt.key)
			assert.Equal(t, tt.want, modesOf(sel.Routes))
		})
	}
}

func TestSelect_Badges(t *testing.T) {
	sel := trip.Select(sampleRoutes(), trip.AllModeSet(), trip.SortDuration)
	require.Len(t, sel.Routes, 4)

	assert.Equal(t, 0, sel.FastestIndex)
	// Bike and walking tie on zero emissions; the first one displayed wins.
	assert.Equal(t, 2, sel.GreenestIndex)
	assert.Equal(t, trip.ModeBike, sel.Routes[sel.GreenestIndex].Mode)
}

func TestSelect_GreenestUsesEmissionsNotScore(t *testing.T) {
	routes := []trip.RouteOption{
		{Mode: trip.ModeTrain, DurationMinutes: 30, EmissionsKg: 0.5, GreenScore: 99},
		{Mode: trip.ModeCarEV, DurationMinutes: 25, EmissionsKg: 0.2, GreenScore: 60},
	}

	sel := trip.Select(routes, trip.AllModeSet(), trip.SortGreenScore)
	require.Len(t, sel.Routes, 2)
	assert.Equal(t, trip.ModeTrain, sel.Routes[0].Mode)
	assert.Equal(t, 1, sel.GreenestIndex)
	assert.Equal(t, 1, sel.FastestIndex)
}

func TestSelect_FiltersModes(t *testing.T) {
	modes := trip.NewModeSet(trip.ModeBus, trip.ModeWalk)

	sel := trip.Select(sampleRoutes(), modes, trip.SortDuration)
	assert.Equal(t, []trip.Mode{trip.ModeBus, trip.ModeWalk}, modesOf(sel.Routes))
	assert.Equal(t, 0, sel.FastestIndex)
	assert.Equal(t, 1, sel.GreenestIndex)
}

func TestSelect_EmptyDisplay(t *testing.T) {
	sel := trip.Select(sampleRoutes(), trip.NewModeSet(trip.ModeTrain), trip.SortDuration)
	assert.Empty(t, sel.Routes)
	assert.Equal(t, trip.NoIndex, sel.FastestIndex)
	assert.Equal(t, trip.NoIndex, sel.GreenestIndex)
}

func TestSelect_DoesNotMutateInput(t *testing.T) {
	routes := sampleRoutes()
	_ = trip.Select(routes, trip.AllModeSet(), trip.SortCost)
	assert.Equal(t, sampleRoutes(), routes)
}

func TestSelect_MultipleRoutesPerMode(t *testing.T) {
	routes := []trip.RouteOption{
		{Mode: trip.ModeCarGas, RouteLabel: "Fastest", DurationMinutes: 20, EmissionsKg: 4.0},
		{Mode: trip.ModeCarGas, RouteLabel: "No Tolls", DurationMinutes: 28, EmissionsKg: 4.4},
	}

	sel := trip.Select(routes, trip.NewModeSet(trip.ModeCarGas), trip.SortDuration)
	require.Len(t, sel.Routes, 2)
	assert.Equal(t, "Car (Gas) (Fastest)", sel.Routes[0].DisplayName())
	assert.Equal(t, "Car (Gas) (No Tolls)", sel.Routes[1].DisplayName())
}

func TestDerive_InfeasibleShowsNothing(t *testing.T) {
	result := &trip.Result{Feasible: false, Routes: sampleRoutes()}

	sel := trip.Derive(result, trip.InitialView())
	assert.Empty(t, sel.Routes)
	assert.Equal(t, trip.NoIndex, sel.FastestIndex)
	assert.Equal(t, trip.NoIndex, sel.GreenestIndex)
}

func TestDerive_NilResult(t *testing.T) {
	sel := trip.Derive(nil, trip.InitialView())
	assert.Empty(t, sel.Routes)
}

func TestDerive_UsesView(t *testing.T) {
	result := &trip.Result{Feasible: true, Routes: sampleRoutes()}
	view := trip.InitialView().WithSort(trip.SortGreenScore).WithModes(trip.NewModeSet(trip.ModeCarGas, trip.ModeBike))

	sel := trip.Derive(result, view)
	assert.Equal(t, []trip.Mode{trip.ModeBike, trip.ModeCarGas}, modesOf(sel.Routes))
}

func TestParseSortKey(t *testing.T) {
	k, err := trip.ParseSortKey("greenScore")
	require.NoError(t, err)
	assert.Equal(t, trip.SortGreenScore, k)

	_, err = trip.ParseSortKey("price")
	assert.ErrorIs(t, err, trip.ErrUnknownSortKey)
}
