package trip

import "sort"

// SortKey orders the displayed routes.
type SortKey string

const (
	SortDuration   SortKey = "duration"
	SortEmissions  SortKey = "emissions"
	SortGreenScore SortKey = "greenScore"
	SortCost       SortKey = "cost"
)

// SortKeys returns every supported sort key.
func SortKeys() []SortKey {
	return []SortKey{SortDuration, SortEmissions, SortGreenScore, SortCost}
}

// ParseSortKey resolves a wire value to a SortKey.
func ParseSortKey(s string) (SortKey, error) {
	for _, k := range SortKeys() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", ErrUnknownSortKey
}

// NoIndex marks the absence of a fastest, greenest or selected route.
const NoIndex = -1

// Selection is the displayed route list with its badge indices.
// Indices refer to positions in Routes.
type Selection struct {
	Routes        []RouteOption
	FastestIndex  int
	GreenestIndex int
}

// Select filters routes to the active modes, sorts them by key and locates the
// fastest (minimum duration) and greenest (minimum emissions) entries.
// The input slice is not modified.
func Select(routes []RouteOption, modes ModeSet, key SortKey) Selection {
	displayed := make([]RouteOption, 0, len(routes))
	for _, r := range routes {
		if modes.Has(r.Mode) {
			displayed = append(displayed, r)
		}
	}

	if less := lessFunc(displayed, key); less != nil {
		sort.SliceStable(displayed, less)
	}

	fastest, greenest := specialIndices(displayed)
	return Selection{
		Routes:        displayed,
		FastestIndex:  fastest,
		GreenestIndex: greenest,
	}
}

func lessFunc(routes []RouteOption, key SortKey) func(i, j int) bool {
	switch key {
	case SortDuration:
		return func(i, j int) bool { return routes[i].DurationMinutes < routes[j].DurationMinutes }
	case SortEmissions:
		return func(i, j int) bool { return routes[i].EmissionsKg < routes[j].EmissionsKg }
	case SortGreenScore:
		// Higher score first.
		return func(i, j int) bool { return routes[i].GreenScore > routes[j].GreenScore }
	case SortCost:
		return func(i, j int) bool {
			return ParseCost(routes[i].CostEstimate) < ParseCost(routes[j].CostEstimate)
		}
	default:
		return nil
	}
}

// specialIndices scans for the first minimum duration and the first minimum emissions.
// Greenest is chosen by emissions, not by green score.
func specialIndices(routes []RouteOption) (fastest, greenest int) {
	if len(routes) == 0 {
		return NoIndex, NoIndex
	}
	for i, r := range routes {
		if r.DurationMinutes < routes[fastest].DurationMinutes {
			fastest = i
		}
		if r.EmissionsKg < routes[greenest].EmissionsKg {
			greenest = i
		}
	}
	return fastest, greenest
}

// Derive applies the view to a trip result. Infeasible trips display nothing,
// whatever their route list contains.
func Derive(result *Result, view ViewState) Selection {
	if result == nil || !result.Feasible {
		return Selection{Routes: []RouteOption{}, FastestIndex: NoIndex, GreenestIndex: NoIndex}
	}
	return Select(result.Routes, view.Modes, view.SortBy)
}
