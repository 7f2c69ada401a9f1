package trip

// ViewState is the per-session presentation state of the current trip.
// It is a value type; every transition returns a new state.
type ViewState struct {
	Modes         ModeSet
	SortBy        SortKey
	SelectedIndex int
}

// InitialView shows every mode sorted by duration with nothing selected.
func InitialView() ViewState {
	return ViewState{
		Modes:         AllModeSet(),
		SortBy:        SortDuration,
		SelectedIndex: NoIndex,
	}
}

// ToggleMode flips one mode in the active set and clears the selection.
func (v ViewState) ToggleMode(m Mode) ViewState {
	v.Modes = v.Modes.Toggle(m)
	v.SelectedIndex = NoIndex
	return v
}

// WithModes replaces the active set and clears the selection.
func (v ViewState) WithModes(modes ModeSet) ViewState {
	v.Modes = modes
	v.SelectedIndex = NoIndex
	return v
}

// WithSort changes the sort key and clears the selection.
// Selection is positional, so a reorder would otherwise point at a different route.
func (v ViewState) WithSort(key SortKey) ViewState {
	v.SortBy = key
	v.SelectedIndex = NoIndex
	return v
}

// Select highlights the route at index i of a displayed list of length n.
func (v ViewState) Select(i, n int) (ViewState, error) {
	if i < 0 || i >= n {
		return v, ErrSelectionOutOfRange
	}
	v.SelectedIndex = i
	return v, nil
}

// ClearSelection removes any highlighted route.
func (v ViewState) ClearSelection() ViewState {
	v.SelectedIndex = NoIndex
	return v
}
