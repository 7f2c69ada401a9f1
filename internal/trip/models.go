// Package trip provides trip planning, payload decoding and the route selection pipeline.
package trip

import (
	"errors"
	"math/bits"
)

// Service errors.
var (
	ErrNotConfigured       = errors.New("trip planner is not configured")
	ErrPlanningDisabled    = errors.New("trip planning is temporarily disabled")
	ErrSuperseded          = errors.New("planning request superseded by a newer request")
	ErrNoTrip              = errors.New("no trip has been planned in this session")
	ErrInvalidPayload      = errors.New("invalid trip payload")
	ErrSelectionOutOfRange = errors.New("selected index is outside the displayed routes")
	ErrUnknownMode         = errors.New("unknown transport mode")
	ErrUnknownSortKey      = errors.New("unknown sort key")
)

// Mode is a transport mode. Values are the exact strings exchanged with the planner.
type Mode string

const (
	ModeCarGas Mode = "Car (Gas)"
	ModeCarEV  Mode = "Car (EV)"
	ModeBus    Mode = "Bus"
	ModeTrain  Mode = "Train"
	ModeBike   Mode = "Bicycle"
	ModeWalk   Mode = "Walking"
)

// AllModes returns every transport mode in display order.
func AllModes() []Mode {
	return []Mode{ModeCarGas, ModeCarEV, ModeBus, ModeTrain, ModeBike, ModeWalk}
}

// ParseMode resolves a wire value to a Mode.
func ParseMode(s string) (Mode, error) {
	for _, m := range AllModes() {
		if string(m) == s {
			return m, nil
		}
	}
	return "", ErrUnknownMode
}

func (m Mode) bit() ModeSet {
	for i, known := range AllModes() {
		if known == m {
			return 1 << uint(i)
		}
	}
	return 0
}

// ModeSet is an immutable set of transport modes.
type ModeSet uint8

// NewModeSet builds a set from the given modes. Unknown modes are ignored.
func NewModeSet(modes ...Mode) ModeSet {
	var s ModeSet
	for _, m := range modes {
		s |= m.bit()
	}
	return s
}

// AllModeSet is the set of every mode.
func AllModeSet() ModeSet {
	return NewModeSet(AllModes()...)
}

// Has reports whether m is in the set.
func (s ModeSet) Has(m Mode) bool {
	b := m.bit()
	return b != 0 && s&b != 0
}

// Toggle returns a copy of the set with m flipped.
func (s ModeSet) Toggle(m Mode) ModeSet { return s ^ m.bit() }

// Len returns the number of modes in the set.
func (s ModeSet) Len() int { return bits.OnesCount8(uint8(s)) }

// Modes returns the members in display order.
func (s ModeSet) Modes() []Mode {
	modes := make([]Mode, 0, s.Len())
	for _, m := range AllModes() {
		if s.Has(m) {
			modes = append(modes, m)
		}
	}
	return modes
}

// DistanceUnit is the unit tag of a route distance.
type DistanceUnit string

const (
	UnitKilometers DistanceUnit = "km"
	UnitMiles      DistanceUnit = "mi"
)

// Language is the output language preference sent to the planner.
type Language string

const (
	LanguageEnglish Language = "english"
	LanguageLocal   Language = "local"
)

// ParseLanguage resolves a language preference. Empty input means LanguageLocal.
func ParseLanguage(s string) (Language, bool) {
	switch Language(s) {
	case "", LanguageLocal:
		return LanguageLocal, true
	case LanguageEnglish:
		return LanguageEnglish, true
	default:
		return "", false
	}
}

// Coordinate is a latitude/longitude pair.
type Coordinate struct {
	Lat float64
	Lng float64
}

// RouteOption is one candidate way to travel between two points by one mode.
type RouteOption struct {
	Mode            Mode
	RouteLabel      string
	DurationMinutes int
	Distance        float64
	DistanceUnit    DistanceUnit
	EmissionsKg     float64
	CostEstimate    string
	GreenScore      int
	Description     string
	Waypoints       []Coordinate
}

// DisplayName is the mode with its route label, if any.
func (r RouteOption) DisplayName() string {
	if r.RouteLabel == "" {
		return string(r.Mode)
	}
	return string(r.Mode) + " (" + r.RouteLabel + ")"
}

// Result is the outcome of one planning request.
type Result struct {
	Origin                 string
	Destination            string
	OriginCoordinates      Coordinate
	DestinationCoordinates Coordinate
	Feasible               bool
	Routes                 []RouteOption
	Summary                string
}

// Request is a planning request.
type Request struct {
	Origin      string
	Destination string
	Language    Language
}
