// Package mapview builds the map overlay for the current trip: endpoint
// markers, one styled path per displayed route, and the bounds to fit.
package mapview

import (
	"github.com/twpayne/go-polyline"

	"github.com/ecoroute/ecoroute/internal/trip"
)

// MarkerKind distinguishes the endpoint markers.
type MarkerKind string

const (
	MarkerOrigin      MarkerKind = "origin"
	MarkerDestination MarkerKind = "destination"
)

// Marker is a labelled point on the map.
type Marker struct {
	Kind     MarkerKind
	Label    string
	Position trip.Coordinate
}

// Style is the rendering hint for a path.
type Style struct {
	Color     string
	Weight    int
	Opacity   float64
	DashArray string
	ZIndex    int
}

// Path is one drawn route. Index is the route's position in the displayed list,
// so selecting a path and selecting a list entry are the same operation.
type Path struct {
	Index     int
	Mode      trip.Mode
	Label     string
	Polyline  string
	Points    int
	Fastest   bool
	Greenest  bool
	Selected  bool
	Style     Style
	Tooltip   Tooltip
	StopPoint *trip.Coordinate
}

// Tooltip is the hover summary of a path.
type Tooltip struct {
	Title           string
	DurationMinutes int
	CostEstimate    string
}

// Bounds is the bounding box of every drawn point.
type Bounds struct {
	South float64
	West  float64
	North float64
	East  float64
}

// Layer is the complete overlay.
type Layer struct {
	Markers []Marker
	Paths   []Path
	Bounds  *Bounds
}

const selectedColor = "#000"

// Build assembles the overlay for a result and its displayed selection.
// selectedIndex refers to sel.Routes; trip.NoIndex selects nothing.
// A nil or infeasible result yields an empty layer.
func Build(result *trip.Result, sel trip.Selection, selectedIndex int) Layer {
	layer := Layer{Markers: []Marker{}, Paths: []Path{}}
	if result == nil || !result.Feasible {
		return layer
	}

	layer.Markers = append(layer.Markers,
		Marker{Kind: MarkerOrigin, Label: "Start: " + result.Origin, Position: result.OriginCoordinates},
		Marker{Kind: MarkerDestination, Label: "End: " + result.Destination, Position: result.DestinationCoordinates},
	)

	b := newBounds(result.OriginCoordinates)
	b.extend(result.DestinationCoordinates)

	for i, route := range sel.Routes {
		if len(route.Waypoints) == 0 {
			continue
		}

		coords := make([][]float64, 0, len(route.Waypoints))
		for _, wp := range route.Waypoints {
			coords = append(coords, []float64{wp.Lat, wp.Lng})
			b.extend(wp)
		}

		selected := i == selectedIndex
		path := Path{
			Index:    i,
			Mode:     route.Mode,
			Label:    route.RouteLabel,
			Polyline: string(polyline.EncodeCoords(coords)),
			Points:   len(route.Waypoints),
			Fastest:  i == sel.FastestIndex,
			Greenest: i == sel.GreenestIndex,
			Selected: selected,
			Style:    styleFor(route.Mode, selected),
			Tooltip: Tooltip{
				Title:           route.DisplayName(),
				DurationMinutes: route.DurationMinutes,
				CostEstimate:    route.CostEstimate,
			},
		}
		if route.Mode == trip.ModeBus {
			mid := route.Waypoints[len(route.Waypoints)/2]
			path.StopPoint = &mid
		}
		layer.Paths = append(layer.Paths, path)
	}

	layer.Bounds = &b
	return layer
}

func styleFor(mode trip.Mode, selected bool) Style {
	s := Style{Color: "#94a3b8", Weight: 5, Opacity: 0.7, ZIndex: 1}
	switch mode {
	case trip.ModeBus:
		s.Color, s.Weight, s.ZIndex = "#ea580c", 6, 10
	case trip.ModeTrain:
		s.Color, s.ZIndex = "#4f46e5", 5
	case trip.ModeBike:
		s.Color, s.DashArray = "#10b981", "5, 10"
	case trip.ModeWalk:
		s.Color, s.DashArray = "#0d9488", "1, 5"
	case trip.ModeCarGas, trip.ModeCarEV:
		s.Color = "#3b82f6"
	}
	if selected {
		s.Color, s.Weight, s.Opacity = selectedColor, 8, 1
	}
	return s
}

func newBounds(c trip.Coordinate) Bounds {
	return Bounds{South: c.Lat, West: c.Lng, North: c.Lat, East: c.Lng}
}

func (b *Bounds) extend(c trip.Coordinate) {
	b.South = min(b.South, c.Lat)
	b.North = max(b.North, c.Lat)
	b.West = min(b.West, c.Lng)
	b.East = max(b.East, c.Lng)
}
