package handler

import (
	"math"

	"github.com/ecoroute/ecoroute/internal/airquality"
	"github.com/ecoroute/ecoroute/internal/api/models"
	"github.com/ecoroute/ecoroute/internal/mapview"
	"github.com/ecoroute/ecoroute/internal/review"
	"github.com/ecoroute/ecoroute/internal/trip"
	"github.com/ecoroute/ecoroute/internal/usage"
)

// Notice shown when the planner reports the trip cannot be planned.
const (
	infeasibleTitle   = "Route Not Available"
	infeasibleMessage = "There is no information about this trip because it is in a different region or zone."
)

func coordinateOf(c trip.Coordinate) models.Coordinate {
	return models.Coordinate{Lat: c.Lat, Lng: c.Lng}
}

func tripOf(snap *trip.Snapshot, promptFeedback bool) models.Trip {
	res := snap.Result
	sel := snap.Selection

	out := models.Trip{
		Origin:                 res.Origin,
		Destination:            res.Destination,
		OriginCoordinates:      coordinateOf(res.OriginCoordinates),
		DestinationCoordinates: coordinateOf(res.DestinationCoordinates),
		Feasible:               res.Feasible,
		Summary:                res.Summary,
		Routes:                 make([]models.Route, len(sel.Routes)),
		TotalRoutes:            len(res.Routes),
		FastestIndex:           sel.FastestIndex,
		GreenestIndex:          sel.GreenestIndex,
		View:                   viewOf(snap.View),
		Map:                    mapLayerOf(mapview.Build(res, sel, snap.View.SelectedIndex)),
		Generation:             snap.Generation,
		PromptFeedback:         promptFeedback,
	}

	if !res.Feasible {
		out.TotalRoutes = 0
		out.InfeasibleNotice = &models.InfeasibleNotice{Title: infeasibleTitle, Message: infeasibleMessage}
	}

	for i, r := range sel.Routes {
		waypoints := make([]models.Coordinate, len(r.Waypoints))
		for j, wp := range r.Waypoints {
			waypoints[j] = coordinateOf(wp)
		}
		out.Routes[i] = models.Route{
			Index:           i,
			Mode:            string(r.Mode),
			RouteLabel:      r.RouteLabel,
			DisplayName:     r.DisplayName(),
			DurationMinutes: r.DurationMinutes,
			Distance:        r.Distance,
			DistanceUnit:    string(r.DistanceUnit),
			EmissionsKg:     r.EmissionsKg,
			CostEstimate:    r.CostEstimate,
			CostValue:       trip.ParseCost(r.CostEstimate),
			GreenScore:      r.GreenScore,
			Description:     r.Description,
			Waypoints:       waypoints,
			Fastest:         i == sel.FastestIndex,
			Greenest:        i == sel.GreenestIndex,
			Selected:        i == snap.View.SelectedIndex,
		}
	}
	return out
}

func viewOf(v trip.ViewState) models.TripView {
	modes := v.Modes.Modes()
	names := make([]string, len(modes))
	for i, m := range modes {
		names[i] = string(m)
	}
	return models.TripView{
		Modes:         names,
		SortBy:        string(v.SortBy),
		SelectedIndex: v.SelectedIndex,
	}
}

func mapLayerOf(l mapview.Layer) models.MapLayer {
	out := models.MapLayer{
		Markers: make([]models.MapMarker, len(l.Markers)),
		Paths:   make([]models.MapPath, len(l.Paths)),
	}
	for i, m := range l.Markers {
		out.Markers[i] = models.MapMarker{
			Kind:     string(m.Kind),
			Label:    m.Label,
			Position: coordinateOf(m.Position),
		}
	}
	for i, p := range l.Paths {
		path := models.MapPath{
			Index:    p.Index,
			Mode:     string(p.Mode),
			Label:    p.Label,
			Polyline: p.Polyline,
			Points:   p.Points,
			Fastest:  p.Fastest,
			Greenest: p.Greenest,
			Selected: p.Selected,
			Style: models.MapStyle{
				Color:     p.Style.Color,
				Weight:    p.Style.Weight,
				Opacity:   p.Style.Opacity,
				DashArray: p.Style.DashArray,
				ZIndex:    p.Style.ZIndex,
			},
			Tooltip: models.MapTooltip{
				Title:           p.Tooltip.Title,
				DurationMinutes: p.Tooltip.DurationMinutes,
				CostEstimate:    p.Tooltip.CostEstimate,
			},
		}
		if p.StopPoint != nil {
			stop := coordinateOf(*p.StopPoint)
			path.StopPoint = &stop
		}
		out.Paths[i] = path
	}
	if l.Bounds != nil {
		out.Bounds = &models.MapBounds{
			South: l.Bounds.South,
			West:  l.Bounds.West,
			North: l.Bounds.North,
			East:  l.Bounds.East,
		}
	}
	return out
}

func usageOf(s usage.State) models.UsageState {
	out := models.UsageState{
		Count:      s.Count,
		Limit:      usage.FreeTierLimit,
		Phase:      string(s.Phase()),
		Registered: s.Registered(),
	}
	if !s.Registered() {
		remaining := s.Remaining()
		out.Remaining = &remaining
	}
	if s.Profile != nil {
		out.Profile = &models.Profile{
			FirstName: s.Profile.FirstName,
			LastName:  s.Profile.LastName,
			Email:     s.Profile.Email,
			Purpose:   string(s.Profile.Purpose),
		}
	}
	return out
}

func bandOf(b airquality.Band) models.AQIBand {
	out := models.AQIBand{Label: b.Label, Color: b.Color}
	if !math.IsInf(b.Max, 1) {
		upper := b.Max
		out.Max = &upper
	}
	return out
}

func airQualityOf(rep airquality.Report) models.AirQuality {
	if !rep.Available {
		return models.AirQuality{Available: false}
	}
	aqi := rep.AQI
	position := rep.GaugePosition
	rotation := rep.NeedleRotation
	band := bandOf(rep.Band)
	out := models.AirQuality{
		Available:      true,
		AQI:            &aqi,
		Band:           &band,
		GaugePosition:  &position,
		NeedleRotation: &rotation,
		Source:         rep.Source,
		Stale:          rep.Stale,
	}
	if !rep.FetchedAt.IsZero() {
		ts := models.Timestamp(rep.FetchedAt)
		out.FetchedAt = &ts
	}
	return out
}

func reviewOf(r review.Review) models.Review {
	return models.Review{
		ID:       r.ID,
		UserName: r.UserName,
		Rating:   r.Rating,
		Comment:  r.Comment,
		Status:   string(r.Status),
		Date:     r.Date,
	}
}

func reviewListOf(items []review.Review) models.ReviewList {
	out := models.ReviewList{Items: make([]models.Review, len(items))}
	for i, r := range items {
		out.Items[i] = reviewOf(r)
	}
	return out
}
