package models

// PlanTripRequest is the body of POST /v1/trips.
type PlanTripRequest struct {
	Origin      string `json:"origin" validate:"required,max=200"`
	Destination string `json:"destination" validate:"required,max=200"`
	Language    string `json:"language,omitempty" validate:"omitempty,oneof=english local"`
}

// ReplanRequest is the body of POST /v1/trips/current/language.
type ReplanRequest struct {
	Language string `json:"language" validate:"required,oneof=english local"`
}

// ViewUpdateRequest is the body of PUT /v1/trips/current/view.
// Omitted fields are left unchanged; selectedIndex -1 clears the selection.
type ViewUpdateRequest struct {
	Modes         []string `json:"modes,omitempty" validate:"omitempty,dive,required"`
	SortBy        *string  `json:"sortBy,omitempty" validate:"omitempty,oneof=duration emissions greenScore cost"`
	SelectedIndex *int     `json:"selectedIndex,omitempty" validate:"omitempty,gte=-1"`
}

// Route is one route option as displayed.
type Route struct {
	Index           int          `json:"index"`
	Mode            string       `json:"mode"`
	RouteLabel      string       `json:"routeLabel,omitempty"`
	DisplayName     string       `json:"displayName"`
	DurationMinutes int          `json:"durationMinutes"`
	Distance        float64      `json:"distance"`
	DistanceUnit    string       `json:"distanceUnit"`
	EmissionsKg     float64      `json:"emissionsKg"`
	CostEstimate    string       `json:"costEstimate"`
	CostValue       int          `json:"costValue"`
	GreenScore      int          `json:"greenScore"`
	Description     string       `json:"description"`
	Waypoints       []Coordinate `json:"waypoints"`
	Fastest         bool         `json:"fastest"`
	Greenest        bool         `json:"greenest"`
	Selected        bool         `json:"selected"`
}

// TripView is the view state of the current trip.
type TripView struct {
	Modes         []string `json:"modes"`
	SortBy        string   `json:"sortBy"`
	SelectedIndex int      `json:"selectedIndex"`
}

// InfeasibleNotice is shown when no routes exist for the trip.
type InfeasibleNotice struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Trip is the current trip of a session as displayed.
type Trip struct {
	Origin                 string            `json:"origin"`
	Destination            string            `json:"destination"`
	OriginCoordinates      Coordinate        `json:"originCoordinates"`
	DestinationCoordinates Coordinate        `json:"destinationCoordinates"`
	Feasible               bool              `json:"feasible"`
	Summary                string            `json:"summary"`
	Routes                 []Route           `json:"routes"`
	TotalRoutes            int               `json:"totalRoutes"`
	FastestIndex           int               `json:"fastestIndex"`
	GreenestIndex          int               `json:"greenestIndex"`
	View                   TripView          `json:"view"`
	Map                    MapLayer          `json:"map"`
	InfeasibleNotice       *InfeasibleNotice `json:"infeasibleNotice,omitempty"`
	Generation             uint64            `json:"generation"`
	PromptFeedback         bool              `json:"promptFeedback"`
}

// MapMarker is a labelled point on the map.
type MapMarker struct {
	Kind     string     `json:"kind"`
	Label    string     `json:"label"`
	Position Coordinate `json:"position"`
}

// MapStyle is the rendering hint for a path.
type MapStyle struct {
	Color     string  `json:"color"`
	Weight    int     `json:"weight"`
	Opacity   float64 `json:"opacity"`
	DashArray string  `json:"dashArray,omitempty"`
	ZIndex    int     `json:"zIndex"`
}

// MapTooltip is the hover summary of a path.
type MapTooltip struct {
	Title           string `json:"title"`
	DurationMinutes int    `json:"durationMinutes"`
	CostEstimate    string `json:"costEstimate"`
}

// MapPath is one drawn route; Index matches Route.Index.
type MapPath struct {
	Index     int         `json:"index"`
	Mode      string      `json:"mode"`
	Label     string      `json:"label,omitempty"`
	Polyline  string      `json:"polyline"`
	Points    int         `json:"points"`
	Fastest   bool        `json:"fastest"`
	Greenest  bool        `json:"greenest"`
	Selected  bool        `json:"selected"`
	Style     MapStyle    `json:"style"`
	Tooltip   MapTooltip  `json:"tooltip"`
	StopPoint *Coordinate `json:"stopPoint,omitempty"`
}

// MapBounds is the bounding box to fit.
type MapBounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// MapLayer is the map overlay of the current trip.
type MapLayer struct {
	Markers []MapMarker `json:"markers"`
	Paths   []MapPath   `json:"paths"`
	Bounds  *MapBounds  `json:"bounds,omitempty"`
}
