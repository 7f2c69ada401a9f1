package trip

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// DecodeError describes why a planner payload was rejected.
type DecodeError struct {
	Field  string
	Reason string
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidPayload, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrInvalidPayload, e.Field, e.Reason)
}

func (e *DecodeError) Unwrap() error { return ErrInvalidPayload }

type coordinatePayload struct {
	Lat *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lng *float64 `json:"lng" validate:"required,gte=-180,lte=180"`
}

type routePayload struct {
	Mode            string              `json:"mode" validate:"required,transport_mode"`
	RouteLabel      *string             `json:"routeLabel"`
	DurationMinutes *float64            `json:"durationMinutes" validate:"required,gte=0"`
	Distance        *float64            `json:"distance" validate:"required,gte=0"`
	DistanceUnit    string              `json:"distanceUnit" validate:"required,oneof=km mi"`
	EmissionsKg     *float64            `json:"emissionsKg" validate:"required,gte=0"`
	CostEstimate    *string             `json:"costEstimate" validate:"required"`
	GreenScore      *float64            `json:"greenScore" validate:"required,gte=0,lte=100"`
	Description     *string             `json:"description" validate:"required"`
	Waypoints       []coordinatePayload `json:"waypoints" validate:"required,dive"`
}

type resultPayload struct {
	Origin                 *string            `json:"origin" validate:"required"`
	Destination            *string            `json:"destination" validate:"required"`
	OriginCoordinates      *coordinatePayload `json:"originCoordinates" validate:"required"`
	DestinationCoordinates *coordinatePayload `json:"destinationCoordinates" validate:"required"`
	Summary                *string            `json:"summary" validate:"required"`
	IsFeasible             *bool              `json:"isFeasible" validate:"required"`
	Routes                 []routePayload     `json:"routes" validate:"required,dive"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("transport_mode", func(fl validator.FieldLevel) bool {
		_, err := ParseMode(fl.Field().String())
		return err == nil
	})
	return v
}

// Decode parses and validates a planner response. Every field the planner is
// asked for must be present and in range; the result is safe to hand to Select.
func Decode(data []byte) (*Result, error) {
	var p resultPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, &DecodeError{Reason: "malformed JSON: " + err.Error()}
	}
	if err := validate.Struct(&p); err != nil {
		return nil, toDecodeError(err)
	}

	result := &Result{
		Origin:                 *p.Origin,
		Destination:            *p.Destination,
		OriginCoordinates:      p.OriginCoordinates.coordinate(),
		DestinationCoordinates: p.DestinationCoordinates.coordinate(),
		Feasible:               *p.IsFeasible,
		Summary:                *p.Summary,
		Routes:                 make([]RouteOption, 0, len(p.Routes)),
	}
	for _, rp := range p.Routes {
		result.Routes = append(result.Routes, rp.route())
	}
	return result, nil
}

func (c *coordinatePayload) coordinate() Coordinate {
	return Coordinate{Lat: *c.Lat, Lng: *c.Lng}
}

func (rp routePayload) route() RouteOption {
	r := RouteOption{
		Mode:            Mode(rp.Mode),
		DurationMinutes: int(math.Round(*rp.DurationMinutes)),
		Distance:        *rp.Distance,
		DistanceUnit:    DistanceUnit(rp.DistanceUnit),
		EmissionsKg:     *rp.EmissionsKg,
		CostEstimate:    *rp.CostEstimate,
		GreenScore:      int(math.Round(*rp.GreenScore)),
		Description:     *rp.Description,
		Waypoints:       make([]Coordinate, 0, len(rp.Waypoints)),
	}
	if rp.RouteLabel != nil {
		r.RouteLabel = *rp.RouteLabel
	}
	for i := range rp.Waypoints {
		r.Waypoints = append(r.Waypoints, rp.Waypoints[i].coordinate())
	}
	return r
}

func toDecodeError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &DecodeError{Reason: err.Error()}
	}
	fe := verrs[0]
	return &DecodeError{
		Field:  strings.TrimPrefix(fe.Namespace(), "resultPayload."),
		Reason: describeTag(fe),
	}
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "transport_mode":
		return fmt.Sprintf("unknown transport mode %q", fe.Value())
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	default:
		return "failed " + fe.Tag() + " check"
	}
}
