// Package featureflags holds the runtime switches operators flip without a
// deploy: planning maintenance mode, cache-only air quality and the feedback
// prompt rate.
package featureflags

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Well-known flag keys.
const (
	FlagPlanningDisabled     = "planning_disabled"
	FlagCachedOnlyAirQuality = "cached_only_air_quality"
	FlagFeedbackPromptRate   = "feedback_prompt_rate"
)

// DefaultFeedbackPromptRate is the chance of asking for feedback after a plan
// while the flag is unset.
const DefaultFeedbackPromptRate = 0.3

// ErrInvalidValue is returned when a well-known flag is given a value of the
// wrong type or range.
var ErrInvalidValue = errors.New("invalid feature flag value")

// Flag is a stored flag value. Reason records why it was last changed;
// defaults carry neither a reason nor an UpdatedAt.
type Flag struct {
	Key       string      `json:"key"`
	Value     interface{} `json:"value"`
	Reason    string      `json:"reason,omitempty"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// BoolValue returns the value as a bool, or def when the flag is nil or not a
// bool. Numbers count as true when non-zero.
func (f *Flag) BoolValue(def bool) bool {
	if f == nil {
		return def
	}
	switch v := f.Value.(type) {
	case bool:
		return v
	case float64:
		return v != 0
	}
	return def
}

// Float64Value returns the value as a float64, or def when the flag is nil or
// not a number.
func (f *Flag) Float64Value(def float64) float64 {
	if f == nil {
		return def
	}
	switch v := f.Value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return def
}

// Definition describes a well-known flag.
type Definition struct {
	Key         string
	Description string
	Default     interface{}
	check       func(interface{}) bool
	want        string
}

var definitions = map[string]Definition{
	FlagPlanningDisabled: {
		Key:         FlagPlanningDisabled,
		Description: "Reject new trip plans with a maintenance response.",
		Default:     false,
		check:       isBool,
		want:        "a boolean",
	},
	FlagCachedOnlyAirQuality: {
		Key:         FlagCachedOnlyAirQuality,
		Description: "Serve air quality from cache only and never call the upstream feed.",
		Default:     false,
		check:       isBool,
		want:        "a boolean",
	},
	FlagFeedbackPromptRate: {
		Key:         FlagFeedbackPromptRate,
		Description: "Probability of asking for a review after a successful plan.",
		Default:     DefaultFeedbackPromptRate,
		check: func(v interface{}) bool {
			f, ok := v.(float64)
			return ok && f >= 0 && f <= 1
		},
		want: "a number between 0 and 1",
	},
}

func isBool(v interface{}) bool {
	_, ok := v.(bool)
	return ok
}

// Definitions lists the well-known flags ordered by key.
func Definitions() []Definition {
	out := make([]Definition, 0, len(definitions))
	for _, d := range definitions {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Describe returns the description of a well-known flag, or "" for others.
func Describe(key string) string {
	return definitions[key].Description
}

// ValidateValue checks value against the type of a well-known flag.
// Unknown keys accept any value.
func ValidateValue(key string, value interface{}) error {
	d, ok := definitions[key]
	if !ok || d.check(value) {
		return nil
	}
	return fmt.Errorf("%w: %s must be %s", ErrInvalidValue, key, d.want)
}

// DefaultFlags returns a fresh flag per well-known key holding its default.
func DefaultFlags() map[string]*Flag {
	out := make(map[string]*Flag, len(definitions))
	for key, d := range definitions {
		out[key] = &Flag{Key: key, Value: d.Default}
	}
	return out
}
