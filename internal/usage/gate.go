// Package usage enforces the free tier of trip calculations and captures registrations.
package usage

import (
	"errors"
	"strings"
)

// FreeTierLimit is the number of calculations allowed before registration.
const FreeTierLimit = 3

var (
	// ErrRegistrationRequired is returned when an unregistered session has used the free tier.
	ErrRegistrationRequired = errors.New("registration required to continue")

	// ErrAlreadyRegistered is returned when a registered session registers again.
	ErrAlreadyRegistered = errors.New("session is already registered")

	// ErrInvalidProfile is returned when a profile fails validation.
	ErrInvalidProfile = errors.New("invalid profile")
)

// Purpose is the stated reason for using the planner.
type Purpose string

const (
	PurposeCommercial  Purpose = "Commercial"
	PurposeEducational Purpose = "Educational"
	PurposePersonal    Purpose = "Personal"
	PurposeOther       Purpose = "Other"
)

// Purposes returns every accepted purpose.
func Purposes() []Purpose {
	return []Purpose{PurposeCommercial, PurposeEducational, PurposePersonal, PurposeOther}
}

// Profile is the information captured at registration.
type Profile struct {
	FirstName string  `json:"firstName" validate:"required,max=100"`
	LastName  string  `json:"lastName" validate:"required,max=100"`
	Email     string  `json:"email" validate:"required,email,max=254"`
	Purpose   Purpose `json:"purpose" validate:"required,oneof=Commercial Educational Personal Other"`
}

// Normalize trims surrounding whitespace from every field.
func (p Profile) Normalize() Profile {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Email = strings.TrimSpace(p.Email)
	p.Purpose = Purpose(strings.TrimSpace(string(p.Purpose)))
	return p
}

// Phase is the position of a session in the usage lifecycle.
type Phase string

const (
	PhaseUnderLimit Phase = "unregistered_under_limit"
	PhaseAtLimit    Phase = "unregistered_at_limit"
	PhaseRegistered Phase = "registered"
)

// State is the usage state of one session.
type State struct {
	Count   int
	Profile *Profile
}

// Registered reports whether a profile has been captured.
func (s State) Registered() bool {
	return s.Profile != nil
}

// Phase returns the current lifecycle phase.
func (s State) Phase() Phase {
	switch {
	case s.Registered():
		return PhaseRegistered
	case s.Count >= FreeTierLimit:
		return PhaseAtLimit
	default:
		return PhaseUnderLimit
	}
}

// Remaining is the number of free calculations left, or -1 when registered.
func (s State) Remaining() int {
	if s.Registered() {
		return -1
	}
	return max(FreeTierLimit-s.Count, 0)
}

// Admit counts one calculation. Registered sessions pass without touching the counter.
func (s State) Admit() (State, error) {
	switch s.Phase() {
	case PhaseRegistered:
		return s, nil
	case PhaseAtLimit:
		return s, ErrRegistrationRequired
	default:
		s.Count++
		return s, nil
	}
}

// Register captures a profile. Registration is one-way.
func (s State) Register(p Profile) (State, error) {
	if s.Registered() {
		return s, ErrAlreadyRegistered
	}
	s.Profile = &p
	return s, nil
}
