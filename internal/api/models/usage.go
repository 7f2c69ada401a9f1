package models

// Profile is the registration information of a session.
type Profile struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Purpose   string `json:"purpose"`
}

// RegistrationRequest is the body of POST /v1/usage/registration.
type RegistrationRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Purpose   string `json:"purpose" validate:"required,oneof=Commercial Educational Personal Other"`
}

// UsageState is the free-tier position of a session.
type UsageState struct {
	Count      int      `json:"count"`
	Limit      int      `json:"limit"`
	Remaining  *int     `json:"remaining"`
	Phase      string   `json:"phase"`
	Registered bool     `json:"registered"`
	Profile    *Profile `json:"profile,omitempty"`
}
