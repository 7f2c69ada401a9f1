package models

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Problem is an RFC 7807 error body, served as application/problem+json.
type Problem struct {
	Type     string       `json:"type"`
	Title    string       `json:"title"`
	Status   int          `json:"status"`
	Detail   string       `json:"detail,omitempty"`
	Instance string       `json:"instance,omitempty"`
	TraceID  string       `json:"traceId"`
	Errors   []FieldError `json:"errors,omitempty"`
}

// FieldError describes one invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Problem type URIs.
const (
	ProblemTypeValidation           = "https://api.ecoroute.app/problems/validation-error"
	ProblemTypeUnauthorized         = "https://api.ecoroute.app/problems/unauthorized"
	ProblemTypeForbidden            = "https://api.ecoroute.app/problems/forbidden"
	ProblemTypeTLSRequired          = "https://api.ecoroute.app/problems/tls-required"
	ProblemTypeRegistrationRequired = "https://api.ecoroute.app/problems/registration-required"
	ProblemTypeNotFound             = "https://api.ecoroute.app/problems/not-found"
	ProblemTypeConflict             = "https://api.ecoroute.app/problems/conflict"
	ProblemTypeSuperseded           = "https://api.ecoroute.app/problems/superseded"
	ProblemTypeUnsupportedMedia     = "https://api.ecoroute.app/problems/unsupported-media-type"
	ProblemTypeTooManyRequests      = "https://api.ecoroute.app/problems/too-many-requests"
	ProblemTypeInternal             = "https://api.ecoroute.app/problems/internal-error"
	ProblemTypePlanningFailed       = "https://api.ecoroute.app/problems/planning-failed"
	ProblemTypeConfiguration        = "https://api.ecoroute.app/problems/configuration-error"
	ProblemTypeMaintenance          = "https://api.ecoroute.app/problems/maintenance"
	ProblemTypeUnavailable          = "https://api.ecoroute.app/problems/service-unavailable"
)

// Kind is one class of problem: a type URI with its title and status.
type Kind struct {
	Type   string
	Title  string
	Status int
}

// Problem kinds reported by the API.
var (
	KindValidation           = Kind{ProblemTypeValidation, "Validation error", http.StatusBadRequest}
	KindUnauthorized         = Kind{ProblemTypeUnauthorized, "Unauthorized", http.StatusUnauthorized}
	KindForbidden            = Kind{ProblemTypeForbidden, "Forbidden", http.StatusForbidden}
	KindTLSRequired          = Kind{ProblemTypeTLSRequired, "TLS required", http.StatusForbidden}
	KindRegistrationRequired = Kind{ProblemTypeRegistrationRequired, "Registration required", http.StatusForbidden}
	KindNotFound             = Kind{ProblemTypeNotFound, "Not found", http.StatusNotFound}
	KindConflict             = Kind{ProblemTypeConflict, "Conflict", http.StatusConflict}
	KindSuperseded           = Kind{ProblemTypeSuperseded, "Request superseded", http.StatusConflict}
	KindUnsupportedMedia     = Kind{ProblemTypeUnsupportedMedia, "Unsupported media type", http.StatusUnsupportedMediaType}
	KindTooManyRequests      = Kind{ProblemTypeTooManyRequests, "Too many requests", http.StatusTooManyRequests}
	KindInternal             = Kind{ProblemTypeInternal, "Internal server error", http.StatusInternalServerError}
	KindPlanningFailed       = Kind{ProblemTypePlanningFailed, "Planning failed", http.StatusBadGateway}
	KindConfiguration        = Kind{ProblemTypeConfiguration, "Configuration error", http.StatusServiceUnavailable}
	KindMaintenance          = Kind{ProblemTypeMaintenance, "Temporarily unavailable", http.StatusServiceUnavailable}
	KindUnavailable          = Kind{ProblemTypeUnavailable, "Service unavailable", http.StatusServiceUnavailable}
)

// Fixed details for problems whose wording never varies.
const (
	PlanningFailedDetail = "Failed to calculate routes. Please check your connection and try again."
	SupersededDetail     = "A newer trip request was made for this session."
)

// New returns a problem of kind k.
func (k Kind) New(traceID, detail string) *Problem {
	return &Problem{
		Type:    k.Type,
		Title:   k.Title,
		Status:  k.Status,
		Detail:  detail,
		TraceID: traceID,
	}
}

// WithInstance sets the request path the problem occurred on.
func (p *Problem) WithInstance(instance string) *Problem {
	p.Instance = instance
	return p
}

// WithErrors attaches field errors.
func (p *Problem) WithErrors(errors []FieldError) *Problem {
	p.Errors = errors
	return p
}

// Write sends the problem. The trace ID is echoed as X-Request-Id.
func (p *Problem) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	if p.TraceID != "" {
		w.Header().Set("X-Request-Id", p.TraceID)
	}
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p) //nolint:errcheck // client went away
}

// NewRegistrationRequired reports a session that used up its free searches.
func NewRegistrationRequired(traceID string, limit int) *Problem {
	return KindRegistrationRequired.New(traceID,
		fmt.Sprintf("You have used all %d free searches. Register to keep planning trips.", limit))
}
