package models

// Health is the liveness and readiness probe body. Checks maps each
// readiness dependency to "ok" or its error.
type Health struct {
	Status    HealthStatus      `json:"status"`
	Time      Timestamp         `json:"time"`
	Version   string            `json:"version,omitempty"`
	BuildTime string            `json:"buildTime,omitempty"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// SystemStatus is the operator view of dependencies, outbound providers and
// the degradation flags currently switched on.
type SystemStatus struct {
	Status                 HealthStatus      `json:"status"`
	Time                   Timestamp         `json:"time"`
	Version                string            `json:"version"`
	Subsystems             []SubsystemStatus `json:"subsystems"`
	Providers              []ProviderStatus  `json:"providers"`
	ActiveDegradationFlags []string          `json:"activeDegradationFlags,omitempty"`
}

type SubsystemStatus struct {
	Name   string       `json:"name"`
	Status HealthStatus `json:"status"`
	Detail *string      `json:"detail,omitempty"`
}

// ProviderStatus reports one outbound provider's circuit breaker.
type ProviderStatus struct {
	Provider            string       `json:"provider"`
	Status              HealthStatus `json:"status"`
	CircuitState        string       `json:"circuitState"`
	ConsecutiveFailures int          `json:"consecutiveFailures"`
	LastSuccessAt       *Timestamp   `json:"lastSuccessAt,omitempty"`
	LastFailureAt       *Timestamp   `json:"lastFailureAt,omitempty"`
	Message             *string      `json:"message,omitempty"`
}
