package handler

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/ecoroute/ecoroute/internal/api/models"
	"github.com/ecoroute/ecoroute/internal/api/response"
	"github.com/ecoroute/ecoroute/internal/featureflags"
	"github.com/ecoroute/ecoroute/internal/provider/resilience"
)

// DefaultCheckTimeout bounds each readiness check.
const DefaultCheckTimeout = 2 * time.Second

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

// OpsHandler serves the liveness, readiness and status endpoints.
type OpsHandler struct {
	version      string
	buildTime    string
	registry     *resilience.Registry
	flags        *featureflags.Service
	checks       map[string]ReadinessCheck
	checkTimeout time.Duration
	now          func() time.Time
}

// OpsConfig holds the dependencies of OpsHandler.
type OpsConfig struct {
	Version   string
	BuildTime string
	Registry  *resilience.Registry
	Flags     *featureflags.Service
	// Checks are run by the readiness probe, keyed by subsystem name.
	Checks       map[string]ReadinessCheck
	CheckTimeout time.Duration
	Now          func() time.Time
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsConfig) *OpsHandler {
	h := &OpsHandler{
		version:      cfg.Version,
		buildTime:    cfg.BuildTime,
		registry:     cfg.Registry,
		flags:        cfg.Flags,
		checks:       cfg.Checks,
		checkTimeout: cfg.CheckTimeout,
		now:          cfg.Now,
	}
	if h.checkTimeout <= 0 {
		h.checkTimeout = DefaultCheckTimeout
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h
}

// HealthCheck handles GET /v1/ops/health. It never touches dependencies.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.Health{
		Status:    models.HealthStatusOK,
		Time:      models.Timestamp(h.now()),
		Version:   h.version,
		BuildTime: h.buildTime,
	})
}

// ReadinessCheck handles GET /v1/ops/ready: 503 when any dependency fails.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status:  models.HealthStatusOK,
		Time:    models.Timestamp(h.now()),
		Version: h.version,
		Checks:  make(map[string]string, len(h.checks)),
	}
	for _, sub := range h.runChecks(r.Context()) {
		if sub.Detail != nil {
			health.Status = models.HealthStatusFail
			health.Checks[sub.Name] = *sub.Detail
			continue
		}
		health.Checks[sub.Name] = "ok"
	}

	code := http.StatusOK
	if health.Status == models.HealthStatusFail {
		code = http.StatusServiceUnavailable
	}
	response.JSON(w, r, code, health)
}

// SystemStatus handles GET /v1/ops/status. A failing dependency or a
// half-open circuit degrades the status; an open circuit fails it.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	status := models.SystemStatus{
		Status:     models.HealthStatusOK,
		Time:       models.Timestamp(h.now()),
		Version:    h.version,
		Subsystems: h.runChecks(r.Context()),
		Providers:  []models.ProviderStatus{},
	}
	for _, sub := range status.Subsystems {
		if sub.Status != models.HealthStatusOK {
			status.Status = models.HealthStatusDegraded
		}
	}

	if h.registry != nil {
		for _, ph := range h.registry.Snapshot() {
			status.Providers = append(status.Providers, providerStatusOf(ph))
		}
		switch h.registry.Status() {
		case resilience.StatusUnhealthy:
			status.Status = models.HealthStatusFail
		case resilience.StatusDegraded:
			if status.Status == models.HealthStatusOK {
				status.Status = models.HealthStatusDegraded
			}
		}
	}

	if h.flags != nil {
		for _, key := range []string{featureflags.FlagPlanningDisabled, featureflags.FlagCachedOnlyAirQuality} {
			if h.flags.IsEnabled(r.Context(), key) {
				status.ActiveDegradationFlags = append(status.ActiveDegradationFlags, key)
			}
		}
	}

	response.JSON(w, r, http.StatusOK, status)
}

// runChecks runs every readiness check in parallel, each under its own
// timeout, and returns the results ordered by name.
func (h *OpsHandler) runChecks(ctx context.Context) []models.SubsystemStatus {
	out := make([]models.SubsystemStatus, 0, len(h.checks))
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for name, check := range h.checks {
		wg.Add(1)
		go func(name string, check ReadinessCheck) {
			defer wg.Done()
			checkCtx, cancel := context.WithTimeout(ctx, h.checkTimeout)
			defer cancel()

			sub := models.SubsystemStatus{Name: name, Status: models.HealthStatusOK}
			if err := check(checkCtx); err != nil {
				detail := err.Error()
				sub.Status = models.HealthStatusFail
				sub.Detail = &detail
			}
			mu.Lock()
			out = append(out, sub)
			mu.Unlock()
		}(name, check)
	}
	wg.Wait()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func providerStatusOf(ph resilience.Health) models.ProviderStatus {
	ps := models.ProviderStatus{
		Provider:            ph.Name,
		Status:              providerLevels[ph.Level()],
		CircuitState:        ph.CircuitState.String(),
		ConsecutiveFailures: int(ph.Counts.ConsecutiveFailures),
		LastSuccessAt:       timestampOrNil(ph.LastSuccessAt),
		LastFailureAt:       timestampOrNil(ph.LastFailureAt),
	}
	if ph.LastError != "" {
		msg := ph.LastError
		ps.Message = &msg
	}
	return ps
}

var providerLevels = map[string]models.HealthStatus{
	resilience.StatusHealthy:   models.HealthStatusOK,
	resilience.StatusDegraded:  models.HealthStatusDegraded,
	resilience.StatusUnhealthy: models.HealthStatusFail,
}

func timestampOrNil(t time.Time) *models.Timestamp {
	if t.IsZero() {
		return nil
	}
	ts := models.Timestamp(t)
	return &ts
}
