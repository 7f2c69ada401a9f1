package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/ecoroute/ecoroute/internal/api/middleware"

// Metrics holds the OpenTelemetry metrics instruments.
type Metrics struct {
	requestDuration  metric.Float64Histogram
	requestTotal     metric.Int64Counter
	requestsInFlight metric.Int64UpDownCounter
	responseSize     metric.Int64Histogram
}

// NewMetrics creates a new Metrics instance with initialized instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)

	requestDuration, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("Duration of HTTP server requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requestTotal, err := meter.Int64Counter(
		"http.server.request.total",
		metric.WithDescription("Total number of HTTP server requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	requestsInFlight, err := meter.Int64UpDownCounter(
		"http.server.requests_in_flight",
		metric.WithDescription("Number of HTTP requests currently being processed"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	responseSize, err := meter.Int64Histogram(
		"http.server.response.size",
		metric.WithDescription("Size of HTTP server responses in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		requestsInFlight: requestsInFlight,
		responseSize:     responseSize,
	}, nil
}

// Middleware records duration, count and response size per request, keyed by
// method, matched route and status.
func (m *Metrics) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := r.Context()

			// The route is unknown until chi has matched it.
			inFlight := metric.WithAttributes(attribute.String("http.request.method", r.Method))
			m.requestsInFlight.Add(ctx, 1, inFlight)
			defer m.requestsInFlight.Add(ctx, -1, inFlight)

			wrapped := newResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			attrs := []attribute.KeyValue{
				attribute.String("http.request.method", r.Method),
				attribute.String("http.route", routePattern(r)),
				attribute.Int("http.response.status_code", wrapped.statusCode),
			}
			if wrapped.statusCode >= http.StatusInternalServerError {
				attrs = append(attrs, attribute.String("error.type", strconv.Itoa(wrapped.statusCode)))
			}
			set := metric.WithAttributeSet(attribute.NewSet(attrs...))

			m.requestDuration.Record(ctx, time.Since(start).Seconds(), set)
			m.requestTotal.Add(ctx, 1, set)
			m.responseSize.Record(ctx, wrapped.written, set)
		})
	}
}

// Outcome labels for planning requests.
const (
	OutcomeFeasible   = "feasible"
	OutcomeInfeasible = "infeasible"
	OutcomeFailed     = "failed"
	OutcomeSuperseded = "superseded"
	OutcomeGated      = "gated"
)

// DomainMetrics counts trip planning and air quality outcomes.
// A nil *DomainMetrics records nothing.
type DomainMetrics struct {
	planTotal    metric.Int64Counter
	planDuration metric.Float64Histogram
	aqiLookups   metric.Int64Counter
}

// NewDomainMetrics creates the planning and air quality instruments.
func NewDomainMetrics() (*DomainMetrics, error) {
	meter := otel.Meter(meterName)

	planTotal, err := meter.Int64Counter(
		"ecoroute.trip.plan.total",
		metric.WithDescription("Trip planning requests by outcome"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	planDuration, err := meter.Float64Histogram(
		"ecoroute.trip.plan.duration",
		metric.WithDescription("Duration of trip planning calls in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	aqiLookups, err := meter.Int64Counter(
		"ecoroute.airquality.lookup.total",
		metric.WithDescription("Air quality lookups by availability"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	return &DomainMetrics{
		planTotal:    planTotal,
		planDuration: planDuration,
		aqiLookups:   aqiLookups,
	}, nil
}

// RecordPlan records one planning request.
func (m *DomainMetrics) RecordPlan(ctx context.Context, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.planTotal.Add(ctx, 1, attrs)
	m.planDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordAirQuality records one air quality lookup.
func (m *DomainMetrics) RecordAirQuality(ctx context.Context, available, stale bool) {
	if m == nil {
		return
	}
	m.aqiLookups.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("available", available),
		attribute.Bool("stale", stale),
	))
}

// routePattern returns the matched chi route, or the raw path outside a router.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
