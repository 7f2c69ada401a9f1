package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/ecoroute/ecoroute/internal/api/middleware"
)

// setupTestMeter installs a meter provider whose data can be collected on demand.
func setupTestMeter(t *testing.T) *sdkmetric.ManualReader {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(mp)
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return reader
}

// findMetric collects reader and returns the metric called name.
func findMetric(t *testing.T, reader *sdkmetric.ManualReader, name string) metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m
			}
		}
	}
	t.Fatalf("metric %q not recorded", name)
	return metricdata.Metrics{}
}

func attrValue(set attribute.Set, key attribute.Key) attribute.Value {
	v, _ := set.Value(key)
	return v
}

func TestMetrics_RecordsRequest(t *testing.T) {
	reader := setupTestMeter(t)
	metrics, err := middleware.NewMetrics()
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(metrics.Middleware())
	r.Get("/v1/air-quality", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"available":false}`))
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/air-quality?lat=52.37&lon=4.89", http.NoBody))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/air-quality?lat=48.85&lon=2.35", http.NoBody))

	total, ok := findMetric(t, reader, "http.server.request.total").Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, total.DataPoints, 1, "both lookups share one route series")

	dp := total.DataPoints[0]
	assert.Equal(t, int64(2), dp.Value)
	assert.Equal(t, "/v1/air-quality", attrValue(dp.Attributes, "http.route").AsString())
	assert.Equal(t, "GET", attrValue(dp.Attributes, "http.request.method").AsString())
	assert.Equal(t, int64(200), attrValue(dp.Attributes, "http.response.status_code").AsInt64())
	assert.False(t, dp.Attributes.HasValue("error.type"))

	size, ok := findMetric(t, reader, "http.server.response.size").Data.(metricdata.Histogram[int64])
	require.True(t, ok)
	require.Len(t, size.DataPoints, 1)
	assert.Equal(t, int64(38), size.DataPoints[0].Sum)
}

func TestMetrics_ErrorType(t *testing.T) {
	tests := []struct {
		status    int
		wantError bool
	}{
		{http.StatusBadGateway, true},
		{http.StatusServiceUnavailable, true},
		{http.StatusForbidden, false},
		{http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			reader := setupTestMeter(t)
			metrics, err := middleware.NewMetrics()
			require.NoError(t, err)

			handler := metrics.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/v1/trips", http.NoBody))

			total, ok := findMetric(t, reader, "http.server.request.total").Data.(metricdata.Sum[int64])
			require.True(t, ok)
			require.Len(t, total.DataPoints, 1)

			attrs := total.DataPoints[0].Attributes
			assert.Equal(t, int64(tt.status), attrValue(attrs, "http.response.status_code").AsInt64())
			assert.Equal(t, tt.wantError, attrs.HasValue("error.type"))
		})
	}
}

func TestMetrics_InFlightReturnsToZero(t *testing.T) {
	reader := setupTestMeter(t)
	metrics, err := middleware.NewMetrics()
	require.NoError(t, err)

	metrics.Middleware()(okHandler()).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/usage", http.NoBody))

	inFlight, ok := findMetric(t, reader, "http.server.requests_in_flight").Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, inFlight.DataPoints, 1)
	assert.Zero(t, inFlight.DataPoints[0].Value)
}

func TestDomainMetrics_RecordPlan(t *testing.T) {
	reader := setupTestMeter(t)
	dm, err := middleware.NewDomainMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	dm.RecordPlan(ctx, middleware.OutcomeFeasible, 2*time.Second)
	dm.RecordPlan(ctx, middleware.OutcomeFeasible, 3*time.Second)
	dm.RecordPlan(ctx, middleware.OutcomeGated, 0)

	total, ok := findMetric(t, reader, "ecoroute.trip.plan.total").Data.(metricdata.Sum[int64])
	require.True(t, ok)

	byOutcome := map[string]int64{}
	for _, dp := range total.DataPoints {
		byOutcome[attrValue(dp.Attributes, "outcome").AsString()] = dp.Value
	}
	assert.Equal(t, map[string]int64{
		middleware.OutcomeFeasible: 2,
		middleware.OutcomeGated:    1,
	}, byOutcome)

	duration, ok := findMetric(t, reader, "ecoroute.trip.plan.duration").Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	for _, dp := range duration.DataPoints {
		if attrValue(dp.Attributes, "outcome").AsString() == middleware.OutcomeFeasible {
			assert.Equal(t, uint64(2), dp.Count)
			assert.InDelta(t, 5.0, dp.Sum, 1e-9)
		}
	}
}

func TestDomainMetrics_RecordAirQuality(t *testing.T) {
	reader := setupTestMeter(t)
	dm, err := middleware.NewDomainMetrics()
	require.NoError(t, err)

	dm.RecordAirQuality(context.Background(), true, true)

	lookups, ok := findMetric(t, reader, "ecoroute.airquality.lookup.total").Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, lookups.DataPoints, 1)
	assert.True(t, attrValue(lookups.DataPoints[0].Attributes, "available").AsBool())
	assert.True(t, attrValue(lookups.DataPoints[0].Attributes, "stale").AsBool())
}

func TestDomainMetrics_NilIsNoop(t *testing.T) {
	var dm *middleware.DomainMetrics

	assert.NotPanics(t, func() {
		dm.RecordPlan(context.Background(), middleware.OutcomeFailed, time.Second)
		dm.RecordAirQuality(context.Background(), false, false)
	})
}
