package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"parcel-service/internal/metrics"
	testlog "parcel-service/internal/testutil"
)

func TestObservability_UsesRoutePatternForLabels(t *testing.T) {
	t.Parallel()

	m := metrics.NewHTTP()
	rec := testlog.New()

	r := chi.NewRouter()
	r.Use(Observability(m, rec.Logger()))
	r.Get("/deliveries/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/deliveries/123", nil))
	require.Equal(t, http.StatusNoContent, resp.Code)

	require.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues(http.MethodGet, "/deliveries/{id}", "204")))
	require.Equal(t, uint64(1), histogramCount(t, m.Duration, http.MethodGet, "/deliveries/{id}", "204"))

	e, ok := rec.Find("http request")
	require.True(t, ok)
	require.Equal(t, "/deliveries/{id}", e.Field("path"))
	require.Equal(t, 204, e.Field("status"))
}

func TestObservability_ImplicitOKAndNilMetrics(t *testing.T) {
	t.Parallel()

	h := Observability(nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/raw", nil))
	require.Equal(t, http.StatusOK, resp.Code)
}

func histogramCount(t *testing.T, hv *prometheus.HistogramVec, method, path, status string) uint64 {
	t.Helper()

	obs, err := hv.GetMetricWithLabelValues(method, path, status)
	require.NoError(t, err)

	metric, ok := obs.(prometheus.Metric)
	require.True(t, ok, "must implement prometheus.Metric")

	m := &dto.Metric{}
	require.NoError(t, metric.Write(m))

	h := m.GetHistogram()
	require.NotNil(t, h)
	return h.GetSampleCount()
}
