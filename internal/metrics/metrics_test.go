package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveSource(t *testing.T) {
	m := New()
	m.ObserveSource("Remotive", 10, 4, 2, 1.5, false)
	m.ObserveSource("Remotive", 5, 1, 0, 0.5, false)
	m.ObserveSource("Naukri", 0, 0, 0, 3, true)

	assert.Equal(t, 15.0, testutil.ToFloat64(m.ListingsFetched.WithLabelValues("Remotive")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.ListingsMatched.WithLabelValues("Remotive")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ListingsAdmitted.WithLabelValues("Remotive")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SourceFailures.WithLabelValues("Naukri")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ListingsFetched.WithLabelValues("Naukri")))

	m.Rejected("season")
	m.PassFinished("ok")
	m.SetDatasetSize(42)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ListingsRejected.WithLabelValues("season")))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.DatasetSize))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveSource("x", 1, 1, 1, 1, false)
		m.Rejected("relevance")
		m.PassFinished("failed")
		m.SetDatasetSize(1)
	})
	assert.Nil(t, m.Registry())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.PassFinished("ok")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `internhunt_passes_total{outcome="ok"} 1`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
