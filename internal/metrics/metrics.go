// Package metrics holds the Prometheus collectors for ingestion passes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "internhunt"

// Metrics is nil-safe: every method on a nil *Metrics is a no-op, so the
// orchestrator and tests can run without a registry.
type Metrics struct {
	reg *prometheus.Registry

	ListingsFetched  *prometheus.CounterVec
	ListingsMatched  *prometheus.CounterVec
	ListingsRejected *prometheus.CounterVec
	ListingsAdmitted *prometheus.CounterVec
	SourceFailures   *prometheus.CounterVec
	SourceDuration   *prometheus.HistogramVec
	Passes           *prometheus.CounterVec
	DatasetSize      prometheus.Gauge
}

// New registers every collector on a fresh registry together with the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		ListingsFetched: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listings_fetched_total",
			Help:      "Raw listings returned by source adapters.",
		}, []string{"source"}),
		ListingsMatched: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listings_matched_total",
			Help:      "Listings that passed every eligibility stage.",
		}, []string{"source"}),
		ListingsRejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listings_rejected_total",
			Help:      "Listings dropped by the eligibility filter, by stage.",
		}, []string{"reason"}),
		ListingsAdmitted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listings_admitted_total",
			Help:      "Previously unseen listings persisted to the dataset.",
		}, []string{"source"}),
		SourceFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_failures_total",
			Help:      "Adapter runs that ended in an error or panic.",
		}, []string{"source"}),
		SourceDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_duration_seconds",
			Help:      "Wall time of one adapter fetch.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 12),
		}, []string{"source"}),
		Passes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "passes_total",
			Help:      "Completed ingestion passes by outcome.",
		}, []string{"outcome"}),
		DatasetSize: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_listings",
			Help:      "Listings currently in the dataset.",
		}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

func (m *Metrics) ObserveSource(source string, fetched, matched, admitted int, seconds float64, failed bool) {
	if m == nil {
		return
	}
	m.SourceDuration.WithLabelValues(source).Observe(seconds)
	if failed {
		m.SourceFailures.WithLabelValues(source).Inc()
		return
	}
	m.ListingsFetched.WithLabelValues(source).Add(float64(fetched))
	m.ListingsMatched.WithLabelValues(source).Add(float64(matched))
	m.ListingsAdmitted.WithLabelValues(source).Add(float64(admitted))
}

func (m *Metrics) Rejected(reason string) {
	if m == nil {
		return
	}
	m.ListingsRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) PassFinished(outcome string) {
	if m == nil {
		return
	}
	m.Passes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SetDatasetSize(n int) {
	if m == nil {
		return
	}
	m.DatasetSize.Set(float64(n))
}
