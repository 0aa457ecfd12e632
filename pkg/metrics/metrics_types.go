// Package metrics exposes Prometheus instrumentation for the review server.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Analysis Metrics
	AnalysisRunsTotal     *prometheus.CounterVec
	AnalysisDuration      prometheus.Histogram
	AnalysisExposures     prometheus.Histogram
	AnalysisRolesAnalyzed prometheus.Histogram
	IngestRowsTotal       *prometheus.CounterVec
	IngestRowsDropped     *prometheus.CounterVec

	// Auth Metrics
	AuthFailuresTotal prometheus.Counter
	LoginsTotal       *prometheus.CounterVec

	// Dataset Metrics
	DatasetsStoredTotal   prometheus.Counter
	DatasetBytesWritten   prometheus.Counter
	DatasetUploadFailures prometheus.Counter

	registry *prometheus.Registry
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initHTTPMetrics()
	r.initAnalysisMetrics()
	r.initAuthMetrics()
	r.initDatasetMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
