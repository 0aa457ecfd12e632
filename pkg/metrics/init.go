package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initHTTPMetrics() {
	r.HTTPRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "authreview_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	r.HTTPRequestDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "authreview_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	r.HTTPRequestsInFlight = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "authreview_http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
	)
}

func (r *Registry) initAnalysisMetrics() {
	r.AnalysisRunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "authreview_analysis_runs_total",
			Help: "Total number of risk analysis runs",
		},
		[]string{"status"},
	)

	r.AnalysisDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "authreview_analysis_duration_seconds",
			Help:    "Risk analysis run latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	r.AnalysisExposures = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "authreview_analysis_exposures",
			Help:    "Number of risk exposures found per analysis run",
			Buckets: []float64{0, 10, 50, 100, 500, 1000, 5000, 10000},
		},
	)

	r.AnalysisRolesAnalyzed = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "authreview_analysis_roles_analyzed",
			Help:    "Number of distinct roles per analysis run",
			Buckets: []float64{1, 10, 50, 100, 500, 1000, 5000},
		},
	)

	r.IngestRowsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "authreview_ingest_rows_total",
			Help: "Total number of CSV rows read",
		},
		[]string{"dataset"},
	)

	r.IngestRowsDropped = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "authreview_ingest_rows_dropped_total",
			Help: "Rows dropped during ingestion for missing key fields",
		},
		[]string{"dataset"},
	)
}

func (r *Registry) initAuthMetrics() {
	r.AuthFailuresTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "authreview_auth_failures_total",
			Help: "Total number of failed authentication attempts",
		},
	)

	r.LoginsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "authreview_logins_total",
			Help: "Total number of login attempts",
		},
		[]string{"status"},
	)
}

func (r *Registry) initDatasetMetrics() {
	r.DatasetsStoredTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "authreview_datasets_stored_total",
			Help: "Total number of uploaded datasets archived",
		},
	)

	r.DatasetBytesWritten = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "authreview_dataset_bytes_written_total",
			Help: "Compressed bytes written to the dataset archive",
		},
	)

	r.DatasetUploadFailures = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "authreview_dataset_upload_failures_total",
			Help: "Failed dataset archive or replication attempts",
		},
	)
}
