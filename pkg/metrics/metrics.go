package metrics

import (
	"time"
)

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordAnalysisRun records a completed risk analysis run
func (r *Registry) RecordAnalysisRun(status string, duration time.Duration, exposures, roles int) {
	r.AnalysisRunsTotal.WithLabelValues(status).Inc()
	if status == "success" {
		r.AnalysisDuration.Observe(duration.Seconds())
		r.AnalysisExposures.Observe(float64(exposures))
		r.AnalysisRolesAnalyzed.Observe(float64(roles))
	}
}

// RecordIngest records rows read and dropped for a dataset kind
func (r *Registry) RecordIngest(dataset string, rowsRead, rowsDropped int) {
	r.IngestRowsTotal.WithLabelValues(dataset).Add(float64(rowsRead))
	r.IngestRowsDropped.WithLabelValues(dataset).Add(float64(rowsDropped))
}

// RecordLogin records a login attempt
func (r *Registry) RecordLogin(success bool) {
	if success {
		r.LoginsTotal.WithLabelValues("success").Inc()
	} else {
		r.LoginsTotal.WithLabelValues("failure").Inc()
		r.AuthFailuresTotal.Inc()
	}
}

// RecordDatasetStored records a successful dataset archive write
func (r *Registry) RecordDatasetStored(compressedBytes int) {
	r.DatasetsStoredTotal.Inc()
	r.DatasetBytesWritten.Add(float64(compressedBytes))
}
