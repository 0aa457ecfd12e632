package metrics

import (
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}

	if r.HTTPRequestsTotal == nil {
		t.Error("HTTPRequestsTotal not initialized")
	}
	if r.AnalysisRunsTotal == nil {
		t.Error("AnalysisRunsTotal not initialized")
	}
	if r.IngestRowsDropped == nil {
		t.Error("IngestRowsDropped not initialized")
	}
	if r.LoginsTotal == nil {
		t.Error("LoginsTotal not initialized")
	}
	if r.registry == nil {
		t.Error("Prometheus registry not initialized")
	}
}

func TestDefaultRegistry(t *testing.T) {
	r1 := DefaultRegistry()
	r2 := DefaultRegistry()

	if r1 != r2 {
		t.Error("DefaultRegistry() should return the same instance")
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	r := NewRegistry()

	r.RecordHTTPRequest("GET", "/api/analysis", "200", 100*time.Millisecond)
	r.RecordHTTPRequest("POST", "/api/analysis", "201", 200*time.Millisecond)
	r.RecordHTTPRequest("GET", "/api/analysis", "404", 50*time.Millisecond)

	counter, err := r.HTTPRequestsTotal.GetMetricWithLabelValues("GET", "/api/analysis", "200")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}

	var metric dto.Metric
	if err := counter.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}

	if metric.Counter.GetValue() != 1 {
		t.Errorf("Counter value = %v, want 1", metric.Counter.GetValue())
	}
}

func TestRecordAnalysisRun(t *testing.T) {
	r := NewRegistry()

	r.RecordAnalysisRun("success", 50*time.Millisecond, 42, 7)
	r.RecordAnalysisRun("success", 80*time.Millisecond, 10, 3)
	r.RecordAnalysisRun("error", 0, 0, 0)

	successCounter, err := r.AnalysisRunsTotal.GetMetricWithLabelValues("success")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}

	var metric dto.Metric
	if err := successCounter.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 2 {
		t.Errorf("Success counter = %v, want 2", metric.Counter.GetValue())
	}

	errorCounter, err := r.AnalysisRunsTotal.GetMetricWithLabelValues("error")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}
	if err := errorCounter.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 1 {
		t.Errorf("Error counter = %v, want 1", metric.Counter.GetValue())
	}
}

func TestRecordLogin(t *testing.T) {
	r := NewRegistry()

	r.RecordLogin(true)
	r.RecordLogin(false)
	r.RecordLogin(false)

	var metric dto.Metric
	failures, err := r.LoginsTotal.GetMetricWithLabelValues("failure")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}
	if err := failures.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 2 {
		t.Errorf("Failure counter = %v, want 2", metric.Counter.GetValue())
	}

	if err := r.AuthFailuresTotal.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 2 {
		t.Errorf("AuthFailuresTotal = %v, want 2", metric.Counter.GetValue())
	}
}

func TestRecordIngest(t *testing.T) {
	r := NewRegistry()

	r.RecordIngest("risk", 100, 3)
	r.RecordIngest("risk", 50, 0)

	var metric dto.Metric
	read, err := r.IngestRowsTotal.GetMetricWithLabelValues("risk")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}
	if err := read.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 150 {
		t.Errorf("Rows read = %v, want 150", metric.Counter.GetValue())
	}

	dropped, err := r.IngestRowsDropped.GetMetricWithLabelValues("risk")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}
	if err := dropped.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 3 {
		t.Errorf("Rows dropped = %v, want 3", metric.Counter.GetValue())
	}
}
