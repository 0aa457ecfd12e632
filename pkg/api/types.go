package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rinexis/authreview/pkg/analysis"
	"github.com/rinexis/authreview/pkg/datasets"
	"github.com/rinexis/authreview/pkg/logging"
	"github.com/rinexis/authreview/pkg/useranalysis"
)

// CORSConfig controls cross-origin request handling
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// DefaultCORSConfig disallows all cross-origin requests
func DefaultCORSConfig() *CORSConfig {
	return &CORSConfig{
		AllowedOrigins: nil,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
		MaxAge:         86400,
	}
}

// NewCORSConfig allows the given origins
func NewCORSConfig(origins []string) *CORSConfig {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = origins
	return cfg
}

// originAllowed reports whether the request origin may make CORS requests
func (c *CORSConfig) originAllowed(origin string) bool {
	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// HealthResponse is the /health payload
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime"`
	HasReport bool      `json:"has_report"`
}

// ErrorResponse represents error responses
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// AnalyzeResponse summarizes a completed analysis run
type AnalyzeResponse struct {
	ReportID      string           `json:"report_id"`
	RunAt         time.Time        `json:"run_at"`
	RiskRowsRead  int              `json:"risk_rows_read"`
	RoleRowsRead  int              `json:"role_rows_read"`
	ExposureCount int              `json:"exposure_count"`
	RoleCount     int              `json:"role_count"`
	Summary       analysis.Summary `json:"summary"`
	RiskDatasetID string           `json:"risk_dataset_id,omitempty"`
	RoleDatasetID string           `json:"role_dataset_id,omitempty"`
}

// ResultsResponse is one page of exposures
type ResultsResponse struct {
	ReportID string    `json:"report_id"`
	RunAt    time.Time `json:"run_at"`
	analysis.Page
}

// SummaryResponse wraps the aggregate metrics of the latest run
type SummaryResponse struct {
	ReportID string           `json:"report_id"`
	RunAt    time.Time        `json:"run_at"`
	Summary  analysis.Summary `json:"summary"`
}

// RolesResponse lists the distinct roles of the latest run
type RolesResponse struct {
	Roles []string `json:"roles"`
}

// UserStatusAnalysisResponse wraps the account status analytics of an
// uploaded user export
type UserStatusAnalysisResponse struct {
	RunAt    time.Time                   `json:"run_at"`
	RowsRead int                         `json:"rows_read"`
	Summary  *useranalysis.StatusSummary `json:"summary"`
}

// UserAccessAnalysisResponse wraps the department and role-distribution
// analytics of an uploaded user export
type UserAccessAnalysisResponse struct {
	RunAt    time.Time                   `json:"run_at"`
	RowsRead int                         `json:"rows_read"`
	Summary  *useranalysis.AccessSummary `json:"summary"`
}

// DatasetsResponse lists archived dataset uploads
type DatasetsResponse struct {
	Datasets []*datasets.Dataset `json:"datasets"`
}

// Helper methods

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Error encoding JSON response", logging.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	response := ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	}
	s.respondJSON(w, status, response)
}
