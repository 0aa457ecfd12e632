package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rinexis/authreview/pkg/analysis"
	"github.com/rinexis/authreview/pkg/datasets"
	"github.com/rinexis/authreview/pkg/ingest"
	"github.com/rinexis/authreview/pkg/logging"
)

// Upload size cap: two CSV files plus multipart overhead
const maxUploadBytes = 64 << 20

// handleAnalyze runs a risk analysis over an uploaded risk dataset and role
// assignment file. Both files are multipart form parts: "risks" and "roles".
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid multipart request")
		return
	}

	riskData, riskName, err := readFormFile(r, "risks")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	roleData, roleName, err := readFormFile(r, "roles")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	opts := ingest.Options{MaxRows: s.maxRows}

	riskRows, err := ingest.ReadRiskDataset(bytes.NewReader(riskData), opts)
	if err != nil {
		s.metricsRegistry.RecordAnalysisRun("error", 0, 0, 0)
		s.respondIngestError(w, "risk dataset", err)
		return
	}
	roleRows, err := ingest.ReadRoleAssignments(bytes.NewReader(roleData), opts)
	if err != nil {
		s.metricsRegistry.RecordAnalysisRun("error", 0, 0, 0)
		s.respondIngestError(w, "role assignments", err)
		return
	}

	start := time.Now()
	result := analysis.Analyze(riskRows, roleRows)
	elapsed := time.Since(start)

	s.metricsRegistry.RecordIngest("risk", len(riskRows), countDroppedRiskRows(riskRows))
	s.metricsRegistry.RecordIngest("roles", len(roleRows), countDroppedRoleRows(roleRows))
	s.metricsRegistry.RecordAnalysisRun("success", elapsed, len(result.Exposures), len(result.Roles))

	report := &analysis.Report{
		ID:             uuid.New().String(),
		RunAt:          time.Now(),
		RiskRowsRead:   len(riskRows),
		RoleRowsRead:   len(roleRows),
		DurationMillis: elapsed.Milliseconds(),
		Result:         result,
	}

	// Archive the raw uploads so the run can be re-examined later
	if s.archive != nil {
		if ds, err := s.archive.Store(r.Context(), datasets.KindRisk, riskName, riskData); err == nil {
			report.RiskDatasetID = ds.ID
			s.metricsRegistry.RecordDatasetStored(int(ds.CompressedSize))
		} else {
			s.metricsRegistry.DatasetUploadFailures.Inc()
			s.logger.Warn("Failed to archive risk dataset", logging.Error(err))
		}
		if ds, err := s.archive.Store(r.Context(), datasets.KindRoles, roleName, roleData); err == nil {
			report.RoleDatasetID = ds.ID
			s.metricsRegistry.RecordDatasetStored(int(ds.CompressedSize))
		} else {
			s.metricsRegistry.DatasetUploadFailures.Inc()
			s.logger.Warn("Failed to archive role dataset", logging.Error(err))
		}
	}

	s.results.Set(report)

	s.logger.Info("Analysis completed",
		logging.String("report_id", report.ID),
		logging.Count(len(result.Exposures)),
		logging.Latency(elapsed))

	s.respondJSON(w, http.StatusOK, AnalyzeResponse{
		ReportID:      report.ID,
		RunAt:         report.RunAt,
		RiskRowsRead:  report.RiskRowsRead,
		RoleRowsRead:  report.RoleRowsRead,
		ExposureCount: len(result.Exposures),
		RoleCount:     len(result.Roles),
		Summary:       result.Summary,
		RiskDatasetID: report.RiskDatasetID,
		RoleDatasetID: report.RoleDatasetID,
	})
}

// handleResults returns one page of exposures from the latest run.
// Query parameters: role (default "all"), page (default 1), page_size.
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	report, err := s.results.Latest()
	if err != nil {
		s.respondError(w, http.StatusNotFound, "No analysis has been run yet")
		return
	}

	role := r.URL.Query().Get("role")
	if role == "" {
		role = analysis.RoleFilterAll
	}
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", s.pageSize)

	s.respondJSON(w, http.StatusOK, ResultsResponse{
		ReportID: report.ID,
		RunAt:    report.RunAt,
		Page:     analysis.FilterPage(report.Result.Exposures, role, page, pageSize),
	})
}

// handleSummary returns the aggregate metrics of the latest run
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	report, err := s.results.Latest()
	if err != nil {
		s.respondError(w, http.StatusNotFound, "No analysis has been run yet")
		return
	}

	s.respondJSON(w, http.StatusOK, SummaryResponse{
		ReportID: report.ID,
		RunAt:    report.RunAt,
		Summary:  report.Result.Summary,
	})
}

// handleRoles returns the distinct roles of the latest run, for filters
func (s *Server) handleRoles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	report, err := s.results.Latest()
	if err != nil {
		s.respondError(w, http.StatusNotFound, "No analysis has been run yet")
		return
	}

	s.respondJSON(w, http.StatusOK, RolesResponse{Roles: report.Result.Roles})
}

// handleDatasets lists archived uploads
func (s *Server) handleDatasets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if s.archive == nil {
		s.respondError(w, http.StatusServiceUnavailable, "Dataset archive not configured")
		return
	}

	s.respondJSON(w, http.StatusOK, DatasetsResponse{Datasets: s.archive.List()})
}

// handleDataset serves or deletes one archived upload by ID
func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		s.respondError(w, http.StatusServiceUnavailable, "Dataset archive not configured")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/analysis/datasets/")
	if id == "" {
		s.respondError(w, http.StatusBadRequest, "Dataset ID is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		ds, data, err := s.archive.Get(id)
		if err != nil {
			s.respondError(w, http.StatusNotFound, "Dataset not found")
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ds.Filename))
		w.WriteHeader(http.StatusOK)
		w.Write(data)

	case http.MethodDelete:
		if err := s.archive.Delete(id); err != nil {
			s.respondError(w, http.StatusNotFound, "Dataset not found")
			return
		}
		s.respondJSON(w, http.StatusOK, map[string]bool{"success": true})

	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// Helpers

func readFormFile(r *http.Request, field string) ([]byte, string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", fmt.Errorf("missing %q file upload", field)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %q upload: %v", field, err)
	}
	return data, header.Filename, nil
}

func (s *Server) respondIngestError(w http.ResponseWriter, which string, err error) {
	switch {
	case errors.Is(err, ingest.ErrTooManyRows):
		s.respondError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Invalid %s: %v", which, err))
	case errors.Is(err, ingest.ErrEmptyFile), errors.Is(err, ingest.ErrMissingColumn):
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s: %v", which, err))
	default:
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("Failed to parse %s: %v", which, err))
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

// Rows the graph builder will drop for missing key fields. Counted here so
// the ingest metrics reflect effective rows, while the permissive-drop
// semantics stay in the builder.
func countDroppedRiskRows(rows []analysis.RiskRow) int {
	dropped := 0
	for _, row := range rows {
		if row.RiskID == "" || row.FunctionID == "" {
			dropped++
		}
	}
	return dropped
}

func countDroppedRoleRows(rows []analysis.RoleRow) int {
	dropped := 0
	for _, row := range rows {
		if row.Role == "" || row.Action == "" {
			dropped++
		}
	}
	return dropped
}
