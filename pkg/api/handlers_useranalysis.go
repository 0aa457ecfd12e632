package api

import (
	"bytes"
	"net/http"
	"time"

	"github.com/rinexis/authreview/pkg/ingest"
	"github.com/rinexis/authreview/pkg/logging"
	"github.com/rinexis/authreview/pkg/useranalysis"
)

// handleUserStatusAnalysis computes account status analytics (expired,
// locked, inactive, creation trend) from an uploaded user status export.
// The file is the multipart form part "users".
func (s *Server) handleUserStatusAnalysis(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	data, _, ok := s.readUserUpload(w, r)
	if !ok {
		return
	}

	rows, err := ingest.ReadUserStatusExport(bytes.NewReader(data), ingest.Options{MaxRows: s.maxRows})
	if err != nil {
		s.respondIngestError(w, "user status export", err)
		return
	}

	summary := useranalysis.AnalyzeStatus(rows, time.Now())
	s.metricsRegistry.RecordIngest("user-status", len(rows), len(rows)-summary.TotalUsers)

	s.logger.Info("User status analysis completed",
		logging.Int("total_users", summary.TotalUsers),
		logging.Int("expired_users", summary.ExpiredUsers),
		logging.Int("locked_users", summary.LockedUsers))

	s.respondJSON(w, http.StatusOK, UserStatusAnalysisResponse{
		RunAt:    time.Now(),
		RowsRead: len(rows),
		Summary:  summary,
	})
}

// handleUserAccessAnalysis computes department and role-distribution
// analytics from an uploaded user access export
func (s *Server) handleUserAccessAnalysis(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	data, _, ok := s.readUserUpload(w, r)
	if !ok {
		return
	}

	rows, err := ingest.ReadUserAccessExport(bytes.NewReader(data), ingest.Options{MaxRows: s.maxRows})
	if err != nil {
		s.respondIngestError(w, "user access export", err)
		return
	}

	summary := useranalysis.AnalyzeAccess(rows)
	s.metricsRegistry.RecordIngest("user-access", len(rows), len(rows)-summary.TotalUsers)

	s.logger.Info("User access analysis completed",
		logging.Int("total_users", summary.TotalUsers),
		logging.Int("departments", len(summary.Departments)))

	s.respondJSON(w, http.StatusOK, UserAccessAnalysisResponse{
		RunAt:    time.Now(),
		RowsRead: len(rows),
		Summary:  summary,
	})
}

// readUserUpload parses the multipart request and returns the "users" file.
// On failure it writes the error response and reports ok=false.
func (s *Server) readUserUpload(w http.ResponseWriter, r *http.Request) (data []byte, filename string, ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid multipart request")
		return nil, "", false
	}

	data, filename, err := readFormFile(r, "users")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return nil, "", false
	}
	return data, filename, true
}
