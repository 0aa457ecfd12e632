package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rinexis/authreview/pkg/auth"
)

const userStatusCSV = `User ID,Valid To,Valid Through,User Group,Lock Status,Creation Date,Last Logon Date
U1,,2099-12-31,FINANCE,0,2024-03-10,2099-01-01
U2,,2020-06-30,IT,64,2023-11-02,2020-05-20
,,2099-12-31,FINANCE,0,2024-01-01,2099-01-01
`

const userAccessCSV = `User,Department,Roles
alice,Finance,AP_CLERK;GL_POST;AP_REVIEW
bob,IT,BASIS_ADMIN
carol,Finance,AP_CLERK
`

func userUploadRequest(t *testing.T, path, token, csv string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("users", "users.csv")
	if err != nil {
		t.Fatalf("CreateFormFile failed: %v", err)
	}
	part.Write([]byte(csv))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

// userAnalysisToken creates an auditor whose audit.userAnalysis flag is set
// but who cannot run role analyses
func userAnalysisToken(t *testing.T, srv *Server, store *auth.UserStore) string {
	t.Helper()
	perms := auth.DefaultPermissions()
	perms.Audit.Enabled = true
	perms.Audit.UserAnalysis = true
	return createUserWithToken(t, srv, store, "useraud", auth.RoleAuditor, perms)
}

func TestUserStatusAnalysis(t *testing.T) {
	srv, handler, store := newTestServer(t)
	token := userAnalysisToken(t, srv, store)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, userUploadRequest(t, "/api/analysis/user-status", token, userStatusCSV))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rr.Code, rr.Body.String())
	}

	var resp UserStatusAnalysisResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.RowsRead != 3 {
		t.Errorf("RowsRead = %d, want 3", resp.RowsRead)
	}
	// The row without a user ID is dropped from the totals
	if resp.Summary.TotalUsers != 2 {
		t.Errorf("TotalUsers = %d, want 2", resp.Summary.TotalUsers)
	}
	// U2 is expired, locked, and inactive all at once
	if resp.Summary.ExpiredUsers != 1 || resp.Summary.LockedUsers != 1 || resp.Summary.InactiveUsers != 1 {
		t.Errorf("expired/locked/inactive = %d/%d/%d, want 1/1/1",
			resp.Summary.ExpiredUsers, resp.Summary.LockedUsers, resp.Summary.InactiveUsers)
	}
}

func TestUserAccessAnalysis(t *testing.T) {
	srv, handler, store := newTestServer(t)
	token := userAnalysisToken(t, srv, store)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, userUploadRequest(t, "/api/analysis/user-access", token, userAccessCSV))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rr.Code, rr.Body.String())
	}

	var resp UserAccessAnalysisResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.Summary.TotalUsers != 3 {
		t.Errorf("TotalUsers = %d, want 3", resp.Summary.TotalUsers)
	}
	if len(resp.Summary.Departments) != 2 || resp.Summary.Departments[0].Department != "Finance" {
		t.Errorf("Departments = %+v", resp.Summary.Departments)
	}
	if resp.Summary.AccessLevels.Medium != 1 || resp.Summary.AccessLevels.Low != 2 {
		t.Errorf("AccessLevels = %+v", resp.Summary.AccessLevels)
	}
}

func TestUserAnalysis_PermissionGating(t *testing.T) {
	srv, handler, store := newTestServer(t)

	// Role-analysis rights alone do not grant the user analytics endpoints
	perms := auth.DefaultPermissions()
	perms.Audit.Enabled = true
	perms.Audit.RoleAnalysis = true
	roleToken := createUserWithToken(t, srv, store, "roleaud", auth.RoleAuditor, perms)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, userUploadRequest(t, "/api/analysis/user-status", roleToken, userStatusCSV))
	if rr.Code != http.StatusForbidden {
		t.Errorf("role auditor status = %d, want 403", rr.Code)
	}

	// The userAnalysis flag opens them
	token := userAnalysisToken(t, srv, store)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, userUploadRequest(t, "/api/analysis/user-access", token, userAccessCSV))
	if rr.Code != http.StatusOK {
		t.Errorf("user auditor status = %d, want 200. Body: %s", rr.Code, rr.Body.String())
	}

	// But not the role analysis upload
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, uploadRequest(t, token, riskCSV, rolesCSV))
	if rr.Code != http.StatusForbidden {
		t.Errorf("user auditor role-risks status = %d, want 403", rr.Code)
	}
}

func TestUserStatusAnalysis_InvalidUpload(t *testing.T) {
	srv, handler, store := newTestServer(t)
	token := userAnalysisToken(t, srv, store)

	// Missing required columns
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, userUploadRequest(t, "/api/analysis/user-status", token, "User ID\nU1\n"))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400. Body: %s", rr.Code, rr.Body.String())
	}

	// Missing the users file entirely
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/analysis/user-status", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("missing file status = %d, want 400", rr.Code)
	}
}
