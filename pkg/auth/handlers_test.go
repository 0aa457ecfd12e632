package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestHandlers(t *testing.T) (*UserStore, *JWTManager, *AuthHandler, *UserManagementHandler) {
	t.Helper()
	store := NewUserStore()
	jwtManager, err := NewJWTManager(testSecret, DefaultTokenDuration, DefaultRefreshTokenDuration)
	if err != nil {
		t.Fatalf("NewJWTManager failed: %v", err)
	}
	return store, jwtManager, NewAuthHandler(store, jwtManager), NewUserManagementHandler(store, jwtManager)
}

func TestAuthHandler_Login(t *testing.T) {
	store, _, handler, _ := newTestHandlers(t)

	if _, err := store.CreateUser(context.Background(), "alice", "alice@example.com", "AlicePass123", RoleAdmin, AdminPermissions()); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	tests := []struct {
		name           string
		requestBody    map[string]any
		expectedStatus int
		checkResponse  func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:           "Valid login",
			requestBody:    map[string]any{"username": "alice", "password": "AlicePass123"},
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, rr *httptest.ResponseRecorder) {
				var resp LoginResponse
				if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
					t.Fatalf("Failed to parse response: %v", err)
				}
				if resp.AccessToken == "" {
					t.Error("Expected non-empty access_token")
				}
				if resp.RefreshToken == "" {
					t.Error("Expected non-empty refresh_token")
				}
				if resp.ExpiresIn <= 0 {
					t.Error("Expected positive expires_in")
				}
				if resp.User.Username != "alice" {
					t.Errorf("user.username = %q", resp.User.Username)
				}
				if !resp.User.Permissions.SuperUserAccess {
					t.Error("Expected admin permissions in login response")
				}
			},
		},
		{
			name:           "Wrong password",
			requestBody:    map[string]any{"username": "alice", "password": "WrongPass123"},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Non-existent user",
			requestBody:    map[string]any{"username": "nobody", "password": "password1"},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Empty username",
			requestBody:    map[string]any{"username": "", "password": "password1"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid JSON",
			requestBody:    nil,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body []byte
			if tt.requestBody != nil {
				body, _ = json.Marshal(tt.requestBody)
			} else {
				body = []byte("invalid json")
			}

			req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d. Body: %s", tt.expectedStatus, rr.Code, rr.Body.String())
			}
			if tt.checkResponse != nil {
				tt.checkResponse(t, rr)
			}
		})
	}
}

func TestAuthHandler_Refresh(t *testing.T) {
	store, jwtManager, handler, _ := newTestHandlers(t)

	user, err := store.CreateUser(context.Background(), "alice", "alice@example.com", "AlicePass123", RoleViewer, DefaultPermissions())
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	refresh, err := jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		t.Fatalf("Failed to generate refresh token: %v", err)
	}

	body, _ := json.Marshal(RefreshRequest{RefreshToken: refresh})
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rr.Code, rr.Body.String())
	}
	var resp RefreshResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.AccessToken == "" {
		t.Error("Expected non-empty access_token")
	}

	// Bogus refresh token is rejected
	body, _ = json.Marshal(RefreshRequest{RefreshToken: "garbage"})
	req = httptest.NewRequest(http.MethodPost, "/auth/refresh", bytes.NewReader(body))
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rr.Code)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	store, jwtManager, handler, _ := newTestHandlers(t)

	user, err := store.CreateUser(context.Background(), "alice", "alice@example.com", "AlicePass123", RoleAuditor, DefaultPermissions())
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	token, err := jwtManager.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rr.Code, rr.Body.String())
	}
	var resp MeResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.User.Username != "alice" || resp.User.Role != RoleAuditor {
		t.Errorf("user = %+v", resp.User)
	}

	// Missing token
	req = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rr.Code)
	}
}

func adminToken(t *testing.T, store *UserStore, jwtManager *JWTManager) (string, *User) {
	t.Helper()
	admin, err := store.CreateUser(context.Background(), "admin", "admin@example.com", "AdminPass123", RoleAdmin, AdminPermissions())
	if err != nil {
		t.Fatalf("Failed to create admin: %v", err)
	}
	token, err := jwtManager.GenerateToken(admin.ID, admin.Username, admin.Role)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	return token, admin
}

func TestUserManagementHandler_RequiresAdmin(t *testing.T) {
	store, jwtManager, _, handler := newTestHandlers(t)

	viewer, err := store.CreateUser(context.Background(), "viewer", "viewer@example.com", "ViewerPass1", RoleViewer, DefaultPermissions())
	if err != nil {
		t.Fatalf("Failed to create viewer: %v", err)
	}
	token, err := jwtManager.GenerateToken(viewer.ID, viewer.Username, viewer.Role)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rr.Code)
	}

	// No token at all
	req = httptest.NewRequest(http.MethodGet, "/api/users", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rr.Code)
	}
}

func TestUserManagementHandler_CRUD(t *testing.T) {
	store, jwtManager, _, handler := newTestHandlers(t)
	token, admin := adminToken(t, store, jwtManager)

	do := func(method, path string, payload any) *httptest.ResponseRecorder {
		var body []byte
		if payload != nil {
			body, _ = json.Marshal(payload)
		}
		req := httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	// Create
	rr := do(http.MethodPost, "/api/users", CreateUserRequest{
		Username: "auditor1",
		Email:    "auditor1@example.com",
		Password: "AuditorPass1",
		Role:     RoleAuditor,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body: %s", rr.Code, rr.Body.String())
	}
	var created CreateUserResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if created.User.Role != RoleAuditor {
		t.Errorf("role = %q", created.User.Role)
	}
	if created.User.Permissions.Audit.Enabled {
		t.Error("new user should start with default permissions")
	}

	// List includes both users
	rr = do(http.MethodGet, "/api/users", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d", rr.Code)
	}
	var list ListUsersResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if len(list.Users) != 2 {
		t.Errorf("user count = %d, want 2", len(list.Users))
	}

	// Update permissions
	perms := DefaultPermissions()
	perms.Audit.Enabled = true
	perms.Audit.RoleAnalysis = true
	rr = do(http.MethodPut, "/api/users/"+created.User.ID, UpdateUserRequest{Permissions: &perms})
	if rr.Code != http.StatusOK {
		t.Fatalf("update status = %d, body: %s", rr.Code, rr.Body.String())
	}
	var updated UpdateUserResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &updated); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if !updated.User.Permissions.Audit.RoleAnalysis {
		t.Error("permission update not applied")
	}

	// Change password
	rr = do(http.MethodPut, "/api/users/"+created.User.ID+"/password", ChangePasswordRequest{NewPassword: "RotatedPass1"})
	if rr.Code != http.StatusOK {
		t.Fatalf("change password status = %d, body: %s", rr.Code, rr.Body.String())
	}

	// Self-delete is rejected
	rr = do(http.MethodDelete, "/api/users/"+admin.ID, nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("self-delete status = %d, want 400", rr.Code)
	}

	// Delete the created user
	rr = do(http.MethodDelete, "/api/users/"+created.User.ID, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rr.Code)
	}
	rr = do(http.MethodGet, "/api/users/"+created.User.ID, nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rr.Code)
	}
}
