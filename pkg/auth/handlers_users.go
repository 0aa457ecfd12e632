package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rinexis/authreview/pkg/validation"
)

// UserManagementHandler handles user management endpoints
type UserManagementHandler struct {
	directory  Directory
	jwtManager *JWTManager
}

// NewUserManagementHandler creates a new user management handler
func NewUserManagementHandler(directory Directory, jwtManager *JWTManager) *UserManagementHandler {
	return &UserManagementHandler{
		directory:  directory,
		jwtManager: jwtManager,
	}
}

// ServeHTTP implements http.Handler interface for routing
func (h *UserManagementHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// All user management endpoints require authentication and admin role
	claims, err := h.extractAndValidateToken(r)
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if claims.Role != RoleAdmin {
		h.respondError(w, http.StatusForbidden, "Admin access required")
		return
	}

	path := r.URL.Path

	switch {
	case path == "/api/users" && r.Method == http.MethodGet:
		h.handleListUsers(w, r)
	case path == "/api/users" && r.Method == http.MethodPost:
		h.handleCreateUser(w, r)
	case strings.HasSuffix(path, "/password") && r.Method == http.MethodPut:
		h.handleChangePassword(w, r)
	case strings.HasPrefix(path, "/api/users/") && r.Method == http.MethodGet:
		h.handleGetUser(w, r)
	case strings.HasPrefix(path, "/api/users/") && r.Method == http.MethodPut:
		h.handleUpdateUser(w, r)
	case strings.HasPrefix(path, "/api/users/") && r.Method == http.MethodDelete:
		h.handleDeleteUser(w, r, claims)
	default:
		h.respondError(w, http.StatusNotFound, "Not found")
	}
}

// extractUserID extracts user ID from URL path
func extractUserID(path string) string {
	// Path format: /api/users/{id} or /api/users/{id}/password
	parts := strings.Split(strings.TrimPrefix(path, "/api/users/"), "/")
	if len(parts) > 0 {
		return parts[0]
	}
	return ""
}

// handleListUsers returns all users
func (h *UserManagementHandler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.directory.ListUsers(r.Context())
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to list users")
		return
	}

	response := make([]UserResponse, 0, len(users))
	for _, user := range users {
		response = append(response, toUserResponse(user))
	}

	h.respondJSON(w, http.StatusOK, ListUsersResponse{Users: response})
}

// handleCreateUser creates a new user
func (h *UserManagementHandler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Role == "" {
		req.Role = RoleViewer // Default role
	}
	if err := validation.Struct(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	perms := DefaultPermissions()
	if req.Permissions != nil {
		perms = *req.Permissions
	}

	user, err := h.directory.CreateUser(r.Context(), req.Username, req.Email, req.Password, req.Role, perms)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("Failed to create user: %v", err))
		return
	}

	h.respondJSON(w, http.StatusCreated, CreateUserResponse{User: toUserResponse(user)})
}

// handleGetUser returns a specific user
func (h *UserManagementHandler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	userID := extractUserID(r.URL.Path)
	if userID == "" {
		h.respondError(w, http.StatusBadRequest, "User ID is required")
		return
	}

	user, err := h.directory.GetUserByID(r.Context(), userID)
	if err != nil {
		h.respondError(w, http.StatusNotFound, "User not found")
		return
	}

	h.respondJSON(w, http.StatusOK, GetUserResponse{User: toUserResponse(user)})
}

// handleUpdateUser updates a user's email, role, or permission set
func (h *UserManagementHandler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	userID := extractUserID(r.URL.Path)
	if userID == "" {
		h.respondError(w, http.StatusBadRequest, "User ID is required")
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validation.Struct(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.directory.UpdateUser(r.Context(), userID, UserUpdate{
		Email:       req.Email,
		Role:        req.Role,
		Permissions: req.Permissions,
	})
	if err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("Failed to update user: %v", err))
		return
	}

	h.respondJSON(w, http.StatusOK, UpdateUserResponse{User: toUserResponse(user)})
}

// handleDeleteUser deletes a user
func (h *UserManagementHandler) handleDeleteUser(w http.ResponseWriter, r *http.Request, claims *Claims) {
	userID := extractUserID(r.URL.Path)
	if userID == "" {
		h.respondError(w, http.StatusBadRequest, "User ID is required")
		return
	}

	// Admins cannot delete themselves
	if userID == claims.UserID {
		h.respondError(w, http.StatusBadRequest, "Cannot delete your own account")
		return
	}

	if err := h.directory.DeleteUser(r.Context(), userID); err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("Failed to delete user: %v", err))
		return
	}

	h.respondJSON(w, http.StatusOK, DeleteUserResponse{Success: true})
}

// handleChangePassword changes a user's password
func (h *UserManagementHandler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	userID := extractUserID(r.URL.Path)
	if userID == "" {
		h.respondError(w, http.StatusBadRequest, "User ID is required")
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validation.Struct(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.directory.ChangePassword(r.Context(), userID, req.NewPassword); err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("Failed to change password: %v", err))
		return
	}

	h.respondJSON(w, http.StatusOK, ChangePasswordResponse{Success: true})
}

// Helper methods

func (h *UserManagementHandler) extractAndValidateToken(r *http.Request) (*Claims, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, fmt.Errorf("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, fmt.Errorf("invalid authorization header format")
	}

	claims, err := h.jwtManager.ValidateToken(r.Context(), parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	return claims, nil
}

func (h *UserManagementHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *UserManagementHandler) respondError(w http.ResponseWriter, status int, message string) {
	response := ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	}
	h.respondJSON(w, status, response)
}

// Request/Response types

// ListUsersResponse is the response for listing users
type ListUsersResponse struct {
	Users []UserResponse `json:"users"`
}

// CreateUserRequest is the request for creating a user
type CreateUserRequest struct {
	Username    string       `json:"username" validate:"required,min=3,max=50"`
	Email       string       `json:"email" validate:"required,email"`
	Password    string       `json:"password" validate:"required,min=8"`
	Role        string       `json:"role" validate:"required,oneof=admin auditor viewer"`
	Permissions *Permissions `json:"permissions"`
}

// CreateUserResponse is the response for creating a user
type CreateUserResponse struct {
	User UserResponse `json:"user"`
}

// GetUserResponse is the response for getting a user
type GetUserResponse struct {
	User UserResponse `json:"user"`
}

// UpdateUserRequest is the request for updating a user. Absent fields are
// left unchanged.
type UpdateUserRequest struct {
	Email       *string      `json:"email" validate:"omitempty,email"`
	Role        *string      `json:"role" validate:"omitempty,oneof=admin auditor viewer"`
	Permissions *Permissions `json:"permissions"`
}

// UpdateUserResponse is the response for updating a user
type UpdateUserResponse struct {
	User UserResponse `json:"user"`
}

// DeleteUserResponse is the response for deleting a user
type DeleteUserResponse struct {
	Success bool `json:"success"`
}

// ChangePasswordRequest is the request for changing password
type ChangePasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// ChangePasswordResponse is the response for changing password
type ChangePasswordResponse struct {
	Success bool `json:"success"`
}
