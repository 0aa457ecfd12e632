package auth

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/rinexis/authreview/pkg/validation"
)

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validation.Struct(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.directory.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if !VerifyPassword(user, req.Password) {
		h.respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	accessToken, err := h.jwtManager.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		log.Printf("Failed to generate access token: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	refreshToken, err := h.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		log.Printf("Failed to generate refresh token: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	response := LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(h.jwtManager.TokenDuration().Seconds()),
		User:         toUserResponse(user),
	}

	h.respondJSON(w, http.StatusOK, response)
}

func (h *AuthHandler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validation.Struct(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	userID, err := h.jwtManager.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	// The user may have been deleted since the refresh token was issued
	user, err := h.directory.GetUserByID(r.Context(), userID)
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "User not found")
		return
	}

	accessToken, err := h.jwtManager.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		log.Printf("Failed to generate access token: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	response := RefreshResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(h.jwtManager.TokenDuration().Seconds()),
	}

	h.respondJSON(w, http.StatusOK, response)
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	claims, err := h.extractAndValidateToken(r)
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	// Re-read the user so the response reflects current permissions
	user, err := h.directory.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "User not found")
		return
	}

	h.respondJSON(w, http.StatusOK, MeResponse{User: toUserResponse(user)})
}
