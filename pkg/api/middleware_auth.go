package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/rinexis/authreview/pkg/auth"
	"github.com/rinexis/authreview/pkg/logging"
)

// Context key for storing claims
type contextKey string

const claimsContextKey contextKey = "claims"

// ClaimsFromContext returns the validated session claims, if present
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*auth.Claims)
	return claims, ok
}

// requireAuth validates the bearer token and stores claims in the request
// context
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			s.respondError(w, http.StatusUnauthorized, "Missing authentication (Bearer token required)")
			return
		}

		claims, err := s.jwtManager.ValidateToken(r.Context(), strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			s.logger.Debug("Token validation failed", logging.Error(err))
			s.respondError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		// Verify the user still exists
		if _, err := s.directory.GetUserByID(r.Context(), claims.UserID); err != nil {
			s.respondError(w, http.StatusUnauthorized, "User not found")
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// requireAdmin requires a valid token with the admin role
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return s.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			s.respondError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		if claims.Role != auth.RoleAdmin {
			s.respondError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requirePermission requires a valid token whose user's current permission
// set satisfies check. Permissions are re-read from the directory so
// revocations take effect without waiting for token expiry. Admins pass
// every check.
func (s *Server) requirePermission(check func(auth.Permissions) bool, next http.HandlerFunc) http.HandlerFunc {
	return s.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			s.respondError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		if claims.Role == auth.RoleAdmin {
			next.ServeHTTP(w, r)
			return
		}

		user, err := s.directory.GetUserByID(r.Context(), claims.UserID)
		if err != nil {
			s.respondError(w, http.StatusUnauthorized, "User not found")
			return
		}
		if !check(user.Permissions) {
			s.logger.Warn("Permission denied",
				logging.UserID(claims.UserID),
				logging.Role(claims.Role),
				logging.Path(r.URL.Path))
			s.respondError(w, http.StatusForbidden, "Permission denied")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Permission checks for route gating

func canRunRoleAnalysis(p auth.Permissions) bool {
	return p.SuperUserAccess || (p.Audit.Enabled && p.Audit.RoleAnalysis)
}

func canRunUserAnalysis(p auth.Permissions) bool {
	return p.SuperUserAccess || (p.Audit.Enabled && p.Audit.UserAnalysis)
}

func canViewDashboard(p auth.Permissions) bool {
	return p.SuperUserAccess || p.Dashboard || (p.Audit.Enabled && p.Audit.RoleAnalysis)
}
