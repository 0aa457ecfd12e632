// Package api exposes the authorization review HTTP API: authentication,
// user administration, risk analysis uploads, and result queries.
package api

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rinexis/authreview/pkg/analysis"
	"github.com/rinexis/authreview/pkg/auth"
	"github.com/rinexis/authreview/pkg/datasets"
	"github.com/rinexis/authreview/pkg/logging"
	"github.com/rinexis/authreview/pkg/metrics"
)

// Server represents the HTTP API server
type Server struct {
	directory       auth.Directory
	jwtManager      *auth.JWTManager
	authHandler     *auth.AuthHandler
	userHandler     *auth.UserManagementHandler
	results         *analysis.ResultStore
	archive         *datasets.Archive
	graphqlHandler  http.Handler
	metricsRegistry *metrics.Registry
	logger          logging.Logger
	corsConfig      *CORSConfig
	maxRows         int
	pageSize        int
	startTime       time.Time
	version         string
}

// Config assembles a Server from its collaborators
type Config struct {
	Directory  auth.Directory
	JWTManager *auth.JWTManager
	Results    *analysis.ResultStore
	Archive    *datasets.Archive
	GraphQL    http.Handler // optional
	Metrics    *metrics.Registry
	Logger     logging.Logger
	CORS       *CORSConfig
	MaxRows    int
	PageSize   int
	Version    string
}

// NewServer creates a new API server
func NewServer(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewRegistry()
	}
	if cfg.CORS == nil {
		cfg.CORS = DefaultCORSConfig()
	}
	if cfg.Results == nil {
		cfg.Results = analysis.NewResultStore()
	}
	if cfg.MaxRows <= 0 {
		cfg.MaxRows = 250_000
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = analysis.DefaultPageSize
	}
	if cfg.Version == "" {
		cfg.Version = "1.0.0"
	}

	return &Server{
		directory:       cfg.Directory,
		jwtManager:      cfg.JWTManager,
		authHandler:     auth.NewAuthHandler(cfg.Directory, cfg.JWTManager),
		userHandler:     auth.NewUserManagementHandler(cfg.Directory, cfg.JWTManager),
		results:         cfg.Results,
		archive:         cfg.Archive,
		graphqlHandler:  cfg.GraphQL,
		metricsRegistry: cfg.Metrics,
		logger:          cfg.Logger,
		corsConfig:      cfg.CORS,
		maxRows:         cfg.MaxRows,
		pageSize:        cfg.PageSize,
		startTime:       time.Now(),
		version:         cfg.Version,
	}
}

// Handler builds the full route table wrapped in the middleware chain
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health and metrics
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.HandlerFor(
		s.metricsRegistry.GetPrometheusRegistry(),
		promhttp.HandlerOpts{},
	))

	// Authentication
	mux.Handle("/auth/", s.instrumentedAuthHandler())

	// User administration (admin only, enforced inside the handler)
	mux.Handle("/api/users", s.userHandler)
	mux.Handle("/api/users/", s.userHandler)

	// Risk analysis
	mux.HandleFunc("/api/analysis/role-risks", s.requirePermission(canRunRoleAnalysis, s.handleAnalyze))
	mux.HandleFunc("/api/analysis/results", s.requirePermission(canRunRoleAnalysis, s.handleResults))
	mux.HandleFunc("/api/analysis/summary", s.requirePermission(canViewDashboard, s.handleSummary))
	mux.HandleFunc("/api/analysis/roles", s.requirePermission(canRunRoleAnalysis, s.handleRoles))
	mux.HandleFunc("/api/analysis/user-status", s.requirePermission(canRunUserAnalysis, s.handleUserStatusAnalysis))
	mux.HandleFunc("/api/analysis/user-access", s.requirePermission(canRunUserAnalysis, s.handleUserAccessAnalysis))
	mux.HandleFunc("/api/analysis/datasets", s.requirePermission(canRunRoleAnalysis, s.handleDatasets))
	mux.HandleFunc("/api/analysis/datasets/", s.requirePermission(canRunRoleAnalysis, s.handleDataset))

	// GraphQL result queries
	mux.HandleFunc("/graphql", s.requireAuth(s.handleGraphQL))

	return s.panicRecoveryMiddleware(
		s.securityHeadersMiddleware(
			s.corsMiddleware(
				s.loggingMiddleware(
					s.metricsMiddleware(mux)))))
}

// instrumentedAuthHandler wraps the auth handler to count login outcomes
func (s *Server) instrumentedAuthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			s.authHandler.ServeHTTP(w, r)
			return
		}
		wrapper := &statusResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		s.authHandler.ServeHTTP(wrapper, r)
		s.metricsRegistry.RecordLogin(wrapper.statusCode == http.StatusOK)
	})
}

func (s *Server) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	if s.graphqlHandler == nil {
		s.respondError(w, http.StatusServiceUnavailable, "GraphQL endpoint not available")
		return
	}
	s.graphqlHandler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	_, err := s.results.Latest()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   s.version,
		Uptime:    time.Since(s.startTime).String(),
		HasReport: err == nil,
	}
	s.respondJSON(w, http.StatusOK, response)
}
