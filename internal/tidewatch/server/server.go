package server

import (
	"encoding/json"
	"net/http"
	"time"

	gorillahandlers "github.com/gorilla/handlers"
	log "github.com/sirupsen/logrus"

	"github.com/tidewatch/tidewatch/internal/common/auth"
	"github.com/tidewatch/tidewatch/internal/common/auth/permission"
	"github.com/tidewatch/tidewatch/internal/common/requestid"
	"github.com/tidewatch/tidewatch/internal/common/util"
	"github.com/tidewatch/tidewatch/internal/tidewatch/permissions"
	"github.com/tidewatch/tidewatch/internal/tidewatch/repository"
)

// The only data source this server knows how to serve from.
const dataSourceName = "excel"

// Timestamps in response bodies use this layout.
const timeFormat = time.RFC3339

// JobsServer exposes the jobs dashboard API. It is thin glue: queries,
// aggregation and alert evaluation live in the repository package, and the
// server only parses requests and shapes responses.
type JobsServer struct {
	store              *repository.JobStore
	sourcePath         string
	corsAllowedOrigins []string

	authService       auth.AuthService
	basicAuth         *auth.BasicAuthService
	jwtService        *auth.JwtAuthService
	permissionChecker auth.PermissionChecker

	clock util.Clock
}

func NewJobsServer(
	store *repository.JobStore,
	sourcePath string,
	corsAllowedOrigins []string,
	authService auth.AuthService,
	basicAuth *auth.BasicAuthService,
	jwtService *auth.JwtAuthService,
	permissionChecker auth.PermissionChecker,
	clock util.Clock,
) *JobsServer {
	return &JobsServer{
		store:              store,
		sourcePath:         sourcePath,
		corsAllowedOrigins: corsAllowedOrigins,
		authService:        authService,
		basicAuth:          basicAuth,
		jwtService:         jwtService,
		permissionChecker:  permissionChecker,
		clock:              clock,
	}
}

// Handler builds the route table and wraps it in the middleware stack:
// panic recovery, request ids, request counting and logging, then CORS.
// Login, config and health are reachable without credentials.
func (server *JobsServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", requireMethod(http.MethodPost, server.Login))
	mux.HandleFunc("/api/jobs", server.protected(http.MethodGet, permissions.ViewJobs, server.ListJobs))
	mux.HandleFunc("/api/jobs/metrics", server.protected(http.MethodGet, permissions.ViewJobs, server.GetMetrics))
	mux.HandleFunc("/api/jobs/refresh", server.protected(http.MethodPost, permissions.RefreshJobs, server.RefreshJobs))
	mux.HandleFunc("/api/jobs/export", server.protected(http.MethodGet, permissions.ExportJobs, server.ExportJobs))
	mux.HandleFunc("/api/alerts", server.protected(http.MethodGet, permissions.ViewJobs, server.GetAlerts))
	mux.HandleFunc("/api/config", requireMethod(http.MethodGet, server.GetConfig))
	mux.HandleFunc("/api/health", requireMethod(http.MethodGet, server.GetHealth))

	var handler http.Handler = mux
	handler = allowCORS(handler, server.corsAllowedOrigins)
	handler = logRequests(handler)
	handler = instrument(handler)
	handler = requestid.Middleware(false)(handler)
	handler = gorillahandlers.RecoveryHandler(
		gorillahandlers.RecoveryLogger(log.StandardLogger()),
		gorillahandlers.PrintRecoveryStack(true),
	)(handler)
	return handler
}

// protected composes the method check, authentication and a permission check
// around a handler.
func (server *JobsServer) protected(method string, perm permission.Permission, handler http.HandlerFunc) http.HandlerFunc {
	return requireMethod(method, server.authenticate(server.requirePermission(perm, handler)))
}

func requireMethod(method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		next(w, r)
	}
}

func writeJson(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.WithError(err).Warn("failed to write response body")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJson(w, status, map[string]string{"error": message})
}

// formatTime renders a response timestamp, nil for the zero time so the
// field serializes as null before the first load completes.
func formatTime(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	formatted := t.Format(timeFormat)
	return &formatted
}
