package server

import (
	"net/http"
	"time"

	gorillahandlers "github.com/gorilla/handlers"
	log "github.com/sirupsen/logrus"

	"github.com/tidewatch/tidewatch/internal/common/auth"
	"github.com/tidewatch/tidewatch/internal/common/auth/permission"
	"github.com/tidewatch/tidewatch/internal/common/requestid"
	"github.com/tidewatch/tidewatch/internal/common/tidewatcherrors"
	"github.com/tidewatch/tidewatch/internal/tidewatch/metrics"
)

// authenticate resolves the request's credentials into a principal and
// stores it on the request context. Auth errors map to their HTTP status via
// CodeFromError, anything else is a 500.
func (server *JobsServer) authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := server.authService.Authenticate(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			if !tidewatcherrors.IsAuthError(err) {
				log.WithError(err).Error("error authenticating request")
			}
			writeError(w, tidewatcherrors.CodeFromError(err), err.Error())
			return
		}
		next(w, r.WithContext(auth.WithPrincipal(r.Context(), principal)))
	}
}

func (server *JobsServer) requirePermission(perm permission.Permission, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := checkPermission(server.permissionChecker, r.Context(), perm); err != nil {
			writeError(w, http.StatusForbidden, err.Error())
			return
		}
		next(w, r)
	}
}

func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.RequestsTotalCounter.Inc()
		next.ServeHTTP(w, r)
	})
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		log.WithFields(log.Fields{
			"method":    r.Method,
			"path":      r.URL.Path,
			"status":    recorder.status,
			"duration":  time.Since(start),
			"requestId": requestid.FromContextOrMissing(r.Context()),
		}).Info("request served")
	})
}

func allowCORS(handler http.Handler, corsAllowedOrigins []string) http.Handler {
	if len(corsAllowedOrigins) == 0 {
		return handler
	}
	return gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins(corsAllowedOrigins),
		gorillahandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		gorillahandlers.AllowedHeaders([]string{"Authorization", "Content-Type", requestid.MetadataKey}),
		gorillahandlers.AllowCredentials(),
	)(handler)
}

// statusRecorder captures the response status for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (recorder *statusRecorder) WriteHeader(status int) {
	recorder.status = status
	recorder.ResponseWriter.WriteHeader(status)
}
