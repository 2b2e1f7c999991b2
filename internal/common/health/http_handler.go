package health

import (
	"net/http"

	log "github.com/sirupsen/logrus"
)

// HealthCheckHttpHandler exposes a Checker over HTTP: 204 when healthy,
// 503 with the failure reasons in the body otherwise.
type HealthCheckHttpHandler struct {
	checker Checker
}

func NewHealthCheckHttpHandler(checker Checker) *HealthCheckHttpHandler {
	return &HealthCheckHttpHandler{checker: checker}
}

func (h *HealthCheckHttpHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.checker.Check(); err != nil {
		log.Warnf("health check failed: %v", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		if _, writeErr := w.Write([]byte(err.Error())); writeErr != nil {
			log.Errorf("failed to write health check response: %v", writeErr)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func SetupHttpMux(mux *http.ServeMux, checker Checker) {
	mux.Handle("/health", NewHealthCheckHttpHandler(checker))
}
