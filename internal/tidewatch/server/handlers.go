package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/tidewatch/tidewatch/internal/common/logging"
	"github.com/tidewatch/tidewatch/internal/tidewatch/metrics"
	"github.com/tidewatch/tidewatch/internal/tidewatch/repository"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string           `json:"token"`
	User  loginUserPayload `json:"user"`
}

type loginUserPayload struct {
	Id       int    `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (server *JobsServer) Login(w http.ResponseWriter, r *http.Request) {
	if server.basicAuth == nil || server.jwtService == nil {
		writeError(w, http.StatusServiceUnavailable, "login is not configured")
		return
	}

	var request loginRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if request.Username == "" || request.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	user, err := server.basicAuth.VerifyPassword(request.Username, request.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, err := server.jwtService.IssueToken(request.Username, user)
	if err != nil {
		logging.WithStacktrace(log.NewEntry(log.StandardLogger()), err).Error("error issuing token")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJson(w, http.StatusOK, loginResponse{
		Token: token,
		User: loginUserPayload{
			Id:       user.Id,
			Username: request.Username,
			Role:     user.Role,
		},
	})
}

type jobsResponse struct {
	Jobs        []repository.Job `json:"jobs"`
	TotalCount  int              `json:"totalCount"`
	LastUpdated *string          `json:"lastUpdated"`
	DataSource  string           `json:"dataSource"`
}

func (server *JobsServer) ListJobs(w http.ResponseWriter, r *http.Request) {
	snapshot := server.store.Snapshot()
	result := repository.QueryJobs(snapshot.Jobs, jobQueryFromRequest(r, true))

	writeJson(w, http.StatusOK, jobsResponse{
		Jobs:        result.Jobs,
		TotalCount:  result.TotalCount,
		LastUpdated: formatTime(snapshot.LastUpdated),
		DataSource:  dataSourceName,
	})
}

type metricsResponse struct {
	repository.JobMetrics
	LastUpdated *string `json:"lastUpdated"`
}

func (server *JobsServer) GetMetrics(w http.ResponseWriter, r *http.Request) {
	snapshot := server.store.Snapshot()

	writeJson(w, http.StatusOK, metricsResponse{
		JobMetrics:  repository.ComputeMetrics(snapshot.Jobs),
		LastUpdated: formatTime(snapshot.LastUpdated),
	})
}

type refreshResponse struct {
	Message     string  `json:"message"`
	Count       int     `json:"count"`
	LastUpdated *string `json:"lastUpdated"`
}

// RefreshJobs reloads the source synchronously. A load failure still answers
// 200 with the resulting (empty) count, matching the degrade-to-empty
// contract of the store.
func (server *JobsServer) RefreshJobs(w http.ResponseWriter, r *http.Request) {
	err := server.store.Reload()
	metrics.RecordReload(err)

	snapshot := server.store.Snapshot()
	writeJson(w, http.StatusOK, refreshResponse{
		Message:     "Data refreshed successfully",
		Count:       len(snapshot.Jobs),
		LastUpdated: formatTime(snapshot.LastUpdated),
	})
}

func (server *JobsServer) ExportJobs(w http.ResponseWriter, r *http.Request) {
	snapshot := server.store.Snapshot()
	jobs := repository.FilterJobs(snapshot.Jobs, jobQueryFromRequest(r, false))

	filename := fmt.Sprintf("tidewatch_jobs_export_%s.csv", server.clock.Now().Format("20060102"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	if err := repository.WriteCsv(w, jobs); err != nil {
		log.WithError(err).Error("error writing jobs export")
	}
}

type alertsResponse struct {
	Alerts    []repository.Alert `json:"alerts"`
	Timestamp string             `json:"timestamp"`
}

func (server *JobsServer) GetAlerts(w http.ResponseWriter, r *http.Request) {
	now := server.clock.Now()
	snapshot := server.store.Snapshot()

	writeJson(w, http.StatusOK, alertsResponse{
		Alerts:    repository.EvaluateAlerts(snapshot.Jobs, now),
		Timestamp: now.Format(timeFormat),
	})
}

type configResponse struct {
	DataSource string             `json:"dataSource"`
	Excel      excelConfigPayload `json:"excel"`
}

type excelConfigPayload struct {
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
}

func (server *JobsServer) GetConfig(w http.ResponseWriter, r *http.Request) {
	writeJson(w, http.StatusOK, configResponse{
		DataSource: dataSourceName,
		Excel: excelConfigPayload{
			Path:   server.sourcePath,
			Exists: fileExists(server.sourcePath),
		},
	})
}

type healthResponse struct {
	Status      string  `json:"status"`
	Timestamp   string  `json:"timestamp"`
	JobsCount   int     `json:"jobsCount"`
	LastUpdated *string `json:"lastUpdated"`
	ExcelPath   string  `json:"excelPath"`
	ExcelExists bool    `json:"excelExists"`
}

func (server *JobsServer) GetHealth(w http.ResponseWriter, r *http.Request) {
	snapshot := server.store.Snapshot()

	writeJson(w, http.StatusOK, healthResponse{
		Status:      "healthy",
		Timestamp:   server.clock.Now().Format(timeFormat),
		JobsCount:   len(snapshot.Jobs),
		LastUpdated: formatTime(snapshot.LastUpdated),
		ExcelPath:   server.sourcePath,
		ExcelExists: fileExists(server.sourcePath),
	})
}

// jobQueryFromRequest parses the shared filter parameters. Pagination only
// applies to listings; exports return every match.
func jobQueryFromRequest(r *http.Request, paged bool) repository.JobQuery {
	params := r.URL.Query()
	query := repository.JobQuery{
		Search:   params.Get("search"),
		Status:   params.Get("status"),
		Priority: params.Get("priority"),
	}
	if paged {
		query.Page = queryInt(params, "page", 1)
		query.PageSize = queryInt(params, "pageSize", repository.DefaultPageSize)
	}
	return query
}

// queryInt parses an integer parameter, falling back to the default when the
// parameter is absent or not a number.
func queryInt(params url.Values, key string, fallback int) int {
	raw := params.Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
