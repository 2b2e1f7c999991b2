package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidewatch/tidewatch/internal/common/auth"
	authconfig "github.com/tidewatch/tidewatch/internal/common/auth/configuration"
	"github.com/tidewatch/tidewatch/internal/common/auth/permission"
	"github.com/tidewatch/tidewatch/internal/common/util"
	"github.com/tidewatch/tidewatch/internal/tidewatch/permissions"
	"github.com/tidewatch/tidewatch/internal/tidewatch/repository"
)

var serverTestTime = time.Date(2024, 3, 21, 9, 0, 0, 0, time.Local)

var serverTestRows = []repository.RawJobRow{
	{JobName: "Daily_ETL", StartTime: "2024-03-20T00:00:00", EndTime: "2024-03-20T01:00:00", Priority: "high", Description: "loads the warehouse"},
	{JobName: "Hourly_Sync", StartTime: "2024-03-20T08:00:00"},
	{JobName: "Broken_Job"},
	{JobName: "Slow_Batch", StartTime: "2024-03-20T00:00:00", EndTime: "2024-03-20T03:00:00"},
}

type fakeRowReader struct {
	rows []repository.RawJobRow
	err  error
}

func (r *fakeRowReader) ReadRows() ([]repository.RawJobRow, error) {
	return r.rows, r.err
}

type testHarness struct {
	handler http.Handler
	reader  *fakeRowReader
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()
	clock := &util.FixedClock{Time: serverTestTime}

	reader := &fakeRowReader{rows: serverTestRows}
	store := repository.NewJobStore(reader, clock)
	require.NoError(t, store.Reload())

	basicAuth, err := auth.NewBasicAuthService(map[string]authconfig.UserInfo{
		"admin":  {Id: 1, Password: "Admin@123", Role: "admin"},
		"viewer": {Id: 2, Password: "Viewer@123", Role: "viewer"},
	})
	require.NoError(t, err)
	jwtService := auth.NewJwtAuthService(authconfig.JwtAuthenticationConfig{
		SecretKey:     "test-secret",
		TokenLifetime: 24 * time.Hour,
	}, clock)
	authService := auth.NewMultiAuthService([]auth.AuthService{jwtService, basicAuth})

	checker := auth.NewPrincipalPermissionChecker(map[permission.Permission][]string{
		permissions.ViewJobs:    {auth.EveryoneGroup},
		permissions.RefreshJobs: {auth.EveryoneGroup},
		permissions.ExportJobs:  {auth.EveryoneGroup},
	})

	jobsServer := NewJobsServer(
		store,
		"sample_data/input.xlsx",
		[]string{"*"},
		authService,
		basicAuth,
		jwtService,
		checker,
		clock,
	)
	return &testHarness{
		handler: jobsServer.Handler(),
		reader:  reader,
	}
}

func (h *testHarness) do(t *testing.T, method, target, token string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var request *http.Request
	if body != "" {
		request = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		request = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	h.handler.ServeHTTP(recorder, request)
	return recorder
}

func (h *testHarness) login(t *testing.T, username, password string) string {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"password":%q}`, username, password)
	recorder := h.do(t, http.MethodPost, "/api/auth/login", "", body)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var response loginResponse
	decodeJson(t, recorder, &response)
	require.NotEmpty(t, response.Token)
	return response.Token
}

func decodeJson(t *testing.T, recorder *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), target))
}

func TestLogin(t *testing.T) {
	harness := newTestHarness(t)

	recorder := harness.do(t, http.MethodPost, "/api/auth/login", "", `{"username":"admin","password":"Admin@123"}`)
	require.Equal(t, http.StatusOK, recorder.Code)

	var response loginResponse
	decodeJson(t, recorder, &response)
	assert.NotEmpty(t, response.Token)
	assert.Equal(t, loginUserPayload{Id: 1, Username: "admin", Role: "admin"}, response.User)
}

func TestLogin_MissingFields(t *testing.T) {
	harness := newTestHarness(t)

	for _, body := range []string{
		`{}`,
		`{"username":"admin"}`,
		`{"password":"Admin@123"}`,
	} {
		recorder := harness.do(t, http.MethodPost, "/api/auth/login", "", body)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)

		var response map[string]string
		decodeJson(t, recorder, &response)
		assert.Equal(t, "Username and password are required", response["error"])
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	harness := newTestHarness(t)

	for _, body := range []string{
		`{"username":"admin","password":"wrong"}`,
		`{"username":"nobody","password":"Admin@123"}`,
	} {
		recorder := harness.do(t, http.MethodPost, "/api/auth/login", "", body)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)

		var response map[string]string
		decodeJson(t, recorder, &response)
		assert.Equal(t, "Invalid username or password", response["error"])
	}
}

func TestLogin_MalformedBody(t *testing.T) {
	harness := newTestHarness(t)

	recorder := harness.do(t, http.MethodPost, "/api/auth/login", "", `not json`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestLogin_MethodNotAllowed(t *testing.T) {
	harness := newTestHarness(t)

	recorder := harness.do(t, http.MethodGet, "/api/auth/login", "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, recorder.Code)
}

func TestListJobs_RequiresAuth(t *testing.T) {
	harness := newTestHarness(t)

	recorder := harness.do(t, http.MethodGet, "/api/jobs", "", "")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder = harness.do(t, http.MethodGet, "/api/jobs", "not-a-token", "")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestListJobs(t *testing.T) {
	harness := newTestHarness(t)
	token := harness.login(t, "admin", "Admin@123")

	recorder := harness.do(t, http.MethodGet, "/api/jobs", token, "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var response jobsResponse
	decodeJson(t, recorder, &response)
	assert.Len(t, response.Jobs, 4)
	assert.Equal(t, 4, response.TotalCount)
	assert.Equal(t, "excel", response.DataSource)
	require.NotNil(t, response.LastUpdated)
	assert.Equal(t, serverTestTime.Format(time.RFC3339), *response.LastUpdated)
}

func TestListJobs_Filtering(t *testing.T) {
	harness := newTestHarness(t)
	token := harness.login(t, "viewer", "Viewer@123")

	testCases := map[string]struct {
		target        string
		expectedNames []string
		expectedTotal int
	}{
		"status":      {"/api/jobs?status=completed", []string{"Daily_ETL"}, 1},
		"priority":    {"/api/jobs?priority=high", []string{"Daily_ETL"}, 1},
		"search":      {"/api/jobs?search=batch", []string{"Slow_Batch"}, 1},
		"description": {"/api/jobs?search=warehouse", []string{"Daily_ETL"}, 1},
		"all values":  {"/api/jobs?status=all&priority=all", []string{"Daily_ETL", "Hourly_Sync", "Broken_Job", "Slow_Batch"}, 4},
		"no match":    {"/api/jobs?search=zzz", []string{}, 0},
		"paged":       {"/api/jobs?page=2&pageSize=3", []string{"Slow_Batch"}, 4},
		"bad paging":  {"/api/jobs?page=abc&pageSize=-1", []string{"Daily_ETL", "Hourly_Sync", "Broken_Job", "Slow_Batch"}, 4},
		"beyond last": {"/api/jobs?page=99", []string{}, 4},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			recorder := harness.do(t, http.MethodGet, tc.target, token, "")
			require.Equal(t, http.StatusOK, recorder.Code)

			var response jobsResponse
			decodeJson(t, recorder, &response)
			names := make([]string, 0, len(response.Jobs))
			for _, job := range response.Jobs {
				names = append(names, job.JobName)
			}
			assert.Equal(t, tc.expectedNames, names)
			assert.Equal(t, tc.expectedTotal, response.TotalCount)
		})
	}
}

func TestListJobs_PayloadShape(t *testing.T) {
	harness := newTestHarness(t)
	token := harness.login(t, "admin", "Admin@123")

	recorder := harness.do(t, http.MethodGet, "/api/jobs?status=completed", token, "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var response struct {
		Jobs []map[string]interface{} `json:"jobs"`
	}
	decodeJson(t, recorder, &response)
	require.Len(t, response.Jobs, 1)

	job := response.Jobs[0]
	for _, key := range []string{
		"id", "jobName", "startTime", "endTime", "dependency", "description",
		"priority", "status", "duration", "startTimeParsed", "endTimeParsed",
	} {
		assert.Contains(t, job, key)
	}
	assert.Equal(t, "Daily_ETL", job["jobName"])
	assert.Equal(t, "completed", job["status"])
	assert.Equal(t, "1h 0m", job["duration"])
}

func TestGetMetrics(t *testing.T) {
	harness := newTestHarness(t)
	token := harness.login(t, "admin", "Admin@123")

	recorder := harness.do(t, http.MethodGet, "/api/jobs/metrics", token, "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var response map[string]interface{}
	decodeJson(t, recorder, &response)
	assert.Equal(t, float64(4), response["total"])
	assert.Equal(t, float64(1), response["completed"])
	assert.Equal(t, float64(1), response["running"])
	assert.Equal(t, float64(1), response["failed"])
	assert.Equal(t, float64(1), response["delayed"])
	assert.Equal(t, float64(60), response["avgRunTimeMinutes"])
	assert.Equal(t, map[string]interface{}{
		"high":   float64(1),
		"normal": float64(3),
		"low":    float64(0),
	}, response["priorityDistribution"])
	assert.NotEmpty(t, response["lastUpdated"])
}

func TestRefreshJobs(t *testing.T) {
	harness := newTestHarness(t)
	token := harness.login(t, "admin", "Admin@123")

	harness.reader.rows = serverTestRows[:2]
	recorder := harness.do(t, http.MethodPost, "/api/jobs/refresh", token, "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var response refreshResponse
	decodeJson(t, recorder, &response)
	assert.Equal(t, "Data refreshed successfully", response.Message)
	assert.Equal(t, 2, response.Count)

	recorder = harness.do(t, http.MethodGet, "/api/jobs/refresh", token, "")
	assert.Equal(t, http.StatusMethodNotAllowed, recorder.Code)
}

func TestRefreshJobs_DegradedSourceStillAnswers(t *testing.T) {
	harness := newTestHarness(t)
	token := harness.login(t, "admin", "Admin@123")

	harness.reader.err = fmt.Errorf("sheet unreadable")
	recorder := harness.do(t, http.MethodPost, "/api/jobs/refresh", token, "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var response refreshResponse
	decodeJson(t, recorder, &response)
	assert.Equal(t, 0, response.Count)
}

func TestExportJobs(t *testing.T) {
	harness := newTestHarness(t)
	token := harness.login(t, "admin", "Admin@123")

	recorder := harness.do(t, http.MethodGet, "/api/jobs/export?status=completed", token, "")
	require.Equal(t, http.StatusOK, recorder.Code)

	assert.Equal(t, "text/csv", recorder.Header().Get("Content-Type"))
	assert.Equal(t,
		fmt.Sprintf("attachment; filename=tidewatch_jobs_export_%s.csv", serverTestTime.Format("20060102")),
		recorder.Header().Get("Content-Disposition"))

	lines := strings.Split(strings.TrimRight(recorder.Body.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Job Name,Start Time,End Time,Duration,Status,Dependencies,Priority,Description", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Daily_ETL,"))
}

func TestGetAlerts(t *testing.T) {
	harness := newTestHarness(t)
	token := harness.login(t, "admin", "Admin@123")

	recorder := harness.do(t, http.MethodGet, "/api/alerts", token, "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var response alertsResponse
	decodeJson(t, recorder, &response)
	require.Len(t, response.Alerts, 3)
	assert.Equal(t, "warning", response.Alerts[0].Type)
	assert.Equal(t, []string{"Slow_Batch"}, response.Alerts[0].Jobs)
	assert.Equal(t, "error", response.Alerts[1].Type)
	assert.Equal(t, []string{"Broken_Job"}, response.Alerts[1].Jobs)
	assert.Equal(t, "info", response.Alerts[2].Type)
	assert.Equal(t, []string{"Hourly_Sync"}, response.Alerts[2].Jobs)
	assert.Equal(t, serverTestTime.Format(time.RFC3339), response.Timestamp)
}

func TestGetConfig_NoAuthRequired(t *testing.T) {
	harness := newTestHarness(t)

	recorder := harness.do(t, http.MethodGet, "/api/config", "", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var response configResponse
	decodeJson(t, recorder, &response)
	assert.Equal(t, "excel", response.DataSource)
	assert.Equal(t, "sample_data/input.xlsx", response.Excel.Path)
	assert.False(t, response.Excel.Exists)
}

func TestGetHealth_NoAuthRequired(t *testing.T) {
	harness := newTestHarness(t)

	recorder := harness.do(t, http.MethodGet, "/api/health", "", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var response healthResponse
	decodeJson(t, recorder, &response)
	assert.Equal(t, "healthy", response.Status)
	assert.Equal(t, 4, response.JobsCount)
	assert.Equal(t, "sample_data/input.xlsx", response.ExcelPath)
	assert.False(t, response.ExcelExists)
	assert.NotEmpty(t, response.Timestamp)
}

func TestBasicAuthAlsoAccepted(t *testing.T) {
	harness := newTestHarness(t)

	request := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	request.SetBasicAuth("viewer", "Viewer@123")
	recorder := httptest.NewRecorder()
	harness.handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestPermissionDenied(t *testing.T) {
	clock := &util.FixedClock{Time: serverTestTime}
	reader := &fakeRowReader{rows: serverTestRows}
	store := repository.NewJobStore(reader, clock)
	require.NoError(t, store.Reload())

	jwtService := auth.NewJwtAuthService(authconfig.JwtAuthenticationConfig{
		SecretKey:     "test-secret",
		TokenLifetime: time.Hour,
	}, clock)
	authService := auth.NewMultiAuthService([]auth.AuthService{jwtService})

	// viewers may look but not refresh
	checker := auth.NewPrincipalPermissionChecker(map[permission.Permission][]string{
		permissions.ViewJobs:    {auth.EveryoneGroup},
		permissions.RefreshJobs: {"admin"},
	})
	jobsServer := NewJobsServer(store, "x.xlsx", nil, authService, nil, jwtService, checker, clock)
	handler := jobsServer.Handler()

	token, err := jwtService.IssueToken("viewer", authconfig.UserInfo{Id: 2, Role: "viewer"})
	require.NoError(t, err)

	request := httptest.NewRequest(http.MethodPost, "/api/jobs/refresh", nil)
	request.Header.Set("Authorization", "Bearer "+token)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	request = httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	request.Header.Set("Authorization", "Bearer "+token)
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusOK, recorder.Code)
}
