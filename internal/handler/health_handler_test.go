package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"learnhub-web/internal/domain"
	"learnhub-web/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestHealth_ReturnsOK(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	Health(w, req)

	testutil.AssertStatusCode(t, w, http.StatusOK)
	testutil.AssertHeader(t, w, "Content-Type", "application/json")

	var response map[string]string
	err := json.NewDecoder(w.Body).Decode(&response)
	testutil.AssertNoError(t, err)

	testutil.AssertEqual(t, response["status"], "ok")
}

func TestHealth_AlwaysReturns200(t *testing.T) {
	// Health endpoint should always return 200 regardless of dependencies
	tests := []struct {
		name   string
		method string
	}{
		{"GET request", http.MethodGet},
		{"HEAD request", http.MethodHead},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/health", nil)
			w := httptest.NewRecorder()

			Health(w, req)

			testutil.AssertStatusCode(t, w, http.StatusOK)
		})
	}
}

func TestHealthCheckResult_OmitsEmptyFields(t *testing.T) {
	result := HealthCheckResult{
		Status: "up",
	}

	data, err := json.Marshal(result)
	testutil.AssertNoError(t, err)

	jsonStr := string(data)
	testutil.AssertNotContains(t, jsonStr, "latency_ms")
	testutil.AssertNotContains(t, jsonStr, "error")
	testutil.AssertNotContains(t, jsonStr, "metadata")
}

func TestHealthCheckResult_IncludesError(t *testing.T) {
	result := HealthCheckResult{
		Status: "down",
		Error:  "connection refused",
	}

	data, err := json.Marshal(result)
	testutil.AssertNoError(t, err)

	testutil.AssertContains(t, string(data), "connection refused")
}

func TestReady_AllDependenciesUp(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	testutil.AssertNoError(t, err)
	defer db.Close()
	mock.ExpectPing()

	api := testutil.NewMockCourseAPI()

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	w := httptest.NewRecorder()

	Ready(db, api)(w, req)

	resp := testutil.AssertJSONResponse(t, w, http.StatusOK)
	testutil.AssertEqual(t, resp["status"].(string), "ready")

	checks, ok := resp["checks"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected checks object, got: %v", resp["checks"])
	}
	dbCheck := checks["database"].(map[string]interface{})
	testutil.AssertEqual(t, dbCheck["status"].(string), "up")
	apiCheck := checks["course_api"].(map[string]interface{})
	testutil.AssertEqual(t, apiCheck["status"].(string), "up")

	if api.ListCoursesCalls() != 1 {
		t.Errorf("expected one catalog probe, got %d", api.ListCoursesCalls())
	}
}

func TestReady_DatabaseDown(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	testutil.AssertNoError(t, err)
	defer db.Close()
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	api := testutil.NewMockCourseAPI()

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	w := httptest.NewRecorder()

	Ready(db, api)(w, req)

	resp := testutil.AssertJSONResponse(t, w, http.StatusServiceUnavailable)
	testutil.AssertEqual(t, resp["status"].(string), "not_ready")

	checks := resp["checks"].(map[string]interface{})
	dbCheck := checks["database"].(map[string]interface{})
	testutil.AssertEqual(t, dbCheck["status"].(string), "down")
	testutil.AssertContains(t, dbCheck["error"].(string), "connection refused")
}

func TestReady_CourseAPIDown(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	testutil.AssertNoError(t, err)
	defer db.Close()
	mock.ExpectPing()

	api := testutil.NewMockCourseAPI()
	api.ListCoursesFunc = func(ctx context.Context) ([]domain.Course, error) {
		return nil, testutil.ErrMockUpstreamDown
	}

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	w := httptest.NewRecorder()

	Ready(db, api)(w, req)

	resp := testutil.AssertJSONResponse(t, w, http.StatusServiceUnavailable)
	testutil.AssertEqual(t, resp["status"].(string), "not_ready")

	checks := resp["checks"].(map[string]interface{})
	apiCheck := checks["course_api"].(map[string]interface{})
	testutil.AssertEqual(t, apiCheck["status"].(string), "down")
}
