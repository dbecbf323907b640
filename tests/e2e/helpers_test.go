//go:build e2e
// +build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"testing"
	"time"
)

// TestClient wraps http.Client with cookie handling for a single user session
type TestClient struct {
	*http.Client
	t         *testing.T
	username  string
	csrfToken string
}

// NewTestClient creates a new test client with cookie jar
func NewTestClient(t *testing.T) *TestClient {
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create cookie jar: %v", err)
	}

	return &TestClient{
		Client: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
		t: t,
	}
}

// Login establishes a session for the given identity and stores the CSRF token
func (tc *TestClient) Login(username, token string) (*LoginResponse, error) {
	body := map[string]string{
		"username": username,
		"token":    token,
	}

	resp, err := tc.PostJSON("/api/v1/auth/login", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("login failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var result LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode login response: %w", err)
	}

	tc.username = result.Username
	tc.csrfToken = result.CSRFToken
	return &result, nil
}

// Logout tears down the current session
func (tc *TestClient) Logout() error {
	resp, err := tc.PostJSON("/api/v1/auth/logout", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("logout failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	tc.csrfToken = ""
	return nil
}

// GetMe returns the logged-in identity
func (tc *TestClient) GetMe() (*MeResponse, error) {
	resp, err := tc.Get(baseURL + "/api/v1/auth/me")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("get me failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var result MeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode me response: %w", err)
	}

	return &result, nil
}

// ListCourses fetches the course catalog
func (tc *TestClient) ListCourses() (*ListCoursesResponse, error) {
	resp, err := tc.Get(baseURL + "/api/v1/courses")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("list courses failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var result ListCoursesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode courses response: %w", err)
	}

	return &result, nil
}

// GetCourse fetches one course with entitlement-gated lessons
func (tc *TestClient) GetCourse(courseID string) (*CourseDetailResponse, int, error) {
	resp, err := tc.Get(fmt.Sprintf("%s/api/v1/courses/%s", baseURL, courseID))
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, nil
	}

	var result CourseDetailResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to decode course response: %w", err)
	}

	return &result, resp.StatusCode, nil
}

// PurchaseCourse buys a course using the stored CSRF token
func (tc *TestClient) PurchaseCourse(courseID string) (*PurchaseResponse, int, error) {
	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("%s/api/v1/courses/%s/purchase", baseURL, courseID), nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("X-CSRF-Token", tc.csrfToken)

	resp, err := tc.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	var result PurchaseResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		// Error responses from middleware are plain JSON error objects
		return nil, resp.StatusCode, nil
	}

	return &result, resp.StatusCode, nil
}

// PurchaseCourseWithoutCSRF issues a purchase with no CSRF token attached
func (tc *TestClient) PurchaseCourseWithoutCSRF(courseID string) (int, error) {
	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("%s/api/v1/courses/%s/purchase", baseURL, courseID), nil)
	if err != nil {
		return 0, err
	}

	resp, err := tc.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	return resp.StatusCode, nil
}

// MyCourses returns the session's purchased courses
func (tc *TestClient) MyCourses() (*MyCoursesResponse, error) {
	resp, err := tc.Get(baseURL + "/api/v1/users/courses")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("my courses failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var result MyCoursesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode my courses response: %w", err)
	}

	return &result, nil
}

// PostJSON makes a POST request with JSON body, attaching the CSRF token
func (tc *TestClient) PostJSON(path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if tc.csrfToken != "" {
		req.Header.Set("X-CSRF-Token", tc.csrfToken)
	}
	return tc.Do(req)
}

// Response types

type LoginResponse struct {
	Success   bool   `json:"success"`
	Username  string `json:"username"`
	CSRFToken string `json:"csrf_token"`
}

type MeResponse struct {
	Username  string `json:"username"`
	CSRFToken string `json:"csrf_token"`
}

type CourseSummaryResponse struct {
	ID          string  `json:"id"`
	DisplayID   int64   `json:"display_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Instructor  string  `json:"instructor"`
	Lessons     int     `json:"lessons"`
}

type ListCoursesResponse struct {
	Courses []CourseSummaryResponse `json:"courses"`
}

type LessonResponse struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Duration  string `json:"duration,omitempty"`
	Link      string `json:"link,omitempty"`
	IsPreview bool   `json:"is_preview"`
	Playable  bool   `json:"playable"`
}

type CourseDetailResponse struct {
	ID        string           `json:"id"`
	DisplayID int64            `json:"display_id"`
	Title     string           `json:"title"`
	Price     float64          `json:"price"`
	Purchased bool             `json:"purchased"`
	Lessons   []LessonResponse `json:"lessons"`
}

type PurchaseResponse struct {
	Success      bool   `json:"success"`
	AlreadyOwned bool   `json:"already_owned"`
	Message      string `json:"message"`
	Error        string `json:"error"`
}

type PurchasedCourseResponse struct {
	ID    string `json:"_id"`
	Title string `json:"title"`
}

type MyCoursesResponse struct {
	PurchasedCourses []PurchasedCourseResponse `json:"purchasedCourses"`
}

// Test helpers

// uniqueUsername generates a unique username for testing
func uniqueUsername(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

// setupLoggedInUser logs in a fresh identity and returns the client.
// Each unique backend token gets an isolated entitlement set in the stub.
func setupLoggedInUser(t *testing.T, prefix string) *TestClient {
	t.Helper()

	client := NewTestClient(t)
	username := uniqueUsername(prefix)

	_, err := client.Login(username, fmt.Sprintf("backend-token-%s", username))
	if err != nil {
		t.Fatalf("failed to login user: %v", err)
	}

	return client
}

// waitFor polls cond until it returns true or the timeout passes
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return cond()
}
