package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"learnhub-web/internal/domain"
	"learnhub-web/internal/observability"
)

var (
	ErrUnauthorized    = errors.New("backend rejected credentials")
	ErrInvalidResponse = errors.New("invalid response from course API")
)

// CourseAPI is the backend surface consumed by the session store and services.
type CourseAPI interface {
	ListCourses(ctx context.Context) ([]domain.Course, error)
	PurchasedCourses(ctx context.Context, token string) ([]domain.PurchasedCourse, error)
	Purchase(ctx context.Context, token, courseID string) error
}

// Client talks to the external course/purchase backend API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a course API client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type coursesResponse struct {
	Courses []domain.Course `json:"courses"`
}

type purchasedCoursesResponse struct {
	PurchasedCourses []domain.PurchasedCourse `json:"purchasedCourses"`
}

// ListCourses fetches the public course catalog.
func (c *Client) ListCourses(ctx context.Context) ([]domain.Course, error) {
	resp, err := c.do(ctx, "list_courses", http.MethodGet, c.baseURL+"/courses", "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body coursesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return body.Courses, nil
}

// PurchasedCourses fetches the purchased courses for the identity behind token.
func (c *Client) PurchasedCourses(ctx context.Context, token string) ([]domain.PurchasedCourse, error) {
	resp, err := c.do(ctx, "purchased_courses", http.MethodGet, c.baseURL+"/users/courses", token)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body purchasedCoursesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return body.PurchasedCourses, nil
}

// Purchase records a purchase of courseID for the identity behind token.
// Any 2xx response is success; everything else is failure.
func (c *Client) Purchase(ctx context.Context, token, courseID string) error {
	resp, err := c.do(ctx, "purchase", http.MethodPost, c.baseURL+"/users/courses/"+courseID, token)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// do issues a single request. The product surfaces failures as one boolean to
// the user, so there is no retry here: transport errors, non-2xx statuses and
// auth failures all come back as errors for the caller to collapse.
func (c *Client) do(ctx context.Context, operation, method, url, token string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start).Seconds()

	if err != nil {
		observability.BackendRequestDuration.WithLabelValues(operation, "error").Observe(duration)
		return nil, fmt.Errorf("course API request failed: %w", err)
	}

	observability.BackendRequestDuration.WithLabelValues(operation, strconv.Itoa(resp.StatusCode)).Observe(duration)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return resp, nil
}
