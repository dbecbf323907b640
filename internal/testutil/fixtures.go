package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"learnhub-web/internal/domain"
)

// Counter for generating unique IDs
var idCounter atomic.Int64

// nextID generates a unique ID for test fixtures
func nextID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, idCounter.Add(1))
}

// SessionOptions allows customizing session fixture creation
type SessionOptions struct {
	ID        string
	Token     string
	Username  string
	AuthToken string
	CSRFToken string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// NewTestSession creates a test session with sensible defaults
// Pass options to override specific fields
func NewTestSession(opts ...func(*SessionOptions)) *domain.Session {
	o := &SessionOptions{
		ID:        nextID("session"),
		Token:     nextID("token"),
		Username:  fmt.Sprintf("learner%d", idCounter.Load()),
		AuthToken: nextID("backend-token"),
		CSRFToken: nextID("csrf"),
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.ExpiresAt.IsZero() {
		o.ExpiresAt = time.Now().Add(24 * time.Hour)
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}

	return &domain.Session{
		ID:        o.ID,
		Token:     o.Token,
		Username:  o.Username,
		AuthToken: o.AuthToken,
		CSRFToken: o.CSRFToken,
		ExpiresAt: o.ExpiresAt,
		CreatedAt: o.CreatedAt,
	}
}

// Session option functions

// WithToken sets the session token
func WithToken(token string) func(*SessionOptions) {
	return func(o *SessionOptions) {
		o.Token = token
	}
}

// WithUsername sets the username
func WithUsername(username string) func(*SessionOptions) {
	return func(o *SessionOptions) {
		o.Username = username
	}
}

// WithAuthToken sets the backend auth token
func WithAuthToken(token string) func(*SessionOptions) {
	return func(o *SessionOptions) {
		o.AuthToken = token
	}
}

// WithCSRFToken sets the CSRF token
func WithCSRFToken(token string) func(*SessionOptions) {
	return func(o *SessionOptions) {
		o.CSRFToken = token
	}
}

// WithExpiresAt sets the session expiry
func WithExpiresAt(t time.Time) func(*SessionOptions) {
	return func(o *SessionOptions) {
		o.ExpiresAt = t
	}
}

// Expired marks the session as already expired
func Expired() func(*SessionOptions) {
	return func(o *SessionOptions) {
		o.ExpiresAt = time.Now().Add(-time.Hour)
	}
}

// CourseOptions allows customizing course fixture creation
type CourseOptions struct {
	ID          string
	Title       string
	Description string
	Price       float64
	Image       string
	Instructor  string
	Videos      []domain.Video
}

// NewTestCourse creates a test course with sensible defaults
// Pass options to override specific fields
func NewTestCourse(opts ...func(*CourseOptions)) domain.Course {
	n := idCounter.Add(1)
	o := &CourseOptions{
		// Backend IDs are opaque; tests only need the trailing 6 chars to be hex
		ID:          fmt.Sprintf("course%06x", n),
		Title:       fmt.Sprintf("Test Course %d", n),
		Description: "A course used in tests",
		Price:       49.99,
		Instructor:  "Jane Doe",
	}

	for _, opt := range opts {
		opt(o)
	}

	return domain.Course{
		ID:          o.ID,
		Title:       o.Title,
		Description: o.Description,
		Price:       o.Price,
		Image:       o.Image,
		Instructor:  o.Instructor,
		Videos:      o.Videos,
	}
}

// Course option functions

// WithCourseID sets the course ID
func WithCourseID(id string) func(*CourseOptions) {
	return func(o *CourseOptions) {
		o.ID = id
	}
}

// WithTitle sets the course title
func WithTitle(title string) func(*CourseOptions) {
	return func(o *CourseOptions) {
		o.Title = title
	}
}

// WithPrice sets the course price
func WithPrice(price float64) func(*CourseOptions) {
	return func(o *CourseOptions) {
		o.Price = price
	}
}

// WithVideos sets the course videos
func WithVideos(videos ...domain.Video) func(*CourseOptions) {
	return func(o *CourseOptions) {
		o.Videos = videos
	}
}

// NewTestPurchasedCourse converts a course fixture into an owned-course entry
func NewTestPurchasedCourse(opts ...func(*CourseOptions)) domain.PurchasedCourse {
	return domain.PurchasedCourse(NewTestCourse(opts...))
}
