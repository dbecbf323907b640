// Package testutil provides shared test utilities, mocks, and fixtures
// for testing the learnhub-web application.
package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"learnhub-web/internal/domain"
)

// Common test errors
var (
	ErrMockNotImplemented = errors.New("mock function not implemented")
	ErrMockUpstreamDown   = errors.New("mock: upstream unavailable")
)

// MockSessionRepository implements domain.SessionRepository for testing
type MockSessionRepository struct {
	mu sync.RWMutex

	// Function overrides - set these to customize behavior
	CreateFunc        func(ctx context.Context, session *domain.Session) error
	GetByTokenFunc    func(ctx context.Context, token string) (*domain.Session, error)
	DeleteFunc        func(ctx context.Context, token string) error
	DeleteExpiredFunc func(ctx context.Context) (int64, error)

	// In-memory storage for simple tests
	Sessions map[string]*domain.Session
}

// NewMockSessionRepository creates a new MockSessionRepository with initialized maps
func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{
		Sessions: make(map[string]*domain.Session),
	}
}

func (m *MockSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, session)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Sessions == nil {
		m.Sessions = make(map[string]*domain.Session)
	}
	if session.ID == "" {
		session.ID = "session-" + session.Token
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	m.Sessions[session.Token] = session
	return nil
}

func (m *MockSessionRepository) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	if m.GetByTokenFunc != nil {
		return m.GetByTokenFunc(ctx, token)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if session, ok := m.Sessions[token]; ok {
		if session.ExpiresAt.Before(time.Now()) {
			return nil, domain.ErrSessionExpired
		}
		return session, nil
	}
	return nil, domain.ErrSessionNotFound
}

func (m *MockSessionRepository) Delete(ctx context.Context, token string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, token)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.Sessions, token)
	return nil
}

func (m *MockSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	if m.DeleteExpiredFunc != nil {
		return m.DeleteExpiredFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int64
	now := time.Now()
	for token, session := range m.Sessions {
		if session.ExpiresAt.Before(now) {
			delete(m.Sessions, token)
			count++
		}
	}
	return count, nil
}

// MockCourseAPI implements backend.CourseAPI for testing. Besides the usual
// function overrides it records every call, so tests can assert not just on
// results but on which upstream calls were (or were not) made.
type MockCourseAPI struct {
	mu sync.RWMutex

	// Function overrides
	ListCoursesFunc      func(ctx context.Context) ([]domain.Course, error)
	PurchasedCoursesFunc func(ctx context.Context, token string) ([]domain.PurchasedCourse, error)
	PurchaseFunc         func(ctx context.Context, token, courseID string) error

	// In-memory state for simple tests
	Catalog   []domain.Course
	Purchased map[string][]domain.PurchasedCourse // auth token -> owned courses

	// Call tracking
	listCalls      int
	purchasedCalls int
	purchaseCalls  []PurchaseCall
}

// PurchaseCall records a call to Purchase
type PurchaseCall struct {
	Token    string
	CourseID string
}

// NewMockCourseAPI creates a new MockCourseAPI with initialized state
func NewMockCourseAPI() *MockCourseAPI {
	return &MockCourseAPI{
		Purchased: make(map[string][]domain.PurchasedCourse),
	}
}

func (m *MockCourseAPI) ListCourses(ctx context.Context) ([]domain.Course, error) {
	m.mu.Lock()
	m.listCalls++
	m.mu.Unlock()

	if m.ListCoursesFunc != nil {
		return m.ListCoursesFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.Course{}, m.Catalog...), nil
}

func (m *MockCourseAPI) PurchasedCourses(ctx context.Context, token string) ([]domain.PurchasedCourse, error) {
	m.mu.Lock()
	m.purchasedCalls++
	m.mu.Unlock()

	if m.PurchasedCoursesFunc != nil {
		return m.PurchasedCoursesFunc(ctx, token)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.PurchasedCourse{}, m.Purchased[token]...), nil
}

func (m *MockCourseAPI) Purchase(ctx context.Context, token, courseID string) error {
	m.mu.Lock()
	m.purchaseCalls = append(m.purchaseCalls, PurchaseCall{Token: token, CourseID: courseID})
	m.mu.Unlock()

	if m.PurchaseFunc != nil {
		return m.PurchaseFunc(ctx, token, courseID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.Catalog {
		if c.ID == courseID {
			m.Purchased[token] = append(m.Purchased[token], domain.PurchasedCourse(c))
			return nil
		}
	}
	return domain.ErrCourseNotFound
}

// ListCoursesCalls returns how many times ListCourses was invoked
func (m *MockCourseAPI) ListCoursesCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listCalls
}

// PurchasedCoursesCalls returns how many times PurchasedCourses was invoked
func (m *MockCourseAPI) PurchasedCoursesCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.purchasedCalls
}

// PurchaseCalls returns all recorded purchase calls
func (m *MockCourseAPI) PurchaseCalls() []PurchaseCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]PurchaseCall{}, m.purchaseCalls...)
}

// TotalCalls returns the total number of upstream calls of any kind. Useful
// for asserting that a code path made zero network calls.
func (m *MockCourseAPI) TotalCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listCalls + m.purchasedCalls + len(m.purchaseCalls)
}
