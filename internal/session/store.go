package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"learnhub-web/internal/backend"
	"learnhub-web/internal/domain"
	"learnhub-web/internal/observability"
	"learnhub-web/internal/security"

	"github.com/google/uuid"
)

const (
	// SessionTTL bounds how long a restored session stays valid; the cleanup
	// task in main reaps expired rows.
	SessionTTL = 7 * 24 * time.Hour

	// Budget for fire-and-forget entitlement refreshes.
	refreshTimeout = 10 * time.Second
)

// entitlements is one session's purchased-course cache plus the refresh
// bookkeeping that discards out-of-order responses.
type entitlements struct {
	courses map[string]domain.PurchasedCourse
	started uint64 // generation handed to the most recently started refresh
	applied uint64 // generation of the refresh whose snapshot is in courses
}

func newEntitlements() *entitlements {
	return &entitlements{courses: make(map[string]domain.PurchasedCourse)}
}

// Store owns sessions and their entitlement caches. All session and
// entitlement mutation goes through it; views read through HasPurchased and
// PurchasedCourses only.
type Store struct {
	sessions domain.SessionRepository
	api      backend.CourseAPI
	csrf     *security.TokenManager

	mu    sync.RWMutex
	cache map[string]*entitlements // keyed by session token
}

// NewStore creates a session store backed by durable storage and the course API.
func NewStore(sessions domain.SessionRepository, api backend.CourseAPI) *Store {
	return &Store{
		sessions: sessions,
		api:      api,
		csrf:     security.NewTokenManager(),
		cache:    make(map[string]*entitlements),
	}
}

// Login establishes a session for the given identity. The token is opaque and
// never validated here; the backend rejects it on first use if it is bogus.
// Entitlements load in the background so catalog browsing stays usable even
// when the lookup fails.
func (s *Store) Login(ctx context.Context, username, authToken string) (*domain.Session, error) {
	csrfToken, err := s.csrf.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate csrf token: %w", err)
	}

	sess := &domain.Session{
		Token:     uuid.New().String(),
		Username:  username,
		AuthToken: authToken,
		CSRFToken: csrfToken,
		ExpiresAt: time.Now().Add(SessionTTL),
	}

	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache[sess.Token] = newEntitlements()
	observability.SessionsActive.Set(float64(len(s.cache)))
	s.mu.Unlock()

	go s.refreshDetached(sess)

	return sess, nil
}

// Logout removes the session and its entitlement cache. Unknown or already
// removed tokens are a no-op, so calling it twice is safe.
func (s *Store) Logout(ctx context.Context, token string) error {
	s.mu.Lock()
	delete(s.cache, token)
	observability.SessionsActive.Set(float64(len(s.cache)))
	s.mu.Unlock()

	return s.sessions.Delete(ctx, token)
}

// Restore looks a cookie token up in durable storage. Any failure, including
// storage errors, reads as "no prior session". A restore that finds a session
// with a cold cache triggers a background entitlement refresh.
func (s *Store) Restore(ctx context.Context, token string) (*domain.Session, error) {
	sess, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return nil, domain.ErrSessionNotFound
	}

	s.mu.Lock()
	_, warm := s.cache[sess.Token]
	if !warm {
		s.cache[sess.Token] = newEntitlements()
		observability.SessionsActive.Set(float64(len(s.cache)))
	}
	s.mu.Unlock()

	if !warm {
		go s.refreshDetached(sess)
	}

	return sess, nil
}

// HasPurchased reports whether the session's cached entitlements contain the
// course. Unknown sessions and empty caches answer false regardless of the id.
func (s *Store) HasPurchased(token, courseID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.cache[token]
	if !ok {
		return false
	}
	_, ok = e.courses[courseID]
	return ok
}

// PurchasedCourses returns a snapshot of the session's cached entitlements.
func (s *Store) PurchasedCourses(token string) []domain.PurchasedCourse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.cache[token]
	if !ok {
		return nil
	}
	courses := make([]domain.PurchasedCourse, 0, len(e.courses))
	for _, c := range e.courses {
		courses = append(courses, c)
	}
	return courses
}

// RefreshEntitlements fetches the session's purchased courses and replaces the
// cache wholesale on success. On any failure the cache is left unchanged and
// the error is returned for the caller to log; callers must not assume
// freshness after a failed refresh. Responses that lose a race to a newer
// refresh are discarded rather than clobbering the fresher snapshot.
func (s *Store) RefreshEntitlements(ctx context.Context, sess *domain.Session) error {
	if !sess.LoggedIn() {
		return nil
	}

	s.mu.Lock()
	e, ok := s.cache[sess.Token]
	if !ok {
		// Logged out while the refresh was queued.
		s.mu.Unlock()
		return nil
	}
	e.started++
	gen := e.started
	s.mu.Unlock()

	courses, err := s.api.PurchasedCourses(ctx, sess.AuthToken)
	if err != nil {
		observability.EntitlementRefreshesTotal.WithLabelValues("failure").Inc()
		return fmt.Errorf("entitlement refresh: %w", err)
	}

	byID := make(map[string]domain.PurchasedCourse, len(courses))
	for _, c := range courses {
		byID[c.ID] = c
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok = s.cache[sess.Token]
	if !ok {
		return nil
	}
	if gen <= e.applied {
		// A newer refresh already landed; keep its snapshot.
		observability.EntitlementRefreshesTotal.WithLabelValues("stale_discarded").Inc()
		return nil
	}
	e.applied = gen
	e.courses = byID
	observability.EntitlementRefreshesTotal.WithLabelValues("success").Inc()
	return nil
}

// refreshDetached runs a refresh on its own timeout and swallows the outcome.
// Login and restore must not fail or block on entitlement lookups.
func (s *Store) refreshDetached(sess *domain.Session) {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	if err := s.RefreshEntitlements(ctx, sess); err != nil {
		slog.Warn("background entitlement refresh failed",
			slog.String("username", sess.Username),
			slog.String("error", err.Error()))
	}
}
