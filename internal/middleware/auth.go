package middleware

import (
	"context"
	"net/http"

	"learnhub-web/internal/domain"
	"learnhub-web/internal/observability"
	"learnhub-web/internal/session"
)

type contextKey string

const SessionKey contextKey = "session"

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "session_id"

// Auth restores the session behind the request's cookie and requires one to
// exist. Requests without a valid session get 401.
func Auth(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := restore(store, r)
			if !ok {
				http.Error(w, `{"error":"Not authenticated"}`, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWithSession(r.Context(), sess)))
		})
	}
}

// OptionalAuth restores the session if the cookie resolves to one, and lets
// the request through either way. Catalog pages work logged out; they just
// render without entitlements.
func OptionalAuth(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sess, ok := restore(store, r); ok {
				r = r.WithContext(contextWithSession(r.Context(), sess))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// restore resolves the session cookie against durable storage. Missing cookie,
// unknown token and storage errors all read the same way: no session.
func restore(store *session.Store, r *http.Request) (*domain.Session, bool) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return nil, false
	}

	sess, err := store.Restore(r.Context(), cookie.Value)
	if err != nil {
		return nil, false
	}
	return sess, true
}

func contextWithSession(ctx context.Context, sess *domain.Session) context.Context {
	ctx = context.WithValue(ctx, SessionKey, sess)
	return observability.WithUsername(ctx, sess.Username)
}

// GetSession returns the session attached by Auth or OptionalAuth.
func GetSession(ctx context.Context) (*domain.Session, bool) {
	sess, ok := ctx.Value(SessionKey).(*domain.Session)
	return sess, ok
}

// WithSession attaches a session to the context. Exposed for tests.
func WithSession(ctx context.Context, sess *domain.Session) context.Context {
	return contextWithSession(ctx, sess)
}
