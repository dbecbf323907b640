package middleware

import (
	"crypto/hmac"
	"log/slog"
	"net/http"
	"strings"
)

// CSRF validates CSRF tokens for state-changing requests using the
// Synchronizer Token Pattern: the expected token lives in the server-side
// session (set at login), and the client echoes it back via header or form
// field. Safe methods and unauthenticated surfaces are skipped; mismatches
// are rejected with 403 and logged as security events.
func CSRF() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSafeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			if isExemptPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			// Auth middleware runs first on every protected route
			sess, ok := GetSession(r.Context())
			if !ok {
				http.Error(w, `{"error":"Not authenticated"}`, http.StatusUnauthorized)
				return
			}

			submittedToken := extractCSRFToken(r)
			if submittedToken == "" {
				logCSRFFailure(r, sess.Username, "missing token")
				http.Error(w, `{"error":"Forbidden"}`, http.StatusForbidden)
				return
			}

			// Constant-time comparison
			if !hmac.Equal([]byte(sess.CSRFToken), []byte(submittedToken)) {
				logCSRFFailure(r, sess.Username, "invalid token")
				http.Error(w, `{"error":"Forbidden"}`, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// isSafeMethod returns true for methods that never modify state.
func isSafeMethod(method string) bool {
	return method == http.MethodGet ||
		method == http.MethodHead ||
		method == http.MethodOptions
}

// isExemptPath returns true for paths that carry no session to protect:
// health checks, metrics, and the login call that mints the token itself.
func isExemptPath(path string) bool {
	exemptPaths := []string{
		"/health",
		"/metrics",
		"/api/v1/auth/login",
	}

	for _, exemptPath := range exemptPaths {
		if strings.HasPrefix(path, exemptPath) {
			return true
		}
	}
	return false
}

// extractCSRFToken checks sources in order: form data, X-CSRF-Token header,
// X-XSRF-Token header.
func extractCSRFToken(r *http.Request) string {
	token := r.FormValue("csrf_token")
	if token != "" {
		return token
	}

	token = r.Header.Get("X-CSRF-Token")
	if token != "" {
		return token
	}

	return r.Header.Get("X-XSRF-Token")
}

// logCSRFFailure records a failed validation for monitoring.
func logCSRFFailure(r *http.Request, username, reason string) {
	slog.Warn("CSRF validation failed",
		slog.String("username", username),
		slog.String("reason", reason),
		slog.String("method", r.Method),
		slog.String("path", r.RequestURI),
		slog.String("remote_addr", r.RemoteAddr),
	)
}
