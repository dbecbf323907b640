package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionExpired   = errors.New("session expired")
	ErrNotAuthenticated = errors.New("not authenticated")
)

// Session represents a logged-in identity: the browser cookie token plus the
// username and backend bearer token it maps to. Username and AuthToken are
// always stored together; a session record without both never exists.
type Session struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	AuthToken string    `json:"-"`
	CSRFToken string    `json:"csrf_token"` // CSRF protection token
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// LoggedIn reports whether the session carries a complete identity.
func (s *Session) LoggedIn() bool {
	return s != nil && s.Username != "" && s.AuthToken != ""
}

// SessionRepository defines the interface for durable session storage
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	GetByToken(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) (int64, error)
}
