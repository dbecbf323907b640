package service

import (
	"context"
	"fmt"
	"log/slog"

	"learnhub-web/internal/backend"
	"learnhub-web/internal/domain"
	"learnhub-web/internal/observability"
	"learnhub-web/internal/session"
)

// PurchaseService orchestrates the purchase workflow: auth gate, backend
// purchase call, then an awaited entitlement refresh. It never mutates the
// cache directly; the store's refresh is the only write path.
type PurchaseService struct {
	store *session.Store
	api   backend.CourseAPI
}

// NewPurchaseService creates a new purchase service
func NewPurchaseService(store *session.Store, api backend.CourseAPI) *PurchaseService {
	return &PurchaseService{
		store: store,
		api:   api,
	}
}

// Purchase buys courseID for the session's identity. A logged-out caller gets
// ErrNotAuthenticated with zero network calls. On backend failure the error is
// returned, the cache is untouched and nothing retries. The refresh after a
// successful purchase is awaited so a HasPurchased check immediately after
// returning reflects the purchase; if the refresh itself fails that is logged
// and swallowed, since the purchase went through and the backend owns the truth.
func (s *PurchaseService) Purchase(ctx context.Context, sess *domain.Session, courseID string) error {
	if !sess.LoggedIn() {
		observability.PurchasesTotal.WithLabelValues("rejected").Inc()
		return domain.ErrNotAuthenticated
	}

	if err := s.api.Purchase(ctx, sess.AuthToken, courseID); err != nil {
		observability.PurchasesTotal.WithLabelValues("failure").Inc()
		return fmt.Errorf("purchase failed: %w", err)
	}

	if err := s.store.RefreshEntitlements(ctx, sess); err != nil {
		slog.Warn("post-purchase entitlement refresh failed",
			slog.String("username", sess.Username),
			slog.String("course_id", courseID),
			slog.String("error", err.Error()))
	}

	observability.PurchasesTotal.WithLabelValues("success").Inc()
	return nil
}
