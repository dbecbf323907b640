package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"learnhub-web/internal/domain"
	"learnhub-web/internal/middleware"
	"learnhub-web/internal/service"
	"learnhub-web/internal/session"

	"github.com/go-chi/chi/v5"
)

// Failure details are collapsed before they reach the browser; users get one
// retry prompt no matter what went wrong.
const purchaseFailedMessage = "There was a problem purchasing this course. Please try again."

// CourseHandler handles catalog, detail and purchase endpoints
type CourseHandler struct {
	catalog   *service.CatalogService
	purchases *service.PurchaseService
	store     *session.Store
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(catalog *service.CatalogService, purchases *service.PurchaseService, store *session.Store) *CourseHandler {
	return &CourseHandler{
		catalog:   catalog,
		purchases: purchases,
		store:     store,
	}
}

// List retrieves the formatted course catalog. Upstream failure is a
// page-level error; the page offers a manual retry.
func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	courses, err := h.catalog.ListCourses(r.Context())
	if err != nil {
		http.Error(w, `{"error":"Failed to load courses"}`, http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"courses": courses,
	})
}

// Detail retrieves one course with its lessons gated against the requesting
// session's entitlements. Works logged out; only previews play then.
func (h *CourseHandler) Detail(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "id")
	if courseID == "" {
		http.Error(w, `{"error":"Course ID required"}`, http.StatusBadRequest)
		return
	}

	sess, _ := middleware.GetSession(r.Context())

	course, err := h.catalog.GetCourse(r.Context(), courseID, sess)
	if errors.Is(err, domain.ErrCourseNotFound) {
		http.Error(w, `{"error":"Course not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"Failed to load course"}`, http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(course)
}

// Purchase buys a course for the logged-in session. An already-owned course
// short-circuits here, before any backend call, so repeat clicks never turn
// into duplicate purchase attempts.
func (h *CourseHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSession(r.Context())
	if !ok {
		http.Error(w, `{"error":"Not authenticated"}`, http.StatusUnauthorized)
		return
	}

	courseID := chi.URLParam(r, "id")
	if courseID == "" {
		http.Error(w, `{"error":"Course ID required"}`, http.StatusBadRequest)
		return
	}

	if h.store.HasPurchased(sess.Token, courseID) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":       true,
			"already_owned": true,
			"message":       "You already own this course",
		})
		return
	}

	if err := h.purchases.Purchase(r.Context(), sess, courseID); err != nil {
		if errors.Is(err, domain.ErrNotAuthenticated) {
			http.Error(w, `{"error":"Not authenticated"}`, http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   purchaseFailedMessage,
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
	})
}

// MyCourses returns the session's cached entitlements.
func (h *CourseHandler) MyCourses(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSession(r.Context())
	if !ok {
		http.Error(w, `{"error":"Not authenticated"}`, http.StatusUnauthorized)
		return
	}

	purchased := h.store.PurchasedCourses(sess.Token)
	if purchased == nil {
		purchased = []domain.PurchasedCourse{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"purchasedCourses": purchased,
	})
}
