package handler

import (
	"encoding/json"
	"net/http"

	"learnhub-web/internal/middleware"
	"learnhub-web/internal/session"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	store *session.Store
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(store *session.Store) *AuthHandler {
	return &AuthHandler{
		store: store,
	}
}

// LoginRequest carries the identity minted by the backend's login flow. The
// token is opaque here; this service never checks its authenticity.
type LoginRequest struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

// LoginResponse represents login response
type LoginResponse struct {
	Success   bool   `json:"success"`
	Username  string `json:"username"`
	CSRFToken string `json:"csrf_token"`
}

// Login establishes a session for the given username/token pair and sets the
// session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}

	// Username and token travel together or not at all
	if req.Username == "" || req.Token == "" {
		http.Error(w, `{"error":"Username and token are required"}`, http.StatusBadRequest)
		return
	}

	sess, err := h.store.Login(r.Context(), req.Username, req.Token)
	if err != nil {
		http.Error(w, `{"error":"Failed to create session"}`, http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    sess.Token,
		Path:     "/",
		MaxAge:   int(session.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   false, // Set to true in production with HTTPS
		SameSite: http.SameSiteStrictMode,
	})

	resp := LoginResponse{
		Success:   true,
		Username:  sess.Username,
		CSRFToken: sess.CSRFToken,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// Logout tears the session down and clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSession(r.Context())
	if !ok {
		http.Error(w, `{"error":"Session not found"}`, http.StatusUnauthorized)
		return
	}

	if err := h.store.Logout(r.Context(), sess.Token); err != nil {
		http.Error(w, `{"error":"Failed to logout"}`, http.StatusInternalServerError)
		return
	}

	// Clear cookie
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   false,
		SameSite: http.SameSiteStrictMode,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

// Me returns the logged-in identity plus the CSRF token pages need for
// state-changing calls.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSession(r.Context())
	if !ok {
		http.Error(w, `{"error":"Not authenticated"}`, http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"username":   sess.Username,
		"csrf_token": sess.CSRFToken,
	})
}
