package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"storefront-gateway/internal/catalog"
	"storefront-gateway/internal/domain"
	"storefront-gateway/internal/middleware"
	"storefront-gateway/internal/security"
	"storefront-gateway/internal/state"
)

// AuthHandler handles session endpoints: sign-in, sign-up, sign-out and
// the current-identity probe the UI shell polls on load.
type AuthHandler struct {
	auth          *state.Auth
	signer        *security.CookieSigner
	secureCookies bool
}

func NewAuthHandler(auth *state.Auth, signer *security.CookieSigner, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		auth:          auth,
		signer:        signer,
		secureCookies: secureCookies,
	}
}

// RegisterRequest represents registration request
type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

// LoginRequest represents login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the identity slice of a session exposed to the UI.
type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// SessionResponse wraps the identity for login/register/me responses.
type SessionResponse struct {
	User UserResponse `json:"user"`
}

func sessionResponse(session *domain.Session) SessionResponse {
	return SessionResponse{User: UserResponse{
		ID:    session.UserID,
		Name:  session.DisplayName,
		Email: session.Email,
		Role:  session.Role,
	}}
}

// Register handles account creation; a successful registration lands
// signed in, mirroring the upstream behavior.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Name, email and password are required")
		return
	}
	if req.Password != req.PasswordConfirm {
		writeError(w, http.StatusBadRequest, "Passwords do not match")
		return
	}

	session, err := h.auth.Register(r.Context(), catalog.SignUpFields{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Password:   req.Password,
		RePassword: req.PasswordConfirm,
	})
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	if err := h.setSessionCookie(w, session.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to establish session")
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse(session))
}

// Login handles sign-in against the upstream Catalog API.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	session, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	if err := h.setSessionCookie(w, session.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to establish session")
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(session))
}

// Logout ends the session and expires the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	h.auth.Logout(r.Context(), session.ID)
	clearSessionCookie(w, h.secureCookies)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Signed out"})
}

// Me returns the identity bound to the session.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse(session))
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, sessionID string) error {
	value, err := h.signer.Mint(sessionID, time.Now())
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(security.CookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func clearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
