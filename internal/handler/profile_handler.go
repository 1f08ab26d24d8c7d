package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"storefront-gateway/internal/middleware"
	"storefront-gateway/internal/state"
)

// ProfileHandler updates the signed-in shopper's account. Both operations
// proxy to the upstream with the session's token.
type ProfileHandler struct {
	auth          *state.Auth
	secureCookies bool
}

func NewProfileHandler(auth *state.Auth, secureCookies bool) *ProfileHandler {
	return &ProfileHandler{auth: auth, secureCookies: secureCookies}
}

type UpdateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type ChangePasswordRequest struct {
	CurrentPassword    string `json:"current_password"`
	NewPassword        string `json:"new_password"`
	NewPasswordConfirm string `json:"new_password_confirm"`
}

// Update handles PUT /api/v1/users/me and returns the refreshed session
// view.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "Name and email are required")
		return
	}

	updated, err := h.auth.UpdateProfile(r.Context(), session, req.Name, req.Email, strings.TrimSpace(req.Phone))
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(updated))
}

// ChangePassword handles PUT /api/v1/users/password. The upstream rotates
// the token on success, so the session ends and the cookie is cleared.
func (h *ProfileHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "Current and new passwords are required")
		return
	}
	if req.NewPassword != req.NewPasswordConfirm {
		writeError(w, http.StatusBadRequest, "Passwords do not match")
		return
	}

	if err := h.auth.ChangePassword(r.Context(), session, req.CurrentPassword, req.NewPassword, req.NewPasswordConfirm); err != nil {
		writeUpstreamError(w, err)
		return
	}

	clearSessionCookie(w, h.secureCookies)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password changed, please sign in again"})
}
