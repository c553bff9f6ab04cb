package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jonathan/profile-builder/internal/config"
	"github.com/jonathan/profile-builder/internal/profile"
	"github.com/jonathan/profile-builder/internal/server/middleware"
	"github.com/jonathan/profile-builder/internal/types"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	userService *UserService
	tokens      *Tokens
	jwtConfig   *config.JWTConfig
}

var authLabels = map[string]string{
	"name":            "Name",
	"email":           "Email",
	"password":        "Password",
	"currentPassword": "Current password",
	"newPassword":     "New password",
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(userService *UserService, tokens *Tokens, jwtConfig *config.JWTConfig) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		tokens:      tokens,
		jwtConfig:   jwtConfig,
	}
}

func (h *AuthHandler) cookieName() string {
	if h.jwtConfig == nil || h.jwtConfig.CookieName == "" {
		return config.DefaultSessionCookie
	}
	return h.jwtConfig.CookieName
}

// Register handles user registration requests.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req types.CreateUserRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	h.startSession(w, http.StatusCreated, user)
}

// Login handles user login requests.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	h.startSession(w, http.StatusOK, user)
}

// Logout clears the session cookie. Bearer tokens stay valid until they expire.
func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName(),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.jwtConfig != nil && h.jwtConfig.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]string{"message": "Logged out"}})
}

// UpdatePassword changes the authenticated user's password.
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
		return
	}

	var req types.UpdatePasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.userService.UpdatePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		writeAuthError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]string{"message": "Password updated successfully"}})
}

// decode reads and validates a request body, writing a 400 on failure.
func (h *AuthHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid request body"})
		return false
	}
	if err := profile.ValidateStruct(v, authLabels); err != nil {
		writeAuthError(w, err)
		return false
	}
	return true
}

// startSession issues a token, sets the session cookie and writes {data:{user, token}}.
func (h *AuthHandler) startSession(w http.ResponseWriter, status int, user *types.User) {
	token, expires, err := h.tokens.Issue(user.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Failed to generate token"})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName(),
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(h.tokens.ttl / time.Second),
		HttpOnly: true,
		Secure:   h.jwtConfig != nil && h.jwtConfig.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, status, map[string]any{"data": types.LoginResponse{User: user, Token: token}})
}

func writeAuthError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	writeJSON(w, status, newErrorBody(err, status))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
