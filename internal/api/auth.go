package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/erazemk/lendshare/internal/auth"
	"github.com/erazemk/lendshare/internal/model"
	"github.com/erazemk/lendshare/internal/store"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	DB            *sql.DB
	JWTSecret     string
	TokenTTL      time.Duration
	SecureCookies bool
}

type registerRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,max=72"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (h *AuthHandler) ttl() time.Duration {
	if h.TokenTTL > 0 {
		return h.TokenTTL
	}
	return auth.TokenExpiry
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, "invalid request body")
		return
	}
	if err := model.ValidatePassword(req.Password); err != nil {
		writeError(w, err, "invalid password")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, err, "failed to hash password")
		return
	}

	email := normalizeEmail(req.Email)
	user, err := store.CreateUser(r.Context(), h.DB, email,
		strings.TrimSpace(req.FirstName), strings.TrimSpace(req.LastName), hash, model.RoleUser)
	if errors.Is(err, model.ErrConflict) {
		jsonError(w, http.StatusConflict, "an account with this email already exists")
		return
	}
	if err != nil {
		writeError(w, err, "failed to create account")
		return
	}

	slog.Info("user registered", "user", user.Email, "id", user.ID)
	jsonOK(w, http.StatusCreated, "account created", map[string]any{"user": user})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, "invalid request body")
		return
	}

	email := normalizeEmail(req.Email)
	user, err := store.GetUserByEmail(r.Context(), h.DB, email)
	if err != nil {
		writeError(w, err, "internal error")
		return
	}
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	ok, err := auth.CheckPassword(user.PasswordHash, req.Password)
	if err != nil {
		writeError(w, err, "internal error")
		return
	}
	if !ok {
		slog.Warn("login failed", "user", email, "remote", r.RemoteAddr)
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, user, h.ttl())
	if err != nil {
		writeError(w, err, "failed to generate token")
		return
	}

	h.setCookie(w, token, int(h.ttl().Seconds()))
	slog.Info("user logged in", "user", user.Email, "role", user.Role)
	jsonOK(w, http.StatusOK, "logged in", map[string]any{"token": token, "user": user})
}

// Logout handles POST /api/auth/logout. The token's JTI is revoked until it
// would have expired.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	expiresAt := time.Now().Add(h.ttl())
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := store.RevokeToken(r.Context(), h.DB, claims.ID, expiresAt); err != nil {
		writeError(w, err, "failed to log out")
		return
	}

	h.setCookie(w, "", -1)
	slog.Info("user logged out", "user", claims.Email)
	jsonOK(w, http.StatusOK, "logged out", nil)
}

// Session handles GET /api/auth/session. It never fails: an absent or
// invalid token reports connected=false.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	claims, err := authenticate(r, h.JWTSecret, h.DB)
	if err != nil {
		jsonResponse(w, http.StatusOK, map[string]any{"connected": false})
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, claims.UserID)
	if err != nil || user == nil {
		jsonResponse(w, http.StatusOK, map[string]any{"connected": false})
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"connected": true, "user": user})
}

// ChangePassword handles PUT /api/auth/password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, "invalid request body")
		return
	}
	if err := model.ValidatePassword(req.NewPassword); err != nil {
		writeError(w, err, "invalid password")
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, claims.UserID)
	if err != nil {
		writeError(w, err, "internal error")
		return
	}
	if user == nil || user.DeletedAt != nil {
		jsonError(w, http.StatusUnauthorized, "session user no longer exists")
		return
	}

	ok, err := auth.CheckPassword(user.PasswordHash, req.CurrentPassword)
	if err != nil {
		writeError(w, err, "internal error")
		return
	}
	if !ok {
		jsonError(w, http.StatusUnauthorized, "current password is incorrect")
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		writeError(w, err, "failed to hash password")
		return
	}

	if err := store.UpdateUserPassword(r.Context(), h.DB, claims.UserID, hash); err != nil {
		writeError(w, err, "failed to update password")
		return
	}

	slog.Info("user changed own password", "user", claims.Email)
	jsonOK(w, http.StatusOK, "password updated", nil)
}
