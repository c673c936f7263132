package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/youthunite/youthunite/internal/auth"
	"github.com/youthunite/youthunite/internal/email"
	"github.com/youthunite/youthunite/internal/middleware"
	"github.com/youthunite/youthunite/internal/store"
)

// nameRe is the display-name rule: starts alphanumeric, 3-17 chars total,
// word characters and hyphens after the first.
var nameRe = regexp.MustCompile(`^[A-Za-z0-9][\w-]{2,16}$`)

const minPasswordLen = 8

type AuthHandler struct {
	authSvc     *auth.Service
	userStore   *store.UserStore
	emailClient *email.Client
	logger      *slog.Logger
}

func NewAuthHandler(svc *auth.Service, us *store.UserStore, ec *email.Client, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authSvc:     svc,
		userStore:   us,
		emailClient: ec,
		logger:      logger,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	if !nameRe.MatchString(req.Name) {
		writeError(w, http.StatusBadRequest, "name must be 3-17 characters, starting with a letter or digit")
		return
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "valid email is required")
		return
	}
	if len(req.Password) < minPasswordLen {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	user, token, err := h.authSvc.Register(req.Name, req.Email, req.Password, middleware.RealIP(r))
	if errors.Is(err, auth.ErrConflict) {
		// Deliberately vague: don't reveal whether the name or email is taken.
		writeError(w, http.StatusConflict, "name or email already in use")
		return
	}
	if err != nil {
		h.logger.Error("register", "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	writeSuccess(w, http.StatusCreated, map[string]any{"jwt_token": token, "user": user})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, token, err := h.authSvc.Login(req.Email, req.Password, middleware.RealIP(r))
	if errors.Is(err, auth.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if err != nil {
		h.logger.Error("login", "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"jwt_token": token, "user": user})
}

type logoutRequest struct {
	Token string `json:"jwt_token"`
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	// The token may come in the body or the Authorization header.
	var req logoutRequest
	json.NewDecoder(r.Body).Decode(&req)
	token := req.Token
	if token == "" {
		header := r.Header.Get("Authorization")
		token = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if token == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}

	err := h.authSvc.Logout(token)
	if errors.Is(err, auth.ErrInvalidSession) {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	if errors.Is(err, auth.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		h.logger.Error("logout", "error", err)
		writeError(w, http.StatusInternalServerError, "logout failed")
		return
	}

	writeSuccess(w, http.StatusOK, nil)
}

// Me returns the authenticated user. Sits behind RequireAuth.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.userStore.GetByID(auth.UserID(r.Context()))
	if err != nil || user == nil {
		h.logger.Error("me lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"user": user})
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword always reports success on well-formed input so the
// endpoint cannot be used to probe which emails have accounts.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	tok, user, err := h.authSvc.RequestPasswordReset(req.Email)
	if err != nil {
		h.logger.Error("request password reset", "error", err)
	}
	if tok != nil && user != nil {
		if h.emailClient.Configured() {
			if err := h.emailClient.SendPasswordReset(user.Email, user.Name, tok.Token); err != nil {
				h.logger.Error("send reset email", "error", err)
			}
		} else {
			h.logger.Info("email not configured, reset token", "token", tok.Token, "user_id", user.ID)
		}
	}

	writeSuccess(w, http.StatusOK, nil)
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Token == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}
	if len(req.Password) < minPasswordLen {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	err := h.authSvc.ResetPassword(req.Token, req.Password)
	if errors.Is(err, auth.ErrInvalidResetToken) {
		writeError(w, http.StatusBadRequest, "invalid or expired reset token")
		return
	}
	if err != nil {
		h.logger.Error("reset password", "error", err)
		writeError(w, http.StatusInternalServerError, "password reset failed")
		return
	}

	writeSuccess(w, http.StatusOK, nil)
}

// ValidateResetToken lets the reset form check a token before showing the
// new-password fields. Invalid tokens are a valid=false success, not an
// error.
func (h *AuthHandler) ValidateResetToken(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}

	_, err := h.authSvc.ValidateResetToken(token)
	if errors.Is(err, auth.ErrInvalidResetToken) {
		writeSuccess(w, http.StatusOK, map[string]any{"valid": false})
		return
	}
	if err != nil {
		h.logger.Error("validate reset token", "error", err)
		writeError(w, http.StatusInternalServerError, "validation failed")
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"valid": true})
}
