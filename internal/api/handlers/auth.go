package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gisoinvest/auth-service/internal/api/middleware"
	"github.com/gisoinvest/auth-service/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
	sessions    *service.SessionService
}

func NewAuthHandler(authService *service.AuthService, sessions *service.SessionService) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions}
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidInput, "invalid request body")
		return
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, CodeInvalidInput, "username, email and password are required")
		return
	}

	user, err := h.authService.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"userId": user.ID.String(),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidInput, "invalid request body")
		return
	}

	if req.Identifier == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, CodeInvalidInput, "identifier and password are required")
		return
	}

	result, err := h.authService.Login(r.Context(), service.LoginInput{
		Identifier: req.Identifier,
		Password:   req.Password,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"token":  result.Token,
		"userId": result.User.ID.String(),
	})
}

// Validate runs behind the auth middleware; reaching it means the session is
// good, so it only echoes the identity back.
func (h *AuthHandler) Validate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, CodeInvalidSession, "invalid or expired session")
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"userId":   user.ID.String(),
		"username": user.Username,
	})
}

// Logout revokes the presented token. It is idempotent: unknown, expired and
// already-revoked tokens all get a 200.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.BearerToken(r); token != "" {
		_ = h.sessions.Revoke(r.Context(), token)
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, CodeInvalidSession, "authorization header required")
		return
	}

	newToken, err := h.sessions.Refresh(r.Context(), token)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": newToken})
}
