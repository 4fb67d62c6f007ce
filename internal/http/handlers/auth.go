package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/hongminglow/eros-desk/internal/auth"
	"github.com/hongminglow/eros-desk/internal/http/respond"
	"github.com/hongminglow/eros-desk/internal/http/sessioncookie"
	"github.com/hongminglow/eros-desk/internal/models/dto"
)

// AuthHandler owns the login, logout and current-session endpoints.
type AuthHandler struct {
	sessions     *auth.SessionManager
	table        *auth.PermissionTable
	secureCookie bool
	logger       *zap.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(sessions *auth.SessionManager, table *auth.PermissionTable, secureCookie bool, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{sessions: sessions, table: table, secureCookie: secureCookie, logger: logger}
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/login", h.handleLogin)
	mux.HandleFunc("/logout", h.handleLogout)
	mux.HandleFunc("/me", h.handleMe)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respond.Error(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		respond.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	result, err := h.sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respond.AuthError(w, h.logger, err)
		return
	}

	sessioncookie.Set(w, result.Token, result.Session.ExpiresAt, h.secureCookie)
	respond.JSON(w, http.StatusOK, "login successful", dto.LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.Session.ExpiresAt.Unix(),
		User:      result.Identity,
	})
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respond.Error(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	// The cookie goes regardless; a failed revocation is already logged.
	if session := auth.SessionFromContext(r.Context()); session != nil {
		_ = h.sessions.Logout(r.Context(), *session)
	}
	sessioncookie.Clear(w, h.secureCookie)
	respond.JSON(w, http.StatusOK, "logged out", nil)
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respond.Error(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	session := auth.SessionFromContext(r.Context())
	if session == nil {
		respond.Error(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	actions := h.table.Actions(session.Role)
	permissions := make([]string, 0, len(actions))
	for _, action := range actions {
		permissions = append(permissions, string(action))
	}
	respond.JSON(w, http.StatusOK, "current session", dto.MeResponse{Session: *session, Permissions: permissions})
}
