package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/hongminglow/eros-desk/internal/auth"
	"github.com/hongminglow/eros-desk/internal/http/respond"
	"github.com/hongminglow/eros-desk/internal/models"
	"github.com/hongminglow/eros-desk/internal/models/dto"
	"github.com/hongminglow/eros-desk/internal/storage"
)

// MinPasswordLength is enforced when creating identities.
const MinPasswordLength = 8

// UsersHandler lists and creates identities.
type UsersHandler struct {
	gate   *auth.Gate
	store  storage.IdentityStore
	logger *zap.Logger
}

// NewUsersHandler constructs the handler.
func NewUsersHandler(gate *auth.Gate, store storage.IdentityStore, logger *zap.Logger) *UsersHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UsersHandler{gate: gate, store: store, logger: logger}
}

// Register attaches user administration routes to the mux.
func (h *UsersHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/users", h.handle)
}

func (h *UsersHandler) handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r)
	case http.MethodPost:
		h.handleCreate(w, r)
	default:
		respond.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *UsersHandler) handleList(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	if err := h.gate.RequirePermission(session, auth.ActionUsersRead); err != nil {
		respond.AuthError(w, h.logger, err)
		return
	}
	identities, err := h.store.ListIdentities(r.Context())
	if err != nil {
		h.logger.Error("list identities", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	if identities == nil {
		identities = []models.Identity{}
	}
	respond.JSON(w, http.StatusOK, "users", identities)
}

func (h *UsersHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	if err := h.gate.RequirePermission(session, auth.ActionUsersManage); err != nil {
		respond.AuthError(w, h.logger, err)
		return
	}

	var req dto.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	identity, err := NewIdentity(req)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.store.CreateIdentity(r.Context(), identity)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			respond.Error(w, http.StatusConflict, "user already exists")
			return
		}
		h.logger.Error("create identity", zap.String("email", identity.Email), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	h.logger.Info("identity created",
		zap.String("identity_id", created.ID),
		zap.String("role", string(created.Role)),
		zap.String("created_by", session.IdentityID))
	respond.JSON(w, http.StatusCreated, "user created", created)
}

// NewIdentity validates a create request and hashes its password.
func NewIdentity(req dto.CreateUserRequest) (models.Identity, error) {
	email := models.NormalizeEmail(req.Email)
	name := strings.TrimSpace(req.DisplayName)
	if email == "" || !strings.Contains(email, "@") {
		return models.Identity{}, errors.New("a valid email is required")
	}
	if name == "" {
		return models.Identity{}, errors.New("display_name is required")
	}
	if utf8.RuneCountInString(req.Password) < MinPasswordLength || !utf8.ValidString(req.Password) {
		return models.Identity{}, errors.New("password must be at least 8 characters")
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		return models.Identity{}, err
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return models.Identity{}, err
	}
	return models.Identity{
		Email:        email,
		DisplayName:  name,
		Role:         role,
		Active:       true,
		PasswordHash: hash,
	}, nil
}
