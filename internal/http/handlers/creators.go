package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/hongminglow/eros-desk/internal/auth"
	"github.com/hongminglow/eros-desk/internal/http/respond"
	"github.com/hongminglow/eros-desk/internal/models"
	"github.com/hongminglow/eros-desk/internal/models/dto"
	"github.com/hongminglow/eros-desk/internal/storage"
)

type creatorStore interface {
	storage.CreatorStore
	storage.CreatorWriter
}

// CreatorsHandler serves creator profiles.
type CreatorsHandler struct {
	gate   *auth.Gate
	store  creatorStore
	logger *zap.Logger
}

// NewCreatorsHandler constructs the handler.
func NewCreatorsHandler(gate *auth.Gate, store creatorStore, logger *zap.Logger) *CreatorsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CreatorsHandler{gate: gate, store: store, logger: logger}
}

// Register attaches creator routes to the mux.
func (h *CreatorsHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/creators", h.handleCollection)
	mux.HandleFunc("/creators/{id}", h.handleItem)
}

func (h *CreatorsHandler) handleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r)
	case http.MethodPost:
		h.handleCreate(w, r)
	default:
		respond.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *CreatorsHandler) handleItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		respond.Error(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	h.handleUpdate(w, r)
}

func (h *CreatorsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	session, scope, ok := h.authorize(w, r, auth.ActionCreatorsRead)
	if !ok {
		return
	}
	creators, err := h.store.ListCreators(r.Context(), scope)
	if err != nil {
		h.logger.Error("list creators", zap.String("identity_id", session.IdentityID), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to list creators")
		return
	}
	respond.JSON(w, http.StatusOK, "creators", creators)
}

func (h *CreatorsHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	if err := h.gate.RequirePermission(session, auth.ActionCreatorsCreate); err != nil {
		respond.AuthError(w, h.logger, err)
		return
	}
	var req dto.CreateCreatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		respond.Error(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.IdentityID != nil && strings.TrimSpace(*req.IdentityID) == "" {
		req.IdentityID = nil
	}

	created, err := h.store.CreateCreator(r.Context(), models.Creator{
		Name:        name,
		IdentityID:  req.IdentityID,
		CreatedByID: session.IdentityID,
	})
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrAlreadyExists):
			respond.Error(w, http.StatusConflict, "login already linked to a creator profile")
		case errors.Is(err, storage.ErrNotFound):
			respond.Error(w, http.StatusBadRequest, "identity not found")
		default:
			h.logger.Error("create creator", zap.String("identity_id", session.IdentityID), zap.Error(err))
			respond.Error(w, http.StatusInternalServerError, "failed to create creator")
		}
		return
	}
	respond.JSON(w, http.StatusCreated, "creator created", created)
}

func (h *CreatorsHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	session, scope, ok := h.authorize(w, r, auth.ActionCreatorsUpdate)
	if !ok {
		return
	}
	var req dto.UpdateCreatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		respond.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	updated, err := h.store.UpdateCreator(r.Context(), r.PathValue("id"), name, scope)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "creator not found")
			return
		}
		h.logger.Error("update creator", zap.String("identity_id", session.IdentityID), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to update creator")
		return
	}
	respond.JSON(w, http.StatusOK, "creator updated", updated)
}

// authorize checks action and resolves the creator scope: roles holding
// creators:read_all see every profile, the rest fall back to ScopeFor.
func (h *CreatorsHandler) authorize(w http.ResponseWriter, r *http.Request, action auth.Action) (*models.Session, models.DataScope, bool) {
	session := auth.SessionFromContext(r.Context())
	if err := h.gate.RequirePermission(session, action); err != nil {
		respond.AuthError(w, h.logger, err)
		return nil, models.DataScope{}, false
	}
	if h.gate.Table().Can(session.Role, auth.ActionCreatorsReadAll) {
		return session, models.UnrestrictedScope(), true
	}
	scope, err := h.gate.ScopeFor(r.Context(), session.Role, session.IdentityID)
	if err != nil {
		respond.AuthError(w, h.logger, err)
		return nil, models.DataScope{}, false
	}
	return session, scope, true
}
