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

type ticketStore interface {
	storage.TicketStore
	storage.TicketWriter
}

// TicketsHandler serves ticket listings and changes, narrowed to what the caller may see.
type TicketsHandler struct {
	gate   *auth.Gate
	store  ticketStore
	logger *zap.Logger
}

// NewTicketsHandler constructs the handler.
func NewTicketsHandler(gate *auth.Gate, store ticketStore, logger *zap.Logger) *TicketsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketsHandler{gate: gate, store: store, logger: logger}
}

// Register attaches ticket routes to the mux.
func (h *TicketsHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/tickets", h.handleCollection)
	mux.HandleFunc("/tickets/{id}", h.handleItem)
}

func (h *TicketsHandler) handleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r)
	case http.MethodPost:
		h.handleCreate(w, r)
	default:
		respond.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *TicketsHandler) handleItem(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPatch:
		h.handleUpdate(w, r)
	case http.MethodDelete:
		h.handleDelete(w, r)
	default:
		respond.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *TicketsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	session, scope, ok := h.authorize(w, r, auth.ActionTicketsRead)
	if !ok {
		return
	}
	tickets, err := h.store.ListTickets(r.Context(), scope)
	if err != nil {
		h.logger.Error("list tickets", zap.String("identity_id", session.IdentityID), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to list tickets")
		return
	}
	respond.JSON(w, http.StatusOK, "tickets", tickets)
}

func (h *TicketsHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	if err := h.gate.RequirePermission(session, auth.ActionTicketsCreate); err != nil {
		respond.AuthError(w, h.logger, err)
		return
	}
	var req dto.CreateTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.CreatorID) == "" {
		respond.Error(w, http.StatusBadRequest, "title and creator_id are required")
		return
	}

	created, err := h.store.CreateTicket(r.Context(), models.Ticket{
		Title:       strings.TrimSpace(req.Title),
		Status:      models.TicketOpen,
		CreatorID:   strings.TrimSpace(req.CreatorID),
		CreatedByID: session.IdentityID,
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusBadRequest, "creator not found")
			return
		}
		h.logger.Error("create ticket", zap.String("identity_id", session.IdentityID), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to create ticket")
		return
	}
	respond.JSON(w, http.StatusCreated, "ticket created", created)
}

func (h *TicketsHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	session, scope, ok := h.authorize(w, r, auth.ActionTicketsUpdate)
	if !ok {
		return
	}
	var req dto.UpdateTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	status := models.TicketStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if !status.Valid() {
		respond.Error(w, http.StatusBadRequest, "status must be OPEN, IN_PROGRESS or DONE")
		return
	}

	updated, err := h.store.UpdateTicketStatus(r.Context(), r.PathValue("id"), status, scope)
	if err != nil {
		h.writeError(w, session, "update ticket", err)
		return
	}
	respond.JSON(w, http.StatusOK, "ticket updated", updated)
}

func (h *TicketsHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	session, scope, ok := h.authorize(w, r, auth.ActionTicketsDelete)
	if !ok {
		return
	}
	if err := h.store.DeleteTicket(r.Context(), r.PathValue("id"), scope); err != nil {
		h.writeError(w, session, "delete ticket", err)
		return
	}
	respond.JSON(w, http.StatusOK, "ticket deleted", nil)
}

// authorize checks action and resolves the caller's data scope. It writes the
// error response itself and reports ok=false when the request must stop.
func (h *TicketsHandler) authorize(w http.ResponseWriter, r *http.Request, action auth.Action) (*models.Session, models.DataScope, bool) {
	session := auth.SessionFromContext(r.Context())
	if err := h.gate.RequirePermission(session, action); err != nil {
		respond.AuthError(w, h.logger, err)
		return nil, models.DataScope{}, false
	}
	scope, err := h.gate.ScopeFor(r.Context(), session.Role, session.IdentityID)
	if err != nil {
		respond.AuthError(w, h.logger, err)
		return nil, models.DataScope{}, false
	}
	return session, scope, true
}

func (h *TicketsHandler) writeError(w http.ResponseWriter, session *models.Session, op string, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		respond.Error(w, http.StatusNotFound, "ticket not found")
		return
	}
	h.logger.Error(op, zap.String("identity_id", session.IdentityID), zap.Error(err))
	respond.Error(w, http.StatusInternalServerError, "failed to "+op)
}
