package handlers

import (
	"net/http"

	"github.com/hongminglow/eros-desk/internal/auth"
	"github.com/hongminglow/eros-desk/internal/http/respond"
	"github.com/hongminglow/eros-desk/internal/models"
)

// DashboardHandler is the landing route after login. It tells the client
// which sections the caller's role unlocks.
type DashboardHandler struct {
	table *auth.PermissionTable
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(table *auth.PermissionTable) *DashboardHandler {
	return &DashboardHandler{table: table}
}

// Register wires the handler into a ServeMux.
func (h *DashboardHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/dashboard", h.handle)
}

type dashboardSection struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

var dashboardSections = []struct {
	section dashboardSection
	action  auth.Action
}{
	{dashboardSection{Name: "Tickets", Path: "/tickets"}, auth.ActionTicketsRead},
	{dashboardSection{Name: "Creators", Path: "/creators"}, auth.ActionCreatorsRead},
	{dashboardSection{Name: "Users", Path: "/users"}, auth.ActionUsersRead},
}

func (h *DashboardHandler) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respond.Error(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	session := auth.SessionFromContext(r.Context())
	if session == nil {
		respond.Error(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	respond.JSON(w, http.StatusOK, "dashboard", map[string]any{
		"role":     session.Role,
		"sections": sectionsFor(h.table, session.Role),
	})
}

func sectionsFor(table *auth.PermissionTable, role models.Role) []dashboardSection {
	out := []dashboardSection{}
	for _, entry := range dashboardSections {
		if table.Can(role, entry.action) {
			out = append(out, entry.section)
		}
	}
	return out
}
