package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/hongminglow/eros-desk/internal/models"
	"github.com/hongminglow/eros-desk/internal/storage"
)

// Outcome is the verdict of a gate check.
type Outcome int

const (
	Allow Outcome = iota
	Redirect
	Deny
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	default:
		return "deny"
	}
}

// Decision is returned by route checks. Location is set for redirects.
type Decision struct {
	Outcome  Outcome
	Location string
}

// RedirectTo builds a redirect decision.
func RedirectTo(path string) Decision {
	return Decision{Outcome: Redirect, Location: path}
}

// GateOptions configures the path sets the gate enforces.
type GateOptions struct {
	ProtectedPrefixes []string
	EntryPaths        []string
	LoginPath         string
	HomePath          string
}

// DefaultGateOptions matches the dashboard layout of the web app.
func DefaultGateOptions() GateOptions {
	return GateOptions{
		ProtectedPrefixes: []string{"/dashboard", "/tickets", "/creators", "/users", "/me"},
		EntryPaths:        []string{"/login", "/register"},
		LoginPath:         "/login",
		HomePath:          "/dashboard",
	}
}

// Gate decides route access and narrows data queries by role.
type Gate struct {
	table     *PermissionTable
	profiles  storage.CreatorProfileLookup
	protected []string
	entry     map[string]bool
	loginPath string
	homePath  string
}

// NewGate builds a gate. Empty option fields fall back to DefaultGateOptions.
func NewGate(table *PermissionTable, profiles storage.CreatorProfileLookup, opts GateOptions) *Gate {
	defaults := DefaultGateOptions()
	if len(opts.ProtectedPrefixes) == 0 {
		opts.ProtectedPrefixes = defaults.ProtectedPrefixes
	}
	if len(opts.EntryPaths) == 0 {
		opts.EntryPaths = defaults.EntryPaths
	}
	if opts.LoginPath == "" {
		opts.LoginPath = defaults.LoginPath
	}
	if opts.HomePath == "" {
		opts.HomePath = defaults.HomePath
	}

	protected := make([]string, 0, len(opts.ProtectedPrefixes))
	for _, prefix := range opts.ProtectedPrefixes {
		prefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
		if prefix != "" {
			protected = append(protected, prefix)
		}
	}
	entry := make(map[string]bool, len(opts.EntryPaths))
	for _, p := range opts.EntryPaths {
		entry[strings.TrimSpace(p)] = true
	}

	return &Gate{
		table:     table,
		profiles:  profiles,
		protected: protected,
		entry:     entry,
		loginPath: opts.LoginPath,
		homePath:  opts.HomePath,
	}
}

// Table exposes the permission table the gate consults.
func (g *Gate) Table() *PermissionTable {
	return g.table
}

// AuthorizeRoute gates a request path. Paths outside the protected and entry
// sets are allowed.
func (g *Gate) AuthorizeRoute(session *models.Session, path string) Decision {
	if g.isProtected(path) && session == nil {
		return RedirectTo(g.loginPath)
	}
	if g.entry[path] && session != nil {
		return RedirectTo(g.homePath)
	}
	return Decision{Outcome: Allow}
}

// RequirePermission returns an Unauthorized error unless the session's role may perform action.
func (g *Gate) RequirePermission(session *models.Session, action Action) error {
	if session == nil {
		return newError(KindUnauthorized, "no session", nil)
	}
	if !g.table.Can(session.Role, action) {
		return newError(KindUnauthorized, string(session.Role)+" lacks "+string(action), nil)
	}
	return nil
}

// ScopeFor computes the ticket filter for a caller. Creators see tickets filed
// against their own profile, chatters see what they created, every other role
// is unrestricted.
func (g *Gate) ScopeFor(ctx context.Context, role models.Role, identityID string) (models.DataScope, error) {
	switch role {
	case models.RoleCreator:
		if identityID == "" || g.profiles == nil {
			return models.EmptyScope(), nil
		}
		profileID, err := g.profiles.FindCreatorProfileByIdentityID(ctx, identityID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return models.EmptyScope(), nil
			}
			return models.EmptyScope(), newError(KindUnavailable, "lookup creator profile", err)
		}
		if profileID == "" {
			return models.EmptyScope(), nil
		}
		return models.OwnedBy(profileID), nil
	case models.RoleChatter:
		if identityID == "" {
			return models.EmptyScope(), nil
		}
		return models.CreatedBy(identityID), nil
	case models.RoleManager, models.RoleScheduler, models.RoleSuperAdmin:
		return models.UnrestrictedScope(), nil
	default:
		return models.EmptyScope(), nil
	}
}

// Protects reports whether path requires a session.
func (g *Gate) Protects(path string) bool {
	return g.isProtected(path)
}

func (g *Gate) isProtected(path string) bool {
	for _, prefix := range g.protected {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}
