package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/eros-desk/internal/models"
)

func newTestGate(store *memoryStore) *Gate {
	return NewGate(DefaultPermissionTable(), store, GateOptions{})
}

func TestAuthorizeRoute(t *testing.T) {
	gate := newTestGate(newMemoryStore())
	session := &models.Session{IdentityID: "u1", Role: models.RoleSuperAdmin}

	tests := []struct {
		name    string
		session *models.Session
		path    string
		want    Decision
	}{
		{"protected with session", session, "/users", Decision{Outcome: Allow}},
		{"protected without session", nil, "/users", RedirectTo("/login")},
		{"nested protected without session", nil, "/dashboard/tickets/42", RedirectTo("/login")},
		{"prefix lookalike is not protected", nil, "/usersettings", Decision{Outcome: Allow}},
		{"login with session", session, "/login", RedirectTo("/dashboard")},
		{"register with session", session, "/register", RedirectTo("/dashboard")},
		{"login without session", nil, "/login", Decision{Outcome: Allow}},
		{"unlisted path without session", nil, "/pricing", Decision{Outcome: Allow}},
		{"root without session", nil, "/", Decision{Outcome: Allow}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, gate.AuthorizeRoute(tt.session, tt.path))
		})
	}
}

func TestAuthorizeRouteCustomPrefixes(t *testing.T) {
	gate := NewGate(DefaultPermissionTable(), nil, GateOptions{
		ProtectedPrefixes: []string{"/admin/"},
		LoginPath:         "/signin",
	})
	assert.Equal(t, RedirectTo("/signin"), gate.AuthorizeRoute(nil, "/admin"))
	assert.Equal(t, RedirectTo("/signin"), gate.AuthorizeRoute(nil, "/admin/users"))
	assert.Equal(t, Decision{Outcome: Allow}, gate.AuthorizeRoute(nil, "/users"))
}

func TestProtects(t *testing.T) {
	gate := newTestGate(newMemoryStore())
	assert.True(t, gate.Protects("/tickets"))
	assert.True(t, gate.Protects("/tickets/t1"))
	assert.False(t, gate.Protects("/ticketsx"))
	assert.False(t, gate.Protects("/login"))
	assert.False(t, gate.Protects("/health"))
}

func TestRequirePermission(t *testing.T) {
	gate := newTestGate(newMemoryStore())

	err := gate.RequirePermission(&models.Session{Role: models.RoleSuperAdmin}, ActionUsersManage)
	require.NoError(t, err)

	err = gate.RequirePermission(&models.Session{Role: models.RoleChatter}, ActionUsersManage)
	assert.True(t, IsKind(err, KindUnauthorized))
	assert.Equal(t, "forbidden", PublicMessage(err))

	err = gate.RequirePermission(nil, ActionTicketsRead)
	assert.True(t, IsKind(err, KindUnauthorized))
}

func TestScopeForUnrestrictedRoles(t *testing.T) {
	gate := newTestGate(newMemoryStore())
	for _, role := range []models.Role{models.RoleSuperAdmin, models.RoleManager, models.RoleScheduler} {
		scope, err := gate.ScopeFor(context.Background(), role, "u1")
		require.NoError(t, err)
		assert.Equal(t, models.UnrestrictedScope(), scope, "role %s", role)
	}
}

func TestScopeForChatter(t *testing.T) {
	gate := newTestGate(newMemoryStore())

	scope, err := gate.ScopeFor(context.Background(), models.RoleChatter, "u1")
	require.NoError(t, err)
	require.NotNil(t, scope.CreatedByID)
	assert.Equal(t, "u1", *scope.CreatedByID)
	assert.Nil(t, scope.OwnerID)

	tickets := []models.Ticket{
		{ID: "t1", CreatorID: "c1", CreatedByID: "u1"},
		{ID: "t2", CreatorID: "c1", CreatedByID: "u2"},
	}
	var visible []string
	for _, ticket := range tickets {
		if scope.Matches(ticket) {
			visible = append(visible, ticket.ID)
		}
	}
	assert.Equal(t, []string{"t1"}, visible)
}

func TestScopeForCreatorWithProfile(t *testing.T) {
	store := newMemoryStore()
	store.profiles["u9"] = "creator-7"
	gate := newTestGate(store)

	scope, err := gate.ScopeFor(context.Background(), models.RoleCreator, "u9")
	require.NoError(t, err)
	require.NotNil(t, scope.OwnerID)
	assert.Equal(t, "creator-7", *scope.OwnerID)
	assert.True(t, scope.Matches(models.Ticket{CreatorID: "creator-7", CreatedByID: "anyone"}))
	assert.False(t, scope.Matches(models.Ticket{CreatorID: "creator-8", CreatedByID: "u9"}))
}

func TestScopeForCreatorWithoutProfileMatchesNothing(t *testing.T) {
	gate := newTestGate(newMemoryStore())

	scope, err := gate.ScopeFor(context.Background(), models.RoleCreator, "u9")
	require.NoError(t, err)
	assert.True(t, scope.IsEmpty())
	assert.False(t, scope.Unrestricted)
	assert.False(t, scope.Matches(models.Ticket{CreatorID: "c1", CreatedByID: "u9"}))
}

func TestScopeForCreatorLookupFailure(t *testing.T) {
	store := newMemoryStore()
	store.profileErr = errStoreDown
	gate := newTestGate(store)

	scope, err := gate.ScopeFor(context.Background(), models.RoleCreator, "u9")
	assert.True(t, IsKind(err, KindUnavailable))
	assert.True(t, scope.IsEmpty())
}

func TestScopeForUnknownRoleMatchesNothing(t *testing.T) {
	gate := newTestGate(newMemoryStore())
	scope, err := gate.ScopeFor(context.Background(), models.Role("OWNER"), "u1")
	require.NoError(t, err)
	assert.True(t, scope.IsEmpty())
}
