package models

import (
	"fmt"
	"strings"
)

// Role is the permission tier assigned to an identity.
type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleManager    Role = "MANAGER"
	RoleScheduler  Role = "SCHEDULER"
	RoleChatter    Role = "CHATTER"
	RoleCreator    Role = "CREATOR"
)

// Roles lists every supported role, highest tier first.
var Roles = []Role{RoleSuperAdmin, RoleManager, RoleScheduler, RoleChatter, RoleCreator}

// Valid reports whether r is one of the supported roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleManager, RoleScheduler, RoleChatter, RoleCreator:
		return true
	default:
		return false
	}
}

// ParseRole accepts the canonical upper-case name, tolerating case and surrounding space.
func ParseRole(value string) (Role, error) {
	role := Role(strings.ToUpper(strings.TrimSpace(value)))
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", value)
	}
	return role, nil
}
