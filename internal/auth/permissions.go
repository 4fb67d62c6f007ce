package auth

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hongminglow/eros-desk/internal/models"
)

// Action is a permission tag of the form "resource:verb".
type Action string

const (
	ActionTicketsCreate   Action = "tickets:create"
	ActionTicketsRead     Action = "tickets:read"
	ActionTicketsReadAll  Action = "tickets:read_all"
	ActionTicketsUpdate   Action = "tickets:update"
	ActionTicketsDelete   Action = "tickets:delete"
	ActionCreatorsRead    Action = "creators:read"
	ActionCreatorsReadAll Action = "creators:read_all"
	ActionCreatorsCreate  Action = "creators:create"
	ActionCreatorsUpdate  Action = "creators:update"
	ActionUsersRead       Action = "users:read"
	ActionUsersManage     Action = "users:manage"
)

// Catalog is the closed set of actions a permission file may grant.
var Catalog = []Action{
	ActionTicketsCreate,
	ActionTicketsRead,
	ActionTicketsReadAll,
	ActionTicketsUpdate,
	ActionTicketsDelete,
	ActionCreatorsRead,
	ActionCreatorsReadAll,
	ActionCreatorsCreate,
	ActionCreatorsUpdate,
	ActionUsersRead,
	ActionUsersManage,
}

const grantAll = "*"

//go:embed permissions.yaml
var defaultPermissions []byte

type permissionFile struct {
	Roles map[string][]string `yaml:"roles"`
}

// PermissionTable answers (role, action) queries. It is immutable once built
// and safe for concurrent use.
type PermissionTable struct {
	grants map[models.Role]map[Action]struct{}
}

// DefaultPermissionTable returns the table compiled into the binary.
func DefaultPermissionTable() *PermissionTable {
	table, err := ParsePermissionTable(defaultPermissions)
	if err != nil {
		panic(fmt.Sprintf("embedded permission table: %v", err))
	}
	return table
}

// LoadPermissionTable reads the table at path, or the embedded default when path is empty.
func LoadPermissionTable(path string) (*PermissionTable, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultPermissionTable(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read permission table: %w", err)
	}
	return ParsePermissionTable(data)
}

// ParsePermissionTable builds a table from YAML. Unknown roles or actions are rejected.
func ParsePermissionTable(data []byte) (*PermissionTable, error) {
	var file permissionFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode permission table: %w", err)
	}

	known := make(map[Action]struct{}, len(Catalog))
	for _, action := range Catalog {
		known[action] = struct{}{}
	}

	grants := make(map[models.Role]map[Action]struct{}, len(file.Roles))
	for name, actions := range file.Roles {
		role, err := models.ParseRole(name)
		if err != nil {
			return nil, fmt.Errorf("permission table: %w", err)
		}
		set := make(map[Action]struct{}, len(actions))
		for _, raw := range actions {
			raw = strings.TrimSpace(raw)
			if raw == grantAll {
				for _, action := range Catalog {
					set[action] = struct{}{}
				}
				continue
			}
			action := Action(raw)
			if _, ok := known[action]; !ok {
				return nil, fmt.Errorf("permission table: role %s grants unknown action %q", role, raw)
			}
			set[action] = struct{}{}
		}
		grants[role] = set
	}
	return &PermissionTable{grants: grants}, nil
}

// Can reports whether role may perform action. Unknown roles and actions are denied.
func (p *PermissionTable) Can(role models.Role, action Action) bool {
	if p == nil {
		return false
	}
	_, ok := p.grants[role][action]
	return ok
}

// Actions lists the actions granted to role in catalog order.
func (p *PermissionTable) Actions(role models.Role) []Action {
	var out []Action
	for _, action := range Catalog {
		if p.Can(role, action) {
			out = append(out, action)
		}
	}
	return out
}
