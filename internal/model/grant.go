package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Module constants
const (
	ModuleTransactions = "transactions"
	ModuleUsers        = "users"
	ModuleStakeholders = "stakeholders"
	ModuleUnits        = "units"
)

// Action constants
const (
	ActionCreate = "create"
	ActionRead   = "read"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Scope constants
const (
	ScopeAll         = "all"
	ScopeUnit        = "unit"
	ScopeStakeholder = "stakeholder"
)

// StringList stores a slice of strings as a JSONB column
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

func (l *StringList) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	case nil:
		*l = nil
		return nil
	}
	return fmt.Errorf("unsupported type %T for StringList", src)
}

// JSONMap stores an opaque map as a JSONB column
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	case nil:
		*m = nil
		return nil
	}
	return fmt.Errorf("unsupported type %T for JSONMap", src)
}

// PermissionGrant says a user may perform a set of actions on a module.
// Grants are evaluated independently; there is no hierarchy between them.
type PermissionGrant struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Module     string     `gorm:"type:varchar(50);not null" json:"module"`
	Actions    StringList `gorm:"type:jsonb;not null" json:"actions"`
	Scope      string     `gorm:"type:varchar(30);not null;default:'unit'" json:"scope"`
	Conditions JSONMap    `gorm:"type:jsonb" json:"conditions,omitempty"`
}

// DefaultGrants returns the grant set seeded for a role. Operators may
// update but not delete; stakeholder-linked roles are read-only.
func DefaultGrants(role string) []PermissionGrant {
	switch role {
	case RoleSuperAdmin:
		return []PermissionGrant{
			{Module: ModuleTransactions, Actions: StringList{ActionCreate, ActionRead, ActionUpdate, ActionDelete}, Scope: ScopeAll},
			{Module: ModuleUsers, Actions: StringList{ActionCreate, ActionRead, ActionUpdate, ActionDelete}, Scope: ScopeAll},
			{Module: ModuleStakeholders, Actions: StringList{ActionCreate, ActionRead, ActionUpdate, ActionDelete}, Scope: ScopeAll},
			{Module: ModuleUnits, Actions: StringList{ActionCreate, ActionRead, ActionUpdate, ActionDelete}, Scope: ScopeAll},
		}
	case RoleAdmin:
		return []PermissionGrant{
			{Module: ModuleTransactions, Actions: StringList{ActionCreate, ActionRead, ActionUpdate, ActionDelete}, Scope: ScopeUnit},
			{Module: ModuleStakeholders, Actions: StringList{ActionRead}, Scope: ScopeUnit},
		}
	case RoleOperator:
		return []PermissionGrant{
			{Module: ModuleTransactions, Actions: StringList{ActionCreate, ActionRead, ActionUpdate}, Scope: ScopeUnit},
			{Module: ModuleStakeholders, Actions: StringList{ActionRead}, Scope: ScopeUnit},
		}
	case RoleDoctor, RolePartner, RoleDistributor:
		return []PermissionGrant{
			{Module: ModuleTransactions, Actions: StringList{ActionRead}, Scope: ScopeStakeholder},
		}
	}
	return nil
}

// Allows reports whether this grant covers the given module/action pair.
// Exact string match only; no wildcard semantics.
func (g PermissionGrant) Allows(module, action string) bool {
	if g.Module != module {
		return false
	}
	for _, a := range g.Actions {
		if a == action {
			return true
		}
	}
	return false
}
