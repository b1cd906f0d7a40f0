package auth

import (
	"pharmaledger/internal/model"

	"github.com/google/uuid"
)

// Principal is the authenticated caller of a request, carrying everything the
// authorization checks need: role, owning unit, linked stakeholder, and grants.
type Principal struct {
	UserID          uuid.UUID
	Username        string
	Role            string
	UnitID          *uuid.UUID
	StakeholderID   *uuid.UUID
	StakeholderType string
	Grants          []model.PermissionGrant
}

// HasPermission reports whether at least one grant covers the module/action
// pair. This is the module-level check; single-record operations apply an
// additional record-level check on top of it.
func (p *Principal) HasPermission(module, action string) bool {
	for _, g := range p.Grants {
		if g.Allows(module, action) {
			return true
		}
	}
	return false
}

// RoleStakeholderType returns the stakeholder type a stakeholder-linked role
// is scoped to, or "" for unit-scoped and unknown roles.
func (p *Principal) RoleStakeholderType() string {
	switch p.Role {
	case model.RoleDoctor:
		return model.StakeholderDoctor
	case model.RolePartner:
		return model.StakeholderBusinessPartner
	case model.RoleDistributor:
		return model.StakeholderDistributor
	}
	return ""
}

// FromUser builds a Principal from a resolved user record.
func FromUser(u *model.User) *Principal {
	return &Principal{
		UserID:          u.ID,
		Username:        u.Username,
		Role:            u.Role,
		UnitID:          u.UnitID,
		StakeholderID:   u.StakeholderID,
		StakeholderType: u.StakeholderType,
		Grants:          u.Grants,
	}
}
