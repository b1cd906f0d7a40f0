package service

import (
	"pharmaledger/internal/auth"
	"pharmaledger/internal/model"
)

// Record-level access rules. These run after the module-level permission
// check and are deliberately stricter than the list visibility filter: a
// stakeholder-linked role must match the transaction's stakeholder reference
// exactly, with no category special-case.

func canReadTransaction(p *auth.Principal, t *model.Transaction) bool {
	switch p.Role {
	case model.RoleSuperAdmin:
		return true
	case model.RoleAdmin, model.RoleOperator:
		return p.UnitID != nil && t.UnitID == *p.UnitID
	case model.RoleDoctor, model.RolePartner, model.RoleDistributor:
		return p.StakeholderID != nil &&
			t.StakeholderID != nil &&
			*t.StakeholderID == *p.StakeholderID &&
			t.StakeholderType == p.RoleStakeholderType()
	}
	return false
}

func canUpdateTransaction(p *auth.Principal, t *model.Transaction) bool {
	switch p.Role {
	case model.RoleSuperAdmin:
		return true
	case model.RoleAdmin, model.RoleOperator:
		return p.UnitID != nil && t.UnitID == *p.UnitID
	}
	// Stakeholder-linked roles never update, regardless of ownership.
	return false
}

// canDeleteTransaction is strictly narrower than canUpdateTransaction:
// operators may update but never delete.
func canDeleteTransaction(p *auth.Principal, t *model.Transaction) bool {
	switch p.Role {
	case model.RoleSuperAdmin:
		return true
	case model.RoleAdmin:
		return p.UnitID != nil && t.UnitID == *p.UnitID
	}
	return false
}
