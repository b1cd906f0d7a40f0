package scope

import (
	"time"

	"pharmaledger/internal/auth"
	"pharmaledger/internal/model"
	"pharmaledger/pkg/pagination"

	"github.com/google/uuid"
)

// Filters carries the explicit filters a caller may supply on a list query.
type Filters struct {
	Category        string
	StakeholderID   *uuid.UUID
	StakeholderType string
	DateFrom        *time.Time
	DateTo          *time.Time
	Page            int
	Limit           int
}

// BuildListFilter combines the principal's role-based scope with the
// caller's explicit filters and the normalized page window.
func BuildListFilter(p *auth.Principal, f Filters) Predicate {
	pred := roleScope(p)
	pred.Category = f.Category
	pred.StakeholderID = f.StakeholderID
	pred.StakeholderType = f.StakeholderType
	pred.DateFrom = f.DateFrom
	pred.DateTo = f.DateTo
	pred.Page = pagination.Normalize(f.Page, f.Limit)
	return pred
}

// roleScope returns the base predicate for the principal's role. A role
// missing the link its scope depends on (admin without a unit, doctor without
// a stakeholder) and unrecognized roles see nothing.
func roleScope(p *auth.Principal) Predicate {
	switch p.Role {
	case model.RoleSuperAdmin:
		return Predicate{}

	case model.RoleAdmin, model.RoleOperator:
		if p.UnitID == nil {
			return Predicate{DenyAll: true}
		}
		return Predicate{Scopes: []Clause{{UnitID: p.UnitID}}}

	case model.RoleDoctor:
		if p.StakeholderID == nil {
			return Predicate{DenyAll: true}
		}
		return Predicate{Scopes: []Clause{
			{StakeholderID: p.StakeholderID, StakeholderType: model.StakeholderDoctor},
			{StakeholderID: p.StakeholderID, Category: model.CategoryConsultationFee},
		}}

	case model.RolePartner:
		if p.StakeholderID == nil {
			return Predicate{DenyAll: true}
		}
		return Predicate{Scopes: []Clause{
			{StakeholderID: p.StakeholderID, StakeholderType: model.StakeholderBusinessPartner},
			{StakeholderID: p.StakeholderID, Category: model.CategorySalesProfitDistribution},
		}}

	case model.RoleDistributor:
		if p.StakeholderID == nil {
			return Predicate{DenyAll: true}
		}
		return Predicate{Scopes: []Clause{
			{StakeholderID: p.StakeholderID, StakeholderType: model.StakeholderDistributor},
		}}
	}

	return Predicate{DenyAll: true}
}
