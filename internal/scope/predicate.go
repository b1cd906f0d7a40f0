// Package scope builds the visibility predicate restricting which
// transactions a principal may see in list queries. Predicates are plain
// values assembled by pure functions so they can be tested without a store;
// the repository translates them into SQL once, at the edge.
package scope

import (
	"time"

	"pharmaledger/internal/model"
	"pharmaledger/pkg/pagination"

	"github.com/google/uuid"
)

// Clause is one conjunction of the role-based scope. A transaction satisfies
// a clause when every set field matches.
type Clause struct {
	UnitID          *uuid.UUID
	StakeholderID   *uuid.UUID
	StakeholderType string
	Category        string
}

// matches reports whether t satisfies every set field of the clause.
func (c Clause) matches(t model.Transaction) bool {
	if c.UnitID != nil && t.UnitID != *c.UnitID {
		return false
	}
	if c.StakeholderID != nil {
		if t.StakeholderID == nil || *t.StakeholderID != *c.StakeholderID {
			return false
		}
	}
	if c.StakeholderType != "" && t.StakeholderType != c.StakeholderType {
		return false
	}
	if c.Category != "" && t.Category != c.Category {
		return false
	}
	return true
}

// Predicate is the full specification of a list query: the role-based scope
// (a disjunction of clauses), the caller's explicit filters (conjunction),
// and the page window. The same predicate without the page window is the
// count query. Results are ordered by transaction date descending.
type Predicate struct {
	// DenyAll short-circuits the query to an empty result.
	DenyAll bool

	// Scopes is OR-combined; empty means unrestricted.
	Scopes []Clause

	// Explicit filters, AND-combined with the scope.
	Category        string
	StakeholderID   *uuid.UUID
	StakeholderType string
	DateFrom        *time.Time
	DateTo          *time.Time

	Page pagination.Params
}

// Matches evaluates the predicate against a single transaction in memory.
// The date range is inclusive on both ends.
func (p Predicate) Matches(t model.Transaction) bool {
	if p.DenyAll {
		return false
	}

	if len(p.Scopes) > 0 {
		inScope := false
		for _, c := range p.Scopes {
			if c.matches(t) {
				inScope = true
				break
			}
		}
		if !inScope {
			return false
		}
	}

	if p.Category != "" && t.Category != p.Category {
		return false
	}
	if p.StakeholderID != nil {
		if t.StakeholderID == nil || *t.StakeholderID != *p.StakeholderID {
			return false
		}
	}
	if p.StakeholderType != "" && t.StakeholderType != p.StakeholderType {
		return false
	}
	if p.DateFrom != nil && t.Date.Before(*p.DateFrom) {
		return false
	}
	if p.DateTo != nil && t.Date.After(*p.DateTo) {
		return false
	}
	return true
}
