package scope

import (
	"testing"
	"time"

	"pharmaledger/internal/auth"
	"pharmaledger/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func tx(mutate func(*model.Transaction)) model.Transaction {
	t := model.Transaction{
		ID:          uuid.New(),
		Category:    model.CategoryMedicineSale,
		Amount:      decimal.NewFromInt(100),
		Description: "entry",
		Date:        time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		UnitID:      uuid.New(),
		CreatorID:   uuid.New(),
	}
	if mutate != nil {
		mutate(&t)
	}
	return t
}

func TestSuperAdminSeesEverything(t *testing.T) {
	pred := BuildListFilter(&auth.Principal{Role: model.RoleSuperAdmin}, Filters{})
	require.False(t, pred.DenyAll)
	require.Empty(t, pred.Scopes)
	require.True(t, pred.Matches(tx(nil)))
}

func TestUnitRolesScopedToOwnUnit(t *testing.T) {
	unitID := uuid.New()
	otherUnit := uuid.New()

	for _, role := range []string{model.RoleAdmin, model.RoleOperator} {
		pred := BuildListFilter(&auth.Principal{Role: role, UnitID: &unitID}, Filters{})
		require.True(t, pred.Matches(tx(func(x *model.Transaction) { x.UnitID = unitID })), role)
		require.False(t, pred.Matches(tx(func(x *model.Transaction) { x.UnitID = otherUnit })), role)
	}
}

func TestDoctorVisibility(t *testing.T) {
	d1 := uuid.New()
	d2 := uuid.New()
	p := &auth.Principal{Role: model.RoleDoctor, StakeholderID: &d1}
	pred := BuildListFilter(p, Filters{})

	// Directly referenced with matching type.
	require.True(t, pred.Matches(tx(func(x *model.Transaction) {
		x.StakeholderID = &d1
		x.StakeholderType = model.StakeholderDoctor
	})))

	// Consultation fee referencing the doctor, regardless of type tag.
	require.True(t, pred.Matches(tx(func(x *model.Transaction) {
		x.Category = model.CategoryConsultationFee
		x.StakeholderID = &d1
	})))

	// Another doctor's transaction stays hidden.
	require.False(t, pred.Matches(tx(func(x *model.Transaction) {
		x.StakeholderID = &d2
		x.StakeholderType = model.StakeholderDoctor
	})))

	// Unrelated unit transaction stays hidden.
	require.False(t, pred.Matches(tx(nil)))
}

func TestPartnerVisibility(t *testing.T) {
	partnerID := uuid.New()
	p := &auth.Principal{Role: model.RolePartner, StakeholderID: &partnerID}
	pred := BuildListFilter(p, Filters{})

	require.True(t, pred.Matches(tx(func(x *model.Transaction) {
		x.StakeholderID = &partnerID
		x.StakeholderType = model.StakeholderBusinessPartner
	})))
	require.True(t, pred.Matches(tx(func(x *model.Transaction) {
		x.Category = model.CategorySalesProfitDistribution
		x.StakeholderID = &partnerID
	})))
	require.False(t, pred.Matches(tx(func(x *model.Transaction) {
		x.StakeholderID = &partnerID
		x.StakeholderType = model.StakeholderDistributor
	})))
}

func TestDistributorVisibility(t *testing.T) {
	distID := uuid.New()
	p := &auth.Principal{Role: model.RoleDistributor, StakeholderID: &distID}
	pred := BuildListFilter(p, Filters{})

	require.True(t, pred.Matches(tx(func(x *model.Transaction) {
		x.StakeholderID = &distID
		x.StakeholderType = model.StakeholderDistributor
	})))
	// No category special-case for distributors.
	require.False(t, pred.Matches(tx(func(x *model.Transaction) {
		x.Category = model.CategoryDistributorPayment
		x.StakeholderID = &distID
	})))
}

func TestUncoveredRolesDenyAll(t *testing.T) {
	unitID := uuid.New()
	cases := []*auth.Principal{
		{Role: model.RoleDoctor},                     // no linked stakeholder
		{Role: model.RolePartner},                    // no linked stakeholder
		{Role: model.RoleDistributor},                // no linked stakeholder
		{Role: model.RoleAdmin},                      // no unit
		{Role: "mystery", UnitID: &unitID},           // unknown role
		{Role: "", StakeholderID: func() *uuid.UUID { id := uuid.New(); return &id }()},
	}
	for _, p := range cases {
		pred := BuildListFilter(p, Filters{})
		require.True(t, pred.DenyAll, "role=%q", p.Role)
		require.False(t, pred.Matches(tx(nil)))
	}
}

func TestExplicitFiltersIntersectScope(t *testing.T) {
	unitID := uuid.New()
	stakeholderID := uuid.New()
	p := &auth.Principal{Role: model.RoleAdmin, UnitID: &unitID}

	pred := BuildListFilter(p, Filters{
		Category:        model.CategoryMedicinePurchase,
		StakeholderID:   &stakeholderID,
		StakeholderType: model.StakeholderDistributor,
	})

	match := tx(func(x *model.Transaction) {
		x.UnitID = unitID
		x.Category = model.CategoryMedicinePurchase
		x.StakeholderID = &stakeholderID
		x.StakeholderType = model.StakeholderDistributor
	})
	require.True(t, pred.Matches(match))

	// In scope but failing an explicit filter.
	wrongCategory := match
	wrongCategory.Category = model.CategoryMedicineSale
	require.False(t, pred.Matches(wrongCategory))

	// Passing the filters but outside the unit scope.
	otherUnit := match
	otherUnit.UnitID = uuid.New()
	require.False(t, pred.Matches(otherUnit))
}

func TestDateRangeInclusiveBothEnds(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	pred := BuildListFilter(&auth.Principal{Role: model.RoleSuperAdmin}, Filters{DateFrom: &from, DateTo: &to})

	require.True(t, pred.Matches(tx(func(x *model.Transaction) { x.Date = from })))
	require.True(t, pred.Matches(tx(func(x *model.Transaction) { x.Date = to })))
	require.False(t, pred.Matches(tx(func(x *model.Transaction) { x.Date = from.Add(-time.Second) })))
	require.False(t, pred.Matches(tx(func(x *model.Transaction) { x.Date = to.Add(time.Second) })))
}

func TestPaginationClamping(t *testing.T) {
	p := &auth.Principal{Role: model.RoleSuperAdmin}

	cases := []struct {
		page, limit int
		wantPage    int
		wantLimit   int
	}{
		{0, 0, 1, 50},
		{-5, -10, 1, 50},
		{1, 50, 1, 50},
		{3, 100, 3, 100},
		{2, 1000, 2, 100},
		{1, 1, 1, 1},
	}
	for _, c := range cases {
		pred := BuildListFilter(p, Filters{Page: c.page, Limit: c.limit})
		require.Equal(t, c.wantPage, pred.Page.Page, "page=%d limit=%d", c.page, c.limit)
		require.Equal(t, c.wantLimit, pred.Page.Limit, "page=%d limit=%d", c.page, c.limit)
		require.GreaterOrEqual(t, pred.Page.Limit, 1)
		require.LessOrEqual(t, pred.Page.Limit, 100)
		require.GreaterOrEqual(t, pred.Page.Page, 1)
		require.Equal(t, (pred.Page.Page-1)*pred.Page.Limit, pred.Page.Offset)
	}
}
