package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"pharmaledger/internal/auth"
	"pharmaledger/internal/model"
	"pharmaledger/internal/scope"
	"pharmaledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// --- In-memory fakes ---

type memoryTxRepo struct {
	txs map[uuid.UUID]model.Transaction
}

func newMemoryTxRepo() *memoryTxRepo {
	return &memoryTxRepo{txs: make(map[uuid.UUID]model.Transaction)}
}

func (r *memoryTxRepo) Create(ctx context.Context, tx *model.Transaction) error {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	tx.CreatedAt = time.Now()
	r.txs[tx.ID] = *tx
	return nil
}

func (r *memoryTxRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	tx, ok := r.txs[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	copied := tx
	return &copied, nil
}

func (r *memoryTxRepo) List(ctx context.Context, pred scope.Predicate) ([]model.Transaction, int64, error) {
	var matched []model.Transaction
	for _, tx := range r.txs {
		if pred.Matches(tx) {
			matched = append(matched, tx)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Date.After(matched[j].Date) })

	total := int64(len(matched))
	start := pred.Page.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := start + pred.Page.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *memoryTxRepo) Update(ctx context.Context, tx *model.Transaction) error {
	if _, ok := r.txs[tx.ID]; !ok {
		return apperror.ErrNotFound
	}
	r.txs[tx.ID] = *tx
	return nil
}

func (r *memoryTxRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.txs, id)
	return nil
}

type memoryStakeholderRepo struct {
	refs map[string]bool // type + "/" + id
}

func newMemoryStakeholderRepo() *memoryStakeholderRepo {
	return &memoryStakeholderRepo{refs: make(map[string]bool)}
}

func (r *memoryStakeholderRepo) add(stakeholderType string, id uuid.UUID) {
	r.refs[stakeholderType+"/"+id.String()] = true
}

func (r *memoryStakeholderRepo) Create(ctx context.Context, s *model.Stakeholder) error {
	r.add(s.Type, s.ID)
	return nil
}

func (r *memoryStakeholderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Stakeholder, error) {
	return nil, apperror.ErrNotFound
}

func (r *memoryStakeholderRepo) Exists(ctx context.Context, stakeholderType string, id uuid.UUID) (bool, error) {
	return r.refs[stakeholderType+"/"+id.String()], nil
}

func (r *memoryStakeholderRepo) List(ctx context.Context, stakeholderType string, page, limit int) ([]model.Stakeholder, int64, error) {
	return nil, 0, nil
}

type memoryAuditRepo struct {
	entries []model.AuditLog
}

func (r *memoryAuditRepo) Log(ctx context.Context, entry *model.AuditLog) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *memoryAuditRepo) List(ctx context.Context, page, limit int) ([]model.AuditLog, int64, error) {
	return r.entries, int64(len(r.entries)), nil
}

type noopTxManager struct{}

func (noopTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

// --- Fixture helpers ---

type fixture struct {
	svc          TransactionService
	txRepo       *memoryTxRepo
	stakeholders *memoryStakeholderRepo
	audit        *memoryAuditRepo
}

func newFixture() *fixture {
	txRepo := newMemoryTxRepo()
	stakeholders := newMemoryStakeholderRepo()
	audit := &memoryAuditRepo{}
	return &fixture{
		svc:          NewTransactionService(txRepo, stakeholders, audit, noopTxManager{}, nil),
		txRepo:       txRepo,
		stakeholders: stakeholders,
		audit:        audit,
	}
}

func superAdmin() *auth.Principal {
	return &auth.Principal{UserID: uuid.New(), Role: model.RoleSuperAdmin, Grants: model.DefaultGrants(model.RoleSuperAdmin)}
}

func adminOf(unitID uuid.UUID) *auth.Principal {
	return &auth.Principal{UserID: uuid.New(), Role: model.RoleAdmin, UnitID: &unitID, Grants: model.DefaultGrants(model.RoleAdmin)}
}

func operatorOf(unitID uuid.UUID) *auth.Principal {
	return &auth.Principal{UserID: uuid.New(), Role: model.RoleOperator, UnitID: &unitID, Grants: model.DefaultGrants(model.RoleOperator)}
}

func stakeholderPrincipal(role string, stakeholderID uuid.UUID) *auth.Principal {
	return &auth.Principal{UserID: uuid.New(), Role: role, StakeholderID: &stakeholderID, Grants: model.DefaultGrants(role)}
}

func (f *fixture) seedTx(mutate func(*model.Transaction)) model.Transaction {
	tx := model.Transaction{
		ID:          uuid.New(),
		Category:    model.CategoryMedicineSale,
		Amount:      decimal.NewFromInt(250),
		Description: "seeded",
		Date:        time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
		UnitID:      uuid.New(),
		CreatorID:   uuid.New(),
	}
	if mutate != nil {
		mutate(&tx)
	}
	f.txRepo.txs[tx.ID] = tx
	return tx
}

func validCreate() CreateTransactionRequest {
	return CreateTransactionRequest{
		Category:    model.CategoryMedicineSale,
		Amount:      "150.50",
		Description: "paracetamol batch",
		BillNo:      "B-1001",
		Date:        time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC),
	}
}

// --- Create ---

func TestCreateForcesUnitForNonSuperAdmin(t *testing.T) {
	f := newFixture()
	unitID := uuid.New()
	otherUnit := uuid.New()

	req := validCreate()
	req.UnitID = otherUnit.String() // must be ignored for admins

	res, err := f.svc.Create(context.Background(), adminOf(unitID), req)
	require.NoError(t, err)
	require.Equal(t, unitID.String(), res.UnitID)
	require.Len(t, f.audit.entries, 1)
	require.Equal(t, model.AuditCreateTransaction, f.audit.entries[0].Action)
}

func TestCreateSuperAdminMayTargetAnyUnit(t *testing.T) {
	f := newFixture()
	target := uuid.New()

	req := validCreate()
	req.UnitID = target.String()

	res, err := f.svc.Create(context.Background(), superAdmin(), req)
	require.NoError(t, err)
	require.Equal(t, target.String(), res.UnitID)
}

func TestCreateMissingUnit(t *testing.T) {
	f := newFixture()

	// A super_admin with no unit and no payload unit cannot resolve one.
	_, err := f.svc.Create(context.Background(), superAdmin(), validCreate())
	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, 400, appErr.Status)
	require.Contains(t, appErr.Message, "unit")
}

func TestCreateRejectsNonPositiveAmount(t *testing.T) {
	f := newFixture()
	p := adminOf(uuid.New())

	for _, amount := range []string{"0", "-10", "-0.01", "abc", ""} {
		req := validCreate()
		req.Amount = amount
		_, err := f.svc.Create(context.Background(), p, req)
		var appErr *apperror.Error
		require.ErrorAs(t, err, &appErr, "amount=%q", amount)
		require.Equal(t, 400, appErr.Status, "amount=%q", amount)
	}
}

func TestCreateRejectsUnknownCategory(t *testing.T) {
	f := newFixture()
	req := validCreate()
	req.Category = "bribes"
	_, err := f.svc.Create(context.Background(), adminOf(uuid.New()), req)
	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, 400, appErr.Status)
}

func TestCreateStakeholderRefBothOrNeither(t *testing.T) {
	f := newFixture()
	p := adminOf(uuid.New())
	stakeholderID := uuid.New()
	f.stakeholders.add(model.StakeholderDoctor, stakeholderID)

	// ID without type.
	req := validCreate()
	req.StakeholderID = stakeholderID.String()
	_, err := f.svc.Create(context.Background(), p, req)
	require.Error(t, err)

	// Type without ID.
	req = validCreate()
	req.StakeholderType = model.StakeholderDoctor
	_, err = f.svc.Create(context.Background(), p, req)
	require.Error(t, err)

	// Both present and resolving.
	req = validCreate()
	req.StakeholderID = stakeholderID.String()
	req.StakeholderType = model.StakeholderDoctor
	res, err := f.svc.Create(context.Background(), p, req)
	require.NoError(t, err)
	require.NotNil(t, res.StakeholderID)
	require.Equal(t, model.StakeholderDoctor, res.StakeholderType)
}

func TestCreateDanglingStakeholderRefAllFiveTypes(t *testing.T) {
	f := newFixture()
	p := adminOf(uuid.New())

	types := []string{
		model.StakeholderDoctor,
		model.StakeholderBusinessPartner,
		model.StakeholderEmployee,
		model.StakeholderDistributor,
		model.StakeholderPatient,
	}
	for _, st := range types {
		req := validCreate()
		req.StakeholderID = uuid.NewString()
		req.StakeholderType = st
		_, err := f.svc.Create(context.Background(), p, req)
		var appErr *apperror.Error
		require.ErrorAs(t, err, &appErr, st)
		require.Equal(t, 400, appErr.Status, st)
		require.Contains(t, appErr.Message, "stakeholder reference", st)
	}
}

func TestCreateRequiresModulePermission(t *testing.T) {
	f := newFixture()
	doctor := stakeholderPrincipal(model.RoleDoctor, uuid.New())

	_, err := f.svc.Create(context.Background(), doctor, validCreate())
	require.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestCreateReadBackRoundTrip(t *testing.T) {
	f := newFixture()
	admin := adminOf(uuid.New())

	req := validCreate()
	// Sub-second precision must survive the round trip.
	req.Date = time.Date(2026, 2, 10, 9, 30, 0, 123_000_000, time.UTC)
	created, err := f.svc.Create(context.Background(), admin, req)
	require.NoError(t, err)

	id, err := uuid.Parse(created.ID)
	require.NoError(t, err)

	got, err := f.svc.GetByID(context.Background(), superAdmin(), id)
	require.NoError(t, err)
	require.Equal(t, req.Category, got.Category)
	require.Equal(t, req.Description, got.Description)
	require.Equal(t, req.BillNo, got.BillNo)
	require.Equal(t, "2026-02-10T09:30:00.123Z", got.Date)
	require.Equal(t, req.Date.Format(time.RFC3339Nano), got.Date)
	require.True(t, decimal.RequireFromString(req.Amount).Equal(decimal.RequireFromString(got.Amount)))
}

// --- Read by id ---

func TestReadRecordCheckMatrix(t *testing.T) {
	f := newFixture()
	unitID := uuid.New()
	doctorID := uuid.New()

	plain := f.seedTx(func(x *model.Transaction) { x.UnitID = unitID })
	doctorTx := f.seedTx(func(x *model.Transaction) {
		x.StakeholderID = &doctorID
		x.StakeholderType = model.StakeholderDoctor
	})
	// Consultation fee referencing the doctor without the doctor type tag:
	// visible in lists, but the record-level check stays strict.
	feeTx := f.seedTx(func(x *model.Transaction) {
		x.Category = model.CategoryConsultationFee
		x.StakeholderID = &doctorID
		x.StakeholderType = model.StakeholderPatient
	})

	ctx := context.Background()
	doctor := stakeholderPrincipal(model.RoleDoctor, doctorID)

	_, err := f.svc.GetByID(ctx, superAdmin(), plain.ID)
	require.NoError(t, err)

	_, err = f.svc.GetByID(ctx, adminOf(unitID), plain.ID)
	require.NoError(t, err)
	_, err = f.svc.GetByID(ctx, operatorOf(unitID), plain.ID)
	require.NoError(t, err)
	_, err = f.svc.GetByID(ctx, adminOf(uuid.New()), plain.ID)
	require.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = f.svc.GetByID(ctx, doctor, doctorTx.ID)
	require.NoError(t, err)
	_, err = f.svc.GetByID(ctx, doctor, feeTx.ID)
	require.ErrorIs(t, err, apperror.ErrForbidden)
	_, err = f.svc.GetByID(ctx, stakeholderPrincipal(model.RoleDoctor, uuid.New()), doctorTx.ID)
	require.ErrorIs(t, err, apperror.ErrForbidden)

	// Distributor cannot read a doctor-typed record even with a matching id.
	_, err = f.svc.GetByID(ctx, stakeholderPrincipal(model.RoleDistributor, doctorID), doctorTx.ID)
	require.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestReadUnknownID(t *testing.T) {
	f := newFixture()
	_, err := f.svc.GetByID(context.Background(), superAdmin(), uuid.New())
	require.ErrorIs(t, err, apperror.ErrNotFound)
}

// --- Update / Delete ---

func TestUpdateSameUnitSucceedsCrossUnitForbidden(t *testing.T) {
	f := newFixture()
	u1 := uuid.New()
	u2 := uuid.New()
	mine := f.seedTx(func(x *model.Transaction) { x.UnitID = u1 })
	theirs := f.seedTx(func(x *model.Transaction) { x.UnitID = u2 })

	admin := adminOf(u1)
	newDesc := "corrected entry"

	res, err := f.svc.Update(context.Background(), admin, mine.ID, UpdateTransactionRequest{Description: &newDesc})
	require.NoError(t, err)
	require.Equal(t, newDesc, res.Description)

	_, err = f.svc.Update(context.Background(), admin, theirs.ID, UpdateTransactionRequest{Description: &newDesc})
	require.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = f.svc.Delete(context.Background(), admin, theirs.ID)
	require.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestOperatorMayUpdateButNeverDelete(t *testing.T) {
	f := newFixture()
	unitID := uuid.New()
	tx := f.seedTx(func(x *model.Transaction) { x.UnitID = unitID })

	op := operatorOf(unitID)
	newDesc := "operator touch"

	_, err := f.svc.Update(context.Background(), op, tx.ID, UpdateTransactionRequest{Description: &newDesc})
	require.NoError(t, err)

	_, err = f.svc.Delete(context.Background(), op, tx.ID)
	require.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestStakeholderRolesNeverMutate(t *testing.T) {
	f := newFixture()
	doctorID := uuid.New()
	tx := f.seedTx(func(x *model.Transaction) {
		x.StakeholderID = &doctorID
		x.StakeholderType = model.StakeholderDoctor
	})

	// Owns the record by reference, still cannot mutate it. Grants are
	// widened beyond the default read-only set to prove the record-level
	// rule itself blocks the mutation.
	doctor := stakeholderPrincipal(model.RoleDoctor, doctorID)
	doctor.Grants = []model.PermissionGrant{{
		Module:  model.ModuleTransactions,
		Actions: model.StringList{model.ActionRead, model.ActionUpdate, model.ActionDelete},
	}}

	newDesc := "doctor edit"
	_, err := f.svc.Update(context.Background(), doctor, tx.ID, UpdateTransactionRequest{Description: &newDesc})
	require.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = f.svc.Delete(context.Background(), doctor, tx.ID)
	require.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestDeleteRightsAreSubsetOfUpdateRights(t *testing.T) {
	unitID := uuid.New()
	doctorID := uuid.New()
	tx := model.Transaction{UnitID: unitID, StakeholderID: &doctorID, StakeholderType: model.StakeholderDoctor}
	otherTx := model.Transaction{UnitID: uuid.New()}

	principals := []*auth.Principal{
		superAdmin(),
		adminOf(unitID),
		adminOf(uuid.New()),
		operatorOf(unitID),
		stakeholderPrincipal(model.RoleDoctor, doctorID),
		stakeholderPrincipal(model.RolePartner, uuid.New()),
		stakeholderPrincipal(model.RoleDistributor, uuid.New()),
		{Role: "mystery"},
	}
	for _, p := range principals {
		for _, target := range []*model.Transaction{&tx, &otherTx} {
			if canDeleteTransaction(p, target) {
				require.True(t, canUpdateTransaction(p, target), "role=%s", p.Role)
			}
		}
	}
}

func TestUpdateRevalidatesStakeholderRef(t *testing.T) {
	f := newFixture()
	unitID := uuid.New()
	tx := f.seedTx(func(x *model.Transaction) { x.UnitID = unitID })
	admin := adminOf(unitID)

	danglingID := uuid.NewString()
	danglingType := model.StakeholderEmployee
	_, err := f.svc.Update(context.Background(), admin, tx.ID, UpdateTransactionRequest{
		StakeholderID:   &danglingID,
		StakeholderType: &danglingType,
	})
	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, 400, appErr.Status)

	// Resolving reference passes.
	goodID := uuid.New()
	f.stakeholders.add(model.StakeholderEmployee, goodID)
	goodIDStr := goodID.String()
	res, err := f.svc.Update(context.Background(), admin, tx.ID, UpdateTransactionRequest{
		StakeholderID:   &goodIDStr,
		StakeholderType: &danglingType,
	})
	require.NoError(t, err)
	require.Equal(t, model.StakeholderEmployee, res.StakeholderType)

	// Clearing the id clears the pair.
	empty := ""
	res, err = f.svc.Update(context.Background(), admin, tx.ID, UpdateTransactionRequest{StakeholderID: &empty})
	require.NoError(t, err)
	require.Nil(t, res.StakeholderID)
	require.Empty(t, res.StakeholderType)
}

func TestUpdateUnitReassignmentSuperAdminOnly(t *testing.T) {
	f := newFixture()
	unitID := uuid.New()
	target := uuid.New()
	tx := f.seedTx(func(x *model.Transaction) { x.UnitID = unitID })

	targetStr := target.String()
	_, err := f.svc.Update(context.Background(), adminOf(unitID), tx.ID, UpdateTransactionRequest{UnitID: &targetStr})
	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, 400, appErr.Status)
	require.Equal(t, "unit_id", appErr.Fields[0].Field)

	// The record kept its unit.
	unchanged, err := f.svc.GetByID(context.Background(), superAdmin(), tx.ID)
	require.NoError(t, err)
	require.Equal(t, unitID.String(), unchanged.UnitID)

	res, err := f.svc.Update(context.Background(), superAdmin(), tx.ID, UpdateTransactionRequest{UnitID: &targetStr})
	require.NoError(t, err)
	require.Equal(t, target.String(), res.UnitID)
}

func TestUpdateRejectsNonPositiveAmount(t *testing.T) {
	f := newFixture()
	unitID := uuid.New()
	tx := f.seedTx(func(x *model.Transaction) { x.UnitID = unitID })

	bad := "-5"
	_, err := f.svc.Update(context.Background(), adminOf(unitID), tx.ID, UpdateTransactionRequest{Amount: &bad})
	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, 400, appErr.Status)
}

func TestDeleteReturnsDeletedID(t *testing.T) {
	f := newFixture()
	unitID := uuid.New()
	tx := f.seedTx(func(x *model.Transaction) { x.UnitID = unitID })

	deletedID, err := f.svc.Delete(context.Background(), adminOf(unitID), tx.ID)
	require.NoError(t, err)
	require.Equal(t, tx.ID, deletedID)

	_, err = f.svc.GetByID(context.Background(), superAdmin(), tx.ID)
	require.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.svc.Delete(context.Background(), adminOf(unitID), tx.ID)
	require.ErrorIs(t, err, apperror.ErrNotFound)
}

// --- List ---

func TestListDoctorScenario(t *testing.T) {
	f := newFixture()
	d1 := uuid.New()
	d2 := uuid.New()

	direct := f.seedTx(func(x *model.Transaction) {
		x.StakeholderID = &d1
		x.StakeholderType = model.StakeholderDoctor
	})
	fee := f.seedTx(func(x *model.Transaction) {
		x.Category = model.CategoryConsultationFee
		x.StakeholderID = &d1
	})
	foreign := f.seedTx(func(x *model.Transaction) {
		x.StakeholderID = &d2
		x.StakeholderType = model.StakeholderDoctor
	})

	result, err := f.svc.List(context.Background(), stakeholderPrincipal(model.RoleDoctor, d1), scope.Filters{})
	require.NoError(t, err)

	ids := make(map[string]bool)
	for _, tx := range result.Transactions {
		ids[tx.ID] = true
	}
	require.True(t, ids[direct.ID.String()])
	require.True(t, ids[fee.ID.String()])
	require.False(t, ids[foreign.ID.String()])
	require.Equal(t, int64(2), result.Pagination.Total)
}

func TestListAdminScopedToUnitWithPagination(t *testing.T) {
	f := newFixture()
	unitID := uuid.New()

	for i := 0; i < 5; i++ {
		day := i
		f.seedTx(func(x *model.Transaction) {
			x.UnitID = unitID
			x.Date = time.Date(2026, 2, 1+day, 0, 0, 0, 0, time.UTC)
		})
	}
	f.seedTx(nil) // other unit

	result, err := f.svc.List(context.Background(), adminOf(unitID), scope.Filters{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, result.Transactions, 2)
	require.Equal(t, int64(5), result.Pagination.Total)
	require.Equal(t, int64(3), result.Pagination.TotalPages)
	require.Equal(t, 2, result.Pagination.Page)

	// Newest first.
	require.Greater(t, result.Transactions[0].Date, result.Transactions[1].Date)
}

func TestListRequiresReadPermission(t *testing.T) {
	f := newFixture()
	p := &auth.Principal{UserID: uuid.New(), Role: model.RoleAdmin, Grants: nil}

	_, err := f.svc.List(context.Background(), p, scope.Filters{})
	require.ErrorIs(t, err, apperror.ErrForbidden)
}
