package service

import (
	"context"
	"encoding/json"
	"time"

	"pharmaledger/internal/auth"
	"pharmaledger/internal/model"
	"pharmaledger/internal/repository"
	"pharmaledger/internal/scope"
	"pharmaledger/pkg/apperror"
	"pharmaledger/pkg/pagination"
	"pharmaledger/pkg/response"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreateTransactionRequest struct {
	Category        string    `json:"category" binding:"required"`
	StakeholderID   string    `json:"stakeholder_id"`
	StakeholderType string    `json:"stakeholder_type"`
	Amount          string    `json:"amount" binding:"required"` // Decimal string
	Description     string    `json:"description" binding:"required"`
	BillNo          string    `json:"bill_no"`
	Date            time.Time `json:"date" binding:"required"`
	UnitID          string    `json:"unit_id"` // honored for super_admin only
}

// UpdateTransactionRequest patches any subset of the create fields. Nil means
// "leave unchanged"; an empty stakeholder_id clears the reference.
type UpdateTransactionRequest struct {
	Category        *string    `json:"category"`
	StakeholderID   *string    `json:"stakeholder_id"`
	StakeholderType *string    `json:"stakeholder_type"`
	Amount          *string    `json:"amount"`
	Description     *string    `json:"description"`
	BillNo          *string    `json:"bill_no"`
	Date            *time.Time `json:"date"`
	UnitID          *string    `json:"unit_id"` // super_admin only; others get a validation error
}

type TransactionResponse struct {
	ID              string  `json:"id"`
	Category        string  `json:"category"`
	StakeholderID   *string `json:"stakeholder_id"`
	StakeholderType string  `json:"stakeholder_type,omitempty"`
	Amount          string  `json:"amount"`
	Description     string  `json:"description"`
	BillNo          string  `json:"bill_no,omitempty"`
	Date            string  `json:"date"`
	UnitID          string  `json:"unit_id"`
	CreatorID       string  `json:"creator_id"`
	CreatedAt       string  `json:"created_at"`
}

type TransactionListResult struct {
	Transactions []TransactionResponse `json:"transactions"`
	Pagination   response.Pagination   `json:"pagination"`
}

// --- Interface ---

// TransactionService enforces the per-operation access rules for ledger
// transactions: the module-level permission gate first, then the record-level
// ownership check the gate cannot express.
type TransactionService interface {
	Create(ctx context.Context, p *auth.Principal, req CreateTransactionRequest) (*TransactionResponse, error)
	List(ctx context.Context, p *auth.Principal, f scope.Filters) (*TransactionListResult, error)
	GetByID(ctx context.Context, p *auth.Principal, id uuid.UUID) (*TransactionResponse, error)
	Update(ctx context.Context, p *auth.Principal, id uuid.UUID, req UpdateTransactionRequest) (*TransactionResponse, error)
	Delete(ctx context.Context, p *auth.Principal, id uuid.UUID) (uuid.UUID, error)
}

// TransactionEvents receives mutation notifications for the live feed.
type TransactionEvents interface {
	TransactionChanged(event string, t *model.Transaction)
}

type transactionService struct {
	txRepo          repository.TransactionRepository
	stakeholderRepo repository.StakeholderRepository
	auditRepo       repository.AuditRepository
	txManager       repository.TransactionManager
	events          TransactionEvents
}

func NewTransactionService(
	txRepo repository.TransactionRepository,
	stakeholderRepo repository.StakeholderRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	events TransactionEvents,
) TransactionService {
	return &transactionService{
		txRepo:          txRepo,
		stakeholderRepo: stakeholderRepo,
		auditRepo:       auditRepo,
		txManager:       txManager,
		events:          events,
	}
}

// --- Helpers ---

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, apperror.Validation(apperror.FieldError{Field: "amount", Message: "must be a decimal number"})
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, apperror.Validation(apperror.FieldError{Field: "amount", Message: "must be greater than 0"})
	}
	return amount, nil
}

// resolveStakeholderRef validates the both-or-neither pairing and resolves
// the reference against the stakeholder directory.
func (s *transactionService) resolveStakeholderRef(ctx context.Context, id *uuid.UUID, stakeholderType string) error {
	if id == nil && stakeholderType == "" {
		return nil
	}
	if id == nil || stakeholderType == "" {
		return apperror.Validation(apperror.FieldError{
			Field:   "stakeholder_id",
			Message: "stakeholder_id and stakeholder_type must be provided together",
		})
	}
	if !model.ValidStakeholderType(stakeholderType) {
		return apperror.Validation(apperror.FieldError{Field: "stakeholder_type", Message: "unknown stakeholder type"})
	}

	exists, err := s.stakeholderRepo.Exists(ctx, stakeholderType, *id)
	if err != nil {
		return apperror.Internal(err)
	}
	if !exists {
		return apperror.InvalidStakeholderReference(stakeholderType)
	}
	return nil
}

// resolveUnit forces non-super-admin principals to their own unit; a
// super_admin may target any unit via the payload.
func resolveUnit(p *auth.Principal, requested string) (uuid.UUID, error) {
	if p.Role == model.RoleSuperAdmin && requested != "" {
		unitID, err := uuid.Parse(requested)
		if err != nil {
			return uuid.Nil, apperror.Validation(apperror.FieldError{Field: "unit_id", Message: "must be a valid uuid"})
		}
		return unitID, nil
	}
	if p.UnitID == nil {
		return uuid.Nil, apperror.MissingUnit()
	}
	return *p.UnitID, nil
}

func parseStakeholderID(raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperror.Validation(apperror.FieldError{Field: "stakeholder_id", Message: "must be a valid uuid"})
	}
	return &id, nil
}

func mapTransaction(t *model.Transaction) *TransactionResponse {
	res := &TransactionResponse{
		ID:              t.ID.String(),
		Category:        t.Category,
		StakeholderType: t.StakeholderType,
		Amount:          t.Amount.String(),
		Description:     t.Description,
		BillNo:          t.BillNo,
		Date:            t.Date.Format(time.RFC3339Nano),
		UnitID:          t.UnitID.String(),
		CreatorID:       t.CreatorID.String(),
		CreatedAt:       t.CreatedAt.Format(time.RFC3339Nano),
	}
	if t.StakeholderID != nil {
		id := t.StakeholderID.String()
		res.StakeholderID = &id
	}
	return res
}

func (s *transactionService) audit(ctx context.Context, p *auth.Principal, action string, t *model.Transaction) error {
	if s.auditRepo == nil {
		return nil
	}
	details, _ := json.Marshal(map[string]interface{}{
		"category": t.Category,
		"amount":   t.Amount.String(),
		"unit_id":  t.UnitID.String(),
	})
	userID := p.UserID
	return s.auditRepo.Log(ctx, &model.AuditLog{
		UserID:   &userID,
		Action:   action,
		EntityID: t.ID.String(),
		Details:  string(details),
	})
}

func (s *transactionService) notify(event string, t *model.Transaction) {
	if s.events != nil {
		s.events.TransactionChanged(event, t)
	}
}

// --- Operations ---

func (s *transactionService) Create(ctx context.Context, p *auth.Principal, req CreateTransactionRequest) (*TransactionResponse, error) {
	if !p.HasPermission(model.ModuleTransactions, model.ActionCreate) {
		return nil, apperror.ErrForbidden
	}

	if !model.ValidCategory(req.Category) {
		return nil, apperror.Validation(apperror.FieldError{Field: "category", Message: "unknown category"})
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	stakeholderID, err := parseStakeholderID(req.StakeholderID)
	if err != nil {
		return nil, err
	}
	if err := s.resolveStakeholderRef(ctx, stakeholderID, req.StakeholderType); err != nil {
		return nil, err
	}

	unitID, err := resolveUnit(p, req.UnitID)
	if err != nil {
		return nil, err
	}

	tx := &model.Transaction{
		Category:        req.Category,
		StakeholderID:   stakeholderID,
		StakeholderType: req.StakeholderType,
		Amount:          amount,
		Description:     req.Description,
		BillNo:          req.BillNo,
		Date:            req.Date,
		UnitID:          unitID,
		CreatorID:       p.UserID,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.txRepo.Create(txCtx, tx); createErr != nil {
			return createErr
		}
		return s.audit(txCtx, p, model.AuditCreateTransaction, tx)
	})
	if err != nil {
		return nil, apperror.Internal(err)
	}

	s.notify("transaction.created", tx)
	return mapTransaction(tx), nil
}

func (s *transactionService) List(ctx context.Context, p *auth.Principal, f scope.Filters) (*TransactionListResult, error) {
	if !p.HasPermission(model.ModuleTransactions, model.ActionRead) {
		return nil, apperror.ErrForbidden
	}

	pred := scope.BuildListFilter(p, f)
	transactions, total, err := s.txRepo.List(ctx, pred)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	items := make([]TransactionResponse, 0, len(transactions))
	for i := range transactions {
		items = append(items, *mapTransaction(&transactions[i]))
	}

	return &TransactionListResult{
		Transactions: items,
		Pagination: response.Pagination{
			Page:       pred.Page.Page,
			Limit:      pred.Page.Limit,
			Total:      total,
			TotalPages: pagination.TotalPages(total, pred.Page.Limit),
		},
	}, nil
}

func (s *transactionService) GetByID(ctx context.Context, p *auth.Principal, id uuid.UUID) (*TransactionResponse, error) {
	if !p.HasPermission(model.ModuleTransactions, model.ActionRead) {
		return nil, apperror.ErrForbidden
	}

	tx, err := s.txRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.From(err)
	}

	if !canReadTransaction(p, tx) {
		return nil, apperror.ErrForbidden
	}

	return mapTransaction(tx), nil
}

func (s *transactionService) Update(ctx context.Context, p *auth.Principal, id uuid.UUID, req UpdateTransactionRequest) (*TransactionResponse, error) {
	if !p.HasPermission(model.ModuleTransactions, model.ActionUpdate) {
		return nil, apperror.ErrForbidden
	}

	tx, err := s.txRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.From(err)
	}

	if !canUpdateTransaction(p, tx) {
		return nil, apperror.ErrForbidden
	}

	if req.Category != nil {
		if !model.ValidCategory(*req.Category) {
			return nil, apperror.Validation(apperror.FieldError{Field: "category", Message: "unknown category"})
		}
		tx.Category = *req.Category
	}

	if req.Amount != nil {
		amount, amountErr := parseAmount(*req.Amount)
		if amountErr != nil {
			return nil, amountErr
		}
		tx.Amount = amount
	}

	if req.Description != nil {
		if *req.Description == "" {
			return nil, apperror.Validation(apperror.FieldError{Field: "description", Message: "must not be empty"})
		}
		tx.Description = *req.Description
	}

	if req.BillNo != nil {
		tx.BillNo = *req.BillNo
	}
	if req.Date != nil {
		tx.Date = *req.Date
	}

	// Only a super_admin may reassign the owning unit. Create silently forces
	// the caller's unit instead; on update a dropped field would look like a
	// successful move, so it is rejected outright.
	if req.UnitID != nil {
		if p.Role != model.RoleSuperAdmin {
			return nil, apperror.Validation(apperror.FieldError{Field: "unit_id", Message: "only super_admin may reassign the owning unit"})
		}
		unitID, unitErr := uuid.Parse(*req.UnitID)
		if unitErr != nil {
			return nil, apperror.Validation(apperror.FieldError{Field: "unit_id", Message: "must be a valid uuid"})
		}
		tx.UnitID = unitID
	}

	// A changed stakeholder reference is re-validated against the final
	// state of the pair, same rules as create.
	if req.StakeholderID != nil || req.StakeholderType != nil {
		stakeholderID := tx.StakeholderID
		stakeholderType := tx.StakeholderType
		if req.StakeholderID != nil {
			parsed, parseErr := parseStakeholderID(*req.StakeholderID)
			if parseErr != nil {
				return nil, parseErr
			}
			stakeholderID = parsed
		}
		if req.StakeholderType != nil {
			stakeholderType = *req.StakeholderType
		}
		if stakeholderID == nil {
			stakeholderType = ""
		}
		if refErr := s.resolveStakeholderRef(ctx, stakeholderID, stakeholderType); refErr != nil {
			return nil, refErr
		}
		tx.StakeholderID = stakeholderID
		tx.StakeholderType = stakeholderType
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.txRepo.Update(txCtx, tx); updateErr != nil {
			return updateErr
		}
		return s.audit(txCtx, p, model.AuditUpdateTransaction, tx)
	})
	if err != nil {
		return nil, apperror.Internal(err)
	}

	s.notify("transaction.updated", tx)
	return mapTransaction(tx), nil
}

func (s *transactionService) Delete(ctx context.Context, p *auth.Principal, id uuid.UUID) (uuid.UUID, error) {
	if !p.HasPermission(model.ModuleTransactions, model.ActionDelete) {
		return uuid.Nil, apperror.ErrForbidden
	}

	tx, err := s.txRepo.FindByID(ctx, id)
	if err != nil {
		return uuid.Nil, apperror.From(err)
	}

	if !canDeleteTransaction(p, tx) {
		return uuid.Nil, apperror.ErrForbidden
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if deleteErr := s.txRepo.Delete(txCtx, id); deleteErr != nil {
			return deleteErr
		}
		return s.audit(txCtx, p, model.AuditDeleteTransaction, tx)
	})
	if err != nil {
		return uuid.Nil, apperror.Internal(err)
	}

	s.notify("transaction.deleted", tx)
	return id, nil
}
