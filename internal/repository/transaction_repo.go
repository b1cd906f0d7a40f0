package repository

import (
	"context"

	"pharmaledger/internal/model"
	"pharmaledger/internal/scope"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// TransactionRepository defines the interface for data access of Transaction entities
type TransactionRepository interface {
	Create(ctx context.Context, tx *model.Transaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	List(ctx context.Context, pred scope.Predicate) ([]model.Transaction, int64, error)
	Update(ctx context.Context, tx *model.Transaction) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, tx *model.Transaction) error {
	return GetDB(ctx, r.db).Create(tx).Error
}

func (r *transactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	var tx model.Transaction
	if err := GetDB(ctx, r.db).First(&tx, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &tx, nil
}

// applyPredicate translates a scope.Predicate into a gorm query. The scope
// clauses become one OR-group ANDed with the explicit filters.
func applyPredicate(db *gorm.DB, pred scope.Predicate) *gorm.DB {
	query := db.Model(&model.Transaction{})

	if pred.DenyAll {
		// Contradiction instead of an early return so count and fetch
		// share one code path.
		return query.Where("1 = 0")
	}

	if len(pred.Scopes) > 0 {
		group := db.Session(&gorm.Session{NewDB: true})
		var or *gorm.DB
		for _, c := range pred.Scopes {
			clause := db.Session(&gorm.Session{NewDB: true})
			if c.UnitID != nil {
				clause = clause.Where("unit_id = ?", *c.UnitID)
			}
			if c.StakeholderID != nil {
				clause = clause.Where("stakeholder_id = ?", *c.StakeholderID)
			}
			if c.StakeholderType != "" {
				clause = clause.Where("stakeholder_type = ?", c.StakeholderType)
			}
			if c.Category != "" {
				clause = clause.Where("category = ?", c.Category)
			}
			if or == nil {
				or = group.Where(clause)
			} else {
				or = or.Or(clause)
			}
		}
		query = query.Where(or)
	}

	if pred.Category != "" {
		query = query.Where("category = ?", pred.Category)
	}
	if pred.StakeholderID != nil {
		query = query.Where("stakeholder_id = ?", *pred.StakeholderID)
	}
	if pred.StakeholderType != "" {
		query = query.Where("stakeholder_type = ?", pred.StakeholderType)
	}
	if pred.DateFrom != nil {
		query = query.Where("date >= ?", *pred.DateFrom)
	}
	if pred.DateTo != nil {
		query = query.Where("date <= ?", *pred.DateTo)
	}

	return query
}

// List runs the paginated fetch and the unpaginated count concurrently; the
// two need not be snapshot-consistent.
func (r *transactionRepository) List(ctx context.Context, pred scope.Predicate) ([]model.Transaction, int64, error) {
	var transactions []model.Transaction
	var total int64

	db := GetDB(ctx, r.db)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return applyPredicate(db.WithContext(gctx), pred).Count(&total).Error
	})
	g.Go(func() error {
		return applyPredicate(db.WithContext(gctx), pred).
			Order("date desc").
			Offset(pred.Page.Offset).
			Limit(pred.Page.Limit).
			Find(&transactions).Error
	})

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	return transactions, total, nil
}

func (r *transactionRepository) Update(ctx context.Context, tx *model.Transaction) error {
	return GetDB(ctx, r.db).Save(tx).Error
}

func (r *transactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Transaction{}).Error
}
