package repository

import (
	"context"

	"gorm.io/gorm"
)

type ctxKey string

// ledgerTxKey carries the open gorm transaction through the context so a
// mutation and its audit entry commit or roll back together.
const ledgerTxKey ctxKey = "pharmaledger_tx"

// TransactionManager runs a unit of work inside one database transaction.
// Repositories called with the returned context join that transaction.
type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

type transactionManager struct {
	db *gorm.DB
}

func NewTransactionManager(db *gorm.DB) TransactionManager {
	return &transactionManager{db: db}
}

func (t *transactionManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := context.WithValue(ctx, ledgerTxKey, tx)
		return fn(txCtx)
	})
}

// GetDB returns the transaction joined via RunInTx when one is in flight,
// otherwise the root connection.
func GetDB(ctx context.Context, rootDB *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(ledgerTxKey).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return rootDB.WithContext(ctx)
}
