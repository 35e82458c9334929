package repository

import (
	"context"

	"gorm.io/gorm"
)

type contextKey string

const (
	txKey    contextKey = "gorm_tx"
	hooksKey contextKey = "tx_hooks"
)

// TransactionManager runs a unit of work inside a single database transaction.
// Every engine mutation (create, transition, sweep) goes through RunInTx so the
// vehicle-status side effects commit or roll back with the owning entity.
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
	hooks := &txHooks{}
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := context.WithValue(ctx, txKey, tx)
		txCtx = context.WithValue(txCtx, hooksKey, hooks)
		return fn(txCtx)
	})
	if err != nil {
		return err
	}
	for _, fn := range hooks.afterCommit {
		fn()
	}
	return nil
}

type txHooks struct {
	afterCommit []func()
}

// AfterCommit defers fn until the surrounding transaction commits; a rollback
// drops it. Outside a transaction fn runs immediately.
func AfterCommit(ctx context.Context, fn func()) {
	if hooks, ok := ctx.Value(hooksKey).(*txHooks); ok {
		hooks.afterCommit = append(hooks.afterCommit, fn)
		return
	}
	fn()
}

// GetDB extracts the transaction DB from context if present, otherwise returns
// the root DB.
func GetDB(ctx context.Context, rootDB *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return rootDB.WithContext(ctx)
}
