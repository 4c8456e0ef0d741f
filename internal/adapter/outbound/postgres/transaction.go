package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/agora/server/internal/port/outbound"
)

// txContextKey is used to store the transaction in context.
type txContextKeyType struct{}

var txContextKey = txContextKeyType{}

// conn returns the transaction carried by ctx, or db.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txContextKey).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// transactionAdapter implements outbound.FeedTransactionPort.
type transactionAdapter struct {
	db *gorm.DB
}

// NewTransactionAdapter creates a new transaction adapter.
func NewTransactionAdapter(db *gorm.DB) outbound.FeedTransactionPort {
	return &transactionAdapter{db: db}
}

// RunInTransaction commits when fn returns nil and rolls back otherwise.
// Nested calls join the outer transaction.
func (a *transactionAdapter) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txContextKey).(*gorm.DB); ok {
		return fn(ctx)
	}
	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txContextKey, tx))
	})
}
