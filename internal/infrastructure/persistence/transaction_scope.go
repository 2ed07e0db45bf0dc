package persistence

import (
	"context"

	appordering "github.com/commerce/backend/internal/application/ordering"
	"github.com/commerce/backend/internal/domain/catalog"
	"github.com/commerce/backend/internal/domain/inventory"
	"github.com/commerce/backend/internal/domain/ordering"
	"github.com/commerce/backend/internal/domain/store"
	"gorm.io/gorm"
)

// GormTransactionScope implements the order workflow TransactionScope
// using GORM transactions. Every repository handed to the workflow
// callback shares one transaction, so an error anywhere rolls back
// everything.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appordering.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides repositories scoped to one transaction
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// OrderRepo returns the order repository scoped to the current transaction
func (r *gormTransactionalRepositories) OrderRepo() ordering.Repository {
	return NewGormOrderRepository(r.tx)
}

// StockRepo returns the stock level repository scoped to the current transaction
func (r *gormTransactionalRepositories) StockRepo() inventory.StockLevelRepository {
	return NewGormStockLevelRepository(r.tx)
}

// ProductRepo returns the product repository scoped to the current transaction
func (r *gormTransactionalRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// StoreRepo returns the store repository scoped to the current transaction
func (r *gormTransactionalRepositories) StoreRepo() store.Repository {
	return NewGormStoreRepository(r.tx)
}

// Ensure the GORM implementations satisfy the workflow contracts
var (
	_ appordering.TransactionScope          = (*GormTransactionScope)(nil)
	_ appordering.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
