package ordering

import (
	"context"

	"github.com/commerce/backend/internal/domain/catalog"
	"github.com/commerce/backend/internal/domain/inventory"
	"github.com/commerce/backend/internal/domain/ordering"
	"github.com/commerce/backend/internal/domain/store"
)

// TransactionScope provides transactional access to the repositories an
// order workflow touches. When a function is executed within a scope,
// all repository operations are part of the same database transaction
// and commit or roll back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all repositories an order
// workflow needs within one transaction. All repositories returned share
// the same underlying database transaction.
//
// Aggregate boundary notes:
//   - OrderRepo: the Order aggregate root. Items, discounts, taxes,
//     notes, refunds and shipments are child entities persisted through
//     the aggregate via GORM association handling.
//   - StockRepo: stock levels are a separate aggregate; order workflows
//     load them with row locks and save them in the same transaction so
//     reservation arithmetic and order state commit together.
//   - ProductRepo and StoreRepo are read-only lookups inside workflows.
type TransactionalRepositories interface {
	// OrderRepo returns the order repository scoped to the current transaction
	OrderRepo() ordering.Repository
	// StockRepo returns the stock level repository scoped to the current transaction
	StockRepo() inventory.StockLevelRepository
	// ProductRepo returns the product repository scoped to the current transaction
	ProductRepo() catalog.ProductRepository
	// StoreRepo returns the store repository scoped to the current transaction
	StoreRepo() store.Repository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for tests built on in-memory repositories.
type NoOpTransactionScope struct {
	orderRepo   ordering.Repository
	stockRepo   inventory.StockLevelRepository
	productRepo catalog.ProductRepository
	storeRepo   store.Repository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	orderRepo ordering.Repository,
	stockRepo inventory.StockLevelRepository,
	productRepo catalog.ProductRepository,
	storeRepo store.Repository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		orderRepo:   orderRepo,
		stockRepo:   stockRepo,
		productRepo: productRepo,
		storeRepo:   storeRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// OrderRepo returns the order repository.
func (s *NoOpTransactionScope) OrderRepo() ordering.Repository {
	return s.orderRepo
}

// StockRepo returns the stock level repository.
func (s *NoOpTransactionScope) StockRepo() inventory.StockLevelRepository {
	return s.stockRepo
}

// ProductRepo returns the product repository.
func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository {
	return s.productRepo
}

// StoreRepo returns the store repository.
func (s *NoOpTransactionScope) StoreRepo() store.Repository {
	return s.storeRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
