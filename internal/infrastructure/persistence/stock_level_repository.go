package persistence

import (
	"context"
	"errors"

	"github.com/commerce/backend/internal/domain/inventory"
	"github.com/commerce/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockLevelRepository implements StockLevelRepository using GORM
type GormStockLevelRepository struct {
	db *gorm.DB
}

// NewGormStockLevelRepository creates a new GormStockLevelRepository
func NewGormStockLevelRepository(db *gorm.DB) *GormStockLevelRepository {
	return &GormStockLevelRepository{db: db}
}

// FindByID finds a stock level by its ID
func (r *GormStockLevelRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockLevel, error) {
	var level inventory.StockLevel
	if err := r.db.WithContext(ctx).First(&level, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &level, nil
}

// FindByProduct returns all stock levels for a product, ordered by
// creation position
func (r *GormStockLevelRepository) FindByProduct(ctx context.Context, storeID, productID uuid.UUID) ([]inventory.StockLevel, error) {
	var levels []inventory.StockLevel
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND product_id = ?", storeID, productID).
		Order("position ASC").
		Find(&levels).Error; err != nil {
		return nil, err
	}
	return levels, nil
}

// FindByProductsForUpdate loads every stock level for the given products
// under SELECT ... FOR UPDATE. The row locks are held until the current
// transaction ends, so two concurrent reservations against the same
// product serialize instead of interleaving.
func (r *GormStockLevelRepository) FindByProductsForUpdate(ctx context.Context, storeID uuid.UUID, productIDs []uuid.UUID) (map[uuid.UUID][]*inventory.StockLevel, error) {
	result := make(map[uuid.UUID][]*inventory.StockLevel)
	if len(productIDs) == 0 {
		return result, nil
	}

	var levels []*inventory.StockLevel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("store_id = ? AND product_id IN ?", storeID, productIDs).
		Order("product_id, position ASC").
		Find(&levels).Error; err != nil {
		return nil, err
	}

	for _, level := range levels {
		result[level.ProductID] = append(result[level.ProductID], level)
	}
	return result, nil
}

// Save creates or updates a stock level
func (r *GormStockLevelRepository) Save(ctx context.Context, level *inventory.StockLevel) error {
	return r.db.WithContext(ctx).Save(level).Error
}

// SaveAll persists a batch of stock levels. Callers hold row locks from
// FindByProductsForUpdate, so plain updates are race-free here.
func (r *GormStockLevelRepository) SaveAll(ctx context.Context, levels []*inventory.StockLevel) error {
	if len(levels) == 0 {
		return nil
	}
	for _, level := range levels {
		if err := r.db.WithContext(ctx).Save(level).Error; err != nil {
			return err
		}
	}
	return nil
}

// Ensure GormStockLevelRepository implements StockLevelRepository
var _ inventory.StockLevelRepository = (*GormStockLevelRepository)(nil)
