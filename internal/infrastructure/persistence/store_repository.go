package persistence

import (
	"context"
	"errors"

	"github.com/commerce/backend/internal/domain/shared"
	"github.com/commerce/backend/internal/domain/store"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStoreRepository implements store.Repository using GORM
type GormStoreRepository struct {
	db *gorm.DB
}

// NewGormStoreRepository creates a new GormStoreRepository
func NewGormStoreRepository(db *gorm.DB) *GormStoreRepository {
	return &GormStoreRepository{db: db}
}

// FindByID finds a store by its ID without associations
func (r *GormStoreRepository) FindByID(ctx context.Context, id uuid.UUID) (*store.Store, error) {
	var s store.Store
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// LoadConfig loads the store with its discounts, shipping methods and
// payment methods preloaded, and returns the typed config snapshot.
func (r *GormStoreRepository) LoadConfig(ctx context.Context, id uuid.UUID) (*store.Config, error) {
	var s store.Store
	if err := r.db.WithContext(ctx).
		Preload("Discounts").
		Preload("ShippingMethods").
		Preload("PaymentMethods").
		First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	cfg := s.Config()
	return &cfg, nil
}

// Save creates or updates a store with its configuration rows
func (r *GormStoreRepository) Save(ctx context.Context, s *store.Store) error {
	return r.db.WithContext(ctx).Save(s).Error
}

// Ensure GormStoreRepository implements store.Repository
var _ store.Repository = (*GormStoreRepository)(nil)
