package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/commerce/backend/internal/domain/ordering"
	"github.com/commerce/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// orderAssociations are the child collections loaded with every order.
// The aggregate is always handled whole; partial loads would break the
// totals and audit invariants.
var orderAssociations = []string{"Items", "Discounts", "Taxes", "Notes", "Refunds", "Shipments"}

// GormOrderRepository implements ordering.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) preloaded(ctx context.Context) *gorm.DB {
	query := r.db.WithContext(ctx)
	for _, assoc := range orderAssociations {
		if assoc == "Notes" {
			query = query.Preload(assoc, func(db *gorm.DB) *gorm.DB {
				return db.Order("created_at ASC")
			})
			continue
		}
		query = query.Preload(assoc)
	}
	return query
}

// FindByID loads an order with all of its children
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*ordering.Order, error) {
	var order ordering.Order
	if err := r.preloaded(ctx).First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByIDForStore loads an order scoped to a store
func (r *GormOrderRepository) FindByIDForStore(ctx context.Context, storeID, id uuid.UUID) (*ordering.Order, error) {
	var order ordering.Order
	if err := r.preloaded(ctx).
		Where("store_id = ? AND id = ?", storeID, id).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByOrderNumber loads an order by its store-unique number
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, storeID uuid.UUID, orderNumber string) (*ordering.Order, error) {
	var order ordering.Order
	if err := r.preloaded(ctx).
		Where("store_id = ? AND order_number = ?", storeID, orderNumber).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// ExistsByOrderNumber reports whether an order number is taken in a store
func (r *GormOrderRepository) ExistsByOrderNumber(ctx context.Context, storeID uuid.UUID, orderNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&ordering.Order{}).
		Where("store_id = ? AND order_number = ?", storeID, orderNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindByUser lists a user's orders in a store, newest first
func (r *GormOrderRepository) FindByUser(ctx context.Context, storeID, userID uuid.UUID, limit, offset int) ([]*ordering.Order, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&ordering.Order{}).
		Where("store_id = ? AND user_id = ?", storeID, userID).
		Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []*ordering.Order
	if err := base.
		Preload("Items").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// Save persists a new order with all of its children
func (r *GormOrderRepository) Save(ctx context.Context, order *ordering.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(orderAssociations...).Save(order).Error; err != nil {
			return err
		}
		return r.saveChildren(tx, order)
	})
}

// SaveWithLock persists an existing order using optimistic locking. The
// update only applies while the stored version matches the one the
// aggregate was loaded at; a lost race returns ErrConcurrencyConflict.
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, order *ordering.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		loadedVersion := order.Version
		order.Version++
		order.UpdatedAt = time.Now()

		result := tx.Model(&ordering.Order{}).
			Where("id = ? AND version = ?", order.ID, loadedVersion).
			Updates(map[string]interface{}{
				"subtotal_amount":    order.SubtotalAmount,
				"discount_amount":    order.DiscountAmount,
				"tax_amount":         order.TaxAmount,
				"shipping_amount":    order.ShippingAmount,
				"total_amount":       order.TotalAmount,
				"paid_amount":        order.PaidAmount,
				"status":             order.Status,
				"payment_status":     order.PaymentStatus,
				"fulfillment_status": order.FulfillmentStatus,
				"confirmed_at":       order.ConfirmedAt,
				"shipped_at":         order.ShippedAt,
				"delivered_at":       order.DeliveredAt,
				"completed_at":       order.CompletedAt,
				"cancelled_at":       order.CancelledAt,
				"cancel_reason":      order.CancelReason,
				"version":            order.Version,
				"updated_at":         order.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			order.Version = loadedVersion
			return shared.ErrConcurrencyConflict
		}

		return r.saveChildren(tx, order)
	})
}

// saveChildren synchronizes the order's child rows. Items, discounts
// and taxes are replaceable sets; notes, refunds and shipments are
// append-only and only ever gain rows.
func (r *GormOrderRepository) saveChildren(tx *gorm.DB, order *ordering.Order) error {
	if err := syncSet(tx, order.ID, order.Items, func(i *ordering.OrderItem) uuid.UUID { return i.ID }); err != nil {
		return err
	}
	if err := syncSet(tx, order.ID, order.Discounts, func(d *ordering.OrderDiscount) uuid.UUID { return d.ID }); err != nil {
		return err
	}
	if err := syncSet(tx, order.ID, order.Taxes, func(t *ordering.OrderTax) uuid.UUID { return t.ID }); err != nil {
		return err
	}

	for i := range order.Notes {
		order.Notes[i].OrderID = order.ID
		if err := tx.Save(&order.Notes[i]).Error; err != nil {
			return err
		}
	}
	for i := range order.Refunds {
		order.Refunds[i].OrderID = order.ID
		if err := tx.Save(&order.Refunds[i]).Error; err != nil {
			return err
		}
	}
	for i := range order.Shipments {
		order.Shipments[i].OrderID = order.ID
		if err := tx.Save(&order.Shipments[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// syncSet upserts the current rows of a replaceable child set and
// deletes rows that are no longer part of the aggregate.
func syncSet[T any](tx *gorm.DB, orderID uuid.UUID, rows []T, id func(*T) uuid.UUID) error {
	var model T
	if len(rows) == 0 {
		return tx.Where("order_id = ?", orderID).Delete(&model).Error
	}

	keep := make([]uuid.UUID, len(rows))
	for i := range rows {
		keep[i] = id(&rows[i])
	}
	if err := tx.Where("order_id = ? AND id NOT IN ?", orderID, keep).Delete(&model).Error; err != nil {
		return err
	}
	for i := range rows {
		if err := tx.Save(&rows[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// GenerateOrderNumber produces the next order number for a store.
// Format: ORD-YYYY-NNNNNN (e.g. ORD-2026-000042).
func (r *GormOrderRepository) GenerateOrderNumber(ctx context.Context, storeID uuid.UUID) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("ORD-%d-", year)

	var last ordering.Order
	err := r.db.WithContext(ctx).
		Model(&ordering.Order{}).
		Where("store_id = ? AND order_number LIKE ?", storeID, prefix+"%").
		Order("order_number DESC").
		First(&last).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var next int64 = 1
	if err == nil && last.OrderNumber != "" {
		parts := strings.Split(last.OrderNumber, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				next = num + 1
			}
		}
	}

	orderNumber := fmt.Sprintf("%s%06d", prefix, next)

	exists, err := r.ExistsByOrderNumber(ctx, storeID, orderNumber)
	if err != nil {
		return "", err
	}
	if exists {
		return "", shared.NewDomainError("ORDER_NUMBER_CONFLICT", "Generated order number already exists")
	}
	return orderNumber, nil
}

// Ensure GormOrderRepository implements ordering.Repository
var _ ordering.Repository = (*GormOrderRepository)(nil)
