package store

import (
	"time"

	"github.com/commerce/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountType determines how a discount value is applied
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

// IsValid checks if the type is a valid DiscountType
func (t DiscountType) IsValid() bool {
	return t == DiscountTypePercentage || t == DiscountTypeFixed
}

// Discount is a reusable discount code. Its lifecycle is independent of
// any order; orders snapshot the computed amount at pricing time.
type Discount struct {
	shared.BaseEntity
	StoreID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Code     string          `gorm:"type:varchar(50);not null;index"`
	Type     DiscountType    `gorm:"type:varchar(20);not null"`
	Value    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	StartsAt *time.Time      `gorm:"type:timestamp"`
	EndsAt   *time.Time      `gorm:"type:timestamp"`
	Active   bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Discount) TableName() string {
	return "discounts"
}

// NewDiscount creates a new discount code
func NewDiscount(storeID uuid.UUID, code string, discountType DiscountType, value decimal.Decimal, startsAt, endsAt *time.Time) (*Discount, error) {
	if storeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STORE", "Store ID cannot be empty")
	}
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Discount code cannot be empty")
	}
	if !discountType.IsValid() {
		return nil, shared.NewDomainError("INVALID_DISCOUNT_TYPE", "Discount type must be percentage or fixed")
	}
	if value.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_VALUE", "Discount value must be positive")
	}
	if discountType == DiscountTypePercentage && value.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_VALUE", "Percentage discount cannot exceed 100")
	}

	return &Discount{
		BaseEntity: shared.NewBaseEntity(),
		StoreID:    storeID,
		Code:       code,
		Type:       discountType,
		Value:      value,
		StartsAt:   startsAt,
		EndsAt:     endsAt,
		Active:     true,
	}, nil
}

// IsValidAt reports whether the discount is active and inside its
// validity window at the given time
func (d *Discount) IsValidAt(t time.Time) bool {
	if !d.Active {
		return false
	}
	if d.StartsAt != nil && t.Before(*d.StartsAt) {
		return false
	}
	if d.EndsAt != nil && t.After(*d.EndsAt) {
		return false
	}
	return true
}

// AmountFor computes the discount amount against a subtotal.
// Percentage discounts round to 2 places; fixed discounts never exceed
// the subtotal.
func (d *Discount) AmountFor(subtotal decimal.Decimal) decimal.Decimal {
	switch d.Type {
	case DiscountTypePercentage:
		return subtotal.Mul(d.Value).Div(decimal.NewFromInt(100)).Round(2)
	case DiscountTypeFixed:
		if d.Value.GreaterThan(subtotal) {
			return subtotal
		}
		return d.Value
	}
	return decimal.Zero
}

// Deactivate marks the discount as inactive
func (d *Discount) Deactivate() {
	d.Active = false
	d.Touch()
}
