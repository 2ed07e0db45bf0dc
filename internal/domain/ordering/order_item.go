package ordering

import (
	"github.com/commerce/backend/internal/domain/shared"
	"github.com/commerce/backend/internal/domain/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is one product line on an order. Items are immutable once
// created; changing an order's lines means replacing the whole set.
type OrderItem struct {
	shared.BaseEntity
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"type:varchar(255);not null"`
	SKU         string          `gorm:"type:varchar(100);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	UnitWeight  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(18,2);not null"` // Quantity * UnitPrice
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// NewOrderItem creates a new order item
func NewOrderItem(orderID, productID uuid.UUID, productName, sku string, quantity, unitPrice, unitWeight decimal.Decimal) (*OrderItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if unitWeight.IsNegative() {
		return nil, shared.NewDomainError("INVALID_WEIGHT", "Unit weight cannot be negative")
	}

	return &OrderItem{
		BaseEntity:  shared.NewBaseEntity(),
		OrderID:     orderID,
		ProductID:   productID,
		ProductName: productName,
		SKU:         sku,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		UnitWeight:  unitWeight,
		TotalPrice:  quantity.Mul(unitPrice),
	}, nil
}

// OrderDiscount snapshots one discount code's contribution to an order
// at pricing time. The referenced Discount entity lives its own life.
type OrderDiscount struct {
	shared.BaseEntity
	OrderID    uuid.UUID          `gorm:"type:uuid;not null;index"`
	DiscountID uuid.UUID          `gorm:"type:uuid;not null"`
	Code       string             `gorm:"type:varchar(50);not null"`
	Type       store.DiscountType `gorm:"type:varchar(20);not null"`
	Value      decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	Amount     decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (OrderDiscount) TableName() string {
	return "order_discounts"
}

// OrderTax is one tax line on an order. A zero store tax rate produces
// no tax line at all.
type OrderTax struct {
	shared.BaseEntity
	OrderID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name    string          `gorm:"type:varchar(100);not null"`
	Rate    decimal.Decimal `gorm:"type:decimal(8,4);not null"`
	Amount  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (OrderTax) TableName() string {
	return "order_taxes"
}
