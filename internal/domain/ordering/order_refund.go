package ordering

import (
	"github.com/commerce/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderRefund records one refund against an order. The running sum of
// refunds drives the order's payment status.
type OrderRefund struct {
	shared.BaseEntity
	OrderID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ActorID uuid.UUID       `gorm:"type:uuid;not null"`
	Amount  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Reason  string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (OrderRefund) TableName() string {
	return "order_refunds"
}

// NewOrderRefund creates a new refund record
func NewOrderRefund(orderID, actorID uuid.UUID, amount decimal.Decimal, reason string) *OrderRefund {
	return &OrderRefund{
		BaseEntity: shared.NewBaseEntity(),
		OrderID:    orderID,
		ActorID:    actorID,
		Amount:     amount,
		Reason:     reason,
	}
}

// OrderShipment records the carrier handoff created when an order ships
type OrderShipment struct {
	shared.BaseEntity
	OrderID        uuid.UUID `gorm:"type:uuid;not null;index"`
	TrackingNumber string    `gorm:"type:varchar(100);not null"`
	Carrier        string    `gorm:"type:varchar(100);not null"`
}

// TableName returns the table name for GORM
func (OrderShipment) TableName() string {
	return "order_shipments"
}

// NewOrderShipment creates a new shipment record
func NewOrderShipment(orderID uuid.UUID, trackingNumber, carrier string) *OrderShipment {
	return &OrderShipment{
		BaseEntity:     shared.NewBaseEntity(),
		OrderID:        orderID,
		TrackingNumber: trackingNumber,
		Carrier:        carrier,
	}
}
