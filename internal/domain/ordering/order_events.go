package ordering

import (
	"github.com/commerce/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type constants for the ordering module
const (
	EventTypeOrderCreated         = "OrderCreated"
	EventTypeOrderConfirmed       = "OrderConfirmed"
	EventTypeOrderProcessing      = "OrderProcessing"
	EventTypeOrderCancelled       = "OrderCancelled"
	EventTypeOrderPaymentRecorded = "OrderPaymentRecorded"
	EventTypeOrderShipped         = "OrderShipped"
	EventTypeOrderDelivered       = "OrderDelivered"
	EventTypeOrderCompleted       = "OrderCompleted"
	EventTypeOrderRefunded        = "OrderRefunded"
	EventTypeOrderFailed          = "OrderFailed"
)

// EventItem carries the per-line quantities inventory handlers need
// without forcing them to load the order.
type EventItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

func eventItems(o *Order) []EventItem {
	items := make([]EventItem, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, EventItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return items
}

// OrderCreatedEvent is raised when a new order enters the pending state
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string          `json:"order_number"`
	UserID      uuid.UUID       `json:"user_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Items       []EventItem     `json:"items"`
}

// NewOrderCreatedEvent creates an OrderCreatedEvent
func NewOrderCreatedEvent(o *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, "Order", o.ID, o.StoreID),
		OrderNumber:     o.OrderNumber,
		UserID:          o.UserID,
		TotalAmount:     o.TotalAmount,
		Items:           eventItems(o),
	}
}

// OrderConfirmedEvent is raised when an order is confirmed and its
// inventory has been reserved.
type OrderConfirmedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string          `json:"order_number"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Items       []EventItem     `json:"items"`
}

// NewOrderConfirmedEvent creates an OrderConfirmedEvent
func NewOrderConfirmedEvent(o *Order) *OrderConfirmedEvent {
	return &OrderConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderConfirmed, "Order", o.ID, o.StoreID),
		OrderNumber:     o.OrderNumber,
		TotalAmount:     o.TotalAmount,
		Items:           eventItems(o),
	}
}

// OrderProcessingEvent is raised when fulfillment work begins
type OrderProcessingEvent struct {
	shared.BaseDomainEvent
	OrderNumber string `json:"order_number"`
}

// NewOrderProcessingEvent creates an OrderProcessingEvent
func NewOrderProcessingEvent(o *Order) *OrderProcessingEvent {
	return &OrderProcessingEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderProcessing, "Order", o.ID, o.StoreID),
		OrderNumber:     o.OrderNumber,
	}
}

// OrderCancelledEvent is raised when an order is cancelled.
// NeedsRelease is false for orders cancelled straight from pending,
// which never held a reservation.
type OrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderNumber  string      `json:"order_number"`
	Reason       string      `json:"reason"`
	NeedsRelease bool        `json:"needs_release"`
	Items        []EventItem `json:"items"`
}

// NewOrderCancelledEvent creates an OrderCancelledEvent
func NewOrderCancelledEvent(o *Order, needsRelease bool) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCancelled, "Order", o.ID, o.StoreID),
		OrderNumber:     o.OrderNumber,
		Reason:          o.CancelReason,
		NeedsRelease:    needsRelease,
		Items:           eventItems(o),
	}
}

// OrderPaymentRecordedEvent is raised when a payment is applied
type OrderPaymentRecordedEvent struct {
	shared.BaseDomainEvent
	OrderNumber   string          `json:"order_number"`
	Amount        decimal.Decimal `json:"amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
}

// NewOrderPaymentRecordedEvent creates an OrderPaymentRecordedEvent
func NewOrderPaymentRecordedEvent(o *Order, amount decimal.Decimal) *OrderPaymentRecordedEvent {
	return &OrderPaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPaymentRecorded, "Order", o.ID, o.StoreID),
		OrderNumber:     o.OrderNumber,
		Amount:          amount,
		PaidAmount:      o.PaidAmount,
		PaymentStatus:   o.PaymentStatus,
	}
}

// OrderShippedEvent is raised when an order is handed to a carrier and
// its reservation has been consumed.
type OrderShippedEvent struct {
	shared.BaseDomainEvent
	OrderNumber    string      `json:"order_number"`
	TrackingNumber string      `json:"tracking_number"`
	Carrier        string      `json:"carrier"`
	Items          []EventItem `json:"items"`
}

// NewOrderShippedEvent creates an OrderShippedEvent
func NewOrderShippedEvent(o *Order, trackingNumber, carrier string) *OrderShippedEvent {
	return &OrderShippedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderShipped, "Order", o.ID, o.StoreID),
		OrderNumber:     o.OrderNumber,
		TrackingNumber:  trackingNumber,
		Carrier:         carrier,
		Items:           eventItems(o),
	}
}

// OrderDeliveredEvent is raised when delivery is confirmed
type OrderDeliveredEvent struct {
	shared.BaseDomainEvent
	OrderNumber string `json:"order_number"`
}

// NewOrderDeliveredEvent creates an OrderDeliveredEvent
func NewOrderDeliveredEvent(o *Order) *OrderDeliveredEvent {
	return &OrderDeliveredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderDelivered, "Order", o.ID, o.StoreID),
		OrderNumber:     o.OrderNumber,
	}
}

// OrderCompletedEvent is raised when an order reaches completed
type OrderCompletedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string          `json:"order_number"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewOrderCompletedEvent creates an OrderCompletedEvent
func NewOrderCompletedEvent(o *Order) *OrderCompletedEvent {
	return &OrderCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCompleted, "Order", o.ID, o.StoreID),
		OrderNumber:     o.OrderNumber,
		TotalAmount:     o.TotalAmount,
	}
}

// OrderRefundedEvent is raised for every recorded refund, partial or full
type OrderRefundedEvent struct {
	shared.BaseDomainEvent
	OrderNumber   string          `json:"order_number"`
	Amount        decimal.Decimal `json:"amount"`
	TotalRefunded decimal.Decimal `json:"total_refunded"`
	Reason        string          `json:"reason"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
}

// NewOrderRefundedEvent creates an OrderRefundedEvent
func NewOrderRefundedEvent(o *Order, amount decimal.Decimal, reason string) *OrderRefundedEvent {
	return &OrderRefundedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderRefunded, "Order", o.ID, o.StoreID),
		OrderNumber:     o.OrderNumber,
		Amount:          amount,
		TotalRefunded:   o.TotalRefunded(),
		Reason:          reason,
		PaymentStatus:   o.PaymentStatus,
	}
}

// OrderFailedEvent is raised when an order is marked failed
type OrderFailedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string `json:"order_number"`
	Reason      string `json:"reason"`
}

// NewOrderFailedEvent creates an OrderFailedEvent
func NewOrderFailedEvent(o *Order, reason string) *OrderFailedEvent {
	return &OrderFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderFailed, "Order", o.ID, o.StoreID),
		OrderNumber:     o.OrderNumber,
		Reason:          reason,
	}
}
