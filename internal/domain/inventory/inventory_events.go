package inventory

import (
	"github.com/commerce/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeStockLevel = "StockLevel"

// Event type constants
const (
	EventTypeStockReserved = "StockReserved"
	EventTypeStockReleased = "StockReleased"
	EventTypeStockConsumed = "StockConsumed"
)

// StockReservedEvent is raised when stock is held for an order
type StockReservedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID    `json:"order_id"`
	Allocations []Allocation `json:"allocations"`
	Total       decimal.Decimal `json:"total"`
}

// NewStockReservedEvent creates a new StockReservedEvent
func NewStockReservedEvent(storeID, orderID uuid.UUID, result *ReservationResult) *StockReservedEvent {
	return &StockReservedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReserved, AggregateTypeStockLevel, orderID, storeID),
		OrderID:         orderID,
		Allocations:     result.Allocations,
		Total:           result.Total,
	}
}

// EventType returns the event type name
func (e *StockReservedEvent) EventType() string {
	return EventTypeStockReserved
}

// StockReleasedEvent is raised when a reservation is returned to available stock
type StockReleasedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID    `json:"order_id"`
	Allocations []Allocation `json:"allocations"`
	Total       decimal.Decimal `json:"total"`
}

// NewStockReleasedEvent creates a new StockReleasedEvent
func NewStockReleasedEvent(storeID, orderID uuid.UUID, result *ReservationResult) *StockReleasedEvent {
	return &StockReleasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReleased, AggregateTypeStockLevel, orderID, storeID),
		OrderID:         orderID,
		Allocations:     result.Allocations,
		Total:           result.Total,
	}
}

// EventType returns the event type name
func (e *StockReleasedEvent) EventType() string {
	return EventTypeStockReleased
}

// StockConsumedEvent is raised when reserved stock is deducted on shipment
type StockConsumedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID    `json:"order_id"`
	Allocations []Allocation `json:"allocations"`
	Total       decimal.Decimal `json:"total"`
}

// NewStockConsumedEvent creates a new StockConsumedEvent
func NewStockConsumedEvent(storeID, orderID uuid.UUID, result *ReservationResult) *StockConsumedEvent {
	return &StockConsumedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockConsumed, AggregateTypeStockLevel, orderID, storeID),
		OrderID:         orderID,
		Allocations:     result.Allocations,
		Total:           result.Total,
	}
}

// EventType returns the event type name
func (e *StockConsumedEvent) EventType() string {
	return EventTypeStockConsumed
}
