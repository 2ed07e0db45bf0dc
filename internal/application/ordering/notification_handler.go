package ordering

import (
	"context"
	"fmt"

	"github.com/commerce/backend/internal/domain/ordering"
	"github.com/commerce/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// OrderNotificationHandler listens for order lifecycle events and sends
// customer-facing notifications. Delivery is best-effort; a failed
// notification never affects the order itself.
type OrderNotificationHandler struct {
	logger   *zap.Logger
	notifier OrderNotifier
}

// OrderNotifier is the interface for delivering order notifications.
// Implementations can support different channels (email, SMS, webhooks).
type OrderNotifier interface {
	// Notify delivers one order notification
	Notify(ctx context.Context, notification OrderNotification) error
}

// OrderNotification is one customer-facing message about an order
type OrderNotification struct {
	StoreID     string `json:"store_id"`
	OrderID     string `json:"order_id"`
	EventType   string `json:"event_type"`
	OrderNumber string `json:"order_number,omitempty"`
	Detail      string `json:"detail,omitempty"`
}

// NewOrderNotificationHandler creates a new handler for order events
func NewOrderNotificationHandler(logger *zap.Logger) *OrderNotificationHandler {
	return &OrderNotificationHandler{logger: logger}
}

// WithNotifier sets the notifier for delivering notifications
func (h *OrderNotificationHandler) WithNotifier(notifier OrderNotifier) *OrderNotificationHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *OrderNotificationHandler) EventTypes() []string {
	return []string{
		ordering.EventTypeOrderConfirmed,
		ordering.EventTypeOrderCancelled,
		ordering.EventTypeOrderShipped,
		ordering.EventTypeOrderDelivered,
		ordering.EventTypeOrderRefunded,
	}
}

// Handle processes one order lifecycle event
func (h *OrderNotificationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	notification := OrderNotification{
		StoreID:   event.StoreID().String(),
		OrderID:   event.AggregateID().String(),
		EventType: event.EventType(),
	}

	switch evt := event.(type) {
	case *ordering.OrderConfirmedEvent:
		notification.Detail = fmt.Sprintf("%d item(s) confirmed", len(evt.Items))
	case *ordering.OrderCancelledEvent:
		notification.Detail = evt.Reason
	case *ordering.OrderShippedEvent:
		notification.Detail = fmt.Sprintf("shipped via %s (%s)", evt.Carrier, evt.TrackingNumber)
	case *ordering.OrderRefundedEvent:
		notification.Detail = fmt.Sprintf("refunded %s", evt.Amount.String())
	}

	h.logger.Info("order notification",
		zap.String("event_type", notification.EventType),
		zap.String("store_id", notification.StoreID),
		zap.String("order_id", notification.OrderID),
		zap.String("detail", notification.Detail),
	)

	if h.notifier != nil {
		if err := h.notifier.Notify(ctx, notification); err != nil {
			// best-effort: log and swallow
			h.logger.Error("failed to deliver order notification",
				zap.String("order_id", notification.OrderID),
				zap.Error(err),
			)
		}
	}

	return nil
}

// Ensure OrderNotificationHandler implements shared.EventHandler
var _ shared.EventHandler = (*OrderNotificationHandler)(nil)

// LoggingOrderNotifier logs notifications instead of delivering them.
// Useful for development and testing.
type LoggingOrderNotifier struct {
	logger *zap.Logger
}

// NewLoggingOrderNotifier creates a new logging notifier
func NewLoggingOrderNotifier(logger *zap.Logger) *LoggingOrderNotifier {
	return &LoggingOrderNotifier{logger: logger}
}

// Notify logs the order notification
func (n *LoggingOrderNotifier) Notify(_ context.Context, notification OrderNotification) error {
	n.logger.Info("ORDER NOTIFICATION",
		zap.String("event_type", notification.EventType),
		zap.String("order_id", notification.OrderID),
		zap.String("detail", notification.Detail),
	)
	return nil
}

// Ensure LoggingOrderNotifier implements OrderNotifier
var _ OrderNotifier = (*LoggingOrderNotifier)(nil)
