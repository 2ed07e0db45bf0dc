package ordering

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/commerce/backend/internal/domain/catalog"
	"github.com/commerce/backend/internal/domain/inventory"
	"github.com/commerce/backend/internal/domain/ordering"
	"github.com/commerce/backend/internal/domain/pricing"
	"github.com/commerce/backend/internal/domain/shared"
	"github.com/commerce/backend/internal/domain/shared/valueobject"
	"github.com/commerce/backend/internal/domain/store"
	"github.com/commerce/backend/internal/infrastructure/telemetry"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// idempotencyTTL bounds how long a create key blocks retries
const idempotencyTTL = 24 * time.Hour

// Service orchestrates order lifecycle workflows. Each operation runs as
// one transaction: pricing, order state, inventory arithmetic and audit
// notes commit together or not at all. Notification events are published
// only after the transaction commits.
type Service struct {
	scope        TransactionScope
	engine       *pricing.Engine
	reservations *inventory.ReservationService
	validate     *validator.Validate
	logger       *zap.Logger

	eventPublisher shared.EventPublisher
	idempotency    shared.IdempotencyStore
}

// NewService creates a new order processing service
func NewService(scope TransactionScope, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		scope:        scope,
		engine:       pricing.NewEngine(),
		reservations: inventory.NewReservationService(),
		validate:     validator.New(),
		logger:       logger,
	}
}

// SetEventPublisher sets the publisher for post-commit notification events
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetIdempotencyStore enables create-call deduplication
func (s *Service) SetIdempotencyStore(idempotency shared.IdempotencyStore) {
	s.idempotency = idempotency
}

// Create builds, prices and persists a new pending order. All input
// problems are collected into field-level messages before any mutation.
func (s *Service) Create(ctx context.Context, storeID uuid.UUID, req CreateOrderRequest) (*OperationResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "create",
		attribute.String("store.id", storeID.String()))
	defer span.End()

	if err := s.validate.Struct(req); err != nil {
		return failureResult(validationMessages(err)...), nil
	}

	if req.IdempotencyKey != "" && s.idempotency != nil {
		seen, err := s.idempotency.IsProcessed(ctx, createKey(storeID, req.IdempotencyKey))
		if err != nil {
			return nil, fmt.Errorf("idempotency check: %w", err)
		}
		if seen {
			return failureResult("Duplicate request: an order with this idempotency key was already submitted"), nil
		}
	}

	var order *ordering.Order
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		cfg, err := repos.StoreRepo().LoadConfig(ctx, storeID)
		if err != nil {
			return err
		}

		verrs := &shared.ValidationErrors{}
		if !cfg.Active {
			verrs.Add("store_id", "Store is not active")
			return verrs
		}

		if !cfg.HasPaymentMethod(req.PaymentMethodID) {
			verrs.Add("payment_method_id", "Payment method is not offered by this store")
		}
		method := cfg.FindShippingMethod(req.ShippingMethodID)
		if method == nil {
			verrs.Add("shipping_method_id", "Shipping method is not offered by this store")
		}

		currency := cfg.Currency
		if req.Currency != "" {
			currency = valueobject.Currency(req.Currency)
		}

		items, lineItems, itemErrs := s.resolveItems(ctx, repos.ProductRepo(), storeID, req.Items)
		verrs.Errors = append(verrs.Errors, itemErrs...)

		discounts := make([]store.Discount, 0, len(req.DiscountCodes))
		for _, code := range req.DiscountCodes {
			d := cfg.FindDiscountByCode(code)
			if d == nil || !d.IsValidAt(time.Now()) {
				verrs.Add("discount_codes", fmt.Sprintf("Discount code %q is not valid", code))
				continue
			}
			discounts = append(discounts, *d)
		}

		if verrs.HasErrors() {
			return verrs
		}

		breakdown, err := s.engine.Price(lineItems, discounts, cfg.TaxRate, method)
		if err != nil {
			return err
		}

		orderNumber, err := repos.OrderRepo().GenerateOrderNumber(ctx, storeID)
		if err != nil {
			return err
		}

		order, err = ordering.NewOrder(storeID, orderNumber, req.UserID,
			req.BillingAddressID, req.ShippingAddressID,
			req.PaymentMethodID, req.ShippingMethodID, currency)
		if err != nil {
			return err
		}
		if err := order.SetItems(items); err != nil {
			return err
		}
		if err := order.ApplyPricing(breakdown); err != nil {
			return err
		}
		order.AddDomainEvent(ordering.NewOrderCreatedEvent(order))

		return repos.OrderRepo().Save(ctx, order)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return s.recover(err, "create order", storeID)
	}
	telemetry.SetOK(span)

	// The key is recorded only once the order is committed, so a
	// rejected request can be corrected and retried under the same key.
	if req.IdempotencyKey != "" && s.idempotency != nil {
		if _, err := s.idempotency.MarkProcessed(ctx, createKey(storeID, req.IdempotencyKey), idempotencyTTL); err != nil {
			s.logger.Warn("failed to record idempotency key",
				zap.String("store_id", storeID.String()),
				zap.Error(err))
		}
	}

	s.logger.Info("order created",
		zap.String("store_id", storeID.String()),
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("total", order.TotalAmount.StringFixed(2)))
	s.publishEvents(ctx, order)

	return successResult(order), nil
}

// Confirm transitions a pending order to confirmed, reserving inventory
// for every line whose product tracks it. Reservation is two-phase: if
// any line cannot be covered in full, nothing is reserved and the order
// stays pending.
func (s *Service) Confirm(ctx context.Context, storeID, orderID, actorID uuid.UUID) (*OperationResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "confirm",
		attribute.String("store.id", storeID.String()),
		attribute.String("order.id", orderID.String()))
	defer span.End()

	var order *ordering.Order
	var stockEvents []shared.DomainEvent

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.OrderRepo().FindByIDForStore(ctx, storeID, orderID)
		if err != nil {
			return err
		}
		if !order.IsPending() {
			return shared.NewDomainError("PRECONDITION_FAILED",
				fmt.Sprintf("Cannot confirm order in %s status", order.Status))
		}

		lines, err := s.reservationLines(ctx, repos, order)
		if err != nil {
			return err
		}
		if len(lines) > 0 {
			result, err := s.reservations.Reserve(lines)
			if err != nil {
				return err
			}
			if err := saveLines(ctx, repos.StockRepo(), lines); err != nil {
				return err
			}
			stockEvents = append(stockEvents, inventory.NewStockReservedEvent(storeID, order.ID, result))
		}

		if err := order.Confirm(actorID); err != nil {
			return err
		}
		return repos.OrderRepo().SaveWithLock(ctx, order)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return s.recover(err, "confirm order", storeID)
	}
	telemetry.SetOK(span)

	s.logger.Info("order confirmed",
		zap.String("store_id", storeID.String()),
		zap.String("order_number", order.OrderNumber))
	s.publishEvents(ctx, order, stockEvents...)

	return successResult(order), nil
}

// BeginProcessing transitions a confirmed order to processing
func (s *Service) BeginProcessing(ctx context.Context, storeID, orderID, actorID uuid.UUID) (*OperationResult, error) {
	return s.mutateOrder(ctx, storeID, orderID, "begin processing", func(order *ordering.Order) error {
		return order.BeginProcessing(actorID)
	})
}

// Cancel transitions a not-yet-shipped order to cancelled and releases
// its reservation if one was held. Cancelling an already-cancelled order
// fails the guard and releases nothing.
func (s *Service) Cancel(ctx context.Context, storeID, orderID, actorID uuid.UUID, req CancelOrderRequest) (*OperationResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "cancel",
		attribute.String("store.id", storeID.String()),
		attribute.String("order.id", orderID.String()))
	defer span.End()

	if err := s.validate.Struct(req); err != nil {
		return failureResult(validationMessages(err)...), nil
	}

	var order *ordering.Order
	var stockEvents []shared.DomainEvent

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.OrderRepo().FindByIDForStore(ctx, storeID, orderID)
		if err != nil {
			return err
		}

		wasReserved := order.Status == ordering.OrderStatusConfirmed ||
			order.Status == ordering.OrderStatusProcessing

		if err := order.Cancel(actorID, req.Reason); err != nil {
			return err
		}

		if wasReserved {
			lines, err := s.reservationLines(ctx, repos, order)
			if err != nil {
				return err
			}
			if len(lines) > 0 {
				result, err := s.reservations.Release(lines)
				if err != nil {
					return err
				}
				if err := saveLines(ctx, repos.StockRepo(), lines); err != nil {
					return err
				}
				stockEvents = append(stockEvents, inventory.NewStockReleasedEvent(storeID, order.ID, result))
			}
		}

		return repos.OrderRepo().SaveWithLock(ctx, order)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return s.recover(err, "cancel order", storeID)
	}
	telemetry.SetOK(span)

	s.logger.Info("order cancelled",
		zap.String("store_id", storeID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("reason", order.CancelReason))
	s.publishEvents(ctx, order, stockEvents...)

	return successResult(order), nil
}

// RecordPayment applies a payment to an order
func (s *Service) RecordPayment(ctx context.Context, storeID, orderID, actorID uuid.UUID, req RecordPaymentRequest) (*OperationResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return failureResult(validationMessages(err)...), nil
	}
	return s.mutateOrder(ctx, storeID, orderID, "record payment", func(order *ordering.Order) error {
		payment, err := settlementMoney(req.Amount, req.Currency, order.Currency)
		if err != nil {
			return err
		}
		return order.RecordPayment(actorID, payment)
	})
}

// Ship transitions a paid order to shipped and consumes its reservation:
// both on-hand and reserved quantities drop by the shipped amounts.
func (s *Service) Ship(ctx context.Context, storeID, orderID, actorID uuid.UUID, req ShipOrderRequest) (*OperationResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "ship",
		attribute.String("store.id", storeID.String()),
		attribute.String("order.id", orderID.String()))
	defer span.End()

	if err := s.validate.Struct(req); err != nil {
		return failureResult(validationMessages(err)...), nil
	}

	var order *ordering.Order
	var stockEvents []shared.DomainEvent

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.OrderRepo().FindByIDForStore(ctx, storeID, orderID)
		if err != nil {
			return err
		}

		if err := order.Ship(actorID, req.TrackingNumber, req.Carrier); err != nil {
			return err
		}

		lines, err := s.reservationLines(ctx, repos, order)
		if err != nil {
			return err
		}
		if len(lines) > 0 {
			result, err := s.reservations.Consume(lines)
			if err != nil {
				return err
			}
			if err := saveLines(ctx, repos.StockRepo(), lines); err != nil {
				return err
			}
			stockEvents = append(stockEvents, inventory.NewStockConsumedEvent(storeID, order.ID, result))
		}

		return repos.OrderRepo().SaveWithLock(ctx, order)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return s.recover(err, "ship order", storeID)
	}
	telemetry.SetOK(span)

	s.logger.Info("order shipped",
		zap.String("store_id", storeID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("tracking_number", req.TrackingNumber))
	s.publishEvents(ctx, order, stockEvents...)

	return successResult(order), nil
}

// Deliver transitions a shipped order to delivered
func (s *Service) Deliver(ctx context.Context, storeID, orderID, actorID uuid.UUID) (*OperationResult, error) {
	return s.mutateOrder(ctx, storeID, orderID, "deliver order", func(order *ordering.Order) error {
		return order.Deliver(actorID)
	})
}

// Complete transitions a delivered order to completed
func (s *Service) Complete(ctx context.Context, storeID, orderID, actorID uuid.UUID) (*OperationResult, error) {
	return s.mutateOrder(ctx, storeID, orderID, "complete order", func(order *ordering.Order) error {
		return order.Complete(actorID)
	})
}

// Refund records a refund against an order. Refunds never touch
// inventory; returned goods re-enter stock through a separate receiving
// flow.
func (s *Service) Refund(ctx context.Context, storeID, orderID, actorID uuid.UUID, req RefundOrderRequest) (*OperationResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return failureResult(validationMessages(err)...), nil
	}
	return s.mutateOrder(ctx, storeID, orderID, "refund order", func(order *ordering.Order) error {
		refund, err := settlementMoney(req.Amount, req.Currency, order.Currency)
		if err != nil {
			return err
		}
		return order.Refund(actorID, refund, req.Reason)
	})
}

// MarkFailed moves a stuck order to the failed terminal state
func (s *Service) MarkFailed(ctx context.Context, storeID, orderID, actorID uuid.UUID, reason string) (*OperationResult, error) {
	return s.mutateOrder(ctx, storeID, orderID, "fail order", func(order *ordering.Order) error {
		return order.MarkFailed(actorID, reason)
	})
}

// GetByID retrieves an order by ID
func (s *Service) GetByID(ctx context.Context, storeID, orderID uuid.UUID) (*OrderResponse, error) {
	var resp OrderResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.OrderRepo().FindByIDForStore(ctx, storeID, orderID)
		if err != nil {
			return err
		}
		resp = ToOrderResponse(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetByOrderNumber retrieves an order by its store-unique number
func (s *Service) GetByOrderNumber(ctx context.Context, storeID uuid.UUID, orderNumber string) (*OrderResponse, error) {
	var resp OrderResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.OrderRepo().FindByOrderNumber(ctx, storeID, orderNumber)
		if err != nil {
			return err
		}
		resp = ToOrderResponse(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// List retrieves a user's orders with pagination
func (s *Service) List(ctx context.Context, storeID uuid.UUID, filter ListOrdersFilter) (*shared.Paginated[OrderListItemResponse], error) {
	if err := s.validate.Struct(filter); err != nil {
		return nil, err
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	var page shared.Paginated[OrderListItemResponse]
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		orders, total, err := repos.OrderRepo().FindByUser(ctx, storeID, filter.UserID,
			filter.PageSize, (filter.Page-1)*filter.PageSize)
		if err != nil {
			return err
		}
		items := make([]OrderListItemResponse, 0, len(orders))
		for _, order := range orders {
			items = append(items, ToOrderListItemResponse(order))
		}
		page = shared.NewPaginated(items, total, filter.Page, filter.PageSize)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// mutateOrder runs a load-mutate-save workflow that touches only the
// order aggregate.
func (s *Service) mutateOrder(ctx context.Context, storeID, orderID uuid.UUID, operation string, mutate func(*ordering.Order) error) (*OperationResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", operation,
		attribute.String("store.id", storeID.String()),
		attribute.String("order.id", orderID.String()))
	defer span.End()

	var order *ordering.Order

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.OrderRepo().FindByIDForStore(ctx, storeID, orderID)
		if err != nil {
			return err
		}
		if err := mutate(order); err != nil {
			return err
		}
		return repos.OrderRepo().SaveWithLock(ctx, order)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return s.recover(err, operation, storeID)
	}
	telemetry.SetOK(span)

	s.logger.Info(operation,
		zap.String("store_id", storeID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("status", string(order.Status)))
	s.publishEvents(ctx, order)

	return successResult(order), nil
}

// resolveItems turns requested lines into order items and pricing line
// items, validating each against the catalog.
func (s *Service) resolveItems(ctx context.Context, products catalog.ProductRepository, storeID uuid.UUID, inputs []OrderItemInput) ([]ordering.OrderItem, []pricing.LineItem, []shared.FieldError) {
	ids := make([]uuid.UUID, 0, len(inputs))
	for _, in := range inputs {
		ids = append(ids, in.ProductID)
	}

	found, err := products.FindByIDsForStore(ctx, storeID, ids)
	if err != nil {
		return nil, nil, []shared.FieldError{{Field: "items", Message: "Product lookup failed"}}
	}

	items := make([]ordering.OrderItem, 0, len(inputs))
	lines := make([]pricing.LineItem, 0, len(inputs))
	var errs []shared.FieldError

	for i, in := range inputs {
		field := fmt.Sprintf("items[%d]", i)
		product, ok := found[in.ProductID]
		if !ok {
			errs = append(errs, shared.FieldError{Field: field, Message: "Product not found"})
			continue
		}
		if !product.Active {
			errs = append(errs, shared.FieldError{Field: field, Message: fmt.Sprintf("Product %s is not available", product.SKU)})
			continue
		}
		if in.Quantity.LessThanOrEqual(decimal.Zero) {
			errs = append(errs, shared.FieldError{Field: field, Message: "Quantity must be positive"})
			continue
		}

		item, err := ordering.NewOrderItem(uuid.Nil, product.ID, product.Name, product.SKU,
			in.Quantity, product.Price, product.Weight)
		if err != nil {
			errs = append(errs, shared.FieldError{Field: field, Message: err.Error()})
			continue
		}
		items = append(items, *item)
		lines = append(lines, pricing.LineItem{
			ProductID:  product.ID,
			Quantity:   in.Quantity,
			UnitPrice:  product.Price,
			UnitWeight: product.Weight,
		})
	}

	return items, lines, errs
}

// reservationLines builds reservation input for every order line whose
// product tracks inventory, with the product's stock rows loaded under
// row locks for the current transaction.
func (s *Service) reservationLines(ctx context.Context, repos TransactionalRepositories, order *ordering.Order) ([]inventory.ReservationLine, error) {
	ids := make([]uuid.UUID, 0, len(order.Items))
	for _, item := range order.Items {
		ids = append(ids, item.ProductID)
	}

	products, err := repos.ProductRepo().FindByIDsForStore(ctx, order.StoreID, ids)
	if err != nil {
		return nil, err
	}

	tracked := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if p, ok := products[id]; ok && p.TrackInventory {
			tracked = append(tracked, id)
		}
	}
	if len(tracked) == 0 {
		return nil, nil
	}

	levels, err := repos.StockRepo().FindByProductsForUpdate(ctx, order.StoreID, tracked)
	if err != nil {
		return nil, err
	}

	lines := make([]inventory.ReservationLine, 0, len(tracked))
	for _, item := range order.Items {
		if p, ok := products[item.ProductID]; !ok || !p.TrackInventory {
			continue
		}
		lines = append(lines, inventory.ReservationLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Levels:    levels[item.ProductID],
		})
	}
	return lines, nil
}

// saveLines persists every stock level touched by a reservation
// operation. A level appearing under multiple lines is saved once.
func saveLines(ctx context.Context, repo inventory.StockLevelRepository, lines []inventory.ReservationLine) error {
	seen := make(map[uuid.UUID]struct{})
	levels := make([]*inventory.StockLevel, 0, len(lines))
	for _, line := range lines {
		for _, level := range line.Levels {
			if _, ok := seen[level.ID]; ok {
				continue
			}
			seen[level.ID] = struct{}{}
			levels = append(levels, level)
		}
	}
	if len(levels) == 0 {
		return nil
	}
	return repo.SaveAll(ctx, levels)
}

// recover classifies a workflow error: business-rule failures become a
// failed OperationResult, infrastructure failures propagate.
func (s *Service) recover(err error, operation string, storeID uuid.UUID) (*OperationResult, error) {
	var verrs *shared.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs.Errors))
		for _, fe := range verrs.Errors {
			msgs = append(msgs, fe.Field+": "+fe.Message)
		}
		return failureResult(msgs...), nil
	}

	var derr *shared.DomainError
	if errors.As(err, &derr) {
		s.logger.Info("operation rejected",
			zap.String("operation", operation),
			zap.String("store_id", storeID.String()),
			zap.String("code", derr.Code),
			zap.String("message", derr.Message))
		return failureResult(derr.Message), nil
	}

	s.logger.Error("operation failed",
		zap.String("operation", operation),
		zap.String("store_id", storeID.String()),
		zap.Error(err))
	return nil, err
}

// publishEvents publishes the aggregate's pending events plus any stock
// events after the transaction has committed. Publish failures are
// logged, never surfaced: notification is fire-and-forget.
func (s *Service) publishEvents(ctx context.Context, order *ordering.Order, extra ...shared.DomainEvent) {
	if s.eventPublisher == nil {
		order.ClearDomainEvents()
		return
	}

	events := append(order.GetDomainEvents(), extra...)
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("event publish failed",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err))
	}
	order.ClearDomainEvents()
}

func createKey(storeID uuid.UUID, key string) string {
	return "order:create:" + storeID.String() + ":" + key
}

// settlementMoney builds the money value for a payment or refund
// request, defaulting to the order's currency when the provider did not
// report one.
func settlementMoney(amount decimal.Decimal, requested string, fallback valueobject.Currency) (valueobject.Money, error) {
	currency := fallback
	if requested != "" {
		currency = valueobject.Currency(requested)
	}
	money, err := valueobject.NewMoney(amount, currency)
	if err != nil {
		return valueobject.Money{}, shared.NewDomainError("INVALID_CURRENCY", err.Error())
	}
	return money, nil
}

// validationMessages flattens validator.ValidationErrors into
// field-level messages.
func validationMessages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %s validation", fe.Field(), fe.Tag()))
	}
	return msgs
}
