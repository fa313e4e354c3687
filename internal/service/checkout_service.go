package service

import (
	"context"
	"errors"
	"time"

	"github.com/cloud-wave-best-zizon/checkout-service/internal/audit"
	"github.com/cloud-wave-best-zizon/checkout-service/internal/domain"
	"github.com/cloud-wave-best-zizon/checkout-service/internal/events"
	"github.com/cloud-wave-best-zizon/checkout-service/internal/metrics"
	"github.com/cloud-wave-best-zizon/checkout-service/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckoutService orchestrates multi-item stock reservation with
// rollback-on-failure, order creation, idempotent replay, and best-effort
// event publication. The store lacks cross-document transactions, so the
// whole flow is composed from single-document conditional operations plus a
// task-local compensation ledger.
type CheckoutService struct {
	stock        StockStore
	orders       OrderStore
	idempotency  IdempotencyStore
	audit        AuditRecorder
	producer     OrderEventPublisher
	compensation CompensationPublisher
	logger       *zap.Logger
}

func NewCheckoutService(
	stock StockStore,
	orders OrderStore,
	idempotency IdempotencyStore,
	auditRec AuditRecorder,
	producer OrderEventPublisher,
	compensation CompensationPublisher,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		stock:        stock,
		orders:       orders,
		idempotency:  idempotency,
		audit:        auditRec,
		producer:     producer,
		compensation: compensation,
		logger:       logger,
	}
}

type CheckoutInput struct {
	CustomerID     string
	Items          []domain.CheckoutItem
	IdempotencyKey string
}

// ledgerEntry records one successful stock decrement so it can be reversed
// if a later item fails. The ledger is local to the request; nothing shares it.
type ledgerEntry struct {
	productID   string
	productName string
	price       float64
	quantity    int
	stockAfter  int
}

func (s *CheckoutService) Checkout(ctx context.Context, input CheckoutInput) (*domain.Order, error) {
	start := time.Now()
	defer func() {
		metrics.CheckoutDuration.Observe(time.Since(start).Seconds())
	}()

	// Idempotent replay: same key, previously committed order.
	if input.IdempotencyKey != "" {
		orderID, err := s.idempotency.Lookup(ctx, input.IdempotencyKey)
		switch {
		case err == nil:
			existing, findErr := s.orders.FindByID(ctx, orderID)
			if findErr == nil {
				s.logger.Info("Checkout replayed idempotently",
					zap.String("idempotency_key", input.IdempotencyKey),
					zap.String("order_id", existing.OrderID))
				metrics.CheckoutsTotal.WithLabelValues("replay").Inc()
				return existing, nil
			}
			if !errors.Is(findErr, repository.ErrNotFound) {
				metrics.CheckoutsTotal.WithLabelValues("error").Inc()
				return nil, domain.Internal(findErr, "failed to load order for idempotency key")
			}
			// The mapped order is gone; fall through and treat the request as new.
		case errors.Is(err, repository.ErrNotFound):
			// First time this key is seen.
		default:
			metrics.CheckoutsTotal.WithLabelValues("error").Inc()
			return nil, domain.Internal(err, "failed to look up idempotency key")
		}
	}

	if input.CustomerID == "" {
		metrics.CheckoutsTotal.WithLabelValues("invalid").Inc()
		return nil, domain.InvalidArgument("customer id is required")
	}
	if len(input.Items) == 0 {
		metrics.CheckoutsTotal.WithLabelValues("invalid").Inc()
		return nil, domain.InvalidArgument("at least one item is required")
	}
	for _, item := range input.Items {
		if item.Quantity < 1 {
			metrics.CheckoutsTotal.WithLabelValues("invalid").Inc()
			return nil, domain.InvalidArgument("quantity for product %s must be at least 1", item.ProductID)
		}
	}

	// Reserve stock item by item, in request order, keeping a ledger of what
	// succeeded so a later failure can be compensated exactly.
	ledger := make([]ledgerEntry, 0, len(input.Items))
	for _, item := range input.Items {
		product, err := s.stock.ConditionalAdjust(ctx, item.ProductID, -item.Quantity)
		if err != nil {
			s.rollback(ctx, ledger)
			if errors.Is(err, repository.ErrConditionFailed) {
				s.publishCompensation(ctx, input, item.ProductID, ledger, "insufficient_stock")
				metrics.CheckoutsTotal.WithLabelValues("insufficient_stock").Inc()
				return nil, domain.InsufficientStock("insufficient stock for product %s", item.ProductID)
			}
			s.publishCompensation(ctx, input, item.ProductID, ledger, "store_error")
			metrics.CheckoutsTotal.WithLabelValues("error").Inc()
			return nil, domain.Internal(err, "failed to reserve stock for product %s", item.ProductID)
		}
		ledger = append(ledger, ledgerEntry{
			productID:   product.ProductID,
			productName: product.Name,
			price:       product.Price,
			quantity:    item.Quantity,
			stockAfter:  product.StockQuantity,
		})
	}

	order := buildOrder(input.CustomerID, ledger)
	created, err := s.orders.Create(ctx, order)
	if err != nil {
		s.rollback(ctx, ledger)
		s.publishCompensation(ctx, input, "", ledger, "order_create_failed")
		metrics.CheckoutsTotal.WithLabelValues("error").Inc()
		return nil, domain.Internal(err, "failed to create order")
	}

	if input.IdempotencyKey != "" {
		// Store swallows a duplicate-key conflict: whichever concurrent
		// writer inserted first wins and future replays see that order.
		if err := s.idempotency.Store(ctx, input.IdempotencyKey, created.OrderID); err != nil {
			s.logger.Warn("Failed to store idempotency record",
				zap.String("idempotency_key", input.IdempotencyKey),
				zap.String("order_id", created.OrderID),
				zap.Error(err))
		}
	}

	for _, entry := range ledger {
		s.audit.Record(audit.StockDecremented(
			entry.productID, created.OrderID,
			-entry.quantity, entry.stockAfter+entry.quantity, entry.stockAfter))
	}

	// The order is committed; a publish failure must not undo it. Stock
	// without an order is recoverable, the reverse is not.
	if err := s.producer.PublishOrderCreated(orderCreatedEvent(created)); err != nil {
		s.logger.Error("Failed to publish order created event",
			zap.String("order_id", created.OrderID),
			zap.Error(err))
		metrics.EventPublishFailuresTotal.WithLabelValues("order-events").Inc()
	}

	s.logger.Info("Checkout completed",
		zap.String("order_id", created.OrderID),
		zap.String("customer_id", created.CustomerID),
		zap.Float64("total_amount", created.TotalAmount))
	metrics.CheckoutsTotal.WithLabelValues("success").Inc()

	return created, nil
}

// rollback re-increments every reserved quantity in ledger order. It runs on
// a non-cancellable context: a caller that already gave up must not be able
// to strand reserved stock.
func (s *CheckoutService) rollback(ctx context.Context, ledger []ledgerEntry) {
	if len(ledger) == 0 {
		return
	}
	rctx := context.WithoutCancel(ctx)
	for _, entry := range ledger {
		product, err := s.stock.IncrementStock(rctx, entry.productID, entry.quantity)
		if err != nil {
			s.logger.Error("Failed to roll back stock decrement",
				zap.String("product_id", entry.productID),
				zap.Int("quantity", entry.quantity),
				zap.Error(err))
			continue
		}
		s.audit.Record(audit.StockRolledBack(
			entry.productID, entry.quantity,
			product.StockQuantity-entry.quantity, product.StockQuantity))
	}
	metrics.StockRollbacksTotal.Inc()
}

func (s *CheckoutService) publishCompensation(ctx context.Context, input CheckoutInput, failedProductID string, ledger []ledgerEntry, reason string) {
	if s.compensation == nil {
		return
	}
	event := events.StockCompensatedEvent{
		EventID:         uuid.New().String(),
		CustomerID:      input.CustomerID,
		FailedProductID: failedProductID,
		Reason:          reason,
		Timestamp:       time.Now().UTC(),
	}
	for _, entry := range ledger {
		event.RolledBack = append(event.RolledBack, events.CompensatedItem{
			ProductID: entry.productID,
			Quantity:  entry.quantity,
		})
	}
	if err := s.compensation.PublishStockCompensated(context.WithoutCancel(ctx), event); err != nil {
		metrics.EventPublishFailuresTotal.WithLabelValues("compensation-events").Inc()
	}
}

func buildOrder(customerID string, ledger []ledgerEntry) *domain.Order {
	order := &domain.Order{
		CustomerID: customerID,
		Items:      make([]domain.OrderItem, 0, len(ledger)),
		Status:     domain.OrderStatusPending,
	}
	var totalAmount float64
	for _, entry := range ledger {
		subtotal := float64(entry.quantity) * entry.price
		order.Items = append(order.Items, domain.OrderItem{
			ProductID:   entry.productID,
			ProductName: entry.productName,
			Quantity:    entry.quantity,
			Price:       entry.price,
			Subtotal:    subtotal,
		})
		totalAmount += subtotal
	}
	order.TotalAmount = totalAmount
	return order
}

func orderCreatedEvent(order *domain.Order) events.OrderCreatedEvent {
	event := events.OrderCreatedEvent{
		EventID:     uuid.New().String(),
		OrderID:     order.OrderID,
		CustomerID:  order.CustomerID,
		TotalAmount: order.TotalAmount,
		CreatedAt:   order.CreatedAt,
		Timestamp:   time.Now().UTC(),
	}
	for _, item := range order.Items {
		event.Items = append(event.Items, events.EventItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return event
}
