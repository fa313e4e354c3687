package service

import (
	"context"
	"errors"

	"github.com/cloud-wave-best-zizon/checkout-service/internal/audit"
	"github.com/cloud-wave-best-zizon/checkout-service/internal/domain"
	"github.com/cloud-wave-best-zizon/checkout-service/internal/metrics"
	"github.com/cloud-wave-best-zizon/checkout-service/internal/repository"
	"go.uber.org/zap"
)

// OrderService enforces the order status state machine and performs
// race-safe status transitions.
type OrderService struct {
	orders OrderStore
	audit  AuditRecorder
	logger *zap.Logger
}

func NewOrderService(orders OrderStore, auditRec AuditRecorder, logger *zap.Logger) *OrderService {
	return &OrderService{
		orders: orders,
		audit:  auditRec,
		logger: logger,
	}
}

type UpdateOrderInput struct {
	CustomerID string
	Items      []domain.OrderItem
	NewStatus  domain.OrderStatus
}

// UpdateOrder moves an order through the lifecycle table. The table check
// here gives a descriptive error without a store round trip; the conditional
// replace underneath is what actually prevents two concurrent updates from
// both succeeding.
func (s *OrderService) UpdateOrder(ctx context.Context, orderID string, input UpdateOrderInput) (*domain.Order, error) {
	if !input.NewStatus.Valid() {
		metrics.OrderUpdatesTotal.WithLabelValues("invalid").Inc()
		return nil, domain.InvalidArgument("unknown order status %q", string(input.NewStatus))
	}

	existing, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.OrderUpdatesTotal.WithLabelValues("not_found").Inc()
			return nil, domain.NotFound("order %s not found", orderID)
		}
		metrics.OrderUpdatesTotal.WithLabelValues("error").Inc()
		return nil, domain.Internal(err, "failed to load order %s", orderID)
	}

	if !existing.Status.CanTransitionTo(input.NewStatus) {
		metrics.OrderUpdatesTotal.WithLabelValues("conflict").Inc()
		return nil, domain.Conflict("cannot transition order from %s to %s",
			existing.Status, input.NewStatus)
	}

	replacement := *existing
	replacement.Status = input.NewStatus
	if input.CustomerID != "" {
		replacement.CustomerID = input.CustomerID
	}
	if len(input.Items) > 0 {
		replacement.Items = input.Items
	}
	// CreatedAt and TotalAmount are carried over; UpdatedAt is set by the store.

	updated, err := s.orders.ConditionalReplace(ctx, &replacement)
	if err != nil {
		if errors.Is(err, repository.ErrConditionFailed) {
			// A concurrent request shipped the order between our read and
			// this write.
			metrics.OrderUpdatesTotal.WithLabelValues("conflict").Inc()
			return nil, domain.Conflict("order %s was shipped concurrently and can no longer change", orderID)
		}
		metrics.OrderUpdatesTotal.WithLabelValues("error").Inc()
		return nil, domain.Internal(err, "failed to update order %s", orderID)
	}

	s.audit.Record(audit.OrderStatusChanged(orderID, string(existing.Status), string(updated.Status)))

	s.logger.Info("Order status changed",
		zap.String("order_id", orderID),
		zap.String("old_status", string(existing.Status)),
		zap.String("new_status", string(updated.Status)))
	metrics.OrderUpdatesTotal.WithLabelValues("success").Inc()

	return updated, nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NotFound("order %s not found", orderID)
		}
		return nil, domain.Internal(err, "failed to load order %s", orderID)
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, customerID string) ([]domain.Order, error) {
	orders, err := s.orders.FindAll(ctx, customerID)
	if err != nil {
		return nil, domain.Internal(err, "failed to list orders")
	}
	return orders, nil
}
