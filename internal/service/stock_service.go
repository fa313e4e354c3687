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

// StockService performs single-item warehouse stock changes.
type StockService struct {
	stock  StockStore
	audit  AuditRecorder
	logger *zap.Logger
}

func NewStockService(stock StockStore, auditRec AuditRecorder, logger *zap.Logger) *StockService {
	return &StockService{
		stock:  stock,
		audit:  auditRec,
		logger: logger,
	}
}

// AdjustStock applies a signed delta to a product's stock. The update is a
// single conditional store operation; for a negative delta it only matches
// when current stock covers it, so quantity can never go below zero.
func (s *StockService) AdjustStock(ctx context.Context, productID string, delta int) (*domain.StockAdjustment, error) {
	if delta == 0 {
		metrics.StockAdjustmentsTotal.WithLabelValues("invalid").Inc()
		return nil, domain.InvalidArgument("delta must be non-zero")
	}

	product, err := s.stock.ConditionalAdjust(ctx, productID, delta)
	if err != nil {
		if errors.Is(err, repository.ErrConditionFailed) {
			// The conditional update cannot say why it missed; a secondary
			// read distinguishes a missing product from a guard failure.
			existing, lookupErr := s.stock.FindByID(ctx, productID)
			if errors.Is(lookupErr, repository.ErrNotFound) {
				metrics.StockAdjustmentsTotal.WithLabelValues("not_found").Inc()
				return nil, domain.NotFound("product %s not found", productID)
			}
			if lookupErr != nil {
				metrics.StockAdjustmentsTotal.WithLabelValues("error").Inc()
				return nil, domain.Internal(lookupErr, "failed to look up product %s", productID)
			}
			metrics.StockAdjustmentsTotal.WithLabelValues("insufficient_stock").Inc()
			return nil, domain.InsufficientStock(
				"insufficient stock for product %s: current quantity %d, requested change %d",
				productID, existing.StockQuantity, delta)
		}
		metrics.StockAdjustmentsTotal.WithLabelValues("error").Inc()
		return nil, domain.Internal(err, "failed to adjust stock for product %s", productID)
	}

	s.audit.Record(audit.StockAdjusted(productID, delta, product.StockQuantity-delta, product.StockQuantity))

	s.logger.Info("Stock adjusted",
		zap.String("product_id", productID),
		zap.Int("delta", delta),
		zap.Int("new_quantity", product.StockQuantity))
	metrics.StockAdjustmentsTotal.WithLabelValues("success").Inc()

	return &domain.StockAdjustment{
		ProductID:   product.ProductID,
		Name:        product.Name,
		NewQuantity: product.StockQuantity,
	}, nil
}

// CreateProduct registers or replaces a product record (admin surface).
func (s *StockService) CreateProduct(ctx context.Context, product *domain.Product) error {
	if product.ProductID == "" {
		return domain.InvalidArgument("product id is required")
	}
	if product.StockQuantity < 0 {
		return domain.InvalidArgument("stock quantity must not be negative")
	}
	if err := s.stock.PutProduct(ctx, product); err != nil {
		return domain.Internal(err, "failed to create product %s", product.ProductID)
	}
	return nil
}
