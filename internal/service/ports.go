package service

import (
	"context"

	"github.com/cloud-wave-best-zizon/checkout-service/internal/audit"
	"github.com/cloud-wave-best-zizon/checkout-service/internal/domain"
	"github.com/cloud-wave-best-zizon/checkout-service/internal/events"
)

// Store interfaces consumed by the engines. The DynamoDB repositories
// implement them in production; tests use in-memory fakes.

type StockStore interface {
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	// ConditionalAdjust atomically applies delta, matching only if the
	// resulting quantity stays >= 0. A non-match is repository.ErrConditionFailed.
	ConditionalAdjust(ctx context.Context, id string, delta int) (*domain.Product, error)
	// IncrementStock adds qty back unconditionally (checkout compensation).
	IncrementStock(ctx context.Context, id string, qty int) (*domain.Product, error)
	PutProduct(ctx context.Context, product *domain.Product) error
}

type OrderStore interface {
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	FindAll(ctx context.Context, customerID string) ([]domain.Order, error)
	// ConditionalReplace replaces the order only while its stored status is
	// not SHIPPED. A non-match is repository.ErrConditionFailed.
	ConditionalReplace(ctx context.Context, order *domain.Order) (*domain.Order, error)
}

type IdempotencyStore interface {
	Lookup(ctx context.Context, key string) (string, error)
	Store(ctx context.Context, key, orderID string) error
}

// AuditRecorder accepts entries without ever failing the caller.
type AuditRecorder interface {
	Record(entry audit.Entry)
}

type OrderEventPublisher interface {
	PublishOrderCreated(event events.OrderCreatedEvent) error
}

type CompensationPublisher interface {
	PublishStockCompensated(ctx context.Context, event events.StockCompensatedEvent) error
}
