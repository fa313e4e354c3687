package events

import (
	"time"
)

// OrderCreatedEvent is published after an order has been committed. Line
// items carry the purchase-time snapshot, not current product state.
type OrderCreatedEvent struct {
	EventID     string      `json:"event_id"`
	OrderID     string      `json:"order_id"`
	CustomerID  string      `json:"customer_id"`
	TotalAmount float64     `json:"total_amount"`
	Items       []EventItem `json:"items"`
	CreatedAt   time.Time   `json:"created_at"`
	Timestamp   time.Time   `json:"timestamp"`
}

type EventItem struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// StockCompensatedEvent is published after a failed checkout has rolled its
// stock decrements back. It exists for downstream reconciliation; delivery is
// best-effort and never affects the checkout result.
type StockCompensatedEvent struct {
	EventID         string            `json:"event_id"`
	CustomerID      string            `json:"customer_id"`
	FailedProductID string            `json:"failed_product_id"`
	Reason          string            `json:"reason"`
	RolledBack      []CompensatedItem `json:"rolled_back"`
	Timestamp       time.Time         `json:"timestamp"`
}

type CompensatedItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}
