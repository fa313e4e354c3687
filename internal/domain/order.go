package domain

import (
	"time"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// statusTransitions is the order lifecycle table. SHIPPED and CANCELLED are
// terminal: they have no outbound transitions.
var statusTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {},
	OrderStatusCancelled:  {},
}

func (s OrderStatus) Valid() bool {
	_, ok := statusTransitions[s]
	return ok
}

func (s OrderStatus) IsTerminal() bool {
	next, ok := statusTransitions[s]
	return ok && len(next) == 0
}

// CanTransitionTo reports whether the lifecycle table allows moving from s to
// target. This is the descriptive fast-path check; the storage-level
// conditional replace is what actually closes the race window.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

type Order struct {
	OrderID     string      `json:"order_id" dynamodbav:"order_id"`
	CustomerID  string      `json:"customer_id" dynamodbav:"customer_id"`
	Items       []OrderItem `json:"items" dynamodbav:"items"`
	TotalAmount float64     `json:"total_amount" dynamodbav:"total_amount"`
	Status      OrderStatus `json:"status" dynamodbav:"order_status"`
	CreatedAt   time.Time   `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" dynamodbav:"updated_at"`
}

// OrderItem is a snapshot of the product at purchase time. Name and price are
// never re-derived from current product state.
type OrderItem struct {
	ProductID   string  `json:"product_id" dynamodbav:"product_id"`
	ProductName string  `json:"product_name" dynamodbav:"product_name"`
	Quantity    int     `json:"quantity" dynamodbav:"quantity"`
	Price       float64 `json:"price" dynamodbav:"price"`
	Subtotal    float64 `json:"subtotal" dynamodbav:"subtotal"`
}

type CheckoutItem struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

type CheckoutRequest struct {
	CustomerID     string         `json:"customer_id" binding:"required"`
	Items          []CheckoutItem `json:"items" binding:"required,min=1"`
	IdempotencyKey string         `json:"idempotency_key"`
}

type UpdateOrderRequest struct {
	CustomerID string      `json:"customer_id"`
	Items      []OrderItem `json:"items"`
	Status     OrderStatus `json:"status" binding:"required"`
}

type CheckoutResponse struct {
	OrderID string      `json:"order_id"`
	Status  OrderStatus `json:"status"`
	Total   float64     `json:"total_amount"`
}
