package audit

import (
	"time"

	"github.com/google/uuid"
)

type Event string

const (
	EventStockDecremented   Event = "StockDecremented"
	EventStockRolledBack    Event = "StockRolledBack"
	EventStockAdjusted      Event = "StockAdjusted"
	EventOrderStatusChanged Event = "OrderStatusChanged"
)

type Actor string

const (
	ActorCheckout    Actor = "Checkout"
	ActorWarehouse   Actor = "Warehouse"
	ActorFulfillment Actor = "Fulfillment"
)

const (
	EntityProduct = "product"
	EntityOrder   = "order"
)

// Entry is an append-only audit record. Numeric fields are populated per
// event kind and left zero otherwise; the core never updates or deletes
// entries once written.
type Entry struct {
	EntryID     string    `json:"entry_id" dynamodbav:"entry_id"`
	Event       Event     `json:"event" dynamodbav:"event"`
	Actor       Actor     `json:"actor" dynamodbav:"actor"`
	EntityType  string    `json:"entity_type" dynamodbav:"entity_type"`
	EntityID    string    `json:"entity_id" dynamodbav:"entity_id"`
	Delta       int       `json:"delta,omitempty" dynamodbav:"delta"`
	StockBefore int       `json:"stock_before,omitempty" dynamodbav:"stock_before"`
	StockAfter  int       `json:"stock_after,omitempty" dynamodbav:"stock_after"`
	OrderID     string    `json:"order_id,omitempty" dynamodbav:"related_order_id,omitempty"`
	OldStatus   string    `json:"old_status,omitempty" dynamodbav:"old_status,omitempty"`
	NewStatus   string    `json:"new_status,omitempty" dynamodbav:"new_status,omitempty"`
	Timestamp   time.Time `json:"timestamp" dynamodbav:"timestamp"`
}

func newEntry(event Event, actor Actor, entityType, entityID string) Entry {
	return Entry{
		EntryID:    uuid.New().String(),
		Event:      event,
		Actor:      actor,
		EntityType: entityType,
		EntityID:   entityID,
		Timestamp:  time.Now().UTC(),
	}
}

func StockAdjusted(productID string, delta, before, after int) Entry {
	e := newEntry(EventStockAdjusted, ActorWarehouse, EntityProduct, productID)
	e.Delta = delta
	e.StockBefore = before
	e.StockAfter = after
	return e
}

func StockDecremented(productID, orderID string, delta, before, after int) Entry {
	e := newEntry(EventStockDecremented, ActorCheckout, EntityProduct, productID)
	e.Delta = delta
	e.StockBefore = before
	e.StockAfter = after
	e.OrderID = orderID
	return e
}

func StockRolledBack(productID string, delta, before, after int) Entry {
	e := newEntry(EventStockRolledBack, ActorCheckout, EntityProduct, productID)
	e.Delta = delta
	e.StockBefore = before
	e.StockAfter = after
	return e
}

func OrderStatusChanged(orderID, oldStatus, newStatus string) Entry {
	e := newEntry(EventOrderStatusChanged, ActorFulfillment, EntityOrder, orderID)
	e.OldStatus = oldStatus
	e.NewStatus = newStatus
	return e
}
