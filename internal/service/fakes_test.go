package service

import (
	"context"
	"sync"

	"github.com/cloud-wave-best-zizon/checkout-service/internal/audit"
	"github.com/cloud-wave-best-zizon/checkout-service/internal/domain"
	"github.com/cloud-wave-best-zizon/checkout-service/internal/events"
	"github.com/cloud-wave-best-zizon/checkout-service/internal/repository"
	"github.com/google/uuid"
)

// In-memory fakes that mirror the DynamoDB repositories' contracts: a
// conditional adjust that refuses to go negative, a replace guarded on
// SHIPPED, and a first-writer-wins idempotency store.

type stockIncrement struct {
	productID string
	quantity  int
}

type fakeStockStore struct {
	mu          sync.Mutex
	products    map[string]*domain.Product
	adjustCalls int
	findCalls   int
	increments  []stockIncrement
}

func newFakeStockStore() *fakeStockStore {
	return &fakeStockStore{products: make(map[string]*domain.Product)}
}

func (f *fakeStockStore) seed(id, name string, price float64, qty int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[id] = &domain.Product{ProductID: id, Name: name, SKU: "SKU-" + id, Price: price, StockQuantity: qty}
}

func (f *fakeStockStore) quantity(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.products[id]; ok {
		return p.StockQuantity
	}
	return -1
}

func (f *fakeStockStore) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findCalls++
	p, ok := f.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (f *fakeStockStore) ConditionalAdjust(ctx context.Context, id string, delta int) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.adjustCalls++
	p, ok := f.products[id]
	if !ok {
		// attribute_exists guard: the store only reports a non-match.
		return nil, repository.ErrConditionFailed
	}
	if delta < 0 && p.StockQuantity < -delta {
		return nil, repository.ErrConditionFailed
	}
	p.StockQuantity += delta
	clone := *p
	return &clone, nil
}

func (f *fakeStockStore) IncrementStock(ctx context.Context, id string, qty int) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.increments = append(f.increments, stockIncrement{productID: id, quantity: qty})
	p, ok := f.products[id]
	if !ok {
		p = &domain.Product{ProductID: id}
		f.products[id] = p
	}
	p.StockQuantity += qty
	clone := *p
	return &clone, nil
}

func (f *fakeStockStore) PutProduct(ctx context.Context, product *domain.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *product
	f.products[product.ProductID] = &clone
	return nil
}

type fakeOrderStore struct {
	mu           sync.Mutex
	orders       map[string]*domain.Order
	createCalls  int
	replaceCalls int
	createErr    error
	// staleFind, when set, is returned by FindByID instead of the stored
	// order, simulating a concurrent writer between read and replace.
	staleFind *domain.Order
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: make(map[string]*domain.Order)}
}

func (f *fakeOrderStore) put(order *domain.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *order
	f.orders[order.OrderID] = &clone
}

func (f *fakeOrderStore) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	if order.OrderID == "" {
		order.OrderID = uuid.New().String()
	}
	clone := *order
	f.orders[order.OrderID] = &clone
	return order, nil
}

func (f *fakeOrderStore) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.staleFind != nil && f.staleFind.OrderID == id {
		clone := *f.staleFind
		return &clone, nil
	}
	order, ok := f.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *order
	return &clone, nil
}

func (f *fakeOrderStore) FindAll(ctx context.Context, customerID string) ([]domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Order
	for _, order := range f.orders {
		if customerID == "" || order.CustomerID == customerID {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (f *fakeOrderStore) ConditionalReplace(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replaceCalls++
	stored, ok := f.orders[order.OrderID]
	if !ok || stored.Status == domain.OrderStatusShipped {
		return nil, repository.ErrConditionFailed
	}
	clone := *order
	f.orders[order.OrderID] = &clone
	return order, nil
}

type fakeIdempotencyStore struct {
	mu          sync.Mutex
	records     map[string]string
	lookupCalls int
	storeCalls  int
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{records: make(map[string]string)}
}

func (f *fakeIdempotencyStore) Lookup(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookupCalls++
	id, ok := f.records[key]
	if !ok {
		return "", repository.ErrNotFound
	}
	return id, nil
}

func (f *fakeIdempotencyStore) Store(ctx context.Context, key, orderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.storeCalls++
	if _, exists := f.records[key]; exists {
		return nil // first writer wins
	}
	f.records[key] = orderID
	return nil
}

type recordingAudit struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (r *recordingAudit) Record(entry audit.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func (r *recordingAudit) byEvent(event audit.Event) []audit.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []audit.Entry
	for _, e := range r.entries {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

type fakeOrderPublisher struct {
	mu         sync.Mutex
	events     []events.OrderCreatedEvent
	publishErr error
}

func (f *fakeOrderPublisher) PublishOrderCreated(event events.OrderCreatedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.events = append(f.events, event)
	return nil
}

type fakeCompensationPublisher struct {
	mu     sync.Mutex
	events []events.StockCompensatedEvent
}

func (f *fakeCompensationPublisher) PublishStockCompensated(ctx context.Context, event events.StockCompensatedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}
