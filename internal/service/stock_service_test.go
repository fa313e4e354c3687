package service

import (
	"context"
	"testing"

	"github.com/cloud-wave-best-zizon/checkout-service/internal/audit"
	"github.com/cloud-wave-best-zizon/checkout-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newStockFixture() (*fakeStockStore, *recordingAudit, *StockService) {
	stock := newFakeStockStore()
	rec := &recordingAudit{}
	return stock, rec, NewStockService(stock, rec, zap.NewNop())
}

func TestAdjustStockZeroDeltaRejectedBeforeStore(t *testing.T) {
	stock, rec, svc := newStockFixture()
	stock.seed("p1", "Widget", 10.0, 5)

	_, err := svc.AdjustStock(context.Background(), "p1", 0)
	require.Error(t, err)
	assert.Equal(t, domain.KindInvalidArgument, domain.KindOf(err))

	assert.Equal(t, 0, stock.adjustCalls)
	assert.Equal(t, 0, stock.findCalls)
	assert.Empty(t, rec.entries)
}

func TestAdjustStockInsufficientIncludesCurrentQuantity(t *testing.T) {
	stock, rec, svc := newStockFixture()
	stock.seed("p1", "Widget", 10.0, 5)

	_, err := svc.AdjustStock(context.Background(), "p1", -10)
	require.Error(t, err)
	assert.Equal(t, domain.KindInsufficientStock, domain.KindOf(err))
	assert.Contains(t, err.Error(), "5")

	// The conditional update did not match, so no quantity change happened.
	assert.Equal(t, 5, stock.quantity("p1"))
	assert.Empty(t, rec.entries)
}

func TestAdjustStockNotFound(t *testing.T) {
	_, _, svc := newStockFixture()

	_, err := svc.AdjustStock(context.Background(), "missing", 4)
	require.Error(t, err)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestAdjustStockDecrement(t *testing.T) {
	stock, rec, svc := newStockFixture()
	stock.seed("p1", "Widget", 10.0, 10)

	result, err := svc.AdjustStock(context.Background(), "p1", -3)
	require.NoError(t, err)
	assert.Equal(t, 7, result.NewQuantity)
	assert.Equal(t, "Widget", result.Name)

	adjusted := rec.byEvent(audit.EventStockAdjusted)
	require.Len(t, adjusted, 1)
	assert.Equal(t, audit.ActorWarehouse, adjusted[0].Actor)
	assert.Equal(t, -3, adjusted[0].Delta)
	assert.Equal(t, 10, adjusted[0].StockBefore)
	assert.Equal(t, 7, adjusted[0].StockAfter)
}

func TestAdjustStockIncrement(t *testing.T) {
	stock, _, svc := newStockFixture()
	stock.seed("p1", "Widget", 10.0, 2)

	result, err := svc.AdjustStock(context.Background(), "p1", 8)
	require.NoError(t, err)
	assert.Equal(t, 10, result.NewQuantity)
	assert.Equal(t, 10, stock.quantity("p1"))
}

func TestAdjustStockNeverGoesNegative(t *testing.T) {
	stock, _, svc := newStockFixture()
	stock.seed("p1", "Widget", 10.0, 3)

	deltas := []int{-1, -2, -1, 2, -4, -1}
	for _, delta := range deltas {
		_, _ = svc.AdjustStock(context.Background(), "p1", delta)
		assert.GreaterOrEqual(t, stock.quantity("p1"), 0)
	}
}
