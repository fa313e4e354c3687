package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type captureWriter struct {
	mu      sync.Mutex
	entries []Entry
	failOn  Event
}

func (w *captureWriter) Append(ctx context.Context, entry Entry) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if entry.Event == w.failOn {
		return errors.New("write failed")
	}
	w.entries = append(w.entries, entry)
	return nil
}

func (w *captureWriter) written() []Entry {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Entry(nil), w.entries...)
}

func TestRecorderDrainsOnClose(t *testing.T) {
	writer := &captureWriter{}
	rec := NewRecorder(writer, zap.NewNop())

	rec.Record(StockAdjusted("p1", -3, 10, 7))
	rec.Record(StockDecremented("p1", "o1", -2, 7, 5))
	rec.Record(OrderStatusChanged("o1", "PENDING", "PROCESSING"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, rec.Close(ctx))

	entries := writer.written()
	require.Len(t, entries, 3)
	assert.Equal(t, EventStockAdjusted, entries[0].Event)
	assert.Equal(t, EventStockDecremented, entries[1].Event)
	assert.Equal(t, EventOrderStatusChanged, entries[2].Event)
}

func TestRecorderSurvivesWriterFailure(t *testing.T) {
	writer := &captureWriter{failOn: EventStockAdjusted}
	rec := NewRecorder(writer, zap.NewNop())

	rec.Record(StockAdjusted("p1", 1, 0, 1))
	rec.Record(OrderStatusChanged("o1", "PENDING", "CANCELLED"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, rec.Close(ctx))

	// The failed entry is logged and dropped; later entries still land.
	entries := writer.written()
	require.Len(t, entries, 1)
	assert.Equal(t, EventOrderStatusChanged, entries[0].Event)
}

func TestEntryConstructorsPopulateIdentity(t *testing.T) {
	entry := StockDecremented("p1", "o1", -4, 9, 5)
	assert.NotEmpty(t, entry.EntryID)
	assert.False(t, entry.Timestamp.IsZero())
	assert.Equal(t, ActorCheckout, entry.Actor)
	assert.Equal(t, EntityProduct, entry.EntityType)
	assert.Equal(t, "p1", entry.EntityID)
	assert.Equal(t, "o1", entry.OrderID)
}
