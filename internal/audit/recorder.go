package audit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Writer persists a single audit entry.
type Writer interface {
	Append(ctx context.Context, entry Entry) error
}

const (
	queueSize    = 1024
	writeTimeout = 5 * time.Second
)

// Recorder accepts audit entries from request handlers and writes them from a
// background goroutine. Record never blocks and never returns an error: audit
// is best-effort and must not fail or slow down the mutation that produced
// the entry. Writes run on the recorder's own context, not the request's, so
// an already-cancelled request cannot silently discard an entry.
type Recorder struct {
	writer Writer
	logger *zap.Logger

	queue     chan Entry
	done      chan struct{}
	closeOnce sync.Once
}

func NewRecorder(writer Writer, logger *zap.Logger) *Recorder {
	r := &Recorder{
		writer: writer,
		logger: logger,
		queue:  make(chan Entry, queueSize),
		done:   make(chan struct{}),
	}
	go r.loop()
	return r
}

// Record enqueues an entry for background persistence. If the queue is full
// the entry is dropped and logged; callers are never blocked.
func (r *Recorder) Record(entry Entry) {
	select {
	case r.queue <- entry:
	default:
		r.logger.Warn("audit entry dropped, queue full",
			zap.String("event", string(entry.Event)),
			zap.String("entity_id", entry.EntityID))
	}
}

func (r *Recorder) loop() {
	defer close(r.done)
	for entry := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if err := r.writer.Append(ctx, entry); err != nil {
			r.logger.Error("Failed to write audit entry",
				zap.String("event", string(entry.Event)),
				zap.String("entity_type", entry.EntityType),
				zap.String("entity_id", entry.EntityID),
				zap.Error(err))
		}
		cancel()
	}
}

// Close stops accepting entries and waits for the queue to drain, or for ctx
// to expire, whichever comes first.
func (r *Recorder) Close(ctx context.Context) error {
	r.closeOnce.Do(func() {
		close(r.queue)
	})
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
