package delivery

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultBatchSize is the bulk-mode batch limit.
	DefaultBatchSize = 1000

	// DefaultFlushPause is the fixed pause after a full batch (rate limiting).
	DefaultFlushPause = 100 * time.Millisecond
)

// Batcher accumulates encoded lines and flushes them as one newline-joined
// payload. The batch is cleared after every flush attempt regardless of
// outcome: individual lines are never retried, only the batch send is.
type Batcher struct {
	sink  Sink
	retry RetryPolicy
	limit int
	pause time.Duration
	log   *zap.Logger

	lines     []string
	delivered int
	dropped   int

	// Optional metric hooks, called with the batch length.
	OnFlush func(n int)
	OnDrop  func(n int)
}

// NewBatcher creates a batcher flushing through sink whenever limit lines
// have accumulated. limit <= 0 falls back to DefaultBatchSize.
func NewBatcher(sink Sink, retry RetryPolicy, limit int, pause time.Duration, log *zap.Logger) *Batcher {
	if limit <= 0 {
		limit = DefaultBatchSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Batcher{
		sink:  sink,
		retry: retry,
		limit: limit,
		pause: pause,
		log:   log,
		lines: make([]string, 0, limit),
	}
}

// Add queues one line, flushing when the batch reaches its limit. After a
// full-batch flush the batcher pauses briefly before accepting more lines.
func (b *Batcher) Add(ctx context.Context, line string) {
	b.lines = append(b.lines, line)
	if len(b.lines) < b.limit {
		return
	}
	b.Flush(ctx)
	if b.pause > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(b.pause):
		}
	}
}

// Flush sends the pending batch and clears it. A batch that exhausts its
// retries is dropped and logged; the run continues with the next batch.
func (b *Batcher) Flush(ctx context.Context) {
	if len(b.lines) == 0 {
		return
	}
	n := len(b.lines)
	payload := []byte(strings.Join(b.lines, "\n"))
	b.lines = b.lines[:0]

	if err := b.retry.Deliver(ctx, b.sink, payload, b.log); err != nil {
		b.dropped += n
		b.log.Error("dropping batch after exhausted retries",
			zap.Int("lines", n),
			zap.Error(err),
		)
		if b.OnDrop != nil {
			b.OnDrop(n)
		}
		return
	}

	b.delivered += n
	b.log.Info("batch delivered",
		zap.Int("lines", n),
		zap.Int("total", b.delivered),
	)
	if b.OnFlush != nil {
		b.OnFlush(n)
	}
}

// Delivered returns the cumulative number of lines confirmed by the sink.
func (b *Batcher) Delivered() int { return b.delivered }

// Dropped returns the cumulative number of lines lost to failed batches.
func (b *Batcher) Dropped() int { return b.dropped }

// Pending returns the number of lines waiting in the current batch.
func (b *Batcher) Pending() int { return len(b.lines) }
