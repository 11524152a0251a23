// Package delivery accumulates encoded lines into bounded batches and sends
// them to the metrics sink with retry and backoff. Delivery is synchronous
// and blocking: the pipeline suspends during backoff and pacing sleeps.
package delivery

import (
	"context"
	"time"
)

// Sink accepts one line-protocol payload. A nil error means the sink
// confirmed the write; anything else is subject to the retry policy.
type Sink interface {
	Write(ctx context.Context, payload []byte) error
}

// TimedSink wraps a Sink and reports each write's latency in seconds.
type TimedSink struct {
	Sink    Sink
	Observe func(seconds float64)
}

func (t TimedSink) Write(ctx context.Context, payload []byte) error {
	start := time.Now()
	err := t.Sink.Write(ctx, payload)
	t.Observe(time.Since(start).Seconds())
	return err
}
