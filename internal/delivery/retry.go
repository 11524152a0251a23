package delivery

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RetryPolicy controls delivery attempts: MaxAttempts tries in total, with a
// sleep of BaseDelay after the first failure, multiplied by Multiplier after
// each subsequent one.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64

	// OnRetry, if set, is called once per attempt beyond the first (for
	// metrics).
	OnRetry func()
}

// DefaultRetry mirrors the collector contract: 3 attempts total with 2s and
// then 4s between them.
var DefaultRetry = RetryPolicy{
	MaxAttempts: 3,
	BaseDelay:   2 * time.Second,
	Multiplier:  2,
}

// Deliver sends payload through sink, retrying per the policy. It returns
// the last error when every attempt failed; the caller drops the payload and
// moves on. Backoff sleeps block the caller and respect ctx cancellation.
func (p RetryPolicy) Deliver(ctx context.Context, sink Sink, payload []byte, log *zap.Logger) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := p.BaseDelay

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = sink.Write(ctx, payload)
		if lastErr == nil {
			return nil
		}
		log.Warn("delivery attempt failed",
			zap.Int("attempt", attempt),
			zap.Error(lastErr),
		)
		if attempt == attempts {
			break
		}

		log.Info("retrying delivery", zap.Duration("in", delay))
		if p.OnRetry != nil {
			p.OnRetry()
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = time.Duration(float64(delay) * p.Multiplier)
	}
	return lastErr
}
