package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"crypto-pipeline/internal/delivery"
	"crypto-pipeline/internal/indicator"
	"crypto-pipeline/internal/lineproto"
	"crypto-pipeline/internal/metrics"
	"crypto-pipeline/internal/model"
	"crypto-pipeline/internal/numeric"
	"crypto-pipeline/internal/source"
)

// Summary reports one completed bulk run.
type Summary struct {
	RowsRead  int
	Delivered int
	Errors    int
	Duration  time.Duration
}

// PointsPerSecond is the delivered throughput over the run duration.
func (s Summary) PointsPerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.Delivered) / s.Duration.Seconds()
}

// BulkConfig configures a bulk run. Zero values fall back to the defaults
// the collector contract assumes.
type BulkConfig struct {
	BatchSize  int
	WindowSize int
	FlushPause time.Duration
	Retry      delivery.RetryPolicy
}

// Bulk streams every input row through the indicator engine into batched
// delivery. Counters live on the struct, not in globals; one Bulk serves one
// run.
type Bulk struct {
	coercer *numeric.Coercer
	engine  *indicator.Engine
	batcher *delivery.Batcher
	log     *zap.Logger
	met     *metrics.Metrics

	dropped int // records skipped for missing/malformed required fields
}

// NewBulk creates a bulk pipeline delivering to sink. met may be nil.
func NewBulk(sink delivery.Sink, cfg BulkConfig, met *metrics.Metrics, log *zap.Logger) *Bulk {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = delivery.DefaultRetry
	}
	if cfg.FlushPause == 0 {
		cfg.FlushPause = delivery.DefaultFlushPause
	}

	coercer := &numeric.Coercer{}
	if met != nil {
		coercer.OnError = met.CoercionFailures.Inc
		cfg.Retry.OnRetry = met.DeliveryRetries.Inc
		sink = delivery.TimedSink{Sink: sink, Observe: met.SendDuration.Observe}
	}

	batcher := delivery.NewBatcher(sink, cfg.Retry, cfg.BatchSize, cfg.FlushPause, log)
	if met != nil {
		batcher.OnFlush = func(n int) {
			met.PointsDelivered.Add(float64(n))
			met.BatchesSent.Inc()
		}
		batcher.OnDrop = func(int) { met.BatchesDropped.Inc() }
	}

	return &Bulk{
		coercer: coercer,
		engine:  indicator.NewEngine(cfg.WindowSize, log),
		batcher: batcher,
		log:     log,
		met:     met,
	}
}

// Run drains src to completion, flushing any partial batch, and returns the
// run summary. Source read failures abort the run; everything else is
// counted and skipped.
func (b *Bulk) Run(ctx context.Context, src Source) (Summary, error) {
	start := time.Now()
	rows := 0

	for {
		row, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return b.summary(rows, start), fmt.Errorf("bulk: read input: %w", err)
		}
		rows++
		if b.met != nil {
			b.met.RowsRead.Inc()
		}
		b.process(ctx, row)
	}

	// Partial batch at end of input still goes out.
	b.batcher.Flush(ctx)

	s := b.summary(rows, start)
	b.log.Info("processing summary",
		zap.Int("rows_read", s.RowsRead),
		zap.Int("delivered", s.Delivered),
		zap.Int("errors", s.Errors),
		zap.Duration("duration", s.Duration),
		zap.Float64("points_per_second", s.PointsPerSecond()),
	)
	return s, nil
}

func (b *Bulk) process(ctx context.Context, row source.Row) {
	tsStr, ok := row.Get(fieldTimestamp)
	if !ok {
		b.drop("missing Timestamp column")
		return
	}
	tsF, err := strconv.ParseFloat(strings.TrimSpace(tsStr), 64)
	if err != nil {
		b.drop("unparseable timestamp: " + tsStr)
		return
	}

	// All five numeric columns must be present before the windows advance;
	// coercion itself never fails.
	var raw [len(ohlcvFields)]string
	for i, name := range ohlcvFields {
		v, ok := row.Get(name)
		if !ok {
			b.drop("missing column " + name)
			return
		}
		raw[i] = v
	}

	rec := model.PriceRecord{
		Timestamp: tsF,
		Open:      b.coercer.Coerce(raw[0]),
		High:      b.coercer.Coerce(raw[1]),
		Low:       b.coercer.Coerce(raw[2]),
		Close:     b.coercer.Coerce(raw[3]),
		Volume:    b.coercer.Coerce(raw[4]),
	}

	snap := b.engine.Ingest(rec)
	b.batcher.Add(ctx, lineproto.BulkLine(rec, snap))
}

func (b *Bulk) drop(reason string) {
	b.dropped++
	if b.met != nil {
		b.met.RecordsDropped.Inc()
	}
	b.log.Warn("skipping row", zap.String("reason", reason))
}

func (b *Bulk) summary(rows int, start time.Time) Summary {
	return Summary{
		RowsRead:  rows,
		Delivered: b.batcher.Delivered(),
		Errors:    b.dropped + int(b.coercer.Failures()),
		Duration:  time.Since(start),
	}
}
