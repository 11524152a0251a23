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

	"crypto-pipeline/internal/checkpoint"
	"crypto-pipeline/internal/delivery"
	"crypto-pipeline/internal/lineproto"
	"crypto-pipeline/internal/metrics"
	"crypto-pipeline/internal/model"
	"crypto-pipeline/internal/numeric"
	"crypto-pipeline/internal/source"
	"crypto-pipeline/internal/timeshift"
)

// SimulatorConfig configures a replay run.
type SimulatorConfig struct {
	// Interval is the pause between records, applied regardless of send
	// outcome (including skipped records, as the replay preserves pacing).
	Interval time.Duration
	Retry    delivery.RetryPolicy
}

// Simulator replays historical rows against the current wall clock one
// record at a time, persisting a checkpoint after each confirmed delivery so
// a restart resumes where the previous run left off.
type Simulator struct {
	cfg     SimulatorConfig
	sink    delivery.Sink
	shifter *timeshift.Shifter
	store   checkpoint.Store
	coercer *numeric.Coercer
	log     *zap.Logger
	met     *metrics.Metrics
}

// NewSimulator creates a replay pipeline. The shifter carries the loaded
// checkpoint; store receives the new one after each confirmed delivery.
// met may be nil.
func NewSimulator(sink delivery.Sink, store checkpoint.Store, shifter *timeshift.Shifter, cfg SimulatorConfig, met *metrics.Metrics, log *zap.Logger) *Simulator {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = delivery.DefaultRetry
	}

	coercer := &numeric.Coercer{}
	if met != nil {
		coercer.OnError = met.CoercionFailures.Inc
		cfg.Retry.OnRetry = met.DeliveryRetries.Inc
		sink = delivery.TimedSink{Sink: sink, Observe: met.SendDuration.Observe}
	}

	return &Simulator{
		cfg:     cfg,
		sink:    sink,
		shifter: shifter,
		store:   store,
		coercer: coercer,
		log:     log,
		met:     met,
	}
}

// Run replays rows until src is exhausted or ctx is cancelled. Delivery
// failures are logged and skipped; only source read failures abort the run.
func (s *Simulator) Run(ctx context.Context, src Source) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		row, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("simulate: read input: %w", err)
		}
		if s.met != nil {
			s.met.RowsRead.Inc()
		}

		s.step(ctx, row)

		if s.cfg.Interval > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.cfg.Interval):
			}
		}
	}
}

func (s *Simulator) step(ctx context.Context, row source.Row) {
	tsStr, ok := row.Get(fieldTimestamp)
	if !ok {
		s.skip("missing Timestamp column")
		return
	}
	tsF, err := strconv.ParseFloat(strings.TrimSpace(tsStr), 64)
	if err != nil {
		s.skip("unparseable timestamp: " + tsStr)
		return
	}

	// Checkpointed records are filtered before any encoding or delivery.
	adjusted, alreadySent := s.shifter.Map(tsF)
	if alreadySent {
		s.log.Debug("skipping already delivered record", zap.Float64("ts", tsF))
		return
	}

	rec, ok := s.record(row, tsF)
	if !ok {
		s.skip("missing fields in row")
		return
	}

	line := lineproto.SimLine(rec, adjusted)
	s.log.Info("sending data point",
		zap.Float64("original_ts", tsF),
		zap.Time("adjusted_ts", adjusted),
	)

	if err := s.cfg.Retry.Deliver(ctx, s.sink, []byte(line), s.log); err != nil {
		s.log.Warn("record not delivered after retries",
			zap.Float64("ts", tsF),
			zap.Error(err),
		)
		return
	}

	if s.met != nil {
		s.met.PointsDelivered.Inc()
	}

	// Persist only after the sink confirmed: a crash between send and save
	// re-delivers, never skips prematurely.
	if err := s.store.Save(tsF); err != nil {
		s.log.Error("checkpoint save failed", zap.Float64("ts", tsF), zap.Error(err))
		return
	}
	if s.met != nil {
		s.met.CheckpointTS.Set(tsF)
	}
}

func (s *Simulator) record(row source.Row, ts float64) (model.PriceRecord, bool) {
	var vals [len(ohlcvFields)]float64
	for i, name := range ohlcvFields {
		v, ok := row.Get(name)
		if !ok {
			return model.PriceRecord{}, false
		}
		vals[i] = s.coercer.Coerce(v)
	}
	return model.PriceRecord{
		Timestamp: ts,
		Open:      vals[0],
		High:      vals[1],
		Low:       vals[2],
		Close:     vals[3],
		Volume:    vals[4],
	}, true
}

func (s *Simulator) skip(reason string) {
	if s.met != nil {
		s.met.RecordsDropped.Inc()
	}
	s.log.Warn("skipping row", zap.String("reason", reason))
}
