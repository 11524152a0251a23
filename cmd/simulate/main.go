// cmd/simulate replays a historical OHLCV CSV against the current wall
// clock, sending one record at a time and checkpointing after each confirmed
// delivery so a restart resumes where the previous run stopped.
//
// Usage:
//
//	go run ./cmd/simulate --input=./dataset/bitcoin_processed.csv --interval=1
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"crypto-pipeline/config"
	"crypto-pipeline/internal/checkpoint"
	"crypto-pipeline/internal/delivery"
	"crypto-pipeline/internal/logger"
	"crypto-pipeline/internal/metrics"
	"crypto-pipeline/internal/pipeline"
	"crypto-pipeline/internal/source"
	"crypto-pipeline/internal/timeshift"
)

func main() {
	input := flag.String("input", "", "CSV input path (overrides config)")
	url := flag.String("url", "", "collector write URL (overrides config)")
	interval := flag.Int("interval", 0, "seconds between records (overrides config)")
	flag.Parse()

	log := logger.Init("simulate", zapcore.InfoLevel)
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed", zap.Error(err))
	}
	if *input != "" {
		cfg.Input.Path = *input
	}
	if *url != "" {
		cfg.Sink.URL = *url
	}
	if *interval > 0 {
		cfg.Pipeline.IntervalSec = *interval
	}

	met := metrics.New()
	if cfg.Metrics.Addr != "" {
		srv := metrics.NewServer(cfg.Metrics.Addr)
		srv.Start(log)
		defer func() {
			shutCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Stop(shutCtx)
		}()
	}

	store, err := buildStore(cfg)
	if err != nil {
		log.Fatal("checkpoint store setup failed", zap.Error(err))
	}

	origin, err := cfg.Pipeline.ParseOrigin()
	if err != nil {
		log.Fatal("invalid replay origin", zap.Error(err))
	}
	shifter := timeshift.New(origin, time.Now().UTC())

	// Absent or unreadable checkpoint means processing from the start.
	if ts, ok, err := store.Load(); err != nil {
		log.Warn("failed to read checkpoint, starting from the beginning", zap.Error(err))
	} else if ok {
		shifter.SetCheckpoint(ts)
		log.Info("resuming from last ingested timestamp", zap.Float64("ts", ts))
	}

	sink, err := buildSink(cfg)
	if err != nil {
		log.Fatal("sink setup failed", zap.Error(err))
	}

	src, err := source.Open(cfg.Input.Path)
	if err != nil {
		log.Fatal("could not open input file", zap.Error(err))
	}
	defer src.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	log.Info("starting data simulation",
		zap.String("input", cfg.Input.Path),
		zap.Duration("interval", cfg.Pipeline.Interval()),
	)

	sim := pipeline.NewSimulator(sink, store, shifter, pipeline.SimulatorConfig{
		Interval: cfg.Pipeline.Interval(),
		Retry: delivery.RetryPolicy{
			MaxAttempts: cfg.Pipeline.RetryAttempts,
			BaseDelay:   time.Duration(cfg.Pipeline.RetryDelaySec) * time.Second,
			Multiplier:  2,
		},
	}, met, log)

	if err := sim.Run(ctx, src); err != nil && err != context.Canceled {
		log.Fatal("simulation run failed", zap.Error(err))
	}
	log.Info("simulation finished")
}

func buildStore(cfg *config.Config) (checkpoint.Store, error) {
	switch cfg.Checkpoint.Backend {
	case "sqlite":
		return checkpoint.NewSQLiteStore(cfg.Checkpoint.Path)
	case "redis":
		return checkpoint.NewRedisStore(
			cfg.Checkpoint.RedisAddr,
			cfg.Checkpoint.RedisPassword,
			cfg.Checkpoint.RedisKey,
		), nil
	default:
		return checkpoint.NewFileStore(cfg.Checkpoint.Path), nil
	}
}

func buildSink(cfg *config.Config) (delivery.Sink, error) {
	switch cfg.Sink.Kind {
	case "kafka":
		return delivery.NewKafkaSink(cfg.Sink.KafkaBrokers, cfg.Sink.KafkaTopic), nil
	default:
		return delivery.NewHTTPSink(cfg.Sink.URL), nil
	}
}
