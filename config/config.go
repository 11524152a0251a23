// Package config holds all application configuration, loaded from an
// optional .env file, environment variables and defaults.
package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the full pipeline configuration.
type Config struct {
	Input      InputConfig      `mapstructure:"input"`
	Sink       SinkConfig       `mapstructure:"sink"`
	Pipeline   PipelineConfig   `mapstructure:"pipeline"`
	Checkpoint CheckpointConfig `mapstructure:"checkpoint"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

type InputConfig struct {
	Path string `mapstructure:"path"`
}

type SinkConfig struct {
	Kind         string   `mapstructure:"kind"` // "http" or "kafka"
	URL          string   `mapstructure:"url"`
	KafkaBrokers []string `mapstructure:"kafka_brokers"`
	KafkaTopic   string   `mapstructure:"kafka_topic"`
}

type PipelineConfig struct {
	BatchSize     int    `mapstructure:"batch_size"`
	WindowSize    int    `mapstructure:"window_size"`
	FlushPauseMs  int    `mapstructure:"flush_pause_ms"`
	IntervalSec   int    `mapstructure:"interval_sec"` // simulation pacing
	RetryAttempts int    `mapstructure:"retry_attempts"`
	RetryDelaySec int    `mapstructure:"retry_delay_sec"`
	Origin        string `mapstructure:"origin"` // RFC3339 replay origin
}

type CheckpointConfig struct {
	Backend       string `mapstructure:"backend"` // file | sqlite | redis
	Path          string `mapstructure:"path"`    // file or sqlite path
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisKey      string `mapstructure:"redis_key"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"` // "" disables the metrics server
}

// Load reads configuration from a .env file (if present), environment
// variables and defaults.
func Load() (*Config, error) {
	v := viper.New()

	// Load .env into the process environment so the bindings below see it.
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, relying on environment")
	}

	v.SetDefault("input.path", "./dataset/bitcoin_processed.csv")

	v.SetDefault("sink.kind", "http")
	v.SetDefault("sink.url", "http://localhost:8186/write")
	v.SetDefault("sink.kafka_brokers", []string{"localhost:9092"})
	v.SetDefault("sink.kafka_topic", "bitcoin_metrics")

	v.SetDefault("pipeline.batch_size", 1000)
	v.SetDefault("pipeline.window_size", 5)
	v.SetDefault("pipeline.flush_pause_ms", 100)
	v.SetDefault("pipeline.interval_sec", 1)
	v.SetDefault("pipeline.retry_attempts", 3)
	v.SetDefault("pipeline.retry_delay_sec", 2)
	v.SetDefault("pipeline.origin", "2012-01-01T10:01:00Z")

	v.SetDefault("checkpoint.backend", "file")
	v.SetDefault("checkpoint.path", "last_ingested.txt")
	v.SetDefault("checkpoint.redis_addr", "localhost:6379")
	v.SetDefault("checkpoint.redis_password", "")
	v.SetDefault("checkpoint.redis_key", "")

	v.SetDefault("metrics.addr", "")

	// Map dot-notation to underscores: "sink.url" -> SINK_URL.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnv(v,
		"input.path",
		"sink.kind", "sink.url", "sink.kafka_brokers", "sink.kafka_topic",
		"pipeline.batch_size", "pipeline.window_size", "pipeline.flush_pause_ms",
		"pipeline.interval_sec", "pipeline.retry_attempts", "pipeline.retry_delay_sec",
		"pipeline.origin",
		"checkpoint.backend", "checkpoint.path",
		"checkpoint.redis_addr", "checkpoint.redis_password", "checkpoint.redis_key",
		"metrics.addr",
	)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unable to decode: %w", err)
	}

	switch cfg.Sink.Kind {
	case "http", "kafka":
	default:
		return nil, fmt.Errorf("config: unknown sink kind %q", cfg.Sink.Kind)
	}
	switch cfg.Checkpoint.Backend {
	case "file", "sqlite", "redis":
	default:
		return nil, fmt.Errorf("config: unknown checkpoint backend %q", cfg.Checkpoint.Backend)
	}

	return &cfg, nil
}

// ParseOrigin returns the replay origin instant.
func (p PipelineConfig) ParseOrigin() (time.Time, error) {
	t, err := time.Parse(time.RFC3339, p.Origin)
	if err != nil {
		return time.Time{}, fmt.Errorf("config: invalid origin %q: %w", p.Origin, err)
	}
	return t, nil
}

// FlushPause returns the inter-batch pause as a duration.
func (p PipelineConfig) FlushPause() time.Duration {
	return time.Duration(p.FlushPauseMs) * time.Millisecond
}

// Interval returns the simulation pacing as a duration.
func (p PipelineConfig) Interval() time.Duration {
	return time.Duration(p.IntervalSec) * time.Second
}

func bindEnv(v *viper.Viper, keys ...string) {
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			log.Printf("config: could not bind env var for key %s: %v", key, err)
		}
	}
}
