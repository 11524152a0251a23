package delivery

import (
	"context"
	"io"

	"github.com/segmentio/kafka-go"
)

// KafkaWriter is the subset of kafka.Writer used by KafkaSink.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaSink publishes each payload as one Kafka message, for deployments
// where the collector consumes from a topic instead of an HTTP listener.
type KafkaSink struct {
	writer KafkaWriter
	key    []byte
}

// NewKafkaSink creates a sink writing to topic on the given brokers.
func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
		key: []byte(measurementKey),
	}
}

// NewKafkaSinkWithWriter wraps an existing writer; used by tests.
func NewKafkaSinkWithWriter(w KafkaWriter) *KafkaSink {
	return &KafkaSink{writer: w, key: []byte(measurementKey)}
}

const measurementKey = "bitcoin"

func (s *KafkaSink) Write(ctx context.Context, payload []byte) error {
	return s.writer.WriteMessages(ctx, kafka.Message{
		Key:   s.key,
		Value: payload,
	})
}

// Close releases the underlying writer if it owns a connection.
func (s *KafkaSink) Close() error {
	if c, ok := s.writer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
