package delivery

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
)

// fakeKafkaWriter records messages instead of talking to a broker.
type fakeKafkaWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeKafkaWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func TestKafkaSink_PublishesPayload(t *testing.T) {
	w := &fakeKafkaWriter{}
	sink := NewKafkaSinkWithWriter(w)

	if err := sink.Write(context.Background(), []byte("line1\nline2")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(w.msgs))
	}
	if string(w.msgs[0].Key) != "bitcoin" {
		t.Errorf("key = %q, want bitcoin", w.msgs[0].Key)
	}
	if string(w.msgs[0].Value) != "line1\nline2" {
		t.Errorf("value = %q", w.msgs[0].Value)
	}
}

func TestKafkaSink_PropagatesWriteError(t *testing.T) {
	w := &fakeKafkaWriter{err: errors.New("broker unavailable")}
	sink := NewKafkaSinkWithWriter(w)

	if err := sink.Write(context.Background(), []byte("x")); err == nil {
		t.Fatal("expected error from writer")
	}
}
