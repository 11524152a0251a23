package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"crypto-pipeline/internal/delivery"
	"crypto-pipeline/internal/source"
)

type memSource struct {
	rows []source.Row
	pos  int
}

func (m *memSource) Next() (source.Row, error) {
	if m.pos >= len(m.rows) {
		return nil, io.EOF
	}
	r := m.rows[m.pos]
	m.pos++
	return r, nil
}

type recordingSink struct {
	payloads [][]byte
	err      error
}

func (r *recordingSink) Write(_ context.Context, payload []byte) error {
	if r.err != nil {
		return r.err
	}
	cp := make([]byte, len(payload))
	copy(cp, payload)
	r.payloads = append(r.payloads, cp)
	return nil
}

func priceRow(ts int) source.Row {
	return source.Row{
		"Timestamp": fmt.Sprintf("%d", ts),
		"Open":      "4.39",
		"High":      "4.58",
		"Low":       "4.39",
		"Close":     "4.58",
		"Volume":    "48.75",
	}
}

func fastConfig() BulkConfig {
	return BulkConfig{
		BatchSize:  delivery.DefaultBatchSize,
		FlushPause: time.Millisecond,
		Retry:      delivery.RetryPolicy{MaxAttempts: 1, BaseDelay: time.Millisecond, Multiplier: 2},
	}
}

func TestBulk_BatchesAtLimit(t *testing.T) {
	src := &memSource{}
	for i := 0; i < 1200; i++ {
		src.rows = append(src.rows, priceRow(1325412060+60*i))
	}
	sink := &recordingSink{}

	b := NewBulk(sink, fastConfig(), nil, nil)
	sum, err := b.Run(context.Background(), src)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(sink.payloads) != 2 {
		t.Fatalf("batches sent = %d, want 2", len(sink.payloads))
	}
	if n := strings.Count(string(sink.payloads[0]), "\n") + 1; n != 1000 {
		t.Errorf("first batch lines = %d, want 1000", n)
	}
	if n := strings.Count(string(sink.payloads[1]), "\n") + 1; n != 200 {
		t.Errorf("second batch lines = %d, want 200", n)
	}

	if sum.RowsRead != 1200 {
		t.Errorf("rows read = %d, want 1200", sum.RowsRead)
	}
	if sum.Delivered != 1200 {
		t.Errorf("delivered = %d, want 1200", sum.Delivered)
	}
	if sum.Errors != 0 {
		t.Errorf("errors = %d, want 0", sum.Errors)
	}
}

func TestBulk_IndicatorFieldsAfterWarmup(t *testing.T) {
	src := &memSource{}
	for i := 0; i < 6; i++ {
		src.rows = append(src.rows, priceRow(1325412060+60*i))
	}
	sink := &recordingSink{}

	b := NewBulk(sink, fastConfig(), nil, nil)
	if _, err := b.Run(context.Background(), src); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(sink.payloads) != 1 {
		t.Fatalf("batches sent = %d, want 1", len(sink.payloads))
	}

	lines := strings.Split(string(sink.payloads[0]), "\n")
	if len(lines) != 6 {
		t.Fatalf("lines = %d, want 6", len(lines))
	}
	for i, line := range lines {
		has := strings.Contains(line, "sma=")
		if i < 4 && has {
			t.Errorf("line %d carries indicators before warmup: %s", i, line)
		}
		if i >= 4 && !has {
			t.Errorf("line %d lacks indicators after warmup: %s", i, line)
		}
	}
}

func TestBulk_MalformedRowsCountedAndSkipped(t *testing.T) {
	src := &memSource{rows: []source.Row{
		priceRow(100),
		{"Timestamp": "not-a-number", "Open": "1", "High": "1", "Low": "1", "Close": "1", "Volume": "1"},
		{"Timestamp": "200", "Open": "1", "High": "1", "Low": "1", "Volume": "1"}, // no Close
		priceRow(300),
	}}
	sink := &recordingSink{}

	b := NewBulk(sink, fastConfig(), nil, nil)
	sum, err := b.Run(context.Background(), src)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if sum.RowsRead != 4 {
		t.Errorf("rows read = %d, want 4", sum.RowsRead)
	}
	if sum.Delivered != 2 {
		t.Errorf("delivered = %d, want 2", sum.Delivered)
	}
	if sum.Errors != 2 {
		t.Errorf("errors = %d, want 2", sum.Errors)
	}
}

func TestBulk_CoercionFailuresCountAsErrors(t *testing.T) {
	row := priceRow(100)
	row["Volume"] = "nan"
	src := &memSource{rows: []source.Row{row}}
	sink := &recordingSink{}

	b := NewBulk(sink, fastConfig(), nil, nil)
	sum, err := b.Run(context.Background(), src)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	// The record still flows through with the substituted zero.
	if sum.Delivered != 1 {
		t.Errorf("delivered = %d, want 1", sum.Delivered)
	}
	if sum.Errors != 1 {
		t.Errorf("errors = %d, want 1", sum.Errors)
	}
	if !strings.Contains(string(sink.payloads[0]), "volume=0") {
		t.Errorf("expected substituted volume in %s", sink.payloads[0])
	}
}

func TestBulk_SourceErrorAborts(t *testing.T) {
	src := &failingSource{after: 2}
	sink := &recordingSink{}

	b := NewBulk(sink, fastConfig(), nil, nil)
	sum, err := b.Run(context.Background(), src)
	if err == nil {
		t.Fatal("expected error from failing source")
	}
	if sum.RowsRead != 2 {
		t.Errorf("rows read = %d, want 2", sum.RowsRead)
	}
}

type failingSource struct {
	after int
	read  int
}

func (f *failingSource) Next() (source.Row, error) {
	if f.read >= f.after {
		return nil, fmt.Errorf("disk gone")
	}
	f.read++
	return priceRow(f.read), nil
}
