package source

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReader_HeaderMappedRows(t *testing.T) {
	path := writeCSV(t, "Timestamp,Open,High,Low,Close,Volume\n1325412060,4.39,4.58,4.39,4.58,48.75\n")

	r, err := Open(path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer r.Close()

	row, err := r.Next()
	if err != nil {
		t.Fatalf("next failed: %v", err)
	}
	if v, ok := row.Get("Close"); !ok || v != "4.58" {
		t.Errorf("Close = %q ok=%v, want 4.58", v, ok)
	}
	if v, ok := row.Get("Timestamp"); !ok || v != "1325412060" {
		t.Errorf("Timestamp = %q ok=%v", v, ok)
	}

	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestReader_ShortRowLacksColumns(t *testing.T) {
	path := writeCSV(t, "Timestamp,Open,High\n100,1.0\n")

	r, err := Open(path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer r.Close()

	row, err := r.Next()
	if err != nil {
		t.Fatalf("next failed: %v", err)
	}
	if _, ok := row.Get("High"); ok {
		t.Error("High should be absent on a short row")
	}
}

func TestOpen_MissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
