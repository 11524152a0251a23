// Package source reads named-field records from CSV input. The pipeline
// treats the source as a sequence of rows; a missing or unreadable file is
// the only fatal error class in a run.
package source

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// Row is one CSV record indexed by header name.
type Row map[string]string

// Get returns the named field; ok is false when the column is absent.
func (r Row) Get(name string) (string, bool) {
	v, ok := r[name]
	return v, ok
}

// Reader iterates a header-mapped CSV file.
type Reader struct {
	f      *os.File
	csv    *csv.Reader
	header []string
}

// Open opens path and reads the header row.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("source: open %s: %w", path, err)
	}
	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("source: read header of %s: %w", path, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	return &Reader{f: f, csv: cr, header: header}, nil
}

// Next returns the next row, or io.EOF at end of input. Short rows simply
// lack the trailing columns.
func (r *Reader) Next() (Row, error) {
	rec, err := r.csv.Read()
	if err != nil {
		return nil, err
	}
	row := make(Row, len(r.header))
	for i, name := range r.header {
		if i < len(rec) {
			row[name] = rec[i]
		}
	}
	return row, nil
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.f.Close()
}
