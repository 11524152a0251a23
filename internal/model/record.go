// Package model defines the data types shared across the pipeline.
package model

// PriceRecord is one OHLCV row after numeric coercion. Immutable once built.
// Timestamp is epoch seconds; simulation-mode input may carry a fractional
// part.
type PriceRecord struct {
	Timestamp float64
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}
