// Package pipeline wires the coercer, indicator engine, record encoder and
// batch delivery into the two run modes: bulk historical load and real-time
// simulation replay.
//
// Both modes are strictly sequential: one goroutine drives ingest through
// delivery, so source order is delivery order and the indicator windows and
// checkpoint advance in lockstep with the input.
package pipeline

import (
	"crypto-pipeline/internal/source"
)

// Input field names expected in the source records.
const (
	fieldTimestamp = "Timestamp"
	fieldOpen      = "Open"
	fieldHigh      = "High"
	fieldLow       = "Low"
	fieldClose     = "Close"
	fieldVolume    = "Volume"
)

var ohlcvFields = [...]string{fieldOpen, fieldHigh, fieldLow, fieldClose, fieldVolume}

// Source yields rows in input order. Next returns io.EOF at end of input.
type Source interface {
	Next() (source.Row, error)
}
