// Package lineproto renders price records as line-protocol text: a
// measurement name, a tag set, a field set and a nanosecond timestamp on a
// single line.
package lineproto

import (
	"strconv"
	"strings"
	"time"

	"crypto-pipeline/internal/indicator"
	"crypto-pipeline/internal/model"
)

const measurement = "bitcoin"

// BulkLine renders a historical-load line. The record's timestamp is integer
// epoch seconds, scaled to nanoseconds. Indicator fields are appended only
// when snap is non-nil; vwap is omitted when the window had no volume.
func BulkLine(rec model.PriceRecord, snap *indicator.Snapshot) string {
	var b strings.Builder
	b.WriteString(measurement)
	b.WriteString(",source=historical,market=default ")

	b.WriteString("open=")
	b.WriteString(ftoa(rec.Open))
	b.WriteString(",high=")
	b.WriteString(ftoa(rec.High))
	b.WriteString(",low=")
	b.WriteString(ftoa(rec.Low))
	b.WriteString(",close=")
	b.WriteString(ftoa(rec.Close))
	b.WriteString(",volume=")
	b.WriteString(ftoa(rec.Volume))

	if snap != nil {
		b.WriteString(",sma=")
		b.WriteString(ftoa(snap.SMA))
		b.WriteString(",volatility=")
		b.WriteString(ftoa(snap.Volatility))
		if snap.VWAP != nil {
			b.WriteString(",vwap=")
			b.WriteString(ftoa(*snap.VWAP))
		}
		b.WriteString(",std_dev=")
		b.WriteString(ftoa(snap.StdDev))
		b.WriteString(",momentum=")
		b.WriteString(ftoa(snap.Momentum))
	}

	b.WriteByte(' ')
	b.WriteString(strconv.FormatInt(int64(rec.Timestamp)*int64(time.Second), 10))
	return b.String()
}

// SimLine renders a replay line: capitalized base fields, no indicators, and
// the timestamp taken from the shifted instant.
func SimLine(rec model.PriceRecord, adjusted time.Time) string {
	var b strings.Builder
	b.WriteString(measurement)
	b.WriteString(",source=csv ")

	b.WriteString("Open=")
	b.WriteString(ftoa(rec.Open))
	b.WriteString(",High=")
	b.WriteString(ftoa(rec.High))
	b.WriteString(",Low=")
	b.WriteString(ftoa(rec.Low))
	b.WriteString(",Close=")
	b.WriteString(ftoa(rec.Close))
	b.WriteString(",Volume=")
	b.WriteString(ftoa(rec.Volume))

	b.WriteByte(' ')
	b.WriteString(strconv.FormatInt(adjusted.UnixNano(), 10))
	return b.String()
}

// ftoa renders a float with its natural decimal representation, no fixed
// precision beyond what the value itself carries.
func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
