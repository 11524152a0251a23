// Package indicator computes rolling technical indicators over a fixed
// sliding window of price records.
//
// The engine keeps four independent windows (close, volume, high, low) and
// derives one Snapshot per ingested record once the windows are full.
package indicator

import (
	"math"

	"go.uber.org/zap"

	"crypto-pipeline/internal/model"
	"crypto-pipeline/internal/window"
)

// DefaultWindow is the number of records required before indicators emit.
const DefaultWindow = 5

// Snapshot holds the indicator values derived from one full window.
// VWAP is nil when the window's volume sum is zero. All values are rounded
// to 2 decimal places.
type Snapshot struct {
	SMA        float64
	Volatility float64
	VWAP       *float64
	StdDev     float64
	Momentum   float64
}

// Engine maintains rolling windows of close, volume, high and low values.
// The engine is owned by a single goroutine and holds no locks. Windows are
// never reset within the lifetime of a processing run.
type Engine struct {
	size    int
	closes  *window.Ring
	volumes *window.Ring
	highs   *window.Ring
	lows    *window.Ring
	log     *zap.Logger
}

// NewEngine creates an engine with the given window size.
// Sizes <= 0 fall back to DefaultWindow.
func NewEngine(size int, log *zap.Logger) *Engine {
	if size <= 0 {
		size = DefaultWindow
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		size:    size,
		closes:  window.New(size),
		volumes: window.New(size),
		highs:   window.New(size),
		lows:    window.New(size),
		log:     log,
	}
}

// Ingest appends the record's fields to the rolling windows and computes a
// Snapshot. It returns nil until the windows hold a full size samples, and
// nil again if the computation produces non-finite values; in that case the
// record still advances the windows and processing continues.
func (e *Engine) Ingest(rec model.PriceRecord) *Snapshot {
	e.closes.Push(rec.Close)
	e.volumes.Push(rec.Volume)
	e.highs.Push(rec.High)
	e.lows.Push(rec.Low)

	if e.closes.Len() < e.size {
		return nil
	}
	return e.compute()
}

func (e *Engine) compute() *Snapshot {
	closes := e.closes.Values()
	volumes := e.volumes.Values()

	meanClose := mean(closes)

	volatility := 0.0
	if meanClose > 0 {
		volatility = (maxOf(e.highs.Values()) - minOf(e.lows.Values())) / meanClose * 100
	}

	var vwap *float64
	var priceVolumeSum, volumeSum float64
	for i := range closes {
		priceVolumeSum += closes[i] * volumes[i]
		volumeSum += volumes[i]
	}
	if volumeSum > 0 {
		v := round2(priceVolumeSum / volumeSum)
		vwap = &v
	}

	// The full-window gate means closes always has >= 2 samples here, but a
	// 1-sample window is still defined as 0.
	stdDev := 0.0
	if len(closes) > 1 {
		stdDev = sampleStdDev(closes, meanClose)
	}

	momentum := e.closes.Latest() - e.closes.Oldest()

	snap := &Snapshot{
		SMA:        round2(meanClose),
		Volatility: round2(volatility),
		VWAP:       vwap,
		StdDev:     round2(stdDev),
		Momentum:   round2(momentum),
	}
	if !snap.finite() {
		e.log.Warn("indicator computation produced non-finite values, skipping snapshot")
		return nil
	}
	return snap
}

// finite reports whether every computed value is a usable number.
func (s *Snapshot) finite() bool {
	for _, v := range []float64{s.SMA, s.Volatility, s.StdDev, s.Momentum} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	if s.VWAP != nil && (math.IsNaN(*s.VWAP) || math.IsInf(*s.VWAP, 0)) {
		return false
	}
	return true
}

func mean(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func maxOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// sampleStdDev is the n-1 sample standard deviation.
func sampleStdDev(vals []float64, mean float64) float64 {
	var sum float64
	for _, v := range vals {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(vals)-1))
}

// round2 rounds to 2 decimal places, matching the precision the collector
// schema expects for indicator fields.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
