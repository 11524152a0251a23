// Package timeshift maps historical record timestamps onto the current wall
// clock for replay, and filters records already delivered in a previous run.
package timeshift

import "time"

// DefaultOrigin is the first instant of the historical dataset.
var DefaultOrigin = time.Date(2012, time.January, 1, 10, 1, 0, 0, time.UTC)

// Shifter applies a constant calendar shift fixed at construction time. All
// records in one run share the same additive shift, which preserves the
// relative spacing of the historical data while replaying it against the
// current clock. Long-running processes drift relative to "now"; that is the
// intended behavior.
type Shifter struct {
	shift         time.Duration
	checkpoint    float64
	hasCheckpoint bool
}

// New creates a Shifter anchored at origin, with now as the replay base.
func New(origin, now time.Time) *Shifter {
	return &Shifter{shift: now.Sub(origin)}
}

// SetCheckpoint installs the last successfully delivered original timestamp.
// Records at or before it will be skipped.
func (s *Shifter) SetCheckpoint(ts float64) {
	s.checkpoint = ts
	s.hasCheckpoint = true
}

// Map translates an original epoch-seconds timestamp into the replay time
// base. skip is true when the record was already delivered according to the
// checkpoint; such records must not be encoded or sent.
func (s *Shifter) Map(tsSeconds float64) (adjusted time.Time, skip bool) {
	if s.hasCheckpoint && tsSeconds <= s.checkpoint {
		return time.Time{}, true
	}
	sec := int64(tsSeconds)
	nsec := int64((tsSeconds - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec).UTC().Add(s.shift), false
}
