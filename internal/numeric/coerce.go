// Package numeric converts raw textual CSV fields into usable float64
// values. Conversion never fails: anything unparseable is substituted with
// 0.0 and counted, because downstream arithmetic assumes every field is a
// real number.
package numeric

import (
	"strconv"
	"strings"
	"sync/atomic"
)

// Coercer converts string fields to float64, substituting a default on
// failure. Failures are counted atomically so the pipeline can report them
// in its run summary.
type Coercer struct {
	failures atomic.Uint64

	// OnError, if set, is called once per failed conversion (for metrics).
	OnError func()
}

// Coerce parses s as a decimal float. Empty strings, "nan" in any case, and
// malformed input count as failures and yield 0.0.
func (c *Coercer) Coerce(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		c.fail()
		return 0.0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		c.fail()
		return 0.0
	}
	return v
}

// Failures returns the total number of substituted values so far.
func (c *Coercer) Failures() uint64 {
	return c.failures.Load()
}

func (c *Coercer) fail() {
	c.failures.Add(1)
	if c.OnError != nil {
		c.OnError()
	}
}
