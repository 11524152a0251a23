// Package checkpoint persists the last successfully delivered record
// timestamp so a restarted simulation run can resume without re-sending
// data. The store is written only after the sink has confirmed a delivery.
package checkpoint

// Store is a durable scalar slot holding one timestamp. Load reports
// ok=false when no checkpoint exists; the run then starts from the top of
// the input. An error from Load is treated the same way by callers, after
// logging.
type Store interface {
	Load() (ts float64, ok bool, err error)
	Save(ts float64) error
}
