package snaplerp

// Metrics is a read-only snapshot of the counters a Buffer/Engine pair
// accumulate over their lifetime: plain counters, no derived rates.
type Metrics struct {
	Admitted uint64 // snapshots accepted by InsertIfNewEnough
	Rejected uint64 // snapshots dropped by the ACB/first-is-lagging rules

	Computed  uint64 // Compute calls that returned applied=true
	Underfull uint64 // Compute calls returning false: buffer had <2 entries
	Warming   uint64 // Compute calls returning false: buffer-time gate not yet passed

	SegmentsPopped uint64 // total front-of-buffer evictions across all ticks
	CatchupEngaged uint64 // ticks where the buffer exceeded catchupThreshold
	Overshoots     uint64 // ticks that clamped to the newest snapshot instead of interpolating
}

// Metrics returns the current counters for buf and e combined. Passing a
// nil buf yields zeroed admission counters, which is useful when an
// Engine is queried before any Buffer has been wired to it.
func (e *Engine[S]) Metrics(buf *Buffer[S]) Metrics {
	var admitted, rejected uint64
	if buf != nil {
		admitted, rejected = buf.counts()
	}
	return Metrics{
		Admitted:       admitted,
		Rejected:       rejected,
		Computed:       e.computed,
		Underfull:      e.underfull,
		Warming:        e.warming,
		SegmentsPopped: e.segmentsPopped,
		CatchupEngaged: e.catchupEngaged,
		Overshoots:     e.overshoots,
	}
}
